// 指示: miu200521358
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/miu200521358/mu_vrm_ik/pkg/adapter/io_tracking"
	"github.com/miu200521358/mu_vrm_ik/pkg/adapter/mpresenter/ikview"
	"github.com/miu200521358/mu_vrm_ik/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/tracking"
	"github.com/miu200521358/mu_vrm_ik/pkg/infra/controller/mclock"
	"github.com/miu200521358/mu_vrm_ik/pkg/usecase/ikinteractor"
)

// options はCLI引数を保持する。
type options struct {
	rigKind  model.RigKind
	interval float64
	ticks    int
	debug    bool
	realtime time.Duration
}

// main はデモスケルトンに対するコントローラーIK写像を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	skeleton, rootBoneName, err := buildDemoSkeleton(opts.rigKind)
	if err != nil {
		return err
	}

	config := ikinteractor.NewDefaultConfig()
	config.RigKind = opts.rigKind
	config.RootBoneName = rootBoneName
	config.IntervalSeconds = opts.interval
	config.Debug = opts.debug

	view := ikview.NewChainView()
	usecase, err := ikinteractor.NewAvatarIkUsecase(ikinteractor.AvatarIkUsecaseDeps{
		Skeleton:    skeleton,
		LeftSource:  io_tracking.NewScriptSource(demoLeftHandPoses(), false),
		RightSource: io_tracking.NewScriptSource(demoRightHandPoses(), false),
		DebugView:   view,
	}, config)
	if err != nil {
		return fmt.Errorf("IKユースケースの構築に失敗しました: %w", err)
	}
	defer usecase.Dispose()

	for _, warning := range usecase.Warnings() {
		fmt.Fprintf(out, "[mu_vrm_ik] 警告: %s\n", warningText(warning))
	}
	for _, side := range []ikinteractor.ArmSide{ikinteractor.ArmSideLeft, ikinteractor.ArmSideRight} {
		if chain := usecase.Chain(side); chain != nil {
			fmt.Fprintf(out, "[mu_vrm_ik] "+messages.LogChainBuilt+"\n", chain.Name)
		}
	}

	summary := newTickSummaryPrinter()
	usecase.RegisterTickReporter(summary)

	if opts.realtime > 0 {
		if err := runRealtime(usecase, opts.realtime); err != nil {
			return err
		}
	} else {
		step := opts.interval
		if step <= 0 {
			step = ikinteractor.DefaultTickInterval
		}
		for i := 0; i < opts.ticks; i++ {
			if err := usecase.Tick(step); err != nil {
				return fmt.Errorf("IK更新に失敗しました: %w", err)
			}
		}
	}

	writeSummary(out, summary)
	if opts.debug {
		writeDebugViewSummary(out, view)
	}
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_vrm_ik", flag.ContinueOnError)
	fs.SetOutput(errOut)

	rig := fs.String("rig", model.RigKindNormalized.String(), "ボーン命名方式 (normalized|named)")
	interval := fs.Float64("interval", 0, "IK更新間隔(秒)。0で既定値")
	ticks := fs.Int("ticks", 240, "固定ステップ実行の更新回数")
	debug := fs.Bool("debug", false, "チェーン可視化ビューを有効化")
	realtime := fs.Duration("realtime", 0, "実時間駆動の継続時間。0で固定ステップ実行")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	rigKind, err := model.ParseRigKind(*rig)
	if err != nil {
		return options{}, err
	}
	if *interval < 0 {
		return options{}, fmt.Errorf("更新間隔に負数は指定できません: %f", *interval)
	}
	if *realtime <= 0 && *ticks <= 0 {
		return options{}, fmt.Errorf("更新回数は1以上を指定してください: %d", *ticks)
	}

	return options{
		rigKind:  rigKind,
		interval: *interval,
		ticks:    *ticks,
		debug:    *debug,
		realtime: *realtime,
	}, nil
}

// demoBoneSpec はデモスケルトンの1ボーン定義を表す。parentは定義列内の位置。
type demoBoneSpec struct {
	normalizedName string
	namedName      string
	parent         int
	offset         mmath.Vec3
}

// demoBoneSpecs はTポーズ人型デモの定義列。オフセットはメートル。
var demoBoneSpecs = []demoBoneSpec{
	{normalizedName: "hips", namedName: "mixamorig:Hips", parent: -1, offset: mmath.NewVec3(0, 0.95, 0)},
	{normalizedName: "spine", namedName: "mixamorig:Spine", parent: 0, offset: mmath.NewVec3(0, 0.10, 0)},
	{normalizedName: "chest", namedName: "mixamorig:Spine2", parent: 1, offset: mmath.NewVec3(0, 0.15, 0)},
	{normalizedName: "leftShoulder", namedName: "mixamorig:LeftShoulder", parent: 2, offset: mmath.NewVec3(0.06, 0.12, 0)},
	{normalizedName: "leftUpperArm", namedName: "mixamorig:LeftArm", parent: 3, offset: mmath.NewVec3(0.11, 0, 0)},
	{normalizedName: "leftLowerArm", namedName: "mixamorig:LeftForeArm", parent: 4, offset: mmath.NewVec3(0.26, 0, 0)},
	{normalizedName: "leftHand", namedName: "mixamorig:LeftHand", parent: 5, offset: mmath.NewVec3(0.25, 0, 0)},
	{normalizedName: "rightShoulder", namedName: "mixamorig:RightShoulder", parent: 2, offset: mmath.NewVec3(-0.06, 0.12, 0)},
	{normalizedName: "rightUpperArm", namedName: "mixamorig:RightArm", parent: 7, offset: mmath.NewVec3(-0.11, 0, 0)},
	{normalizedName: "rightLowerArm", namedName: "mixamorig:RightForeArm", parent: 8, offset: mmath.NewVec3(-0.26, 0, 0)},
	{normalizedName: "rightHand", namedName: "mixamorig:RightHand", parent: 9, offset: mmath.NewVec3(-0.25, 0, 0)},
}

// buildDemoSkeleton はリグ種別に応じた名前でTポーズ人型を構築する。
// 戻り値はスケルトンとIKルートに使うボーン名。
func buildDemoSkeleton(kind model.RigKind) (*model.Skeleton, string, error) {
	skeleton := model.NewSkeleton()
	indexes := make([]int, len(demoBoneSpecs))
	for i, spec := range demoBoneSpecs {
		parentIndex := model.InvalidBoneIndex
		if spec.parent >= 0 {
			parentIndex = indexes[spec.parent]
		}
		name := demoBoneName(spec, kind)
		index, err := skeleton.AppendBone(model.NewBone(name, parentIndex, spec.offset), model.NewTransform())
		if err != nil {
			return nil, "", fmt.Errorf("デモスケルトンの構築に失敗しました: %s: %w", name, err)
		}
		indexes[i] = index
	}
	return skeleton, demoBoneName(demoBoneSpecs[0], kind), nil
}

// demoBoneName はリグ種別に応じたボーン名を返す。
func demoBoneName(spec demoBoneSpec, kind model.RigKind) string {
	if kind == model.RigKindNamedConvention {
		return spec.namedName
	}
	return spec.normalizedName
}

// demoLeftHandPoses は左手のデモ軌跡を返す。
//
// 前方へ手を伸ばす3姿勢、リーチ超過1姿勢、末尾の原点姿勢(休止)で
// 通常追従・クランプ・リセットの3経路を一巡させる。
func demoLeftHandPoses() []tracking.Pose {
	return []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(0.55, 1.30, 0.15), mmath.NewQuaternionFromDegrees(0, 0, -15)),
		tracking.NewPose(mmath.NewVec3(0.45, 1.28, 0.30), mmath.NewQuaternionFromDegrees(0, -10, -25)),
		tracking.NewPose(mmath.NewVec3(0.38, 1.25, 0.42), mmath.NewQuaternionFromDegrees(0, -20, -35)),
		tracking.NewPose(mmath.NewVec3(0.90, 1.40, 0.60), mmath.NewQuaternionFromDegrees(0, -20, -35)),
		{},
	}
}

// demoRightHandPoses は右手のデモ軌跡を返す。左手軌跡の左右反転。
func demoRightHandPoses() []tracking.Pose {
	return []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(-0.55, 1.30, 0.15), mmath.NewQuaternionFromDegrees(0, 0, 15)),
		tracking.NewPose(mmath.NewVec3(-0.45, 1.28, 0.30), mmath.NewQuaternionFromDegrees(0, 10, 25)),
		tracking.NewPose(mmath.NewVec3(-0.38, 1.25, 0.42), mmath.NewQuaternionFromDegrees(0, 20, 35)),
		tracking.NewPose(mmath.NewVec3(-0.90, 1.40, 0.60), mmath.NewQuaternionFromDegrees(0, 20, 35)),
		{},
	}
}

// runRealtime は壁時計の経過時間でIK更新を駆動する。
func runRealtime(usecase *ikinteractor.AvatarIkUsecase, duration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	driver := mclock.NewDriver(0)
	return driver.Run(ctx, usecase.Tick)
}

// tickSummaryPrinter はIK更新イベントを集計する通知先を表す。
type tickSummaryPrinter struct {
	firedCount   int
	solvedCounts map[ikinteractor.ArmSide]int
	resetCounts  map[ikinteractor.ArmSide]int
	lastDistance map[ikinteractor.ArmSide]float64
}

// newTickSummaryPrinter は集計用の通知先を生成する。
func newTickSummaryPrinter() *tickSummaryPrinter {
	return &tickSummaryPrinter{
		solvedCounts: map[ikinteractor.ArmSide]int{},
		resetCounts:  map[ikinteractor.ArmSide]int{},
		lastDistance: map[ikinteractor.ArmSide]float64{},
	}
}

// ReportTickEvent はIK更新イベントを集計する。
func (p *tickSummaryPrinter) ReportTickEvent(event ikinteractor.TickEvent) {
	switch event.Type {
	case ikinteractor.TickEventTypeFired:
		p.firedCount++
	case ikinteractor.TickEventTypeArmSolved:
		p.solvedCounts[event.Arm]++
		p.lastDistance[event.Arm] = event.EffectorTargetDistance
	case ikinteractor.TickEventTypeArmReset:
		p.resetCounts[event.Arm]++
	}
}

// writeSummary は実行結果の集計を出力する。
func writeSummary(out io.Writer, summary *tickSummaryPrinter) {
	fmt.Fprintf(out, "[mu_vrm_ik] "+messages.LogTickSummary+"\n", summary.firedCount)
	for _, side := range []ikinteractor.ArmSide{ikinteractor.ArmSideLeft, ikinteractor.ArmSideRight} {
		fmt.Fprintf(out, "[mu_vrm_ik] %s腕: 解決%d回 リセット%d回 最終誤差%.4f\n",
			armSideLabel(side), summary.solvedCounts[side], summary.resetCounts[side], summary.lastDistance[side])
	}
}

// writeDebugViewSummary はチェーン可視化の状態を出力する。
func writeDebugViewSummary(out io.Writer, view *ikview.ChainView) {
	center := view.Center()
	fmt.Fprintf(out, "[mu_vrm_ik] チェーン表示: %d本 中心(%.3f, %.3f, %.3f)\n",
		len(view.Polylines()), center.X, center.Y, center.Z)
}

// armSideLabel は腕の表示名を返す。
func armSideLabel(side ikinteractor.ArmSide) string {
	if side == ikinteractor.ArmSideRight {
		return "右"
	}
	return "左"
}

// warningText は警告IDを表示文へ変換する。
func warningText(id string) string {
	switch id {
	case model.IkWarningLeftArmBoneMissing, model.IkWarningRightArmBoneMissing:
		return messages.MessageArmBoneMissing + ": " + id
	case model.IkWarningLeftPoseSourceMissing, model.IkWarningRightPoseSourceMissing:
		return messages.MessageSourceMissing + ": " + id
	default:
		return id
	}
}
