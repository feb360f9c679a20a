// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_vrm_ik/pkg/adapter/io_tracking"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/tracking"
	"github.com/miu200521358/mu_vrm_ik/pkg/usecase/ikinteractor"
)

// batchConfig はシナリオ検証の実行設定を表す。
type batchConfig struct {
	FailFast bool
	Verbose  bool
}

// ikScenario は1件分のIK検証シナリオを表す。
//
// DropBonesに挙げたボーンはスケルトン構築時に除外される(子孫も連鎖除外)。
// LeftPoses/RightPosesは非ループ台本として与え、末尾姿勢が保持される。
type ikScenario struct {
	Name           string
	RigKind        model.RigKind
	DropBones      []string
	OmitLeftSource bool
	Ticks          int
	LeftPoses      []tracking.Pose
	RightPoses     []tracking.Pose
	Verify         func(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error
}

// scenarioResult は1シナリオ分の検証結果を表す。
type scenarioResult struct {
	Scenario  ikScenario
	Status    string
	Duration  time.Duration
	Err       error
	EventInfo string
}

// main はIK追従のシナリオ一括検証を実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括検証を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	scenarios := buildScenarios()
	if len(scenarios) == 0 {
		fmt.Fprintln(os.Stderr, "検証対象シナリオがありません")
		return 2
	}

	results := executeBatchVerification(config, scenarios)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	verbose := flag.Bool("verbose", false, "シナリオごとのイベント集計を表示する")
	flag.Parse()

	return batchConfig{
		FailFast: *failFast,
		Verbose:  *verbose,
	}, nil
}

// executeBatchVerification は全シナリオの検証を順次実行する。
func executeBatchVerification(config batchConfig, scenarios []ikScenario) []scenarioResult {
	results := make([]scenarioResult, 0, len(scenarios))
	total := len(scenarios)
	for i, scenario := range scenarios {
		fmt.Printf("[%d/%d] 検証開始: scenario=%s\n", i+1, total, scenario.Name)
		result := runScenario(scenario)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 検証成功: scenario=%s elapsed=%s\n", i+1, total, scenario.Name, result.Duration.Round(time.Microsecond))
			if config.Verbose && strings.TrimSpace(result.EventInfo) != "" {
				fmt.Printf("[%d/%d] イベント集計: %s\n", i+1, total, result.EventInfo)
			}
		default:
			fmt.Printf("[%d/%d] 検証失敗: scenario=%s reason=%v\n", i+1, total, scenario.Name, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// runScenario は1シナリオ分の検証を実行する。
func runScenario(scenario ikScenario) scenarioResult {
	result := scenarioResult{
		Scenario: scenario,
		Status:   "failed",
	}

	skeleton, rootBoneName, err := buildScenarioSkeleton(scenario)
	if err != nil {
		result.Err = fmt.Errorf("スケルトン構築に失敗しました: %w", err)
		return result
	}

	config := ikinteractor.NewDefaultConfig()
	config.RigKind = scenario.RigKind
	config.RootBoneName = rootBoneName

	var leftSource *io_tracking.ScriptSource
	if !scenario.OmitLeftSource {
		leftSource = io_tracking.NewScriptSource(scenario.LeftPoses, false)
	}
	deps := ikinteractor.AvatarIkUsecaseDeps{
		Skeleton:    skeleton,
		RightSource: io_tracking.NewScriptSource(scenario.RightPoses, false),
	}
	if leftSource != nil {
		deps.LeftSource = leftSource
	}

	usecase, err := ikinteractor.NewAvatarIkUsecase(deps, config)
	if err != nil {
		result.Err = fmt.Errorf("IKユースケース構築に失敗しました: %w", err)
		return result
	}
	defer usecase.Dispose()

	collector := newTickEventCollector()
	usecase.RegisterTickReporter(collector)

	startedAt := time.Now()
	for i := 0; i < scenario.Ticks; i++ {
		if err := usecase.Tick(ikinteractor.DefaultTickInterval); err != nil {
			result.Err = fmt.Errorf("IK更新に失敗しました: %w", err)
			return result
		}
	}
	if err := scenario.Verify(usecase, skeleton, collector); err != nil {
		result.Err = err
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.EventInfo = collector.Summary()
	return result
}

// printBatchSummary は検証結果の集計を標準出力へ表示する。
func printBatchSummary(results []scenarioResult) {
	succeeded := 0
	failed := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		default:
			failed++
		}
	}
	fmt.Printf("IK検証サマリ: total=%d succeeded=%d failed=%d\n", len(results), succeeded, failed)
}

// scenarioBoneSpec は検証スケルトンの1ボーン定義を表す。親は名前参照。
type scenarioBoneSpec struct {
	name       string
	namedName  string
	parentName string
	offset     mmath.Vec3
}

// scenarioBoneSpecs はTポーズ人型検証スケルトンの定義列。オフセットはメートル。
var scenarioBoneSpecs = []scenarioBoneSpec{
	{name: "hips", namedName: "mixamorig:Hips", parentName: "", offset: mmath.NewVec3(0, 1.00, 0)},
	{name: "spine", namedName: "mixamorig:Spine", parentName: "hips", offset: mmath.NewVec3(0, 0.12, 0)},
	{name: "chest", namedName: "mixamorig:Spine2", parentName: "spine", offset: mmath.NewVec3(0, 0.14, 0)},
	{name: "leftShoulder", namedName: "mixamorig:LeftShoulder", parentName: "chest", offset: mmath.NewVec3(0.07, 0.11, 0)},
	{name: "leftUpperArm", namedName: "mixamorig:LeftArm", parentName: "leftShoulder", offset: mmath.NewVec3(0.12, 0, 0)},
	{name: "leftLowerArm", namedName: "mixamorig:LeftForeArm", parentName: "leftUpperArm", offset: mmath.NewVec3(0.27, 0, 0)},
	{name: "leftHand", namedName: "mixamorig:LeftHand", parentName: "leftLowerArm", offset: mmath.NewVec3(0.24, 0, 0)},
	{name: "rightShoulder", namedName: "mixamorig:RightShoulder", parentName: "chest", offset: mmath.NewVec3(-0.07, 0.11, 0)},
	{name: "rightUpperArm", namedName: "mixamorig:RightArm", parentName: "rightShoulder", offset: mmath.NewVec3(-0.12, 0, 0)},
	{name: "rightLowerArm", namedName: "mixamorig:RightForeArm", parentName: "rightUpperArm", offset: mmath.NewVec3(-0.27, 0, 0)},
	{name: "rightHand", namedName: "mixamorig:RightHand", parentName: "rightLowerArm", offset: mmath.NewVec3(-0.24, 0, 0)},
}

// buildScenarioSkeleton はシナリオ指定に従って検証スケルトンを構築する。
// 除外ボーンの子孫は連鎖して除外される。戻り値はスケルトンとIKルート名。
func buildScenarioSkeleton(scenario ikScenario) (*model.Skeleton, string, error) {
	drops := map[string]bool{}
	for _, name := range scenario.DropBones {
		drops[name] = true
	}

	skeleton := model.NewSkeleton()
	indexes := map[string]int{}
	for _, spec := range scenarioBoneSpecs {
		if drops[spec.name] {
			continue
		}
		parentIndex := model.InvalidBoneIndex
		if spec.parentName != "" {
			resolved, exists := indexes[spec.parentName]
			if !exists {
				// 親が除外済みなら子も連鎖除外する。
				drops[spec.name] = true
				continue
			}
			parentIndex = resolved
		}
		name := scenarioBoneName(spec, scenario.RigKind)
		index, err := skeleton.AppendBone(model.NewBone(name, parentIndex, spec.offset), model.NewTransform())
		if err != nil {
			return nil, "", fmt.Errorf("ボーン追加に失敗しました: %s: %w", name, err)
		}
		indexes[spec.name] = index
	}
	return skeleton, scenarioBoneName(scenarioBoneSpecs[0], scenario.RigKind), nil
}

// scenarioBoneName はリグ種別に応じたボーン名を返す。
func scenarioBoneName(spec scenarioBoneSpec, kind model.RigKind) string {
	if kind == model.RigKindNamedConvention {
		return spec.namedName
	}
	return spec.name
}

// tickEventCollector はIK更新イベントを収集する。
type tickEventCollector struct {
	eventCounts  map[ikinteractor.TickEventType]int
	armCounts    map[ikinteractor.ArmSide]map[ikinteractor.TickEventType]int
	lastDistance map[ikinteractor.ArmSide]float64
}

// newTickEventCollector はIK更新イベント収集器を生成する。
func newTickEventCollector() *tickEventCollector {
	return &tickEventCollector{
		eventCounts:  map[ikinteractor.TickEventType]int{},
		armCounts:    map[ikinteractor.ArmSide]map[ikinteractor.TickEventType]int{},
		lastDistance: map[ikinteractor.ArmSide]float64{},
	}
}

// ReportTickEvent はIK更新イベントを収集する。
func (collector *tickEventCollector) ReportTickEvent(event ikinteractor.TickEvent) {
	if collector == nil {
		return
	}
	collector.eventCounts[event.Type]++
	if event.Arm == "" {
		return
	}
	if collector.armCounts[event.Arm] == nil {
		collector.armCounts[event.Arm] = map[ikinteractor.TickEventType]int{}
	}
	collector.armCounts[event.Arm][event.Type]++
	if event.Type == ikinteractor.TickEventTypeArmSolved {
		collector.lastDistance[event.Arm] = event.EffectorTargetDistance
	}
}

// armCount は指定腕の指定イベント数を返す。
func (collector *tickEventCollector) armCount(side ikinteractor.ArmSide, eventType ikinteractor.TickEventType) int {
	counts, exists := collector.armCounts[side]
	if !exists {
		return 0
	}
	return counts[eventType]
}

// Summary は収集したイベントの要約文字列を返す。
func (collector *tickEventCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for eventType, count := range collector.eventCounts {
		types = append(types, fmt.Sprintf("%s=%d", eventType, count))
	}
	sort.Strings(types)
	return strings.Join(types, " ")
}

// buildScenarios は検証シナリオ一覧を構築する。
func buildScenarios() []ikScenario {
	return []ikScenario{
		{
			Name:       "reachable_tracking",
			RigKind:    model.RigKindNormalized,
			Ticks:      8,
			LeftPoses:  reachableLeftScenarioPoses(),
			RightPoses: reachableRightScenarioPoses(),
			Verify:     verifyReachableTracking,
		},
		{
			Name:    "clamp_beyond_reach",
			RigKind: model.RigKindNormalized,
			Ticks:   4,
			LeftPoses: []tracking.Pose{
				tracking.NewPose(mmath.NewVec3(1.50, 1.40, 0.50), mmath.NewQuaternionFromDegrees(0, 0, -20)),
			},
			RightPoses: reachableRightScenarioPoses(),
			Verify:     verifyClampBeyondReach,
		},
		{
			Name:       "inactive_reset",
			RigKind:    model.RigKindNormalized,
			Ticks:      6,
			LeftPoses:  resetLeftScenarioPoses(),
			RightPoses: reachableRightScenarioPoses(),
			Verify:     verifyInactiveReset,
		},
		{
			Name:       "missing_arm_bones",
			RigKind:    model.RigKindNormalized,
			DropBones:  []string{"leftLowerArm"},
			Ticks:      3,
			LeftPoses:  reachableLeftScenarioPoses(),
			RightPoses: reachableRightScenarioPoses(),
			Verify:     verifyMissingArmBones,
		},
		{
			Name:           "missing_source",
			RigKind:        model.RigKindNormalized,
			OmitLeftSource: true,
			Ticks:          3,
			RightPoses:     reachableRightScenarioPoses(),
			Verify:         verifyMissingSource,
		},
		{
			Name:       "named_rig",
			RigKind:    model.RigKindNamedConvention,
			Ticks:      4,
			LeftPoses:  reachableLeftScenarioPoses(),
			RightPoses: reachableRightScenarioPoses(),
			Verify:     verifyNamedRig,
		},
	}
}

// reachableLeftScenarioPoses はリーチ圏内で前方へ伸ばす左手台本を返す。
func reachableLeftScenarioPoses() []tracking.Pose {
	return []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(0.55, 1.30, 0.10), mmath.NewQuaternionFromDegrees(0, 0, -20)),
		tracking.NewPose(mmath.NewVec3(0.50, 1.28, 0.20), mmath.NewQuaternionFromDegrees(0, -15, -30)),
	}
}

// reachableRightScenarioPoses は左手台本の左右反転を返す。
func reachableRightScenarioPoses() []tracking.Pose {
	return []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(-0.55, 1.30, 0.10), mmath.NewQuaternionFromDegrees(0, 0, 20)),
		tracking.NewPose(mmath.NewVec3(-0.50, 1.28, 0.20), mmath.NewQuaternionFromDegrees(0, 15, 30)),
	}
}

// resetLeftScenarioPoses は3姿勢の後に原点姿勢(休止)へ落ちる左手台本を返す。
func resetLeftScenarioPoses() []tracking.Pose {
	return []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(0.55, 1.30, 0.10), mmath.NewQuaternionFromDegrees(0, 0, -20)),
		tracking.NewPose(mmath.NewVec3(0.50, 1.28, 0.20), mmath.NewQuaternionFromDegrees(0, -15, -30)),
		tracking.NewPose(mmath.NewVec3(0.52, 1.26, 0.15), mmath.NewQuaternionFromDegrees(0, -10, -25)),
		{},
	}
}

// verifyReachableTracking はリーチ圏内追従の性質を検証する。
func verifyReachableTracking(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error {
	if got := events.eventCounts[ikinteractor.TickEventTypeFired]; got != 8 {
		return fmt.Errorf("発火回数が不一致です: %d", got)
	}
	for _, side := range []ikinteractor.ArmSide{ikinteractor.ArmSideLeft, ikinteractor.ArmSideRight} {
		if got := events.armCount(side, ikinteractor.TickEventTypeArmSolved); got != 8 {
			return fmt.Errorf("%s腕の解決回数が不一致です: %d", side, got)
		}
		if distance := events.lastDistance[side]; distance >= 0.12 {
			return fmt.Errorf("%s腕の最終誤差が大きすぎます: %f", side, distance)
		}
		reach := usecase.Reach(side)
		if reach == nil {
			return fmt.Errorf("%s腕のリーチ状態がありません", side)
		}
		if math.Abs(reach.MaxReachSquared()-0.2601) > 1e-9 {
			return fmt.Errorf("%s腕の最大リーチが不一致です: %f", side, reach.MaxReachSquared())
		}
		if reach.MaxObservedControllerDistanceSquared() < 0.1442-1e-9 {
			return fmt.Errorf("%s腕の観測最大距離が小さすぎます: %f", side, reach.MaxObservedControllerDistanceSquared())
		}
	}
	return nil
}

// verifyClampBeyondReach はリーチ超過時のターゲット引き戻しを検証する。
func verifyClampBeyondReach(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error {
	if got := events.armCount(ikinteractor.ArmSideLeft, ikinteractor.TickEventTypeArmSolved); got != 4 {
		return fmt.Errorf("左腕の解決回数が不一致です: %d", got)
	}
	if got := events.armCount(ikinteractor.ArmSideRight, ikinteractor.TickEventTypeArmSolved); got != 4 {
		return fmt.Errorf("右腕の解決回数が不一致です: %d", got)
	}

	chain := usecase.Chain(ikinteractor.ArmSideLeft)
	if chain == nil {
		return errors.New("左腕チェーンがありません")
	}
	shoulderWorld, err := skeleton.WorldPosition(chain.UpperArmLink().Bone.Index())
	if err != nil {
		return fmt.Errorf("肩ワールド位置の取得に失敗しました: %w", err)
	}
	targetWorld, err := skeleton.WorldPosition(chain.Target.Index())
	if err != nil {
		return fmt.Errorf("ターゲットワールド位置の取得に失敗しました: %w", err)
	}
	if got := shoulderWorld.Distance(targetWorld); math.Abs(got-0.51) > 1e-6 {
		return fmt.Errorf("ターゲットが最大リーチ球面上にありません: %f", got)
	}

	reach := usecase.Reach(ikinteractor.ArmSideLeft)
	if reach == nil {
		return errors.New("左腕のリーチ状態がありません")
	}
	if math.Abs(reach.MaxObservedControllerDistanceSquared()-1.967) > 1e-9 {
		return fmt.Errorf("観測最大距離が不一致です: %f", reach.MaxObservedControllerDistanceSquared())
	}
	return nil
}

// verifyInactiveReset は休止姿勢での基準復帰を検証する。
func verifyInactiveReset(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error {
	if got := events.armCount(ikinteractor.ArmSideLeft, ikinteractor.TickEventTypeArmSolved); got != 3 {
		return fmt.Errorf("左腕の解決回数が不一致です: %d", got)
	}
	if got := events.armCount(ikinteractor.ArmSideLeft, ikinteractor.TickEventTypeArmReset); got != 3 {
		return fmt.Errorf("左腕のリセット回数が不一致です: %d", got)
	}

	chain := usecase.Chain(ikinteractor.ArmSideLeft)
	if chain == nil {
		return errors.New("左腕チェーンがありません")
	}
	targetWorld, err := skeleton.WorldPosition(chain.Target.Index())
	if err != nil {
		return fmt.Errorf("ターゲットワールド位置の取得に失敗しました: %w", err)
	}
	if !targetWorld.NearEquals(mmath.NewVec3(0.70, 1.37, 0), 1e-6) {
		return fmt.Errorf("ターゲットがレスト位置へ戻っていません: %v", targetWorld)
	}
	if !chain.Effector.Rotation.NearEquals(mmath.NewQuaternion(), 1e-9) {
		return fmt.Errorf("手首回転がレスト姿勢へ戻っていません: %v", chain.Effector.Rotation)
	}

	reach := usecase.Reach(ikinteractor.ArmSideLeft)
	if reach == nil {
		return errors.New("左腕のリーチ状態がありません")
	}
	if reach.MaxObservedControllerDistanceSquared() <= 0 {
		return errors.New("リセットで観測最大距離が失われています")
	}
	return nil
}

// verifyMissingArmBones は腕ボーン欠落時の片腕無効化を検証する。
func verifyMissingArmBones(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error {
	if !containsWarning(usecase.Warnings(), model.IkWarningLeftArmBoneMissing) {
		return fmt.Errorf("左腕欠落警告がありません: %v", usecase.Warnings())
	}
	if usecase.Chain(ikinteractor.ArmSideLeft) != nil {
		return errors.New("欠落腕のチェーンが構築されています")
	}
	if usecase.Reach(ikinteractor.ArmSideLeft) != nil {
		return errors.New("欠落腕のリーチ状態が構築されています")
	}
	if got := len(events.armCounts[ikinteractor.ArmSideLeft]); got != 0 {
		return fmt.Errorf("欠落腕でイベントが発生しています: %d", got)
	}
	if got := events.armCount(ikinteractor.ArmSideRight, ikinteractor.TickEventTypeArmSolved); got != 3 {
		return fmt.Errorf("右腕の解決回数が不一致です: %d", got)
	}
	return nil
}

// verifyMissingSource は入力元未設定時の放置動作を検証する。
func verifyMissingSource(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error {
	if !containsWarning(usecase.Warnings(), model.IkWarningLeftPoseSourceMissing) {
		return fmt.Errorf("左腕入力欠落警告がありません: %v", usecase.Warnings())
	}
	chain := usecase.Chain(ikinteractor.ArmSideLeft)
	if chain == nil {
		return errors.New("入力欠落でもチェーンは構築されるべきです")
	}
	identity := mmath.NewQuaternion()
	if !chain.LowerArmLink().Bone.Rotation.NearEquals(identity, 1e-12) {
		return errors.New("入力欠落の前腕が回転しています")
	}
	if !chain.UpperArmLink().Bone.Rotation.NearEquals(identity, 1e-12) {
		return errors.New("入力欠落の上腕が回転しています")
	}
	if !chain.Effector.Rotation.NearEquals(identity, 1e-12) {
		return errors.New("入力欠落の手首が回転しています")
	}
	if got := len(events.armCounts[ikinteractor.ArmSideLeft]); got != 0 {
		return fmt.Errorf("入力欠落腕でイベントが発生しています: %d", got)
	}
	if got := events.armCount(ikinteractor.ArmSideRight, ikinteractor.TickEventTypeArmSolved); got != 3 {
		return fmt.Errorf("右腕の解決回数が不一致です: %d", got)
	}
	return nil
}

// verifyNamedRig は命名規約リグでの両腕追従を検証する。
func verifyNamedRig(usecase *ikinteractor.AvatarIkUsecase, skeleton *model.Skeleton, events *tickEventCollector) error {
	if len(usecase.Warnings()) != 0 {
		return fmt.Errorf("警告が発生しています: %v", usecase.Warnings())
	}
	for _, side := range []ikinteractor.ArmSide{ikinteractor.ArmSideLeft, ikinteractor.ArmSideRight} {
		if usecase.Chain(side) == nil {
			return fmt.Errorf("%s腕のチェーンがありません", side)
		}
		if got := events.armCount(side, ikinteractor.TickEventTypeArmSolved); got != 4 {
			return fmt.Errorf("%s腕の解決回数が不一致です: %d", side, got)
		}
		if distance := events.lastDistance[side]; distance >= 0.2 {
			return fmt.Errorf("%s腕の最終誤差が大きすぎます: %f", side, distance)
		}
	}
	return nil
}

// containsWarning は警告一覧に指定IDが含まれるか判定する。
func containsWarning(warnings []string, target string) bool {
	for _, warning := range warnings {
		if warning == target {
			return true
		}
	}
	return false
}
