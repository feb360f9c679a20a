// 指示: miu200521358
// Package ikinteractor はVRコントローラー姿勢をアバター腕ボーンへ写像するIKユースケースを提供する。
package ikinteractor

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_ik/pkg/usecase/port/mtracking"
)

const (
	leftArmChainName  = "leftArmIk"
	rightArmChainName = "rightArmIk"
)

// IChainDebugView はIKチェーン可視化の接続契約を表す。
type IChainDebugView interface {
	// Refresh は現在のチェーン状態で表示を更新する。
	Refresh(skeleton *model.Skeleton, chains []*Chain)
	// Detach は可視化をシーンから切り離す。
	Detach()
}

// AvatarIkUsecaseDeps はアバターIKユースケースの依存を表す。
type AvatarIkUsecaseDeps struct {
	Skeleton    *model.Skeleton
	LeftSource  mtracking.IPoseSource
	RightSource mtracking.IPoseSource
	DebugView   IChainDebugView
}

// armState は片腕分の実行時状態を表す。chainがnilの腕は無効化済み。
type armState struct {
	side   ArmSide
	chain  *Chain
	reach  *ReachState
	source mtracking.IPoseSource
}

// AvatarIkUsecase は両腕のIK更新をまとめたユースケースを表す。
//
// 単一スレッドから駆動する前提で、Tickは再入不可。
type AvatarIkUsecase struct {
	skeleton  *model.Skeleton
	config    *Config
	scheduler *TickScheduler
	solver    *Solver
	arms      []*armState
	reporters []ITickEventReporter
	warnings  []string
	debugView IChainDebugView
	disposed  bool
}

// NewAvatarIkUsecase はアバターIKユースケースを生成する。
//
// 腕ボーンの欠落は警告として記録して該当腕を無効化する。ルートボーンの
// 欠落やチェーン階層の不整合は構成エラーとして返す。
func NewAvatarIkUsecase(deps AvatarIkUsecaseDeps, config *Config) (*AvatarIkUsecase, error) {
	if deps.Skeleton == nil {
		return nil, fmt.Errorf("スケルトンが未指定です")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("IK構成が不正です: %w", err)
	}
	configCopy, err := config.Copy()
	if err != nil {
		return nil, err
	}

	scheduler, err := NewTickScheduler(configCopy.tickInterval())
	if err != nil {
		return nil, err
	}

	rootBone, exists := deps.Skeleton.GetByName(configCopy.RootBoneName)
	if !exists {
		return nil, fmt.Errorf("ルートボーンが見つかりません: %s", configCopy.RootBoneName)
	}
	resolver, err := model.NewBoneResolver(configCopy.RigKind)
	if err != nil {
		return nil, err
	}

	uc := &AvatarIkUsecase{
		skeleton:  deps.Skeleton,
		config:    configCopy,
		scheduler: scheduler,
		solver:    NewSolver(),
	}
	if configCopy.Debug && deps.DebugView != nil {
		uc.debugView = deps.DebugView
	}

	if err := uc.buildArm(resolver, rootBone, ArmSideLeft, leftArmChainName, configCopy.Left, deps.LeftSource); err != nil {
		return nil, err
	}
	if err := uc.buildArm(resolver, rootBone, ArmSideRight, rightArmChainName, configCopy.Right, deps.RightSource); err != nil {
		return nil, err
	}
	return uc, nil
}

// buildArm は片腕のチェーンを構築して実行時状態へ登録する。
func (uc *AvatarIkUsecase) buildArm(
	resolver model.BoneResolver,
	rootBone *model.Bone,
	side ArmSide,
	chainName string,
	armConfig ArmConfig,
	source mtracking.IPoseSource,
) error {
	bones := [3]*model.Bone{}
	for i, pair := range []model.HumanBonePair{model.UPPER_ARM, model.LOWER_ARM, model.HAND} {
		key := pair.Left()
		if side == ArmSideRight {
			key = pair.Right()
		}
		if bone, found := resolver.Resolve(uc.skeleton, key); found {
			bones[i] = bone
		}
	}

	chain, reach, err := BuildChain(
		uc.skeleton,
		rootBone,
		chainName,
		bones,
		[ChainLinkCount]LinkLimitDegrees{
			chainLinkIndexLowerArm: armConfig.LowerArmLimitDegrees,
			chainLinkIndexUpperArm: armConfig.UpperArmLimitDegrees,
		},
		armConfig.ControllerOffsetDegrees,
	)
	if err != nil {
		return err
	}
	if chain == nil {
		uc.warnings = append(uc.warnings, armBoneMissingWarning(side))
	}
	if source == nil {
		uc.warnings = append(uc.warnings, poseSourceMissingWarning(side))
	}
	uc.arms = append(uc.arms, &armState{side: side, chain: chain, reach: reach, source: source})
	return nil
}

// Tick は経過時間を与えてIK更新を進める。
//
// スケジューラが発火しない呼び出しは何もせずnilを返す。発火した場合は
// 両腕を同一更新内で処理し、途中の腕でエラーが出てもそこで打ち切る。
func (uc *AvatarIkUsecase) Tick(deltaSeconds float64) error {
	if uc.disposed {
		return fmt.Errorf("破棄済みのIKユースケースは更新できません")
	}
	if deltaSeconds < 0 || math.IsNaN(deltaSeconds) {
		return fmt.Errorf("経過時間が不正です: %f", deltaSeconds)
	}
	if !uc.scheduler.Advance(deltaSeconds) {
		return nil
	}

	uc.notifyTickEvent(TickEvent{Type: TickEventTypeFired})
	for _, arm := range uc.arms {
		if err := uc.updateArm(arm); err != nil {
			return err
		}
	}
	if uc.debugView != nil {
		uc.debugView.Refresh(uc.skeleton, uc.chainsForView())
	}
	return nil
}

// updateArm は片腕分のIK更新を行う。
func (uc *AvatarIkUsecase) updateArm(arm *armState) error {
	if arm.chain == nil || arm.source == nil {
		return nil
	}

	pose, ok := arm.source.Pose()
	if !ok {
		uc.notifyTickEvent(TickEvent{Type: TickEventTypeArmIdle, Arm: arm.side})
		return nil
	}
	if pose.IsInactive() {
		arm.reach.Reset(arm.chain)
		uc.notifyTickEvent(TickEvent{Type: TickEventTypeArmReset, Arm: arm.side})
		return nil
	}

	targetLocal, err := arm.reach.Update(uc.skeleton, arm.chain, pose.Position)
	if err != nil {
		return err
	}
	arm.chain.Target.Position = targetLocal

	if err := uc.solver.Solve(uc.skeleton, arm.chain); err != nil {
		return err
	}
	if err := ApplyWristOrientation(uc.skeleton, arm.chain.Effector, pose.Rotation, arm.chain.Calibration); err != nil {
		return err
	}

	distance, err := uc.effectorTargetDistance(arm.chain)
	if err != nil {
		return err
	}
	uc.notifyTickEvent(TickEvent{
		Type:                   TickEventTypeArmSolved,
		Arm:                    arm.side,
		EffectorTargetDistance: distance,
	})
	return nil
}

// effectorTargetDistance は解決後の手首とターゲットのワールド距離を返す。
func (uc *AvatarIkUsecase) effectorTargetDistance(chain *Chain) (float64, error) {
	effectorWorld, err := uc.skeleton.WorldPosition(chain.Effector.Index())
	if err != nil {
		return 0, fmt.Errorf("手首ワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}
	targetWorld, err := uc.skeleton.WorldPosition(chain.Target.Index())
	if err != nil {
		return 0, fmt.Errorf("ターゲットワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}
	return effectorWorld.Distance(targetWorld), nil
}

// chainsForView は可視化対象のチェーン一覧を返す。無効化済みの腕は含めない。
func (uc *AvatarIkUsecase) chainsForView() []*Chain {
	chains := make([]*Chain, 0, len(uc.arms))
	for _, arm := range uc.arms {
		if arm.chain == nil {
			continue
		}
		chains = append(chains, arm.chain)
	}
	return chains
}

// Dispose はユースケースを破棄する。複数回呼んでも安全。
//
// 追加済みのターゲットボーンはスケルトン側に残す。ボーン列の index 整合を
// 呼び出し側の他システムが前提にしているため。
func (uc *AvatarIkUsecase) Dispose() {
	if uc.disposed {
		return
	}
	if uc.debugView != nil {
		uc.debugView.Detach()
		uc.debugView = nil
	}
	uc.notifyTickEvent(TickEvent{Type: TickEventTypeDisposed})
	uc.arms = nil
	uc.solver = nil
	uc.reporters = nil
	uc.disposed = true
}

// RegisterTickReporter はIK更新イベントの通知先を登録する。
func (uc *AvatarIkUsecase) RegisterTickReporter(reporter ITickEventReporter) {
	if reporter == nil || uc.disposed {
		return
	}
	uc.reporters = append(uc.reporters, reporter)
}

// notifyTickEvent は登録済みの全通知先へイベントを配る。
func (uc *AvatarIkUsecase) notifyTickEvent(event TickEvent) {
	for _, reporter := range uc.reporters {
		reportTickEvent(reporter, event)
	}
}

// Chain は指定した腕のチェーンを返す。無効化済みの腕はnil。
func (uc *AvatarIkUsecase) Chain(side ArmSide) *Chain {
	for _, arm := range uc.arms {
		if arm.side == side {
			return arm.chain
		}
	}
	return nil
}

// Reach は指定した腕のリーチ状態を返す。無効化済みの腕はnil。
func (uc *AvatarIkUsecase) Reach(side ArmSide) *ReachState {
	for _, arm := range uc.arms {
		if arm.side == side {
			return arm.reach
		}
	}
	return nil
}

// Warnings は構築時に記録した警告IDの一覧を返す。
func (uc *AvatarIkUsecase) Warnings() []string {
	return uc.warnings
}

// armBoneMissingWarning は腕ボーン欠落警告のIDを返す。
func armBoneMissingWarning(side ArmSide) string {
	if side == ArmSideRight {
		return model.IkWarningRightArmBoneMissing
	}
	return model.IkWarningLeftArmBoneMissing
}

// poseSourceMissingWarning は姿勢入力欠落警告のIDを返す。
func poseSourceMissingWarning(side ArmSide) string {
	if side == ArmSideRight {
		return model.IkWarningRightPoseSourceMissing
	}
	return model.IkWarningLeftPoseSourceMissing
}
