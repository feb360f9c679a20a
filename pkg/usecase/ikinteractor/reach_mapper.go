// 指示: miu200521358
package ikinteractor

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

// ReachState はコントローラー位置をターゲット位置へ写像するための適応状態を表す。
//
// 最大到達距離と最大観測距離はどちらも単調非減少で、縮むことはない。
// 両者の比率でコントローラー空間をアバターの腕長へスケールする。
type ReachState struct {
	initTargetPosition                   mmath.Vec3
	maxReachSquared                      float64
	maxObservedControllerDistanceSquared float64
}

// NewReachState は現在姿勢の上腕-手首距離を初期到達距離として状態を作る。
func NewReachState(skeleton *model.Skeleton, chain *Chain) (*ReachState, error) {
	if skeleton == nil {
		return nil, fmt.Errorf("スケルトンが未指定です")
	}
	if chain == nil || chain.Target == nil || chain.Effector == nil {
		return nil, fmt.Errorf("チェーンが未構築です")
	}
	upperArm := chain.UpperArmLink()
	if upperArm.Bone == nil {
		return nil, fmt.Errorf("上腕リンクが未設定です: %s", chain.Name)
	}

	shoulderWorld, err := skeleton.WorldPosition(upperArm.Bone.Index())
	if err != nil {
		return nil, fmt.Errorf("上腕ワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}
	effectorWorld, err := skeleton.WorldPosition(chain.Effector.Index())
	if err != nil {
		return nil, fmt.Errorf("手首ワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}

	return &ReachState{
		initTargetPosition: chain.Target.Position,
		maxReachSquared:    shoulderWorld.DistanceSquared(effectorWorld),
	}, nil
}

// Update はコントローラーワールド位置からターゲットのローカル位置を算出する。
//
// 到達距離と観測距離を先に更新した上で、コントローラーが到達圏外なら
// 肩からの方向を保ったまま比率スケールで圏内へ引き込む。
func (rs *ReachState) Update(
	skeleton *model.Skeleton,
	chain *Chain,
	controllerWorldPosition mmath.Vec3,
) (mmath.Vec3, error) {
	if skeleton == nil {
		return mmath.ZERO_VEC3, fmt.Errorf("スケルトンが未指定です")
	}
	if chain == nil || chain.Target == nil || chain.Effector == nil {
		return mmath.ZERO_VEC3, fmt.Errorf("チェーンが未構築です")
	}
	upperArm := chain.UpperArmLink()
	if upperArm.Bone == nil {
		return mmath.ZERO_VEC3, fmt.Errorf("上腕リンクが未設定です: %s", chain.Name)
	}

	shoulderWorld, err := skeleton.WorldPosition(upperArm.Bone.Index())
	if err != nil {
		return mmath.ZERO_VEC3, fmt.Errorf("上腕ワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}
	effectorWorld, err := skeleton.WorldPosition(chain.Effector.Index())
	if err != nil {
		return mmath.ZERO_VEC3, fmt.Errorf("手首ワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}

	if reachSquared := shoulderWorld.DistanceSquared(effectorWorld); reachSquared > rs.maxReachSquared {
		rs.maxReachSquared = reachSquared
	}
	controllerDistanceSquared := shoulderWorld.DistanceSquared(controllerWorldPosition)
	if controllerDistanceSquared > rs.maxObservedControllerDistanceSquared {
		rs.maxObservedControllerDistanceSquared = controllerDistanceSquared
	}

	worldTarget := controllerWorldPosition
	if controllerDistanceSquared > rs.maxReachSquared && rs.maxObservedControllerDistanceSquared > 0 {
		alpha := math.Sqrt(rs.maxReachSquared / rs.maxObservedControllerDistanceSquared)
		worldTarget = shoulderWorld.Lerp(controllerWorldPosition, alpha)
	}

	parentWorld, err := skeleton.WorldTransform(chain.Target.ParentIndex)
	if err != nil {
		return mmath.ZERO_VEC3, fmt.Errorf("ターゲット親ワールド姿勢の取得に失敗しました: %s: %w", chain.Name, err)
	}
	return parentWorld.Rotation.Inverted().MulVec3(worldTarget.Subed(parentWorld.Position)), nil
}

// Reset はターゲット位置と手首回転を構築時の基準姿勢へ戻す。
//
// 到達距離と観測距離は保持する。トラッキングの一時停止で学習済みの
// スケールを失わないため。
func (rs *ReachState) Reset(chain *Chain) {
	if chain == nil {
		return
	}
	if chain.Target != nil {
		chain.Target.Position = rs.initTargetPosition
	}
	if chain.Effector != nil {
		chain.Effector.Rotation = chain.Calibration.RestRotation
	}
}

// MaxReachSquared は現在の最大到達距離の二乗を返す。
func (rs *ReachState) MaxReachSquared() float64 {
	return rs.maxReachSquared
}

// MaxObservedControllerDistanceSquared は現在の最大観測距離の二乗を返す。
func (rs *ReachState) MaxObservedControllerDistanceSquared() float64 {
	return rs.maxObservedControllerDistanceSquared
}

// InitTargetPosition は構築時に記録したターゲットの初期ローカル位置を返す。
func (rs *ReachState) InitTargetPosition() mmath.Vec3 {
	return rs.initTargetPosition
}
