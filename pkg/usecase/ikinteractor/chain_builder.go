// 指示: miu200521358
package ikinteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

// targetBoneNameSuffix はIKターゲットボーン名の接尾辞。
const targetBoneNameSuffix = "Target"

// BuildChain は腕3ボーンからIKチェーンとリーチ状態を構築する。
//
// bonesは[上腕, 前腕, 手]の順。いずれかがnilの場合はその腕を無効化し、
// エラーではなく(nil, nil, nil)を返す。階層不整合は構成エラーとして返す。
// limitsは[前腕用, 上腕用]の順で、ここで一度だけラジアンへ変換される。
func BuildChain(
	skeleton *model.Skeleton,
	rootBone *model.Bone,
	chainName string,
	bones [3]*model.Bone,
	limits [ChainLinkCount]LinkLimitDegrees,
	offsetDegrees mmath.Vec3,
) (*Chain, *ReachState, error) {
	if skeleton == nil {
		return nil, nil, fmt.Errorf("スケルトンが未指定です")
	}
	if rootBone == nil {
		return nil, nil, fmt.Errorf("IKルートボーンが未指定です: %s", chainName)
	}
	if chainName == "" {
		return nil, nil, fmt.Errorf("チェーン名が空です")
	}

	upperArm, lowerArm, hand := bones[0], bones[1], bones[2]
	if upperArm == nil || lowerArm == nil || hand == nil {
		// 必須ボーン欠落は片腕無効化として扱う。構成として有効。
		return nil, nil, nil
	}

	if err := validateChainHierarchy(skeleton, rootBone, upperArm, lowerArm, hand, chainName); err != nil {
		return nil, nil, err
	}
	for _, limit := range limits {
		if err := limit.Validate(); err != nil {
			return nil, nil, fmt.Errorf("チェーンの回転制限が不正です: %s: %w", chainName, err)
		}
	}

	target, err := resolveOrCreateTargetBone(skeleton, rootBone, chainName, hand)
	if err != nil {
		return nil, nil, err
	}

	chain := &Chain{
		Name:     chainName,
		Target:   target,
		Effector: hand,
		Links: [ChainLinkCount]ChainLink{
			chainLinkIndexLowerArm: {Bone: lowerArm, Limit: limits[chainLinkIndexLowerArm].ToRadians()},
			chainLinkIndexUpperArm: {Bone: upperArm, Limit: limits[chainLinkIndexUpperArm].ToRadians()},
		},
		Calibration: buildWristCalibration(hand, offsetDegrees),
	}

	reach, err := NewReachState(skeleton, chain)
	if err != nil {
		return nil, nil, err
	}
	return chain, reach, nil
}

// validateChainHierarchy はチェーン3ボーンの親子関係を検証する。
func validateChainHierarchy(
	skeleton *model.Skeleton,
	rootBone *model.Bone,
	upperArm *model.Bone,
	lowerArm *model.Bone,
	hand *model.Bone,
	chainName string,
) error {
	indexes := map[int]struct{}{}
	for _, bone := range []*model.Bone{upperArm, lowerArm, hand} {
		if bone.Index() == model.InvalidBoneIndex {
			return fmt.Errorf("チェーンボーンがスケルトン未所属です: %s: %s", chainName, bone.Name())
		}
		if bone.Index() == rootBone.Index() {
			return fmt.Errorf("IKルートボーンがチェーンボーンと重複しています: %s: %s", chainName, bone.Name())
		}
		if _, exists := indexes[bone.Index()]; exists {
			return fmt.Errorf("チェーンボーンが重複しています: %s: %s", chainName, bone.Name())
		}
		indexes[bone.Index()] = struct{}{}
	}

	lowerUnderUpper, err := skeleton.IsAncestor(upperArm.Index(), lowerArm.Index())
	if err != nil {
		return fmt.Errorf("チェーン階層の検証に失敗しました: %s: %w", chainName, err)
	}
	if !lowerUnderUpper {
		return fmt.Errorf("前腕が上腕の子孫ではありません: %s: %s", chainName, lowerArm.Name())
	}
	handUnderLower, err := skeleton.IsAncestor(lowerArm.Index(), hand.Index())
	if err != nil {
		return fmt.Errorf("チェーン階層の検証に失敗しました: %s: %w", chainName, err)
	}
	if !handUnderLower {
		return fmt.Errorf("手が前腕の子孫ではありません: %s: %s", chainName, hand.Name())
	}

	for _, bone := range []*model.Bone{upperArm, lowerArm, hand} {
		rootUnderChain, err := skeleton.IsAncestor(bone.Index(), rootBone.Index())
		if err != nil {
			return fmt.Errorf("チェーン階層の検証に失敗しました: %s: %w", chainName, err)
		}
		if rootUnderChain {
			return fmt.Errorf("IKルートがチェーンボーンの子孫になっています: %s: %s", chainName, bone.Name())
		}
	}
	return nil
}

// resolveOrCreateTargetBone は既存ターゲットボーンを再利用するか、新規に合成する。
//
// 新規作成時は手首の現在ワールド位置をルートローカルへ変換して初期位置とし、
// 恒等の逆バインドを対で追加して両列の整合を維持する。
func resolveOrCreateTargetBone(
	skeleton *model.Skeleton,
	rootBone *model.Bone,
	chainName string,
	hand *model.Bone,
) (*model.Bone, error) {
	targetName := chainName + targetBoneNameSuffix
	if existing, exists := skeleton.GetByName(targetName); exists {
		if existing.ParentIndex != rootBone.Index() {
			return nil, fmt.Errorf("既存ターゲットボーンの親がIKルートではありません: %s", targetName)
		}
		return existing, nil
	}

	handWorld, err := skeleton.WorldPosition(hand.Index())
	if err != nil {
		return nil, fmt.Errorf("手首ワールド位置の取得に失敗しました: %s: %w", chainName, err)
	}
	rootWorld, err := skeleton.WorldTransform(rootBone.Index())
	if err != nil {
		return nil, fmt.Errorf("IKルートワールド姿勢の取得に失敗しました: %s: %w", chainName, err)
	}

	// 手首と同位置から開始することで、初回tickの補正量を0にする。
	localPosition := rootWorld.Rotation.Inverted().MulVec3(handWorld.Subed(rootWorld.Position))
	target := model.NewBone(targetName, rootBone.Index(), localPosition)
	target.IsSystem = true
	if _, err := skeleton.AppendBone(target, model.NewTransform()); err != nil {
		return nil, fmt.Errorf("ターゲットボーンの追加に失敗しました: %s: %w", targetName, err)
	}
	return target, nil
}

// buildWristCalibration は手首校正値をビルド時点の状態から取得する。
func buildWristCalibration(hand *model.Bone, offsetDegrees mmath.Vec3) WristCalibration {
	calibration := WristCalibration{
		Offset:       mmath.NewQuaternion(),
		RestRotation: hand.Rotation,
	}
	if !offsetDegrees.IsZero() {
		calibration.HasOffset = true
		calibration.Offset = mmath.NewQuaternionFromDegrees(offsetDegrees.X, offsetDegrees.Y, offsetDegrees.Z)
	}
	return calibration
}
