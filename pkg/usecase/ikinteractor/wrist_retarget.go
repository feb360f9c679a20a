// 指示: miu200521358
package ikinteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

// ApplyWristOrientation はコントローラーのワールド回転を手首ボーンへ移送する。
//
// 親のワールド回転の逆を左から掛けてローカル回転へ変換し、校正オフセットが
// あれば右から掛ける。位置はCCDが担うため、ここでは回転のみ更新する。
func ApplyWristOrientation(
	skeleton *model.Skeleton,
	wrist *model.Bone,
	controllerWorldRotation mmath.Quaternion,
	calibration WristCalibration,
) error {
	if skeleton == nil {
		return fmt.Errorf("スケルトンが未指定です")
	}
	if wrist == nil {
		return fmt.Errorf("手首ボーンが未指定です")
	}

	local := controllerWorldRotation
	if wrist.ParentIndex != model.InvalidBoneIndex {
		parentWorld, err := skeleton.WorldTransform(wrist.ParentIndex)
		if err != nil {
			return fmt.Errorf("手首親ワールド姿勢の取得に失敗しました: %s: %w", wrist.Name(), err)
		}
		local = parentWorld.Rotation.Inverted().Muled(controllerWorldRotation)
	}
	if calibration.HasOffset {
		local = local.Muled(calibration.Offset)
	}
	wrist.Rotation = local.Normalized()
	return nil
}
