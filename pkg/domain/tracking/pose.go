// 指示: miu200521358
package tracking

import "github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"

// Pose はコントローラーのワールド姿勢を表す。
type Pose struct {
	Position mmath.Vec3
	Rotation mmath.Quaternion
}

// NewPose は位置と回転を指定して姿勢を生成する。
func NewPose(position mmath.Vec3, rotation mmath.Quaternion) Pose {
	return Pose{Position: position, Rotation: rotation}
}

// IsInactive は「コントローラー非アクティブ」を示す原点位置かどうか判定する。
// 判定は厳密な(0,0,0)一致で行う。
func (p Pose) IsInactive() bool {
	return p.Position.IsZero()
}

// PoseSource は腕1本分のコントローラー姿勢を提供する契約を表す。
// 2値目がfalseの場合、そのtickに入力サンプルが無いことを示す。
type PoseSource interface {
	Pose() (Pose, bool)
}
