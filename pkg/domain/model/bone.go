// 指示: miu200521358
package model

import "github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"

// InvalidBoneIndex は未所属ボーンのインデックス値。
const InvalidBoneIndex = -1

// Bone はスケルトン階層の1ノードを表す。
// PositionとRotationは親ボーン基準のローカル値を保持する。
type Bone struct {
	index int
	name  string

	// ParentIndex は親ボーンのインデックス。ルートは-1。
	ParentIndex int
	// Position は親基準のローカル位置。
	Position mmath.Vec3
	// Rotation は親基準のローカル回転。
	Rotation mmath.Quaternion
	// IsSystem はIK処理が合成したボーンかどうか。
	IsSystem bool
}

// NewBone はローカル位置を指定してボーンを生成する。
func NewBone(name string, parentIndex int, position mmath.Vec3) *Bone {
	return &Bone{
		index:       InvalidBoneIndex,
		name:        name,
		ParentIndex: parentIndex,
		Position:    position,
		Rotation:    mmath.NewQuaternion(),
	}
}

// Index はスケルトン内インデックスを返す。未所属は-1。
func (b *Bone) Index() int {
	if b == nil {
		return InvalidBoneIndex
	}
	return b.index
}

// Name はボーン名を返す。
func (b *Bone) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Transform は位置と回転の組を表す。ワールド姿勢と逆バインドの両方に使う。
type Transform struct {
	Position mmath.Vec3
	Rotation mmath.Quaternion
}

// NewTransform は恒等変換を生成する。
func NewTransform() Transform {
	return Transform{Rotation: mmath.NewQuaternion()}
}
