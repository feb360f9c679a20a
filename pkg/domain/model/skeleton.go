// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
)

// Skeleton はボーン列と逆バインド列を対で保持する。
// bones[i]とinverseBinds[i]は常に同じ長さ・同じ並びを維持する。
type Skeleton struct {
	bones        []*Bone
	inverseBinds []Transform
	nameToIndex  map[string]int
}

// NewSkeleton は空のスケルトンを生成する。
func NewSkeleton() *Skeleton {
	return &Skeleton{
		bones:        []*Bone{},
		inverseBinds: []Transform{},
		nameToIndex:  map[string]int{},
	}
}

// AppendBone はボーンと逆バインドを末尾へ対で追加し、採番したインデックスを返す。
func (s *Skeleton) AppendBone(bone *Bone, inverseBind Transform) (int, error) {
	if s == nil {
		return InvalidBoneIndex, fmt.Errorf("スケルトンが未初期化です")
	}
	if bone == nil {
		return InvalidBoneIndex, fmt.Errorf("追加対象ボーンが未指定です")
	}
	if bone.Name() == "" {
		return InvalidBoneIndex, fmt.Errorf("ボーン名が空です")
	}
	if _, exists := s.nameToIndex[bone.Name()]; exists {
		return InvalidBoneIndex, fmt.Errorf("ボーン名が重複しています: %s", bone.Name())
	}
	if bone.ParentIndex >= len(s.bones) {
		return InvalidBoneIndex, fmt.Errorf("親ボーンインデックスが範囲外です: %s parent=%d", bone.Name(), bone.ParentIndex)
	}

	bone.index = len(s.bones)
	s.bones = append(s.bones, bone)
	s.inverseBinds = append(s.inverseBinds, inverseBind)
	s.nameToIndex[bone.Name()] = bone.index
	return bone.index, nil
}

// Len はボーン数を返す。
func (s *Skeleton) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bones)
}

// Get はインデックス指定でボーンを返す。
func (s *Skeleton) Get(index int) (*Bone, error) {
	if s == nil || index < 0 || index >= len(s.bones) {
		return nil, fmt.Errorf("ボーンインデックスが範囲外です: %d", index)
	}
	return s.bones[index], nil
}

// GetByName は名前指定でボーンを返す。
func (s *Skeleton) GetByName(name string) (*Bone, bool) {
	if s == nil {
		return nil, false
	}
	index, exists := s.nameToIndex[name]
	if !exists {
		return nil, false
	}
	return s.bones[index], true
}

// ContainsByName は同名ボーンの有無を返す。
func (s *Skeleton) ContainsByName(name string) bool {
	_, exists := s.GetByName(name)
	return exists
}

// Values は全ボーンを並び順で返す。
func (s *Skeleton) Values() []*Bone {
	if s == nil {
		return nil
	}
	return s.bones
}

// InverseBind はインデックス対応の逆バインド変換を返す。
func (s *Skeleton) InverseBind(index int) (Transform, error) {
	if s == nil || index < 0 || index >= len(s.inverseBinds) {
		return NewTransform(), fmt.Errorf("逆バインドインデックスが範囲外です: %d", index)
	}
	return s.inverseBinds[index], nil
}

// WorldTransform は祖先を合成したワールド姿勢を返す。
func (s *Skeleton) WorldTransform(index int) (Transform, error) {
	chain, err := s.ancestorChain(index)
	if err != nil {
		return NewTransform(), err
	}

	world := NewTransform()
	for i := len(chain) - 1; i >= 0; i-- {
		bone := chain[i]
		world.Position = world.Position.Added(world.Rotation.MulVec3(bone.Position))
		world.Rotation = world.Rotation.Muled(bone.Rotation)
	}
	return world, nil
}

// IsAncestor はancestorIndexがdescendantIndexの祖先(自身を除く)か判定する。
func (s *Skeleton) IsAncestor(ancestorIndex int, descendantIndex int) (bool, error) {
	chain, err := s.ancestorChain(descendantIndex)
	if err != nil {
		return false, err
	}
	for _, bone := range chain[1:] {
		if bone.Index() == ancestorIndex {
			return true, nil
		}
	}
	return false, nil
}

// Copy はボーン列と逆バインド列を複製した新しいスケルトンを返す。
func (s *Skeleton) Copy() (*Skeleton, error) {
	if s == nil {
		return nil, fmt.Errorf("スケルトンが未初期化です")
	}
	copied := NewSkeleton()
	for i, bone := range s.bones {
		clone := NewBone(bone.Name(), bone.ParentIndex, bone.Position)
		clone.Rotation = bone.Rotation
		clone.IsSystem = bone.IsSystem
		if _, err := copied.AppendBone(clone, s.inverseBinds[i]); err != nil {
			return nil, err
		}
	}
	return copied, nil
}

// ancestorChain は指定ボーンからルートまでの経路(自身が先頭)を返す。
// 経路長がボーン数を超えた場合は循環として扱う。
func (s *Skeleton) ancestorChain(index int) ([]*Bone, error) {
	bone, err := s.Get(index)
	if err != nil {
		return nil, err
	}

	chain := make([]*Bone, 0, 8)
	for bone != nil {
		chain = append(chain, bone)
		if len(chain) > len(s.bones) {
			return nil, fmt.Errorf("ボーン階層に循環があります: %s", s.bones[index].Name())
		}
		if bone.ParentIndex < 0 {
			break
		}
		parent, err := s.Get(bone.ParentIndex)
		if err != nil {
			return nil, fmt.Errorf("親ボーンの解決に失敗しました: %s: %w", bone.Name(), err)
		}
		bone = parent
	}
	return chain, nil
}

// WorldPosition はワールド位置のみ必要な場合の補助。
func (s *Skeleton) WorldPosition(index int) (mmath.Vec3, error) {
	world, err := s.WorldTransform(index)
	if err != nil {
		return mmath.ZERO_VEC3, err
	}
	return world.Position, nil
}
