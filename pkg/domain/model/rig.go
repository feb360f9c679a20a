// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// RigKind はリグのボーン命名方式を表す。
type RigKind int

const (
	// RigKindNormalized は正規化済みヒューマノイド名を持つリグ。
	RigKindNormalized RigKind = iota + 1
	// RigKindNamedConvention は命名規約ベースのリグ。
	RigKindNamedConvention
)

// String はリグ種別の表示名を返す。
func (k RigKind) String() string {
	switch k {
	case RigKindNormalized:
		return "normalized"
	case RigKindNamedConvention:
		return "named"
	default:
		return "unknown"
	}
}

// Valid は定義済みのリグ種別か判定する。
func (k RigKind) Valid() bool {
	return k == RigKindNormalized || k == RigKindNamedConvention
}

// ParseRigKind は表示名からリグ種別を解決する。
func ParseRigKind(value string) (RigKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "normalized":
		return RigKindNormalized, nil
	case "named":
		return RigKindNamedConvention, nil
	default:
		return 0, fmt.Errorf("リグ種別が不正です: %s", value)
	}
}

// HumanBoneKey はヒューマノイド標準ボーンのキーを表す。
type HumanBoneKey string

// ヒューマノイドキー一覧。
const (
	HumanBoneLeftUpperArm  HumanBoneKey = "leftUpperArm"
	HumanBoneLeftLowerArm  HumanBoneKey = "leftLowerArm"
	HumanBoneLeftHand      HumanBoneKey = "leftHand"
	HumanBoneRightUpperArm HumanBoneKey = "rightUpperArm"
	HumanBoneRightLowerArm HumanBoneKey = "rightLowerArm"
	HumanBoneRightHand     HumanBoneKey = "rightHand"
)

// HumanBonePair は左右対のヒューマノイドキーを表す。
type HumanBonePair struct {
	left  HumanBoneKey
	right HumanBoneKey
}

// Left は左側キーを返す。
func (p HumanBonePair) Left() HumanBoneKey {
	return p.left
}

// Right は右側キーを返す。
func (p HumanBonePair) Right() HumanBoneKey {
	return p.right
}

// 腕チェーンを構成する左右対一覧。
var (
	UPPER_ARM = HumanBonePair{left: HumanBoneLeftUpperArm, right: HumanBoneRightUpperArm}
	LOWER_ARM = HumanBonePair{left: HumanBoneLeftLowerArm, right: HumanBoneRightLowerArm}
	HAND      = HumanBonePair{left: HumanBoneLeftHand, right: HumanBoneRightHand}
)

// BoneResolver はヒューマノイドキーからスケルトン内のボーンを引く契約を表す。
type BoneResolver interface {
	Resolve(skeleton *Skeleton, key HumanBoneKey) (*Bone, bool)
}

// NewBoneResolver はリグ種別に応じたボーン解決器を生成する。
func NewBoneResolver(kind RigKind) (BoneResolver, error) {
	switch kind {
	case RigKindNormalized:
		return &normalizedBoneResolver{}, nil
	case RigKindNamedConvention:
		return &namedConventionBoneResolver{}, nil
	default:
		return nil, fmt.Errorf("リグ種別が不正です: %d", kind)
	}
}

// normalizedBoneResolver は正規化済みリグ用の完全一致解決器を表す。
type normalizedBoneResolver struct{}

// Resolve はヒューマノイドキーと同名のボーンを返す。
func (r *normalizedBoneResolver) Resolve(skeleton *Skeleton, key HumanBoneKey) (*Bone, bool) {
	if skeleton == nil {
		return nil, false
	}
	bone, exists := skeleton.GetByName(string(key))
	if !exists || bone.IsSystem {
		return nil, false
	}
	return bone, true
}

// namedConventionBoneResolver は命名規約リグ用のあいまい解決器を表す。
type namedConventionBoneResolver struct{}

// namedConventionAlias は1キー分の別名候補を表す。別名は正規化済みで持つ。
type namedConventionAlias struct {
	Key     HumanBoneKey
	Aliases []string
}

var namedConventionAliases = []namedConventionAlias{
	{Key: HumanBoneLeftUpperArm, Aliases: []string{"leftupperarm", "leftarm", "upperarml", "lupperarm", "larm", "arml"}},
	{Key: HumanBoneLeftLowerArm, Aliases: []string{"leftlowerarm", "leftforearm", "lowerarml", "leftelbow", "lforearm", "forearml", "elbowl"}},
	{Key: HumanBoneLeftHand, Aliases: []string{"lefthand", "handl", "lhand", "leftwrist", "wristl"}},
	{Key: HumanBoneRightUpperArm, Aliases: []string{"rightupperarm", "rightarm", "upperarmr", "rupperarm", "rarm", "armr"}},
	{Key: HumanBoneRightLowerArm, Aliases: []string{"rightlowerarm", "rightforearm", "lowerarmr", "rightelbow", "rforearm", "forearmr", "elbowr"}},
	{Key: HumanBoneRightHand, Aliases: []string{"righthand", "handr", "rhand", "rightwrist", "wristr"}},
}

const namedConventionMinScore = 0.6

// Resolve は別名候補とのスコア付けで最良一致のボーンを返す。
func (r *namedConventionBoneResolver) Resolve(skeleton *Skeleton, key HumanBoneKey) (*Bone, bool) {
	if skeleton == nil {
		return nil, false
	}
	aliases := resolveNamedConventionAliases(key)
	if len(aliases) == 0 {
		return nil, false
	}

	var best *Bone
	bestScore := 0.0
	for _, bone := range skeleton.Values() {
		if bone == nil || bone.IsSystem {
			continue
		}
		score := scoreNamedConventionBone(bone.Name(), aliases)
		if score > bestScore {
			bestScore = score
			best = bone
		}
	}
	if best == nil || bestScore < namedConventionMinScore {
		return nil, false
	}
	return best, true
}

// resolveNamedConventionAliases はキーに対応する別名候補を返す。
func resolveNamedConventionAliases(key HumanBoneKey) []string {
	for _, entry := range namedConventionAliases {
		if entry.Key == key {
			return entry.Aliases
		}
	}
	return nil
}

// scoreNamedConventionBone はボーン名と別名候補群の一致スコアを返す。
func scoreNamedConventionBone(boneName string, aliases []string) float64 {
	normalized := normalizeConventionBoneName(boneName)
	if normalized == "" {
		return 0.0
	}

	best := 0.0
	for _, alias := range aliases {
		score := 0.0
		switch {
		case normalized == alias:
			score = 1.0
		case len(alias) >= 5 && strings.Contains(normalized, alias):
			score = 0.9
		default:
			dist := levenshtein.ComputeDistance(normalized, alias)
			if dist > namedConventionDistanceLimit(len(alias)) {
				continue
			}
			score = 0.72 - (0.08 * float64(dist))
		}
		if score > best {
			best = score
		}
	}
	return best
}

// normalizeConventionBoneName は比較用にボーン名を小文字化し区切り記号を除去する。
func normalizeConventionBoneName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.', ':':
			return -1
		default:
			return r
		}
	}, lowered)
}

// namedConventionDistanceLimit は別名長に応じた編集距離の許容値を返す。
func namedConventionDistanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
