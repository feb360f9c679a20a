// 指示: miu200521358
package ikinteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

// チェーン構成の固定値。
const (
	// ChainLinkCount は腕チェーンのリンク数。0がひじ、1が肩。
	ChainLinkCount = 2
	// chainLinkIndexLowerArm はエフェクタに最も近いリンクの位置。
	chainLinkIndexLowerArm = 0
	// chainLinkIndexUpperArm はルートに最も近いリンクの位置。
	chainLinkIndexUpperArm = 1
)

// AngleLimit は単一軸の回転制限(ラジアン)を表す。
type AngleLimit struct {
	Enabled bool
	Min     float64
	Max     float64
}

// LinkLimit はリンク1本分の軸別回転制限(ラジアン)を表す。
// 無効な軸は制限なしとして扱う。
type LinkLimit struct {
	X AngleLimit
	Y AngleLimit
	Z AngleLimit
}

// HasAnyLimit はいずれかの軸に制限があるか判定する。
func (l LinkLimit) HasAnyLimit() bool {
	return l.X.Enabled || l.Y.Enabled || l.Z.Enabled
}

// AxisLimitDegrees は設定入力用の単一軸回転制限(度)を表す。
type AxisLimitDegrees struct {
	Enabled   bool
	MinDegree float64
	MaxDegree float64
}

// LinkLimitDegrees は設定入力用のリンク回転制限(度)を表す。
// ビルド時に一度だけラジアンへ変換される。
type LinkLimitDegrees struct {
	X AxisLimitDegrees
	Y AxisLimitDegrees
	Z AxisLimitDegrees
}

// ToRadians は度指定の制限をラジアンへ変換する。
func (l LinkLimitDegrees) ToRadians() LinkLimit {
	return LinkLimit{
		X: axisLimitToRadians(l.X),
		Y: axisLimitToRadians(l.Y),
		Z: axisLimitToRadians(l.Z),
	}
}

// Validate は有効軸の下限が上限を超えていないか検証する。
func (l LinkLimitDegrees) Validate() error {
	for _, axis := range []struct {
		label string
		limit AxisLimitDegrees
	}{
		{label: "X", limit: l.X},
		{label: "Y", limit: l.Y},
		{label: "Z", limit: l.Z},
	} {
		if axis.limit.Enabled && axis.limit.MinDegree > axis.limit.MaxDegree {
			return fmt.Errorf("回転制限の下限が上限を超えています: %s軸 min=%f max=%f", axis.label, axis.limit.MinDegree, axis.limit.MaxDegree)
		}
	}
	return nil
}

// axisLimitToRadians は単一軸制限を度からラジアンへ変換する。
func axisLimitToRadians(limit AxisLimitDegrees) AngleLimit {
	if !limit.Enabled {
		return AngleLimit{}
	}
	return AngleLimit{
		Enabled: true,
		Min:     mmath.DegToRad(limit.MinDegree),
		Max:     mmath.DegToRad(limit.MaxDegree),
	}
}

// ChainLink はIKチェーンの1リンク(回転対象ボーンと制限)を表す。
type ChainLink struct {
	Bone  *model.Bone
	Limit LinkLimit
}

// WristCalibration は手首姿勢変換の校正値を表す。
// ビルド時に一度だけ取得し、以後は不変。
type WristCalibration struct {
	// Offset はコントローラー回転へ右から乗算する固定補正。
	Offset mmath.Quaternion
	// HasOffset は補正回転が指定されたかどうか。
	HasOffset bool
	// RestRotation は手首のレスト姿勢ローカル回転。リセット時に復元する。
	RestRotation mmath.Quaternion
}

// Chain は腕1本分のIKチェーンを表す。
// Linksはエフェクタに近い順(ひじ、肩)で保持する。
type Chain struct {
	Name        string
	Target      *model.Bone
	Effector    *model.Bone
	Links       [ChainLinkCount]ChainLink
	Calibration WristCalibration
}

// LowerArmLink はエフェクタ側リンクを返す。
func (c *Chain) LowerArmLink() ChainLink {
	if c == nil {
		return ChainLink{}
	}
	return c.Links[chainLinkIndexLowerArm]
}

// UpperArmLink はルート側リンクを返す。
func (c *Chain) UpperArmLink() ChainLink {
	if c == nil {
		return ChainLink{}
	}
	return c.Links[chainLinkIndexUpperArm]
}
