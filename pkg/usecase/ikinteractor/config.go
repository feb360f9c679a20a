// 指示: miu200521358
package ikinteractor

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

// ArmConfig は片腕分のIK構成を表す。角度はすべて度数法で指定する。
type ArmConfig struct {
	// LowerArmLimitDegrees は前腕(肘)の軸別可動域。
	LowerArmLimitDegrees LinkLimitDegrees
	// UpperArmLimitDegrees は上腕(肩)の軸別可動域。
	UpperArmLimitDegrees LinkLimitDegrees
	// ControllerOffsetDegrees はコントローラー持ち方の校正オフセット。
	ControllerOffsetDegrees mmath.Vec3
}

// Config はアバターIK全体の構成を表す。
type Config struct {
	// RigKind はボーン名の解決方式。
	RigKind model.RigKind
	// RootBoneName はIKターゲットの親となるルートボーン名。
	RootBoneName string
	// IntervalSeconds はIK更新間隔(秒)。0なら既定値を使う。
	IntervalSeconds float64
	// Debug はチェーン可視化ビューを有効にするかどうか。
	Debug bool
	// Left は左腕の構成。
	Left ArmConfig
	// Right は右腕の構成。
	Right ArmConfig
}

// NewDefaultConfig は既定構成を返す。
//
// 肘はY軸ヒンジとして左右対称に可動域を付け、逆関節への折れを防ぐ。
// 肩は3軸自由のまま反復回転量の上限だけで暴れを抑える。
func NewDefaultConfig() *Config {
	return &Config{
		RigKind:      model.RigKindNormalized,
		RootBoneName: "hips",
		Left: ArmConfig{
			LowerArmLimitDegrees: LinkLimitDegrees{
				Y: AxisLimitDegrees{Enabled: true, MinDegree: -180.0, MaxDegree: -0.5},
			},
		},
		Right: ArmConfig{
			LowerArmLimitDegrees: LinkLimitDegrees{
				Y: AxisLimitDegrees{Enabled: true, MinDegree: 0.5, MaxDegree: 180.0},
			},
		},
	}
}

// Validate は構成値の整合性を検証する。
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("構成が未指定です")
	}
	if !c.RigKind.Valid() {
		return fmt.Errorf("リグ種別が不正です: %d", c.RigKind)
	}
	if c.RootBoneName == "" {
		return fmt.Errorf("ルートボーン名が空です")
	}
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("更新間隔に負数は指定できません: %f", c.IntervalSeconds)
	}
	for _, armLimit := range []struct {
		name  string
		limit LinkLimitDegrees
	}{
		{name: "左前腕", limit: c.Left.LowerArmLimitDegrees},
		{name: "左上腕", limit: c.Left.UpperArmLimitDegrees},
		{name: "右前腕", limit: c.Right.LowerArmLimitDegrees},
		{name: "右上腕", limit: c.Right.UpperArmLimitDegrees},
	} {
		if err := armLimit.limit.Validate(); err != nil {
			return fmt.Errorf("%sの可動域が不正です: %w", armLimit.name, err)
		}
	}
	return nil
}

// Copy は構成の深い複製を返す。
func (c *Config) Copy() (*Config, error) {
	copied := &Config{}
	if err := deepcopy.Copy(copied, c); err != nil {
		return nil, fmt.Errorf("構成の複製に失敗しました: %w", err)
	}
	return copied, nil
}

// tickInterval は構成から実際の更新間隔(秒)を決める。
func (c *Config) tickInterval() float64 {
	if c.IntervalSeconds > 0 {
		return c.IntervalSeconds
	}
	return DefaultTickInterval
}
