// 指示: miu200521358
package io_tracking

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/tracking"
)

// XrPoseFrame はXRランタイムから届くコントローラー姿勢1フレームを表す。
//
// XRランタイムはfloat32で姿勢を配るため、ここだけ32bit表現を持つ。
type XrPoseFrame struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Tracked     bool
}

// IXrFrameProvider は最新のXR姿勢フレームを返す契約を表す。
type IXrFrameProvider interface {
	// LatestFrame は直近にポーリングした姿勢フレームを返す。
	LatestFrame() XrPoseFrame
}

// XrSource はXRランタイムの姿勢フレームをIK入力へ変換する。
type XrSource struct {
	provider IXrFrameProvider
}

// NewXrSource はXR姿勢入力を生成する。
func NewXrSource(provider IXrFrameProvider) *XrSource {
	return &XrSource{provider: provider}
}

// Pose は最新フレームをfloat64の姿勢へ変換して返す。
// 未トラッキングのフレームはサンプルなしとして扱う。
func (s *XrSource) Pose() (tracking.Pose, bool) {
	if s.provider == nil {
		return tracking.Pose{}, false
	}
	frame := s.provider.LatestFrame()
	if !frame.Tracked {
		return tracking.Pose{}, false
	}
	position := mmath.NewVec3(
		float64(frame.Position.X()),
		float64(frame.Position.Y()),
		float64(frame.Position.Z()),
	)
	rotation := mmath.NewQuaternionByValues(
		float64(frame.Orientation.V.X()),
		float64(frame.Orientation.V.Y()),
		float64(frame.Orientation.V.Z()),
		float64(frame.Orientation.W),
	)
	return tracking.NewPose(position, rotation), true
}
