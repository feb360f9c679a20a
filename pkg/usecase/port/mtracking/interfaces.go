// 指示: miu200521358
package mtracking

import "github.com/miu200521358/mu_vrm_ik/pkg/domain/tracking"

// IPoseSource は腕1本分のコントローラー姿勢提供契約を表す。
type IPoseSource = tracking.PoseSource

// Pose はコントローラーのワールド姿勢を表す。
type Pose = tracking.Pose
