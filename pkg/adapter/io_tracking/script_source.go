// 指示: miu200521358
package io_tracking

import "github.com/miu200521358/mu_vrm_ik/pkg/domain/tracking"

// ScriptSource は台本化した姿勢列を1件ずつ返すIK入力を表す。
// デモ実行とリプレイ検証に使う。
type ScriptSource struct {
	poses []tracking.Pose
	index int
	loop  bool
}

// NewScriptSource は台本入力を生成する。loopで末尾到達後の巻き戻しを選ぶ。
func NewScriptSource(poses []tracking.Pose, loop bool) *ScriptSource {
	copied := make([]tracking.Pose, len(poses))
	copy(copied, poses)
	return &ScriptSource{poses: copied, loop: loop}
}

// Pose は次の姿勢を返す。
// 台本が空ならサンプルなし。非ループ時は末尾の姿勢を返し続ける。
func (s *ScriptSource) Pose() (tracking.Pose, bool) {
	if len(s.poses) == 0 {
		return tracking.Pose{}, false
	}
	if s.index >= len(s.poses) {
		if !s.loop {
			return s.poses[len(s.poses)-1], true
		}
		s.index = 0
	}
	pose := s.poses[s.index]
	s.index++
	return pose, true
}

// Remaining は未再生の姿勢数を返す。非ループ時の進行確認に使う。
func (s *ScriptSource) Remaining() int {
	if s.index >= len(s.poses) {
		return 0
	}
	return len(s.poses) - s.index
}
