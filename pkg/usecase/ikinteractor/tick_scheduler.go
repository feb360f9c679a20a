// 指示: miu200521358
package ikinteractor

import "fmt"

// DefaultTickInterval は既定のIK更新間隔(秒)。60Hz相当。
const DefaultTickInterval = 1.0 / 60.0

// TickScheduler は経過時間を蓄積して固定間隔のIK更新を発火させる。
//
// 発火時は蓄積を0へ戻す。減算繰り越しにしないのは、描画フレームが
// 長時間停止した後に更新が連続発火するのを避けるため。
type TickScheduler struct {
	interval    float64
	accumulated float64
}

// NewTickScheduler は指定間隔(秒)のスケジューラを作る。
func NewTickScheduler(intervalSeconds float64) (*TickScheduler, error) {
	if intervalSeconds <= 0 {
		return nil, fmt.Errorf("更新間隔は正の秒数を指定してください: %f", intervalSeconds)
	}
	return &TickScheduler{interval: intervalSeconds}, nil
}

// Advance は経過時間を加算し、更新を発火すべきならtrueを返す。
func (ts *TickScheduler) Advance(deltaSeconds float64) bool {
	ts.accumulated += deltaSeconds
	if ts.accumulated < ts.interval {
		return false
	}
	ts.accumulated = 0
	return true
}

// Interval は更新間隔(秒)を返す。
func (ts *TickScheduler) Interval() float64 {
	return ts.interval
}
