// 指示: miu200521358
package mclock

import (
	"context"
	"fmt"
	"time"
)

// DefaultResolution は既定のポーリング周期。IK更新間隔より細かくしておく。
const DefaultResolution = 4 * time.Millisecond

// TickFunc は経過秒を受け取って更新を進める関数を表す。
type TickFunc func(deltaSeconds float64) error

// Driver は壁時計の経過時間を固定周期でポーリングして更新関数へ渡す。
type Driver struct {
	resolution time.Duration
}

// NewDriver は指定ポーリング周期のドライバーを生成する。0以下は既定値を使う。
func NewDriver(resolution time.Duration) *Driver {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Driver{resolution: resolution}
}

// Resolution はポーリング周期を返す。
func (d *Driver) Resolution() time.Duration {
	return d.resolution
}

// Run はctxが終わるまで実経過時間をtickへ渡し続ける。
// ctxの終了は正常停止としてnilを返し、tickのエラーは打ち切って返す。
func (d *Driver) Run(ctx context.Context, tick TickFunc) error {
	if ctx == nil {
		return fmt.Errorf("コンテキストが未指定です")
	}
	if tick == nil {
		return fmt.Errorf("更新関数が未指定です")
	}

	ticker := time.NewTicker(d.resolution)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			if delta <= 0 {
				continue
			}
			if err := tick(delta); err != nil {
				return fmt.Errorf("IK更新の駆動に失敗しました: %w", err)
			}
		}
	}
}
