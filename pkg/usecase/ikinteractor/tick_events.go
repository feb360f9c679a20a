// 指示: miu200521358
package ikinteractor

// TickEventType はIK更新の進行イベント種別を表す。
type TickEventType string

const (
	// TickEventTypeFired は固定間隔更新の発火イベントを表す。
	TickEventTypeFired TickEventType = "fired"
	// TickEventTypeArmSolved は片腕のIK解決完了イベントを表す。
	TickEventTypeArmSolved TickEventType = "arm_solved"
	// TickEventTypeArmReset は片腕の基準姿勢リセットイベントを表す。
	TickEventTypeArmReset TickEventType = "arm_reset"
	// TickEventTypeArmIdle は片腕の入力なしスキップイベントを表す。
	TickEventTypeArmIdle TickEventType = "arm_idle"
	// TickEventTypeDisposed は破棄完了イベントを表す。
	TickEventTypeDisposed TickEventType = "disposed"
)

// ArmSide は左右どちらの腕かを表す。
type ArmSide string

const (
	// ArmSideLeft は左腕を表す。
	ArmSideLeft ArmSide = "left"
	// ArmSideRight は右腕を表す。
	ArmSideRight ArmSide = "right"
)

// TickEvent はIK更新の進行イベントを表す。
type TickEvent struct {
	Type                   TickEventType
	Arm                    ArmSide
	EffectorTargetDistance float64
}

// ITickEventReporter はIK更新の進行通知契約を表す。
type ITickEventReporter interface {
	// ReportTickEvent はIK更新イベントを通知する。
	ReportTickEvent(event TickEvent)
}

// reportTickEvent はIK更新イベントを通知する。
func reportTickEvent(reporter ITickEventReporter, event TickEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportTickEvent(event)
}
