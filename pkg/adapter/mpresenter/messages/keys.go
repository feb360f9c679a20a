// 指示: miu200521358
// Package messages はUI表示に使うメッセージキーを提供する。
package messages

// メッセージキー一覧。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "使い方説明"

	LabelRig             = "リグ種別"
	LabelRigTip          = "リグ種別説明"
	LabelTickInterval    = "更新間隔"
	LabelTickIntervalTip = "更新間隔説明"
	LabelDebugView       = "チェーン表示"
	LabelDebugViewTip    = "チェーン表示説明"

	MessageSkeletonMissing = "スケルトンが見つかりません"
	MessageRootBoneMissing = "ルートボーンが見つかりません"
	MessageArmBoneMissing  = "腕ボーンが見つかりません"
	MessageSourceMissing   = "コントローラー入力が未設定です"
	MessageTickFailed      = "IK更新失敗"
	MessageAlreadyDisposed = "IK破棄済み"
	MessageIntervalInvalid = "更新間隔が不正です"

	LogChainBuilt  = "IKチェーン構築成功: %s"
	LogTickSummary = "IK更新完了: %d回"
)
