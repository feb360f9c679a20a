// 指示: miu200521358
package model

const (
	// IkWarningLeftArmBoneMissing は左腕チェーン無効化(必須ボーン欠落)警告。
	IkWarningLeftArmBoneMissing = "IkWarningLeftArmBoneMissing"
	// IkWarningRightArmBoneMissing は右腕チェーン無効化(必須ボーン欠落)警告。
	IkWarningRightArmBoneMissing = "IkWarningRightArmBoneMissing"
	// IkWarningLeftPoseSourceMissing は左腕のコントローラー入力未設定警告。
	IkWarningLeftPoseSourceMissing = "IkWarningLeftPoseSourceMissing"
	// IkWarningRightPoseSourceMissing は右腕のコントローラー入力未設定警告。
	IkWarningRightPoseSourceMissing = "IkWarningRightPoseSourceMissing"
)
