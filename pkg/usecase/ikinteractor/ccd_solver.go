// 指示: miu200521358
package ikinteractor

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

const (
	// ccdIterationCount はCCDの反復回数。2リンク腕では2回で十分収束する。
	ccdIterationCount = 2
	// ccdIterationAngleLimit は1反復あたりの回転量上限(ラジアン)。
	ccdIterationAngleLimit = 0.2
	// ccdAngleEpsilon はこれ未満の回転を無視する閾値。
	ccdAngleEpsilon = 1e-5
	// ccdAxisEpsilon は回転軸が退化したとみなす外積ノルムの閾値。
	ccdAxisEpsilon = 1e-8
)

// solverScratch はSolve内で使い回す一時領域。
type solverScratch struct {
	effectorLocal mmath.Vec3
	targetLocal   mmath.Vec3
	axis          mmath.Vec3
	rotation      mmath.Quaternion
}

// Solver はCCD法で腕チェーンをターゲットへ収束させる。
//
// スクラッチ領域を保持するため再入不可。呼び出し側で直列化すること。
type Solver struct {
	scratch solverScratch
}

// NewSolver は新しいCCDソルバーを作る。
func NewSolver() *Solver {
	return &Solver{}
}

// Solve はチェーンのリンク回転を更新してエフェクターをターゲットへ近づける。
//
// リンクはエフェクター側(前腕)から順に処理する。ターゲットが到達圏外でも
// エラーにはせず、最も近づく姿勢で確定するベストエフォート動作を取る。
func (s *Solver) Solve(skeleton *model.Skeleton, chain *Chain) error {
	if skeleton == nil {
		return fmt.Errorf("スケルトンが未指定です")
	}
	if chain == nil || chain.Target == nil || chain.Effector == nil {
		return fmt.Errorf("チェーンが未構築です")
	}
	for _, link := range chain.Links {
		if link.Bone == nil {
			return fmt.Errorf("チェーンリンクが未設定です: %s", chain.Name)
		}
	}

	// ターゲットはIKルート直下にあり、リンク回転の影響を受けないため先に確定できる。
	targetWorld, err := skeleton.WorldPosition(chain.Target.Index())
	if err != nil {
		return fmt.Errorf("ターゲットワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}

	for iteration := 0; iteration < ccdIterationCount; iteration++ {
		for linkIndex := range chain.Links {
			link := &chain.Links[linkIndex]
			if err := s.rotateLinkTowardTarget(skeleton, chain, link, targetWorld); err != nil {
				return err
			}
		}
	}
	return nil
}

// rotateLinkTowardTarget は1リンク分のCCD回転と制限適用を行う。
func (s *Solver) rotateLinkTowardTarget(
	skeleton *model.Skeleton,
	chain *Chain,
	link *ChainLink,
	targetWorld mmath.Vec3,
) error {
	linkWorld, err := skeleton.WorldTransform(link.Bone.Index())
	if err != nil {
		return fmt.Errorf("リンクワールド姿勢の取得に失敗しました: %s: %w", chain.Name, err)
	}
	effectorWorld, err := skeleton.WorldPosition(chain.Effector.Index())
	if err != nil {
		return fmt.Errorf("手首ワールド位置の取得に失敗しました: %s: %w", chain.Name, err)
	}

	invLinkRotation := linkWorld.Rotation.Inverted()
	s.scratch.effectorLocal = invLinkRotation.MulVec3(effectorWorld.Subed(linkWorld.Position)).Normalized()
	s.scratch.targetLocal = invLinkRotation.MulVec3(targetWorld.Subed(linkWorld.Position)).Normalized()
	if s.scratch.effectorLocal.IsZero() || s.scratch.targetLocal.IsZero() {
		return nil
	}

	dot := clampSolverValue(s.scratch.effectorLocal.Dot(s.scratch.targetLocal), -1, 1)
	angle := math.Acos(dot)
	if angle < ccdAngleEpsilon {
		return nil
	}
	if angle > ccdIterationAngleLimit {
		angle = ccdIterationAngleLimit
	}

	s.scratch.axis = s.scratch.effectorLocal.Cross(s.scratch.targetLocal)
	if s.scratch.axis.Length() < ccdAxisEpsilon {
		return nil
	}
	s.scratch.axis = s.scratch.axis.Normalized()

	s.scratch.rotation = mmath.NewQuaternionFromAxisAngle(s.scratch.axis, angle)
	link.Bone.Rotation = link.Bone.Rotation.Muled(s.scratch.rotation).Normalized()
	applyLinkAngleLimit(link)
	return nil
}

// applyLinkAngleLimit はリンクのローカル回転を軸ごとの可動域へ収める。
func applyLinkAngleLimit(link *ChainLink) {
	if !link.Limit.HasAnyLimit() {
		return
	}

	euler := link.Bone.Rotation.ToRadians()
	changed := false
	if link.Limit.X.Enabled {
		if clamped := clampSolverValue(euler.X, link.Limit.X.Min, link.Limit.X.Max); clamped != euler.X {
			euler.X = clamped
			changed = true
		}
	}
	if link.Limit.Y.Enabled {
		if clamped := clampSolverValue(euler.Y, link.Limit.Y.Min, link.Limit.Y.Max); clamped != euler.Y {
			euler.Y = clamped
			changed = true
		}
	}
	if link.Limit.Z.Enabled {
		if clamped := clampSolverValue(euler.Z, link.Limit.Z.Min, link.Limit.Z.Max); clamped != euler.Z {
			euler.Z = clamped
			changed = true
		}
	}
	if !changed {
		return
	}
	link.Bone.Rotation = mmath.NewQuaternionFromRadians(euler.X, euler.Y, euler.Z)
}

func clampSolverValue(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
