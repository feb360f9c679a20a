// 指示: miu200521358
package ikinteractor

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

func TestSolverConvergesOnReachableTarget(t *testing.T) {
	skeleton := newArmIkTestSkeleton(t)
	chain, _ := buildLeftArmTestChain(t, skeleton, [ChainLinkCount]LinkLimitDegrees{})
	chain.Target.Position = mmath.NewVec3(2.6, 3.2, 0.0)
	solver := NewSolver()

	distanceBefore := effectorTargetTestDistance(t, skeleton, chain)
	if err := solver.Solve(skeleton, chain); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	distanceAfter := effectorTargetTestDistance(t, skeleton, chain)
	if distanceAfter >= distanceBefore {
		t.Fatalf("single solve should move the effector closer: before=%f after=%f", distanceBefore, distanceAfter)
	}

	for i := 0; i < 20; i++ {
		if err := solver.Solve(skeleton, chain); err != nil {
			t.Fatalf("solve failed: %v", err)
		}
	}
	converged := effectorTargetTestDistance(t, skeleton, chain)
	if converged > 0.05 {
		t.Fatalf("repeated solves should converge on a reachable target: distance=%f", converged)
	}
}

func TestSolverIsDeterministic(t *testing.T) {
	first := newArmIkTestSkeleton(t)
	firstChain, _ := buildLeftArmTestChain(t, first, [ChainLinkCount]LinkLimitDegrees{})
	firstChain.Target.Position = mmath.NewVec3(2.6, 3.2, 0.0)

	second := newArmIkTestSkeleton(t)
	secondChain, _ := buildLeftArmTestChain(t, second, [ChainLinkCount]LinkLimitDegrees{})
	secondChain.Target.Position = mmath.NewVec3(2.6, 3.2, 0.0)

	firstSolver := NewSolver()
	secondSolver := NewSolver()
	for i := 0; i < 5; i++ {
		if err := firstSolver.Solve(first, firstChain); err != nil {
			t.Fatalf("solve failed: %v", err)
		}
		if err := secondSolver.Solve(second, secondChain); err != nil {
			t.Fatalf("solve failed: %v", err)
		}
	}

	for linkIndex := range firstChain.Links {
		firstRotation := firstChain.Links[linkIndex].Bone.Rotation
		secondRotation := secondChain.Links[linkIndex].Bone.Rotation
		if !firstRotation.NearEquals(secondRotation, 1e-12) {
			t.Fatalf("same input should produce the same rotations: link=%d first=%v second=%v", linkIndex, firstRotation, secondRotation)
		}
	}
}

func TestSolverKeepsRestPoseWhenTargetAtEffector(t *testing.T) {
	skeleton := newArmIkTestSkeleton(t)
	chain, _ := buildLeftArmTestChain(t, skeleton, [ChainLinkCount]LinkLimitDegrees{})
	solver := NewSolver()

	if err := solver.Solve(skeleton, chain); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	identity := mmath.NewQuaternion()
	if !chain.LowerArmLink().Bone.Rotation.NearEquals(identity, 1e-9) {
		t.Fatalf("lower arm should stay at rest: got=%v", chain.LowerArmLink().Bone.Rotation)
	}
	if !chain.UpperArmLink().Bone.Rotation.NearEquals(identity, 1e-9) {
		t.Fatalf("upper arm should stay at rest: got=%v", chain.UpperArmLink().Bone.Rotation)
	}
}

func TestSolverCapsRotationPerCall(t *testing.T) {
	skeleton := newArmIkTestSkeleton(t)
	chain, _ := buildLeftArmTestChain(t, skeleton, [ChainLinkCount]LinkLimitDegrees{})
	// 肩の真下近く。1回の呼び出しでは反復上限まで回しても届かない距離。
	chain.Target.Position = mmath.NewVec3(1.2, 2.5, 0.0)
	solver := NewSolver()

	if err := solver.Solve(skeleton, chain); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	capLimit := float64(ccdIterationCount)*ccdIterationAngleLimit + 1e-9
	for linkIndex := range chain.Links {
		angle := rotationAngleOf(chain.Links[linkIndex].Bone.Rotation)
		if angle > capLimit {
			t.Fatalf("link rotation should stay under the per-call cap: link=%d angle=%f cap=%f", linkIndex, angle, capLimit)
		}
	}
}

func TestSolverHonorsAxisLimits(t *testing.T) {
	skeleton := newArmIkTestSkeleton(t)
	limits := [ChainLinkCount]LinkLimitDegrees{
		chainLinkIndexLowerArm: {Z: AxisLimitDegrees{Enabled: true, MinDegree: -10.0, MaxDegree: 10.0}},
	}
	chain, _ := buildLeftArmTestChain(t, skeleton, limits)
	chain.Target.Position = mmath.NewVec3(1.2, 2.5, 0.0)
	solver := NewSolver()

	for i := 0; i < 10; i++ {
		if err := solver.Solve(skeleton, chain); err != nil {
			t.Fatalf("solve failed: %v", err)
		}
	}

	limitRadians := 10.0 * math.Pi / 180.0
	euler := chain.LowerArmLink().Bone.Rotation.ToRadians()
	if euler.Z < -limitRadians-1e-9 || euler.Z > limitRadians+1e-9 {
		t.Fatalf("lower arm z rotation should stay within the limit: got=%f limit=%f", euler.Z, limitRadians)
	}
}

func TestSolverRejectsUnbuiltChain(t *testing.T) {
	skeleton := newArmIkTestSkeleton(t)
	chain, _ := buildLeftArmTestChain(t, skeleton, [ChainLinkCount]LinkLimitDegrees{})
	solver := NewSolver()

	if err := solver.Solve(nil, chain); err == nil {
		t.Fatalf("nil skeleton should be rejected")
	}
	if err := solver.Solve(skeleton, nil); err == nil {
		t.Fatalf("nil chain should be rejected")
	}
}

// effectorTargetTestDistance は手首とターゲットのワールド距離を測る。
func effectorTargetTestDistance(t *testing.T, skeleton *model.Skeleton, chain *Chain) float64 {
	t.Helper()
	effectorWorld, err := skeleton.WorldPosition(chain.Effector.Index())
	if err != nil {
		t.Fatalf("effector world position failed: %v", err)
	}
	targetWorld, err := skeleton.WorldPosition(chain.Target.Index())
	if err != nil {
		t.Fatalf("target world position failed: %v", err)
	}
	return effectorWorld.Distance(targetWorld)
}

// rotationAngleOf はクォータニオンの回転角を返す。
func rotationAngleOf(rotation mmath.Quaternion) float64 {
	w := math.Abs(rotation.Real)
	if w > 1 {
		w = 1
	}
	return 2.0 * math.Acos(w)
}
