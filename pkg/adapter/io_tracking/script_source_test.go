// 指示: miu200521358
package io_tracking

import (
	"testing"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/tracking"
)

func TestScriptSourcePlaysPosesInOrder(t *testing.T) {
	poses := []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(1.0, 0.0, 0.0), mmath.NewQuaternion()),
		tracking.NewPose(mmath.NewVec3(2.0, 0.0, 0.0), mmath.NewQuaternion()),
	}
	source := NewScriptSource(poses, false)

	for i, expected := range poses {
		pose, ok := source.Pose()
		if !ok {
			t.Fatalf("scripted pose should be available: index=%d", i)
		}
		if !pose.Position.NearEquals(expected.Position, 1e-9) {
			t.Fatalf("poses should play in order: index=%d got=%v", i, pose.Position)
		}
	}
	if source.Remaining() != 0 {
		t.Fatalf("all poses should be consumed: remaining=%d", source.Remaining())
	}
}

func TestScriptSourceHoldsLastPoseWithoutLoop(t *testing.T) {
	poses := []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(1.0, 0.0, 0.0), mmath.NewQuaternion()),
	}
	source := NewScriptSource(poses, false)

	if _, ok := source.Pose(); !ok {
		t.Fatalf("first pose should be available")
	}
	pose, ok := source.Pose()
	if !ok {
		t.Fatalf("exhausted script should hold the last pose")
	}
	if !pose.Position.NearEquals(mmath.NewVec3(1.0, 0.0, 0.0), 1e-9) {
		t.Fatalf("held pose should be the last one: got=%v", pose.Position)
	}
}

func TestScriptSourceLoopsWhenConfigured(t *testing.T) {
	poses := []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(1.0, 0.0, 0.0), mmath.NewQuaternion()),
		tracking.NewPose(mmath.NewVec3(2.0, 0.0, 0.0), mmath.NewQuaternion()),
	}
	source := NewScriptSource(poses, true)

	source.Pose()
	source.Pose()
	pose, ok := source.Pose()
	if !ok {
		t.Fatalf("looping script should keep producing samples")
	}
	if !pose.Position.NearEquals(mmath.NewVec3(1.0, 0.0, 0.0), 1e-9) {
		t.Fatalf("loop should rewind to the first pose: got=%v", pose.Position)
	}
}

func TestScriptSourceWithoutPosesProducesNoSample(t *testing.T) {
	source := NewScriptSource(nil, false)

	if _, ok := source.Pose(); ok {
		t.Fatalf("empty script should produce no sample")
	}
}

func TestScriptSourceCopiesInputSlice(t *testing.T) {
	poses := []tracking.Pose{
		tracking.NewPose(mmath.NewVec3(1.0, 0.0, 0.0), mmath.NewQuaternion()),
	}
	source := NewScriptSource(poses, false)
	poses[0] = tracking.NewPose(mmath.NewVec3(9.0, 9.0, 9.0), mmath.NewQuaternion())

	pose, _ := source.Pose()
	if !pose.Position.NearEquals(mmath.NewVec3(1.0, 0.0, 0.0), 1e-9) {
		t.Fatalf("script should not share the caller slice: got=%v", pose.Position)
	}
}
