// 指示: miu200521358
package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/miu200521358/mu_vrm_ik/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
)

func TestParseOptionsDefaults(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions(nil, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.rigKind != model.RigKindNormalized {
		t.Fatalf("rigKind mismatch: %v", opts.rigKind)
	}
	if opts.interval != 0 {
		t.Fatalf("interval mismatch: %f", opts.interval)
	}
	if opts.ticks != 240 {
		t.Fatalf("ticks mismatch: %d", opts.ticks)
	}
	if opts.debug {
		t.Fatalf("debug should default to false")
	}
	if opts.realtime != 0 {
		t.Fatalf("realtime mismatch: %v", opts.realtime)
	}
}

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{
		"-rig", "named",
		"-interval", "0.02",
		"-ticks", "12",
		"-debug",
		"-realtime", "250ms",
	}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.rigKind != model.RigKindNamedConvention {
		t.Fatalf("rigKind mismatch: %v", opts.rigKind)
	}
	if opts.interval != 0.02 {
		t.Fatalf("interval mismatch: %f", opts.interval)
	}
	if opts.ticks != 12 {
		t.Fatalf("ticks mismatch: %d", opts.ticks)
	}
	if !opts.debug {
		t.Fatalf("debug flag not applied")
	}
	if opts.realtime != 250*time.Millisecond {
		t.Fatalf("realtime mismatch: %v", opts.realtime)
	}
}

func TestParseOptionsRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{name: "unknown rig kind", args: []string{"-rig", "generic"}},
		{name: "negative interval", args: []string{"-interval", "-0.01"}},
		{name: "zero ticks without realtime", args: []string{"-ticks", "0"}},
		{name: "unknown flag", args: []string{"-nope"}},
	}
	for _, c := range cases {
		errBuf := bytes.NewBuffer(nil)
		if _, err := parseOptions(c.args, errBuf); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestParseOptionsAllowsZeroTicksWithRealtime(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"-ticks", "0", "-realtime", "10ms"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.realtime != 10*time.Millisecond {
		t.Fatalf("realtime mismatch: %v", opts.realtime)
	}
}

func TestBuildDemoSkeletonNormalized(t *testing.T) {
	skeleton, rootName, err := buildDemoSkeleton(model.RigKindNormalized)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if rootName != "hips" {
		t.Fatalf("root name mismatch: %s", rootName)
	}

	hand, exists := skeleton.GetByName("leftHand")
	if !exists {
		t.Fatalf("leftHand not found")
	}
	world, err := skeleton.WorldPosition(hand.Index())
	if err != nil {
		t.Fatalf("world position failed: %v", err)
	}
	if !world.NearEquals(mmath.NewVec3(0.68, 1.32, 0), 1e-9) {
		t.Fatalf("leftHand world mismatch: %v", world)
	}

	for _, name := range []string{
		"hips", "spine", "chest",
		"leftShoulder", "leftUpperArm", "leftLowerArm", "leftHand",
		"rightShoulder", "rightUpperArm", "rightLowerArm", "rightHand",
	} {
		if !skeleton.ContainsByName(name) {
			t.Fatalf("bone missing: %s", name)
		}
	}
}

func TestBuildDemoSkeletonNamedResolvesArmBones(t *testing.T) {
	skeleton, rootName, err := buildDemoSkeleton(model.RigKindNamedConvention)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if rootName != "mixamorig:Hips" {
		t.Fatalf("root name mismatch: %s", rootName)
	}
	if !skeleton.ContainsByName(rootName) {
		t.Fatalf("root bone missing: %s", rootName)
	}

	resolver, err := model.NewBoneResolver(model.RigKindNamedConvention)
	if err != nil {
		t.Fatalf("resolver build failed: %v", err)
	}
	expected := map[model.HumanBoneKey]string{
		model.HumanBoneLeftUpperArm:  "mixamorig:LeftArm",
		model.HumanBoneLeftLowerArm:  "mixamorig:LeftForeArm",
		model.HumanBoneLeftHand:      "mixamorig:LeftHand",
		model.HumanBoneRightUpperArm: "mixamorig:RightArm",
		model.HumanBoneRightLowerArm: "mixamorig:RightForeArm",
		model.HumanBoneRightHand:     "mixamorig:RightHand",
	}
	for key, name := range expected {
		bone, found := resolver.Resolve(skeleton, key)
		if !found {
			t.Fatalf("key not resolved: %s", key)
		}
		if bone.Name() != name {
			t.Fatalf("key %s resolved to %s, expected %s", key, bone.Name(), name)
		}
	}
}

func TestRunSolvesScriptedTrajectory(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-ticks", "3"}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	output := outBuf.String()
	if !strings.Contains(output, "IKチェーン構築成功: leftArmIk") {
		t.Fatalf("left chain line missing: %s", output)
	}
	if !strings.Contains(output, "IKチェーン構築成功: rightArmIk") {
		t.Fatalf("right chain line missing: %s", output)
	}
	if !strings.Contains(output, "IK更新完了: 3回") {
		t.Fatalf("tick summary missing: %s", output)
	}
	if !strings.Contains(output, "左腕: 解決3回 リセット0回") {
		t.Fatalf("left arm summary missing: %s", output)
	}
	if !strings.Contains(output, "右腕: 解決3回 リセット0回") {
		t.Fatalf("right arm summary missing: %s", output)
	}
	if strings.Contains(output, "警告") {
		t.Fatalf("unexpected warning: %s", output)
	}
}

func TestRunResetsAfterTrajectoryEnd(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-ticks", "6"}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// 台本は4姿勢+原点姿勢。5tick目以降は末尾の原点姿勢が保持されてリセットが続く。
	output := outBuf.String()
	if !strings.Contains(output, "左腕: 解決4回 リセット2回") {
		t.Fatalf("left arm summary missing: %s", output)
	}
	if !strings.Contains(output, "右腕: 解決4回 リセット2回") {
		t.Fatalf("right arm summary missing: %s", output)
	}
}

func TestRunWithNamedRig(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-rig", "named", "-ticks", "2"}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	output := outBuf.String()
	if !strings.Contains(output, "IKチェーン構築成功: leftArmIk") {
		t.Fatalf("left chain line missing: %s", output)
	}
	if !strings.Contains(output, "IK更新完了: 2回") {
		t.Fatalf("tick summary missing: %s", output)
	}
}

func TestRunWithDebugPrintsChainView(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-ticks", "1", "-debug"}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(outBuf.String(), "チェーン表示: 2本") {
		t.Fatalf("chain view summary missing: %s", outBuf.String())
	}
}

func TestRunRealtimeDrivesTicks(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-realtime", "40ms", "-interval", "0.005"}, outBuf, errBuf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(outBuf.String(), "IK更新完了") {
		t.Fatalf("tick summary missing: %s", outBuf.String())
	}
}

func TestRunRejectsInvalidArgs(t *testing.T) {
	outBuf := bytes.NewBuffer(nil)
	errBuf := bytes.NewBuffer(nil)
	if err := run([]string{"-rig", "generic"}, outBuf, errBuf); err == nil {
		t.Fatalf("expected error for unknown rig kind")
	}
}

func TestWarningTextMapsKnownIds(t *testing.T) {
	text := warningText(model.IkWarningLeftArmBoneMissing)
	if !strings.Contains(text, messages.MessageArmBoneMissing) {
		t.Fatalf("arm warning text mismatch: %s", text)
	}
	text = warningText(model.IkWarningRightPoseSourceMissing)
	if !strings.Contains(text, messages.MessageSourceMissing) {
		t.Fatalf("source warning text mismatch: %s", text)
	}
	if warningText("unknown") != "unknown" {
		t.Fatalf("unknown id should pass through")
	}
}
