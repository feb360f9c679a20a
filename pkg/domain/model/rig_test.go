// 指示: miu200521358
package model

import (
	"testing"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
)

func TestParseRigKind(t *testing.T) {
	kind, err := ParseRigKind("normalized")
	if err != nil || kind != RigKindNormalized {
		t.Fatalf("normalized parse failed: kind=%v err=%v", kind, err)
	}
	kind, err = ParseRigKind(" Named ")
	if err != nil || kind != RigKindNamedConvention {
		t.Fatalf("named parse failed: kind=%v err=%v", kind, err)
	}
	if _, err := ParseRigKind("generic"); err == nil {
		t.Fatalf("unknown rig kind should fail")
	}
}

func TestRigKindString(t *testing.T) {
	if RigKindNormalized.String() != "normalized" {
		t.Fatalf("normalized string mismatch: %s", RigKindNormalized)
	}
	if RigKindNamedConvention.String() != "named" {
		t.Fatalf("named string mismatch: %s", RigKindNamedConvention)
	}
	if RigKind(0).Valid() {
		t.Fatalf("zero rig kind should be invalid")
	}
}

func TestNormalizedResolverFindsExactNames(t *testing.T) {
	skeleton := newArmTestSkeleton(t)
	resolver, err := NewBoneResolver(RigKindNormalized)
	if err != nil {
		t.Fatalf("resolver build failed: %v", err)
	}

	bone, exists := resolver.Resolve(skeleton, HumanBoneLeftUpperArm)
	if !exists {
		t.Fatalf("leftUpperArm should resolve")
	}
	if bone.Name() != "leftUpperArm" {
		t.Fatalf("resolved name mismatch: %s", bone.Name())
	}
	if _, exists := resolver.Resolve(skeleton, HumanBoneRightHand); exists {
		t.Fatalf("missing bone should not resolve")
	}
}

func TestNormalizedResolverSkipsSystemBones(t *testing.T) {
	skeleton := NewSkeleton()
	systemBone := NewBone(string(HumanBoneLeftHand), InvalidBoneIndex, mmath.ZERO_VEC3)
	systemBone.IsSystem = true
	if _, err := skeleton.AppendBone(systemBone, NewTransform()); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	resolver, err := NewBoneResolver(RigKindNormalized)
	if err != nil {
		t.Fatalf("resolver build failed: %v", err)
	}
	if _, exists := resolver.Resolve(skeleton, HumanBoneLeftHand); exists {
		t.Fatalf("system bone should be skipped")
	}
}

func TestNamedConventionResolverFindsMixamoStyleNames(t *testing.T) {
	skeleton := NewSkeleton()
	hips := mustAppendTestBone(t, skeleton, "mixamorig:Hips", InvalidBoneIndex, mmath.NewVec3(0, 10, 0))
	arm := mustAppendTestBone(t, skeleton, "mixamorig:LeftArm", hips, mmath.NewVec3(1.2, 4.5, 0))
	foreArm := mustAppendTestBone(t, skeleton, "mixamorig:LeftForeArm", arm, mmath.NewVec3(1.0, -0.5, 0))
	mustAppendTestBone(t, skeleton, "mixamorig:LeftHand", foreArm, mmath.NewVec3(0.8, -0.5, 0))

	resolver, err := NewBoneResolver(RigKindNamedConvention)
	if err != nil {
		t.Fatalf("resolver build failed: %v", err)
	}

	upperArm, exists := resolver.Resolve(skeleton, HumanBoneLeftUpperArm)
	if !exists || upperArm.Name() != "mixamorig:LeftArm" {
		t.Fatalf("upper arm resolve mismatch: %v exists=%v", upperArm.Name(), exists)
	}
	lowerArm, exists := resolver.Resolve(skeleton, HumanBoneLeftLowerArm)
	if !exists || lowerArm.Name() != "mixamorig:LeftForeArm" {
		t.Fatalf("lower arm resolve mismatch: %v exists=%v", lowerArm.Name(), exists)
	}
	hand, exists := resolver.Resolve(skeleton, HumanBoneLeftHand)
	if !exists || hand.Name() != "mixamorig:LeftHand" {
		t.Fatalf("hand resolve mismatch: %v exists=%v", hand.Name(), exists)
	}
}

func TestNamedConventionResolverAcceptsSmallTypos(t *testing.T) {
	skeleton := NewSkeleton()
	root := mustAppendTestBone(t, skeleton, "root", InvalidBoneIndex, mmath.ZERO_VEC3)
	mustAppendTestBone(t, skeleton, "Left_UperArm", root, mmath.NewVec3(1.2, 4.5, 0))

	resolver, err := NewBoneResolver(RigKindNamedConvention)
	if err != nil {
		t.Fatalf("resolver build failed: %v", err)
	}
	bone, exists := resolver.Resolve(skeleton, HumanBoneLeftUpperArm)
	if !exists {
		t.Fatalf("typo name should still resolve")
	}
	if bone.Name() != "Left_UperArm" {
		t.Fatalf("resolved name mismatch: %s", bone.Name())
	}
}

func TestNamedConventionResolverRejectsUnrelatedNames(t *testing.T) {
	skeleton := NewSkeleton()
	root := mustAppendTestBone(t, skeleton, "root", InvalidBoneIndex, mmath.ZERO_VEC3)
	mustAppendTestBone(t, skeleton, "tailFeather", root, mmath.ZERO_VEC3)

	resolver, err := NewBoneResolver(RigKindNamedConvention)
	if err != nil {
		t.Fatalf("resolver build failed: %v", err)
	}
	if _, exists := resolver.Resolve(skeleton, HumanBoneLeftHand); exists {
		t.Fatalf("unrelated names should not resolve")
	}
}

func TestHumanBonePairSides(t *testing.T) {
	if UPPER_ARM.Left() != HumanBoneLeftUpperArm || UPPER_ARM.Right() != HumanBoneRightUpperArm {
		t.Fatalf("upper arm pair mismatch: %s %s", UPPER_ARM.Left(), UPPER_ARM.Right())
	}
	if LOWER_ARM.Left() != HumanBoneLeftLowerArm || LOWER_ARM.Right() != HumanBoneRightLowerArm {
		t.Fatalf("lower arm pair mismatch: %s %s", LOWER_ARM.Left(), LOWER_ARM.Right())
	}
	if HAND.Left() != HumanBoneLeftHand || HAND.Right() != HumanBoneRightHand {
		t.Fatalf("hand pair mismatch: %s %s", HAND.Left(), HAND.Right())
	}
}
