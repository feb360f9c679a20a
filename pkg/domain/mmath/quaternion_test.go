// 指示: miu200521358
package mmath

import (
	"math"
	"testing"
)

func TestNewQuaternionIsIdentity(t *testing.T) {
	identity := NewQuaternion()
	if math.Abs(identity.Length()-1.0) > 1e-9 {
		t.Fatalf("identity length mismatch: %f", identity.Length())
	}
	rotated := identity.MulVec3(NewVec3(1.0, 2.0, 3.0))
	if !rotated.NearEquals(NewVec3(1.0, 2.0, 3.0), 1e-9) {
		t.Fatalf("identity should not rotate: %v", rotated)
	}
}

func TestNewQuaternionFromDegreesRotatesAxes(t *testing.T) {
	rotX90 := NewQuaternionFromDegrees(90.0, 0.0, 0.0)
	if got := rotX90.MulVec3(UNIT_Y_VEC3); !got.NearEquals(UNIT_Z_VEC3, 1e-6) {
		t.Fatalf("x90 should map +Y to +Z: %v", got)
	}
	rotY90 := NewQuaternionFromDegrees(0.0, 90.0, 0.0)
	if got := rotY90.MulVec3(UNIT_Z_VEC3); !got.NearEquals(UNIT_X_VEC3, 1e-6) {
		t.Fatalf("y90 should map +Z to +X: %v", got)
	}
	rotZ90 := NewQuaternionFromDegrees(0.0, 0.0, 90.0)
	if got := rotZ90.MulVec3(UNIT_X_VEC3); !got.NearEquals(UNIT_Y_VEC3, 1e-6) {
		t.Fatalf("z90 should map +X to +Y: %v", got)
	}
}

func TestNewQuaternionFromAxisAngleMatchesEuler(t *testing.T) {
	fromAxis := NewQuaternionFromAxisAngle(UNIT_Y_VEC3, DegToRad(45.0))
	fromEuler := NewQuaternionFromDegrees(0.0, 45.0, 0.0)
	if !fromAxis.NearEquals(fromEuler, 1e-9) {
		t.Fatalf("axis angle mismatch: %v != %v", fromAxis, fromEuler)
	}
}

func TestQuaternionMuledComposesRotations(t *testing.T) {
	rotX := NewQuaternionFromDegrees(90.0, 0.0, 0.0)
	rotY := NewQuaternionFromDegrees(0.0, 90.0, 0.0)

	// 右乗算は右側の回転を先に適用する。
	composed := rotX.Muled(rotY)
	direct := rotX.MulVec3(rotY.MulVec3(UNIT_Z_VEC3))
	if got := composed.MulVec3(UNIT_Z_VEC3); !got.NearEquals(direct, 1e-6) {
		t.Fatalf("composition mismatch: %v != %v", got, direct)
	}
}

func TestQuaternionInverted(t *testing.T) {
	rotation := NewQuaternionFromDegrees(30.0, -45.0, 60.0)
	restored := rotation.Inverted().MulVec3(rotation.MulVec3(NewVec3(1.0, 2.0, 3.0)))
	if !restored.NearEquals(NewVec3(1.0, 2.0, 3.0), 1e-6) {
		t.Fatalf("inverse should undo rotation: %v", restored)
	}
}

func TestQuaternionNormalized(t *testing.T) {
	scaled := NewQuaternionByValues(0.0, 2.0, 0.0, 0.0)
	normalized := scaled.Normalized()
	if math.Abs(normalized.Length()-1.0) > 1e-9 {
		t.Fatalf("normalized length mismatch: %f", normalized.Length())
	}
	zero := Quaternion{}
	if !zero.Normalized().NearEquals(NewQuaternion(), 1e-9) {
		t.Fatalf("zero quaternion should normalize to identity")
	}
}

func TestQuaternionEulerRoundTrip(t *testing.T) {
	cases := []Vec3{
		NewVec3(DegToRad(30.0), DegToRad(45.0), DegToRad(-60.0)),
		NewVec3(DegToRad(-10.0), DegToRad(5.0), DegToRad(170.0)),
		NewVec3(DegToRad(0.0), DegToRad(0.0), DegToRad(0.0)),
		NewVec3(DegToRad(-85.0), DegToRad(20.0), DegToRad(15.0)),
	}
	for _, angles := range cases {
		quaternion := NewQuaternionFromRadians(angles.X, angles.Y, angles.Z)
		decomposed := quaternion.ToRadians()
		recomposed := NewQuaternionFromRadians(decomposed.X, decomposed.Y, decomposed.Z)
		if !recomposed.NearEquals(quaternion, 1e-6) {
			t.Fatalf("euler round trip mismatch: angles=%v decomposed=%v", angles, decomposed)
		}
	}
}

func TestQuaternionToDegrees(t *testing.T) {
	rotation := NewQuaternionFromDegrees(0.0, 30.0, 0.0)
	degrees := rotation.ToDegrees()
	if math.Abs(degrees.Y-30.0) > 1e-6 {
		t.Fatalf("y degree mismatch: %v", degrees)
	}
	if math.Abs(degrees.X) > 1e-6 || math.Abs(degrees.Z) > 1e-6 {
		t.Fatalf("x/z should stay zero: %v", degrees)
	}
}

func TestQuaternionNearEqualsHandlesNegation(t *testing.T) {
	rotation := NewQuaternionFromDegrees(10.0, 20.0, 30.0)
	negated := NewQuaternionByValues(-rotation.Imag, -rotation.Jmag, -rotation.Kmag, -rotation.Real)
	if !rotation.NearEquals(negated, 1e-9) {
		t.Fatalf("negated quaternion represents the same rotation")
	}
}
