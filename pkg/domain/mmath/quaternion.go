// 指示: miu200521358
package mmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

const quaternionGimbalLockThreshold = 0.999999

// Quaternion は回転クォータニオンを表す。
type Quaternion struct {
	quat.Number
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{Number: quat.Number{Real: 1.0}}
}

// NewQuaternionByValues は成分を指定してクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{Number: quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}}
}

// NewQuaternionFromRadians はXYZ順オイラー角(ラジアン)からクォータニオンを生成する。
func NewQuaternionFromRadians(x, y, z float64) Quaternion {
	cx := math.Cos(x * 0.5)
	sx := math.Sin(x * 0.5)
	cy := math.Cos(y * 0.5)
	sy := math.Sin(y * 0.5)
	cz := math.Cos(z * 0.5)
	sz := math.Sin(z * 0.5)

	return Quaternion{Number: quat.Number{
		Real: cx*cy*cz - sx*sy*sz,
		Imag: sx*cy*cz + cx*sy*sz,
		Jmag: cx*sy*cz - sx*cy*sz,
		Kmag: cx*cy*sz + sx*sy*cz,
	}}
}

// NewQuaternionFromDegrees はXYZ順オイラー角(度)からクォータニオンを生成する。
func NewQuaternionFromDegrees(x, y, z float64) Quaternion {
	return NewQuaternionFromRadians(DegToRad(x), DegToRad(y), DegToRad(z))
}

// NewQuaternionFromAxisAngle は回転軸と回転角(ラジアン)からクォータニオンを生成する。
// 軸は正規化済みであること。
func NewQuaternionFromAxisAngle(axis Vec3, angle float64) Quaternion {
	half := angle * 0.5
	sin := math.Sin(half)
	return Quaternion{Number: quat.Number{
		Real: math.Cos(half),
		Imag: axis.X * sin,
		Jmag: axis.Y * sin,
		Kmag: axis.Z * sin,
	}}
}

// Muled は右からotherを乗算した合成回転を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Number: quat.Mul(q.Number, other.Number)}
}

// MulVec3 はベクトルをこの回転で変換した結果を返す。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	pure := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q.Number, pure), quat.Conj(q.Number))
	return NewVec3(rotated.Imag, rotated.Jmag, rotated.Kmag)
}

// Inverted は逆回転を返す。零クォータニオンは単位クォータニオンを返す。
func (q Quaternion) Inverted() Quaternion {
	if q.Length() == 0 {
		return NewQuaternion()
	}
	return Quaternion{Number: quat.Inv(q.Number)}
}

// Normalized は正規化結果を返す。零クォータニオンは単位クォータニオンを返す。
func (q Quaternion) Normalized() Quaternion {
	length := q.Length()
	if length == 0 {
		return NewQuaternion()
	}
	return Quaternion{Number: quat.Scale(1.0/length, q.Number)}
}

// Dot は内積を返す。
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.Real*other.Real + q.Imag*other.Imag + q.Jmag*other.Jmag + q.Kmag*other.Kmag
}

// Length はノルムを返す。
func (q Quaternion) Length() float64 {
	return quat.Abs(q.Number)
}

// ToRadians はXYZ順オイラー角(ラジアン)へ分解する。
func (q Quaternion) ToRadians() Vec3 {
	n := q.Normalized()
	w, x, y, z := n.Real, n.Imag, n.Jmag, n.Kmag

	// 回転行列のR02成分からY角を取り出す。
	sinY := clampQuaternionValue(2.0*(x*z+w*y), -1.0, 1.0)
	angleY := math.Asin(sinY)

	if math.Abs(sinY) >= quaternionGimbalLockThreshold {
		// ジンバルロック時はZ角を0に固定してX角へ集約する。
		angleX := math.Atan2(2.0*(y*z+w*x), 1.0-2.0*(x*x+z*z))
		return NewVec3(angleX, angleY, 0)
	}

	angleX := math.Atan2(-2.0*(y*z-w*x), 1.0-2.0*(x*x+y*y))
	angleZ := math.Atan2(-2.0*(x*y-w*z), 1.0-2.0*(y*y+z*z))
	return NewVec3(angleX, angleY, angleZ)
}

// ToDegrees はXYZ順オイラー角(度)へ分解する。
func (q Quaternion) ToDegrees() Vec3 {
	radians := q.ToRadians()
	return NewVec3(RadToDeg(radians.X), RadToDeg(radians.Y), RadToDeg(radians.Z))
}

// NearEquals は符号反転した同値回転も含めて許容誤差内で等しいか判定する。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	if quaternionComponentsNear(q, other, epsilon) {
		return true
	}
	negated := Quaternion{Number: quat.Scale(-1.0, other.Number)}
	return quaternionComponentsNear(q, negated, epsilon)
}

// quaternionComponentsNear は成分単位の近似比較を行う。
func quaternionComponentsNear(a Quaternion, b Quaternion, epsilon float64) bool {
	return math.Abs(a.Real-b.Real) <= epsilon &&
		math.Abs(a.Imag-b.Imag) <= epsilon &&
		math.Abs(a.Jmag-b.Jmag) <= epsilon &&
		math.Abs(a.Kmag-b.Kmag) <= epsilon
}

// clampQuaternionValue はmin-maxで値をクランプする。
func clampQuaternionValue(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
