// 指示: miu200521358
package mmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ベクトル定数一覧。
var (
	// ZERO_VEC3 は零ベクトル。
	ZERO_VEC3 = Vec3{}
	// UNIT_X_VEC3 はX軸単位ベクトル。
	UNIT_X_VEC3 = Vec3{Vec: r3.Vec{X: 1.0}}
	// UNIT_Y_VEC3 はY軸単位ベクトル。
	UNIT_Y_VEC3 = Vec3{Vec: r3.Vec{Y: 1.0}}
	// UNIT_Z_VEC3 はZ軸単位ベクトル。
	UNIT_Z_VEC3 = Vec3{Vec: r3.Vec{Z: 1.0}}
	// UNIT_Y_NEG_VEC3 はY軸負方向単位ベクトル。
	UNIT_Y_NEG_VEC3 = Vec3{Vec: r3.Vec{Y: -1.0}}
	// VEC3_MIN_VAL は境界計算の初期最大値。
	VEC3_MIN_VAL = Vec3{Vec: r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}}
	// VEC3_MAX_VAL は境界計算の初期最小値。
	VEC3_MAX_VAL = Vec3{Vec: r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}}
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

// NewVec3 は成分を指定して3次元ベクトルを生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// Muled は成分ごとの乗算結果を返す。
func (v Vec3) Muled(other Vec3) Vec3 {
	return Vec3{Vec: r3.Vec{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z}}
}

// MuledScalar はスカラー倍した結果を返す。
func (v Vec3) MuledScalar(scale float64) Vec3 {
	return Vec3{Vec: r3.Scale(scale, v.Vec)}
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length はベクトル長を返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// LengthSquared はベクトル長の2乗を返す。
func (v Vec3) LengthSquared() float64 {
	return r3.Norm2(v.Vec)
}

// Distance は他ベクトルとの距離を返す。
func (v Vec3) Distance(other Vec3) float64 {
	return v.Subed(other).Length()
}

// DistanceSquared は他ベクトルとの距離の2乗を返す。
func (v Vec3) DistanceSquared(other Vec3) float64 {
	return v.Subed(other).LengthSquared()
}

// Normalized は正規化結果を返す。零ベクトルは零ベクトルのまま返す。
func (v Vec3) Normalized() Vec3 {
	if v.LengthSquared() == 0 {
		return ZERO_VEC3
	}
	return Vec3{Vec: r3.Unit(v.Vec)}
}

// Lerp は他ベクトルへの線形補間結果を返す。
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MuledScalar(t))
}

// Min は成分ごとの最小値を返す。
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{Vec: r3.Vec{
		X: math.Min(v.X, other.X),
		Y: math.Min(v.Y, other.Y),
		Z: math.Min(v.Z, other.Z),
	}}
}

// Max は成分ごとの最大値を返す。
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{Vec: r3.Vec{
		X: math.Max(v.X, other.X),
		Y: math.Max(v.Y, other.Y),
		Z: math.Max(v.Z, other.Z),
	}}
}

// NearEquals は許容誤差内で等しいか判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// IsZero は全成分が厳密に0か判定する。
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// MeanVec3 はベクトル群の平均を返す。空の場合は零ベクトルを返す。
func MeanVec3(values []Vec3) Vec3 {
	if len(values) == 0 {
		return ZERO_VEC3
	}
	sum := ZERO_VEC3
	for _, value := range values {
		sum = sum.Added(value)
	}
	return sum.MuledScalar(1.0 / float64(len(values)))
}

// DegToRad は度をラジアンへ変換する。
func DegToRad(degree float64) float64 {
	return degree * math.Pi / 180.0
}

// RadToDeg はラジアンを度へ変換する。
func RadToDeg(radian float64) float64 {
	return radian * 180.0 / math.Pi
}
