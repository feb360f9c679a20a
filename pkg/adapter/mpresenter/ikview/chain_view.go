// 指示: miu200521358
package ikview

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/miu200521358/mu_vrm_ik/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_ik/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_ik/pkg/usecase/ikinteractor"
)

// chainPolylinePointCount は1チェーンあたりの頂点数。上腕/前腕/手首/ターゲット。
const chainPolylinePointCount = 4

// ChainView はIKチェーンの骨格ポリラインと境界情報を保持する。
//
// 頂点は描画バッファへ直接流せるようfloat32で持つ。境界と中心は
// カメラ合わせ用にfloat64のまま保持する。
type ChainView struct {
	attached  bool
	polylines [][]mgl32.Vec3
	boundsMin mmath.Vec3
	boundsMax mmath.Vec3
	center    mmath.Vec3
}

// NewChainView は接続済みの可視化ビューを生成する。
func NewChainView() *ChainView {
	return &ChainView{
		attached:  true,
		boundsMin: mmath.VEC3_MAX_VAL,
		boundsMax: mmath.VEC3_MIN_VAL,
	}
}

// Refresh は現在のチェーン状態からポリラインと境界を作り直す。
// ワールド位置を引けないチェーンは表示から外すだけでエラーにしない。
func (v *ChainView) Refresh(skeleton *model.Skeleton, chains []*ikinteractor.Chain) {
	if !v.attached || skeleton == nil {
		return
	}

	v.polylines = v.polylines[:0]
	points := make([]mmath.Vec3, 0, len(chains)*chainPolylinePointCount)
	for _, chain := range chains {
		polyline, chainPoints, ok := buildChainPolyline(skeleton, chain)
		if !ok {
			continue
		}
		v.polylines = append(v.polylines, polyline)
		points = append(points, chainPoints...)
	}

	v.boundsMin = mmath.VEC3_MAX_VAL
	v.boundsMax = mmath.VEC3_MIN_VAL
	for _, point := range points {
		v.boundsMin = v.boundsMin.Min(point)
		v.boundsMax = v.boundsMax.Max(point)
	}
	v.center = mmath.MeanVec3(points)
}

// Detach は可視化を切り離し、以後のRefreshを無効化する。複数回呼んでも安全。
func (v *ChainView) Detach() {
	if !v.attached {
		return
	}
	v.attached = false
	v.polylines = nil
	v.boundsMin = mmath.VEC3_MAX_VAL
	v.boundsMax = mmath.VEC3_MIN_VAL
	v.center = mmath.ZERO_VEC3
}

// Attached は可視化が接続中か返す。
func (v *ChainView) Attached() bool {
	return v.attached
}

// Polylines は最新のチェーンポリライン一覧を返す。
func (v *ChainView) Polylines() [][]mgl32.Vec3 {
	return v.polylines
}

// Center は表示中の全頂点の重心を返す。
func (v *ChainView) Center() mmath.Vec3 {
	return v.center
}

// Bounds は表示中の全頂点の最小・最大座標を返す。
func (v *ChainView) Bounds() (mmath.Vec3, mmath.Vec3) {
	return v.boundsMin, v.boundsMax
}

// buildChainPolyline は1チェーン分の 上腕→前腕→手首→ターゲット 頂点列を作る。
func buildChainPolyline(
	skeleton *model.Skeleton,
	chain *ikinteractor.Chain,
) ([]mgl32.Vec3, []mmath.Vec3, bool) {
	if chain == nil || chain.Target == nil || chain.Effector == nil {
		return nil, nil, false
	}
	upperArm := chain.UpperArmLink()
	lowerArm := chain.LowerArmLink()
	if upperArm.Bone == nil || lowerArm.Bone == nil {
		return nil, nil, false
	}

	boneIndexes := []int{
		upperArm.Bone.Index(),
		lowerArm.Bone.Index(),
		chain.Effector.Index(),
		chain.Target.Index(),
	}
	points := make([]mmath.Vec3, 0, chainPolylinePointCount)
	polyline := make([]mgl32.Vec3, 0, chainPolylinePointCount)
	for _, boneIndex := range boneIndexes {
		world, err := skeleton.WorldPosition(boneIndex)
		if err != nil {
			return nil, nil, false
		}
		points = append(points, world)
		polyline = append(polyline, mgl32.Vec3{float32(world.X), float32(world.Y), float32(world.Z)})
	}
	return polyline, points, true
}
