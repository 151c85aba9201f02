package gdalsrc

import (
	"strings"
	"sync"

	zs "github.com/wgdzlh/zonalstats"
	"github.com/wgdzlh/zonalstats/log"

	gdal "github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// 基于GDAL/PROJ的坐标转换，坐标系对象按WKT缓存复用
type Reprojector struct {
	refMap map[string]*gdal.SpatialRef
	rLock  sync.Mutex
	logTag string
}

func NewReprojector() *Reprojector {
	return &Reprojector{
		refMap: map[string]*gdal.SpatialRef{},
		logTag: "Reprojector:",
	}
}

// 获取WKT对应的坐标系（可复用，故无需回收）
func (g *Reprojector) getRef(wkt string) (ref *gdal.SpatialRef, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[wkt]
	if ok {
		return
	}
	if strings.HasPrefix(strings.ToUpper(wkt), "EPSG:") {
		ref, err = gdal.NewSpatialRefFromEPSG(zs.SridOf(wkt))
	} else {
		ref, err = gdal.NewSpatialRefFromWKT(wkt)
	}
	if err != nil {
		log.Error(g.logTag+"create spatial ref failed", zap.Int("srid", zs.SridOf(wkt)), zap.Error(err))
		return
	}
	g.refMap[wkt] = ref
	return
}

// 释放缓存的坐标系
func (g *Reprojector) Close() {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	for k, ref := range g.refMap {
		ref.Close()
		delete(g.refMap, k)
	}
}

type transform struct {
	trn *gdal.Transform
}

func (g *Reprojector) NewTransform(srcWKT, dstWKT string) (t zs.Transform, err error) {
	// 矢量坐标系未定义时按原坐标使用
	if srcWKT == "" {
		t = transform{}
		return
	}
	src, err := g.getRef(srcWKT)
	if err != nil {
		return
	}
	dst, err := g.getRef(dstWKT)
	if err != nil {
		return
	}
	if src.IsSame(dst) {
		t = transform{}
		return
	}
	trn, err := gdal.NewTransform(src, dst)
	if err != nil {
		log.Error(g.logTag+"create transform failed", zap.Error(err))
		return
	}
	t = transform{trn}
	return
}

func (t transform) Apply(pts []orb.Point) error {
	if t.trn == nil || len(pts) == 0 {
		return nil
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p[0], p[1]
	}
	if err := t.trn.TransformEx(xs, ys, nil, nil); err != nil {
		return err
	}
	for i := range pts {
		pts[i] = orb.Point{xs[i], ys[i]}
	}
	return nil
}

func (t transform) Close() {
	if t.trn != nil {
		t.trn.Close()
	}
}
