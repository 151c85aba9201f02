package zonalstats

import (
	"errors"
	"fmt"
	"io"

	"github.com/paulmach/orb"
)

// 顺序遍历定位第pos个要素（从0开始），复杂度O(pos)
func SeekFeature(layer VectorLayer, pos int) (f *Feature, err error) {
	if pos < 0 {
		err = fmt.Errorf("%w: position %d", ErrFeatureNotFound, pos)
		return
	}
	layer.ResetReading()
	for i := 0; i <= pos; i++ {
		if f, err = layer.NextFeature(); err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: position %d", ErrFeatureNotFound, pos)
			}
			f = nil
			return
		}
	}
	return
}

// 提取要素外环（丢弃内环）并转换到栅格坐标系，不修改原几何
func ExtractGeometry(geom orb.Geometry, t Transform) (fp Footprint, err error) {
	var polys []orb.Polygon
	switch g := geom.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{g}
	case orb.MultiPolygon:
		polys = g
	case nil:
		err = ErrEmptyGeometry
		return
	default:
		err = fmt.Errorf("%w: got %s", ErrUnsupportedGeometryType, geom.GeoJSONType())
		return
	}
	for _, p := range polys {
		if len(p) == 0 || len(p[0]) < 3 {
			continue
		}
		fp.Rings = append(fp.Rings, p[0].Clone())
	}
	if len(fp.Rings) == 0 {
		err = ErrEmptyGeometry
		return
	}
	if t != nil {
		for _, r := range fp.Rings {
			if err = t.Apply(r); err != nil {
				err = fmt.Errorf("%w: %w", ErrUnsupportedTransform, err)
				return
			}
		}
	}
	fp.Bound = fp.Rings[0].Bound()
	for _, r := range fp.Rings[1:] {
		fp.Bound = fp.Bound.Union(r.Bound())
	}
	return
}

type IndexedFeature struct {
	FID       int64
	Footprint Footprint
	// 该要素几何提取失败的原因
	Err error
}

// 一次遍历建立的要素索引，按位置O(1)查找；建立后只读，可在worker间共享
type FeatureIndex struct {
	feats []IndexedFeature
}

func BuildFeatureIndex(layer VectorLayer, t Transform) (idx *FeatureIndex, err error) {
	idx = &FeatureIndex{}
	if n, e := layer.FeatureCount(); e == nil && n > 0 {
		idx.feats = make([]IndexedFeature, 0, n)
	}
	layer.ResetReading()
	var f *Feature
	for {
		if f, err = layer.NextFeature(); err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				return
			}
			idx = nil
			return
		}
		item := IndexedFeature{FID: f.FID}
		item.Footprint, item.Err = ExtractGeometry(f.Geometry, t)
		idx.feats = append(idx.feats, item)
	}
}

func (idx *FeatureIndex) Len() int {
	return len(idx.feats)
}

func (idx *FeatureIndex) Lookup(pos int) (f IndexedFeature, err error) {
	if pos < 0 || pos >= len(idx.feats) {
		err = fmt.Errorf("%w: position %d", ErrFeatureNotFound, pos)
		return
	}
	f = idx.feats[pos]
	return
}
