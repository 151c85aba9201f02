package zonalstats

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
)

// 原点(0,0)、像元1x1的北向上栅格
var unitGT = GeoTransform{0, 1, 0, 0, 0, -1}

func rect(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

// 以(cx,cy)为中心、半边长为r的正方形
func square(cx, cy, r float64) orb.Polygon {
	return rect(cx-r, cy-r, cx+r, cy+r)
}

func analyticValue(row, col int) float64 {
	return float64(row*10 + col)
}

func analyticRaster(w, h int) *MemRaster {
	data := make([]float64, w*h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			data[r*w+c] = analyticValue(r, c)
		}
	}
	return NewMemRaster(unitGT, WGS84_WKT, w, h, data)
}

func constRaster(w, h int, v float64) *MemRaster {
	data := make([]float64, w*h)
	for i := range data {
		data[i] = v
	}
	return NewMemRaster(unitGT, WGS84_WKT, w, h, data)
}

func features(geoms ...orb.Geometry) []*Feature {
	fs := make([]*Feature, len(geoms))
	for i, g := range geoms {
		fs[i] = &Feature{FID: int64(i), Geometry: g}
	}
	return fs
}

type memVectorOpener map[string]*MemLayer

func (o memVectorOpener) OpenVector(path, layer string) (VectorLayer, error) {
	l, ok := o[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileOpen, path)
	}
	if layer != "" && layer != l.Name() {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, layer)
	}
	return l, nil
}

const (
	testVector = "parcels.shp"
	testRaster = "scene.tif"
)

func newTestToolbox(r *MemRaster, opts Options, feats ...*Feature) *ZonalToolbox {
	return NewZonalToolbox(Provider{
		Vector: memVectorOpener{testVector: NewMemLayer("parcels", WGS84_WKT, feats...)},
		Raster: MemRasterOpener{testRaster: r},
	}, opts)
}

type mockRaster struct {
	mock.Mock
	*MemRaster
}

func (m *mockRaster) ReadWindow(band int, win Window, buf []float64) error {
	args := m.Called(band, win)
	return args.Error(0)
}

type mockRasterOpener struct {
	r RasterSource
}

func (o mockRasterOpener) OpenRaster(string) (RasterSource, error) {
	return o.r, nil
}
