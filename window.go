package zonalstats

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// 栅格的几何信息
type RasterInfo struct {
	GeoTransform GeoTransform
	Width        int
	Height       int
}

func InfoOf(r RasterSource) (info RasterInfo) {
	info.GeoTransform = r.GeoTransform()
	info.Width, info.Height = r.Size()
	return
}

// 栅格地理范围
func (ri RasterInfo) Extent() (b orb.Bound) {
	gt := ri.GeoTransform
	x0, x1 := gt[0], gt[0]+float64(ri.Width)*gt[1]
	y0, y1 := gt[3], gt[3]+float64(ri.Height)*gt[5]
	b.Min = orb.Point{math.Min(x0, x1), math.Min(y0, y1)}
	b.Max = orb.Point{math.Max(x0, x1), math.Max(y0, y1)}
	return
}

func clampIdx(v float64, n int) int {
	switch {
	case v < 0:
		return 0
	case v > float64(n-1):
		return n - 1
	}
	return int(v)
}

// 由要素外包框计算像素对齐的读取窗口，外包框中点必须落在栅格范围内（含边界）
func ResolveWindow(fp Footprint, ri RasterInfo) (win Window, err error) {
	gt := ri.GeoTransform
	if gt.Rotated() {
		err = ErrRotatedGeoTransform
		return
	}
	pw, ph := gt[1], math.Abs(gt[5])
	if pw <= 0 || ph == 0 || ri.Width <= 0 || ri.Height <= 0 {
		err = fmt.Errorf("%w: pixel size %gx%g, raster %dx%d", ErrInvalidWindow, pw, gt[5], ri.Width, ri.Height)
		return
	}
	if !ri.Extent().Contains(fp.Centroid()) {
		err = fmt.Errorf("%w: centroid %v, extent %v-%v", ErrPolygonOutsideRaster, fp.Centroid(), ri.Extent().Min, ri.Extent().Max)
		return
	}
	b := fp.Bound
	firstX := math.Floor((b.Min[0] - gt[0]) / pw)
	lastX := math.Floor((b.Max[0] - gt[0]) / pw)
	var firstY, lastY float64
	if gt[5] < 0 {
		firstY = math.Floor((gt[3] - b.Max[1]) / ph)
		lastY = math.Floor((gt[3] - b.Min[1]) / ph)
	} else {
		firstY = math.Floor((b.Min[1] - gt[3]) / ph)
		lastY = math.Floor((b.Max[1] - gt[3]) / ph)
	}
	win.XOff = clampIdx(firstX, ri.Width)
	win.YOff = clampIdx(firstY, ri.Height)
	win.Width = clampIdx(lastX, ri.Width) - win.XOff + 1
	win.Height = clampIdx(lastY, ri.Height) - win.YOff + 1
	if win.Empty() {
		err = fmt.Errorf("%w: %+v", ErrInvalidWindow, win)
	}
	return
}
