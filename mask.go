package zonalstats

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// 纯Go扫描线烧录：像元中心落在任一外环内（奇偶规则）即为内部
type ScanlineBurner struct{}

func (ScanlineBurner) Burn(fp Footprint, win Window, gt GeoTransform, _ string) (mask *image.Gray, err error) {
	if win.Empty() {
		err = fmt.Errorf("%w: %+v", ErrInvalidWindow, win)
		return
	}
	if gt.Rotated() {
		err = ErrRotatedGeoTransform
		return
	}
	wgt := win.GeoTransform(gt)
	mask = image.NewGray(image.Rect(0, 0, win.Width, win.Height))
	xs := make([]float64, 0, 16)
	for row := 0; row < win.Height; row++ {
		cy := wgt[3] + (float64(row)+0.5)*wgt[5]
		line := mask.Pix[row*mask.Stride : row*mask.Stride+win.Width]
		for _, ring := range fp.Rings {
			xs = ringCrossings(xs[:0], ring, cy)
			for i := 0; i+1 < len(xs); i += 2 {
				from := pixelCentreCol(xs[i], wgt, win.Width)
				to := pixelCentreCol(xs[i+1], wgt, win.Width)
				for c := from; c < to; c++ {
					line[c] = MASK_BURN_VALUE
				}
			}
		}
	}
	return
}

// 水平线y与环各边的交点x坐标（升序）
func ringCrossings(xs []float64, ring orb.Ring, y float64) []float64 {
	n := len(ring)
	for i := 0; i < n; i++ {
		p1, p2 := ring[i], ring[(i+1)%n]
		if (p1[1] <= y) == (p2[1] <= y) {
			continue
		}
		xs = append(xs, p1[0]+(y-p1[1])*(p2[0]-p1[0])/(p2[1]-p1[1]))
	}
	sort.Float64s(xs)
	return xs
}

// 第一个像元中心不小于x的列号
func pixelCentreCol(x float64, wgt GeoTransform, width int) int {
	c := math.Ceil((x-wgt[0])/wgt[1] - 0.5)
	switch {
	case c < 0:
		return 0
	case c > float64(width):
		return width
	}
	return int(c)
}

func maskCount(mask *image.Gray) (n int) {
	for _, v := range mask.Pix {
		if v == MASK_BURN_VALUE {
			n++
		}
	}
	return
}
