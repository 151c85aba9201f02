package zonalstats

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanlineBurnRect(t *testing.T) {
	fp := footprint(t, rect(3, -5, 7, -2))
	win := Window{XOff: 3, YOff: 2, Width: 5, Height: 4}
	mask, err := ScanlineBurner{}.Burn(fp, win, unitGT, WGS84_WKT)
	require.NoError(t, err)
	assert.Equal(t, 12, maskCount(mask))
	for row := 0; row < win.Height; row++ {
		for col := 0; col < win.Width; col++ {
			want := row < 3 && col < 4
			assert.Equal(t, want, mask.GrayAt(col, row).Y == MASK_BURN_VALUE, "row %d col %d", row, col)
		}
	}
}

func TestScanlineBurnMatchesRingContains(t *testing.T) {
	ring := orb.Ring{{0.3, -0.2}, {8.7, -1.1}, {6.2, -5.3}, {9.4, -9.6}, {1.1, -7.9}, {3.3, -4.4}, {0.3, -0.2}}
	ri := RasterInfo{GeoTransform: unitGT, Width: 10, Height: 10}
	fp := footprint(t, orb.Polygon{ring})
	win, err := ResolveWindow(fp, ri)
	require.NoError(t, err)
	mask, err := ScanlineBurner{}.Burn(fp, win, unitGT, "")
	require.NoError(t, err)

	wgt := win.GeoTransform(unitGT)
	n := 0
	for row := 0; row < win.Height; row++ {
		for col := 0; col < win.Width; col++ {
			centre := wgt.Apply(float64(col)+0.5, float64(row)+0.5)
			want := planar.RingContains(ring, centre)
			if want {
				n++
			}
			assert.Equal(t, want, mask.GrayAt(col, row).Y == MASK_BURN_VALUE, "centre %v", centre)
		}
	}
	assert.Equal(t, n, maskCount(mask))
	assert.Positive(t, n)
}

func TestScanlineBurnMultiPolygonDropsHoles(t *testing.T) {
	outer := rect(0, -6, 6, 0)
	outer = append(outer, orb.Ring{{2, -4}, {4, -4}, {4, -2}, {2, -2}, {2, -4}})
	mp := orb.MultiPolygon{outer, rect(7, -2, 9, 0)}
	fp := footprint(t, mp)
	require.Len(t, fp.Rings, 2)

	win, err := ResolveWindow(fp, RasterInfo{GeoTransform: unitGT, Width: 10, Height: 10})
	require.NoError(t, err)
	mask, err := ScanlineBurner{}.Burn(fp, win, unitGT, "")
	require.NoError(t, err)
	assert.Equal(t, 36+4, maskCount(mask))
	assert.Equal(t, uint8(0), mask.GrayAt(6, 0).Y)
}

func TestScanlineBurnOverlappingRings(t *testing.T) {
	mp := orb.MultiPolygon{rect(0, -4, 4, 0), rect(2, -4, 6, 0)}
	fp := footprint(t, mp)
	win := Window{Width: 6, Height: 4}
	mask, err := ScanlineBurner{}.Burn(fp, win, unitGT, "")
	require.NoError(t, err)
	assert.Equal(t, 24, maskCount(mask))
}

func TestScanlineBurnErrors(t *testing.T) {
	fp := footprint(t, rect(0, -1, 1, 0))
	_, err := ScanlineBurner{}.Burn(fp, Window{}, unitGT, "")
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = ScanlineBurner{}.Burn(fp, Window{Width: 1, Height: 1}, GeoTransform{0, 1, 0, 0, 0.5, -1}, "")
	assert.ErrorIs(t, err, ErrRotatedGeoTransform)
}
