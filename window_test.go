package zonalstats

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func footprint(t *testing.T, g orb.Geometry) Footprint {
	fp, err := ExtractGeometry(g, nil)
	require.NoError(t, err)
	return fp
}

func TestResolveWindow(t *testing.T) {
	ri := RasterInfo{GeoTransform: unitGT, Width: 10, Height: 8}
	cases := []struct {
		name string
		geom orb.Geometry
		want Window
	}{
		{"aligned", rect(3, -5, 7, -2), Window{XOff: 3, YOff: 2, Width: 5, Height: 4}},
		{"fractional", rect(3.4, -4.6, 6.2, -2.1), Window{XOff: 3, YOff: 2, Width: 4, Height: 3}},
		{"clipped", rect(-3, -10, 4, -5.5), Window{XOff: 0, YOff: 5, Width: 5, Height: 3}},
		{"whole", rect(0, -8, 10, 0), Window{XOff: 0, YOff: 0, Width: 10, Height: 8}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			win, err := ResolveWindow(footprint(t, c.geom), ri)
			require.NoError(t, err)
			assert.Equal(t, c.want, win)
		})
	}
}

func TestResolveWindowPixelHeight(t *testing.T) {
	// 像元宽高不同，Y方向按像元高计算
	ri := RasterInfo{GeoTransform: GeoTransform{100, 2, 0, 50, 0, -5}, Width: 10, Height: 10}
	win, err := ResolveWindow(footprint(t, rect(104, 20, 108, 40)), ri)
	require.NoError(t, err)
	assert.Equal(t, Window{XOff: 2, YOff: 2, Width: 3, Height: 5}, win)
}

func TestResolveWindowSouthUp(t *testing.T) {
	ri := RasterInfo{GeoTransform: GeoTransform{0, 1, 0, 0, 0, 1}, Width: 5, Height: 5}
	win, err := ResolveWindow(footprint(t, rect(1.5, 1.5, 3.5, 2.5)), ri)
	require.NoError(t, err)
	assert.Equal(t, Window{XOff: 1, YOff: 1, Width: 3, Height: 2}, win)
}

func TestResolveWindowErrors(t *testing.T) {
	ri := RasterInfo{GeoTransform: unitGT, Width: 4, Height: 4}

	_, err := ResolveWindow(footprint(t, rect(4, -3, 6, -1)), ri)
	assert.ErrorIs(t, err, ErrPolygonOutsideRaster)

	for _, g := range []orb.Geometry{rect(3, -1, 5, 0), rect(-1, -4.5, 1, -3.5), square(0, 0, 0.5)} {
		_, err = ResolveWindow(footprint(t, g), ri)
		assert.NoError(t, err, "centroid on edge")
	}

	rot := ri
	rot.GeoTransform = GeoTransform{0, 1, 0.1, 0, 0, -1}
	_, err = ResolveWindow(footprint(t, rect(0, -1, 1, 0)), rot)
	assert.ErrorIs(t, err, ErrRotatedGeoTransform)

	zero := ri
	zero.GeoTransform = GeoTransform{0, 0, 0, 0, 0, -1}
	_, err = ResolveWindow(footprint(t, rect(0, -1, 1, 0)), zero)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindowGeoTransform(t *testing.T) {
	gt := GeoTransform{100, 2, 0, 50, 0, -5}
	wgt := Window{XOff: 3, YOff: 4, Width: 2, Height: 2}.GeoTransform(gt)
	assert.Equal(t, GeoTransform{106, 2, 0, 30, 0, -5}, wgt)
}
