package zonalstats

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrans(t *testing.T) {
	x, y := Convert4326To3857(113.695688629, 29.971802123)
	assert.InDelta(t, 12656546.16, x, 0.01)
	assert.InDelta(t, 3499925.78, y, 0.01)
	lon, lat := Convert3857To4326(x, y)
	assert.InDelta(t, 113.695688629, lon, 1e-9)
	assert.InDelta(t, 29.971802123, lat, 1e-9)
}

func TestSridOf(t *testing.T) {
	cases := map[string]int{
		WGS84_WKT:    4326,
		WEB_MERC_WKT: 3857,
		"EPSG:4490":  4490,
		"epsg:32650": 32650,
		`GEOGCS["GCS_China_Geodetic_Coordinate_System_2000",DATUM["D_China_2000",SPHEROID["CGCS_2000",6378137.0,298.257222101]]]`: 4490,
		`LOCAL_CS["arbitrary"]`: 0,
		"":                      0,
	}
	for wkt, want := range cases {
		assert.Equal(t, want, SridOf(wkt), wkt)
	}
}

func TestPlanarReprojector(t *testing.T) {
	rp := PlanarReprojector{}

	id, err := rp.NewTransform("", WEB_MERC_WKT)
	require.NoError(t, err)
	pts := []orb.Point{{1, 2}}
	require.NoError(t, id.Apply(pts))
	assert.Equal(t, orb.Point{1, 2}, pts[0])

	same, err := rp.NewTransform("EPSG:3857", WEB_MERC_WKT)
	require.NoError(t, err)
	require.NoError(t, same.Apply(pts))
	assert.Equal(t, orb.Point{1, 2}, pts[0])

	fwd, err := rp.NewTransform(WGS84_WKT, WEB_MERC_WKT)
	require.NoError(t, err)
	back, err := rp.NewTransform(WEB_MERC_WKT, WGS84_WKT)
	require.NoError(t, err)
	pts = []orb.Point{{115.075725846, 31.360788281}, {0, 0}}
	require.NoError(t, fwd.Apply(pts))
	assert.InDelta(t, 12810171.20, pts[0][0], 0.01)
	require.NoError(t, back.Apply(pts))
	assert.InDelta(t, 115.075725846, pts[0][0], 1e-9)
	assert.InDelta(t, 31.360788281, pts[0][1], 1e-9)
	assert.InDelta(t, 0, pts[1][1], 1e-9)

	_, err = rp.NewTransform("EPSG:4490", WEB_MERC_WKT)
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}
