package zonalstats

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

const (
	degToRad = math.Pi / 180

	xr = 20037508.34 / 180
	yr = xr / degToRad
	tr = degToRad / 2
)

var (
	epsgAuthority = regexp.MustCompile(`AUTHORITY\["EPSG",\s*"?(\d+)"?\]`)
	epsgCode      = regexp.MustCompile(`^(?i:EPSG):(\d+)$`)
)

func Convert4326To3857(lon, lat float64) (lonIn3857, latIn3857 float64) {
	lonIn3857 = lon * xr
	latIn3857 = math.Log(math.Tan((90+lat)*tr)) * yr
	return
}

func Convert3857To4326(lonIn3857, latIn3857 float64) (lon, lat float64) {
	lon = lonIn3857 / xr
	lat = math.Atan(math.Pow(math.E, latIn3857/yr))/tr - 90
	return
}

// 从WKT（或"EPSG:n"）中取根节点的EPSG编号，取不到时返回0
func SridOf(wkt string) (srid int) {
	wkt = strings.TrimSpace(wkt)
	if m := epsgCode.FindStringSubmatch(wkt); m != nil {
		srid, _ = strconv.Atoi(m[1])
		return
	}
	ms := epsgAuthority.FindAllStringSubmatch(wkt, -1)
	if len(ms) > 0 {
		// 根节点的AUTHORITY位于最后
		srid, _ = strconv.Atoi(ms[len(ms)-1][1])
		return
	}
	if strings.Contains(wkt, "CGCS_2000") || strings.Contains(wkt, "China Geodetic Coordinate System 2000") {
		srid = 4490
	}
	return
}

type pointFunc func(x, y float64) (float64, float64)

type planarTransform struct {
	fn pointFunc
}

func (t planarTransform) Apply(pts []orb.Point) error {
	if t.fn == nil {
		return nil
	}
	for i, p := range pts {
		pts[i][0], pts[i][1] = t.fn(p[0], p[1])
	}
	return nil
}

func (planarTransform) Close() {}

// 纯Go坐标转换：相同坐标系为恒等变换，另支持EPSG:4326与EPSG:3857互转
type PlanarReprojector struct{}

func (PlanarReprojector) NewTransform(srcWKT, dstWKT string) (t Transform, err error) {
	if srcWKT == "" || srcWKT == dstWKT {
		t = planarTransform{}
		return
	}
	src, dst := SridOf(srcWKT), SridOf(dstWKT)
	switch {
	case src != 0 && src == dst:
		t = planarTransform{}
	case src == GEOJSON_SRID && dst == WEB_MERC_SRID:
		t = planarTransform{Convert4326To3857}
	case src == WEB_MERC_SRID && dst == GEOJSON_SRID:
		t = planarTransform{Convert3857To4326}
	default:
		err = fmt.Errorf("%w: EPSG:%d -> EPSG:%d", ErrUnsupportedTransform, src, dst)
	}
	return
}
