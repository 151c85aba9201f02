package gdalsrc

import (
	"fmt"
	"image"

	zs "github.com/wgdzlh/zonalstats"

	gdal "github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"go.uber.org/multierr"
)

// 基于GDAL内存数据集的掩膜烧录（像元中心规则）
type Burner struct{}

func (Burner) Burn(fp zs.Footprint, win zs.Window, gt zs.GeoTransform, projection string) (mask *image.Gray, err error) {
	if win.Empty() {
		err = fmt.Errorf("%w: %+v", zs.ErrInvalidWindow, win)
		return
	}
	ds, err := gdal.Create(gdal.Memory, "", 1, gdal.Byte, win.Width, win.Height)
	if err != nil {
		return
	}
	var gc []closer
	defer func() {
		for _, v := range gc {
			v.Close()
		}
		err = multierr.Append(err, ds.Close())
	}()
	if err = ds.SetGeoTransform(win.GeoTransform(gt)); err != nil {
		return
	}
	if projection != "" {
		if err = ds.SetProjection(projection); err != nil {
			return
		}
	}
	// 各外环单独烧录，重叠部分取并集
	var geo *gdal.Geometry
	for _, r := range fp.Rings {
		if geo, err = gdal.NewGeometryFromWKT(wkt.MarshalString(orb.Polygon{r}), nil); err != nil {
			return
		}
		gc = append(gc, geo)
		if err = ds.RasterizeGeometry(geo, gdal.Values(zs.MASK_BURN_VALUE)); err != nil {
			return
		}
	}
	mask = image.NewGray(image.Rect(0, 0, win.Width, win.Height))
	if err = ds.Bands()[0].Read(0, 0, mask.Pix, win.Width, win.Height); err != nil {
		mask = nil
	}
	return
}
