package gdalsrc

import (
	"fmt"

	zs "github.com/wgdzlh/zonalstats"
	"github.com/wgdzlh/zonalstats/log"

	gdal "github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

type RasterOpener struct{}

type rasterSource struct {
	ds     *gdal.Dataset
	bands  []gdal.Band
	gt     zs.GeoTransform
	wkt    string
	width  int
	height int
}

// 只读打开栅格，每次调用返回独立句柄
func (RasterOpener) OpenRaster(path string) (r zs.RasterSource, err error) {
	const logTag = "RasterOpener:"
	ds, err := gdal.Open(path, gdal.RasterOnly())
	if err != nil {
		log.Error(logTag+"open tif failed", zap.String("path", path), zap.Error(err))
		err = fmt.Errorf("%w: %s: %w", zs.ErrFileOpen, path, err)
		return
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		// 无地理参考时GDAL返回默认仿射参数
		log.Warn(logTag+"no geotransform, using identity", zap.String("path", path), zap.Error(err))
		gt, err = [6]float64{0, 1, 0, 0, 0, 1}, nil
	}
	st := ds.Structure()
	rs := &rasterSource{
		ds:     ds,
		bands:  ds.Bands(),
		gt:     zs.GeoTransform(gt),
		wkt:    ds.Projection(),
		width:  st.SizeX,
		height: st.SizeY,
	}
	log.Info(logTag+"raster opened", zap.String("path", path), zap.Int("width", st.SizeX), zap.Int("height", st.SizeY),
		zap.Int("bands", st.NBands), zap.Int("srid", zs.SridOf(rs.wkt)))
	r = rs
	return
}

func (r *rasterSource) GeoTransform() zs.GeoTransform { return r.gt }
func (r *rasterSource) Projection() string            { return r.wkt }
func (r *rasterSource) Size() (int, int)              { return r.width, r.height }
func (r *rasterSource) BandCount() int                { return len(r.bands) }

func (r *rasterSource) NoData() (float64, bool) {
	if len(r.bands) == 0 {
		return 0, false
	}
	return r.bands[0].NoData()
}

func (r *rasterSource) BandName(band int) (string, bool) {
	if band < 1 || band > len(r.bands) {
		return "", false
	}
	name := r.bands[band-1].ColorInterp().Name()
	return name, name != ""
}

func (r *rasterSource) ReadWindow(band int, win zs.Window, buf []float64) error {
	if band < 1 || band > len(r.bands) {
		return fmt.Errorf("band %d out of range [1,%d]", band, len(r.bands))
	}
	return r.bands[band-1].Read(win.XOff, win.YOff, buf[:win.Size()], win.Width, win.Height)
}

func (r *rasterSource) Close() error {
	return r.ds.Close()
}
