package zonalstats

import "errors"

var (
	ErrFileOpen                = errors.New("file cannot be opened or does not exist")
	ErrLayerNotFound           = errors.New("feature class not found")
	ErrUndefinedRasterSRS      = errors.New("raster SRS undefined")
	ErrUnsupportedGeometryType = errors.New("geometry needs to be either Polygon or Multipolygon")
	ErrPolygonOutsideRaster    = errors.New("polygon is outside raster")
	ErrRotatedGeoTransform     = errors.New("rotated geotransform not supported")
	ErrFeatureNotFound         = errors.New("feature not found")
	ErrUnsupportedTransform    = errors.New("unsupported coordinate transform")
	ErrRasterRead              = errors.New("raster window read failed")
	ErrInvalidWindow           = errors.New("invalid read window")
	ErrEmptyGeometry           = errors.New("geometry has no ring with at least 3 points")
)

var fatalErrs = []error{
	ErrFileOpen,
	ErrLayerNotFound,
	ErrUndefinedRasterSRS,
	ErrUnsupportedGeometryType,
	ErrPolygonOutsideRaster,
	ErrRotatedGeoTransform,
	ErrFeatureNotFound,
	ErrUnsupportedTransform,
	ErrRasterRead,
	ErrInvalidWindow,
	ErrEmptyGeometry,
}

// 判断是否为致命错误（中止整个运行）
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	for _, e := range fatalErrs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// 判断错误是否必须中止整个运行，即使在SkipOnError策略下
func isRunFatal(err error) bool {
	return errors.Is(err, ErrFileOpen) ||
		errors.Is(err, ErrLayerNotFound) ||
		errors.Is(err, ErrUndefinedRasterSRS) ||
		errors.Is(err, ErrUnsupportedTransform) ||
		errors.Is(err, ErrRasterRead)
}
