package zonalstats

import (
	"image"

	"github.com/paulmach/orb"
)

// 只读栅格数据源，每个worker独占一个实例
type RasterSource interface {
	GeoTransform() GeoTransform
	// WKT，可为空
	Projection() string
	Size() (w, h int)
	BandCount() int
	// 第一波段的nodata值
	NoData() (float64, bool)
	// band从1开始
	BandName(band int) (string, bool)
	// 按窗口读取band到buf（行优先，长度不小于win.Size()）
	ReadWindow(band int, win Window, buf []float64) error
	Close() error
}

type Feature struct {
	FID      int64
	Geometry orb.Geometry
}

// 矢量图层，NextFeature读完后返回io.EOF
type VectorLayer interface {
	Name() string
	SpatialRef() string
	FeatureCount() (int, error)
	ResetReading()
	NextFeature() (*Feature, error)
	Close() error
}

type VectorOpener interface {
	OpenVector(path, layer string) (VectorLayer, error)
}

type RasterOpener interface {
	OpenRaster(path string) (RasterSource, error)
}

// 原地转换坐标点
type Transform interface {
	Apply(pts []orb.Point) error
	Close()
}

type Reprojector interface {
	NewTransform(srcWKT, dstWKT string) (Transform, error)
}

// 将栅格空间中的要素外环烧录为窗口大小的掩膜，255为内部
type Burner interface {
	Burn(fp Footprint, win Window, gt GeoTransform, projection string) (*image.Gray, error)
}

// 外部协作者集合
type Provider struct {
	Vector      VectorOpener
	Raster      RasterOpener
	Reprojector Reprojector
	Burner      Burner
}

func (p Provider) withDefaults() Provider {
	if p.Reprojector == nil {
		p.Reprojector = PlanarReprojector{}
	}
	if p.Burner == nil {
		p.Burner = ScanlineBurner{}
	}
	if p.Vector == nil {
		p.Vector = GeoJSONOpener{}
	}
	return p
}
