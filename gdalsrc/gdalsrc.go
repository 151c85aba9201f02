// Package gdalsrc 基于GDAL的矢量、栅格读取与坐标转换实现
package gdalsrc

import (
	zs "github.com/wgdzlh/zonalstats"

	gdal "github.com/airbusgeo/godal"
)

const (
	SHP_DRIVER_NAME     = "ESRI Shapefile"
	GPKG_DRIVER_NAME    = "GPKG"
	GDB_DRIVER_NAME     = "OpenFileGDB"
	GEOJSON_DRIVER_NAME = "GeoJSON"
	SQLITE_DRIVER_NAME  = "SQLite"
)

func init() {
	gdal.RegisterAll()
}

// 由GDAL库C语言创建的内存对象，需要手动回收
type closer interface {
	Close()
}

// 组装GDAL协作者，burner为scanline（默认）或gdal
func NewProvider(encoding, burner string) zs.Provider {
	p := zs.Provider{
		Vector:      &VectorOpener{Encoding: encoding},
		Raster:      RasterOpener{},
		Reprojector: NewReprojector(),
		Burner:      zs.ScanlineBurner{},
	}
	if burner == zs.BURNER_GDAL {
		p.Burner = Burner{}
	}
	return p
}
