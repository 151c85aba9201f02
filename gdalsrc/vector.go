package gdalsrc

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	zs "github.com/wgdzlh/zonalstats"
	"github.com/wgdzlh/zonalstats/log"
	"github.com/wgdzlh/zonalstats/utils"

	"github.com/lukeroth/gdal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"go.uber.org/zap"
)

var driverByExt = map[string]string{
	utils.FILE_EXT_SHP:     SHP_DRIVER_NAME,
	utils.FILE_EXT_GPKG:    GPKG_DRIVER_NAME,
	utils.FILE_EXT_GDB:     GDB_DRIVER_NAME,
	utils.FILE_EXT_GEOJSON: GEOJSON_DRIVER_NAME,
	utils.FILE_EXT_JSON:    GEOJSON_DRIVER_NAME,
	utils.FILE_EXT_SQLITE:  SQLITE_DRIVER_NAME,
}

// 按扩展名选择OGR驱动打开矢量图层；Encoding为图层名编码（空时读取.cpg）
type VectorOpener struct {
	Encoding string
}

type vectorLayer struct {
	ds     gdal.DataSource
	layer  gdal.Layer
	name   string
	srs    string
	logTag string
}

func (o *VectorOpener) OpenVector(path, layerName string) (vl zs.VectorLayer, err error) {
	const logTag = "VectorOpener:"
	ext := strings.ToLower(filepath.Ext(strings.TrimRight(path, `/\`)))
	drvName, ok := driverByExt[ext]
	if !ok {
		err = fmt.Errorf("%w: unsupported vector format %q", zs.ErrFileOpen, ext)
		return
	}
	ds, ok := gdal.OGRDriverByName(drvName).Open(path, 0)
	if !ok {
		log.Error(logTag+"driver open failed", zap.String("driver", drvName), zap.String("path", path))
		err = fmt.Errorf("%w: %s", zs.ErrFileOpen, path)
		return
	}
	enc := o.Encoding
	if enc == "" {
		enc = utils.ShpEncoding(path)
	}
	for i, n := 0, ds.LayerCount(); i < n; i++ {
		l := ds.LayerByIndex(i)
		name := utils.DecodeLabel(l.Name(), enc)
		if layerName != "" && name != layerName {
			continue
		}
		wkt, e := l.SpatialReference().ToWKT()
		if e != nil {
			log.Warn(logTag+"layer spatial reference unreadable", zap.String("layer", name), zap.Error(e))
			wkt = ""
		}
		log.Info(logTag+"layer opened", zap.String("path", path), zap.String("layer", name), zap.Int("srid", zs.SridOf(wkt)))
		vl = &vectorLayer{ds: ds, layer: l, name: name, srs: wkt, logTag: logTag}
		return
	}
	ds.Destroy()
	err = fmt.Errorf("%w: %s in %s", zs.ErrLayerNotFound, layerName, path)
	return
}

func (l *vectorLayer) Name() string       { return l.name }
func (l *vectorLayer) SpatialRef() string { return l.srs }
func (l *vectorLayer) ResetReading()      { l.layer.ResetReading() }

func (l *vectorLayer) FeatureCount() (n int, err error) {
	n, ok := l.layer.FeatureCount(false)
	if !ok {
		n, _ = l.layer.FeatureCount(true)
	}
	return
}

func (l *vectorLayer) NextFeature() (f *zs.Feature, err error) {
	feature := l.layer.NextFeature()
	if feature == nil {
		err = io.EOF
		return
	}
	defer feature.Destroy()
	f = &zs.Feature{FID: feature.FID()}
	f.Geometry = l.toOrb(feature.FID(), feature.Geometry())
	return
}

// 转为orb几何；空几何返回nil，无法解析的类型返回空集合以便上层判为不支持的类型
func (l *vectorLayer) toOrb(fid int64, geo gdal.Geometry) orb.Geometry {
	if geo.IsEmpty() {
		return nil
	}
	geo.FlattenTo2D()
	raw, err := geo.ToWKB()
	if err != nil {
		log.Error(l.logTag+"err in wkb trans", zap.Int64("fid", fid), zap.Error(err))
		return orb.Collection{}
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		log.Error(l.logTag+"err in wkb decode", zap.Int64("fid", fid), zap.Error(err))
		return orb.Collection{}
	}
	return g
}

func (l *vectorLayer) Close() error {
	l.ds.Destroy()
	return nil
}
