package zonalstats

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/wgdzlh/zonalstats/log"
	"github.com/wgdzlh/zonalstats/utils"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var crsEpsg = regexp.MustCompile(`EPSG:{1,2}(\d+)$`)

// 内存矢量图层
type MemLayer struct {
	name     string
	srs      string
	features []*Feature
	cursor   int
}

func NewMemLayer(name, srs string, features ...*Feature) *MemLayer {
	return &MemLayer{name: name, srs: srs, features: features}
}

func (l *MemLayer) Name() string       { return l.name }
func (l *MemLayer) SpatialRef() string { return l.srs }
func (l *MemLayer) ResetReading()      { l.cursor = 0 }
func (l *MemLayer) Close() error       { return nil }

func (l *MemLayer) FeatureCount() (int, error) {
	return len(l.features), nil
}

func (l *MemLayer) NextFeature() (f *Feature, err error) {
	if l.cursor >= len(l.features) {
		err = io.EOF
		return
	}
	f = l.features[l.cursor]
	l.cursor++
	return
}

// 基于orb/geojson的纯Go矢量读取，图层名为文件名（不含扩展名）
type GeoJSONOpener struct{}

func (GeoJSONOpener) OpenVector(path, layer string) (vl VectorLayer, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("GeoJSONOpener:read file failed", zap.String("path", path), zap.Error(err))
		err = fmt.Errorf("%w: %s", ErrFileOpen, path)
		return
	}
	name := utils.GetFilenameWithoutExt(path)
	if layer != "" && layer != name {
		err = fmt.Errorf("%w: %s", ErrLayerNotFound, layer)
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		log.Error("GeoJSONOpener:parse feature collection failed", zap.String("path", path), zap.Error(err))
		err = fmt.Errorf("%w: %s: %w", ErrFileOpen, path, err)
		return
	}
	feats := make([]*Feature, len(fc.Features))
	for i, f := range fc.Features {
		feats[i] = &Feature{FID: featureID(f, i), Geometry: f.Geometry}
	}
	vl = NewMemLayer(name, geoJSONCrs(fc), feats...)
	return
}

func featureID(f *geojson.Feature, pos int) int64 {
	switch id := f.ID.(type) {
	case float64:
		return int64(id)
	case string:
		if v, e := strconv.ParseInt(id, 10, 64); e == nil {
			return v
		}
	}
	return int64(pos)
}

// 旧版GeoJSON的crs成员，缺省为WGS84
func geoJSONCrs(fc *geojson.FeatureCollection) string {
	crs, ok := fc.ExtraMembers["crs"].(map[string]interface{})
	if !ok {
		return WGS84_WKT
	}
	props, _ := crs["properties"].(map[string]interface{})
	name, _ := props["name"].(string)
	if m := crsEpsg.FindStringSubmatch(name); m != nil {
		return "EPSG:" + m[1]
	}
	return WGS84_WKT
}
