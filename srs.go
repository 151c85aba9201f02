package zonalstats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wgdzlh/zonalstats/log"

	"go.uber.org/zap"
)

const srsLogTag = "Reconcile:"

// 构造矢量坐标系到栅格坐标系的转换，栅格坐标系为空时报错
func Reconcile(rp Reprojector, layerSRS, rasterWKT string) (t Transform, err error) {
	if strings.TrimSpace(rasterWKT) == "" {
		err = ErrUndefinedRasterSRS
		return
	}
	if layerSRS == "" {
		log.Warn(srsLogTag + "vector layer has no spatial reference, passing to reprojector as-is")
	}
	if t, err = rp.NewTransform(layerSRS, rasterWKT); err != nil {
		log.Error(srsLogTag+"build transform failed",
			zap.Int("srcSrid", SridOf(layerSRS)), zap.Int("dstSrid", SridOf(rasterWKT)), zap.Error(err))
		if !errors.Is(err, ErrUnsupportedTransform) {
			err = fmt.Errorf("%w: %w", ErrUnsupportedTransform, err)
		}
		return
	}
	log.Debug(srsLogTag+"transform ready", zap.Int("srcSrid", SridOf(layerSRS)), zap.Int("dstSrid", SridOf(rasterWKT)))
	return
}
