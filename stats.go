package zonalstats

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/wgdzlh/zonalstats/utils"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// 计算像元值集合的统计量，空集合时各项为NaN
func ComputeStatistics(vals []float64) (s BandStatistics) {
	if len(vals) == 0 {
		return emptyStatistics()
	}
	s.Count = len(vals)
	data := stats.Float64Data(vals)
	s.Median, _ = data.Median()
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	// 以最小值为基准平移后求均值方差，常数集合的均值精确等于该常数
	shifted := append([]float64(nil), vals...)
	floats.AddConst(-s.Min, shifted)
	m, v := stat.PopMeanVariance(shifted, nil)
	s.Mean = s.Min + m
	s.Variance = v
	s.Avg = s.Mean
	s.Std = math.Sqrt(s.Variance)
	return
}

// 波段标签：颜色解释名，无法解析、Undefined或重复时用从1开始的序号；
// 序号也已被占用时追加后缀
func BandKeys(r RasterSource) (keys []string) {
	n := r.BandCount()
	keys = make([]string, n)
	seen := make(map[string]struct{}, n)
	taken := func(k string) bool {
		_, ok := seen[k]
		return ok
	}
	for b := 1; b <= n; b++ {
		name, ok := r.BandName(b)
		key := utils.ToUtf8Label(name)
		if !ok || key == "" || key == BAND_LABEL_UNDEFINED || taken(key) {
			key = strconv.Itoa(b)
		}
		for i := 2; taken(key); i++ {
			key = strconv.Itoa(b) + "_" + strconv.Itoa(i)
		}
		seen[key] = struct{}{}
		keys[b-1] = key
	}
	return
}

// 收集窗口内掩膜为255且不等于nodata的像元值
func maskedValues(dst, buf []float64, mask *image.Gray, win Window, nodata float64, hasNodata bool) []float64 {
	for row := 0; row < win.Height; row++ {
		mrow := mask.Pix[row*mask.Stride:]
		vrow := buf[row*win.Width:]
		for col := 0; col < win.Width; col++ {
			if mrow[col] != MASK_BURN_VALUE {
				continue
			}
			v := vrow[col]
			if math.IsNaN(v) || (hasNodata && v == nodata) {
				continue
			}
			dst = append(dst, v)
		}
	}
	return dst
}

// 逐波段读取窗口并统计，结果与告警写入fs
func AggregateBands(ctx context.Context, r RasterSource, win Window, mask *image.Gray, fs *FeatureStats) (err error) {
	if b := mask.Bounds(); b.Dx() != win.Width || b.Dy() != win.Height {
		err = fmt.Errorf("%w: mask %dx%d, window %dx%d", ErrInvalidWindow, b.Dx(), b.Dy(), win.Width, win.Height)
		return
	}
	nodata, hasNodata := r.NoData()
	if !hasNodata {
		fs.Warnings = append(fs.Warnings, Warning{
			Kind:     WarnNoDataUndetermined,
			Position: fs.Position,
			Message:  "nodata value undetermined, all pixels treated as valid",
		})
	}
	var (
		buf  = make([]float64, win.Size())
		vals = make([]float64, 0, maskCount(mask))
	)
	for b, key := range BandKeys(r) {
		if err = ctx.Err(); err != nil {
			return
		}
		if err = r.ReadWindow(b+1, win, buf); err != nil {
			err = fmt.Errorf("%w: band %d: %w", ErrRasterRead, b+1, err)
			return
		}
		vals = maskedValues(vals[:0], buf, mask, win, nodata, hasNodata)
		s := ComputeStatistics(vals)
		if s.Undefined() {
			fs.Warnings = append(fs.Warnings, Warning{
				Kind:     WarnEmptyMask,
				Position: fs.Position,
				Band:     key,
				Message:  "no valid pixel inside polygon, statistics undefined",
			})
		}
		fs.addBand(key, s)
	}
	return
}
