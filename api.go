package zonalstats

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// 仿射变换参数：originX, pixelWidth, skewX, originY, skewY, pixelHeight
type GeoTransform [6]float64

func (gt GeoTransform) OriginX() float64     { return gt[0] }
func (gt GeoTransform) PixelWidth() float64  { return gt[1] }
func (gt GeoTransform) OriginY() float64     { return gt[3] }
func (gt GeoTransform) PixelHeight() float64 { return gt[5] }

func (gt GeoTransform) Rotated() bool {
	return math.Abs(gt[2]) > ROTATION_EPSILON || math.Abs(gt[4]) > ROTATION_EPSILON
}

// 像素(列,行)左上角的地理坐标
func (gt GeoTransform) Apply(col, row float64) orb.Point {
	return orb.Point{gt[0] + col*gt[1] + row*gt[2], gt[3] + col*gt[4] + row*gt[5]}
}

// 栅格读取窗口（像素对齐）
type Window struct {
	XOff, YOff    int
	Width, Height int
}

func (w Window) Size() int {
	return w.Width * w.Height
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

// 窗口自身的仿射参数（原点为窗口左上角，像元大小与栅格一致）
func (w Window) GeoTransform(gt GeoTransform) GeoTransform {
	o := gt.Apply(float64(w.XOff), float64(w.YOff))
	return GeoTransform{o[0], gt[1], gt[2], o[1], gt[4], gt[5]}
}

// 栅格空间中的要素外环集合
type Footprint struct {
	Rings []orb.Ring
	Bound orb.Bound
}

// bbox中点（非面积质心）
func (f Footprint) Centroid() orb.Point {
	return f.Bound.Center()
}

func (f Footprint) PointCount() (n int) {
	for _, r := range f.Rings {
		n += len(r)
	}
	return
}

// 单波段统计值
type BandStatistics struct {
	Avg      float64
	Mean     float64
	Median   float64
	Std      float64
	Variance float64
	Count    int
	Min      float64
	Max      float64
}

func emptyStatistics() BandStatistics {
	nan := math.NaN()
	return BandStatistics{Avg: nan, Mean: nan, Median: nan, Std: nan, Variance: nan, Min: nan, Max: nan}
}

func (s BandStatistics) Undefined() bool {
	return s.Count == 0
}

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NaN输出为null
func (s BandStatistics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Avg      *float64 `json:"avg"`
		Mean     *float64 `json:"mean"`
		Median   *float64 `json:"median"`
		Std      *float64 `json:"std"`
		Variance *float64 `json:"variance"`
		Count    int      `json:"count"`
		Min      *float64 `json:"min"`
		Max      *float64 `json:"max"`
	}{
		jsonFloat(s.Avg), jsonFloat(s.Mean), jsonFloat(s.Median), jsonFloat(s.Std),
		jsonFloat(s.Variance), s.Count, jsonFloat(s.Min), jsonFloat(s.Max),
	})
}

type WarningKind string

const (
	WarnNoDataUndetermined WarningKind = "NoDataUndetermined"
	WarnEmptyMask          WarningKind = "EmptyMask"
	WarnUndefinedVectorSRS WarningKind = "UndefinedVectorSRS"
)

// 非致命告警，不影响退出状态
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Position int         `json:"position"`
	Band     string      `json:"band,omitempty"`
	Message  string      `json:"message"`
}

func (w Warning) String() string {
	if w.Band != "" {
		return fmt.Sprintf("%s (feature %d, band %s): %s", w.Kind, w.Position, w.Band, w.Message)
	}
	return fmt.Sprintf("%s (feature %d): %s", w.Kind, w.Position, w.Message)
}

// 单要素结果，Bands按波段标签索引
type FeatureStats struct {
	Position  int
	FID       int64
	Bands     map[string]BandStatistics
	BandOrder []string
	Warnings  []Warning
	Err       error
}

func (fs *FeatureStats) addBand(key string, s BandStatistics) {
	if fs.Bands == nil {
		fs.Bands = make(map[string]BandStatistics)
	}
	fs.Bands[key] = s
	fs.BandOrder = append(fs.BandOrder, key)
}

// 要素位置 -> 各波段统计
type ZonalResult map[int]*FeatureStats

// 按位置升序返回
func (r ZonalResult) Positions() []int {
	ps := make([]int, 0, len(r))
	for i := 0; len(ps) < len(r); i++ {
		if _, ok := r[i]; ok {
			ps = append(ps, i)
		}
	}
	return ps
}

func (r ZonalResult) Warnings() (ws []Warning) {
	for _, p := range r.Positions() {
		ws = append(ws, r[p].Warnings...)
	}
	return
}

type ErrorPolicy int

const (
	AbortOnError ErrorPolicy = iota
	SkipOnError
)

func ParseErrorPolicy(s string) (p ErrorPolicy, err error) {
	switch s {
	case "", "abort":
		p = AbortOnError
	case "skip":
		p = SkipOnError
	default:
		err = fmt.Errorf("unknown error policy: %q", s)
	}
	return
}

type RunState int

const (
	StateIdle RunState = iota
	StateLayerOpened
	StatePerFeature
	StateCompleted
	StateAborted
)

var stateNames = [...]string{"Idle", "LayerOpened", "PerFeature", "Completed", "Aborted"}

func (s RunState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "RunState(" + strconv.Itoa(int(s)) + ")"
}
