package zonalstats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wgdzlh/zonalstats/log"
	"github.com/wgdzlh/zonalstats/utils"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// 并行worker数，<=1时顺序执行
	Workers int
	Policy  ErrorPolicy
	// 掩膜PNG输出目录，为空时不输出
	MaskDir string
}

type ZonalToolbox struct {
	provider Provider
	opts     Options
	state    atomic.Int32
	logTag   string
}

// 初始化分区统计工具箱，Raster为必填项，其余协作者缺省为纯Go实现
func NewZonalToolbox(p Provider, opts ...Options) *ZonalToolbox {
	t := &ZonalToolbox{
		provider: p.withDefaults(),
		logTag:   "ZonalToolbox:",
	}
	if len(opts) > 0 {
		t.opts = opts[0]
	}
	if t.opts.Workers < DEFAULT_WORKERS {
		t.opts.Workers = DEFAULT_WORKERS
	}
	return t
}

// 最近一次运行的状态
func (t *ZonalToolbox) State() RunState {
	return RunState(t.state.Load())
}

func (t *ZonalToolbox) setState(s RunState, runId string) {
	t.state.Store(int32(s))
	log.Debug(t.logTag+"state changed", zap.String("runId", runId), zap.Stringer("state", s))
}

// 一次运行的共享只读上下文
type session struct {
	runId      string
	rasterPath string
	srsMissing bool
	maskDir    string
}

func (t *ZonalToolbox) openRaster(path string) (r RasterSource, err error) {
	if t.provider.Raster == nil {
		err = fmt.Errorf("%w: no raster opener configured", ErrFileOpen)
		return
	}
	if r, err = t.provider.Raster.OpenRaster(path); err != nil && !errors.Is(err, ErrFileOpen) {
		err = fmt.Errorf("%w: %s: %w", ErrFileOpen, path, err)
	}
	return
}

// 打开矢量图层与栅格并构造坐标转换，返回的cleanup负责释放全部资源
func (t *ZonalToolbox) prepare(s *session, polygonPath, layerName, rasterPath string) (layer VectorLayer, raster RasterSource, tr Transform, cleanup func() error, err error) {
	var closers []func() error
	cleanup = func() (e error) {
		for i := len(closers) - 1; i >= 0; i-- {
			e = multierr.Append(e, closers[i]())
		}
		return
	}
	if layer, err = t.provider.Vector.OpenVector(polygonPath, layerName); err != nil {
		log.Error(t.logTag+"open vector failed", zap.String("runId", s.runId), zap.String("path", polygonPath), zap.String("layer", layerName), zap.Error(err))
		return
	}
	closers = append(closers, layer.Close)
	t.setState(StateLayerOpened, s.runId)
	if raster, err = t.openRaster(rasterPath); err != nil {
		log.Error(t.logTag+"open raster failed", zap.String("runId", s.runId), zap.String("path", rasterPath), zap.Error(err))
		return
	}
	closers = append(closers, raster.Close)
	if tr, err = Reconcile(t.provider.Reprojector, layer.SpatialRef(), raster.Projection()); err != nil {
		return
	}
	closers = append(closers, func() error { tr.Close(); return nil })
	s.srsMissing = layer.SpatialRef() == ""
	if t.opts.MaskDir != "" {
		if s.maskDir, err = utils.GetUniqSubDir(t.opts.MaskDir); err != nil {
			log.Error(t.logTag+"create mask dir failed", zap.String("runId", s.runId), zap.Error(err))
			return
		}
	}
	return
}

func (t *ZonalToolbox) srsWarning(pos int) Warning {
	return Warning{
		Kind:     WarnUndefinedVectorSRS,
		Position: pos,
		Message:  "vector layer spatial reference undefined, coordinates used as-is",
	}
}

// 单要素处理：窗口 -> 掩膜 -> 逐波段统计
func (t *ZonalToolbox) processFeature(ctx context.Context, s *session, raster RasterSource, info RasterInfo, f IndexedFeature, pos int) (fs *FeatureStats, err error) {
	fs = &FeatureStats{Position: pos, FID: f.FID}
	if err = f.Err; err != nil {
		return
	}
	win, err := ResolveWindow(f.Footprint, info)
	if err != nil {
		return
	}
	mask, err := t.provider.Burner.Burn(f.Footprint, win, info.GeoTransform, raster.Projection())
	if err != nil {
		return
	}
	if s.maskDir != "" {
		if p, e := DumpMask(s.maskDir, pos, mask); e != nil {
			log.Warn(t.logTag+"dump mask failed", zap.String("runId", s.runId), zap.Int("pos", pos), zap.Error(e))
		} else {
			log.Debug(t.logTag+"mask dumped", zap.String("runId", s.runId), zap.String("path", p))
		}
	}
	log.Debug(t.logTag+"feature window resolved", zap.String("runId", s.runId), zap.Int("pos", pos), zap.Int64("fid", f.FID),
		zap.Int("xoff", win.XOff), zap.Int("yoff", win.YOff), zap.Int("width", win.Width), zap.Int("height", win.Height),
		zap.Int("masked", maskCount(mask)))
	err = AggregateBands(ctx, raster, win, mask, fs)
	return
}

// 计算图层中第pos个要素（从0开始）在栅格各波段内的统计值
func (t *ZonalToolbox) ZonalStats(ctx context.Context, polygonPath, layerName, rasterPath string, pos int) (fs *FeatureStats, err error) {
	s := &session{runId: uuid.NewString(), rasterPath: rasterPath}
	t.setState(StateIdle, s.runId)
	defer func() {
		if err != nil {
			fs = nil
			t.setState(StateAborted, s.runId)
			log.Error(t.logTag+"zonal stats aborted", zap.String("runId", s.runId), zap.Int("pos", pos), zap.Error(err))
			return
		}
		t.setState(StateCompleted, s.runId)
	}()
	layer, raster, tr, cleanup, err := t.prepare(s, polygonPath, layerName, rasterPath)
	defer func() { err = multierr.Append(err, cleanup()) }()
	if err != nil {
		return
	}
	t.setState(StatePerFeature, s.runId)
	f, err := SeekFeature(layer, pos)
	if err != nil {
		return
	}
	item := IndexedFeature{FID: f.FID}
	item.Footprint, item.Err = ExtractGeometry(f.Geometry, tr)
	if fs, err = t.processFeature(ctx, s, raster, InfoOf(raster), item, pos); err != nil {
		err = fmt.Errorf("feature %d: %w", pos, err)
		return
	}
	if s.srsMissing {
		fs.Warnings = append([]Warning{t.srsWarning(pos)}, fs.Warnings...)
	}
	return
}

// 对图层全部要素做分区统计；Abort策略下任一致命错误中止运行且不返回部分结果
func (t *ZonalToolbox) LoopZonalStats(ctx context.Context, polygonPath, layerName, rasterPath string) (res ZonalResult, err error) {
	s := &session{runId: uuid.NewString(), rasterPath: rasterPath}
	start := time.Now()
	t.setState(StateIdle, s.runId)
	defer func() {
		if err != nil {
			res = nil
			t.setState(StateAborted, s.runId)
			log.Error(t.logTag+"loop zonal stats aborted", zap.String("runId", s.runId), zap.Error(err))
			return
		}
		t.setState(StateCompleted, s.runId)
		log.Info(t.logTag+"loop zonal stats completed", zap.String("runId", s.runId), zap.Int("features", len(res)),
			zap.Duration("elapsed", time.Since(start)))
	}()
	layer, raster, tr, cleanup, err := t.prepare(s, polygonPath, layerName, rasterPath)
	defer func() { err = multierr.Append(err, cleanup()) }()
	if err != nil {
		return
	}
	idx, err := BuildFeatureIndex(layer, tr)
	if err != nil {
		log.Error(t.logTag+"build feature index failed", zap.String("runId", s.runId), zap.Error(err))
		return
	}
	log.Info(t.logTag+"loop zonal stats started", zap.String("runId", s.runId), zap.String("layer", layer.Name()),
		zap.Int("features", idx.Len()), zap.Int("bands", raster.BandCount()), zap.Int("workers", t.opts.Workers))
	t.setState(StatePerFeature, s.runId)
	res = make(ZonalResult, idx.Len())
	if t.opts.Workers <= 1 || idx.Len() <= 1 {
		err = t.loopSequential(ctx, s, raster, idx, res)
	} else {
		err = t.loopParallel(ctx, s, idx, res)
	}
	if err != nil {
		return
	}
	if s.srsMissing && len(res) > 0 {
		first := res[res.Positions()[0]]
		first.Warnings = append([]Warning{t.srsWarning(first.Position)}, first.Warnings...)
	}
	return
}

// 按策略处理单要素错误，返回非nil时中止运行
func (t *ZonalToolbox) handleFeatureErr(s *session, fs *FeatureStats, err error) error {
	if err == nil {
		return nil
	}
	if t.opts.Policy == AbortOnError || isRunFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("feature %d: %w", fs.Position, err)
	}
	log.Warn(t.logTag+"feature skipped", zap.String("runId", s.runId), zap.Int("pos", fs.Position), zap.Int64("fid", fs.FID), zap.Error(err))
	fs.Bands, fs.BandOrder = nil, nil
	fs.Err = err
	return nil
}

func (t *ZonalToolbox) loopSequential(ctx context.Context, s *session, raster RasterSource, idx *FeatureIndex, res ZonalResult) (err error) {
	info := InfoOf(raster)
	for pos := 0; pos < idx.Len(); pos++ {
		if err = ctx.Err(); err != nil {
			return
		}
		f, _ := idx.Lookup(pos)
		fs, e := t.processFeature(ctx, s, raster, info, f, pos)
		if err = t.handleFeatureErr(s, fs, e); err != nil {
			return
		}
		res[pos] = fs
	}
	return
}

// 每个worker独占一个栅格句柄，要素几何只读共享
func (t *ZonalToolbox) loopParallel(ctx context.Context, s *session, idx *FeatureIndex, res ZonalResult) error {
	var (
		mu      sync.Mutex
		g, gctx = errgroup.WithContext(ctx)
		jobs    = make(chan int)
		workers = min(t.opts.Workers, idx.Len())
	)
	g.Go(func() error {
		defer close(jobs)
		for pos := 0; pos < idx.Len(); pos++ {
			select {
			case jobs <- pos:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() (err error) {
			raster, err := t.openRaster(s.rasterPath)
			if err != nil {
				return
			}
			defer func() { err = multierr.Append(err, raster.Close()) }()
			info := InfoOf(raster)
			for pos := range jobs {
				f, _ := idx.Lookup(pos)
				fs, e := t.processFeature(gctx, s, raster, info, f, pos)
				if err = t.handleFeatureErr(s, fs, e); err != nil {
					return
				}
				mu.Lock()
				res[pos] = fs
				mu.Unlock()
			}
			return
		})
	}
	return g.Wait()
}
