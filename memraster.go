package zonalstats

import (
	"fmt"
)

// 内存栅格，波段数据按行优先存放
type MemRaster struct {
	GT        GeoTransform
	WKT       string
	Width     int
	Height    int
	Bands     [][]float64
	Names     []string
	NoDataVal *float64
}

func NewMemRaster(gt GeoTransform, wkt string, width, height int, bands ...[]float64) *MemRaster {
	return &MemRaster{GT: gt, WKT: wkt, Width: width, Height: height, Bands: bands}
}

func (m *MemRaster) WithNoData(v float64) *MemRaster {
	m.NoDataVal = &v
	return m
}

func (m *MemRaster) WithNames(names ...string) *MemRaster {
	m.Names = names
	return m
}

func (m *MemRaster) GeoTransform() GeoTransform { return m.GT }
func (m *MemRaster) Projection() string         { return m.WKT }
func (m *MemRaster) Size() (int, int)           { return m.Width, m.Height }
func (m *MemRaster) BandCount() int             { return len(m.Bands) }
func (m *MemRaster) Close() error               { return nil }

func (m *MemRaster) NoData() (float64, bool) {
	if m.NoDataVal == nil {
		return 0, false
	}
	return *m.NoDataVal, true
}

func (m *MemRaster) BandName(band int) (string, bool) {
	if band < 1 || band > len(m.Names) || m.Names[band-1] == "" {
		return "", false
	}
	return m.Names[band-1], true
}

func (m *MemRaster) ReadWindow(band int, win Window, buf []float64) error {
	if band < 1 || band > len(m.Bands) {
		return fmt.Errorf("band %d out of range [1,%d]", band, len(m.Bands))
	}
	if win.XOff < 0 || win.YOff < 0 || win.XOff+win.Width > m.Width || win.YOff+win.Height > m.Height {
		return fmt.Errorf("%w: %+v outside %dx%d", ErrInvalidWindow, win, m.Width, m.Height)
	}
	if len(buf) < win.Size() {
		return fmt.Errorf("buffer too small: %d < %d", len(buf), win.Size())
	}
	data := m.Bands[band-1]
	for row := 0; row < win.Height; row++ {
		src := (win.YOff+row)*m.Width + win.XOff
		copy(buf[row*win.Width:(row+1)*win.Width], data[src:src+win.Width])
	}
	return nil
}

// 多个worker共享同一内存栅格
type MemRasterOpener map[string]*MemRaster

func (o MemRasterOpener) OpenRaster(path string) (RasterSource, error) {
	r, ok := o[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileOpen, path)
	}
	return r, nil
}
