// Package report 将分区统计结果导出为JSON、CSV或XLSX
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	zs "github.com/wgdzlh/zonalstats"
)

const (
	FORMAT_JSON = "json"
	FORMAT_CSV  = "csv"
	FORMAT_XLSX = "xlsx"
)

var header = []string{"position", "fid", "band", "count", "avg", "mean", "median", "std", "variance", "min", "max", "error"}

// 由文件扩展名推断格式，默认JSON
func FormatOf(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case FORMAT_CSV, FORMAT_XLSX:
		return ext
	}
	return FORMAT_JSON
}

func Write(w io.Writer, res zs.ZonalResult, format string) error {
	switch strings.ToLower(format) {
	case "", FORMAT_JSON:
		return WriteJSON(w, res)
	case FORMAT_CSV:
		return WriteCSV(w, res)
	case FORMAT_XLSX:
		return WriteXLSX(w, res)
	}
	return fmt.Errorf("unknown output format: %q", format)
}

func WriteFile(path string, res zs.ZonalResult, format string) (err error) {
	if format == "" {
		format = FormatOf(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	err = Write(f, res, format)
	return
}

// 要素位置 -> 波段标签 -> 统计值，要素按位置升序、波段按栅格顺序输出；
// 跳过的要素输出null
func WriteJSON(w io.Writer, res zs.ZonalResult) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pos := range res.Positions() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", strconv.Itoa(pos))
		fs := res[pos]
		if fs.Err != nil {
			buf.WriteString("null")
			continue
		}
		buf.WriteByte('{')
		for j, band := range fs.BandOrder {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(band)
			if err != nil {
				return err
			}
			val, err := json.Marshal(fs.Bands[band])
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// 每个要素的每个波段一行，跳过的要素输出一行错误
func rows(res zs.ZonalResult) (out [][]string) {
	for _, pos := range res.Positions() {
		fs := res[pos]
		p, fid := strconv.Itoa(fs.Position), strconv.FormatInt(fs.FID, 10)
		if fs.Err != nil {
			out = append(out, []string{p, fid, "", "", "", "", "", "", "", "", "", fs.Err.Error()})
			continue
		}
		for _, band := range fs.BandOrder {
			s := fs.Bands[band]
			out = append(out, []string{
				p, fid, band, strconv.Itoa(s.Count),
				formatFloat(s.Avg), formatFloat(s.Mean), formatFloat(s.Median),
				formatFloat(s.Std), formatFloat(s.Variance), formatFloat(s.Min), formatFloat(s.Max), "",
			})
		}
	}
	return
}

func WriteCSV(w io.Writer, res zs.ZonalResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows(res)); err != nil {
		return err
	}
	return cw.Error()
}
