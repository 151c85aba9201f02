package report

import (
	"io"
	"math"

	zs "github.com/wgdzlh/zonalstats"

	"github.com/xuri/excelize/v2"
)

const (
	SHEET_STATS    = "zonal_stats"
	SHEET_WARNINGS = "warnings"
)

var warningHeader = []string{"position", "kind", "band", "message"}

// NaN输出为空单元格
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func statsRows(res zs.ZonalResult) (out [][]interface{}) {
	for _, pos := range res.Positions() {
		fs := res[pos]
		if fs.Err != nil {
			out = append(out, []interface{}{fs.Position, fs.FID, nil, nil, nil, nil, nil, nil, nil, nil, nil, fs.Err.Error()})
			continue
		}
		for _, band := range fs.BandOrder {
			s := fs.Bands[band]
			out = append(out, []interface{}{
				fs.Position, fs.FID, band, s.Count,
				cellFloat(s.Avg), cellFloat(s.Mean), cellFloat(s.Median),
				cellFloat(s.Std), cellFloat(s.Variance), cellFloat(s.Min), cellFloat(s.Max), nil,
			})
		}
	}
	return
}

// 统计表与告警表两个工作表
func WriteXLSX(w io.Writer, res zs.ZonalResult) (err error) {
	f := excelize.NewFile()
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	if err = f.SetSheetName("Sheet1", SHEET_STATS); err != nil {
		return
	}
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err = setRow(f, SHEET_STATS, 1, hdr); err != nil {
		return
	}
	for i, r := range statsRows(res) {
		if err = setRow(f, SHEET_STATS, i+2, r); err != nil {
			return
		}
	}
	if ws := res.Warnings(); len(ws) > 0 {
		if _, err = f.NewSheet(SHEET_WARNINGS); err != nil {
			return
		}
		whdr := make([]interface{}, len(warningHeader))
		for i, h := range warningHeader {
			whdr[i] = h
		}
		if err = setRow(f, SHEET_WARNINGS, 1, whdr); err != nil {
			return
		}
		for i, wn := range ws {
			if err = setRow(f, SHEET_WARNINGS, i+2, []interface{}{wn.Position, string(wn.Kind), wn.Band, wn.Message}); err != nil {
				return
			}
		}
	}
	err = f.Write(w)
	return
}
