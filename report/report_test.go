package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	zs "github.com/wgdzlh/zonalstats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() zs.ZonalResult {
	nan := math.NaN()
	return zs.ZonalResult{
		0: {
			Position:  0,
			FID:       17,
			Bands:     map[string]zs.BandStatistics{"Red": {Avg: 2.5, Mean: 2.5, Median: 2.5, Std: 0.5, Variance: 0.25, Count: 4, Min: 1, Max: 4}},
			BandOrder: []string{"Red"},
		},
		1: {
			Position:  1,
			FID:       3,
			Bands:     map[string]zs.BandStatistics{"Red": {Avg: nan, Mean: nan, Median: nan, Std: nan, Variance: nan, Min: nan, Max: nan}},
			BandOrder: []string{"Red"},
			Warnings:  []zs.Warning{{Kind: zs.WarnEmptyMask, Position: 1, Band: "Red", Message: "empty"}},
		},
		2: {Position: 2, FID: 9, Err: errors.New("polygon is outside raster")},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FORMAT_JSON))
	var got map[string]map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, 2.5, got["0"]["Red"]["mean"])
	assert.Equal(t, 4.0, got["0"]["Red"]["count"])
	assert.Nil(t, got["1"]["Red"]["mean"])
	assert.Equal(t, 0.0, got["1"]["Red"]["count"])
	assert.Contains(t, got, "2")
	assert.Nil(t, got["2"])
}

// 对象第一层键按出现顺序
func objectKeys(t *testing.T, raw []byte) (keys []string, vals []json.RawMessage) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)
	for dec.More() {
		tok, err = dec.Token()
		require.NoError(t, err)
		var v json.RawMessage
		require.NoError(t, dec.Decode(&v))
		keys = append(keys, tok.(string))
		vals = append(vals, v)
	}
	return
}

func TestWriteJSONOrder(t *testing.T) {
	stats := zs.BandStatistics{Avg: 1, Mean: 1, Median: 1, Count: 1, Min: 1, Max: 1}
	res := zs.ZonalResult{}
	for _, pos := range []int{10, 2} {
		res[pos] = &zs.FeatureStats{
			Position:  pos,
			Bands:     map[string]zs.BandStatistics{"Red": stats, "10": stats, "2": stats},
			BandOrder: []string{"Red", "2", "10"},
		}
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))
	positions, feats := objectKeys(t, buf.Bytes())
	assert.Equal(t, []string{"2", "10"}, positions)
	for _, f := range feats {
		bands, _ := objectKeys(t, f)
		assert.Equal(t, []string{"Red", "2", "10"}, bands)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FORMAT_CSV))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(header, ","), lines[0])
	assert.Equal(t, "0,17,Red,4,2.5,2.5,2.5,0.5,0.25,1,4,", lines[1])
	assert.Equal(t, "1,3,Red,0,,,,,,,,", lines[2])
	assert.Equal(t, "2,9,,,,,,,,,,polygon is outside raster", lines[3])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(path, sampleResult(), ""))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SHEET_STATS)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"0", "17", "Red", "4", "2.5", "2.5", "2.5", "0.5", "0.25", "1", "4"}, rows[1])
	ws, err := f.GetRows(SHEET_WARNINGS)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "EmptyMask", ws[1][1])
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FORMAT_CSV, FormatOf("a/b.CSV"))
	assert.Equal(t, FORMAT_XLSX, FormatOf("b.xlsx"))
	assert.Equal(t, FORMAT_JSON, FormatOf("b.txt"))
	assert.Error(t, Write(&bytes.Buffer{}, nil, "xml"))
}
