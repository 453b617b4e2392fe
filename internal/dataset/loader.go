// Package dataset loads tabular files and remote snapshots into tables.
// Cells are typed while loading: empty cells become missing values, cells
// that parse as numbers become numbers, everything else stays text.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// Options controls parsing of a dataset file.
type Options struct {
	Delimiter          rune   // CSV field separator; 0 means comma
	MaxRows            int    // stop after this many data rows; <= 0 reads all
	DecimalSeparator   rune   // 0 auto-detects per cell
	ThousandsSeparator rune   // 0 strips any separator that is not the decimal
	SheetName          string // XLSX only
	SheetIndex         int    // XLSX only, 1-based; 0 means first sheet
}

// Load reads a dataset file, dispatching on its extension.
func Load(path string, opts Options) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path, opts)
	case ".tsv", ".tab":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		return ReadCSVFile(path, opts)
	case ".xlsx":
		return ReadXLSXFile(path, opts)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (expected .csv, .tsv, .tab, or .xlsx)", filepath.Ext(path))
	}
}

// ReadCSVFile opens path and parses it as delimited text. The table is
// named after the file's base name.
func ReadCSVFile(path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path), opts)
}

// ReadCSV parses delimited text from r. The first record is the header;
// short data records are padded with missing cells and long ones are
// truncated to the header width. A reader with no records yields an empty
// table with no columns.
func ReadCSV(r io.Reader, name string, opts Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return table.New(name, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := table.New(name, cols)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", t.NumRows()+2, err)
		}
		row := make(table.Row, len(cols))
		for j, col := range cols {
			if j >= len(rec) {
				break
			}
			if v := typeCell(rec[j], opts); !v.IsNull() {
				row[col] = v
			}
		}
		t.AppendRow(row)
		if opts.MaxRows > 0 && t.NumRows() >= opts.MaxRows {
			break
		}
	}
	return t, nil
}

// typeCell converts one raw cell into a typed value.
func typeCell(raw string, opts Options) table.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return table.Null()
	}
	if x, ok := parseNumber(s, opts); ok {
		return table.Num(x)
	}
	return table.Str(s)
}

// parseNumber parses a numeric cell, tolerating percent signs, non-breaking
// spaces, and either comma or dot decimals. With no configured separators
// the decimal is picked from the rightmost of ',' and '.'; every other
// common separator is treated as a thousands mark and removed.
func parseNumber(s string, opts Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)

	dec := opts.DecimalSeparator
	thou := opts.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
