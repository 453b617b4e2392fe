package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// ReadXLSXFile reads the selected sheet of an Office Open XML workbook.
func ReadXLSXFile(path string, opts Options) (*table.Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return ReadXLSXBytes(b, filepath.Base(path), opts)
}

// ReadXLSXBytes parses workbook bytes. The first row of the selected sheet
// becomes the header. Sheet selection honors Options.SheetName first and
// the 1-based Options.SheetIndex second, defaulting to the first sheet.
func ReadXLSXBytes(b []byte, name string, opts Options) (*table.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := workbookSheets(zipEntry(zr, "xl/workbook.xml"))
	rels := workbookRels(zipEntry(zr, "xl/_rels/workbook.xml.rels"))

	target := ""
	if opts.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.name, opts.SheetName) {
				target = sheetPath(rels[s.rid])
				break
			}
		}
		if target == "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.name
			}
			return nil, fmt.Errorf("sheet %q not found in %s (available: %s)", opts.SheetName, name, strings.Join(names, ", "))
		}
	}
	if target == "" {
		idx := opts.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx <= len(sheets) {
			target = sheetPath(rels[sheets[idx-1].rid])
		}
		if target == "" {
			// workbook metadata missing or incomplete; fall back to the
			// conventional entry name
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", idx)
		}
	}

	rr := newRowReader(zipEntry(zr, target), sharedStrings(zipEntry(zr, "xl/sharedStrings.xml")))
	header, ok := rr.next()
	if !ok || len(header) == 0 {
		return table.New(name, nil), nil
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := table.New(name, cols)
	for {
		rec, ok := rr.next()
		if !ok {
			break
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

type wbSheet struct {
	name string
	rid  string
}

// workbookSheets lists the sheets of xl/workbook.xml in declaration order,
// which is also their display order.
func workbookSheets(data []byte) []wbSheet {
	var sheets []wbSheet
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "sheet" {
			continue
		}
		var s wbSheet
		for _, a := range el.Attr {
			switch a.Name.Local {
			case "name":
				s.name = a.Value
			case "id": // r:id relationship reference
				s.rid = a.Value
			}
		}
		sheets = append(sheets, s)
	}
}

func workbookRels(data []byte) map[string]string {
	out := map[string]string{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "Relationship" {
			continue
		}
		var id, rel string
		for _, a := range el.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				rel = a.Value
			}
		}
		if id != "" && rel != "" {
			out[id] = rel
		}
	}
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// sheetPath maps a relationship target to its ZIP entry name. Targets may
// carry a leading slash or omit the xl/ prefix.
func sheetPath(rel string) string {
	if rel == "" {
		return ""
	}
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}

func sharedStrings(data []byte) []string {
	var out []string
	var buf strings.Builder
	inT := false
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(el))
			}
		}
	}
}

// rowReader streams <row> elements of one worksheet as string slices.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newRowReader(data []byte, shared []string) *rowReader {
	return &rowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *rowReader) next() ([]string, bool) {
	var cur []string
	width := 0
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case el.Name.Local == "row":
				inRow = true
				cur = nil
				width = 0
			case inRow && el.Name.Local == "c":
				var ref, typ string
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := columnIndex(ref)
				if idx < 0 {
					// cells without a reference follow the previous one
					idx = width
				}
				if idx+1 > width {
					width = idx + 1
				}
				val := r.cellValue(typ)
				if len(cur) <= idx {
					grown := make([]string, idx+1)
					copy(grown, cur)
					cur = grown
				}
				cur[idx] = val
			}
		case xml.EndElement:
			if el.Name.Local == "row" {
				if len(cur) < width {
					grown := make([]string, width)
					copy(grown, cur)
					cur = grown
				}
				return cur, true
			}
		}
	}
}

// cellValue consumes tokens up to </c>, capturing the <v> or inline <t>
// text and resolving shared-string cells.
func (r *rowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "v" || el.Name.Local == "t" {
				var sb strings.Builder
				for {
					inner, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := inner.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := inner.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if el.Name.Local == "c" {
				if typ == "s" {
					if i, err := strconv.Atoi(val); err == nil && i >= 0 && i < len(r.shared) {
						return r.shared[i]
					}
					return ""
				}
				return val
			}
		}
	}
}

// columnIndex converts the letter part of a cell reference like "C12" to a
// 0-based column index, or -1 when the reference has no letters.
func columnIndex(ref string) int {
	n := 0
	for n < len(ref) {
		c := ref[n]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			break
		}
		n++
	}
	if n == 0 {
		return -1
	}
	idx := 0
	for _, c := range strings.ToUpper(ref[:n]) {
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}
