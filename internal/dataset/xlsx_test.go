package dataset

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

const workbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>
<sheet name="Summary" sheetId="1" r:id="rId1"/>
<sheet name="Data" sheetId="2" r:id="rId2"/>
</sheets>
</workbook>`

const workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>
</Relationships>`

const sharedStringsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="5" uniqueCount="5">
<si><t>country</t></si>
<si><t>year</t></si>
<si><t>value</t></si>
<si><t>Germany</t></si>
<si><t>France</t></si>
</sst>`

const summarySheetXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>note</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>not the data sheet</t></is></c></row>
</sheetData>
</worksheet>`

const dataSheetXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
<row r="2"><c r="A2" t="s"><v>3</v></c><c r="B2"><v>2000</v></c><c r="C2"><v>83000000</v></c></row>
<row r="3"><c r="A3" t="inlineStr"><is><t>France</t></is></c><c r="B3"><v>2000</v></c><c r="C3"><v>60000000</v></c></row>
<row r="4"><c r="A4" t="s"><v>3</v></c><c r="B4"><v>2001</v></c></row>
</sheetData>
</worksheet>`

func buildWorkbook(tb testing.TB) []byte {
	tb.Helper()
	entries := map[string]string{
		"xl/workbook.xml":            workbookXML,
		"xl/_rels/workbook.xml.rels": workbookRelsXML,
		"xl/sharedStrings.xml":       sharedStringsXML,
		"xl/worksheets/sheet1.xml":   summarySheetXML,
		"xl/worksheets/sheet2.xml":   dataSheetXML,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSXSelectsSheetByName(t *testing.T) {
	tbl, err := ReadXLSXBytes(buildWorkbook(t), "population.xlsx", Options{SheetName: "data"})
	if err != nil {
		t.Fatalf("ReadXLSXBytes: %v", err)
	}
	if got := tbl.Columns(); len(got) != 3 || got[0] != "country" || got[2] != "value" {
		t.Fatalf("columns = %v", got)
	}
	if tbl.NumRows() != 3 {
		t.Fatalf("rows = %d", tbl.NumRows())
	}
	if s, ok := tbl.Value(0, "country").Text(); !ok || s != "Germany" {
		t.Fatalf("shared string cell = %v", tbl.Value(0, "country"))
	}
	if v, ok := tbl.Value(0, "value").Number(); !ok || v != 83000000 {
		t.Fatalf("numeric cell = %v", tbl.Value(0, "value"))
	}
	if s, ok := tbl.Value(1, "country").Text(); !ok || s != "France" {
		t.Fatalf("inline string cell = %v", tbl.Value(1, "country"))
	}
	if !tbl.Value(2, "value").IsNull() {
		t.Fatalf("absent cell = %v, want missing", tbl.Value(2, "value"))
	}
}

func TestReadXLSXDefaultsToFirstSheet(t *testing.T) {
	tbl, err := ReadXLSXBytes(buildWorkbook(t), "population.xlsx", Options{})
	if err != nil {
		t.Fatalf("ReadXLSXBytes: %v", err)
	}
	if got := tbl.Columns(); len(got) != 1 || got[0] != "note" {
		t.Fatalf("columns = %v", got)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("rows = %d", tbl.NumRows())
	}
}

func TestReadXLSXSheetByIndex(t *testing.T) {
	tbl, err := ReadXLSXBytes(buildWorkbook(t), "population.xlsx", Options{SheetIndex: 2})
	if err != nil {
		t.Fatalf("ReadXLSXBytes: %v", err)
	}
	if got := tbl.Columns(); len(got) != 3 || got[1] != "year" {
		t.Fatalf("columns = %v", got)
	}
}

func TestReadXLSXUnknownSheet(t *testing.T) {
	_, err := ReadXLSXBytes(buildWorkbook(t), "population.xlsx", Options{SheetName: "Bogus"})
	if err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
	if !strings.Contains(err.Error(), "Summary") || !strings.Contains(err.Error(), "Data") {
		t.Fatalf("error should list available sheets: %v", err)
	}
}

func TestColumnIndex(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA1": 26, "AB7": 27, "9": -1, "": -1}
	for ref, want := range cases {
		if got := columnIndex(ref); got != want {
			t.Fatalf("columnIndex(%q) = %d, want %d", ref, got, want)
		}
	}
}
