package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

func sampleTable(tb testing.TB) *table.Table {
	tb.Helper()
	t := table.New("population.csv", []string{"country", "year", "value"})
	t.AppendRow(table.Row{"country": table.Str("Germany"), "year": table.Num(2000), "value": table.Num(100)})
	t.AppendRow(table.Row{"country": table.Str("Germany"), "year": table.Num(2001), "value": table.Num(110)})
	t.AppendRow(table.Row{"country": table.Str("France"), "year": table.Num(2000), "value": table.Num(50)})
	return t
}

func TestNewAssignsRunID(t *testing.T) {
	r := New("population.csv")
	if err := uuid.Validate(r.RunID); err != nil {
		t.Fatalf("run id %q: %v", r.RunID, err)
	}
	if r.Title != DefaultTitle {
		t.Fatalf("title = %q", r.Title)
	}
	if r.GeneratedAt.IsZero() {
		t.Fatalf("generated-at not set")
	}
}

func TestSummarize(t *testing.T) {
	r := New("population.csv")
	r.Summarize(sampleTable(t), table.DefaultCandidates())

	if r.Records != 3 || r.Entities != 2 {
		t.Fatalf("records=%d entities=%d", r.Records, r.Entities)
	}
	if !r.HasYears || r.YearMin != 2000 || r.YearMax != 2001 {
		t.Fatalf("years = %v %v (has=%v)", r.YearMin, r.YearMax, r.HasYears)
	}
	if r.Schema.Entity != "country" || r.Schema.Value != "value" {
		t.Fatalf("schema = %+v", r.Schema)
	}
	s, ok := r.ValueStats()
	if !ok || s.Count != 3 {
		t.Fatalf("value stats = %+v, ok=%v", s, ok)
	}
}

func TestConsoleFormat(t *testing.T) {
	r := New("population.csv")
	r.Title = EuropeanTitle
	r.GeneratedAt = time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	r.RowsLoaded = 5000
	r.RowsClean = 4800
	r.Summarize(sampleTable(t), table.DefaultCandidates())
	r.Records = 1234
	r.Top = []analysis.RankedRow{
		{Entity: "Germany", Time: table.Num(2001), Value: 110},
		{Entity: "France", Time: table.Num(2000), Value: 50},
	}

	out := r.Console()
	for _, want := range []string{
		strings.Repeat("=", 60),
		"EUROPEAN POPULATION ANALYSIS REPORT",
		"Rows loaded: 5,000 (after cleaning: 4,800)",
		"Total records: 1,234",
		"Year range: 2000 - 2001",
		"--- STATISTICAL SUMMARY ---",
		"Mean population: 86.67",
		"Median population: 100.00",
		"--- TOP 2 COUNTRIES BY POPULATION ---",
		"1. Germany: 110",
		"2. France: 50",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownSections(t *testing.T) {
	r := New("population.csv")
	r.Summarize(sampleTable(t), table.DefaultCandidates())
	r.Aggregates = []analysis.AggregateRecord{
		{Entity: "Germany", Count: 2, Mean: 105, Min: 100, Max: 110, Sum: 210},
	}
	r.Notes = append(r.Notes, "clean: removed 0 duplicate rows")

	out := r.Markdown()
	for _, want := range []string{
		"[" + DefaultTitle + "]",
		"[SCHEMA]",
		"- entity: country",
		"[NUMERIC COLUMNS]",
		"[STATISTICAL SUMMARY]",
		"[AGGREGATES BY COUNTRY]",
		"- Germany: average 105.00, minimum 100.00, maximum 110.00, total 210.00",
		"[NOTES]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownUnresolvedSchema(t *testing.T) {
	r := New("odd.csv")
	empty := table.New("odd.csv", []string{"alpha"})
	r.Summarize(empty, table.DefaultCandidates())

	if !strings.Contains(r.Markdown(), "- entity: (unresolved)") {
		t.Fatalf("unresolved schema not rendered:\n%s", r.Markdown())
	}
}

func TestAggregatesTable(t *testing.T) {
	out := AggregatesTable([]analysis.AggregateRecord{
		{Entity: "Germany", Count: 24, Mean: 82000000, Min: 81000000, Max: 83000000, Sum: 1968000000},
	})
	if !strings.Contains(out, "Country") || !strings.Contains(out, "Total") {
		t.Fatalf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "82,000,000.00") || !strings.Contains(out, "1,968,000,000.00") {
		t.Fatalf("grouped figures missing:\n%s", out)
	}
}
