// Package report renders analysis runs for the console and for files.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// Report titles. The European one is used when the continent preset
// filtered the dataset.
const (
	DefaultTitle  = "POPULATION ANALYSIS REPORT"
	EuropeanTitle = "EUROPEAN POPULATION ANALYSIS REPORT"
)

// Report captures one analysis run over a dataset.
type Report struct {
	Title       string
	Dataset     string
	RunID       string
	GeneratedAt time.Time
	RowsLoaded  int
	RowsClean   int
	Records     int
	Entities    int
	YearMin     float64
	YearMax     float64
	HasYears    bool
	Schema      table.Schema
	Stats       map[string]analysis.DescriptiveStats
	Top         []analysis.RankedRow
	Aggregates  []analysis.AggregateRecord
	Notes       []string
}

// New returns a report for the named dataset with a fresh run ID.
func New(dataset string) *Report {
	return &Report{
		Title:       DefaultTitle,
		Dataset:     dataset,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}
}

// Summarize fills the record count, entity count, year range, schema, and
// per-column statistics from the analyzed table.
func (r *Report) Summarize(t *table.Table, cand table.Candidates) {
	r.Records = t.NumRows()
	r.Schema = table.ResolveSchema(t, cand)
	r.Stats = analysis.Describe(t)

	if r.Schema.HasEntity() {
		seen := make(map[string]struct{})
		for i := 0; i < t.NumRows(); i++ {
			v := t.Value(i, r.Schema.Entity)
			if v.IsNull() || v.IsUndefined() {
				continue
			}
			seen[v.String()] = struct{}{}
		}
		r.Entities = len(seen)
	}
	if r.Schema.HasTime() {
		if ts, ok := r.Stats[r.Schema.Time]; ok {
			r.YearMin = ts.Min
			r.YearMax = ts.Max
			r.HasYears = true
		}
	}
}

// ValueStats returns the statistics of the resolved value column.
func (r *Report) ValueStats() (analysis.DescriptiveStats, bool) {
	if !r.Schema.HasValue() {
		return analysis.DescriptiveStats{}, false
	}
	s, ok := r.Stats[r.Schema.Value]
	return s, ok
}

// Console renders the report for a terminal, with grouped digits on the
// population figures.
func (r *Report) Console() string {
	p := message.NewPrinter(language.English)
	banner := strings.Repeat("=", 60)

	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString(r.Title + "\n")
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "\nDataset: %s\n", r.Dataset)
	fmt.Fprintf(&b, "Run: %s (%s)\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	if r.RowsLoaded > 0 {
		b.WriteString(p.Sprintf("Rows loaded: %d (after cleaning: %d)\n", r.RowsLoaded, r.RowsClean))
	}
	b.WriteString(p.Sprintf("\nTotal records: %d\n", r.Records))
	fmt.Fprintf(&b, "Countries: %d\n", r.Entities)
	if r.HasYears {
		fmt.Fprintf(&b, "Year range: %.0f - %.0f\n", r.YearMin, r.YearMax)
	}

	if s, ok := r.ValueStats(); ok {
		b.WriteString("\n--- STATISTICAL SUMMARY ---\n")
		b.WriteString(p.Sprintf("Mean population: %.2f\n", s.Mean))
		b.WriteString(p.Sprintf("Median population: %.2f\n", s.Median))
		b.WriteString(p.Sprintf("Std deviation: %.2f\n", s.Std))
		b.WriteString(p.Sprintf("Range: %.2f\n", s.Range()))
	}
	if len(r.Top) > 0 {
		fmt.Fprintf(&b, "\n--- TOP %d COUNTRIES BY POPULATION ---\n", len(r.Top))
		for i, row := range r.Top {
			b.WriteString(p.Sprintf("%d. %s: %.0f\n", i+1, row.Entity, row.Value))
		}
	}
	if len(r.Aggregates) > 0 {
		b.WriteString("\n--- AGGREGATES BY COUNTRY ---\n")
		b.WriteString(AggregatesTable(r.Aggregates))
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n--- NOTES ---\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	b.WriteString(banner + "\n")
	return b.String()
}

// Markdown renders a compact report suitable for saving alongside a
// workspace or piping into other tools.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[" + r.Title + "]\n")
	if r.Dataset != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Dataset))
	}
	b.WriteString(fmt.Sprintf("Run: %s (%s)\n", r.RunID, r.GeneratedAt.Format(time.RFC3339)))
	if r.RowsLoaded > 0 {
		b.WriteString(fmt.Sprintf("Rows: %d (clean %d)\n", r.RowsLoaded, r.RowsClean))
	}
	b.WriteString(fmt.Sprintf("Records analyzed: %d\n", r.Records))
	b.WriteString(fmt.Sprintf("Countries: %d\n", r.Entities))
	if r.HasYears {
		b.WriteString(fmt.Sprintf("Years: %.0f - %.0f\n", r.YearMin, r.YearMax))
	}

	b.WriteString("\n[SCHEMA]\n")
	b.WriteString(fmt.Sprintf("- entity: %s\n", orUnresolved(r.Schema.Entity)))
	b.WriteString(fmt.Sprintf("- time: %s\n", orUnresolved(r.Schema.Time)))
	b.WriteString(fmt.Sprintf("- value: %s\n", orUnresolved(r.Schema.Value)))

	if len(r.Stats) > 0 {
		b.WriteString("\n[NUMERIC COLUMNS]\n")
		names := make([]string, 0, len(r.Stats))
		for name := range r.Stats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := r.Stats[name]
			b.WriteString(fmt.Sprintf("- %s: count %d, min %.4g, max %.4g, mean %.4g, std %.4g\n",
				name, s.Count, s.Min, s.Max, s.Mean, s.Std))
		}
	}
	if s, ok := r.ValueStats(); ok {
		b.WriteString("\n[STATISTICAL SUMMARY]\n")
		b.WriteString(fmt.Sprintf("Mean population: %.2f\n", s.Mean))
		b.WriteString(fmt.Sprintf("Median population: %.2f\n", s.Median))
		b.WriteString(fmt.Sprintf("Std deviation: %.2f\n", s.Std))
		b.WriteString(fmt.Sprintf("Range: %.2f\n", s.Range()))
	}
	if len(r.Top) > 0 {
		b.WriteString(fmt.Sprintf("\n[TOP %d COUNTRIES]\n", len(r.Top)))
		for i, row := range r.Top {
			b.WriteString(fmt.Sprintf("%d. %s: %.0f\n", i+1, row.Entity, row.Value))
		}
	}
	if len(r.Aggregates) > 0 {
		b.WriteString("\n[AGGREGATES BY COUNTRY]\n")
		for _, rec := range r.Aggregates {
			b.WriteString(fmt.Sprintf("- %s: average %.2f, minimum %.2f, maximum %.2f, total %.2f\n",
				rec.Entity, rec.Mean, rec.Min, rec.Max, rec.Sum))
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString(fmt.Sprintf("- %s\n", n))
		}
	}
	return b.String()
}

// AggregatesTable renders aggregate records in the column layout of the
// population pipeline: Country, Average, Minimum, Maximum, Total.
func AggregatesTable(recs []analysis.AggregateRecord) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %16s %16s %16s %18s\n", "Country", "Average", "Minimum", "Maximum", "Total")
	for _, rec := range recs {
		b.WriteString(p.Sprintf("%-24s %16.2f %16.2f %16.2f %18.2f\n",
			rec.Entity, rec.Mean, rec.Min, rec.Max, rec.Sum))
	}
	return b.String()
}

func orUnresolved(name string) string {
	if name == "" {
		return "(unresolved)"
	}
	return name
}
