package pipeline

import (
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// TimeRange bounds the time column. Both ends are inclusive; an end without
// its Has flag set is open.
type TimeRange struct {
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// From keeps rows at or after min.
func From(min float64) TimeRange {
	return TimeRange{Min: min, HasMin: true}
}

// Until keeps rows at or before max.
func Until(max float64) TimeRange {
	return TimeRange{Max: max, HasMax: true}
}

// Between keeps rows within [min, max].
func Between(min, max float64) TimeRange {
	return TimeRange{Min: min, Max: max, HasMin: true, HasMax: true}
}

// Unbounded reports whether the range excludes nothing.
func (r TimeRange) Unbounded() bool {
	return !r.HasMin && !r.HasMax
}

// Contains reports whether v falls inside the range.
func (r TimeRange) Contains(v float64) bool {
	if r.HasMin && v < r.Min {
		return false
	}
	if r.HasMax && v > r.Max {
		return false
	}
	return true
}

// FilterByTimeRange keeps rows whose time cell is a number inside r. Rows
// with a missing or non-numeric time cell are dropped. An unbounded range
// returns the input unchanged, as does a table with no resolvable time
// column; the latter emits one diagnostic.
func FilterByTimeRange(t *table.Table, cand table.Candidates, r TimeRange, sink diag.Sink) *table.Table {
	if r.Unbounded() {
		return t
	}
	col, ok := table.Resolve(t, table.RoleTime, cand)
	if !ok {
		diag.Emit(sink, "filter", "no time column among candidates %v; table unchanged", cand.Time)
		return t
	}
	kept := make([]table.Row, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if v, isNum := t.Value(i, col).Number(); isNum && r.Contains(v) {
			kept = append(kept, t.Row(i))
		}
	}
	return t.WithRows(kept)
}

// FilterByEntities keeps rows whose entity cell matches one of the allowed
// names exactly. A table with no resolvable entity column is returned
// unchanged with one diagnostic.
func FilterByEntities(t *table.Table, cand table.Candidates, allowed []string, sink diag.Sink) *table.Table {
	col, ok := table.Resolve(t, table.RoleEntity, cand)
	if !ok {
		diag.Emit(sink, "filter", "no entity column among candidates %v; table unchanged", cand.Entity)
		return t
	}
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	kept := make([]table.Row, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if s, isStr := t.Value(i, col).Text(); isStr {
			if _, hit := set[s]; hit {
				kept = append(kept, t.Row(i))
			}
		}
	}
	return t.WithRows(kept)
}

// EuropeanCountries lists the EU members plus the United Kingdom, Norway,
// and Switzerland, spelled the way the World Bank population dataset
// spells them.
var EuropeanCountries = []string{
	"Austria", "Belgium", "Bulgaria", "Croatia", "Cyprus", "Czechia",
	"Denmark", "Estonia", "Finland", "France", "Germany", "Greece",
	"Hungary", "Ireland", "Italy", "Latvia", "Lithuania", "Luxembourg",
	"Malta", "Netherlands", "Poland", "Portugal", "Romania", "Slovakia",
	"Slovenia", "Spain", "Sweden", "United Kingdom", "Norway", "Switzerland",
}

// FilterEuropean keeps the European countries.
func FilterEuropean(t *table.Table, cand table.Candidates, sink diag.Sink) *table.Table {
	return FilterByEntities(t, cand, EuropeanCountries, sink)
}
