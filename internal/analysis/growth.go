package analysis

import (
	"sort"

	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// GrowthColumn is the name of the column GrowthRates appends.
const GrowthColumn = "growth_rate"

// GrowthRates returns a copy of t sorted by entity then time, with a
// growth_rate column holding the percent change of each value cell against
// the entity's previous row. The first row of an entity has a missing
// growth, as does any row whose current or previous value is not numeric.
// A previous value of exactly zero makes the change undefined rather than
// missing. If the entity, time, or value column cannot be resolved the
// input is returned unchanged with one diagnostic.
func GrowthRates(t *table.Table, cand table.Candidates, sink diag.Sink) *table.Table {
	entityCol, ok := table.Resolve(t, table.RoleEntity, cand)
	if !ok {
		diag.Emit(sink, "growth", "no entity column among candidates %v; table unchanged", cand.Entity)
		return t
	}
	timeCol, ok := table.Resolve(t, table.RoleTime, cand)
	if !ok {
		diag.Emit(sink, "growth", "no time column among candidates %v; table unchanged", cand.Time)
		return t
	}
	valueCol, ok := table.Resolve(t, table.RoleValue, cand)
	if !ok {
		diag.Emit(sink, "growth", "no value column among candidates %v; table unchanged", cand.Value)
		return t
	}

	idx := make([]int, t.NumRows())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := idx[a], idx[b]
		if c := t.Value(ra, entityCol).Compare(t.Value(rb, entityCol)); c != 0 {
			return c < 0
		}
		return t.Value(ra, timeCol).Compare(t.Value(rb, timeCol)) < 0
	})

	rows := make([]table.Row, len(idx))
	growth := make([]table.Value, len(idx))
	for k, i := range idx {
		rows[k] = t.Row(i)
		growth[k] = table.Null()
		if k == 0 {
			continue
		}
		ent := t.Value(i, entityCol)
		if ent.IsNull() || ent.IsUndefined() {
			continue
		}
		prev := idx[k-1]
		if !t.Value(prev, entityCol).Equal(ent) {
			continue
		}
		cur, okCur := t.Value(i, valueCol).Number()
		prv, okPrv := t.Value(prev, valueCol).Number()
		if !okCur || !okPrv {
			continue
		}
		if prv == 0 {
			growth[k] = table.Undefined()
			continue
		}
		growth[k] = table.Num((cur - prv) / prv * 100)
	}
	return t.WithRows(rows).WithColumn(GrowthColumn, growth)
}
