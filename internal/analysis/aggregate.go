// Package analysis computes grouped aggregates, descriptive statistics,
// rankings, and growth rates over tables whose schema was resolved against
// candidate column names.
package analysis

import (
	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// AggregateRecord holds per-entity statistics over the value column.
// Mean is Sum divided by Count, so Sum == Mean*Count holds exactly
// whenever the division is exact.
type AggregateRecord struct {
	Entity string
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	Sum    float64
}

type groupAcc struct {
	count int
	sum   float64
	min   float64
	max   float64
}

// AggregateByEntity groups rows by the entity column and aggregates the
// value column per group. Groups appear in first-seen row order. Rows with
// a missing entity are skipped, non-numeric value cells do not contribute,
// and groups with no numeric values are dropped. If either column cannot
// be resolved the result is nil and one diagnostic is emitted.
func AggregateByEntity(t *table.Table, cand table.Candidates, sink diag.Sink) []AggregateRecord {
	entityCol, ok := table.Resolve(t, table.RoleEntity, cand)
	if !ok {
		diag.Emit(sink, "aggregate", "no entity column among candidates %v; nothing to aggregate", cand.Entity)
		return nil
	}
	valueCol, ok := table.Resolve(t, table.RoleValue, cand)
	if !ok {
		diag.Emit(sink, "aggregate", "no value column among candidates %v; nothing to aggregate", cand.Value)
		return nil
	}

	groups := make(map[string]*groupAcc)
	order := make([]string, 0, 16)
	for i := 0; i < t.NumRows(); i++ {
		ent := t.Value(i, entityCol)
		if ent.IsNull() || ent.IsUndefined() {
			continue
		}
		key := ent.String()
		acc, exists := groups[key]
		if !exists {
			acc = &groupAcc{}
			groups[key] = acc
			order = append(order, key)
		}
		v, isNum := t.Value(i, valueCol).Number()
		if !isNum {
			continue
		}
		if acc.count == 0 {
			acc.min = v
			acc.max = v
		} else {
			if v < acc.min {
				acc.min = v
			}
			if v > acc.max {
				acc.max = v
			}
		}
		acc.count++
		acc.sum += v
	}

	out := make([]AggregateRecord, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		if acc.count == 0 {
			continue
		}
		out = append(out, AggregateRecord{
			Entity: key,
			Count:  acc.count,
			Mean:   acc.sum / float64(acc.count),
			Min:    acc.min,
			Max:    acc.max,
			Sum:    acc.sum,
		})
	}
	return out
}
