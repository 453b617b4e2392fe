package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// ErrInvalidArgument reports a caller mistake, such as a non-positive n.
var ErrInvalidArgument = errors.New("invalid argument")

// RankedRow is one entry of a ranking, largest value first.
type RankedRow struct {
	Entity string
	Time   table.Value
	Value  float64
}

// TopN returns up to n rows ranked by descending value. With
// latestPerEntity set, each entity is first reduced to its most recent
// row: the row with the greatest time cell, later rows winning ties, and a
// missing time never beating a present one. Rows whose value is not
// numeric are excluded after the reduction.
//
// A non-positive n is an error. A table without an entity or value column
// yields an empty ranking and one diagnostic. If the reduction is requested
// but no time column resolves, the ranking degrades to all rows and says so
// through the sink.
func TopN(t *table.Table, cand table.Candidates, n int, latestPerEntity bool, sink diag.Sink) ([]RankedRow, error) {
	if n <= 0 {
		return nil, fmt.Errorf("top: n must be positive, got %d: %w", n, ErrInvalidArgument)
	}
	valueCol, ok := table.Resolve(t, table.RoleValue, cand)
	if !ok {
		diag.Emit(sink, "top", "no value column among candidates %v; no ranking", cand.Value)
		return nil, nil
	}
	entityCol, ok := table.Resolve(t, table.RoleEntity, cand)
	if !ok {
		diag.Emit(sink, "top", "no entity column among candidates %v; no ranking", cand.Entity)
		return nil, nil
	}
	timeCol, hasTime := table.Resolve(t, table.RoleTime, cand)

	if latestPerEntity && !hasTime {
		diag.Emit(sink, "top", "no time column among candidates %v; ranking over all rows", cand.Time)
		latestPerEntity = false
	}

	var rows []RankedRow
	if latestPerEntity {
		rows = latestRows(t, entityCol, timeCol, valueCol)
	} else {
		rows = valueRows(t, entityCol, timeCol, hasTime, valueCol)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func latestRows(t *table.Table, entityCol, timeCol, valueCol string) []RankedRow {
	best := make(map[string]int)
	order := make([]string, 0, 16)
	for i := 0; i < t.NumRows(); i++ {
		ent := t.Value(i, entityCol)
		if ent.IsNull() || ent.IsUndefined() {
			continue
		}
		key := ent.String()
		j, exists := best[key]
		if !exists {
			best[key] = i
			order = append(order, key)
			continue
		}
		if t.Value(i, timeCol).Compare(t.Value(j, timeCol)) >= 0 {
			best[key] = i
		}
	}
	out := make([]RankedRow, 0, len(order))
	for _, key := range order {
		i := best[key]
		v, ok := t.Value(i, valueCol).Number()
		if !ok {
			continue
		}
		out = append(out, RankedRow{Entity: key, Time: t.Value(i, timeCol), Value: v})
	}
	return out
}

func valueRows(t *table.Table, entityCol, timeCol string, hasTime bool, valueCol string) []RankedRow {
	out := make([]RankedRow, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		v, ok := t.Value(i, valueCol).Number()
		if !ok {
			continue
		}
		r := RankedRow{Entity: t.Value(i, entityCol).String(), Value: v, Time: table.Null()}
		if hasTime {
			r.Time = t.Value(i, timeCol)
		}
		out = append(out, r)
	}
	return out
}
