// Package pipeline holds the row-level preparation stages that run between
// loading a dataset and analyzing it: deduplication, missing-value removal,
// and time/entity filtering.
package pipeline

import (
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/KaramelBytes/popstat-cli/internal/diag"
	"github.com/KaramelBytes/popstat-cli/internal/table"
)

// Clean removes duplicate rows first and rows with missing values second,
// reporting both counts and the remaining row count through the sink. A
// duplicate of a row that itself has missing values counts as a duplicate,
// not as missing. Cleaning an already-clean table removes nothing.
func Clean(t *table.Table, sink diag.Sink) *table.Table {
	cols := t.Columns()
	seen := make(map[uint64][]int, t.NumRows())
	kept := make([]table.Row, 0, t.NumRows())

	duplicates := 0
	missing := 0
	for i := 0; i < t.NumRows(); i++ {
		h := rowFingerprint(t, i, cols)
		dup := false
		for _, j := range seen[h] {
			if rowsEqual(t, i, j, cols) {
				dup = true
				break
			}
		}
		if dup {
			duplicates++
			continue
		}
		seen[h] = append(seen[h], i)
		if rowHasNull(t, i, cols) {
			missing++
			continue
		}
		kept = append(kept, t.Row(i))
	}

	diag.Emit(sink, "clean", "removed %d duplicate rows", duplicates)
	diag.Emit(sink, "clean", "removed %d rows with missing values", missing)
	diag.Emit(sink, "clean", "%d rows remain", len(kept))
	return t.WithRows(kept)
}

// rowFingerprint hashes a row over the table's column order. Cells are
// serialized with a kind tag so Num(0) and Str("0") cannot collide, and a
// 0x1f separator so adjacent cells cannot run together.
func rowFingerprint(t *table.Table, i int, cols []string) uint64 {
	buf := make([]byte, 0, 64)
	for _, c := range cols {
		v := t.Value(i, c)
		switch {
		case v.IsNull():
			buf = append(buf, '0')
		case v.IsUndefined():
			buf = append(buf, 'u')
		default:
			if n, ok := v.Number(); ok {
				buf = append(buf, 'n')
				buf = strconv.AppendFloat(buf, n, 'b', -1, 64)
			} else if s, ok := v.Text(); ok {
				buf = append(buf, 's')
				buf = append(buf, s...)
			}
		}
		buf = append(buf, 0x1f)
	}
	return xxh3.Hash(buf)
}

func rowsEqual(t *table.Table, i, j int, cols []string) bool {
	for _, c := range cols {
		if !t.Value(i, c).Equal(t.Value(j, c)) {
			return false
		}
	}
	return true
}

func rowHasNull(t *table.Table, i int, cols []string) bool {
	for _, c := range cols {
		if t.Value(i, c).IsNull() {
			return true
		}
	}
	return false
}
