package export

import (
	"context"
	"strings"
	"testing"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
)

func TestAggregatesEmptySetIsNoOp(t *testing.T) {
	// must return before any connection is attempted
	if err := Aggregates(context.Background(), "postgres://nobody@nowhere/none", "population_aggregates", nil); err != nil {
		t.Fatalf("empty export: %v", err)
	}
}

func TestAggregatesRequiresTableName(t *testing.T) {
	recs := []analysis.AggregateRecord{{Entity: "Germany", Count: 1, Mean: 1, Min: 1, Max: 1, Sum: 1}}
	if err := Aggregates(context.Background(), "postgres://nobody@nowhere/none", "", recs); err == nil {
		t.Fatalf("expected error for missing table name")
	}
}

func TestStatementsQuoteTableName(t *testing.T) {
	ddl := createTableSQL(`pop"stats`)
	if !strings.HasPrefix(ddl, `CREATE TABLE IF NOT EXISTS "pop""stats" (`) {
		t.Fatalf("ddl = %q", ddl)
	}
	for _, col := range []string{"entity text", "row_count bigint", "mean double precision", "min double precision", "max double precision", "total double precision", "inserted_at timestamptz"} {
		if !strings.Contains(ddl, col) {
			t.Fatalf("ddl missing %q:\n%s", col, ddl)
		}
	}

	insert := insertSQL("population_aggregates")
	want := `INSERT INTO "population_aggregates" (entity, row_count, mean, min, max, total) VALUES ($1, $2, $3, $4, $5, $6)`
	if insert != want {
		t.Fatalf("insert = %q, want %q", insert, want)
	}
}
