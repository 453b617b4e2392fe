// Package export pushes aggregate results into external stores.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/KaramelBytes/popstat-cli/internal/analysis"
)

// Aggregates writes per-entity aggregates into a Postgres table, creating
// the table when it does not exist. An empty record set writes nothing and
// opens no connection.
func Aggregates(ctx context.Context, dsn, tableName string, recs []analysis.AggregateRecord) error {
	if len(recs) == 0 {
		return nil
	}
	if tableName == "" {
		return errors.New("export table name not set")
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, createTableSQL(tableName)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	insert := insertSQL(tableName)
	batch := &pgx.Batch{}
	for _, r := range recs {
		batch.Queue(insert, r.Entity, r.Count, r.Mean, r.Min, r.Max, r.Sum)
	}
	br := conn.SendBatch(ctx, batch)
	defer br.Close()
	for range recs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert aggregate: %w", err)
		}
	}
	return nil
}

func createTableSQL(tableName string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	entity text NOT NULL,
	row_count bigint NOT NULL,
	mean double precision NOT NULL,
	min double precision NOT NULL,
	max double precision NOT NULL,
	total double precision NOT NULL,
	inserted_at timestamptz NOT NULL DEFAULT now()
)`, pgx.Identifier{tableName}.Sanitize())
}

func insertSQL(tableName string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (entity, row_count, mean, min, max, total) VALUES ($1, $2, $3, $4, $5, $6)",
		pgx.Identifier{tableName}.Sanitize())
}
