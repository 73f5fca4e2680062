package sinks

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
)

// PostgresSink copies tables into a PostgreSQL table using pgx/v5
type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresSink opens a connection pool and verifies it
func NewPostgresSink(ctx context.Context, connectionString, table string) (*PostgresSink, error) {
	log := logging.New("sinks:postgres")
	log.Debugf("Opening PostgreSQL connection pool (pgx/v5)")

	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	log.Debugf("PostgreSQL connection pool opened successfully")
	return &PostgresSink{pool: pool, table: table}, nil
}

// Write creates the table if needed and copies the rows in
func (p *PostgresSink) Write(ctx context.Context, table *domain.Table) error {
	if len(table.Columns) == 0 {
		return nil
	}
	if _, err := p.pool.Exec(ctx, createTableSQL(p.table, table.Columns, pgIdent)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", p.table, err)
	}

	rows := make([][]any, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = textRow(row)
	}
	_, err := p.pool.CopyFrom(ctx, tableIdentifier(p.table), table.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy rows into %s: %w", p.table, err)
	}
	return nil
}

// Close closes the connection pool
func (p *PostgresSink) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func tableIdentifier(name string) pgx.Identifier {
	return pgx.Identifier(splitQualified(name))
}
