package sinks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
)

const (
	mysqlBatchSize = 500
	// mysqlMaxPlaceholders is the server's limit on parameters per prepared statement
	mysqlMaxPlaceholders = 65535
)

// mysqlBatchRows returns how many rows of the given width fit in one INSERT
func mysqlBatchRows(columns int) int {
	if columns <= 0 {
		return mysqlBatchSize
	}
	return max(1, min(mysqlBatchSize, mysqlMaxPlaceholders/columns))
}

// MySQLSink inserts tables into a MySQL table
type MySQLSink struct {
	db    *sql.DB
	table string
}

// NewMySQLSink opens a MySQL connection. connectionString may be a mysql://
// URL or a driver DSN.
func NewMySQLSink(ctx context.Context, connectionString, table string) (*MySQLSink, error) {
	log := logging.New("sinks:mysql")

	dsn, err := mysqlDSN(connectionString)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	log.Debugf("MySQL connection opened successfully")
	return &MySQLSink{db: db, table: table}, nil
}

// Write creates the table if needed and inserts the rows in batches within a
// single transaction
func (m *MySQLSink) Write(ctx context.Context, table *domain.Table) error {
	if len(table.Columns) == 0 {
		return nil
	}
	if _, err := m.db.ExecContext(ctx, createTableSQL(m.table, table.Columns, mysqlIdent)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", m.table, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	batchRows := mysqlBatchRows(len(table.Columns))
	for start := 0; start < len(table.Rows); start += batchRows {
		end := min(start+batchRows, len(table.Rows))
		batch := table.Rows[start:end]

		args := make([]any, 0, len(batch)*len(table.Columns))
		for _, row := range batch {
			args = append(args, textRow(row)...)
		}
		if _, err := tx.ExecContext(ctx, insertSQL(m.table, table.Columns, len(batch), mysqlIdent), args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert rows into %s: %w", m.table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close closes the database connection
func (m *MySQLSink) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
