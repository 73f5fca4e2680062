package sinks

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/lariat-data/lariat-go/core/domain"
)

// quoteIdent quotes a SQL identifier with the given quote character,
// doubling any embedded quotes.
func quoteIdent(name string, quote byte) string {
	q := string(quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func pgIdent(name string) string    { return quoteIdent(name, '"') }
func mysqlIdent(name string) string { return quoteIdent(name, '`') }

// qualifiedIdent quotes each dot-separated part of a table name so that
// schema.table works
func qualifiedIdent(name string, quote func(string) string) string {
	parts := splitQualified(name)
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}

func splitQualified(name string) []string {
	return strings.Split(name, ".")
}

// createTableSQL renders a CREATE TABLE IF NOT EXISTS with one TEXT column per
// table column. Columns are stored as text since result schemas vary by
// indicator.
func createTableSQL(table string, columns []string, quote func(string) string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quote(col) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qualifiedIdent(table, quote), strings.Join(defs, ", "))
}

// insertSQL renders a multi-row INSERT with ? placeholders for rows rows
func insertSQL(table string, columns []string, rows int, quote func(string) string) string {
	cols := make([]string, len(columns))
	for i, col := range columns {
		cols[i] = quote(col)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	tuples := make([]string, rows)
	for i := range tuples {
		tuples[i] = tuple
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qualifiedIdent(table, quote), strings.Join(cols, ", "), strings.Join(tuples, ", "))
}

// textRow renders every cell as text; nil stays NULL
func textRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = domain.FormatValue(v)
	}
	return out
}

// mysqlDSN converts a mysql:// URL into a go-sql-driver DSN. Values that are
// already DSNs are validated and returned unchanged.
func mysqlDSN(connectionString string) (string, error) {
	if !strings.HasPrefix(connectionString, "mysql://") {
		if _, err := mysql.ParseDSN(connectionString); err != nil {
			return "", fmt.Errorf("invalid mysql DSN: %w", err)
		}
		return connectionString, nil
	}

	u, err := url.Parse(connectionString)
	if err != nil {
		return "", fmt.Errorf("failed to parse mysql connection string: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = u.Host + ":3306"
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second

	query := u.Query()
	if len(query) > 0 {
		cfg.Params = make(map[string]string, len(query))
		for key := range query {
			cfg.Params[key] = query.Get(key)
		}
	}
	return cfg.FormatDSN(), nil
}
