package domain

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Record is one result row as returned by the API
type Record map[string]any

// MetricRecord is a single metric evaluation from the metrics endpoint
type MetricRecord struct {
	EvaluationTime int64          `json:"evaluation_time"`
	Value          float64        `json:"value"`
	Dimensions     map[string]any `json:"dimensions,omitempty"`
}

// ToRecord lifts the dimensions next to evaluation_time and value
func (m MetricRecord) ToRecord() Record {
	r := Record{
		"evaluation_time": m.EvaluationTime,
		"value":           m.Value,
	}
	for k, v := range m.Dimensions {
		if k == "evaluation_time" || k == "value" {
			continue
		}
		r[k] = v
	}
	return r
}

// Table is a flattened, column-ordered view of a result
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.Rows) }

// Column returns all values of the named column
func (t *Table) Column(name string) ([]any, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Maps returns each row keyed by column name; missing values are omitted
func (t *Table) Maps() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			if row[j] != nil {
				m[col] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

// QueryResult holds the rows returned by a query. It is immutable once built
// and every materialization is computed from the same rows.
type QueryResult struct {
	rows    []Record
	leading []string
}

// NewQueryResult copies rows into a result. leadingColumns are placed first
// in tabular output when they appear in the data.
func NewQueryResult(rows []Record, leadingColumns ...string) *QueryResult {
	owned := make([]Record, len(rows))
	for i, row := range rows {
		owned[i] = copyRecord(row)
	}
	leading := make([]string, len(leadingColumns))
	copy(leading, leadingColumns)
	return &QueryResult{rows: owned, leading: leading}
}

// NewMetricResult builds a result from metric records, ordering columns as
// evaluation_time, value, then the group-by dimensions.
func NewMetricResult(records []MetricRecord, groupBy []string) *QueryResult {
	rows := make([]Record, len(records))
	for i, m := range records {
		rows[i] = m.ToRecord()
	}
	leading := append([]string{"evaluation_time", "value"}, groupBy...)
	return NewQueryResult(rows, leading...)
}

// Len returns the number of rows
func (r *QueryResult) Len() int { return len(r.rows) }

// Records returns a copy of the raw rows
func (r *QueryResult) Records() []Record {
	out := make([]Record, len(r.rows))
	for i, row := range r.rows {
		out[i] = copyRecord(row)
	}
	return out
}

// All yields a copy of each row with its index
func (r *QueryResult) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, row := range r.rows {
			if !yield(i, copyRecord(row)) {
				return
			}
		}
	}
}

// Table flattens nested rows into dotted columns. Leading columns come first,
// the remaining columns are sorted; missing values are nil.
func (r *QueryResult) Table() *Table {
	flat := make([]map[string]any, len(r.rows))
	seen := map[string]struct{}{}
	for i, row := range r.rows {
		m := map[string]any{}
		for k, v := range row {
			flatten(k, v, m)
		}
		for k := range m {
			seen[k] = struct{}{}
		}
		flat[i] = m
	}

	columns := make([]string, 0, len(seen))
	placed := map[string]struct{}{}
	for _, col := range r.leading {
		if _, ok := seen[col]; !ok {
			continue
		}
		if _, dup := placed[col]; dup {
			continue
		}
		placed[col] = struct{}{}
		columns = append(columns, col)
	}
	rest := make([]string, 0, len(seen)-len(placed))
	for col := range seen {
		if _, ok := placed[col]; !ok {
			rest = append(rest, col)
		}
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	rows := make([][]any, len(flat))
	for i, m := range flat {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = m[col]
		}
		rows[i] = row
	}
	return &Table{Columns: columns, Rows: rows}
}

// CSVOption configures CSV output
type CSVOption func(*csvOptions)

type csvOptions struct {
	header bool
}

// WithoutHeader omits the header row
func WithoutHeader() CSVOption {
	return func(o *csvOptions) { o.header = false }
}

// WriteCSV writes a header row followed by one line per record
func (r *QueryResult) WriteCSV(w io.Writer, opts ...CSVOption) error {
	cfg := csvOptions{header: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	table := r.Table()
	if len(table.Columns) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if cfg.header {
		if err := cw.Write(table.Columns); err != nil {
			return errors.WrapError(errors.ErrCodeIOError, "failed to write CSV header", err)
		}
	}
	line := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			line[i] = FormatValue(v)
		}
		if err := cw.Write(line); err != nil {
			return errors.WrapError(errors.ErrCodeIOError, "failed to write CSV row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapError(errors.ErrCodeIOError, "failed to flush CSV", err)
	}
	return nil
}

// ToCSV writes the result as CSV to path, replacing any existing file
func (r *QueryResult) ToCSV(path string, opts ...CSVOption) error {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteCSV(w, opts...)
	})
}

// WriteJSON writes the raw records as an indented JSON array
func (r *QueryResult) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	rows := r.rows
	if rows == nil {
		rows = []Record{}
	}
	if err := enc.Encode(rows); err != nil {
		return errors.WrapError(errors.ErrCodeIOError, "failed to encode JSON", err)
	}
	return nil
}

// ToJSON writes the raw records as JSON to path
func (r *QueryResult) ToJSON(path string) error {
	return writeFile(path, r.WriteJSON)
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapError(errors.ErrCodeIOError, fmt.Sprintf("failed to create %s", path), err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.WrapError(errors.ErrCodeIOError, fmt.Sprintf("failed to close %s", path), err)
	}
	return nil
}

// FormatValue renders a cell for text output. nil becomes the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case json.Number:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func flatten(prefix string, v any, out map[string]any) {
	switch val := v.(type) {
	case Record:
		flattenMap(prefix, val, out)
	case map[string]any:
		flattenMap(prefix, val, out)
	case map[string]string:
		if len(val) == 0 {
			out[prefix] = nil
			return
		}
		for k, s := range val {
			out[prefix+"."+k] = s
		}
	case []any:
		if len(val) == 0 {
			out[prefix] = nil
			return
		}
		for i, item := range val {
			flatten(prefix+"."+strconv.Itoa(i), item, out)
		}
	case []string:
		if len(val) == 0 {
			out[prefix] = nil
			return
		}
		for i, item := range val {
			out[prefix+"."+strconv.Itoa(i)] = item
		}
	default:
		out[prefix] = val
	}
}

func flattenMap(prefix string, m map[string]any, out map[string]any) {
	if len(m) == 0 {
		out[prefix] = nil
		return
	}
	for k, v := range m {
		flatten(prefix+"."+k, v, out)
	}
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies the container types a record may nest
func copyValue(v any) any {
	switch val := v.(type) {
	case Record:
		if val == nil {
			return val
		}
		return copyRecord(val)
	case map[string]any:
		if val == nil {
			return val
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case map[string]string:
		if val == nil {
			return val
		}
		out := make(map[string]string, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		if val == nil {
			return val
		}
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}
