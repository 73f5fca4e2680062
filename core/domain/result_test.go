package domain_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

func TestToCSVTwoLineFile(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{{"country": "US", "value": 10}})
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, result.ToCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "country,value\nUS,10\n", string(data))
}

func TestToCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\n1,2\n3,4\n"), 0o644))

	result := domain.NewQueryResult([]domain.Record{{"a": "x"}})
	require.NoError(t, result.ToCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nx\n", string(data))
}

func TestToCSVWithoutHeader(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{{"country": "US", "value": 10}, {"country": "UK", "value": 7}})
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, result.ToCSV(path, domain.WithoutHeader()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "US,10\nUK,7\n", string(data))

	var buf bytes.Buffer
	require.NoError(t, result.WriteCSV(&buf, domain.WithoutHeader()))
	assert.Equal(t, "US,10\nUK,7\n", buf.String())
}

func TestToCSVUnwritablePath(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{{"a": 1}})
	err := result.ToCSV(filepath.Join(t.TempDir(), "missing", "dir", "out.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestTableFlattensNestedRecords(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{
		{"value": 1.5, "meta": map[string]any{"region": "eu", "tags": []any{"a", "b"}}},
		{"value": 2, "extra": true},
	}, "value")

	table := result.Table()
	assert.Equal(t, []string{"value", "extra", "meta.region", "meta.tags.0", "meta.tags.1"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []any{1.5, nil, "eu", "a", "b"}, table.Rows[0])
	assert.Equal(t, []any{2, true, nil, nil, nil}, table.Rows[1])

	regions, ok := table.Column("meta.region")
	require.True(t, ok)
	assert.Equal(t, []any{"eu", nil}, regions)

	_, ok = table.Column("missing")
	assert.False(t, ok)
}

func TestMetricResultColumnOrder(t *testing.T) {
	result := domain.NewMetricResult([]domain.MetricRecord{
		{EvaluationTime: 1700000000000, Value: 10, Dimensions: map[string]any{"country": "US", "device": "ios"}},
		{EvaluationTime: 1700000060000, Value: 12.5, Dimensions: map[string]any{"country": "UK", "device": "web"}},
	}, []string{"device", "country"})

	var buf bytes.Buffer
	require.NoError(t, result.WriteCSV(&buf))
	assert.Equal(t,
		"evaluation_time,value,device,country\n"+
			"1700000000000,10,ios,US\n"+
			"1700000060000,12.5,web,UK\n",
		buf.String())
}

func TestLeadingColumnsAbsentFromDataAreSkipped(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{{"b": 1, "a": 2}}, "missing", "b")
	assert.Equal(t, []string{"b", "a"}, result.Table().Columns)
}

func TestEmptyResult(t *testing.T) {
	result := domain.NewQueryResult(nil)
	assert.Equal(t, 0, result.Len())

	var buf bytes.Buffer
	require.NoError(t, result.WriteCSV(&buf))
	assert.Empty(t, buf.String())

	buf.Reset()
	require.NoError(t, result.WriteJSON(&buf))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestQueryResultIsImmutable(t *testing.T) {
	rows := []domain.Record{{"a": 1}}
	result := domain.NewQueryResult(rows)

	rows[0]["a"] = 2
	records := result.Records()
	records[0]["a"] = 3

	assert.Equal(t, 1, result.Records()[0]["a"])
}

func TestQueryResultAll(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{{"a": 1}, {"a": 2}, {"a": 3}})

	var seen []any
	for i, rec := range result.All() {
		assert.Equal(t, i+1, rec["a"])
		rec["a"] = 0
		seen = append(seen, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []any{0, 1}, seen)
	assert.Equal(t, 1, result.Records()[0]["a"])
}

func TestQueryResultNestedValuesAreCopied(t *testing.T) {
	dims := map[string]any{"country": "US"}
	tags := []any{"a", map[string]any{"k": "v"}}
	labels := map[string]string{"env": "prod"}
	names := []string{"x"}
	rows := []domain.Record{{"dims": dims, "tags": tags, "labels": labels, "names": names}}
	result := domain.NewQueryResult(rows)

	dims["country"] = "XX"
	dims["extra"] = 1
	tags[1].(map[string]any)["k"] = "changed"
	labels["env"] = "dev"
	names[0] = "y"

	records := result.Records()
	records[0]["dims"].(map[string]any)["country"] = "YY"
	records[0]["tags"].([]any)[0] = "b"

	table := result.Table()
	assert.Equal(t, []string{"dims.country", "labels.env", "names.0", "tags.0", "tags.1.k"}, table.Columns)
	assert.Equal(t, [][]any{{"US", "prod", "x", "a", "v"}}, table.Rows)
}

func TestToJSON(t *testing.T) {
	result := domain.NewQueryResult([]domain.Record{{"country": "US", "value": 10}})
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, result.ToJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []map[string]any{{"country": "US", "value": float64(10)}}, decoded)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{10, "10"},
		{int64(-3), "-3"},
		{10.0, "10"},
		{0.125, "0.125"},
		{json.Number("12"), "12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.FormatValue(tt.in))
	}
}
