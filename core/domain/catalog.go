package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Indicator is a monitored metric defined on a computed dataset
type Indicator struct {
	ID           int64    `json:"id"`
	DatasetID    int64    `json:"dataset_id"`
	DatasetName  string   `json:"dataset_name"`
	Query        string   `json:"query"`
	Aggregations []string `json:"aggregations"`
	Name         string   `json:"name"`
	Dimensions   []string `json:"dimensions"`
	Tags         []string `json:"tags"`
}

// BuildIndicatorQuery renders the SQL an indicator evaluates:
// SELECT <calculation> AS value FROM <dataset> [WHERE <filters>] [GROUP BY <fields>]
func BuildIndicatorQuery(calculation, datasetName, filters string, groupFields []string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(calculation)
	b.WriteString(" AS value FROM ")
	b.WriteString(datasetName)
	if filters != "" {
		b.WriteString(" WHERE ")
		b.WriteString(filters)
	}
	if len(groupFields) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(groupFields, ", "))
	}
	return b.String()
}

// IndicatorFilter narrows an indicator listing. Empty fields don't filter.
type IndicatorFilter struct {
	DatasetIDs []int64
	Tags       []string
	Fields     []string
}

// ForDataset returns a filter matching the indicators computed on d
func ForDataset(d *Dataset) IndicatorFilter {
	return IndicatorFilter{DatasetIDs: []int64{d.ID}}
}

// DimensionValues maps a dimension name to its distinct values
type DimensionValues map[string][]string

// Dataset is a computed dataset registered with the API
type Dataset struct {
	DataSource string         `json:"data_source"`
	SourceID   string         `json:"source_id"`
	Name       string         `json:"name"`
	ID         int64          `json:"id"`
	Query      string         `json:"query"`
	Schema     map[string]any `json:"schema"`
}

// SchemaFields flattens the schema into dotted field names, sorted
func (d *Dataset) SchemaFields() []Field {
	flat := map[string]any{}
	for k, v := range d.Schema {
		flatten(k, v, flat)
	}
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{DatasetID: d.ID, Name: name}
	}
	return fields
}

// RawDataset is the upstream source a computed dataset is derived from
type RawDataset struct {
	SourceID   string         `json:"source_id"`
	DataSource string         `json:"data_source"`
	Name       string         `json:"name"`
	Schema     map[string]any `json:"schema"`
}

// Field is one flattened schema field of a dataset
type Field struct {
	DatasetID int64  `json:"dataset_id"`
	Name      string `json:"name"`
}

func (f Field) String() string {
	return strconv.FormatInt(f.DatasetID, 10) + ":" + f.Name
}
