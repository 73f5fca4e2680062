package dto

import (
	"github.com/lariat-data/lariat-go/core/domain"
)

// IndicatorDTO is an indicator as returned by /indicators and /indicator
type IndicatorDTO struct {
	IndicatorID         int64    `json:"indicator_id" yaml:"indicator_id"`
	ComputedDatasetID   int64    `json:"computed_dataset_id" yaml:"computed_dataset_id"`
	ComputedDatasetName string   `json:"computed_dataset_name" yaml:"computed_dataset_name"`
	Calculation         string   `json:"calculation" yaml:"calculation"`
	Filters             string   `json:"filters" yaml:"filters"`
	GroupFields         []string `json:"group_fields" yaml:"group_fields"`
	Aggregations        []string `json:"aggregations,omitempty" yaml:"aggregations"`
	Name                string   `json:"name" yaml:"name"`
	Tags                []string `json:"tags,omitempty" yaml:"tags"`
}

// ToDomain converts the wire form, synthesizing the indicator's SQL
func (d IndicatorDTO) ToDomain() *domain.Indicator {
	return &domain.Indicator{
		ID:           d.IndicatorID,
		DatasetID:    d.ComputedDatasetID,
		DatasetName:  d.ComputedDatasetName,
		Query:        domain.BuildIndicatorQuery(d.Calculation, d.ComputedDatasetName, d.Filters, d.GroupFields),
		Aggregations: nonNil(d.Aggregations),
		Name:         d.Name,
		Dimensions:   nonNil(d.GroupFields),
		Tags:         nonNil(d.Tags),
	}
}

type IndicatorsResponse struct {
	Indicators []IndicatorDTO `json:"indicators"`
}

type IndicatorResponse struct {
	Indicator *IndicatorDTO `json:"indicator"`
}

// DimensionFilterDTO lists the distinct values of one dimension
type DimensionFilterDTO struct {
	Key    string `json:"key"`
	Values []any  `json:"values"`
}

type DimensionsResponse struct {
	Filters []DimensionFilterDTO `json:"filters"`
}

// ToDomain flattens the filter list into a dimension -> values map
func (r DimensionsResponse) ToDomain() domain.DimensionValues {
	out := make(domain.DimensionValues, len(r.Filters))
	for _, f := range r.Filters {
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = domain.FormatValue(v)
		}
		out[f.Key] = values
	}
	return out
}

// DatasetDTO is a computed dataset as returned by /datasets
type DatasetDTO struct {
	DataSource  string         `json:"data_source" yaml:"data_source"`
	SourceID    string         `json:"source_id" yaml:"source_id"`
	DatasetName string         `json:"dataset_name" yaml:"dataset_name"`
	ID          int64          `json:"id" yaml:"id"`
	Query       string         `json:"query" yaml:"query"`
	Schema      map[string]any `json:"schema" yaml:"schema"`
}

func (d DatasetDTO) ToDomain() *domain.Dataset {
	return &domain.Dataset{
		DataSource: d.DataSource,
		SourceID:   d.SourceID,
		Name:       d.DatasetName,
		ID:         d.ID,
		Query:      d.Query,
		Schema:     d.Schema,
	}
}

type DatasetsResponse struct {
	ComputedDatasets []DatasetDTO `json:"computed_datasets"`
}

// RawDatasetDTO is a raw dataset as returned by /raw-datasets
type RawDatasetDTO struct {
	SourceID   string         `json:"source_id" yaml:"source_id"`
	DataSource string         `json:"data_source" yaml:"data_source"`
	Name       string         `json:"name" yaml:"name"`
	Schema     map[string]any `json:"schema" yaml:"schema"`
	// DatasetIDs links a raw dataset to the computed datasets derived from it
	DatasetIDs []int64 `json:"-" yaml:"dataset_ids"`
}

func (d RawDatasetDTO) ToDomain() *domain.RawDataset {
	return &domain.RawDataset{
		SourceID:   d.SourceID,
		DataSource: d.DataSource,
		Name:       d.Name,
		Schema:     d.Schema,
	}
}

type RawDatasetsResponse struct {
	RawDatasets []RawDatasetDTO `json:"raw_datasets"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
