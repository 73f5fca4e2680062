package interfaces

import (
	"context"
	"net/url"

	"github.com/lariat-data/lariat-go/core/domain"
)

// APIClient performs authenticated calls against the public API
type APIClient interface {
	// Get issues a GET to path (relative to the configured endpoint) and
	// decodes the JSON response into out
	Get(ctx context.Context, path string, params url.Values, out any) error
}

// IndicatorService reads indicator definitions
type IndicatorService interface {
	// List returns indicators matching the filter
	List(ctx context.Context, filter domain.IndicatorFilter) ([]*domain.Indicator, error)

	// Get returns a single indicator by ID
	Get(ctx context.Context, id int64) (*domain.Indicator, error)

	// DimensionValues returns the distinct values of an indicator's dimensions.
	// With no dimensions given, all are returned.
	DimensionValues(ctx context.Context, id int64, dimensions ...string) (domain.DimensionValues, error)
}

// DatasetService reads computed and raw datasets
type DatasetService interface {
	// List returns computed datasets, optionally filtered by name
	List(ctx context.Context, name string) ([]*domain.Dataset, error)

	// Get returns the dataset with the given name and source
	Get(ctx context.Context, name, sourceID string) (*domain.Dataset, error)

	// RawDatasets returns the raw datasets the given computed datasets derive from
	RawDatasets(ctx context.Context, datasetIDs ...int64) ([]*domain.RawDataset, error)

	// Indicators returns the indicators computed on a dataset
	Indicators(ctx context.Context, dataset *domain.Dataset) ([]*domain.Indicator, error)
}

// QueryService sends metric queries
type QueryService interface {
	// Query sends exactly one request and materializes the records
	Query(ctx context.Context, q domain.MetricsQuery) (*domain.QueryResult, error)
}
