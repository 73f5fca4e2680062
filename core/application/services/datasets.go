package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/domain/interfaces"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	sharedctx "github.com/lariat-data/lariat-go/core/shared/context"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// DatasetService reads computed and raw datasets from the API
type DatasetService struct {
	api        interfaces.APIClient
	indicators interfaces.IndicatorService
}

// NewDatasetService creates a new DatasetService
func NewDatasetService(api interfaces.APIClient, indicators interfaces.IndicatorService) *DatasetService {
	return &DatasetService{api: api, indicators: indicators}
}

// List returns computed datasets, filtered by name when non-empty
func (s *DatasetService) List(ctx context.Context, name string) ([]*domain.Dataset, error) {
	ctx = sharedctx.WithOperation(ctx, "datasets.list")

	params := url.Values{}
	if name != "" {
		params.Set("name", name)
	}
	return s.fetch(ctx, params)
}

// Get returns the first dataset with the given name and source
func (s *DatasetService) Get(ctx context.Context, name, sourceID string) (*domain.Dataset, error) {
	if name == "" || sourceID == "" {
		return nil, errors.Validation("dataset name and source id are required")
	}
	ctx = sharedctx.WithOperation(ctx, "datasets.get")

	datasets, err := s.fetch(ctx, url.Values{"name": {name}, "source_id": {sourceID}})
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		return nil, errors.NewAppError(errors.ErrCodeNotFound, fmt.Sprintf("dataset '%s' not found in source '%s'", name, sourceID), nil)
	}
	return datasets[0], nil
}

// RawDatasets returns the raw datasets the given computed datasets derive from
func (s *DatasetService) RawDatasets(ctx context.Context, datasetIDs ...int64) ([]*domain.RawDataset, error) {
	ctx = sharedctx.WithOperation(ctx, "datasets.raw")

	params := url.Values{}
	for _, id := range datasetIDs {
		params.Add("dataset_id", strconv.FormatInt(id, 10))
	}
	var resp dto.RawDatasetsResponse
	if err := s.api.Get(ctx, "/raw-datasets", params, &resp); err != nil {
		return nil, err
	}
	raw := make([]*domain.RawDataset, len(resp.RawDatasets))
	for i, r := range resp.RawDatasets {
		raw[i] = r.ToDomain()
	}
	return raw, nil
}

// Indicators returns the indicators computed on dataset
func (s *DatasetService) Indicators(ctx context.Context, dataset *domain.Dataset) ([]*domain.Indicator, error) {
	if dataset == nil {
		return nil, errors.Validation("dataset is required")
	}
	return s.indicators.List(ctx, domain.ForDataset(dataset))
}

func (s *DatasetService) fetch(ctx context.Context, params url.Values) ([]*domain.Dataset, error) {
	var resp dto.DatasetsResponse
	if err := s.api.Get(ctx, "/datasets", params, &resp); err != nil {
		return nil, err
	}
	datasets := make([]*domain.Dataset, len(resp.ComputedDatasets))
	for i, d := range resp.ComputedDatasets {
		datasets[i] = d.ToDomain()
	}
	return datasets, nil
}
