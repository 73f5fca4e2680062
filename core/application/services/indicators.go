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

// IndicatorService reads indicator definitions from the API
type IndicatorService struct {
	api interfaces.APIClient
}

// NewIndicatorService creates a new IndicatorService
func NewIndicatorService(api interfaces.APIClient) *IndicatorService {
	return &IndicatorService{api: api}
}

// List returns indicators matching the filter
func (s *IndicatorService) List(ctx context.Context, filter domain.IndicatorFilter) ([]*domain.Indicator, error) {
	ctx = sharedctx.WithOperation(ctx, "indicators.list")

	params := url.Values{}
	for _, id := range filter.DatasetIDs {
		params.Add("dataset_id", strconv.FormatInt(id, 10))
	}
	for _, tag := range filter.Tags {
		params.Add("tags", tag)
	}
	for _, field := range filter.Fields {
		params.Add("fields", field)
	}

	var resp dto.IndicatorsResponse
	if err := s.api.Get(ctx, "/indicators", params, &resp); err != nil {
		return nil, err
	}

	indicators := make([]*domain.Indicator, len(resp.Indicators))
	for i, ind := range resp.Indicators {
		indicators[i] = ind.ToDomain()
	}
	return indicators, nil
}

// Get returns a single indicator by ID
func (s *IndicatorService) Get(ctx context.Context, id int64) (*domain.Indicator, error) {
	if id <= 0 {
		return nil, errors.Validation("indicator id must be greater than 0, got %d", id)
	}
	ctx = sharedctx.WithOperation(ctx, "indicators.get")

	params := url.Values{"indicator_id": {strconv.FormatInt(id, 10)}}
	var resp dto.IndicatorResponse
	if err := s.api.Get(ctx, "/indicator", params, &resp); err != nil {
		return nil, err
	}
	if resp.Indicator == nil {
		return nil, errors.NewAppError(errors.ErrCodeNotFound, fmt.Sprintf("indicator %d not found", id), nil)
	}
	return resp.Indicator.ToDomain(), nil
}

// DimensionValues returns the distinct values of the indicator's dimensions
func (s *IndicatorService) DimensionValues(ctx context.Context, id int64, dimensions ...string) (domain.DimensionValues, error) {
	if id <= 0 {
		return nil, errors.Validation("indicator id must be greater than 0, got %d", id)
	}
	ctx = sharedctx.WithOperation(ctx, "indicators.dimensions")

	params := url.Values{}
	for _, d := range dimensions {
		params.Add("dimensions", d)
	}
	var resp dto.DimensionsResponse
	if err := s.api.Get(ctx, fmt.Sprintf("/indicators/%d/dimensions", id), params, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}
