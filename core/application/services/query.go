package services

import (
	"context"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/domain/interfaces"
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	sharedctx "github.com/lariat-data/lariat-go/core/shared/context"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// QueryService sends metric queries to the API
type QueryService struct {
	api interfaces.APIClient
	log logging.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(api interfaces.APIClient) *QueryService {
	return &QueryService{
		api: api,
		log: logging.New("client:query"),
	}
}

// Query sends exactly one /query-metrics request. Columns of the result are
// evaluation_time, value, then the group-by fields in request order.
func (s *QueryService) Query(ctx context.Context, q domain.MetricsQuery) (*domain.QueryResult, error) {
	if q == nil {
		return nil, errors.Validation("query is required")
	}
	params, err := q.Params()
	if err != nil {
		return nil, err
	}
	ctx = sharedctx.WithOperation(ctx, "query")

	s.log.Debugf("querying indicator %s", params.Get("indicator_id"))
	var resp dto.MetricsResponse
	if err := s.api.Get(ctx, "/query-metrics", params, &resp); err != nil {
		return nil, err
	}
	s.log.Debugf("indicator %s returned %d record(s)", params.Get("indicator_id"), len(resp.Records))

	return domain.NewMetricResult(resp.Records, q.GroupByFields()), nil
}
