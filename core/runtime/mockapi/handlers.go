package mockapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/handlers"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/middleware"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Handler serves the public API endpoints from a fixture
type Handler struct {
	*handlers.BaseHandler
	fixture atomic.Pointer[Fixture]
	version string
}

// NewHandler creates a Handler over fixture
func NewHandler(fixture *Fixture, version string) *Handler {
	h := &Handler{
		BaseHandler: handlers.NewBaseHandler("mockapi"),
		version:     version,
	}
	h.fixture.Store(fixture)
	return h
}

// SetFixture swaps the served data; in-flight requests keep the old fixture
func (h *Handler) SetFixture(fixture *Fixture) {
	h.fixture.Store(fixture)
}

// Heartbeat reports that the server is up
func (h *Handler) Heartbeat(w http.ResponseWriter, _ *http.Request) {
	h.WriteSuccess(w, dto.HealthResponse{Success: true, Version: h.version})
}

// ListIndicators handles GET /indicators
func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	datasetIDs, err := parseIDs(query["dataset_id"])
	if err != nil {
		h.WriteError(w, err)
		return
	}
	tags := query["tags"]
	fields := query["fields"]

	out := []dto.IndicatorDTO{}
	for _, ind := range h.fixture.Load().Indicators {
		if len(datasetIDs) > 0 && !slices.Contains(datasetIDs, ind.ComputedDatasetID) {
			continue
		}
		if len(tags) > 0 && !overlaps(tags, ind.Tags) {
			continue
		}
		if len(fields) > 0 && !overlaps(fields, ind.GroupFields) {
			continue
		}
		out = append(out, ind)
	}
	h.WriteSuccess(w, dto.IndicatorsResponse{Indicators: out})
}

// GetIndicator handles GET /indicator. An unknown ID yields a null indicator.
func (h *Handler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("indicator_id"), 10, 64)
	if err != nil {
		h.WriteError(w, errors.Validation("indicator_id must be an integer"))
		return
	}
	h.WriteSuccess(w, dto.IndicatorResponse{Indicator: h.fixture.Load().indicator(id)})
}

// Dimensions handles GET /indicators/{id}/dimensions
func (h *Handler) Dimensions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, errors.Validation("indicator id must be an integer"))
		return
	}
	fixture := h.fixture.Load()
	if fixture.indicator(id) == nil {
		h.WriteError(w, errors.NewAppError(errors.ErrCodeNotFound, "indicator not found", nil))
		return
	}
	filters := fixture.dimensionValues(id, r.URL.Query()["dimensions"])
	h.WriteSuccess(w, dto.DimensionsResponse{Filters: filters})
}

// ListDatasets handles GET /datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	sourceID := r.URL.Query().Get("source_id")

	out := []dto.DatasetDTO{}
	for _, ds := range h.fixture.Load().Datasets {
		if name != "" && ds.DatasetName != name {
			continue
		}
		if sourceID != "" && ds.SourceID != sourceID {
			continue
		}
		out = append(out, ds)
	}
	h.WriteSuccess(w, dto.DatasetsResponse{ComputedDatasets: out})
}

// RawDatasets handles GET /raw-datasets
func (h *Handler) RawDatasets(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query()["dataset_id"])
	if err != nil {
		h.WriteError(w, err)
		return
	}

	out := []dto.RawDatasetDTO{}
	for _, raw := range h.fixture.Load().RawDatasets {
		if len(ids) > 0 && !slices.ContainsFunc(raw.DatasetIDs, func(id int64) bool { return slices.Contains(ids, id) }) {
			continue
		}
		out = append(out, raw)
	}
	h.WriteSuccess(w, dto.RawDatasetsResponse{RawDatasets: out})
}

// QueryMetrics handles GET /query-metrics. Records are filtered by time
// range and filter tree; dimensions are projected onto group_by.
func (h *Handler) QueryMetrics(w http.ResponseWriter, r *http.Request) {
	params, err := parseMetricsParams(r)
	if err != nil {
		h.WriteError(w, err)
		return
	}
	if details := middleware.ValidateStruct(params); details != nil {
		h.WriteValidationError(w, details)
		return
	}

	var filter domain.Predicate
	if params.Filter != "" {
		filter, err = domain.ParseFilter([]byte(params.Filter))
		if err != nil {
			h.WriteError(w, err)
			return
		}
	}
	fixture := h.fixture.Load()
	if fixture.indicator(params.IndicatorID) == nil {
		h.WriteError(w, errors.NewAppError(errors.ErrCodeNotFound, "indicator not found", nil))
		return
	}

	records := []domain.MetricRecord{}
	for _, rec := range fixture.Records[params.IndicatorID] {
		if rec.EvaluationTime < params.FromTS || rec.EvaluationTime > params.ToTS {
			continue
		}
		if !matches(filter, rec.Dimensions) {
			continue
		}
		records = append(records, domain.MetricRecord{
			EvaluationTime: rec.EvaluationTime,
			Value:          rec.Value,
			Dimensions:     project(rec.Dimensions, params.GroupBy),
		})
	}
	h.Logger().Debugf("indicator %d: %d record(s)", params.IndicatorID, len(records))
	h.WriteSuccess(w, dto.MetricsResponse{Records: records})
}

func parseMetricsParams(r *http.Request) (*dto.QueryMetricsParams, error) {
	query := r.URL.Query()
	params := &dto.QueryMetricsParams{
		GroupBy:   query["group_by"],
		Aggregate: query.Get("aggregate"),
		Filter:    query.Get("filter"),
	}
	ints := []struct {
		name     string
		target   *int64
		required bool
	}{
		{"indicator_id", &params.IndicatorID, false},
		{"from_ts", &params.FromTS, true},
		{"to_ts", &params.ToTS, true},
	}
	for _, p := range ints {
		raw := query.Get(p.name)
		if raw == "" {
			// 0 is a valid epoch bound, so absence is checked here
			if p.required {
				return nil, errors.Validation("%s is required", p.name)
			}
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Validation("%s must be an integer", p.name)
		}
		*p.target = v
	}
	return params, nil
}

func project(dims map[string]any, groupBy []string) map[string]any {
	if len(groupBy) == 0 {
		return nil
	}
	out := make(map[string]any, len(groupBy))
	for _, key := range groupBy {
		if v, ok := dims[key]; ok {
			out[key] = v
		}
	}
	return out
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errors.Validation("dataset_id must be an integer, got %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func overlaps(want, have []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
