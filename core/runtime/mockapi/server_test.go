package mockapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	"github.com/lariat-data/lariat-go/core/runtime/mockapi"
)

func get(t *testing.T, srv *mockapi.Server, path string, params url.Values, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authed {
		req.Header.Set("X-Lariat-Api-Key", "key")
		req.Header.Set("X-Lariat-Application-Key", "app")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRequiresCredentials(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	rec := get(t, srv, "/public-api/indicators", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing credentials")

	rec = get(t, srv, "/heartbeat", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListIndicators(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	tests := []struct {
		name   string
		params url.Values
		want   []int64
	}{
		{"all", nil, []int64{1, 2, 3}},
		{"by dataset", url.Values{"dataset_id": {"20"}}, []int64{3}},
		{"by tag", url.Values{"tags": {"revenue"}}, []int64{2}},
		{"by field", url.Values{"fields": {"channel"}}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, "/public-api/indicators", tt.params, true)
			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode[dto.IndicatorsResponse](t, rec)
			ids := make([]int64, len(resp.Indicators))
			for i, ind := range resp.Indicators {
				ids[i] = ind.IndicatorID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestGetIndicator(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	rec := get(t, srv, "/public-api/indicator", url.Values{"indicator_id": {"2"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.IndicatorResponse](t, rec)
	require.NotNil(t, resp.Indicator)
	assert.Equal(t, "paid_order_value", resp.Indicator.Name)

	rec = get(t, srv, "/public-api/indicator", url.Values{"indicator_id": {"99"}}, true)
	assert.JSONEq(t, `{"indicator":null}`, rec.Body.String())

	rec = get(t, srv, "/public-api/indicator", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDimensions(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	rec := get(t, srv, "/public-api/indicators/2/dimensions", url.Values{"dimensions": {"channel"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.DimensionsResponse](t, rec)
	require.Len(t, resp.Filters, 1)
	assert.Equal(t, "channel", resp.Filters[0].Key)
	assert.Equal(t, []any{"web", "app"}, resp.Filters[0].Values)

	rec = get(t, srv, "/public-api/indicators/42/dimensions", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatasetsAndRawDatasets(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	rec := get(t, srv, "/public-api/datasets", url.Values{"name": {"signups"}, "source_id": {"warehouse"}}, true)
	datasets := decode[dto.DatasetsResponse](t, rec)
	require.Len(t, datasets.ComputedDatasets, 1)
	assert.Equal(t, int64(20), datasets.ComputedDatasets[0].ID)

	rec = get(t, srv, "/public-api/datasets", url.Values{"name": {"nope"}}, true)
	assert.JSONEq(t, `{"computed_datasets":[]}`, rec.Body.String())

	rec = get(t, srv, "/public-api/raw-datasets", url.Values{"dataset_id": {"10"}}, true)
	raw := decode[dto.RawDatasetsResponse](t, rec)
	require.Len(t, raw.RawDatasets, 1)
	assert.Equal(t, "raw.orders", raw.RawDatasets[0].Name)
}

func TestQueryMetrics(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	base := url.Values{
		"indicator_id": {"1"},
		"from_ts":      {"1700000000000"},
		"to_ts":        {"1700003600000"},
	}

	t.Run("time range and group by", func(t *testing.T) {
		params := cloneValues(base)
		params.Set("to_ts", "1700000000000")
		params.Add("group_by", "country")
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[dto.MetricsResponse](t, rec)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, "US", resp.Records[0].Dimensions["country"])
	})

	t.Run("filter tree", func(t *testing.T) {
		params := cloneValues(base)
		params.Set("filter", `{"operator":"or","filters":[
			{"field":"country","operator":"in","values":["DE"]},
			{"field":"country","operator":"eq","values":["UK"]}
		]}`)
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[dto.MetricsResponse](t, rec)
		assert.Len(t, resp.Records, 3)
		for _, r := range resp.Records {
			assert.Nil(t, r.Dimensions)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		params := cloneValues(base)
		params.Set("from_ts", "1700003600001")
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("epoch zero lower bound", func(t *testing.T) {
		params := cloneValues(base)
		params.Set("from_ts", "0")
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[dto.MetricsResponse](t, rec)
		assert.Len(t, resp.Records, 5)
	})

	t.Run("missing time bound", func(t *testing.T) {
		params := cloneValues(base)
		params.Del("from_ts")
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "from_ts is required")
	})

	t.Run("bad filter", func(t *testing.T) {
		params := cloneValues(base)
		params.Set("filter", `{"field":"country","operator":"like","values":["U%"]}`)
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown indicator", func(t *testing.T) {
		params := cloneValues(base)
		params.Set("indicator_id", "77")
		rec := get(t, srv, "/public-api/query-metrics", params, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func TestOpenAPIDocument(t *testing.T) {
	srv := mockapi.NewServer(nil, "0")

	rec := get(t, srv, "/openapi.json", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "3.0.3", doc["openapi"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, path := range []string{"/indicators", "/indicator", "/indicators/{id}/dimensions", "/datasets", "/raw-datasets", "/query-metrics"} {
		assert.Contains(t, paths, path)
	}
	servers := doc["servers"].([]any)
	assert.Equal(t, mockapi.BasePath, servers[0].(map[string]any)["url"])
}

func TestGenerateOpenAPIDocument(t *testing.T) {
	doc, err := mockapi.GenerateOpenAPIDocument("http://localhost:8002/public-api")
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"X-Lariat-Application-Key"`)
	assert.Contains(t, string(doc), `"#/components/schemas/MetricRecord"`)
}
