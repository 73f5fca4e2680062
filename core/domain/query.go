package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Aggregate is the server-side reduction applied across matching series
type Aggregate string

const (
	AggregateSum      Aggregate = "sum"
	AggregateAvg      Aggregate = "avg"
	AggregateMedian   Aggregate = "median"
	AggregateP75      Aggregate = "p75"
	AggregateP25      Aggregate = "p25"
	AggregateMax      Aggregate = "max"
	AggregateMin      Aggregate = "min"
	AggregateCount    Aggregate = "count"
	AggregateDistinct Aggregate = "distinct"
)

// Aggregates returns every supported aggregate
func Aggregates() []Aggregate {
	return []Aggregate{
		AggregateSum, AggregateAvg, AggregateMedian, AggregateP75, AggregateP25,
		AggregateMax, AggregateMin, AggregateCount, AggregateDistinct,
	}
}

// IsValid reports whether a is a supported aggregate
func (a Aggregate) IsValid() bool {
	for _, known := range Aggregates() {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAggregate parses an aggregate name case-insensitively
func ParseAggregate(s string) (Aggregate, error) {
	a := Aggregate(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", errors.Validation("unknown aggregate %q", s)
	}
	return a, nil
}

// MetricsQuery is anything that can be sent to the metrics endpoint
type MetricsQuery interface {
	// Params renders the request as query-string parameters
	Params() (url.Values, error)
	// GroupByFields returns the dimensions results are split by
	GroupByFields() []string
}

// QueryRequest describes a metrics query for one indicator over a time window
type QueryRequest struct {
	IndicatorID int64     `json:"indicator_id" validate:"required,gt=0"`
	From        time.Time `json:"from_ts" validate:"required"`
	To          time.Time `json:"to_ts" validate:"required,gtefield=From"`
	GroupBy     []string  `json:"group_by" validate:"dive,required"`
	Aggregate   Aggregate `json:"aggregate" validate:"omitempty,oneof=sum avg median p75 p25 max min count distinct"`
	Filter      Predicate `json:"-" validate:"-"`
}

// QueryOption configures optional QueryRequest fields
type QueryOption func(*QueryRequest)

// WithGroupBy splits results by the given dimensions
func WithGroupBy(fields ...string) QueryOption {
	return func(q *QueryRequest) {
		q.GroupBy = append(q.GroupBy, fields...)
	}
}

// WithAggregate sets the aggregate applied across series
func WithAggregate(a Aggregate) QueryOption {
	return func(q *QueryRequest) {
		q.Aggregate = a
	}
}

// WithFilter restricts the query with a clause or filter tree
func WithFilter(p Predicate) QueryOption {
	return func(q *QueryRequest) {
		q.Filter = p
	}
}

// NewQueryRequest builds and validates a query. A zero or negative indicator,
// a missing bound, or to before from are rejected.
func NewQueryRequest(indicatorID int64, from, to time.Time, opts ...QueryOption) (*QueryRequest, error) {
	q := &QueryRequest{
		IndicatorID: indicatorID,
		From:        from,
		To:          to,
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the request invariants
func (q *QueryRequest) Validate() error {
	if q == nil {
		return errors.Validation("query request is nil")
	}
	if err := validateStruct("query request", q); err != nil {
		return err
	}
	if q.Filter != nil {
		if err := q.Filter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GroupByFields returns a copy of the group-by dimensions
func (q *QueryRequest) GroupByFields() []string {
	if q == nil {
		return nil
	}
	out := make([]string, len(q.GroupBy))
	copy(out, q.GroupBy)
	return out
}

// Params renders the request payload. Timestamps are epoch milliseconds,
// group_by repeats once per field and the filter tree is JSON-encoded.
func (q *QueryRequest) Params() (url.Values, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("indicator_id", strconv.FormatInt(q.IndicatorID, 10))
	params.Set("from_ts", strconv.FormatInt(q.From.UnixMilli(), 10))
	params.Set("to_ts", strconv.FormatInt(q.To.UnixMilli(), 10))
	for _, field := range q.GroupBy {
		params.Add("group_by", field)
	}
	if q.Aggregate != "" {
		params.Set("aggregate", string(q.Aggregate))
	}
	if q.Filter != nil {
		encoded, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, errors.WrapError(errors.ErrCodeValidationError, "failed to encode filter", err)
		}
		params.Set("filter", string(encoded))
	}
	return params, nil
}

// RawQuery is a QueryRequest carrying extra arguments that are passed
// through verbatim. Extra arguments override generated ones of the same name.
type RawQuery struct {
	*QueryRequest
	extra map[string]string
	order []string
}

// NewRawQuery builds a validated RawQuery with no extra arguments
func NewRawQuery(indicatorID int64, from, to time.Time, opts ...QueryOption) (*RawQuery, error) {
	q, err := NewQueryRequest(indicatorID, from, to, opts...)
	if err != nil {
		return nil, err
	}
	return &RawQuery{QueryRequest: q, extra: map[string]string{}}, nil
}

// AddQueryArgument records an extra argument. Later values for the same key win.
func (r *RawQuery) AddQueryArgument(key, value string) *RawQuery {
	if r.extra == nil {
		r.extra = map[string]string{}
	}
	if _, exists := r.extra[key]; !exists {
		r.order = append(r.order, key)
	}
	r.extra[key] = value
	return r
}

// Arguments returns the extra arguments in insertion order
func (r *RawQuery) Arguments() [][2]string {
	out := make([][2]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, [2]string{key, r.extra[key]})
	}
	return out
}

// Params renders the base request and merges the extra arguments over it
func (r *RawQuery) Params() (url.Values, error) {
	if r == nil {
		return nil, errors.Validation("query request is nil")
	}
	params, err := r.QueryRequest.Params()
	if err != nil {
		return nil, err
	}
	for _, key := range r.order {
		params.Set(key, r.extra[key])
	}
	return params, nil
}
