package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

func TestNewFilterClause(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		operator domain.Operator
		values   []any
		wantErr  bool
	}{
		{"in with strings", "country", domain.OpIn, []any{"US", "UK"}, false},
		{"gt with number", "value", domain.OpGt, []any{10}, false},
		{"eq with bool", "active", domain.OpEq, []any{true}, false},
		{"empty field", "", domain.OpIn, []any{"US"}, true},
		{"blank field", "   ", domain.OpIn, []any{"US"}, true},
		{"unknown operator", "country", domain.Operator("like"), []any{"US"}, true},
		{"no values", "country", domain.OpIn, nil, true},
		{"non-scalar value", "country", domain.OpIn, []any{[]string{"US"}}, true},
		{"null value", "country", domain.OpEq, []any{nil}, true},
		{"nan value", "value", domain.OpGt, []any{math.NaN()}, true},
		{"positive infinity", "value", domain.OpLt, []any{math.Inf(1)}, true},
		{"negative infinity", "value", domain.OpIn, []any{1, math.Inf(-1)}, true},
		{"float32 infinity", "value", domain.OpGte, []any{float32(math.Inf(1))}, true},
		{"non-finite json number", "value", domain.OpEq, []any{json.Number("1e400")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := domain.NewFilterClause(tt.field, tt.operator, tt.values...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				assert.Nil(t, clause)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, clause.Field())
		})
	}
}

func TestFilterClauseDeduplicatesValues(t *testing.T) {
	clause, err := domain.NewFilterClause("country", domain.OpIn, "US", "UK", "US", 1, int64(1))
	require.NoError(t, err)
	assert.Equal(t, []any{"US", "UK", int64(1)}, clause.Values())
}

func TestFilterClauseFoldsWholeFloats(t *testing.T) {
	clause, err := domain.NewFilterClause("value", domain.OpIn, 2.0, int64(2), float32(4), 2.5, 1e20)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(4), 2.5, 1e20}, clause.Values())
}

func TestFilterClauseRoundTrip(t *testing.T) {
	for _, op := range domain.Operators() {
		t.Run(string(op), func(t *testing.T) {
			clause := domain.MustFilterClause("country", op, "US", "UK", 3, 2.5, 2.0, 7.0, 1e20, false)

			data, err := json.Marshal(clause)
			require.NoError(t, err)

			parsed, err := domain.ParseFilter(data)
			require.NoError(t, err)

			reparsed, ok := parsed.(*domain.FilterClause)
			require.True(t, ok, "expected a clause, got %T", parsed)
			assert.Equal(t, clause.Field(), reparsed.Field())
			assert.Equal(t, clause.Operator(), reparsed.Operator())
			assert.Equal(t, clause.Values(), reparsed.Values())
			assert.Equal(t, clause.String(), reparsed.String())

			again, err := json.Marshal(reparsed)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestFilterClauseJSONShape(t *testing.T) {
	clause := domain.MustFilterClause("country", domain.OpIn, "US", "UK")
	data, err := json.Marshal(clause)
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"country","operator":"in","values":["US","UK"]}`, string(data))
}

func TestFilterClauseString(t *testing.T) {
	tests := []struct {
		clause *domain.FilterClause
		want   string
	}{
		{domain.MustFilterClause("country", domain.OpIn, "US", "UK"), `country IN ("US","UK")`},
		{domain.MustFilterClause("country", domain.OpNotIn, "FR"), `country NOT IN ("FR")`},
		{domain.MustFilterClause("value", domain.OpGte, 10), `value >= 10`},
		{domain.MustFilterClause("ratio", domain.OpLt, 0.25), `ratio < 0.25`},
		{domain.MustFilterClause("env", domain.OpNe, "prod"), `env != "prod"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.clause.String())
	}
}

func TestParseOperator(t *testing.T) {
	tests := map[string]domain.Operator{
		"in":     domain.OpIn,
		"NOT_IN": domain.OpNotIn,
		"neq":    domain.OpNe,
		"!=":     domain.OpNe,
		">=":     domain.OpGte,
		"=":      domain.OpEq,
		" lte ":  domain.OpLte,
	}
	for in, want := range tests {
		got, err := domain.ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseOperator("like")
	assert.True(t, errors.IsValidationError(err))
}

func TestNewFilterRequiresClauses(t *testing.T) {
	for _, op := range []domain.BooleanOperator{domain.And, domain.Or} {
		f, err := domain.NewFilter(op)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Nil(t, f)
	}
}

func TestNewFilterRejectsBadOperator(t *testing.T) {
	_, err := domain.NewFilter(domain.BooleanOperator("xor"), domain.MustFilterClause("a", domain.OpEq, 1))
	assert.True(t, errors.IsValidationError(err))
}

func TestNewFilterRejectsNilClause(t *testing.T) {
	_, err := domain.NewFilter(domain.And, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestFilterNesting(t *testing.T) {
	inner, err := domain.NewFilter(domain.Or,
		domain.MustFilterClause("b", domain.OpEq, "2"),
		domain.MustFilterClause("c", domain.OpEq, "3"),
	)
	require.NoError(t, err)
	outer, err := domain.NewFilter(domain.And,
		domain.MustFilterClause("a", domain.OpEq, "1"),
		inner,
	)
	require.NoError(t, err)

	data, err := json.Marshal(outer)
	require.NoError(t, err)

	var decoded struct {
		Operator string `json:"operator"`
		Filters  []struct {
			Field    string `json:"field"`
			Operator string `json:"operator"`
			Filters  []struct {
				Field   string `json:"field"`
				Filters []any  `json:"filters"`
			} `json:"filters"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "and", decoded.Operator)
	require.Len(t, decoded.Filters, 2)
	assert.Equal(t, "a", decoded.Filters[0].Field)
	assert.Empty(t, decoded.Filters[0].Filters)

	group := decoded.Filters[1]
	assert.Equal(t, "or", group.Operator)
	assert.Empty(t, group.Field)
	require.Len(t, group.Filters, 2)
	assert.Equal(t, "b", group.Filters[0].Field)
	assert.Equal(t, "c", group.Filters[1].Field)
	assert.Nil(t, group.Filters[0].Filters)
	assert.Nil(t, group.Filters[1].Filters)

	assert.Equal(t, `(a = "1" AND (b = "2" OR c = "3"))`, outer.String())
}

func TestFilterSingleClauseString(t *testing.T) {
	clause := domain.MustFilterClause("country", domain.OpIn, "US", "UK")
	f, err := domain.NewFilter(domain.And, clause)
	require.NoError(t, err)

	assert.Equal(t, `country IN ("US","UK")`, f.String())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"operator":"and","filters":[{"field":"country","operator":"in","values":["US","UK"]}]}`, string(data))
}

func TestParseFilterTree(t *testing.T) {
	inner, err := domain.AnyOf(
		domain.MustFilterClause("b", domain.OpGt, 2),
		domain.MustFilterClause("c", domain.OpIn, "x", "y"),
	)
	require.NoError(t, err)
	outer, err := domain.AllOf(domain.MustFilterClause("a", domain.OpNe, true), inner)
	require.NoError(t, err)

	data, err := json.Marshal(outer)
	require.NoError(t, err)

	parsed, err := domain.ParseFilter(data)
	require.NoError(t, err)
	assert.Equal(t, outer.String(), parsed.String())

	group, ok := parsed.(*domain.Filter)
	require.True(t, ok)
	assert.Equal(t, domain.And, group.Operator())
	require.Len(t, group.Clauses(), 2)
	_, nested := group.Clauses()[1].(*domain.Filter)
	assert.True(t, nested)
}

func TestParseFilterErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"field":`,
		"empty group":    `{"operator":"and","filters":[]}`,
		"bad bool op":    `{"operator":"xor","filters":[{"field":"a","operator":"eq","values":[1]}]}`,
		"bad clause op":  `{"field":"a","operator":"like","values":[1]}`,
		"missing values": `{"field":"a","operator":"eq"}`,
		"missing field":  `{"operator":"eq","values":[1]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := domain.ParseFilter([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}
