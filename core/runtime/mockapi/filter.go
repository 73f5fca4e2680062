package mockapi

import (
	"strconv"

	"github.com/lariat-data/lariat-go/core/domain"
)

// matches evaluates a filter tree against a record's dimensions. A clause on
// a missing dimension only matches for not_in and ne.
func matches(p domain.Predicate, dims map[string]any) bool {
	switch node := p.(type) {
	case nil:
		return true
	case *domain.Filter:
		clauses := node.Clauses()
		if node.Operator() == domain.Or {
			for _, c := range clauses {
				if matches(c, dims) {
					return true
				}
			}
			return false
		}
		for _, c := range clauses {
			if !matches(c, dims) {
				return false
			}
		}
		return true
	case *domain.FilterClause:
		return matchClause(node, dims)
	default:
		return false
	}
}

func matchClause(c *domain.FilterClause, dims map[string]any) bool {
	actual, present := dims[c.Field()]
	values := c.Values()

	switch c.Operator() {
	case domain.OpIn, domain.OpEq:
		return present && containsValue(values, actual)
	case domain.OpNotIn, domain.OpNe:
		return !present || !containsValue(values, actual)
	}

	if !present {
		return false
	}
	// Comparisons use every value as a bound
	for _, v := range values {
		cmp := compareValues(actual, v)
		var ok bool
		switch c.Operator() {
		case domain.OpGt:
			ok = cmp > 0
		case domain.OpLt:
			ok = cmp < 0
		case domain.OpGte:
			ok = cmp >= 0
		case domain.OpLte:
			ok = cmp <= 0
		}
		if !ok {
			return false
		}
	}
	return true
}

func containsValue(values []any, actual any) bool {
	for _, v := range values {
		if compareValues(actual, v) == 0 {
			return true
		}
	}
	return false
}

// compareValues compares numerically when both sides are numbers and as text
// otherwise
func compareValues(a, b any) int {
	as, bs := domain.FormatValue(a), domain.FormatValue(b)
	af, aErr := strconv.ParseFloat(as, 64)
	bf, bErr := strconv.ParseFloat(bs, 64)
	if aErr == nil && bErr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
