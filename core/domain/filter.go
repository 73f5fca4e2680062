package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Operator is the comparison a FilterClause applies to a field
type Operator string

const (
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
	OpEq    Operator = "eq"
	OpNe    Operator = "ne"
	OpGt    Operator = "gt"
	OpLt    Operator = "lt"
	OpGte   Operator = "gte"
	OpLte   Operator = "lte"
)

// Operators returns every recognized clause operator
func Operators() []Operator {
	return []Operator{OpIn, OpNotIn, OpEq, OpNe, OpGt, OpLt, OpGte, OpLte}
}

// IsValid reports whether op is a recognized operator
func (op Operator) IsValid() bool {
	switch op {
	case OpIn, OpNotIn, OpEq, OpNe, OpGt, OpLt, OpGte, OpLte:
		return true
	}
	return false
}

// symbol is the SQL-like rendering used by String
func (op Operator) symbol() string {
	switch op {
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	}
	return string(op)
}

// ParseOperator accepts operator names ("not_in"), the "neq" alias and the
// symbolic forms ("!=", ">=").
func ParseOperator(s string) (Operator, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "neq", "!=", "<>":
		return OpNe, nil
	case "=", "==":
		return OpEq, nil
	case ">":
		return OpGt, nil
	case "<":
		return OpLt, nil
	case ">=":
		return OpGte, nil
	case "<=":
		return OpLte, nil
	case "not in", "notin", "nin":
		return OpNotIn, nil
	}
	op := Operator(normalized)
	if !op.IsValid() {
		return "", errors.Validation("unknown filter operator %q", s)
	}
	return op, nil
}

// BooleanOperator combines the children of a Filter
type BooleanOperator string

const (
	And BooleanOperator = "and"
	Or  BooleanOperator = "or"
)

// IsValid reports whether op is "and" or "or"
func (op BooleanOperator) IsValid() bool {
	return op == And || op == Or
}

// ParseBooleanOperator parses "and"/"or" case-insensitively
func ParseBooleanOperator(s string) (BooleanOperator, error) {
	op := BooleanOperator(strings.ToLower(strings.TrimSpace(s)))
	if !op.IsValid() {
		return "", errors.Validation("unknown filter operator %q, expected and/or", s)
	}
	return op, nil
}

// Predicate is a node of a filter tree: either a *FilterClause leaf or a
// nested *Filter group.
type Predicate interface {
	json.Marshaler
	fmt.Stringer
	Validate() error
	predicate()
}

// FilterClause is a single predicate on one field
type FilterClause struct {
	field    string
	operator Operator
	values   []any
}

// NewFilterClause builds a validated clause. Values are scalars (string,
// bool, integer or float kinds); duplicates collapse keeping first occurrence.
func NewFilterClause(field string, operator Operator, values ...any) (*FilterClause, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, errors.Validation("filter clause field is required")
	}
	if !operator.IsValid() {
		return nil, errors.Validation("unknown filter operator %q for field %q", operator, field)
	}
	if len(values) == 0 {
		return nil, errors.Validation("filter clause on %q requires at least one value", field)
	}

	seen := make(map[string]struct{}, len(values))
	normalized := make([]any, 0, len(values))
	for _, v := range values {
		scalar, err := normalizeScalar(v)
		if err != nil {
			return nil, errors.Validation("filter clause on %q: %v", field, err)
		}
		key := fmt.Sprintf("%T|%v", scalar, scalar)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, scalar)
	}

	return &FilterClause{field: field, operator: operator, values: normalized}, nil
}

// MustFilterClause is NewFilterClause for statically known clauses; it panics on error.
func MustFilterClause(field string, operator Operator, values ...any) *FilterClause {
	c, err := NewFilterClause(field, operator, values...)
	if err != nil {
		panic(err)
	}
	return c
}

// Field returns the filtered field name
func (c *FilterClause) Field() string { return c.field }

// Operator returns the clause operator
func (c *FilterClause) Operator() Operator { return c.operator }

// Values returns a copy of the clause values
func (c *FilterClause) Values() []any {
	out := make([]any, len(c.values))
	copy(out, c.values)
	return out
}

// Validate re-checks the clause invariants
func (c *FilterClause) Validate() error {
	if c == nil || c.field == "" {
		return errors.Validation("filter clause field is required")
	}
	if !c.operator.IsValid() {
		return errors.Validation("unknown filter operator %q for field %q", c.operator, c.field)
	}
	if len(c.values) == 0 {
		return errors.Validation("filter clause on %q requires at least one value", c.field)
	}
	return nil
}

func (c *FilterClause) predicate() {}

type clauseJSON struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Values   []any    `json:"values"`
}

// MarshalJSON renders {"field", "operator", "values"}
func (c *FilterClause) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(clauseJSON{Field: c.field, Operator: c.operator, Values: c.values})
}

// String renders the clause SQL-style, e.g. country IN ("US","UK")
func (c *FilterClause) String() string {
	rendered := make([]string, len(c.values))
	for i, v := range c.values {
		rendered[i] = renderScalar(v)
	}
	switch {
	case c.operator == OpIn || c.operator == OpNotIn || len(rendered) > 1:
		return fmt.Sprintf("%s %s (%s)", c.field, c.operator.symbol(), strings.Join(rendered, ","))
	default:
		return fmt.Sprintf("%s %s %s", c.field, c.operator.symbol(), rendered[0])
	}
}

// Filter is a boolean combination of clauses and nested filters
type Filter struct {
	operator BooleanOperator
	clauses  []Predicate
}

// NewFilter builds a validated filter group. Clause order is preserved.
func NewFilter(operator BooleanOperator, clauses ...Predicate) (*Filter, error) {
	if !operator.IsValid() {
		return nil, errors.Validation("unknown filter operator %q, expected and/or", operator)
	}
	if len(clauses) == 0 {
		return nil, errors.Validation("%s filter requires at least one clause", operator)
	}
	for i, clause := range clauses {
		if clause == nil {
			return nil, errors.Validation("%s filter clause %d is nil", operator, i)
		}
		if err := clause.Validate(); err != nil {
			return nil, err
		}
	}
	owned := make([]Predicate, len(clauses))
	copy(owned, clauses)
	return &Filter{operator: operator, clauses: owned}, nil
}

// AllOf is NewFilter(And, ...)
func AllOf(clauses ...Predicate) (*Filter, error) {
	return NewFilter(And, clauses...)
}

// AnyOf is NewFilter(Or, ...)
func AnyOf(clauses ...Predicate) (*Filter, error) {
	return NewFilter(Or, clauses...)
}

// Operator returns the group's boolean operator
func (f *Filter) Operator() BooleanOperator { return f.operator }

// Clauses returns a copy of the group's children
func (f *Filter) Clauses() []Predicate {
	out := make([]Predicate, len(f.clauses))
	copy(out, f.clauses)
	return out
}

// Validate re-checks the invariants of the whole tree
func (f *Filter) Validate() error {
	if f == nil {
		return errors.Validation("filter is nil")
	}
	if !f.operator.IsValid() {
		return errors.Validation("unknown filter operator %q, expected and/or", f.operator)
	}
	if len(f.clauses) == 0 {
		return errors.Validation("%s filter requires at least one clause", f.operator)
	}
	for _, clause := range f.clauses {
		if clause == nil {
			return errors.Validation("%s filter contains a nil clause", f.operator)
		}
		if err := clause.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filter) predicate() {}

type filterJSON struct {
	Operator BooleanOperator `json:"operator"`
	Filters  []Predicate     `json:"filters"`
}

// MarshalJSON renders {"operator", "filters": [...]} with nested groups inline
func (f *Filter) MarshalJSON() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(filterJSON{Operator: f.operator, Filters: f.clauses})
}

// String renders the tree, e.g. (a = 1 AND (b = 2 OR c = 3))
func (f *Filter) String() string {
	if len(f.clauses) == 1 {
		return f.clauses[0].String()
	}
	parts := make([]string, len(f.clauses))
	for i, clause := range f.clauses {
		parts[i] = clause.String()
	}
	return "(" + strings.Join(parts, " "+strings.ToUpper(string(f.operator))+" ") + ")"
}

// ParseFilter decodes the JSON produced by MarshalJSON back into a validated
// predicate tree. A node with a "filters" key is a group, anything else a clause.
func ParseFilter(data []byte) (Predicate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.WrapError(errors.ErrCodeValidationError, "malformed filter", err)
	}
	return parseNode(raw)
}

func parseNode(raw map[string]json.RawMessage) (Predicate, error) {
	if children, ok := raw["filters"]; ok {
		var op string
		if err := json.Unmarshal(raw["operator"], &op); err != nil {
			return nil, errors.WrapError(errors.ErrCodeValidationError, "malformed filter operator", err)
		}
		boolOp, err := ParseBooleanOperator(op)
		if err != nil {
			return nil, err
		}
		var nodes []map[string]json.RawMessage
		if err := json.Unmarshal(children, &nodes); err != nil {
			return nil, errors.WrapError(errors.ErrCodeValidationError, "malformed filter group", err)
		}
		clauses := make([]Predicate, 0, len(nodes))
		for _, node := range nodes {
			clause, err := parseNode(node)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		return NewFilter(boolOp, clauses...)
	}

	var c struct {
		Field    string            `json:"field"`
		Operator string            `json:"operator"`
		Values   []json.RawMessage `json:"values"`
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeValidationError, "malformed filter clause", err)
	}
	if err := json.Unmarshal(encoded, &c); err != nil {
		return nil, errors.WrapError(errors.ErrCodeValidationError, "malformed filter clause", err)
	}
	op, err := ParseOperator(c.Operator)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(c.Values))
	for _, rawValue := range c.Values {
		dec := json.NewDecoder(bytes.NewReader(rawValue))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, errors.WrapError(errors.ErrCodeValidationError, "malformed filter value", err)
		}
		values = append(values, v)
	}
	return NewFilterClause(c.Field, op, values...)
}

// normalizeScalar folds every supported scalar into string, bool, int64 or float64.
func normalizeScalar(v any) (any, error) {
	switch val := v.(type) {
	case string, bool, int64:
		return val, nil
	case float64:
		return floatScalar(val)
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint:
		return uintScalar(uint64(val)), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintScalar(val), nil
	case float32:
		return floatScalar(float64(val))
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return floatScalar(f)
	case nil:
		return nil, fmt.Errorf("null is not a valid filter value")
	default:
		return nil, fmt.Errorf("unsupported filter value type %T", v)
	}
}

// floatScalar rejects values JSON cannot carry and folds whole numbers in
// int64 range to int64, matching how the wire form decodes them.
func floatScalar(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v is not a valid filter value", f)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), nil
	}
	return f, nil
}

func uintScalar(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return float64(u)
}

func renderScalar(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
