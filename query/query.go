// Package query defines the request grammar of the entity clients: the
// filter expression tree, ordering, pagination, field selection and relation
// inclusion, and the aggregation request shapes. Requests are plain values
// validated against the schema model before any statement is built.
package query

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Op is a field comparison operator.
type Op uint8

const (
	OpEQ Op = iota + 1
	OpNEQ
	OpIn
	OpNotIn
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpContains
	OpStartsWith
	OpEndsWith
	OpIsNull
	OpNotNull
)

var opNames = map[Op]string{
	OpEQ:         "equals",
	OpNEQ:        "not",
	OpIn:         "in",
	OpNotIn:      "notIn",
	OpLT:         "lt",
	OpLTE:        "lte",
	OpGT:         "gt",
	OpGTE:        "gte",
	OpContains:   "contains",
	OpStartsWith: "startsWith",
	OpEndsWith:   "endsWith",
	OpIsNull:     "isNull",
	OpNotNull:    "isNotNull",
}

func (o Op) String() string { return opNames[o] }

// Expr is a node of the filter tree. The concrete variants are AndExpr,
// OrExpr, NotExpr and Cond.
type Expr interface {
	isExpr()
}

// AndExpr matches rows satisfying every child predicate.
type AndExpr struct{ Preds []Expr }

// OrExpr matches rows satisfying at least one child predicate.
type OrExpr struct{ Preds []Expr }

// NotExpr negates its child predicate.
type NotExpr struct{ Pred Expr }

// Cond is a single field comparison.
type Cond struct {
	Field  string
	Op     Op
	Value  any
	Values []any // OpIn / OpNotIn
	// Fold requests case-insensitive matching for string operators.
	Fold bool
}

func (AndExpr) isExpr() {}
func (OrExpr) isExpr()  {}
func (NotExpr) isExpr() {}
func (Cond) isExpr()    {}

// And combines predicates conjunctively.
func And(preds ...Expr) Expr {
	if len(preds) == 1 {
		return preds[0]
	}
	return AndExpr{Preds: preds}
}

// Or combines predicates disjunctively.
func Or(preds ...Expr) Expr {
	if len(preds) == 1 {
		return preds[0]
	}
	return OrExpr{Preds: preds}
}

// Not negates a predicate.
func Not(pred Expr) Expr { return NotExpr{Pred: pred} }

// EQ matches rows whose field equals v.
func EQ(field string, v any) Expr { return Cond{Field: field, Op: OpEQ, Value: v} }

// NEQ matches rows whose field does not equal v.
func NEQ(field string, v any) Expr { return Cond{Field: field, Op: OpNEQ, Value: v} }

// In matches rows whose field is one of vs.
func In(field string, vs ...any) Expr { return Cond{Field: field, Op: OpIn, Values: vs} }

// NotIn matches rows whose field is none of vs.
func NotIn(field string, vs ...any) Expr { return Cond{Field: field, Op: OpNotIn, Values: vs} }

// LT matches rows whose field is less than v.
func LT(field string, v any) Expr { return Cond{Field: field, Op: OpLT, Value: v} }

// LTE matches rows whose field is at most v.
func LTE(field string, v any) Expr { return Cond{Field: field, Op: OpLTE, Value: v} }

// GT matches rows whose field is greater than v.
func GT(field string, v any) Expr { return Cond{Field: field, Op: OpGT, Value: v} }

// GTE matches rows whose field is at least v.
func GTE(field string, v any) Expr { return Cond{Field: field, Op: OpGTE, Value: v} }

// Contains matches rows whose string field contains the substring.
func Contains(field, substr string) Expr {
	return Cond{Field: field, Op: OpContains, Value: substr}
}

// ContainsFold is the case-insensitive version of Contains.
func ContainsFold(field, substr string) Expr {
	return Cond{Field: field, Op: OpContains, Value: substr, Fold: true}
}

// StartsWith matches rows whose string field starts with the prefix.
func StartsWith(field, prefix string) Expr {
	return Cond{Field: field, Op: OpStartsWith, Value: prefix}
}

// StartsWithFold is the case-insensitive version of StartsWith.
func StartsWithFold(field, prefix string) Expr {
	return Cond{Field: field, Op: OpStartsWith, Value: prefix, Fold: true}
}

// EndsWith matches rows whose string field ends with the suffix.
func EndsWith(field, suffix string) Expr {
	return Cond{Field: field, Op: OpEndsWith, Value: suffix}
}

// EndsWithFold is the case-insensitive version of EndsWith.
func EndsWithFold(field, suffix string) Expr {
	return Cond{Field: field, Op: OpEndsWith, Value: suffix, Fold: true}
}

// EqualFold matches rows whose string field equals v case-insensitively.
func EqualFold(field, v string) Expr {
	return Cond{Field: field, Op: OpEQ, Value: v, Fold: true}
}

// IsNull matches rows whose field is NULL.
func IsNull(field string) Expr { return Cond{Field: field, Op: OpIsNull} }

// NotNull matches rows whose field is not NULL.
func NotNull(field string) Expr { return Cond{Field: field, Op: OpNotNull} }

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Nulls controls where NULL values sort.
type Nulls string

const (
	NullsDefault Nulls = ""
	NullsFirst   Nulls = "first"
	NullsLast    Nulls = "last"
)

// Order is one ORDER BY term.
type Order struct {
	Field     string
	Direction Direction
	Nulls     Nulls
}

// OrderAsc is shorthand for an ascending order term.
func OrderAsc(field string) Order { return Order{Field: field, Direction: Asc} }

// OrderDesc is shorthand for a descending order term.
func OrderDesc(field string) Order { return Order{Field: field, Direction: Desc} }

// Cursor anchors pagination on a unique field value. The boundary row is
// included in the result; combine with Skip to exclude it. The sign of
// Options.Take selects the direction relative to the cursor.
type Cursor struct {
	Field string `msgpack:"f"`
	Value any    `msgpack:"v"`
}

// Token serializes the cursor into an opaque URL-safe string.
func (c Cursor) Token() (string, error) {
	raw, err := msgpack.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("query: encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeToken parses a cursor token produced by Token.
func DecodeToken(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("query: decode cursor: %w", err)
	}
	var c Cursor
	if err := msgpack.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("query: decode cursor: %w", err)
	}
	return c, nil
}

// Options is the shared request shape of the read operations.
type Options struct {
	// Where filters the result set.
	Where Expr
	// OrderBy sorts the result set.
	OrderBy []Order
	// Take bounds the number of rows. A negative value is only allowed
	// together with Cursor and pages backwards from it.
	Take *int
	// Skip drops the first rows of the result set.
	Skip int
	// Cursor anchors the page on a unique field value.
	Cursor *Cursor
	// Select restricts the returned fields. Mutually exclusive with
	// Include and Omit.
	Select []string
	// Omit drops fields from the returned rows.
	Omit []string
	// Include eagerly loads relations; the nested options reuse the same
	// grammar for to-many relations.
	Include map[string]*Options
	// Distinct returns rows de-duplicated by the given fields.
	Distinct []string
}

// Take returns a pointer to n, for literal Options.
func Take(n int) *int { return &n }

// Aggregate is the request shape of the aggregation operation.
type Aggregate struct {
	Where Expr
	Count bool
	Min   []string
	Max   []string
	Avg   []string
	Sum   []string
}

// AggregateResult holds the computed aggregations keyed by field name.
type AggregateResult struct {
	Count int
	Min   map[string]any
	Max   map[string]any
	Avg   map[string]float64
	Sum   map[string]float64
}

// GroupBy is the request shape of the group-by operation.
type GroupBy struct {
	By      []string
	Where   Expr
	Having  Expr
	OrderBy []Order
	Take    *int
	Skip    int
	Count   bool
	Min     []string
	Max     []string
	Avg     []string
	Sum     []string
}

// Group is one group-by result row.
type Group struct {
	// Keys holds the grouping field values keyed by field name.
	Keys map[string]any
	AggregateResult
}
