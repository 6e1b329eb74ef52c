package query

import (
	"fmt"

	sqld "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/schema"
)

// Predicate compiles a validated filter tree into a parameterized SQL
// predicate with table-qualified columns.
func Predicate(e *schema.Entity, x Expr) (*sqld.Predicate, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case AndExpr:
		preds, err := predicates(e, v.Preds)
		if err != nil {
			return nil, err
		}
		return sqld.And(preds...), nil
	case OrExpr:
		preds, err := predicates(e, v.Preds)
		if err != nil {
			return nil, err
		}
		return sqld.Or(preds...), nil
	case NotExpr:
		p, err := Predicate(e, v.Pred)
		if err != nil {
			return nil, err
		}
		return sqld.Not(p), nil
	case Cond:
		return condPredicate(e, v)
	}
	return nil, fmt.Errorf("query: unknown expression type %T", x)
}

func predicates(e *schema.Entity, xs []Expr) ([]*sqld.Predicate, error) {
	preds := make([]*sqld.Predicate, 0, len(xs))
	for _, x := range xs {
		p, err := Predicate(e, x)
		if err != nil {
			return nil, err
		}
		if p != nil {
			preds = append(preds, p)
		}
	}
	return preds, nil
}

func condPredicate(e *schema.Entity, c Cond) (*sqld.Predicate, error) {
	f, ok := e.Field(c.Field)
	if !ok {
		return nil, invalid(e.Name, c.Field, "unknown field in filter", ErrUnknownField)
	}
	col := e.Table + "." + f.Column
	switch c.Op {
	case OpEQ:
		if c.Fold {
			return sqld.EqualFold(col, fmt.Sprint(c.Value)), nil
		}
		return sqld.EQ(col, c.Value), nil
	case OpNEQ:
		return sqld.NEQ(col, c.Value), nil
	case OpIn:
		return sqld.In(col, c.Values...), nil
	case OpNotIn:
		return sqld.NotIn(col, c.Values...), nil
	case OpLT:
		return sqld.LT(col, c.Value), nil
	case OpLTE:
		return sqld.LTE(col, c.Value), nil
	case OpGT:
		return sqld.GT(col, c.Value), nil
	case OpGTE:
		return sqld.GTE(col, c.Value), nil
	case OpContains:
		if c.Fold {
			return sqld.ContainsFold(col, fmt.Sprint(c.Value)), nil
		}
		return sqld.Contains(col, fmt.Sprint(c.Value)), nil
	case OpStartsWith:
		if c.Fold {
			return sqld.HasPrefixFold(col, fmt.Sprint(c.Value)), nil
		}
		return sqld.HasPrefix(col, fmt.Sprint(c.Value)), nil
	case OpEndsWith:
		if c.Fold {
			return sqld.HasSuffixFold(col, fmt.Sprint(c.Value)), nil
		}
		return sqld.HasSuffix(col, fmt.Sprint(c.Value)), nil
	case OpIsNull:
		return sqld.IsNull(col), nil
	case OpNotNull:
		return sqld.NotNull(col), nil
	}
	return nil, fmt.Errorf("query: unknown operator %d", c.Op)
}

// Orders compiles the order terms into SQL order expressions.
func Orders(e *schema.Entity, orders []Order) ([]sqld.OrderExpr, error) {
	out := make([]sqld.OrderExpr, 0, len(orders))
	for _, o := range orders {
		f, ok := e.Field(o.Field)
		if !ok {
			return nil, invalid(e.Name, o.Field, "unknown field in orderBy", ErrUnknownField)
		}
		col := e.Table + "." + f.Column
		var x sqld.OrderExpr
		if o.Direction == Desc {
			x = sqld.Desc(col)
		} else {
			x = sqld.Asc(col)
		}
		switch o.Nulls {
		case NullsFirst:
			x = x.NullsFirst()
		case NullsLast:
			x = x.NullsLast()
		}
		out = append(out, x)
	}
	return out, nil
}

// CursorBoundary compiles a cursor into its boundary predicate and the order
// term anchoring the page. The boundary row is included; backward pages are
// returned in descending cursor-field order.
func CursorBoundary(e *schema.Entity, c Cursor, backward bool) (*sqld.Predicate, sqld.OrderExpr, error) {
	f, ok := e.Field(c.Field)
	if !ok {
		return nil, sqld.OrderExpr{}, invalid(e.Name, c.Field, "unknown cursor field", ErrUnknownField)
	}
	col := e.Table + "." + f.Column
	if backward {
		return sqld.LTE(col, c.Value), sqld.Desc(col), nil
	}
	return sqld.GTE(col, c.Value), sqld.Asc(col), nil
}
