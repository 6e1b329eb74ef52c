package query

import (
	"errors"
	"fmt"

	"github.com/vcostin/gallerydb/schema"
)

// Sentinel causes carried by ValidationError, matchable with errors.Is.
var (
	// ErrUnknownField is the cause when a request references a field or
	// relation the schema does not define.
	ErrUnknownField = errors.New("unknown field")
	// ErrConflictingOptions is the cause when mutually exclusive options
	// are combined (select with include or omit).
	ErrConflictingOptions = errors.New("conflicting options")
	// ErrInvalidGroupBy is the cause when a group-by request is malformed:
	// an empty by list, or an orderBy/having field outside the by list.
	ErrInvalidGroupBy = errors.New("invalid groupBy")
	// ErrInvalidCursor is the cause when cursor pagination is requested on
	// a non-unique field, or a negative take is used without a cursor.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidValue is the cause when a condition value does not fit the
	// field type, e.g. an enum value outside the allowed set.
	ErrInvalidValue = errors.New("invalid value")
)

// ValidationError reports a malformed request, detected before any statement
// is sent to the storage engine.
type ValidationError struct {
	Entity string
	Field  string
	Msg    string
	cause  error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("query: %s.%s: %s", e.Entity, e.Field, e.Msg)
	}
	return fmt.Sprintf("query: %s: %s", e.Entity, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.cause }

// NewValidationError returns a ValidationError for a malformed request part.
func NewValidationError(entity, field, msg string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Msg: msg}
}

func invalid(entity, field, msg string, cause error) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Msg: msg, cause: cause}
}

// Walk visits every condition leaf of the filter tree.
func Walk(x Expr, fn func(Cond) error) error {
	switch v := x.(type) {
	case nil:
		return nil
	case AndExpr:
		for _, p := range v.Preds {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}
	case OrExpr:
		for _, p := range v.Preds {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}
	case NotExpr:
		return Walk(v.Pred, fn)
	case Cond:
		return fn(v)
	default:
		return fmt.Errorf("query: unknown expression type %T", x)
	}
	return nil
}

// ValidateWhere checks the filter tree against the entity fields.
func ValidateWhere(e *schema.Entity, x Expr) error {
	return Walk(x, func(c Cond) error {
		f, ok := e.Field(c.Field)
		if !ok {
			return invalid(e.Name, c.Field, "unknown field in filter", ErrUnknownField)
		}
		switch c.Op {
		case OpContains, OpStartsWith, OpEndsWith:
			if f.Type != schema.TypeString {
				return invalid(e.Name, c.Field, fmt.Sprintf("%s requires a string field", c.Op), ErrInvalidValue)
			}
		case OpEQ, OpNEQ:
			if f.Type == schema.TypeEnum && c.Value != nil {
				v, ok := c.Value.(string)
				if !ok || !f.ValidEnum(v) {
					return invalid(e.Name, c.Field, fmt.Sprintf("value %v is not an allowed enum value", c.Value), ErrInvalidValue)
				}
			}
		case OpIn, OpNotIn:
			if f.Type == schema.TypeEnum {
				for _, raw := range c.Values {
					v, ok := raw.(string)
					if !ok || !f.ValidEnum(v) {
						return invalid(e.Name, c.Field, fmt.Sprintf("value %v is not an allowed enum value", raw), ErrInvalidValue)
					}
				}
			}
		}
		return nil
	})
}

// Validate checks a read request against the schema model, including the
// nested options of every included relation.
func Validate(s *schema.Schema, entity string, opts Options) error {
	e, ok := s.Entity(entity)
	if !ok {
		return invalid(entity, "", "unknown entity", ErrUnknownField)
	}
	if len(opts.Select) > 0 && len(opts.Include) > 0 {
		return invalid(entity, "", "select and include are mutually exclusive", ErrConflictingOptions)
	}
	if len(opts.Select) > 0 && len(opts.Omit) > 0 {
		return invalid(entity, "", "select and omit are mutually exclusive", ErrConflictingOptions)
	}
	if err := ValidateWhere(e, opts.Where); err != nil {
		return err
	}
	for _, set := range [][]string{opts.Select, opts.Omit, opts.Distinct} {
		for _, fn := range set {
			if _, ok := e.Field(fn); !ok {
				return invalid(entity, fn, "unknown field in selection", ErrUnknownField)
			}
		}
	}
	for _, o := range opts.OrderBy {
		if _, ok := e.Field(o.Field); !ok {
			return invalid(entity, o.Field, "unknown field in orderBy", ErrUnknownField)
		}
	}
	if opts.Skip < 0 {
		return invalid(entity, "", "skip must not be negative", ErrInvalidValue)
	}
	if opts.Take != nil && *opts.Take < 0 && opts.Cursor == nil {
		return invalid(entity, "", "negative take requires a cursor", ErrInvalidCursor)
	}
	if opts.Cursor != nil {
		if err := validateCursor(e, *opts.Cursor); err != nil {
			return err
		}
	}
	for name, sub := range opts.Include {
		r, ok := e.Relation(name)
		if !ok {
			return invalid(entity, name, "unknown relation in include", ErrUnknownField)
		}
		if sub == nil {
			continue
		}
		if !r.Kind.ToMany() && (sub.Where != nil || len(sub.OrderBy) > 0 || sub.Take != nil || sub.Skip != 0 || sub.Cursor != nil) {
			return invalid(entity, name, "to-one include accepts only a selection", ErrConflictingOptions)
		}
		if err := Validate(s, r.Target, *sub); err != nil {
			return err
		}
	}
	return nil
}

func validateCursor(e *schema.Entity, c Cursor) error {
	f, ok := e.Field(c.Field)
	if !ok {
		return invalid(e.Name, c.Field, "unknown cursor field", ErrUnknownField)
	}
	if !f.Unique {
		return invalid(e.Name, c.Field, "cursor field must be unique", ErrInvalidCursor)
	}
	return nil
}

// ValidateAggregate checks an aggregation request against the schema model.
func ValidateAggregate(s *schema.Schema, entity string, a Aggregate) error {
	e, ok := s.Entity(entity)
	if !ok {
		return invalid(entity, "", "unknown entity", ErrUnknownField)
	}
	if err := ValidateWhere(e, a.Where); err != nil {
		return err
	}
	return validateAggFields(e, a.Min, a.Max, a.Avg, a.Sum)
}

// ValidateGroupBy checks a group-by request. Ordering and having may only
// reference fields present in the by list; this mirrors the compile-time
// check of the source schema toolchain as a runtime validation.
func ValidateGroupBy(s *schema.Schema, entity string, g GroupBy) error {
	e, ok := s.Entity(entity)
	if !ok {
		return invalid(entity, "", "unknown entity", ErrUnknownField)
	}
	if len(g.By) == 0 {
		return invalid(entity, "", "groupBy requires a non-empty by list", ErrInvalidGroupBy)
	}
	by := make(map[string]bool, len(g.By))
	for _, fn := range g.By {
		if _, ok := e.Field(fn); !ok {
			return invalid(entity, fn, "unknown field in by", ErrUnknownField)
		}
		by[fn] = true
	}
	if err := ValidateWhere(e, g.Where); err != nil {
		return err
	}
	for _, o := range g.OrderBy {
		if !by[o.Field] {
			return invalid(entity, o.Field, "orderBy field is not in the by list", ErrInvalidGroupBy)
		}
	}
	if err := Walk(g.Having, func(c Cond) error {
		if !by[c.Field] {
			return invalid(entity, c.Field, "having field is not in the by list", ErrInvalidGroupBy)
		}
		return nil
	}); err != nil {
		return err
	}
	if g.Skip < 0 {
		return invalid(entity, "", "skip must not be negative", ErrInvalidValue)
	}
	return validateAggFields(e, g.Min, g.Max, g.Avg, g.Sum)
}

func validateAggFields(e *schema.Entity, minmax ...[]string) error {
	for i, set := range minmax {
		numericOnly := i >= 2 // Avg and Sum
		for _, fn := range set {
			f, ok := e.Field(fn)
			if !ok {
				return invalid(e.Name, fn, "unknown field in aggregation", ErrUnknownField)
			}
			if numericOnly && f.Type != schema.TypeInt && f.Type != schema.TypeFloat {
				return invalid(e.Name, fn, "avg/sum require a numeric field", ErrInvalidValue)
			}
		}
	}
	return nil
}
