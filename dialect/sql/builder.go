package sql

import (
	"strconv"
	"strings"

	"github.com/vcostin/gallerydb/dialect"
)

// Builder is the base SQL writer shared by all statement builders.
// It accumulates the statement text and its bound arguments, and knows
// how to quote identifiers and render placeholders for its dialect.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// NewBuilder returns a fresh builder for the given dialect.
func NewBuilder(dialect string) *Builder {
	return &Builder{dialect: dialect}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString appends the given string to the statement.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends the given byte to the statement.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Quote quotes a single identifier part for the dialect.
func (b *Builder) Quote(ident string) string {
	quote := `"`
	if b.dialect == dialect.MySQL {
		quote = "`"
	}
	return quote + ident + quote
}

// Ident appends a possibly qualified identifier (e.g. "users.order"),
// quoting each part. Strings that already look like expressions (contain
// parentheses, spaces, or quotes) and the star selector pass through as-is.
func (b *Builder) Ident(s string) *Builder {
	if s == "*" || strings.ContainsAny(s, "( \"`") {
		b.sb.WriteString(s)
		return b
	}
	parts := strings.Split(s, ".")
	for i, p := range parts {
		if i > 0 {
			b.sb.WriteByte('.')
		}
		if p == "*" {
			b.sb.WriteByte('*')
			continue
		}
		b.sb.WriteString(b.Quote(p))
	}
	return b
}

// Arg appends a bound argument and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
		return b
	}
	b.sb.WriteByte('?')
	return b
}

// Args returns the bound arguments of the statement.
func (b *Builder) Args() []any { return b.args }

// String returns the accumulated statement.
func (b *Builder) String() string { return b.sb.String() }

// DialectBuilder is the entry point for building dialect-aware statements.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a builder factory for the given dialect.
func Dialect(name string) DialectBuilder {
	return DialectBuilder{dialect: name}
}

// Select starts a SELECT statement with the given columns.
func (d DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{dialect: d.dialect, columns: columns}
}

// Insert starts an INSERT statement into the given table.
func (d DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, table: table}
}

// Update starts an UPDATE statement on the given table.
func (d DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d.dialect, table: table}
}

// Delete starts a DELETE statement on the given table.
func (d DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d.dialect, table: table}
}

// Predicate is a composable WHERE/HAVING condition. Conditions write
// themselves into the statement builder when the statement is rendered.
type Predicate struct {
	fns []func(*Builder)
}

// P wraps raw builder functions into a predicate.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

func (p *Predicate) build(b *Builder) {
	for _, f := range p.fns {
		f(b)
	}
}

// And combines the given predicates with the AND operator, parenthesized.
func And(preds ...*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return P(func(b *Builder) {
		b.WriteByte('(')
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p.build(b)
		}
		b.WriteByte(')')
	})
}

// Or combines the given predicates with the OR operator, parenthesized.
func Or(preds ...*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return P(func(b *Builder) {
		b.WriteByte('(')
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" OR ")
			}
			p.build(b)
		}
		b.WriteByte(')')
	})
}

// Not negates the given predicate.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT (")
		p.build(b)
		b.WriteByte(')')
	})
}

func binary(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" " + op + " ").Arg(v)
	})
}

// EQ returns a "=" predicate. A nil value renders as IS NULL.
func EQ(col string, v any) *Predicate {
	if v == nil {
		return IsNull(col)
	}
	return binary(col, "=", v)
}

// NEQ returns a "<>" predicate. A nil value renders as IS NOT NULL.
func NEQ(col string, v any) *Predicate {
	if v == nil {
		return NotNull(col)
	}
	return binary(col, "<>", v)
}

// GT returns a ">" predicate.
func GT(col string, v any) *Predicate { return binary(col, ">", v) }

// GTE returns a ">=" predicate.
func GTE(col string, v any) *Predicate { return binary(col, ">=", v) }

// LT returns a "<" predicate.
func LT(col string, v any) *Predicate { return binary(col, "<", v) }

// LTE returns a "<=" predicate.
func LTE(col string, v any) *Predicate { return binary(col, "<=", v) }

// In returns an IN predicate. An empty list renders as FALSE so the
// predicate matches nothing rather than producing invalid SQL.
func In(col string, vs ...any) *Predicate {
	if len(vs) == 0 {
		return P(func(b *Builder) { b.WriteString("FALSE") })
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IN (")
		for i, v := range vs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Arg(v)
		}
		b.WriteByte(')')
	})
}

// NotIn returns a NOT IN predicate. An empty list renders as TRUE.
func NotIn(col string, vs ...any) *Predicate {
	if len(vs) == 0 {
		return P(func(b *Builder) { b.WriteString("TRUE") })
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" NOT IN (")
		for i, v := range vs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Arg(v)
		}
		b.WriteByte(')')
	})
}

// IsNull returns an IS NULL predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NULL") })
}

// NotNull returns an IS NOT NULL predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NOT NULL") })
}

// escapeLike escapes the LIKE wildcard characters in a literal match part.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func like(col, pattern string, fold bool) *Predicate {
	return P(func(b *Builder) {
		if fold {
			b.WriteString("LOWER(").Ident(col).WriteString(") LIKE ").Arg(strings.ToLower(pattern))
		} else {
			b.Ident(col).WriteString(" LIKE ").Arg(pattern)
		}
		// SQLite has no default escape character for LIKE.
		if b.dialect == dialect.SQLite {
			b.WriteString(` ESCAPE '\'`)
		}
	})
}

// Contains returns a predicate matching rows whose column contains substr.
func Contains(col, substr string) *Predicate {
	return like(col, "%"+escapeLike(substr)+"%", false)
}

// ContainsFold is the case-insensitive version of Contains.
func ContainsFold(col, substr string) *Predicate {
	return like(col, "%"+escapeLike(substr)+"%", true)
}

// HasPrefix returns a predicate matching rows whose column starts with prefix.
func HasPrefix(col, prefix string) *Predicate {
	return like(col, escapeLike(prefix)+"%", false)
}

// HasPrefixFold is the case-insensitive version of HasPrefix.
func HasPrefixFold(col, prefix string) *Predicate {
	return like(col, escapeLike(prefix)+"%", true)
}

// HasSuffix returns a predicate matching rows whose column ends with suffix.
func HasSuffix(col, suffix string) *Predicate {
	return like(col, "%"+escapeLike(suffix), false)
}

// HasSuffixFold is the case-insensitive version of HasSuffix.
func HasSuffixFold(col, suffix string) *Predicate {
	return like(col, "%"+escapeLike(suffix), true)
}

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col, v string) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("LOWER(").Ident(col).WriteString(") = ").Arg(strings.ToLower(v))
	})
}

// OrderExpr describes a single ORDER BY term.
type OrderExpr struct {
	column string
	desc   bool
	nulls  string // "", "FIRST" or "LAST"
}

// Asc orders by the given column in ascending order.
func Asc(col string) OrderExpr { return OrderExpr{column: col} }

// Desc orders by the given column in descending order.
func Desc(col string) OrderExpr { return OrderExpr{column: col, desc: true} }

// NullsFirst places NULL values before all others.
func (o OrderExpr) NullsFirst() OrderExpr { o.nulls = "FIRST"; return o }

// NullsLast places NULL values after all others.
func (o OrderExpr) NullsLast() OrderExpr { o.nulls = "LAST"; return o }

func (o OrderExpr) build(b *Builder) {
	// MySQL has no NULLS FIRST/LAST clause; emulate with an IS NULL term.
	if o.nulls != "" && b.dialect == dialect.MySQL {
		b.Ident(o.column).WriteString(" IS NULL")
		if o.nulls == "FIRST" {
			b.WriteString(" DESC")
		}
		b.WriteString(", ")
	}
	b.Ident(o.column)
	if o.desc {
		b.WriteString(" DESC")
	}
	if o.nulls != "" && b.dialect != dialect.MySQL {
		b.WriteString(" NULLS " + o.nulls)
	}
}

// join holds a single JOIN clause of a Selector.
type join struct {
	kind  string
	table string
	on    [2]string
}

// Selector builds a parameterized SELECT statement.
type Selector struct {
	dialect    string
	columns    []string
	distinct   bool
	distinctOn []string
	table      string
	joins      []join
	where      *Predicate
	groupBy    []string
	having     *Predicate
	order      []OrderExpr
	limit      *int
	offset     *int
}

// Select replaces the selected columns.
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = columns
	return s
}

// From sets the table to select from.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Distinct marks the selection as DISTINCT.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// DistinctOn deduplicates rows by the given columns. Only Postgres supports
// DISTINCT ON; callers on other dialects should group by the columns instead.
func (s *Selector) DistinctOn(columns ...string) *Selector {
	s.distinctOn = columns
	return s
}

// C returns the quoted, table-qualified form of the given column.
func (s *Selector) C(column string) string {
	b := NewBuilder(s.dialect)
	b.Ident(s.table + "." + column)
	return b.String()
}

// Where ANDs the given predicate into the selection filter.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where != nil {
		s.where = And(s.where, p)
	} else {
		s.where = p
	}
	return s
}

// Join adds an INNER JOIN clause. The on columns may be table-qualified.
func (s *Selector) Join(table, onLeft, onRight string) *Selector {
	s.joins = append(s.joins, join{kind: "JOIN", table: table, on: [2]string{onLeft, onRight}})
	return s
}

// LeftJoin adds a LEFT JOIN clause.
func (s *Selector) LeftJoin(table, onLeft, onRight string) *Selector {
	s.joins = append(s.joins, join{kind: "LEFT JOIN", table: table, on: [2]string{onLeft, onRight}})
	return s
}

// GroupBy adds grouping columns.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Having sets the HAVING predicate.
func (s *Selector) Having(p *Predicate) *Selector {
	s.having = p
	return s
}

// OrderBy appends order terms.
func (s *Selector) OrderBy(exprs ...OrderExpr) *Selector {
	s.order = append(s.order, exprs...)
	return s
}

// Limit bounds the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset skips the first n rows.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Query renders the statement and its bound arguments.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.distinctOn) > 0 {
		b.WriteString("DISTINCT ON (")
		for i, c := range s.distinctOn {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
		b.WriteString(") ")
	}
	if len(s.columns) == 0 {
		b.WriteByte('*')
	}
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	b.WriteString(" FROM ").Ident(s.table)
	for _, j := range s.joins {
		b.WriteString(" " + j.kind + " ").Ident(j.table)
		b.WriteString(" ON ").Ident(j.on[0]).WriteString(" = ").Ident(j.on[1])
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.build(b)
	}
	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, c := range s.groupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	if s.having != nil {
		b.WriteString(" HAVING ")
		s.having.build(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				b.WriteString(", ")
			}
			o.build(b)
		}
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	} else if s.offset != nil {
		// MySQL and SQLite reject OFFSET without LIMIT.
		switch s.dialect {
		case dialect.MySQL:
			b.WriteString(" LIMIT 18446744073709551615")
		case dialect.SQLite:
			b.WriteString(" LIMIT -1")
		}
	}
	if s.offset != nil {
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
	return b.String(), b.Args()
}

// As aliases the given expression. The expression and alias pass through
// unquoted, so aliases must be plain identifiers.
func As(expr, alias string) string {
	return expr + " AS " + alias
}

// Count returns the COUNT aggregation of the given (pre-quoted) column.
func Count(col string) string { return "COUNT(" + col + ")" }

// Min returns the MIN aggregation of the given (pre-quoted) column.
func Min(col string) string { return "MIN(" + col + ")" }

// Max returns the MAX aggregation of the given (pre-quoted) column.
func Max(col string) string { return "MAX(" + col + ")" }

// Avg returns the AVG aggregation of the given (pre-quoted) column.
func Avg(col string) string { return "AVG(" + col + ")" }

// Sum returns the SUM aggregation of the given (pre-quoted) column.
func Sum(col string) string { return "SUM(" + col + ")" }

// InsertBuilder builds a parameterized INSERT statement.
type InsertBuilder struct {
	dialect string
	table   string
	columns []string
	values  [][]any
	ignore  bool
}

type assignment struct {
	column string
	value  any
}

// Columns sets the insert column list.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = columns
	return i
}

// Values appends one row of values. Call repeatedly for multi-row inserts.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// OnConflictDoNothing makes rows violating a unique constraint be skipped
// instead of failing the whole statement.
func (i *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	i.ignore = true
	return i
}

// Query renders the statement and its bound arguments.
func (i *InsertBuilder) Query() (string, []any) {
	b := NewBuilder(i.dialect)
	b.WriteString("INSERT ")
	if i.ignore && b.dialect == dialect.MySQL {
		b.WriteString("IGNORE ")
	}
	b.WriteString("INTO ").Ident(i.table).WriteString(" (")
	for n, c := range i.columns {
		if n > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	b.WriteString(") VALUES ")
	for n, row := range i.values {
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for m, v := range row {
			if m > 0 {
				b.WriteString(", ")
			}
			b.Arg(v)
		}
		b.WriteByte(')')
	}
	if i.ignore && b.dialect != dialect.MySQL {
		b.WriteString(" ON CONFLICT DO NOTHING")
	}
	return b.String(), b.Args()
}

// UpdateBuilder builds a parameterized UPDATE statement.
type UpdateBuilder struct {
	dialect string
	table   string
	sets    []assignment
	where   *Predicate
}

// Set assigns a new value to the given column. A nil value writes NULL.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: v})
	return u
}

// Where sets the update filter.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where != nil && p != nil {
		u.where = And(u.where, p)
	} else if p != nil {
		u.where = p
	}
	return u
}

// Empty reports whether the update has no assignments.
func (u *UpdateBuilder) Empty() bool { return len(u.sets) == 0 }

// Query renders the statement and its bound arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	b := NewBuilder(u.dialect)
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for n, a := range u.sets {
		if n > 0 {
			b.WriteString(", ")
		}
		b.Ident(a.column).WriteString(" = ")
		if a.value == nil {
			b.WriteString("NULL")
		} else {
			b.Arg(a.value)
		}
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where.build(b)
	}
	return b.String(), b.Args()
}

// DeleteBuilder builds a parameterized DELETE statement.
type DeleteBuilder struct {
	dialect string
	table   string
	where   *Predicate
}

// Where sets the delete filter.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where != nil && p != nil {
		d.where = And(d.where, p)
	} else if p != nil {
		d.where = p
	}
	return d
}

// Query renders the statement and its bound arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	b := NewBuilder(d.dialect)
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where.build(b)
	}
	return b.String(), b.Args()
}
