package gallerydb

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vcostin/gallerydb/dialect"
	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
	"github.com/vcostin/gallerydb/schema"
)

// session carries the execution state shared by all delegates: the driver
// (a pooled connection or a transaction) and the client configuration.
type session struct {
	drv dialect.Driver
	cfg *config
	// serial marks a transactional session, whose driver cannot run
	// statements concurrently.
	serial bool
}

func (s *session) dialect() string { return s.drv.Dialect() }

func entityOf(name string) *schema.Entity {
	e, ok := Model.Entity(name)
	if !ok {
		panic("gallerydb: unknown entity " + name)
	}
	return e
}

// meta binds an entity's schema to its typed row handling. Each delegate
// owns one.
type meta[T any] struct {
	entity *schema.Entity
	// id extracts the identity field value of a record.
	id func(*T) string
	// scan reads one row whose columns correspond to the given field names,
	// in order.
	scan func(rows *dsql.Rows, fields []string) (*T, error)
	// load attaches included relations to the scanned records.
	load func(ctx context.Context, s *session, recs []*T, include map[string]*query.Options) error
}

// wrapDriverError translates driver-level failures into the client's error
// taxonomy.
func wrapDriverError(e *schema.Entity, err error) error {
	if err == nil {
		return nil
	}
	switch kind, name := dsql.DecodeConstraint(err); kind {
	case dsql.ConstraintUnique:
		return NewUniqueConstraintError(e.Name, name, err)
	case dsql.ConstraintForeignKey:
		return NewForeignKeyError(e.Name, name, err)
	}
	if errors.Is(err, driver.ErrBadConn) {
		return &ConnectionError{Err: err}
	}
	return err
}

// selectFields resolves the field names a query returns, honoring Select and
// Omit. When relations are included, the id and foreign key fields they need
// are forced in.
func selectFields(e *schema.Entity, opts *query.Options) []string {
	var fields []string
	if len(opts.Select) > 0 {
		fields = append(fields, opts.Select...)
	} else {
		omitted := make(map[string]bool, len(opts.Omit))
		for _, f := range opts.Omit {
			omitted[f] = true
		}
		for _, f := range e.Fields() {
			if !omitted[f.Name] {
				fields = append(fields, f.Name)
			}
		}
	}
	if len(opts.Include) == 0 {
		return fields
	}
	forced := make(map[string]bool, len(fields))
	for _, f := range fields {
		forced[f] = true
	}
	for _, name := range e.ID().Fields {
		if !forced[name] {
			fields = append(fields, name)
			forced[name] = true
		}
	}
	for name := range opts.Include {
		r, ok := e.Relation(name)
		if !ok || r.Kind != schema.BelongsTo {
			continue
		}
		if !forced[r.FKField] {
			fields = append(fields, r.FKField)
			forced[r.FKField] = true
		}
	}
	return fields
}

// buildSelect compiles the validated options into a SELECT statement and
// returns the selector together with the field names it yields.
func buildSelect[T any](s *session, m *meta[T], opts *query.Options) (*dsql.Selector, []string, error) {
	e := m.entity
	if opts == nil {
		opts = &query.Options{}
	}
	if err := query.Validate(Model, e.Name, *opts); err != nil {
		return nil, nil, err
	}
	fields := selectFields(e, opts)
	backward := opts.Take != nil && *opts.Take < 0

	// Distinct on dialects without DISTINCT ON narrows the selection to the
	// distinct fields themselves.
	if len(opts.Distinct) > 0 && s.dialect() != dialect.Postgres {
		fields = opts.Distinct
	}
	cols := make([]string, len(fields))
	for i, fn := range fields {
		f, _ := e.Field(fn)
		cols[i] = e.Table + "." + f.Column
	}
	sel := dsql.Dialect(s.dialect()).Select(cols...).From(e.Table)

	pred, err := query.Predicate(e, opts.Where)
	if err != nil {
		return nil, nil, err
	}
	sel.Where(pred)

	if len(opts.Distinct) > 0 {
		if s.dialect() == dialect.Postgres {
			on := make([]string, len(opts.Distinct))
			for i, fn := range opts.Distinct {
				f, _ := e.Field(fn)
				on[i] = e.Table + "." + f.Column
				// DISTINCT ON requires its columns to lead the ordering.
				sel.OrderBy(dsql.Asc(on[i]))
			}
			sel.DistinctOn(on...)
		} else {
			sel.Distinct()
		}
	}

	orders, err := query.Orders(e, opts.OrderBy)
	if err != nil {
		return nil, nil, err
	}
	sel.OrderBy(orders...)

	if opts.Cursor != nil {
		boundary, anchor, err := query.CursorBoundary(e, *opts.Cursor, backward)
		if err != nil {
			return nil, nil, err
		}
		sel.Where(boundary)
		if len(orders) == 0 {
			sel.OrderBy(anchor)
		}
	}
	if opts.Take != nil {
		n := *opts.Take
		if n < 0 {
			n = -n
		}
		sel.Limit(n)
	}
	if opts.Skip > 0 {
		sel.Offset(opts.Skip)
	}
	return sel, fields, nil
}

func queryRows[T any](ctx context.Context, s *session, m *meta[T], sel *dsql.Selector, fields []string) ([]*T, error) {
	q, args := sel.Query()
	var rows dsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, wrapDriverError(m.entity, err)
	}
	defer rows.Close()
	var out []*T
	for rows.Next() {
		rec, err := m.scan(&rows, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDriverError(m.entity, err)
	}
	return out, nil
}

func findMany[T any](ctx context.Context, s *session, m *meta[T], opts *query.Options) ([]*T, error) {
	sel, fields, err := buildSelect(s, m, opts)
	if err != nil {
		return nil, err
	}
	recs, err := queryRows(ctx, s, m, sel, fields)
	if err != nil {
		return nil, err
	}
	if opts != nil && len(opts.Include) > 0 && len(recs) > 0 && m.load != nil {
		if err := m.load(ctx, s, recs, opts.Include); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// findFirst returns the first matching record, or nil when none matches.
func findFirst[T any](ctx context.Context, s *session, m *meta[T], opts *query.Options) (*T, error) {
	var limited query.Options
	if opts != nil {
		limited = *opts
	}
	if limited.Take == nil {
		limited.Take = query.Take(1)
	}
	recs, err := findMany(ctx, s, m, &limited)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// findUnique returns the record matching a unique filter, or nil when it
// does not exist. The filter must cover exactly the fields of one unique
// constraint with equality conditions.
func findUnique[T any](ctx context.Context, s *session, m *meta[T], where query.Expr, include map[string]*query.Options) (*T, error) {
	if err := validateUniqueFilter(m.entity, where); err != nil {
		return nil, err
	}
	if s.cfg.cache != nil && len(include) == 0 {
		if rec, ok := cacheGet[T](ctx, s, m, where); ok {
			return rec, nil
		}
	}
	rec, err := findFirst(ctx, s, m, &query.Options{Where: where, Include: include})
	if err != nil {
		return nil, err
	}
	if s.cfg.cache != nil && len(include) == 0 && rec != nil {
		cacheSet(ctx, s, m, where, rec)
	}
	return rec, nil
}

// validateUniqueFilter checks that the filter addresses exactly one record:
// all conditions are equalities and the filtered fields form one of the
// entity's unique constraints.
func validateUniqueFilter(e *schema.Entity, where query.Expr) error {
	fields := make(map[string]bool)
	err := query.Walk(where, func(c query.Cond) error {
		if c.Op != query.OpEQ || c.Fold {
			return invalidf(e.Name, c.Field, "unique filters accept equality conditions only")
		}
		if _, ok := e.Field(c.Field); !ok {
			return invalidf(e.Name, c.Field, "unknown field in unique filter")
		}
		fields[c.Field] = true
		return nil
	})
	if err != nil {
		return err
	}
	for _, u := range e.Uniques() {
		if len(u.Fields) != len(fields) {
			continue
		}
		all := true
		for _, f := range u.Fields {
			if !fields[f] {
				all = false
				break
			}
		}
		if all {
			return nil
		}
	}
	return invalidf(e.Name, "", "filter fields do not form a unique constraint")
}

func invalidf(entity, field, msg string) error {
	return query.NewValidationError(entity, field, msg)
}

// --- write path ---

// applyDefaults fills generated and default values for fields absent from
// the input, and validates that every required field ends up present.
func applyDefaults(e *schema.Entity, values map[string]any, now time.Time) error {
	for _, f := range e.Fields() {
		if v, ok := values[f.Name]; ok {
			// A zero string on a required field without a default is a
			// left-out input, not a value.
			if s, isStr := v.(string); isStr && s == "" &&
				f.Type == schema.TypeString && !f.Nullable && f.Default == schema.DefaultNone {
				return invalidf(e.Name, f.Name, "missing required field")
			}
			if err := checkFieldValue(e, f, v); err != nil {
				return err
			}
			continue
		}
		switch f.Default {
		case schema.DefaultUUID:
			values[f.Name] = uuid.NewString()
		case schema.DefaultNow:
			values[f.Name] = now
		case schema.DefaultValue:
			values[f.Name] = f.DefaultLiteral
		default:
			if !f.Nullable {
				return invalidf(e.Name, f.Name, "missing required field")
			}
		}
	}
	return nil
}

func checkFieldValue(e *schema.Entity, f *schema.Field, v any) error {
	if v == nil {
		if !f.Nullable {
			return invalidf(e.Name, f.Name, "field is required")
		}
		return nil
	}
	if f.Type == schema.TypeEnum {
		s, ok := v.(string)
		if !ok || !f.ValidEnum(s) {
			return invalidf(e.Name, f.Name, fmt.Sprintf("invalid enum value %v", v))
		}
	}
	return nil
}

// insertOne inserts a single row built from field name to value pairs.
func insertOne(ctx context.Context, s *session, e *schema.Entity, values map[string]any) error {
	if err := applyDefaults(e, values, time.Now().UTC()); err != nil {
		return err
	}
	cols, row := orderedRow(e, values)
	ins := dsql.Dialect(s.dialect()).Insert(e.Table).Columns(cols...).Values(row...)
	q, args := ins.Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return wrapDriverError(e, err)
	}
	cacheInvalidate(ctx, s, e)
	return nil
}

// insertMany inserts the given rows in one statement. With skipDuplicates,
// rows violating a unique constraint are silently dropped and the returned
// count reflects the rows actually written.
func insertMany(ctx context.Context, s *session, e *schema.Entity, rows []map[string]any, skipDuplicates bool) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for _, values := range rows {
		if err := applyDefaults(e, values, now); err != nil {
			return 0, err
		}
	}
	cols := orderedColumns(e, rows)
	ins := dsql.Dialect(s.dialect()).Insert(e.Table).Columns(cols...)
	for _, values := range rows {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = values[fieldByColumn(e, c)]
		}
		ins.Values(row...)
	}
	if skipDuplicates {
		ins.OnConflictDoNothing()
	}
	q, args := ins.Query()
	var res dsql.Result
	if err := s.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, wrapDriverError(e, err)
	}
	cacheInvalidate(ctx, s, e)
	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return n, nil
}

// updateWhere applies the given field updates to all rows matching the
// filter and returns the affected row count. Fields declared updateNow are
// touched automatically.
func updateWhere(ctx context.Context, s *session, e *schema.Entity, where query.Expr, sets map[string]any) (int64, error) {
	if err := query.ValidateWhere(e, where); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for _, f := range e.Fields() {
		if f.UpdateNow {
			if _, ok := sets[f.Name]; !ok {
				sets[f.Name] = now
			}
		}
	}
	upd := dsql.Dialect(s.dialect()).Update(e.Table)
	for _, f := range e.Fields() {
		v, ok := sets[f.Name]
		if !ok {
			continue
		}
		if err := checkFieldValue(e, f, v); err != nil {
			return 0, err
		}
		upd.Set(f.Column, v)
	}
	if upd.Empty() {
		return 0, invalidf(e.Name, "", "update with no fields to set")
	}
	pred, err := query.Predicate(e, where)
	if err != nil {
		return 0, err
	}
	upd.Where(pred)
	q, args := upd.Query()
	var res dsql.Result
	if err := s.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, wrapDriverError(e, err)
	}
	cacheInvalidate(ctx, s, e)
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapDriverError(e, err)
	}
	return n, nil
}

// deleteWhere deletes all rows matching the filter and returns the count.
func deleteWhere(ctx context.Context, s *session, e *schema.Entity, where query.Expr) (int64, error) {
	if err := query.ValidateWhere(e, where); err != nil {
		return 0, err
	}
	pred, err := query.Predicate(e, where)
	if err != nil {
		return 0, err
	}
	del := dsql.Dialect(s.dialect()).Delete(e.Table).Where(pred)
	q, args := del.Query()
	var res dsql.Result
	if err := s.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, wrapDriverError(e, err)
	}
	cacheInvalidate(ctx, s, e)
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapDriverError(e, err)
	}
	return n, nil
}

func orderedRow(e *schema.Entity, values map[string]any) ([]string, []any) {
	var cols []string
	var row []any
	for _, f := range e.Fields() {
		if v, ok := values[f.Name]; ok {
			cols = append(cols, f.Column)
			row = append(row, v)
		}
	}
	return cols, row
}

// orderedColumns returns the union of the set fields across rows, in entity
// field order.
func orderedColumns(e *schema.Entity, rows []map[string]any) []string {
	set := make(map[string]bool)
	for _, values := range rows {
		for name := range values {
			set[name] = true
		}
	}
	var cols []string
	for _, f := range e.Fields() {
		if set[f.Name] {
			cols = append(cols, f.Column)
		}
	}
	return cols
}

func fieldByColumn(e *schema.Entity, col string) string {
	for _, f := range e.Fields() {
		if f.Column == col {
			return f.Name
		}
	}
	return col
}

// --- aggregation ---

func countRows(ctx context.Context, s *session, e *schema.Entity, where query.Expr) (int, error) {
	if err := query.ValidateWhere(e, where); err != nil {
		return 0, err
	}
	sel := dsql.Dialect(s.dialect()).Select(dsql.Count("*")).From(e.Table)
	pred, err := query.Predicate(e, where)
	if err != nil {
		return 0, err
	}
	sel.Where(pred)
	q, args := sel.Query()
	var rows dsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, wrapDriverError(e, err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

// aggExprs renders the aggregate select expressions in a deterministic
// order and returns scanners that fold values back into the result.
func aggExprs(e *schema.Entity, sel *dsql.Selector, count bool, min, max, avg, sum []string) ([]string, []func(dsql.NullFloat64, dsql.NullString, *query.AggregateResult)) {
	var exprs []string
	var folds []func(dsql.NullFloat64, dsql.NullString, *query.AggregateResult)
	if count {
		exprs = append(exprs, dsql.Count("*"))
		folds = append(folds, func(f dsql.NullFloat64, _ dsql.NullString, r *query.AggregateResult) {
			r.Count = int(f.Float64)
		})
	}
	add := func(fields []string, fn func(string) string, fold func(string, dsql.NullFloat64, dsql.NullString, *query.AggregateResult)) {
		ordered := append([]string(nil), fields...)
		sort.Strings(ordered)
		for _, name := range ordered {
			name := name
			f, _ := e.Field(name)
			exprs = append(exprs, fn(sel.C(f.Column)))
			folds = append(folds, func(fv dsql.NullFloat64, sv dsql.NullString, r *query.AggregateResult) {
				fold(name, fv, sv, r)
			})
		}
	}
	add(min, dsql.Min, func(name string, fv dsql.NullFloat64, sv dsql.NullString, r *query.AggregateResult) {
		if sv.Valid {
			if r.Min == nil {
				r.Min = make(map[string]any)
			}
			r.Min[name] = minMaxValue(e, name, fv, sv)
		}
	})
	add(max, dsql.Max, func(name string, fv dsql.NullFloat64, sv dsql.NullString, r *query.AggregateResult) {
		if sv.Valid {
			if r.Max == nil {
				r.Max = make(map[string]any)
			}
			r.Max[name] = minMaxValue(e, name, fv, sv)
		}
	})
	add(avg, dsql.Avg, func(name string, fv dsql.NullFloat64, _ dsql.NullString, r *query.AggregateResult) {
		if fv.Valid {
			if r.Avg == nil {
				r.Avg = make(map[string]float64)
			}
			r.Avg[name] = fv.Float64
		}
	})
	add(sum, dsql.Sum, func(name string, fv dsql.NullFloat64, _ dsql.NullString, r *query.AggregateResult) {
		if fv.Valid {
			if r.Sum == nil {
				r.Sum = make(map[string]float64)
			}
			r.Sum[name] = fv.Float64
		}
	})
	return exprs, folds
}

// keyValue converts a grouping key from its driver string form back to the
// field's Go type.
func keyValue(e *schema.Entity, name string, v dsql.NullString) any {
	if !v.Valid {
		return nil
	}
	f, _ := e.Field(name)
	switch f.Type {
	case schema.TypeInt:
		var n int
		if _, err := fmt.Sscanf(v.String, "%d", &n); err == nil {
			return n
		}
	case schema.TypeFloat:
		var fl float64
		if _, err := fmt.Sscanf(v.String, "%g", &fl); err == nil {
			return fl
		}
	case schema.TypeBool:
		return v.String == "1" || v.String == "true" || v.String == "t"
	}
	return v.String
}

// minMaxValue picks the representation of a MIN/MAX result: numeric fields
// come back as numbers, everything else as the driver's string form.
func minMaxValue(e *schema.Entity, name string, fv dsql.NullFloat64, sv dsql.NullString) any {
	f, _ := e.Field(name)
	switch f.Type {
	case schema.TypeInt:
		return int(fv.Float64)
	case schema.TypeFloat:
		return fv.Float64
	default:
		return sv.String
	}
}

// scanAgg reads one result row through paired float/string null scanners.
// Each aggregate column is scanned as a string and re-parsed as a float when
// numeric, which keeps the scan dialect-agnostic.
func scanAgg(rows *dsql.Rows, n int, fold func(i int, fv dsql.NullFloat64, sv dsql.NullString)) error {
	raw := make([]dsql.NullString, n)
	dest := make([]any, n)
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	for i, sv := range raw {
		var fv dsql.NullFloat64
		if sv.Valid {
			if _, err := fmt.Sscanf(sv.String, "%g", &fv.Float64); err == nil {
				fv.Valid = true
			}
		}
		fold(i, fv, sv)
	}
	return nil
}

func aggregateRows(ctx context.Context, s *session, e *schema.Entity, a query.Aggregate) (*query.AggregateResult, error) {
	if err := query.ValidateAggregate(Model, e.Name, a); err != nil {
		return nil, err
	}
	sel := dsql.Dialect(s.dialect()).Select().From(e.Table)
	exprs, folds := aggExprs(e, sel, a.Count, a.Min, a.Max, a.Avg, a.Sum)
	sel.Select(exprs...)
	pred, err := query.Predicate(e, a.Where)
	if err != nil {
		return nil, err
	}
	sel.Where(pred)
	q, args := sel.Query()
	var rows dsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, wrapDriverError(e, err)
	}
	defer rows.Close()
	res := &query.AggregateResult{}
	if rows.Next() {
		err := scanAgg(&rows, len(folds), func(i int, fv dsql.NullFloat64, sv dsql.NullString) {
			folds[i](fv, sv, res)
		})
		if err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDriverError(e, err)
	}
	return res, nil
}

func groupRows(ctx context.Context, s *session, e *schema.Entity, g query.GroupBy) ([]query.Group, error) {
	if err := query.ValidateGroupBy(Model, e.Name, g); err != nil {
		return nil, err
	}
	sel := dsql.Dialect(s.dialect()).Select().From(e.Table)
	keyCols := make([]string, len(g.By))
	for i, name := range g.By {
		f, _ := e.Field(name)
		keyCols[i] = e.Table + "." + f.Column
	}
	exprs, folds := aggExprs(e, sel, g.Count, g.Min, g.Max, g.Avg, g.Sum)
	sel.Select(append(append([]string(nil), keyCols...), exprs...)...)
	pred, err := query.Predicate(e, g.Where)
	if err != nil {
		return nil, err
	}
	sel.Where(pred)
	sel.GroupBy(keyCols...)
	having, err := query.Predicate(e, g.Having)
	if err != nil {
		return nil, err
	}
	sel.Having(having)
	orders, err := query.Orders(e, g.OrderBy)
	if err != nil {
		return nil, err
	}
	sel.OrderBy(orders...)
	if g.Take != nil {
		sel.Limit(*g.Take)
	}
	if g.Skip > 0 {
		sel.Offset(g.Skip)
	}
	q, args := sel.Query()
	var rows dsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, wrapDriverError(e, err)
	}
	defer rows.Close()
	var out []query.Group
	for rows.Next() {
		grp := query.Group{Keys: make(map[string]any, len(g.By))}
		keys := make([]dsql.NullString, len(g.By))
		dest := make([]any, 0, len(keys)+len(folds))
		for i := range keys {
			dest = append(dest, &keys[i])
		}
		aggRaw := make([]dsql.NullString, len(folds))
		for i := range aggRaw {
			dest = append(dest, &aggRaw[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, name := range g.By {
			grp.Keys[name] = keyValue(e, name, keys[i])
		}
		for i, sv := range aggRaw {
			var fv dsql.NullFloat64
			if sv.Valid {
				if _, err := fmt.Sscanf(sv.String, "%g", &fv.Float64); err == nil {
					fv.Valid = true
				}
			}
			folds[i](fv, sv, &grp.AggregateResult)
		}
		out = append(out, grp)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDriverError(e, err)
	}
	return out, nil
}

// --- cache ---

func cacheKey(e *schema.Entity, where query.Expr) string {
	return CacheKey{Table: e.Table, Operation: "findUnique", Filter: fmt.Sprintf("%+v", where)}.String()
}

func cacheGet[T any](ctx context.Context, s *session, m *meta[T], where query.Expr) (*T, bool) {
	data, err := s.cfg.cache.Get(ctx, cacheKey(m.entity, where))
	if err != nil || data == nil {
		return nil, false
	}
	rec := new(T)
	if err := msgpack.Unmarshal(data, rec); err != nil {
		return nil, false
	}
	return rec, true
}

func cacheSet[T any](ctx context.Context, s *session, m *meta[T], where query.Expr, rec *T) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.cfg.cache.Set(ctx, cacheKey(m.entity, where), data, s.cfg.cacheTTL); err != nil {
		s.cfg.logger.Warn("cache set failed", "table", m.entity.Table, "err", err)
	}
}

func cacheInvalidate(ctx context.Context, s *session, e *schema.Entity) {
	if s.cfg.cache == nil {
		return
	}
	if err := s.cfg.cache.DeletePrefix(ctx, e.Table+":"); err != nil {
		s.cfg.logger.Warn("cache invalidation failed", "table", e.Table, "err", err)
	}
}
