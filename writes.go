package gallerydb

import (
	"context"
	"fmt"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
	"github.com/vcostin/gallerydb/schema"
)

// valuer is implemented by the per-entity create inputs.
type valuer interface {
	values() map[string]any
}

// CreateRel describes writes on a to-many relation nested inside a create:
// new records to insert under the parent and existing records to connect to
// it. With SkipDuplicates, created records that violate a unique constraint
// are dropped instead of failing the write.
type CreateRel[C valuer] struct {
	Create         []C
	Connect        []query.Expr
	SkipDuplicates bool
}

// CreateOneRel describes a to-one relation nested inside a create: either a
// new record or a unique filter connecting an existing one.
type CreateOneRel[C valuer] struct {
	Create  *C
	Connect query.Expr
}

// UpdateRel describes writes on a many-to-many relation nested inside an
// update: new records to insert and link, existing records to connect, and
// linked records to disconnect.
type UpdateRel[C valuer] struct {
	Create         []C
	Connect        []query.Expr
	Disconnect     []query.Expr
	SkipDuplicates bool
}

// UpdateOneRel describes writes on a nullable to-one relation nested inside
// an update: connect or create repoints the foreign key, Disconnect nulls it.
type UpdateOneRel[C valuer] struct {
	Create     *C
	Connect    query.Expr
	Disconnect bool
}

func setIf[T any](m map[string]any, key string, p *T) {
	if p != nil {
		m[key] = *p
	}
}

func createRows[C valuer](data []C) []map[string]any {
	rows := make([]map[string]any, len(data))
	for i, c := range data {
		rows[i] = c.values()
	}
	return rows
}

func optionalInclude(include []Include) Include {
	if len(include) == 0 {
		return nil
	}
	return include[0]
}

// inTx runs fn inside a transaction, unless the session already is one.
func (s *session) inTx(ctx context.Context, fn func(*session) error) error {
	if s.serial {
		return fn(s)
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	ts := &session{drv: txDriver{conn: tx, name: s.drv.Dialect()}, cfg: s.cfg, serial: true}
	if err := fn(ts); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: %v", err, &RollbackError{Err: rerr})
		}
		return err
	}
	return tx.Commit()
}

// resolveOne materializes a nested to-one relation and returns the id the
// parent's foreign key must point at.
func resolveOne[C valuer, T any](ctx context.Context, s *session, tm *meta[T], rel *CreateOneRel[C]) (string, error) {
	idField := tm.entity.ID().Fields[0]
	switch {
	case rel.Create != nil && rel.Connect != nil:
		return "", invalidf(tm.entity.Name, "", "nested relation accepts create or connect, not both")
	case rel.Create != nil:
		values := (*rel.Create).values()
		if err := insertOne(ctx, s, tm.entity, values); err != nil {
			return "", err
		}
		id, _ := values[idField].(string)
		return id, nil
	case rel.Connect != nil:
		rec, err := findUnique(ctx, s, tm, rel.Connect, nil)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", NewNotFoundErrorWithFilter(tm.entity.Name, rel.Connect)
		}
		return tm.id(rec), nil
	}
	return "", invalidf(tm.entity.Name, "", "empty nested relation")
}

// createChildren materializes a nested to-many relation keyed by a foreign
// key on the child: creates go in one batch insert, connects reassign the
// child's foreign key.
func createChildren[C valuer, T any](ctx context.Context, s *session, cm *meta[T], fkField, parentID string, rel *CreateRel[C]) error {
	if len(rel.Create) > 0 {
		rows := make([]map[string]any, len(rel.Create))
		for i, in := range rel.Create {
			v := in.values()
			v[fkField] = parentID
			rows[i] = v
		}
		if _, err := insertMany(ctx, s, cm.entity, rows, rel.SkipDuplicates); err != nil {
			return err
		}
	}
	for _, filter := range rel.Connect {
		if err := validateUniqueFilter(cm.entity, filter); err != nil {
			return err
		}
		n, err := updateWhere(ctx, s, cm.entity, filter, map[string]any{fkField: parentID})
		if err != nil {
			return err
		}
		if n == 0 {
			return NewNotFoundErrorWithFilter(cm.entity.Name, filter)
		}
	}
	return nil
}

// linkMany materializes a nested many-to-many relation: target records are
// created or resolved, then linked to the source through the join table.
func linkMany[C valuer, T any](ctx context.Context, s *session, tm *meta[T], join *schema.JoinTable, sourceID string, rel *CreateRel[C]) error {
	idField := tm.entity.ID().Fields[0]
	var targetIDs []string
	for _, in := range rel.Create {
		values := in.values()
		if err := insertOne(ctx, s, tm.entity, values); err != nil {
			return err
		}
		if id, ok := values[idField].(string); ok {
			targetIDs = append(targetIDs, id)
		}
	}
	for _, filter := range rel.Connect {
		rec, err := findUnique(ctx, s, tm, filter, nil)
		if err != nil {
			return err
		}
		if rec == nil {
			return NewNotFoundErrorWithFilter(tm.entity.Name, filter)
		}
		targetIDs = append(targetIDs, tm.id(rec))
	}
	if len(targetIDs) == 0 {
		return nil
	}
	ins := dsql.Dialect(s.dialect()).
		Insert(join.Table).
		Columns(join.SourceColumn, join.TargetColumn)
	for _, id := range targetIDs {
		ins.Values(sourceID, id)
	}
	if rel.SkipDuplicates {
		ins.OnConflictDoNothing()
	}
	q, args := ins.Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return wrapDriverError(tm.entity, err)
	}
	return nil
}

// unlinkMany removes the join table rows between the source record and the
// targets addressed by unique filters.
func unlinkMany[T any](ctx context.Context, s *session, tm *meta[T], join *schema.JoinTable, sourceID string, filters []query.Expr) error {
	var targetIDs []any
	for _, filter := range filters {
		rec, err := findUnique(ctx, s, tm, filter, nil)
		if err != nil {
			return err
		}
		if rec == nil {
			return NewNotFoundErrorWithFilter(tm.entity.Name, filter)
		}
		targetIDs = append(targetIDs, tm.id(rec))
	}
	if len(targetIDs) == 0 {
		return nil
	}
	del := dsql.Dialect(s.dialect()).
		Delete(join.Table).
		Where(dsql.And(
			dsql.EQ(join.SourceColumn, sourceID),
			dsql.In(join.TargetColumn, targetIDs...),
		))
	q, args := del.Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return wrapDriverError(tm.entity, err)
	}
	return nil
}

// --- shared operation cores, one per delegate method shape ---

func opFindUniqueOrThrow[T any](ctx context.Context, s *session, m *meta[T], where query.Expr, include map[string]*query.Options) (*T, error) {
	rec, err := findUnique(ctx, s, m, where, include)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, NewNotFoundErrorWithFilter(m.entity.Name, where)
	}
	return rec, nil
}

func opFindFirstOrThrow[T any](ctx context.Context, s *session, m *meta[T], opts *query.Options) (*T, error) {
	rec, err := findFirst(ctx, s, m, opts)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, NewNotFoundError(m.entity.Name)
	}
	return rec, nil
}

// opCreate inserts one record and returns it re-read from the database, so
// defaults and generated values are reflected. pre runs before the insert
// and resolves nested to-one relations into foreign key values; nested runs
// after it and materializes nested to-many relations. Both share one
// transaction with the insert.
func opCreate[T any](ctx context.Context, s *session, m *meta[T], values map[string]any, pre func(context.Context, *session) error, nested func(context.Context, *session, string) error) (*T, error) {
	idField := m.entity.ID().Fields[0]
	run := func(s *session) (*T, error) {
		if pre != nil {
			if err := pre(ctx, s); err != nil {
				return nil, err
			}
		}
		if err := insertOne(ctx, s, m.entity, values); err != nil {
			return nil, err
		}
		id, _ := values[idField].(string)
		if nested != nil {
			if err := nested(ctx, s, id); err != nil {
				return nil, err
			}
		}
		return opFindUniqueOrThrow(ctx, s, m, query.EQ(idField, id), nil)
	}
	if pre == nil && nested == nil {
		return run(s)
	}
	var rec *T
	err := s.inTx(ctx, func(ts *session) error {
		var err error
		rec, err = run(ts)
		return err
	})
	return rec, err
}

func opCreateMany[T any](ctx context.Context, s *session, m *meta[T], rows []map[string]any, skipDuplicates bool) (int64, error) {
	return insertMany(ctx, s, m.entity, rows, skipDuplicates)
}

func opCreateManyAndReturn[T any](ctx context.Context, s *session, m *meta[T], rows []map[string]any, skipDuplicates bool) ([]*T, error) {
	if _, err := insertMany(ctx, s, m.entity, rows, skipDuplicates); err != nil {
		return nil, err
	}
	idField := m.entity.ID().Fields[0]
	ids := make([]any, 0, len(rows))
	for _, values := range rows {
		if id, ok := values[idField]; ok {
			ids = append(ids, id)
		}
	}
	return findMany(ctx, s, m, &query.Options{Where: query.In(idField, ids...)})
}

// opUpdate updates the record addressed by a unique filter and returns it.
// nested runs after the column update and materializes nested relation
// operations; it shares one transaction with the update.
func opUpdate[T any](ctx context.Context, s *session, m *meta[T], where query.Expr, sets map[string]any, nested func(context.Context, *session, string) error) (*T, error) {
	if err := validateUniqueFilter(m.entity, where); err != nil {
		return nil, err
	}
	idField := m.entity.ID().Fields[0]
	run := func(rs *session) (*T, error) {
		rec, err := findFirst(ctx, rs, m, &query.Options{Where: where})
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, NewNotFoundErrorWithFilter(m.entity.Name, where)
		}
		id := m.id(rec)
		if len(sets) > 0 || nested == nil {
			n, err := updateWhere(ctx, rs, m.entity, query.EQ(idField, id), sets)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, NewNotFoundErrorWithFilter(m.entity.Name, where)
			}
			if nv, ok := sets[idField].(string); ok {
				id = nv
			}
		}
		if nested != nil {
			if err := nested(ctx, rs, id); err != nil {
				return nil, err
			}
		}
		return opFindUniqueOrThrow(ctx, rs, m, query.EQ(idField, id), nil)
	}
	if nested == nil {
		return run(s)
	}
	var rec *T
	err := s.inTx(ctx, func(ts *session) error {
		var err error
		rec, err = run(ts)
		return err
	})
	return rec, err
}

func opUpdateManyAndReturn[T any](ctx context.Context, s *session, m *meta[T], where query.Expr, sets map[string]any) ([]*T, error) {
	idField := m.entity.ID().Fields[0]
	recs, err := findMany(ctx, s, m, &query.Options{Where: where, Select: []string{idField}})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	ids := make([]any, len(recs))
	for i, rec := range recs {
		ids[i] = m.id(rec)
	}
	if _, err := updateWhere(ctx, s, m.entity, query.In(idField, ids...), sets); err != nil {
		return nil, err
	}
	return findMany(ctx, s, m, &query.Options{Where: query.In(idField, ids...)})
}

// opUpsert updates the record addressed by the unique filter, or creates it
// when missing. Lookup and write share one transaction.
func opUpsert[T any](ctx context.Context, s *session, m *meta[T], where query.Expr, createValues map[string]any, pre func(context.Context, *session) error, nested func(context.Context, *session, string) error, sets map[string]any, updateNested func(context.Context, *session, string) error) (*T, error) {
	if err := validateUniqueFilter(m.entity, where); err != nil {
		return nil, err
	}
	var rec *T
	err := s.inTx(ctx, func(ts *session) error {
		existing, err := findFirst(ctx, ts, m, &query.Options{Where: where})
		if err != nil {
			return err
		}
		if existing != nil {
			rec, err = opUpdate(ctx, ts, m, where, sets, updateNested)
		} else {
			rec, err = opCreate(ctx, ts, m, createValues, pre, nested)
		}
		return err
	})
	return rec, err
}

// opDelete deletes the record addressed by a unique filter and returns it.
func opDelete[T any](ctx context.Context, s *session, m *meta[T], where query.Expr) (*T, error) {
	if err := validateUniqueFilter(m.entity, where); err != nil {
		return nil, err
	}
	rec, err := findFirst(ctx, s, m, &query.Options{Where: where})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, NewNotFoundErrorWithFilter(m.entity.Name, where)
	}
	idField := m.entity.ID().Fields[0]
	n, err := deleteWhere(ctx, s, m.entity, query.EQ(idField, m.id(rec)))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, NewNotFoundErrorWithFilter(m.entity.Name, where)
	}
	return rec, nil
}
