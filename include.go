package gallerydb

import (
	"context"

	"golang.org/x/sync/errgroup"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
	"github.com/vcostin/gallerydb/schema"
)

// Include names the relations to load eagerly, with optional nested options
// per relation.
type Include = map[string]*query.Options

// withFilter clones the options and ANDs the given filter into them.
func withFilter(opts *query.Options, filter query.Expr) *query.Options {
	out := &query.Options{Where: filter}
	if opts != nil {
		*out = *opts
		if opts.Where != nil {
			out.Where = query.And(opts.Where, filter)
		} else {
			out.Where = filter
		}
	}
	return out
}

// runLoads executes the relation loaders for one include set. Loads run
// concurrently on a pooled connection and sequentially inside a transaction,
// where the underlying driver does not allow concurrent statements.
func (s *session) runLoads(ctx context.Context, loads ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.serial {
		g.SetLimit(1)
	}
	for _, load := range loads {
		load := load
		g.Go(func() error { return load(ctx) })
	}
	return g.Wait()
}

// childOptions derives the options for a relation load: the parent filter is
// ANDed in, the fields the loader needs are forced into a narrowed
// selection, and pagination is stripped since it is applied per parent in
// memory.
func childOptions(opts *query.Options, parentFilter query.Expr, force ...string) *query.Options {
	out := &query.Options{Where: parentFilter}
	if opts != nil {
		out.OrderBy = opts.OrderBy
		out.Select = opts.Select
		out.Omit = opts.Omit
		out.Include = opts.Include
		out.Distinct = opts.Distinct
		if opts.Where != nil {
			out.Where = query.And(opts.Where, parentFilter)
		}
	}
	if len(out.Select) > 0 {
		present := make(map[string]bool, len(out.Select))
		for _, f := range out.Select {
			present[f] = true
		}
		for _, f := range force {
			if !present[f] {
				out.Select = append(append([]string(nil), out.Select...), f)
				present[f] = true
			}
		}
	}
	if len(out.Omit) > 0 {
		kept := out.Omit[:0:0]
		for _, f := range out.Omit {
			drop := false
			for _, forced := range force {
				if f == forced {
					drop = true
					break
				}
			}
			if !drop {
				kept = append(kept, f)
			}
		}
		out.Omit = kept
	}
	return out
}

// markLoaded flags the relation as loaded on every parent once its loader
// succeeded, so the OrErr accessors distinguish empty from not requested.
func markLoaded[T any](err error, recs []*T, mark func(*T)) error {
	if err != nil {
		return err
	}
	for _, r := range recs {
		mark(r)
	}
	return nil
}

// pageSlice applies nested take and skip per parent, after grouping.
func pageSlice[C any](recs []*C, opts *query.Options) []*C {
	if opts == nil {
		return recs
	}
	if opts.Skip > 0 {
		if opts.Skip >= len(recs) {
			return nil
		}
		recs = recs[opts.Skip:]
	}
	if opts.Take != nil {
		n := *opts.Take
		if n < 0 {
			n = -n
		}
		if n < len(recs) {
			recs = recs[:n]
		}
	}
	return recs
}

// loadBelongsTo resolves a to-one relation: the distinct foreign keys of the
// parents are looked up in one query and the matches are assigned back.
func loadBelongsTo[P, C any](
	ctx context.Context,
	s *session,
	cm *meta[C],
	parents []*P,
	fk func(*P) (string, bool),
	cid func(*C) string,
	opts *query.Options,
	assign func(*P, *C),
) error {
	seen := make(map[string]bool)
	var ids []any
	for _, p := range parents {
		if id, ok := fk(p); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	idField := cm.entity.ID().Fields[0]
	recs, err := findMany(ctx, s, cm, childOptions(opts, query.In(idField, ids...), idField))
	if err != nil {
		return err
	}
	byID := make(map[string]*C, len(recs))
	for _, c := range recs {
		byID[cid(c)] = c
	}
	for _, p := range parents {
		if id, ok := fk(p); ok {
			if c, ok := byID[id]; ok {
				assign(p, c)
			}
		}
	}
	return nil
}

// loadHasMany resolves a to-many relation keyed by a foreign key on the
// child side.
func loadHasMany[P, C any](
	ctx context.Context,
	s *session,
	cm *meta[C],
	parents []*P,
	pid func(*P) string,
	refField string,
	cref func(*C) string,
	opts *query.Options,
	assign func(*P, []*C),
) error {
	ids := make([]any, 0, len(parents))
	for _, p := range parents {
		ids = append(ids, pid(p))
	}
	if len(ids) == 0 {
		return nil
	}
	recs, err := findMany(ctx, s, cm, childOptions(opts, query.In(refField, ids...), refField))
	if err != nil {
		return err
	}
	grouped := make(map[string][]*C, len(parents))
	for _, c := range recs {
		key := cref(c)
		grouped[key] = append(grouped[key], c)
	}
	for _, p := range parents {
		assign(p, pageSlice(grouped[pid(p)], opts))
	}
	return nil
}

// loadManyToMany resolves a relation through a join table in two queries:
// the id pairs first, then the target records.
func loadManyToMany[P, C any](
	ctx context.Context,
	s *session,
	cm *meta[C],
	parents []*P,
	pid func(*P) string,
	join *schema.JoinTable,
	cid func(*C) string,
	opts *query.Options,
	assign func(*P, []*C),
) error {
	ids := make([]any, 0, len(parents))
	for _, p := range parents {
		ids = append(ids, pid(p))
	}
	if len(ids) == 0 {
		return nil
	}
	srcCol := join.Table + "." + join.SourceColumn
	tgtCol := join.Table + "." + join.TargetColumn
	sel := dsql.Dialect(s.dialect()).
		Select(srcCol, tgtCol).
		From(join.Table).
		Where(dsql.In(srcCol, ids...))
	q, args := sel.Query()
	var rows dsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return wrapDriverError(cm.entity, err)
	}
	pairs := make(map[string][]string)
	targets := make(map[string]bool)
	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			rows.Close()
			return err
		}
		pairs[src] = append(pairs[src], tgt)
		targets[tgt] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return wrapDriverError(cm.entity, err)
	}
	rows.Close()
	if len(targets) == 0 {
		for _, p := range parents {
			assign(p, nil)
		}
		return nil
	}
	targetIDs := make([]any, 0, len(targets))
	for id := range targets {
		targetIDs = append(targetIDs, id)
	}
	idField := cm.entity.ID().Fields[0]
	recs, err := findMany(ctx, s, cm, childOptions(opts, query.In(idField, targetIDs...), idField))
	if err != nil {
		return err
	}
	byID := make(map[string]*C, len(recs))
	for _, c := range recs {
		byID[cid(c)] = c
	}
	for _, p := range parents {
		linked := make(map[string]bool, len(pairs[pid(p)]))
		for _, tgt := range pairs[pid(p)] {
			linked[tgt] = true
		}
		var children []*C
		// Iterate the query result so the requested ordering survives
		// grouping.
		for _, c := range recs {
			if linked[cid(c)] {
				children = append(children, c)
			}
		}
		assign(p, pageSlice(children, opts))
	}
	return nil
}
