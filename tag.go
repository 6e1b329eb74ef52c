package gallerydb

import (
	"context"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// Tag is the model of the tags table.
type Tag struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`

	Edges TagEdges `json:"edges" msgpack:"-"`
}

// TagEdges holds the relations of a Tag.
type TagEdges struct {
	Images []*Image `json:"images,omitempty"`

	loaded [1]bool
}

// ImagesOrErr returns the images relation, or NotLoadedError if it was not
// requested on the query.
func (e TagEdges) ImagesOrErr() ([]*Image, error) {
	if e.loaded[0] {
		return e.Images, nil
	}
	return nil, NewNotLoadedError("images")
}

func scanTag(rows *dsql.Rows, fields []string) (*Tag, error) {
	t := &Tag{}
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &t.ID
		case "name":
			dest[i] = &t.Name
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return t, nil
}

var tagMeta = &meta[Tag]{
	entity: entityOf("Tag"),
	id:     func(t *Tag) string { return t.ID },
	scan:   scanTag,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { tagMeta.load = loadTagEdges }

func loadTagEdges(ctx context.Context, s *session, recs []*Tag, include Include) error {
	e := tagMeta.entity
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "images":
			r, _ := e.Relation("images")
			loads = append(loads, func(ctx context.Context) error {
				err := loadManyToMany(ctx, s, imageMeta, recs,
					func(t *Tag) string { return t.ID }, r.Join,
					func(img *Image) string { return img.ID },
					opts, func(t *Tag, imgs []*Image) { t.Edges.Images = imgs })
				return markLoaded(err, recs, func(t *Tag) { t.Edges.loaded[0] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// TagCreate is the input of Tag create operations.
type TagCreate struct {
	ID   *string
	Name string

	Images *CreateRel[ImageCreate]
}

func (c TagCreate) values() map[string]any {
	v := map[string]any{"name": c.Name}
	setIf(v, "id", c.ID)
	return v
}

func (c TagCreate) nested() func(context.Context, *session, string) error {
	if c.Images == nil {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		r, _ := tagMeta.entity.Relation("images")
		return linkMany(ctx, s, imageMeta, r.Join, id, c.Images)
	}
}

// TagUpdate is the input of Tag update operations.
type TagUpdate struct {
	Name *string

	Images *UpdateRel[ImageCreate]
}

func (u TagUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "name", u.Name)
	return v
}

func (u TagUpdate) nested() func(context.Context, *session, string) error {
	if u.Images == nil {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		r, _ := tagMeta.entity.Relation("images")
		if err := unlinkMany(ctx, s, imageMeta, r.Join, id, u.Images.Disconnect); err != nil {
			return err
		}
		return linkMany(ctx, s, imageMeta, r.Join, id, &CreateRel[ImageCreate]{
			Create:         u.Images.Create,
			Connect:        u.Images.Connect,
			SkipDuplicates: u.Images.SkipDuplicates,
		})
	}
}

// TagClient is the delegate for Tag operations.
type TagClient struct {
	s *session
}

// FindUnique returns the tag matching a unique filter, or nil when it does
// not exist. Both id and name are unique.
func (c *TagClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*Tag, error) {
	return findUnique(ctx, c.s, tagMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *TagClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*Tag, error) {
	return opFindUniqueOrThrow(ctx, c.s, tagMeta, where, optionalInclude(include))
}

// FindFirst returns the first tag matching the options, or nil.
func (c *TagClient) FindFirst(ctx context.Context, opts *query.Options) (*Tag, error) {
	return findFirst(ctx, c.s, tagMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *TagClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*Tag, error) {
	return opFindFirstOrThrow(ctx, c.s, tagMeta, opts)
}

// FindMany returns all tags matching the options.
func (c *TagClient) FindMany(ctx context.Context, opts *query.Options) ([]*Tag, error) {
	return findMany(ctx, c.s, tagMeta, opts)
}

// Create inserts a tag together with its nested relation writes and returns
// the stored record.
func (c *TagClient) Create(ctx context.Context, data TagCreate) (*Tag, error) {
	return opCreate(ctx, c.s, tagMeta, data.values(), nil, data.nested())
}

// CreateMany inserts the given tags and returns the inserted row count.
func (c *TagClient) CreateMany(ctx context.Context, data []TagCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, tagMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *TagClient) CreateManyAndReturn(ctx context.Context, data []TagCreate, skipDuplicates ...bool) ([]*Tag, error) {
	return opCreateManyAndReturn(ctx, c.s, tagMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the tag addressed by a unique filter and returns it.
func (c *TagClient) Update(ctx context.Context, where query.Expr, data TagUpdate) (*Tag, error) {
	return opUpdate(ctx, c.s, tagMeta, where, data.sets(), data.nested())
}

// UpdateMany updates all tags matching the filter and returns the count.
func (c *TagClient) UpdateMany(ctx context.Context, where query.Expr, data TagUpdate) (int64, error) {
	return updateWhere(ctx, c.s, tagMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *TagClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data TagUpdate) ([]*Tag, error) {
	return opUpdateManyAndReturn(ctx, c.s, tagMeta, where, data.sets())
}

// Upsert updates the tag addressed by the unique filter, or creates it when
// missing.
func (c *TagClient) Upsert(ctx context.Context, where query.Expr, create TagCreate, update TagUpdate) (*Tag, error) {
	return opUpsert(ctx, c.s, tagMeta, where, create.values(), nil, create.nested(), update.sets(), update.nested())
}

// Delete deletes the tag addressed by a unique filter and returns it. Join
// rows linking it to images cascade.
func (c *TagClient) Delete(ctx context.Context, where query.Expr) (*Tag, error) {
	return opDelete(ctx, c.s, tagMeta, where)
}

// DeleteMany deletes all tags matching the filter and returns the count.
func (c *TagClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, tagMeta.entity, where)
}

// Aggregate computes aggregations over the tags matching the filter.
func (c *TagClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, tagMeta.entity, a)
}

// GroupBy groups tags by the given fields and computes per-group
// aggregations.
func (c *TagClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, tagMeta.entity, g)
}

// Count returns the number of tags matching the filter.
func (c *TagClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, tagMeta.entity, where)
}

// LoadImages loads the images relation of the given tag on demand.
func (c *TagClient) LoadImages(ctx context.Context, t *Tag, opts *query.Options) ([]*Image, error) {
	r, _ := tagMeta.entity.Relation("images")
	err := loadManyToMany(ctx, c.s, imageMeta, []*Tag{t},
		func(t *Tag) string { return t.ID }, r.Join,
		func(img *Image) string { return img.ID },
		opts, func(t *Tag, imgs []*Image) { t.Edges.Images = imgs })
	if err != nil {
		return nil, err
	}
	t.Edges.loaded[0] = true
	return t.Edges.Images, nil
}
