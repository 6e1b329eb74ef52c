package gallerydb

import (
	"context"
	"time"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// ImageInGallery is the model of the image_in_galleries table. It places an
// image inside a gallery at a position; the (imageId, galleryId) pair is
// unique.
type ImageInGallery struct {
	ID          string    `json:"id" msgpack:"id"`
	ImageID     string    `json:"imageId" msgpack:"image_id"`
	GalleryID   string    `json:"galleryId" msgpack:"gallery_id"`
	Order       int       `json:"order" msgpack:"order"`
	Description *string   `json:"description,omitempty" msgpack:"description"`
	CreatedAt   time.Time `json:"createdAt" msgpack:"created_at"`

	Edges ImageInGalleryEdges `json:"edges" msgpack:"-"`
}

// ImageInGalleryEdges holds the relations of an ImageInGallery.
type ImageInGalleryEdges struct {
	Image   *Image   `json:"image,omitempty"`
	Gallery *Gallery `json:"gallery,omitempty"`

	loaded [2]bool
}

// ImageOrErr returns the image relation, or NotLoadedError if it was not
// requested on the query.
func (e ImageInGalleryEdges) ImageOrErr() (*Image, error) {
	if e.loaded[0] {
		return e.Image, nil
	}
	return nil, NewNotLoadedError("image")
}

// GalleryOrErr returns the gallery relation, or NotLoadedError if it was not
// requested on the query.
func (e ImageInGalleryEdges) GalleryOrErr() (*Gallery, error) {
	if e.loaded[1] {
		return e.Gallery, nil
	}
	return nil, NewNotLoadedError("gallery")
}

func scanImageInGallery(rows *dsql.Rows, fields []string) (*ImageInGallery, error) {
	entry := &ImageInGallery{}
	var (
		order       dsql.NullInt64
		description dsql.NullString
		createdAt   dsql.NullTime
	)
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &entry.ID
		case "imageId":
			dest[i] = &entry.ImageID
		case "galleryId":
			dest[i] = &entry.GalleryID
		case "order":
			dest[i] = &order
		case "description":
			dest[i] = &description
		case "createdAt":
			dest[i] = &createdAt
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	entry.Order = int(order.Int64)
	if description.Valid {
		entry.Description = &description.String
	}
	entry.CreatedAt = createdAt.Time
	return entry, nil
}

var imageInGalleryMeta = &meta[ImageInGallery]{
	entity: entityOf("ImageInGallery"),
	id:     func(entry *ImageInGallery) string { return entry.ID },
	scan:   scanImageInGallery,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { imageInGalleryMeta.load = loadImageInGalleryEdges }

func loadImageInGalleryEdges(ctx context.Context, s *session, recs []*ImageInGallery, include Include) error {
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "image":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, imageMeta, recs,
					func(entry *ImageInGallery) (string, bool) { return entry.ImageID, entry.ImageID != "" },
					func(img *Image) string { return img.ID },
					opts, func(entry *ImageInGallery, img *Image) { entry.Edges.Image = img })
				return markLoaded(err, recs, func(entry *ImageInGallery) { entry.Edges.loaded[0] = true })
			})
		case "gallery":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, galleryMeta, recs,
					func(entry *ImageInGallery) (string, bool) { return entry.GalleryID, entry.GalleryID != "" },
					func(g *Gallery) string { return g.ID },
					opts, func(entry *ImageInGallery, g *Gallery) { entry.Edges.Gallery = g })
				return markLoaded(err, recs, func(entry *ImageInGallery) { entry.Edges.loaded[1] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// ImageInGalleryCreate is the input of ImageInGallery create operations.
type ImageInGalleryCreate struct {
	ID          *string
	ImageID     *string
	GalleryID   *string
	Order       *int
	Description *string

	Image   *CreateOneRel[ImageCreate]
	Gallery *CreateOneRel[GalleryCreate]
}

func (c ImageInGalleryCreate) values() map[string]any {
	v := map[string]any{}
	setIf(v, "id", c.ID)
	setIf(v, "imageId", c.ImageID)
	setIf(v, "galleryId", c.GalleryID)
	setIf(v, "order", c.Order)
	setIf(v, "description", c.Description)
	return v
}

func (c ImageInGalleryCreate) pre(values map[string]any) func(context.Context, *session) error {
	if c.Image == nil && c.Gallery == nil {
		return nil
	}
	return func(ctx context.Context, s *session) error {
		if c.Image != nil {
			id, err := resolveOne(ctx, s, imageMeta, c.Image)
			if err != nil {
				return err
			}
			values["imageId"] = id
		}
		if c.Gallery != nil {
			id, err := resolveOne(ctx, s, galleryMeta, c.Gallery)
			if err != nil {
				return err
			}
			values["galleryId"] = id
		}
		return nil
	}
}

// ImageInGalleryUpdate is the input of ImageInGallery update operations.
type ImageInGalleryUpdate struct {
	ImageID     *string
	GalleryID   *string
	Order       *int
	Description *string

	Clear []string
}

func (u ImageInGalleryUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "imageId", u.ImageID)
	setIf(v, "galleryId", u.GalleryID)
	setIf(v, "order", u.Order)
	setIf(v, "description", u.Description)
	for _, f := range u.Clear {
		v[f] = nil
	}
	return v
}

// ImageInGalleryClient is the delegate for ImageInGallery operations.
type ImageInGalleryClient struct {
	s *session
}

// FindUnique returns the entry matching a unique filter, or nil when it does
// not exist. The compound (imageId, galleryId) pair is a valid unique
// filter.
func (c *ImageInGalleryClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*ImageInGallery, error) {
	return findUnique(ctx, c.s, imageInGalleryMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *ImageInGalleryClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*ImageInGallery, error) {
	return opFindUniqueOrThrow(ctx, c.s, imageInGalleryMeta, where, optionalInclude(include))
}

// FindFirst returns the first entry matching the options, or nil.
func (c *ImageInGalleryClient) FindFirst(ctx context.Context, opts *query.Options) (*ImageInGallery, error) {
	return findFirst(ctx, c.s, imageInGalleryMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *ImageInGalleryClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*ImageInGallery, error) {
	return opFindFirstOrThrow(ctx, c.s, imageInGalleryMeta, opts)
}

// FindMany returns all entries matching the options.
func (c *ImageInGalleryClient) FindMany(ctx context.Context, opts *query.Options) ([]*ImageInGallery, error) {
	return findMany(ctx, c.s, imageInGalleryMeta, opts)
}

// Create inserts an entry and returns the stored record.
func (c *ImageInGalleryClient) Create(ctx context.Context, data ImageInGalleryCreate) (*ImageInGallery, error) {
	values := data.values()
	return opCreate(ctx, c.s, imageInGalleryMeta, values, data.pre(values), nil)
}

// CreateMany inserts the given entries and returns the inserted row count.
func (c *ImageInGalleryClient) CreateMany(ctx context.Context, data []ImageInGalleryCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, imageInGalleryMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *ImageInGalleryClient) CreateManyAndReturn(ctx context.Context, data []ImageInGalleryCreate, skipDuplicates ...bool) ([]*ImageInGallery, error) {
	return opCreateManyAndReturn(ctx, c.s, imageInGalleryMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the entry addressed by a unique filter and returns it.
func (c *ImageInGalleryClient) Update(ctx context.Context, where query.Expr, data ImageInGalleryUpdate) (*ImageInGallery, error) {
	return opUpdate(ctx, c.s, imageInGalleryMeta, where, data.sets(), nil)
}

// UpdateMany updates all entries matching the filter and returns the count.
func (c *ImageInGalleryClient) UpdateMany(ctx context.Context, where query.Expr, data ImageInGalleryUpdate) (int64, error) {
	return updateWhere(ctx, c.s, imageInGalleryMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *ImageInGalleryClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data ImageInGalleryUpdate) ([]*ImageInGallery, error) {
	return opUpdateManyAndReturn(ctx, c.s, imageInGalleryMeta, where, data.sets())
}

// Upsert updates the entry addressed by the unique filter, or creates it
// when missing.
func (c *ImageInGalleryClient) Upsert(ctx context.Context, where query.Expr, create ImageInGalleryCreate, update ImageInGalleryUpdate) (*ImageInGallery, error) {
	values := create.values()
	return opUpsert(ctx, c.s, imageInGalleryMeta, where, values, create.pre(values), nil, update.sets(), nil)
}

// Delete deletes the entry addressed by a unique filter and returns it.
func (c *ImageInGalleryClient) Delete(ctx context.Context, where query.Expr) (*ImageInGallery, error) {
	return opDelete(ctx, c.s, imageInGalleryMeta, where)
}

// DeleteMany deletes all entries matching the filter and returns the count.
func (c *ImageInGalleryClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, imageInGalleryMeta.entity, where)
}

// Aggregate computes aggregations over the entries matching the filter.
func (c *ImageInGalleryClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, imageInGalleryMeta.entity, a)
}

// GroupBy groups entries by the given fields and computes per-group
// aggregations.
func (c *ImageInGalleryClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, imageInGalleryMeta.entity, g)
}

// Count returns the number of entries matching the filter.
func (c *ImageInGalleryClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, imageInGalleryMeta.entity, where)
}
