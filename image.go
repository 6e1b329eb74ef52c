package gallerydb

import (
	"context"
	"time"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// Image is the model of the images table.
type Image struct {
	ID           string    `json:"id" msgpack:"id"`
	Title        string    `json:"title" msgpack:"title"`
	Description  *string   `json:"description,omitempty" msgpack:"description"`
	URL          string    `json:"url" msgpack:"url"`
	ThumbnailURL *string   `json:"thumbnailUrl,omitempty" msgpack:"thumbnail_url"`
	Width        *int      `json:"width,omitempty" msgpack:"width"`
	Height       *int      `json:"height,omitempty" msgpack:"height"`
	FileSize     *int      `json:"fileSize,omitempty" msgpack:"file_size"`
	MimeType     *string   `json:"mimeType,omitempty" msgpack:"mime_type"`
	UserID       string    `json:"userId" msgpack:"user_id"`
	CreatedAt    time.Time `json:"createdAt" msgpack:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" msgpack:"updated_at"`

	Edges ImageEdges `json:"edges" msgpack:"-"`
}

// ImageEdges holds the relations of an Image.
type ImageEdges struct {
	User           *User             `json:"user,omitempty"`
	Tags           []*Tag            `json:"tags,omitempty"`
	GalleryEntries []*ImageInGallery `json:"galleryEntries,omitempty"`

	loaded [3]bool
}

// UserOrErr returns the user relation, or NotLoadedError if it was not
// requested on the query.
func (e ImageEdges) UserOrErr() (*User, error) {
	if e.loaded[0] {
		return e.User, nil
	}
	return nil, NewNotLoadedError("user")
}

// TagsOrErr returns the tags relation, or NotLoadedError if it was not
// requested on the query.
func (e ImageEdges) TagsOrErr() ([]*Tag, error) {
	if e.loaded[1] {
		return e.Tags, nil
	}
	return nil, NewNotLoadedError("tags")
}

// GalleryEntriesOrErr returns the gallery entries relation, or
// NotLoadedError if it was not requested on the query.
func (e ImageEdges) GalleryEntriesOrErr() ([]*ImageInGallery, error) {
	if e.loaded[2] {
		return e.GalleryEntries, nil
	}
	return nil, NewNotLoadedError("galleryEntries")
}

func scanImage(rows *dsql.Rows, fields []string) (*Image, error) {
	img := &Image{}
	var (
		description  dsql.NullString
		thumbnailURL dsql.NullString
		width        dsql.NullInt64
		height       dsql.NullInt64
		fileSize     dsql.NullInt64
		mimeType     dsql.NullString
		createdAt    dsql.NullTime
		updatedAt    dsql.NullTime
	)
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &img.ID
		case "title":
			dest[i] = &img.Title
		case "description":
			dest[i] = &description
		case "url":
			dest[i] = &img.URL
		case "thumbnailUrl":
			dest[i] = &thumbnailURL
		case "width":
			dest[i] = &width
		case "height":
			dest[i] = &height
		case "fileSize":
			dest[i] = &fileSize
		case "mimeType":
			dest[i] = &mimeType
		case "userId":
			dest[i] = &img.UserID
		case "createdAt":
			dest[i] = &createdAt
		case "updatedAt":
			dest[i] = &updatedAt
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	if description.Valid {
		img.Description = &description.String
	}
	if thumbnailURL.Valid {
		img.ThumbnailURL = &thumbnailURL.String
	}
	if width.Valid {
		n := int(width.Int64)
		img.Width = &n
	}
	if height.Valid {
		n := int(height.Int64)
		img.Height = &n
	}
	if fileSize.Valid {
		n := int(fileSize.Int64)
		img.FileSize = &n
	}
	if mimeType.Valid {
		img.MimeType = &mimeType.String
	}
	img.CreatedAt = createdAt.Time
	img.UpdatedAt = updatedAt.Time
	return img, nil
}

var imageMeta = &meta[Image]{
	entity: entityOf("Image"),
	id:     func(img *Image) string { return img.ID },
	scan:   scanImage,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { imageMeta.load = loadImageEdges }

func loadImageEdges(ctx context.Context, s *session, recs []*Image, include Include) error {
	e := imageMeta.entity
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "user":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, userMeta, recs,
					func(img *Image) (string, bool) { return img.UserID, img.UserID != "" },
					func(u *User) string { return u.ID },
					opts, func(img *Image, u *User) { img.Edges.User = u })
				return markLoaded(err, recs, func(img *Image) { img.Edges.loaded[0] = true })
			})
		case "tags":
			r, _ := e.Relation("tags")
			loads = append(loads, func(ctx context.Context) error {
				err := loadManyToMany(ctx, s, tagMeta, recs,
					func(img *Image) string { return img.ID }, r.Join,
					func(t *Tag) string { return t.ID },
					opts, func(img *Image, ts []*Tag) { img.Edges.Tags = ts })
				return markLoaded(err, recs, func(img *Image) { img.Edges.loaded[1] = true })
			})
		case "galleryEntries":
			loads = append(loads, func(ctx context.Context) error {
				err := loadHasMany(ctx, s, imageInGalleryMeta, recs,
					func(img *Image) string { return img.ID }, "imageId",
					func(g *ImageInGallery) string { return g.ImageID },
					opts, func(img *Image, gs []*ImageInGallery) { img.Edges.GalleryEntries = gs })
				return markLoaded(err, recs, func(img *Image) { img.Edges.loaded[2] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// ImageCreate is the input of Image create operations.
type ImageCreate struct {
	ID           *string
	Title        string
	Description  *string
	URL          string
	ThumbnailURL *string
	Width        *int
	Height       *int
	FileSize     *int
	MimeType     *string
	UserID       *string

	User *CreateOneRel[UserCreate]
	Tags *CreateRel[TagCreate]
}

func (c ImageCreate) values() map[string]any {
	v := map[string]any{"title": c.Title, "url": c.URL}
	setIf(v, "id", c.ID)
	setIf(v, "description", c.Description)
	setIf(v, "thumbnailUrl", c.ThumbnailURL)
	setIf(v, "width", c.Width)
	setIf(v, "height", c.Height)
	setIf(v, "fileSize", c.FileSize)
	setIf(v, "mimeType", c.MimeType)
	setIf(v, "userId", c.UserID)
	return v
}

func (c ImageCreate) userPre(values map[string]any) func(context.Context, *session) error {
	if c.User == nil {
		return nil
	}
	return func(ctx context.Context, s *session) error {
		id, err := resolveOne(ctx, s, userMeta, c.User)
		if err != nil {
			return err
		}
		values["userId"] = id
		return nil
	}
}

func (c ImageCreate) nested() func(context.Context, *session, string) error {
	if c.Tags == nil {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		r, _ := imageMeta.entity.Relation("tags")
		return linkMany(ctx, s, tagMeta, r.Join, id, c.Tags)
	}
}

// ImageUpdate is the input of Image update operations.
type ImageUpdate struct {
	Title        *string
	Description  *string
	URL          *string
	ThumbnailURL *string
	Width        *int
	Height       *int
	FileSize     *int
	MimeType     *string
	UserID       *string

	Tags *UpdateRel[TagCreate]

	Clear []string
}

func (u ImageUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "title", u.Title)
	setIf(v, "description", u.Description)
	setIf(v, "url", u.URL)
	setIf(v, "thumbnailUrl", u.ThumbnailURL)
	setIf(v, "width", u.Width)
	setIf(v, "height", u.Height)
	setIf(v, "fileSize", u.FileSize)
	setIf(v, "mimeType", u.MimeType)
	setIf(v, "userId", u.UserID)
	for _, f := range u.Clear {
		v[f] = nil
	}
	return v
}

func (u ImageUpdate) nested() func(context.Context, *session, string) error {
	if u.Tags == nil {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		r, _ := imageMeta.entity.Relation("tags")
		if err := unlinkMany(ctx, s, tagMeta, r.Join, id, u.Tags.Disconnect); err != nil {
			return err
		}
		return linkMany(ctx, s, tagMeta, r.Join, id, &CreateRel[TagCreate]{
			Create:         u.Tags.Create,
			Connect:        u.Tags.Connect,
			SkipDuplicates: u.Tags.SkipDuplicates,
		})
	}
}

// ImageClient is the delegate for Image operations.
type ImageClient struct {
	s *session
}

// FindUnique returns the image matching a unique filter, or nil when it does
// not exist.
func (c *ImageClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*Image, error) {
	return findUnique(ctx, c.s, imageMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *ImageClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*Image, error) {
	return opFindUniqueOrThrow(ctx, c.s, imageMeta, where, optionalInclude(include))
}

// FindFirst returns the first image matching the options, or nil.
func (c *ImageClient) FindFirst(ctx context.Context, opts *query.Options) (*Image, error) {
	return findFirst(ctx, c.s, imageMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *ImageClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*Image, error) {
	return opFindFirstOrThrow(ctx, c.s, imageMeta, opts)
}

// FindMany returns all images matching the options.
func (c *ImageClient) FindMany(ctx context.Context, opts *query.Options) ([]*Image, error) {
	return findMany(ctx, c.s, imageMeta, opts)
}

// Create inserts an image together with its nested relation writes and
// returns the stored record.
func (c *ImageClient) Create(ctx context.Context, data ImageCreate) (*Image, error) {
	values := data.values()
	return opCreate(ctx, c.s, imageMeta, values, data.userPre(values), data.nested())
}

// CreateMany inserts the given images and returns the inserted row count.
func (c *ImageClient) CreateMany(ctx context.Context, data []ImageCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, imageMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *ImageClient) CreateManyAndReturn(ctx context.Context, data []ImageCreate, skipDuplicates ...bool) ([]*Image, error) {
	return opCreateManyAndReturn(ctx, c.s, imageMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the image addressed by a unique filter and returns it.
func (c *ImageClient) Update(ctx context.Context, where query.Expr, data ImageUpdate) (*Image, error) {
	return opUpdate(ctx, c.s, imageMeta, where, data.sets(), data.nested())
}

// UpdateMany updates all images matching the filter and returns the count.
func (c *ImageClient) UpdateMany(ctx context.Context, where query.Expr, data ImageUpdate) (int64, error) {
	return updateWhere(ctx, c.s, imageMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *ImageClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data ImageUpdate) ([]*Image, error) {
	return opUpdateManyAndReturn(ctx, c.s, imageMeta, where, data.sets())
}

// Upsert updates the image addressed by the unique filter, or creates it
// when missing.
func (c *ImageClient) Upsert(ctx context.Context, where query.Expr, create ImageCreate, update ImageUpdate) (*Image, error) {
	values := create.values()
	return opUpsert(ctx, c.s, imageMeta, where, values, create.userPre(values), create.nested(), update.sets(), update.nested())
}

// Delete deletes the image addressed by a unique filter and returns it.
// Gallery entries referencing the image cascade; galleries using it as a
// cover have their coverImageId set to NULL.
func (c *ImageClient) Delete(ctx context.Context, where query.Expr) (*Image, error) {
	return opDelete(ctx, c.s, imageMeta, where)
}

// DeleteMany deletes all images matching the filter and returns the count.
func (c *ImageClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, imageMeta.entity, where)
}

// Aggregate computes aggregations over the images matching the filter.
func (c *ImageClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, imageMeta.entity, a)
}

// GroupBy groups images by the given fields and computes per-group
// aggregations.
func (c *ImageClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, imageMeta.entity, g)
}

// Count returns the number of images matching the filter.
func (c *ImageClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, imageMeta.entity, where)
}

// LoadTags loads the tags relation of the given image on demand.
func (c *ImageClient) LoadTags(ctx context.Context, img *Image, opts *query.Options) ([]*Tag, error) {
	r, _ := imageMeta.entity.Relation("tags")
	err := loadManyToMany(ctx, c.s, tagMeta, []*Image{img},
		func(img *Image) string { return img.ID }, r.Join,
		func(t *Tag) string { return t.ID },
		opts, func(img *Image, ts []*Tag) { img.Edges.Tags = ts })
	if err != nil {
		return nil, err
	}
	img.Edges.loaded[1] = true
	return img.Edges.Tags, nil
}

// LoadGalleryEntries loads the gallery entries relation of the given image on
// demand.
func (c *ImageClient) LoadGalleryEntries(ctx context.Context, img *Image, opts *query.Options) ([]*ImageInGallery, error) {
	recs, err := findMany(ctx, c.s, imageInGalleryMeta, withFilter(opts, query.EQ("imageId", img.ID)))
	if err != nil {
		return nil, err
	}
	img.Edges.GalleryEntries = recs
	img.Edges.loaded[2] = true
	return recs, nil
}
