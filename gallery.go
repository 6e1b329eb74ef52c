package gallerydb

import (
	"context"
	"time"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// Gallery is the model of the galleries table.
type Gallery struct {
	ID                 string    `json:"id" msgpack:"id"`
	Title              string    `json:"title" msgpack:"title"`
	Description        *string   `json:"description,omitempty" msgpack:"description"`
	Slug               string    `json:"slug" msgpack:"slug"`
	IsPublic           bool      `json:"isPublic" msgpack:"is_public"`
	CoverImageID       *string   `json:"coverImageId,omitempty" msgpack:"cover_image_id"`
	ThemeColor         *string   `json:"themeColor,omitempty" msgpack:"theme_color"`
	BackgroundColor    *string   `json:"backgroundColor,omitempty" msgpack:"background_color"`
	BackgroundImageURL *string   `json:"backgroundImageUrl,omitempty" msgpack:"background_image_url"`
	AccentColor        *string   `json:"accentColor,omitempty" msgpack:"accent_color"`
	FontFamily         *string   `json:"fontFamily,omitempty" msgpack:"font_family"`
	DisplayMode        *string   `json:"displayMode,omitempty" msgpack:"display_mode"`
	LayoutType         *string   `json:"layoutType,omitempty" msgpack:"layout_type"`
	UserID             string    `json:"userId" msgpack:"user_id"`
	CreatedAt          time.Time `json:"createdAt" msgpack:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" msgpack:"updated_at"`

	Edges GalleryEdges `json:"edges" msgpack:"-"`
}

// GalleryEdges holds the relations of a Gallery.
type GalleryEdges struct {
	User       *User             `json:"user,omitempty"`
	CoverImage *Image            `json:"coverImage,omitempty"`
	Entries    []*ImageInGallery `json:"entries,omitempty"`

	loaded [3]bool
}

// UserOrErr returns the user relation, or NotLoadedError if it was not
// requested on the query.
func (e GalleryEdges) UserOrErr() (*User, error) {
	if e.loaded[0] {
		return e.User, nil
	}
	return nil, NewNotLoadedError("user")
}

// CoverImageOrErr returns the cover image relation, or NotLoadedError if it
// was not requested on the query. A loaded nil means the gallery has no
// cover.
func (e GalleryEdges) CoverImageOrErr() (*Image, error) {
	if e.loaded[1] {
		return e.CoverImage, nil
	}
	return nil, NewNotLoadedError("coverImage")
}

// EntriesOrErr returns the entries relation, or NotLoadedError if it was not
// requested on the query.
func (e GalleryEdges) EntriesOrErr() ([]*ImageInGallery, error) {
	if e.loaded[2] {
		return e.Entries, nil
	}
	return nil, NewNotLoadedError("entries")
}

func scanGallery(rows *dsql.Rows, fields []string) (*Gallery, error) {
	g := &Gallery{}
	var (
		description        dsql.NullString
		isPublic           dsql.NullBool
		coverImageID       dsql.NullString
		themeColor         dsql.NullString
		backgroundColor    dsql.NullString
		backgroundImageURL dsql.NullString
		accentColor        dsql.NullString
		fontFamily         dsql.NullString
		displayMode        dsql.NullString
		layoutType         dsql.NullString
		createdAt          dsql.NullTime
		updatedAt          dsql.NullTime
	)
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &g.ID
		case "title":
			dest[i] = &g.Title
		case "description":
			dest[i] = &description
		case "slug":
			dest[i] = &g.Slug
		case "isPublic":
			dest[i] = &isPublic
		case "coverImageId":
			dest[i] = &coverImageID
		case "themeColor":
			dest[i] = &themeColor
		case "backgroundColor":
			dest[i] = &backgroundColor
		case "backgroundImageUrl":
			dest[i] = &backgroundImageURL
		case "accentColor":
			dest[i] = &accentColor
		case "fontFamily":
			dest[i] = &fontFamily
		case "displayMode":
			dest[i] = &displayMode
		case "layoutType":
			dest[i] = &layoutType
		case "userId":
			dest[i] = &g.UserID
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
		g.Description = &description.String
	}
	g.IsPublic = isPublic.Bool
	if coverImageID.Valid {
		g.CoverImageID = &coverImageID.String
	}
	if themeColor.Valid {
		g.ThemeColor = &themeColor.String
	}
	if backgroundColor.Valid {
		g.BackgroundColor = &backgroundColor.String
	}
	if backgroundImageURL.Valid {
		g.BackgroundImageURL = &backgroundImageURL.String
	}
	if accentColor.Valid {
		g.AccentColor = &accentColor.String
	}
	if fontFamily.Valid {
		g.FontFamily = &fontFamily.String
	}
	if displayMode.Valid {
		g.DisplayMode = &displayMode.String
	}
	if layoutType.Valid {
		g.LayoutType = &layoutType.String
	}
	g.CreatedAt = createdAt.Time
	g.UpdatedAt = updatedAt.Time
	return g, nil
}

var galleryMeta = &meta[Gallery]{
	entity: entityOf("Gallery"),
	id:     func(g *Gallery) string { return g.ID },
	scan:   scanGallery,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { galleryMeta.load = loadGalleryEdges }

func loadGalleryEdges(ctx context.Context, s *session, recs []*Gallery, include Include) error {
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "user":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, userMeta, recs,
					func(g *Gallery) (string, bool) { return g.UserID, g.UserID != "" },
					func(u *User) string { return u.ID },
					opts, func(g *Gallery, u *User) { g.Edges.User = u })
				return markLoaded(err, recs, func(g *Gallery) { g.Edges.loaded[0] = true })
			})
		case "coverImage":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, imageMeta, recs,
					func(g *Gallery) (string, bool) {
						if g.CoverImageID == nil {
							return "", false
						}
						return *g.CoverImageID, true
					},
					func(img *Image) string { return img.ID },
					opts, func(g *Gallery, img *Image) { g.Edges.CoverImage = img })
				return markLoaded(err, recs, func(g *Gallery) { g.Edges.loaded[1] = true })
			})
		case "entries":
			loads = append(loads, func(ctx context.Context) error {
				err := loadHasMany(ctx, s, imageInGalleryMeta, recs,
					func(g *Gallery) string { return g.ID }, "galleryId",
					func(entry *ImageInGallery) string { return entry.GalleryID },
					opts, func(g *Gallery, entries []*ImageInGallery) { g.Edges.Entries = entries })
				return markLoaded(err, recs, func(g *Gallery) { g.Edges.loaded[2] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// GalleryCreate is the input of Gallery create operations.
type GalleryCreate struct {
	ID                 *string
	Title              string
	Description        *string
	Slug               string
	IsPublic           *bool
	CoverImageID       *string
	ThemeColor         *string
	BackgroundColor    *string
	BackgroundImageURL *string
	AccentColor        *string
	FontFamily         *string
	DisplayMode        *string
	LayoutType         *string
	UserID             *string

	User    *CreateOneRel[UserCreate]
	Entries *CreateRel[ImageInGalleryCreate]
}

func (c GalleryCreate) values() map[string]any {
	v := map[string]any{
		"title": c.Title,
		"slug":  c.Slug,
	}
	setIf(v, "id", c.ID)
	setIf(v, "description", c.Description)
	setIf(v, "isPublic", c.IsPublic)
	setIf(v, "coverImageId", c.CoverImageID)
	setIf(v, "themeColor", c.ThemeColor)
	setIf(v, "backgroundColor", c.BackgroundColor)
	setIf(v, "backgroundImageUrl", c.BackgroundImageURL)
	setIf(v, "accentColor", c.AccentColor)
	setIf(v, "fontFamily", c.FontFamily)
	setIf(v, "displayMode", c.DisplayMode)
	setIf(v, "layoutType", c.LayoutType)
	setIf(v, "userId", c.UserID)
	return v
}

func (c GalleryCreate) userPre(values map[string]any) func(context.Context, *session) error {
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

func (c GalleryCreate) nested() func(context.Context, *session, string) error {
	if c.Entries == nil {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		return createChildren(ctx, s, imageInGalleryMeta, "galleryId", id, c.Entries)
	}
}

// GalleryUpdate is the input of Gallery update operations.
type GalleryUpdate struct {
	Title              *string
	Description        *string
	Slug               *string
	IsPublic           *bool
	CoverImageID       *string
	ThemeColor         *string
	BackgroundColor    *string
	BackgroundImageURL *string
	AccentColor        *string
	FontFamily         *string
	DisplayMode        *string
	LayoutType         *string
	UserID             *string

	CoverImage *UpdateOneRel[ImageCreate]

	Clear []string
}

func (u GalleryUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "title", u.Title)
	setIf(v, "description", u.Description)
	setIf(v, "slug", u.Slug)
	setIf(v, "isPublic", u.IsPublic)
	setIf(v, "coverImageId", u.CoverImageID)
	setIf(v, "themeColor", u.ThemeColor)
	setIf(v, "backgroundColor", u.BackgroundColor)
	setIf(v, "backgroundImageUrl", u.BackgroundImageURL)
	setIf(v, "accentColor", u.AccentColor)
	setIf(v, "fontFamily", u.FontFamily)
	setIf(v, "displayMode", u.DisplayMode)
	setIf(v, "layoutType", u.LayoutType)
	setIf(v, "userId", u.UserID)
	if u.CoverImage != nil && u.CoverImage.Disconnect {
		v["coverImageId"] = nil
	}
	for _, f := range u.Clear {
		v[f] = nil
	}
	return v
}

func (u GalleryUpdate) nested() func(context.Context, *session, string) error {
	if u.CoverImage == nil || (u.CoverImage.Create == nil && u.CoverImage.Connect == nil) {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		imgID, err := resolveOne(ctx, s, imageMeta, &CreateOneRel[ImageCreate]{
			Create:  u.CoverImage.Create,
			Connect: u.CoverImage.Connect,
		})
		if err != nil {
			return err
		}
		idField := galleryMeta.entity.ID().Fields[0]
		_, err = updateWhere(ctx, s, galleryMeta.entity, query.EQ(idField, id), map[string]any{"coverImageId": imgID})
		return err
	}
}

// GalleryClient is the delegate for Gallery operations.
type GalleryClient struct {
	s *session
}

// FindUnique returns the gallery matching a unique filter, or nil when it
// does not exist. Both id and slug are unique.
func (c *GalleryClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*Gallery, error) {
	return findUnique(ctx, c.s, galleryMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *GalleryClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*Gallery, error) {
	return opFindUniqueOrThrow(ctx, c.s, galleryMeta, where, optionalInclude(include))
}

// FindFirst returns the first gallery matching the options, or nil.
func (c *GalleryClient) FindFirst(ctx context.Context, opts *query.Options) (*Gallery, error) {
	return findFirst(ctx, c.s, galleryMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *GalleryClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*Gallery, error) {
	return opFindFirstOrThrow(ctx, c.s, galleryMeta, opts)
}

// FindMany returns all galleries matching the options.
func (c *GalleryClient) FindMany(ctx context.Context, opts *query.Options) ([]*Gallery, error) {
	return findMany(ctx, c.s, galleryMeta, opts)
}

// Create inserts a gallery together with its nested relation writes and
// returns the stored record.
func (c *GalleryClient) Create(ctx context.Context, data GalleryCreate) (*Gallery, error) {
	values := data.values()
	return opCreate(ctx, c.s, galleryMeta, values, data.userPre(values), data.nested())
}

// CreateMany inserts the given galleries and returns the inserted row count.
func (c *GalleryClient) CreateMany(ctx context.Context, data []GalleryCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, galleryMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *GalleryClient) CreateManyAndReturn(ctx context.Context, data []GalleryCreate, skipDuplicates ...bool) ([]*Gallery, error) {
	return opCreateManyAndReturn(ctx, c.s, galleryMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the gallery addressed by a unique filter and returns it.
func (c *GalleryClient) Update(ctx context.Context, where query.Expr, data GalleryUpdate) (*Gallery, error) {
	return opUpdate(ctx, c.s, galleryMeta, where, data.sets(), data.nested())
}

// UpdateMany updates all galleries matching the filter and returns the
// count.
func (c *GalleryClient) UpdateMany(ctx context.Context, where query.Expr, data GalleryUpdate) (int64, error) {
	return updateWhere(ctx, c.s, galleryMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *GalleryClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data GalleryUpdate) ([]*Gallery, error) {
	return opUpdateManyAndReturn(ctx, c.s, galleryMeta, where, data.sets())
}

// Upsert updates the gallery addressed by the unique filter, or creates it
// when missing.
func (c *GalleryClient) Upsert(ctx context.Context, where query.Expr, create GalleryCreate, update GalleryUpdate) (*Gallery, error) {
	values := create.values()
	return opUpsert(ctx, c.s, galleryMeta, where, values, create.userPre(values), create.nested(), update.sets(), update.nested())
}

// Delete deletes the gallery addressed by a unique filter and returns it.
// Its entries cascade.
func (c *GalleryClient) Delete(ctx context.Context, where query.Expr) (*Gallery, error) {
	return opDelete(ctx, c.s, galleryMeta, where)
}

// DeleteMany deletes all galleries matching the filter and returns the
// count.
func (c *GalleryClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, galleryMeta.entity, where)
}

// Aggregate computes aggregations over the galleries matching the filter.
func (c *GalleryClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, galleryMeta.entity, a)
}

// GroupBy groups galleries by the given fields and computes per-group
// aggregations.
func (c *GalleryClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, galleryMeta.entity, g)
}

// Count returns the number of galleries matching the filter.
func (c *GalleryClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, galleryMeta.entity, where)
}

// LoadEntries loads the entries relation of the given gallery on demand.
func (c *GalleryClient) LoadEntries(ctx context.Context, g *Gallery, opts *query.Options) ([]*ImageInGallery, error) {
	recs, err := findMany(ctx, c.s, imageInGalleryMeta, withFilter(opts, query.EQ("galleryId", g.ID)))
	if err != nil {
		return nil, err
	}
	g.Edges.Entries = recs
	g.Edges.loaded[2] = true
	return recs, nil
}
