package gallerydb

import (
	"context"
	"time"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// Role is the user role enum.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the model of the users table.
type User struct {
	ID            string     `json:"id" msgpack:"id"`
	Name          *string    `json:"name,omitempty" msgpack:"name"`
	Email         string     `json:"email" msgpack:"email"`
	Password      *string    `json:"-" msgpack:"password"`
	EmailVerified *time.Time `json:"emailVerified,omitempty" msgpack:"email_verified"`
	Image         *string    `json:"image,omitempty" msgpack:"image"`
	Role          Role       `json:"role" msgpack:"role"`
	CreatedAt     time.Time  `json:"createdAt" msgpack:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" msgpack:"updated_at"`

	// Edges holds the relations loaded with include.
	Edges UserEdges `json:"edges" msgpack:"-"`
}

// UserEdges holds the relations of a User.
type UserEdges struct {
	Accounts  []*Account `json:"accounts,omitempty"`
	Sessions  []*Session `json:"sessions,omitempty"`
	Images    []*Image   `json:"images,omitempty"`
	Galleries []*Gallery `json:"galleries,omitempty"`

	loaded [4]bool
}

// AccountsOrErr returns the accounts relation, or NotLoadedError if it was
// not requested on the query.
func (e UserEdges) AccountsOrErr() ([]*Account, error) {
	if e.loaded[0] {
		return e.Accounts, nil
	}
	return nil, NewNotLoadedError("accounts")
}

// SessionsOrErr returns the sessions relation, or NotLoadedError if it was
// not requested on the query.
func (e UserEdges) SessionsOrErr() ([]*Session, error) {
	if e.loaded[1] {
		return e.Sessions, nil
	}
	return nil, NewNotLoadedError("sessions")
}

// ImagesOrErr returns the images relation, or NotLoadedError if it was not
// requested on the query.
func (e UserEdges) ImagesOrErr() ([]*Image, error) {
	if e.loaded[2] {
		return e.Images, nil
	}
	return nil, NewNotLoadedError("images")
}

// GalleriesOrErr returns the galleries relation, or NotLoadedError if it was
// not requested on the query.
func (e UserEdges) GalleriesOrErr() ([]*Gallery, error) {
	if e.loaded[3] {
		return e.Galleries, nil
	}
	return nil, NewNotLoadedError("galleries")
}

func scanUser(rows *dsql.Rows, fields []string) (*User, error) {
	u := &User{}
	var (
		name          dsql.NullString
		password      dsql.NullString
		emailVerified dsql.NullTime
		image         dsql.NullString
		role          dsql.NullString
		createdAt     dsql.NullTime
		updatedAt     dsql.NullTime
	)
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &u.ID
		case "name":
			dest[i] = &name
		case "email":
			dest[i] = &u.Email
		case "password":
			dest[i] = &password
		case "emailVerified":
			dest[i] = &emailVerified
		case "image":
			dest[i] = &image
		case "role":
			dest[i] = &role
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
	if name.Valid {
		u.Name = &name.String
	}
	if password.Valid {
		u.Password = &password.String
	}
	if emailVerified.Valid {
		u.EmailVerified = &emailVerified.Time
	}
	if image.Valid {
		u.Image = &image.String
	}
	u.Role = Role(role.String)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return u, nil
}

var userMeta = &meta[User]{
	entity: entityOf("User"),
	id:     func(u *User) string { return u.ID },
	scan:   scanUser,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { userMeta.load = loadUserEdges }

func loadUserEdges(ctx context.Context, s *session, recs []*User, include Include) error {
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "accounts":
			loads = append(loads, func(ctx context.Context) error {
				err := loadHasMany(ctx, s, accountMeta, recs,
					func(u *User) string { return u.ID }, "userId",
					func(a *Account) string { return a.UserID },
					opts, func(u *User, cs []*Account) { u.Edges.Accounts = cs })
				return markLoaded(err, recs, func(u *User) { u.Edges.loaded[0] = true })
			})
		case "sessions":
			loads = append(loads, func(ctx context.Context) error {
				err := loadHasMany(ctx, s, sessionMeta, recs,
					func(u *User) string { return u.ID }, "userId",
					func(c *Session) string { return c.UserID },
					opts, func(u *User, cs []*Session) { u.Edges.Sessions = cs })
				return markLoaded(err, recs, func(u *User) { u.Edges.loaded[1] = true })
			})
		case "images":
			loads = append(loads, func(ctx context.Context) error {
				err := loadHasMany(ctx, s, imageMeta, recs,
					func(u *User) string { return u.ID }, "userId",
					func(c *Image) string { return c.UserID },
					opts, func(u *User, cs []*Image) { u.Edges.Images = cs })
				return markLoaded(err, recs, func(u *User) { u.Edges.loaded[2] = true })
			})
		case "galleries":
			loads = append(loads, func(ctx context.Context) error {
				err := loadHasMany(ctx, s, galleryMeta, recs,
					func(u *User) string { return u.ID }, "userId",
					func(c *Gallery) string { return c.UserID },
					opts, func(u *User, cs []*Gallery) { u.Edges.Galleries = cs })
				return markLoaded(err, recs, func(u *User) { u.Edges.loaded[3] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// UserCreate is the input of User create operations. Nil fields fall back to
// their defaults.
type UserCreate struct {
	ID            *string
	Name          *string
	Email         string
	Password      *string
	EmailVerified *time.Time
	Image         *string
	Role          *Role

	Accounts  *CreateRel[AccountCreate]
	Sessions  *CreateRel[SessionCreate]
	Images    *CreateRel[ImageCreate]
	Galleries *CreateRel[GalleryCreate]
}

func (c UserCreate) values() map[string]any {
	v := map[string]any{"email": c.Email}
	setIf(v, "id", c.ID)
	setIf(v, "name", c.Name)
	setIf(v, "password", c.Password)
	setIf(v, "emailVerified", c.EmailVerified)
	setIf(v, "image", c.Image)
	if c.Role != nil {
		v["role"] = string(*c.Role)
	}
	return v
}

func (c UserCreate) nested() func(context.Context, *session, string) error {
	if c.Accounts == nil && c.Sessions == nil && c.Images == nil && c.Galleries == nil {
		return nil
	}
	return func(ctx context.Context, s *session, id string) error {
		if c.Accounts != nil {
			if err := createChildren(ctx, s, accountMeta, "userId", id, c.Accounts); err != nil {
				return err
			}
		}
		if c.Sessions != nil {
			if err := createChildren(ctx, s, sessionMeta, "userId", id, c.Sessions); err != nil {
				return err
			}
		}
		if c.Images != nil {
			if err := createChildren(ctx, s, imageMeta, "userId", id, c.Images); err != nil {
				return err
			}
		}
		if c.Galleries != nil {
			if err := createChildren(ctx, s, galleryMeta, "userId", id, c.Galleries); err != nil {
				return err
			}
		}
		return nil
	}
}

// UserUpdate is the input of User update operations. Nil fields are left
// untouched; Clear sets the named nullable fields to NULL.
type UserUpdate struct {
	Name          *string
	Email         *string
	Password      *string
	EmailVerified *time.Time
	Image         *string
	Role          *Role

	Clear []string
}

func (u UserUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "name", u.Name)
	setIf(v, "email", u.Email)
	setIf(v, "password", u.Password)
	setIf(v, "emailVerified", u.EmailVerified)
	setIf(v, "image", u.Image)
	if u.Role != nil {
		v["role"] = string(*u.Role)
	}
	for _, f := range u.Clear {
		v[f] = nil
	}
	return v
}

// UserClient is the delegate for User operations.
type UserClient struct {
	s *session
}

// FindUnique returns the user matching a unique filter, or nil when it does
// not exist.
func (c *UserClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*User, error) {
	return findUnique(ctx, c.s, userMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *UserClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*User, error) {
	return opFindUniqueOrThrow(ctx, c.s, userMeta, where, optionalInclude(include))
}

// FindFirst returns the first user matching the options, or nil when none
// does.
func (c *UserClient) FindFirst(ctx context.Context, opts *query.Options) (*User, error) {
	return findFirst(ctx, c.s, userMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *UserClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*User, error) {
	return opFindFirstOrThrow(ctx, c.s, userMeta, opts)
}

// FindMany returns all users matching the options.
func (c *UserClient) FindMany(ctx context.Context, opts *query.Options) ([]*User, error) {
	return findMany(ctx, c.s, userMeta, opts)
}

// Create inserts a user together with its nested relation writes and returns
// the stored record.
func (c *UserClient) Create(ctx context.Context, data UserCreate) (*User, error) {
	return opCreate(ctx, c.s, userMeta, data.values(), nil, data.nested())
}

// CreateMany inserts the given users in one statement and returns the number
// of inserted rows. With skipDuplicates, conflicting rows are dropped.
func (c *UserClient) CreateMany(ctx context.Context, data []UserCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, userMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *UserClient) CreateManyAndReturn(ctx context.Context, data []UserCreate, skipDuplicates ...bool) ([]*User, error) {
	return opCreateManyAndReturn(ctx, c.s, userMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the user addressed by a unique filter and returns it.
// NotFoundError is returned when no record matches.
func (c *UserClient) Update(ctx context.Context, where query.Expr, data UserUpdate) (*User, error) {
	return opUpdate(ctx, c.s, userMeta, where, data.sets(), nil)
}

// UpdateMany updates all users matching the filter and returns the affected
// row count.
func (c *UserClient) UpdateMany(ctx context.Context, where query.Expr, data UserUpdate) (int64, error) {
	return updateWhere(ctx, c.s, userMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *UserClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data UserUpdate) ([]*User, error) {
	return opUpdateManyAndReturn(ctx, c.s, userMeta, where, data.sets())
}

// Upsert updates the user addressed by the unique filter, or creates it when
// missing.
func (c *UserClient) Upsert(ctx context.Context, where query.Expr, create UserCreate, update UserUpdate) (*User, error) {
	return opUpsert(ctx, c.s, userMeta, where, create.values(), nil, create.nested(), update.sets(), nil)
}

// Delete deletes the user addressed by a unique filter and returns it.
// NotFoundError is returned when no record matches.
func (c *UserClient) Delete(ctx context.Context, where query.Expr) (*User, error) {
	return opDelete(ctx, c.s, userMeta, where)
}

// DeleteMany deletes all users matching the filter and returns the count.
func (c *UserClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, userMeta.entity, where)
}

// Aggregate computes aggregations over the users matching the filter.
func (c *UserClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, userMeta.entity, a)
}

// GroupBy groups users by the given fields and computes per-group
// aggregations.
func (c *UserClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, userMeta.entity, g)
}

// Count returns the number of users matching the filter.
func (c *UserClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, userMeta.entity, where)
}

// LoadAccounts loads the accounts relation of the given user on demand.
func (c *UserClient) LoadAccounts(ctx context.Context, u *User, opts *query.Options) ([]*Account, error) {
	recs, err := findMany(ctx, c.s, accountMeta, withFilter(opts, query.EQ("userId", u.ID)))
	if err != nil {
		return nil, err
	}
	u.Edges.Accounts = recs
	u.Edges.loaded[0] = true
	return recs, nil
}

// LoadSessions loads the sessions relation of the given user on demand.
func (c *UserClient) LoadSessions(ctx context.Context, u *User, opts *query.Options) ([]*Session, error) {
	recs, err := findMany(ctx, c.s, sessionMeta, withFilter(opts, query.EQ("userId", u.ID)))
	if err != nil {
		return nil, err
	}
	u.Edges.Sessions = recs
	u.Edges.loaded[1] = true
	return recs, nil
}

// LoadGalleries loads the galleries relation of the given user on demand.
func (c *UserClient) LoadGalleries(ctx context.Context, u *User, opts *query.Options) ([]*Gallery, error) {
	recs, err := findMany(ctx, c.s, galleryMeta, withFilter(opts, query.EQ("userId", u.ID)))
	if err != nil {
		return nil, err
	}
	u.Edges.Galleries = recs
	u.Edges.loaded[3] = true
	return recs, nil
}

// LoadImages loads the images relation of the given user on demand.
func (c *UserClient) LoadImages(ctx context.Context, u *User, opts *query.Options) ([]*Image, error) {
	recs, err := findMany(ctx, c.s, imageMeta, withFilter(opts, query.EQ("userId", u.ID)))
	if err != nil {
		return nil, err
	}
	u.Edges.Images = recs
	u.Edges.loaded[2] = true
	return recs, nil
}
