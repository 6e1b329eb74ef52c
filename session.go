package gallerydb

import (
	"context"
	"time"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// Session is the model of the sessions table.
type Session struct {
	ID           string    `json:"id" msgpack:"id"`
	SessionToken string    `json:"sessionToken" msgpack:"session_token"`
	UserID       string    `json:"userId" msgpack:"user_id"`
	Expires      time.Time `json:"expires" msgpack:"expires"`

	Edges SessionEdges `json:"edges" msgpack:"-"`
}

// SessionEdges holds the relations of a Session.
type SessionEdges struct {
	User *User `json:"user,omitempty"`

	loaded [1]bool
}

// UserOrErr returns the user relation, or NotLoadedError if it was not
// requested on the query.
func (e SessionEdges) UserOrErr() (*User, error) {
	if e.loaded[0] {
		return e.User, nil
	}
	return nil, NewNotLoadedError("user")
}

func scanSession(rows *dsql.Rows, fields []string) (*Session, error) {
	sn := &Session{}
	var expires dsql.NullTime
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &sn.ID
		case "sessionToken":
			dest[i] = &sn.SessionToken
		case "userId":
			dest[i] = &sn.UserID
		case "expires":
			dest[i] = &expires
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	sn.Expires = expires.Time
	return sn, nil
}

var sessionMeta = &meta[Session]{
	entity: entityOf("Session"),
	id:     func(sn *Session) string { return sn.ID },
	scan:   scanSession,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { sessionMeta.load = loadSessionEdges }

func loadSessionEdges(ctx context.Context, s *session, recs []*Session, include Include) error {
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "user":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, userMeta, recs,
					func(sn *Session) (string, bool) { return sn.UserID, sn.UserID != "" },
					func(u *User) string { return u.ID },
					opts, func(sn *Session, u *User) { sn.Edges.User = u })
				return markLoaded(err, recs, func(sn *Session) { sn.Edges.loaded[0] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// SessionCreate is the input of Session create operations.
type SessionCreate struct {
	ID           *string
	SessionToken string
	UserID       *string
	Expires      time.Time

	User *CreateOneRel[UserCreate]
}

func (c SessionCreate) values() map[string]any {
	v := map[string]any{
		"sessionToken": c.SessionToken,
		"expires":      c.Expires,
	}
	setIf(v, "id", c.ID)
	setIf(v, "userId", c.UserID)
	return v
}

func (c SessionCreate) userPre(values map[string]any) func(context.Context, *session) error {
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

// SessionUpdate is the input of Session update operations.
type SessionUpdate struct {
	SessionToken *string
	UserID       *string
	Expires      *time.Time
}

func (u SessionUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "sessionToken", u.SessionToken)
	setIf(v, "userId", u.UserID)
	setIf(v, "expires", u.Expires)
	return v
}

// SessionClient is the delegate for Session operations.
type SessionClient struct {
	s *session
}

// FindUnique returns the session matching a unique filter, or nil when it
// does not exist.
func (c *SessionClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*Session, error) {
	return findUnique(ctx, c.s, sessionMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *SessionClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*Session, error) {
	return opFindUniqueOrThrow(ctx, c.s, sessionMeta, where, optionalInclude(include))
}

// FindFirst returns the first session matching the options, or nil.
func (c *SessionClient) FindFirst(ctx context.Context, opts *query.Options) (*Session, error) {
	return findFirst(ctx, c.s, sessionMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *SessionClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*Session, error) {
	return opFindFirstOrThrow(ctx, c.s, sessionMeta, opts)
}

// FindMany returns all sessions matching the options.
func (c *SessionClient) FindMany(ctx context.Context, opts *query.Options) ([]*Session, error) {
	return findMany(ctx, c.s, sessionMeta, opts)
}

// Create inserts a session and returns the stored record.
func (c *SessionClient) Create(ctx context.Context, data SessionCreate) (*Session, error) {
	values := data.values()
	return opCreate(ctx, c.s, sessionMeta, values, data.userPre(values), nil)
}

// CreateMany inserts the given sessions and returns the inserted row count.
func (c *SessionClient) CreateMany(ctx context.Context, data []SessionCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, sessionMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *SessionClient) CreateManyAndReturn(ctx context.Context, data []SessionCreate, skipDuplicates ...bool) ([]*Session, error) {
	return opCreateManyAndReturn(ctx, c.s, sessionMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the session addressed by a unique filter and returns it.
func (c *SessionClient) Update(ctx context.Context, where query.Expr, data SessionUpdate) (*Session, error) {
	return opUpdate(ctx, c.s, sessionMeta, where, data.sets(), nil)
}

// UpdateMany updates all sessions matching the filter and returns the count.
func (c *SessionClient) UpdateMany(ctx context.Context, where query.Expr, data SessionUpdate) (int64, error) {
	return updateWhere(ctx, c.s, sessionMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *SessionClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data SessionUpdate) ([]*Session, error) {
	return opUpdateManyAndReturn(ctx, c.s, sessionMeta, where, data.sets())
}

// Upsert updates the session addressed by the unique filter, or creates it
// when missing.
func (c *SessionClient) Upsert(ctx context.Context, where query.Expr, create SessionCreate, update SessionUpdate) (*Session, error) {
	values := create.values()
	return opUpsert(ctx, c.s, sessionMeta, where, values, create.userPre(values), nil, update.sets(), nil)
}

// Delete deletes the session addressed by a unique filter and returns it.
func (c *SessionClient) Delete(ctx context.Context, where query.Expr) (*Session, error) {
	return opDelete(ctx, c.s, sessionMeta, where)
}

// DeleteMany deletes all sessions matching the filter and returns the count.
func (c *SessionClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, sessionMeta.entity, where)
}

// Aggregate computes aggregations over the sessions matching the filter.
func (c *SessionClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, sessionMeta.entity, a)
}

// GroupBy groups sessions by the given fields and computes per-group
// aggregations.
func (c *SessionClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, sessionMeta.entity, g)
}

// Count returns the number of sessions matching the filter.
func (c *SessionClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, sessionMeta.entity, where)
}
