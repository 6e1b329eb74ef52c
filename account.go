package gallerydb

import (
	"context"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// Account is the model of the accounts table. An account links a user to an
// external auth provider.
type Account struct {
	ID                string  `json:"id" msgpack:"id"`
	UserID            string  `json:"userId" msgpack:"user_id"`
	Type              string  `json:"type" msgpack:"type"`
	Provider          string  `json:"provider" msgpack:"provider"`
	ProviderAccountID string  `json:"providerAccountId" msgpack:"provider_account_id"`
	RefreshToken      *string `json:"refreshToken,omitempty" msgpack:"refresh_token"`
	AccessToken       *string `json:"accessToken,omitempty" msgpack:"access_token"`
	ExpiresAt         *int    `json:"expiresAt,omitempty" msgpack:"expires_at"`
	TokenType         *string `json:"tokenType,omitempty" msgpack:"token_type"`
	Scope             *string `json:"scope,omitempty" msgpack:"scope"`
	IDToken           *string `json:"idToken,omitempty" msgpack:"id_token"`
	SessionState      *string `json:"sessionState,omitempty" msgpack:"session_state"`

	Edges AccountEdges `json:"edges" msgpack:"-"`
}

// AccountEdges holds the relations of an Account.
type AccountEdges struct {
	User *User `json:"user,omitempty"`

	loaded [1]bool
}

// UserOrErr returns the user relation, or NotLoadedError if it was not
// requested on the query.
func (e AccountEdges) UserOrErr() (*User, error) {
	if e.loaded[0] {
		return e.User, nil
	}
	return nil, NewNotLoadedError("user")
}

func scanAccount(rows *dsql.Rows, fields []string) (*Account, error) {
	a := &Account{}
	var (
		refreshToken dsql.NullString
		accessToken  dsql.NullString
		expiresAt    dsql.NullInt64
		tokenType    dsql.NullString
		scope        dsql.NullString
		idToken      dsql.NullString
		sessionState dsql.NullString
	)
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "id":
			dest[i] = &a.ID
		case "userId":
			dest[i] = &a.UserID
		case "type":
			dest[i] = &a.Type
		case "provider":
			dest[i] = &a.Provider
		case "providerAccountId":
			dest[i] = &a.ProviderAccountID
		case "refreshToken":
			dest[i] = &refreshToken
		case "accessToken":
			dest[i] = &accessToken
		case "expiresAt":
			dest[i] = &expiresAt
		case "tokenType":
			dest[i] = &tokenType
		case "scope":
			dest[i] = &scope
		case "idToken":
			dest[i] = &idToken
		case "sessionState":
			dest[i] = &sessionState
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	if refreshToken.Valid {
		a.RefreshToken = &refreshToken.String
	}
	if accessToken.Valid {
		a.AccessToken = &accessToken.String
	}
	if expiresAt.Valid {
		n := int(expiresAt.Int64)
		a.ExpiresAt = &n
	}
	if tokenType.Valid {
		a.TokenType = &tokenType.String
	}
	if scope.Valid {
		a.Scope = &scope.String
	}
	if idToken.Valid {
		a.IDToken = &idToken.String
	}
	if sessionState.Valid {
		a.SessionState = &sessionState.String
	}
	return a, nil
}

var accountMeta = &meta[Account]{
	entity: entityOf("Account"),
	id:     func(a *Account) string { return a.ID },
	scan:   scanAccount,
}

// The edge loader closes over other entities' metas, so it is wired in
// init to keep the meta var initializers cycle-free.
func init() { accountMeta.load = loadAccountEdges }

func loadAccountEdges(ctx context.Context, s *session, recs []*Account, include Include) error {
	var loads []func(context.Context) error
	for name, opts := range include {
		name, opts := name, opts
		switch name {
		case "user":
			loads = append(loads, func(ctx context.Context) error {
				err := loadBelongsTo(ctx, s, userMeta, recs,
					func(a *Account) (string, bool) { return a.UserID, a.UserID != "" },
					func(u *User) string { return u.ID },
					opts, func(a *Account, u *User) { a.Edges.User = u })
				return markLoaded(err, recs, func(a *Account) { a.Edges.loaded[0] = true })
			})
		}
	}
	return s.runLoads(ctx, loads...)
}

// AccountCreate is the input of Account create operations. The owning user
// is given either by UserID or by the nested User relation.
type AccountCreate struct {
	ID                *string
	UserID            *string
	Type              string
	Provider          string
	ProviderAccountID string
	RefreshToken      *string
	AccessToken       *string
	ExpiresAt         *int
	TokenType         *string
	Scope             *string
	IDToken           *string
	SessionState      *string

	User *CreateOneRel[UserCreate]
}

func (c AccountCreate) values() map[string]any {
	v := map[string]any{
		"type":              c.Type,
		"provider":          c.Provider,
		"providerAccountId": c.ProviderAccountID,
	}
	setIf(v, "id", c.ID)
	setIf(v, "userId", c.UserID)
	setIf(v, "refreshToken", c.RefreshToken)
	setIf(v, "accessToken", c.AccessToken)
	setIf(v, "expiresAt", c.ExpiresAt)
	setIf(v, "tokenType", c.TokenType)
	setIf(v, "scope", c.Scope)
	setIf(v, "idToken", c.IDToken)
	setIf(v, "sessionState", c.SessionState)
	return v
}

// AccountUpdate is the input of Account update operations.
type AccountUpdate struct {
	UserID            *string
	Type              *string
	Provider          *string
	ProviderAccountID *string
	RefreshToken      *string
	AccessToken       *string
	ExpiresAt         *int
	TokenType         *string
	Scope             *string
	IDToken           *string
	SessionState      *string

	Clear []string
}

func (u AccountUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "userId", u.UserID)
	setIf(v, "type", u.Type)
	setIf(v, "provider", u.Provider)
	setIf(v, "providerAccountId", u.ProviderAccountID)
	setIf(v, "refreshToken", u.RefreshToken)
	setIf(v, "accessToken", u.AccessToken)
	setIf(v, "expiresAt", u.ExpiresAt)
	setIf(v, "tokenType", u.TokenType)
	setIf(v, "scope", u.Scope)
	setIf(v, "idToken", u.IDToken)
	setIf(v, "sessionState", u.SessionState)
	for _, f := range u.Clear {
		v[f] = nil
	}
	return v
}

// AccountClient is the delegate for Account operations.
type AccountClient struct {
	s *session
}

// FindUnique returns the account matching a unique filter, or nil when it
// does not exist. The compound (provider, providerAccountId) pair is a valid
// unique filter.
func (c *AccountClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*Account, error) {
	return findUnique(ctx, c.s, accountMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *AccountClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*Account, error) {
	return opFindUniqueOrThrow(ctx, c.s, accountMeta, where, optionalInclude(include))
}

// FindFirst returns the first account matching the options, or nil.
func (c *AccountClient) FindFirst(ctx context.Context, opts *query.Options) (*Account, error) {
	return findFirst(ctx, c.s, accountMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *AccountClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*Account, error) {
	return opFindFirstOrThrow(ctx, c.s, accountMeta, opts)
}

// FindMany returns all accounts matching the options.
func (c *AccountClient) FindMany(ctx context.Context, opts *query.Options) ([]*Account, error) {
	return findMany(ctx, c.s, accountMeta, opts)
}

func (c AccountCreate) userPre(values map[string]any) func(context.Context, *session) error {
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

// Create inserts an account and returns the stored record.
func (c *AccountClient) Create(ctx context.Context, data AccountCreate) (*Account, error) {
	values := data.values()
	return opCreate(ctx, c.s, accountMeta, values, data.userPre(values), nil)
}

// CreateMany inserts the given accounts and returns the inserted row count.
func (c *AccountClient) CreateMany(ctx context.Context, data []AccountCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, accountMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *AccountClient) CreateManyAndReturn(ctx context.Context, data []AccountCreate, skipDuplicates ...bool) ([]*Account, error) {
	return opCreateManyAndReturn(ctx, c.s, accountMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the account addressed by a unique filter and returns it.
func (c *AccountClient) Update(ctx context.Context, where query.Expr, data AccountUpdate) (*Account, error) {
	return opUpdate(ctx, c.s, accountMeta, where, data.sets(), nil)
}

// UpdateMany updates all accounts matching the filter and returns the count.
func (c *AccountClient) UpdateMany(ctx context.Context, where query.Expr, data AccountUpdate) (int64, error) {
	return updateWhere(ctx, c.s, accountMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *AccountClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data AccountUpdate) ([]*Account, error) {
	return opUpdateManyAndReturn(ctx, c.s, accountMeta, where, data.sets())
}

// Upsert updates the account addressed by the unique filter, or creates it
// when missing.
func (c *AccountClient) Upsert(ctx context.Context, where query.Expr, create AccountCreate, update AccountUpdate) (*Account, error) {
	values := create.values()
	return opUpsert(ctx, c.s, accountMeta, where, values, create.userPre(values), nil, update.sets(), nil)
}

// Delete deletes the account addressed by a unique filter and returns it.
func (c *AccountClient) Delete(ctx context.Context, where query.Expr) (*Account, error) {
	return opDelete(ctx, c.s, accountMeta, where)
}

// DeleteMany deletes all accounts matching the filter and returns the count.
func (c *AccountClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, accountMeta.entity, where)
}

// Aggregate computes aggregations over the accounts matching the filter.
func (c *AccountClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, accountMeta.entity, a)
}

// GroupBy groups accounts by the given fields and computes per-group
// aggregations.
func (c *AccountClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, accountMeta.entity, g)
}

// Count returns the number of accounts matching the filter.
func (c *AccountClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, accountMeta.entity, where)
}
