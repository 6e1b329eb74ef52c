package gallerydb

import (
	"context"
	"time"

	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

// VerificationToken is the model of the verification_tokens table. It has no
// surrogate id; the token itself is the identity.
type VerificationToken struct {
	Identifier string    `json:"identifier" msgpack:"identifier"`
	Token      string    `json:"token" msgpack:"token"`
	Expires    time.Time `json:"expires" msgpack:"expires"`
}

func scanVerificationToken(rows *dsql.Rows, fields []string) (*VerificationToken, error) {
	vt := &VerificationToken{}
	var expires dsql.NullTime
	dest := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case "identifier":
			dest[i] = &vt.Identifier
		case "token":
			dest[i] = &vt.Token
		case "expires":
			dest[i] = &expires
		default:
			dest[i] = new(any)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	vt.Expires = expires.Time
	return vt, nil
}

var verificationTokenMeta = &meta[VerificationToken]{
	entity: entityOf("VerificationToken"),
	id:     func(vt *VerificationToken) string { return vt.Token },
	scan:   scanVerificationToken,
}

// VerificationTokenCreate is the input of VerificationToken create
// operations.
type VerificationTokenCreate struct {
	Identifier string
	Token      string
	Expires    time.Time
}

func (c VerificationTokenCreate) values() map[string]any {
	return map[string]any{
		"identifier": c.Identifier,
		"token":      c.Token,
		"expires":    c.Expires,
	}
}

// VerificationTokenUpdate is the input of VerificationToken update
// operations.
type VerificationTokenUpdate struct {
	Identifier *string
	Token      *string
	Expires    *time.Time
}

func (u VerificationTokenUpdate) sets() map[string]any {
	v := map[string]any{}
	setIf(v, "identifier", u.Identifier)
	setIf(v, "token", u.Token)
	setIf(v, "expires", u.Expires)
	return v
}

// VerificationTokenClient is the delegate for VerificationToken operations.
type VerificationTokenClient struct {
	s *session
}

// FindUnique returns the token matching a unique filter, or nil when it does
// not exist. Both the token field and the compound (identifier, token) pair
// are valid unique filters.
func (c *VerificationTokenClient) FindUnique(ctx context.Context, where query.Expr, include ...Include) (*VerificationToken, error) {
	return findUnique(ctx, c.s, verificationTokenMeta, where, optionalInclude(include))
}

// FindUniqueOrThrow is like FindUnique but returns NotFoundError when the
// record does not exist.
func (c *VerificationTokenClient) FindUniqueOrThrow(ctx context.Context, where query.Expr, include ...Include) (*VerificationToken, error) {
	return opFindUniqueOrThrow(ctx, c.s, verificationTokenMeta, where, optionalInclude(include))
}

// FindFirst returns the first token matching the options, or nil.
func (c *VerificationTokenClient) FindFirst(ctx context.Context, opts *query.Options) (*VerificationToken, error) {
	return findFirst(ctx, c.s, verificationTokenMeta, opts)
}

// FindFirstOrThrow is like FindFirst but returns NotFoundError when no
// record matches.
func (c *VerificationTokenClient) FindFirstOrThrow(ctx context.Context, opts *query.Options) (*VerificationToken, error) {
	return opFindFirstOrThrow(ctx, c.s, verificationTokenMeta, opts)
}

// FindMany returns all tokens matching the options.
func (c *VerificationTokenClient) FindMany(ctx context.Context, opts *query.Options) ([]*VerificationToken, error) {
	return findMany(ctx, c.s, verificationTokenMeta, opts)
}

// Create inserts a token and returns the stored record.
func (c *VerificationTokenClient) Create(ctx context.Context, data VerificationTokenCreate) (*VerificationToken, error) {
	return opCreate(ctx, c.s, verificationTokenMeta, data.values(), nil, nil)
}

// CreateMany inserts the given tokens and returns the inserted row count.
func (c *VerificationTokenClient) CreateMany(ctx context.Context, data []VerificationTokenCreate, skipDuplicates ...bool) (int64, error) {
	return opCreateMany(ctx, c.s, verificationTokenMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// CreateManyAndReturn is like CreateMany but returns the inserted records.
func (c *VerificationTokenClient) CreateManyAndReturn(ctx context.Context, data []VerificationTokenCreate, skipDuplicates ...bool) ([]*VerificationToken, error) {
	return opCreateManyAndReturn(ctx, c.s, verificationTokenMeta, createRows(data), len(skipDuplicates) > 0 && skipDuplicates[0])
}

// Update updates the token addressed by a unique filter and returns it.
func (c *VerificationTokenClient) Update(ctx context.Context, where query.Expr, data VerificationTokenUpdate) (*VerificationToken, error) {
	return opUpdate(ctx, c.s, verificationTokenMeta, where, data.sets(), nil)
}

// UpdateMany updates all tokens matching the filter and returns the count.
func (c *VerificationTokenClient) UpdateMany(ctx context.Context, where query.Expr, data VerificationTokenUpdate) (int64, error) {
	return updateWhere(ctx, c.s, verificationTokenMeta.entity, where, data.sets())
}

// UpdateManyAndReturn is like UpdateMany but returns the updated records.
func (c *VerificationTokenClient) UpdateManyAndReturn(ctx context.Context, where query.Expr, data VerificationTokenUpdate) ([]*VerificationToken, error) {
	return opUpdateManyAndReturn(ctx, c.s, verificationTokenMeta, where, data.sets())
}

// Upsert updates the token addressed by the unique filter, or creates it
// when missing.
func (c *VerificationTokenClient) Upsert(ctx context.Context, where query.Expr, create VerificationTokenCreate, update VerificationTokenUpdate) (*VerificationToken, error) {
	return opUpsert(ctx, c.s, verificationTokenMeta, where, create.values(), nil, nil, update.sets(), nil)
}

// Delete deletes the token addressed by a unique filter and returns it.
func (c *VerificationTokenClient) Delete(ctx context.Context, where query.Expr) (*VerificationToken, error) {
	return opDelete(ctx, c.s, verificationTokenMeta, where)
}

// DeleteMany deletes all tokens matching the filter and returns the count.
func (c *VerificationTokenClient) DeleteMany(ctx context.Context, where query.Expr) (int64, error) {
	return deleteWhere(ctx, c.s, verificationTokenMeta.entity, where)
}

// Aggregate computes aggregations over the tokens matching the filter.
func (c *VerificationTokenClient) Aggregate(ctx context.Context, a query.Aggregate) (*query.AggregateResult, error) {
	return aggregateRows(ctx, c.s, verificationTokenMeta.entity, a)
}

// GroupBy groups tokens by the given fields and computes per-group
// aggregations.
func (c *VerificationTokenClient) GroupBy(ctx context.Context, g query.GroupBy) ([]query.Group, error) {
	return groupRows(ctx, c.s, verificationTokenMeta.entity, g)
}

// Count returns the number of tokens matching the filter.
func (c *VerificationTokenClient) Count(ctx context.Context, where query.Expr) (int, error) {
	return countRows(ctx, c.s, verificationTokenMeta.entity, where)
}
