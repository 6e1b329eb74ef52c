package gallerydb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcostin/gallerydb"
	"github.com/vcostin/gallerydb/cache/ristretto"
	"github.com/vcostin/gallerydb/dialect"
	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/query"
)

const userCols = `"users"."id", "users"."name", "users"."email", "users"."password", "users"."email_verified", "users"."image", "users"."role", "users"."created_at", "users"."updated_at"`

var userRowCols = []string{"id", "name", "email", "password", "email_verified", "image", "role", "created_at", "updated_at"}

func newMockClient(t *testing.T) (*gallerydb.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return gallerydb.NewClient(dsql.OpenDB(dialect.SQLite, db)), mock
}

func userRow(id, email string, role gallerydb.Role) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userRowCols).AddRow(id, nil, email, nil, nil, nil, string(role), now, now)
}

func TestClientFindMany(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectQuery(
		`SELECT ` + userCols + ` FROM "users" WHERE "users"."role" = ? ` +
			`ORDER BY "users"."created_at" DESC LIMIT 10 OFFSET 5`,
	).
		WithArgs("ADMIN").
		WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleAdmin))

	users, err := client.User.FindMany(ctx, &query.Options{
		Where:   query.EQ("role", "ADMIN"),
		OrderBy: []query.Order{query.OrderDesc("createdAt")},
		Take:    query.Take(10),
		Skip:    5,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "a@b.c", users[0].Email)
	assert.Equal(t, gallerydb.RoleAdmin, users[0].Role)
	assert.Nil(t, users[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientFindManySelect(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT "users"."id", "users"."email" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("u1", "a@b.c"))

	users, err := client.User.FindMany(context.Background(), &query.Options{
		Select: []string{"id", "email"},
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.c", users[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientFindManyValidation(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	// Rejected before any statement reaches the database.
	_, err := client.User.FindMany(ctx, &query.Options{Where: query.EQ("nickname", "x")})
	assert.True(t, gallerydb.IsValidationError(err))

	_, err = client.User.FindMany(ctx, &query.Options{Take: query.Take(-1)})
	assert.True(t, gallerydb.IsValidationError(err))

	_, err = client.User.FindMany(ctx, &query.Options{
		Select:  []string{"id"},
		Include: gallerydb.Include{"images": nil},
	})
	assert.True(t, gallerydb.IsValidationError(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientFindUnique(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."email" = ? LIMIT 1`).
			WithArgs("a@b.c").
			WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleUser))

		u, err := client.User.FindUnique(ctx, query.EQ("email", "a@b.c"))
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."email" = ? LIMIT 1`).
			WithArgs("nobody@b.c").
			WillReturnRows(sqlmock.NewRows(userRowCols))

		u, err := client.User.FindUnique(ctx, query.EQ("email", "nobody@b.c"))
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("MissingOrThrow", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."email" = ? LIMIT 1`).
			WithArgs("nobody@b.c").
			WillReturnRows(sqlmock.NewRows(userRowCols))

		_, err := client.User.FindUniqueOrThrow(ctx, query.EQ("email", "nobody@b.c"))
		assert.True(t, gallerydb.IsNotFound(err))
	})

	t.Run("NonUniqueFilterRejected", func(t *testing.T) {
		_, err := client.User.FindUnique(ctx, query.EQ("name", "john"))
		assert.True(t, gallerydb.IsValidationError(err))
	})

	t.Run("CompoundUniqueFilter", func(t *testing.T) {
		cols := `"accounts"."id", "accounts"."user_id", "accounts"."type", "accounts"."provider", ` +
			`"accounts"."provider_account_id", "accounts"."refresh_token", "accounts"."access_token", ` +
			`"accounts"."expires_at", "accounts"."token_type", "accounts"."scope", "accounts"."id_token", ` +
			`"accounts"."session_state"`
		mock.ExpectQuery(
			`SELECT `+cols+` FROM "accounts" WHERE ("accounts"."provider" = ? AND "accounts"."provider_account_id" = ?) LIMIT 1`,
		).
			WithArgs("github", "gh-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "type", "provider", "provider_account_id",
				"refresh_token", "access_token", "expires_at", "token_type",
				"scope", "id_token", "session_state",
			}).AddRow("a1", "u1", "oauth", "github", "gh-1", nil, nil, nil, nil, nil, nil, nil))

		a, err := client.Account.FindUnique(ctx, query.And(
			query.EQ("provider", "github"),
			query.EQ("providerAccountId", "gh-1"),
		))
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "github", a.Provider)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientCreate(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	t.Run("DefaultsApplied", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "users" ("id", "email", "role", "created_at", "updated_at") VALUES (?, ?, ?, ?, ?)`).
			WithArgs(sqlmock.AnyArg(), "a@b.c", "USER", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleUser))

		u, err := client.User.Create(ctx, gallerydb.UserCreate{Email: "a@b.c"})
		require.NoError(t, err)
		assert.Equal(t, gallerydb.RoleUser, u.Role)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		_, err := client.User.Create(ctx, gallerydb.UserCreate{})
		assert.True(t, gallerydb.IsValidationError(err))
	})

	t.Run("InvalidEnum", func(t *testing.T) {
		role := gallerydb.Role("ROOT")
		_, err := client.User.Create(ctx, gallerydb.UserCreate{Email: "a@b.c", Role: &role})
		assert.True(t, gallerydb.IsValidationError(err))
	})

	t.Run("UniqueViolation", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "users" ("id", "email", "role", "created_at", "updated_at") VALUES (?, ?, ?, ?, ?)`).
			WithArgs(sqlmock.AnyArg(), "dup@b.c", "USER", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(errors.New("UNIQUE constraint failed: users.email"))

		_, err := client.User.Create(ctx, gallerydb.UserCreate{Email: "dup@b.c"})
		assert.True(t, gallerydb.IsUniqueConstraintError(err))
		assert.True(t, gallerydb.IsConstraintError(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientCreateMany(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	t.Run("MultiRow", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "tags" ("id", "name") VALUES (?, ?), (?, ?)`).
			WithArgs(sqlmock.AnyArg(), "sunset", sqlmock.AnyArg(), "beach").
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := client.Tag.CreateMany(ctx, []gallerydb.TagCreate{
			{Name: "sunset"},
			{Name: "beach"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("SkipDuplicates", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "tags" ("id", "name") VALUES (?, ?), (?, ?) ON CONFLICT DO NOTHING`).
			WithArgs(sqlmock.AnyArg(), "sunset", sqlmock.AnyArg(), "beach").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := client.Tag.CreateMany(ctx, []gallerydb.TagCreate{
			{Name: "sunset"},
			{Name: "beach"},
		}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Empty", func(t *testing.T) {
		n, err := client.Tag.CreateMany(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientUpdate(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()
	name := "John"

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(userRowCols))

		_, err := client.User.Update(ctx, query.EQ("id", "missing"), gallerydb.UserUpdate{Name: &name})
		assert.True(t, gallerydb.IsNotFound(err))
	})

	t.Run("UpdatesAndRereads", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
			WithArgs("u1").
			WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleUser))
		// updatedAt is bumped automatically.
		mock.ExpectExec(`UPDATE "users" SET "name" = ?, "updated_at" = ? WHERE "users"."id" = ?`).
			WithArgs("John", sqlmock.AnyArg(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(userRowCols).
				AddRow("u1", "John", "a@b.c", nil, nil, nil, "USER", time.Now(), time.Now()))

		u, err := client.User.Update(ctx, query.EQ("id", "u1"), gallerydb.UserUpdate{Name: &name})
		require.NoError(t, err)
		require.NotNil(t, u.Name)
		assert.Equal(t, "John", *u.Name)
	})

	t.Run("EmptyUpdateRejected", func(t *testing.T) {
		// Tags carry no auto-touched fields, so an empty update has nothing
		// to set.
		_, err := client.Tag.UpdateMany(ctx, query.EQ("name", "sunset"), gallerydb.TagUpdate{})
		assert.True(t, gallerydb.IsValidationError(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientUpdateMany(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)

	role := gallerydb.RoleAdmin
	mock.ExpectExec(`UPDATE "users" SET "role" = ?, "updated_at" = ? WHERE "users"."email" = ?`).
		WithArgs("ADMIN", sqlmock.AnyArg(), "a@b.c").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := client.User.UpdateMany(context.Background(), query.EQ("email", "a@b.c"), gallerydb.UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientDelete(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	t.Run("ReturnsDeletedRecord", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
			WithArgs("u1").
			WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleUser))
		mock.ExpectExec(`DELETE FROM "users" WHERE "users"."id" = ?`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		u, err := client.User.Delete(ctx, query.EQ("id", "u1"))
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", u.Email)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(userRowCols))

		_, err := client.User.Delete(ctx, query.EQ("id", "missing"))
		assert.True(t, gallerydb.IsNotFound(err))
	})

	t.Run("DeleteMany", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM "sessions" WHERE "sessions"."user_id" = ?`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := client.Session.DeleteMany(ctx, query.EQ("userId", "u1"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientCount(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "users" WHERE "users"."role" = ?`).
		WithArgs("ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := client.User.Count(context.Background(), query.EQ("role", "ADMIN"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientAggregate(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT COUNT(*), AVG("images"."file_size"), SUM("images"."file_size") FROM "images"`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg", "sum"}).AddRow("3", "100.5", "301.5"))

	res, err := client.Image.Aggregate(context.Background(), query.Aggregate{
		Count: true,
		Avg:   []string{"fileSize"},
		Sum:   []string{"fileSize"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.InDelta(t, 100.5, res.Avg["fileSize"], 0.001)
	assert.InDelta(t, 301.5, res.Sum["fileSize"], 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientGroupBy(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	t.Run("KeysTyped", func(t *testing.T) {
		mock.ExpectQuery(`SELECT "users"."role", COUNT(*) FROM "users" GROUP BY "users"."role"`).
			WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
				AddRow("ADMIN", "1").
				AddRow("USER", "4"))

		groups, err := client.User.GroupBy(ctx, query.GroupBy{By: []string{"role"}, Count: true})
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "ADMIN", groups[0].Keys["role"])
		assert.Equal(t, 1, groups[0].Count)
		assert.Equal(t, 4, groups[1].Count)
	})

	t.Run("HavingOutsideByRejected", func(t *testing.T) {
		_, err := client.User.GroupBy(ctx, query.GroupBy{
			By:     []string{"role"},
			Having: query.EQ("email", "a@b.c"),
		})
		assert.True(t, gallerydb.IsValidationError(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "tags" ("id", "name") VALUES (?, ?)`).
			WithArgs(sqlmock.AnyArg(), "sunset").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "tags"."id", "tags"."name" FROM "tags" WHERE "tags"."id" = ? LIMIT 1`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("t1", "sunset"))
		mock.ExpectCommit()

		err := client.Transaction(ctx, func(ctx context.Context, tx *gallerydb.Tx) error {
			_, err := tx.Tag.Create(ctx, gallerydb.TagCreate{Name: "sunset"})
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := client.Transaction(ctx, func(context.Context, *gallerydb.Tx) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnPanic", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		require.PanicsWithValue(t, "boom", func() {
			_ = client.Transaction(ctx, func(context.Context, *gallerydb.Tx) error {
				panic("boom")
			})
		})
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpsertReusesTransaction", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectBegin()
		// The upsert checks for the record, then the update path looks it up
		// once more before writing.
		for i := 0; i < 2; i++ {
			mock.ExpectQuery(`SELECT "tags"."id", "tags"."name" FROM "tags" WHERE "tags"."name" = ? LIMIT 1`).
				WithArgs("sunset").
				WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("t1", "sunset"))
		}
		mock.ExpectExec(`UPDATE "tags" SET "name" = ? WHERE "tags"."id" = ?`).
			WithArgs("dusk", "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "tags"."id", "tags"."name" FROM "tags" WHERE "tags"."id" = ? LIMIT 1`).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("t1", "dusk"))
		mock.ExpectCommit()

		name := "dusk"
		err := client.Transaction(ctx, func(ctx context.Context, tx *gallerydb.Tx) error {
			// No second Begin: the upsert runs on the surrounding transaction.
			tag, err := tx.Tag.Upsert(ctx,
				query.EQ("name", "sunset"),
				gallerydb.TagCreate{Name: "sunset"},
				gallerydb.TagUpdate{Name: &name},
			)
			if err != nil {
				return err
			}
			assert.Equal(t, "dusk", tag.Name)
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Timeout", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := client.Transaction(ctx, func(ctx context.Context, tx *gallerydb.Tx) error {
			<-ctx.Done()
			return ctx.Err()
		}, gallerydb.TxOptions{Timeout: 10 * time.Millisecond})
		assert.True(t, gallerydb.IsTxTimeout(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Batch", func(t *testing.T) {
		client, mock := newMockClient(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "sessions" WHERE "sessions"."user_id" = ?`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "accounts" WHERE "accounts"."user_id" = ?`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := client.Batch(ctx,
			func(ctx context.Context, tx *gallerydb.Tx) error {
				_, err := tx.Session.DeleteMany(ctx, query.EQ("userId", "u1"))
				return err
			},
			func(ctx context.Context, tx *gallerydb.Tx) error {
				_, err := tx.Account.DeleteMany(ctx, query.EQ("userId", "u1"))
				return err
			},
		)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClientUpsert(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()
	name := "John"

	// Missing record: the lookup and create share one transaction.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."email" = ? LIMIT 1`).
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows(userRowCols))
	mock.ExpectExec(`INSERT INTO "users" ("id", "email", "role", "created_at", "updated_at") VALUES (?, ?, ?, ?, ?)`).
		WithArgs(sqlmock.AnyArg(), "a@b.c", "USER", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."id" = ? LIMIT 1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleUser))
	mock.ExpectCommit()

	u, err := client.User.Upsert(ctx,
		query.EQ("email", "a@b.c"),
		gallerydb.UserCreate{Email: "a@b.c"},
		gallerydb.UserUpdate{Name: &name},
	)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRawAccess(t *testing.T) {
	t.Parallel()
	client, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows, err := client.QueryRaw(ctx, "SELECT 1")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, rows.Close())

	mock.ExpectExec(`PRAGMA foreign_keys = ON`).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = client.ExecRaw(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientCachedFindUnique(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := ristretto.New(ristretto.Config{})
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	client := gallerydb.NewClient(dsql.OpenDB(dialect.SQLite, db),
		gallerydb.WithCache(cache, time.Minute))
	ctx := context.Background()

	// One statement serves both lookups: the second is a cache hit.
	mock.ExpectQuery(`SELECT ` + userCols + ` FROM "users" WHERE "users"."email" = ? LIMIT 1`).
		WithArgs("a@b.c").
		WillReturnRows(userRow("u1", "a@b.c", gallerydb.RoleUser))

	first, err := client.User.FindUnique(ctx, query.EQ("email", "a@b.c"))
	require.NoError(t, err)
	cache.Wait()

	second, err := client.User.FindUnique(ctx, query.EQ("email", "a@b.c"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Email, second.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientSchema(t *testing.T) {
	t.Parallel()
	client, _ := newMockClient(t)
	s := client.Schema()
	require.NotNil(t, s)
	assert.Len(t, s.Entities(), 8)
	u, ok := s.Entity("User")
	require.True(t, ok)
	assert.Equal(t, "users", u.Table)
}
