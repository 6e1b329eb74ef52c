package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcostin/gallerydb/dialect"
	sqld "github.com/vcostin/gallerydb/dialect/sql"
)

// render compiles the filter tree and renders it through a postgres selector
// so the produced predicate can be asserted as text.
func render(t *testing.T, x Expr) (string, []any) {
	t.Helper()
	s := testSchema(t)
	user, _ := s.Entity("User")
	p, err := Predicate(user, x)
	require.NoError(t, err)
	return sqld.Dialect(dialect.Postgres).Select("id").From("users").Where(p).Query()
}

func TestPredicate(t *testing.T) {
	t.Parallel()

	t.Run("Nil", func(t *testing.T) {
		s := testSchema(t)
		user, _ := s.Entity("User")
		p, err := Predicate(user, nil)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("QualifiedColumns", func(t *testing.T) {
		query, args := render(t, EQ("email", "a@b.c"))
		assert.Equal(t, `SELECT "id" FROM "users" WHERE "users"."email" = $1`, query)
		assert.Equal(t, []any{"a@b.c"}, args)
	})

	t.Run("ColumnNameMapping", func(t *testing.T) {
		query, _ := render(t, GT("createdAt", 0))
		assert.Contains(t, query, `"users"."created_at" > $1`)
	})

	t.Run("Tree", func(t *testing.T) {
		query, args := render(t, And(
			EQ("role", "ADMIN"),
			Or(Contains("name", "jo"), IsNull("name")),
		))
		assert.Equal(t,
			`SELECT "id" FROM "users" WHERE ("users"."role" = $1 AND `+
				`("users"."name" LIKE $2 OR "users"."name" IS NULL))`,
			query,
		)
		assert.Equal(t, []any{"ADMIN", "%jo%"}, args)
	})

	t.Run("Not", func(t *testing.T) {
		query, _ := render(t, Not(EQ("role", "ADMIN")))
		assert.Contains(t, query, `NOT ("users"."role" = $1)`)
	})

	t.Run("InNotIn", func(t *testing.T) {
		query, args := render(t, In("id", "a", "b"))
		assert.Contains(t, query, `"users"."id" IN ($1, $2)`)
		assert.Equal(t, []any{"a", "b"}, args)

		query, _ = render(t, NotIn("id"))
		assert.Contains(t, query, "WHERE TRUE")
	})

	t.Run("Fold", func(t *testing.T) {
		query, args := render(t, EqualFold("email", "A@B.C"))
		assert.Contains(t, query, `LOWER("users"."email") = $1`)
		assert.Equal(t, []any{"a@b.c"}, args)

		query, _ = render(t, StartsWithFold("name", "Jo"))
		assert.Contains(t, query, `LOWER("users"."name") LIKE $1`)
	})

	t.Run("UnknownField", func(t *testing.T) {
		s := testSchema(t)
		user, _ := s.Entity("User")
		_, err := Predicate(user, EQ("nickname", "x"))
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("UnknownFieldInBranch", func(t *testing.T) {
		s := testSchema(t)
		user, _ := s.Entity("User")
		_, err := Predicate(user, Or(EQ("id", "u1"), EQ("nickname", "x")))
		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestOrders(t *testing.T) {
	t.Parallel()
	s := testSchema(t)
	user, _ := s.Entity("User")

	t.Run("DirectionsAndNulls", func(t *testing.T) {
		exprs, err := Orders(user, []Order{
			OrderDesc("createdAt"),
			{Field: "name", Direction: Asc, Nulls: NullsLast},
		})
		require.NoError(t, err)
		query, _ := sqld.Dialect(dialect.Postgres).Select("id").From("users").OrderBy(exprs...).Query()
		assert.Equal(t, `SELECT "id" FROM "users" ORDER BY "users"."created_at" DESC, "users"."name" NULLS LAST`, query)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := Orders(user, []Order{OrderAsc("nickname")})
		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestCursorBoundary(t *testing.T) {
	t.Parallel()
	s := testSchema(t)
	user, _ := s.Entity("User")

	t.Run("Forward", func(t *testing.T) {
		pred, order, err := CursorBoundary(user, Cursor{Field: "id", Value: "u5"}, false)
		require.NoError(t, err)
		query, args := sqld.Dialect(dialect.Postgres).
			Select("id").From("users").Where(pred).OrderBy(order).Query()
		assert.Equal(t, `SELECT "id" FROM "users" WHERE "users"."id" >= $1 ORDER BY "users"."id"`, query)
		assert.Equal(t, []any{"u5"}, args)
	})

	t.Run("Backward", func(t *testing.T) {
		pred, order, err := CursorBoundary(user, Cursor{Field: "id", Value: "u5"}, true)
		require.NoError(t, err)
		query, args := sqld.Dialect(dialect.Postgres).
			Select("id").From("users").Where(pred).OrderBy(order).Query()
		assert.Equal(t, `SELECT "id" FROM "users" WHERE "users"."id" <= $1 ORDER BY "users"."id" DESC`, query)
		assert.Equal(t, []any{"u5"}, args)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, _, err := CursorBoundary(user, Cursor{Field: "nickname", Value: "x"}, false)
		assert.ErrorIs(t, err, ErrUnknownField)
	})
}
