package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vcostin/gallerydb/dialect"
)

func TestBuilderIdent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		dialect string
		ident   string
		want    string
	}{
		{"Simple", dialect.Postgres, "name", `"name"`},
		{"Qualified", dialect.Postgres, "users.name", `"users"."name"`},
		{"ReservedWord", dialect.Postgres, "image_in_galleries.order", `"image_in_galleries"."order"`},
		{"MySQLBackticks", dialect.MySQL, "users.name", "`users`.`name`"},
		{"Star", dialect.Postgres, "*", "*"},
		{"QualifiedStar", dialect.Postgres, "users.*", `"users".*`},
		{"Expression", dialect.Postgres, "COUNT(*)", "COUNT(*)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.dialect)
			b.Ident(tt.ident)
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestBuilderArgPlaceholders(t *testing.T) {
	t.Parallel()

	b := NewBuilder(dialect.Postgres)
	b.Arg(1).WriteString(", ").Arg(2).WriteString(", ").Arg(3)
	assert.Equal(t, "$1, $2, $3", b.String())
	assert.Equal(t, []any{1, 2, 3}, b.Args())

	b = NewBuilder(dialect.MySQL)
	b.Arg(1).WriteString(", ").Arg(2)
	assert.Equal(t, "?, ?", b.String())

	b = NewBuilder(dialect.SQLite)
	b.Arg("x")
	assert.Equal(t, "?", b.String())
}

func TestSelector(t *testing.T) {
	t.Parallel()

	t.Run("Basic", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Select("id", "name").
			From("users").
			Where(EQ("users.email", "a@b.c")).
			Query()
		assert.Equal(t, `SELECT "id", "name" FROM "users" WHERE "users"."email" = $1`, query)
		assert.Equal(t, []any{"a@b.c"}, args)
	})

	t.Run("SelectAllByDefault", func(t *testing.T) {
		query, args := Dialect(dialect.SQLite).Select().From("tags").Query()
		assert.Equal(t, `SELECT * FROM "tags"`, query)
		assert.Empty(t, args)
	})

	t.Run("WhereAccumulates", func(t *testing.T) {
		query, args := Dialect(dialect.MySQL).
			Select("id").
			From("images").
			Where(EQ("user_id", "u1")).
			Where(GT("created_at", 10)).
			Query()
		assert.Equal(t, "SELECT `id` FROM `images` WHERE (`user_id` = ? AND `created_at` > ?)", query)
		assert.Equal(t, []any{"u1", 10}, args)
	})

	t.Run("OrderLimitOffset", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Select("id").
			From("galleries").
			OrderBy(Desc("created_at"), Asc("id")).
			Limit(10).
			Offset(20).
			Query()
		assert.Equal(t, `SELECT "id" FROM "galleries" ORDER BY "created_at" DESC, "id" LIMIT 10 OFFSET 20`, query)
		assert.Empty(t, args)
	})

	t.Run("OffsetWithoutLimitMySQL", func(t *testing.T) {
		query, _ := Dialect(dialect.MySQL).Select("id").From("users").Offset(5).Query()
		assert.Equal(t, "SELECT `id` FROM `users` LIMIT 18446744073709551615 OFFSET 5", query)
	})

	t.Run("OffsetWithoutLimitSQLite", func(t *testing.T) {
		query, _ := Dialect(dialect.SQLite).Select("id").From("users").Offset(5).Query()
		assert.Equal(t, `SELECT "id" FROM "users" LIMIT -1 OFFSET 5`, query)
	})

	t.Run("OffsetWithoutLimitPostgres", func(t *testing.T) {
		query, _ := Dialect(dialect.Postgres).Select("id").From("users").Offset(5).Query()
		assert.Equal(t, `SELECT "id" FROM "users" OFFSET 5`, query)
	})

	t.Run("Distinct", func(t *testing.T) {
		query, _ := Dialect(dialect.SQLite).Select("email").From("users").Distinct().Query()
		assert.Equal(t, `SELECT DISTINCT "email" FROM "users"`, query)
	})

	t.Run("DistinctOn", func(t *testing.T) {
		query, _ := Dialect(dialect.Postgres).
			Select("id", "email").
			From("users").
			DistinctOn("email").
			OrderBy(Asc("email")).
			Query()
		assert.Equal(t, `SELECT DISTINCT ON ("email") "id", "email" FROM "users" ORDER BY "email"`, query)
	})

	t.Run("Join", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Select("images.id").
			From("images").
			Join("image_tags", "images.id", "image_tags.image_id").
			Where(EQ("image_tags.tag_id", "t1")).
			Query()
		assert.Equal(t, `SELECT "images"."id" FROM "images" JOIN "image_tags" ON "images"."id" = "image_tags"."image_id" WHERE "image_tags"."tag_id" = $1`, query)
		assert.Equal(t, []any{"t1"}, args)
	})

	t.Run("GroupByHaving", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Select("role", As(Count("*"), "n")).
			From("users").
			GroupBy("role").
			Having(GT("COUNT(*)", 1)).
			Query()
		assert.Equal(t, `SELECT "role", COUNT(*) AS n FROM "users" GROUP BY "role" HAVING COUNT(*) > $1`, query)
		assert.Equal(t, []any{1}, args)
	})

	t.Run("C", func(t *testing.T) {
		s := Dialect(dialect.MySQL).Select().From("users")
		assert.Equal(t, "`users`.`name`", s.C("name"))
	})
}

func TestSelectorNulls(t *testing.T) {
	t.Parallel()

	t.Run("Postgres", func(t *testing.T) {
		query, _ := Dialect(dialect.Postgres).
			Select("id").
			From("users").
			OrderBy(Asc("name").NullsFirst()).
			Query()
		assert.Equal(t, `SELECT "id" FROM "users" ORDER BY "name" NULLS FIRST`, query)
	})

	t.Run("MySQLEmulation", func(t *testing.T) {
		query, _ := Dialect(dialect.MySQL).
			Select("id").
			From("users").
			OrderBy(Asc("name").NullsFirst()).
			Query()
		assert.Equal(t, "SELECT `id` FROM `users` ORDER BY `name` IS NULL DESC, `name`", query)

		query, _ = Dialect(dialect.MySQL).
			Select("id").
			From("users").
			OrderBy(Desc("name").NullsLast()).
			Query()
		assert.Equal(t, "SELECT `id` FROM `users` ORDER BY `name` IS NULL, `name` DESC", query)
	})
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	render := func(p *Predicate) (string, []any) {
		b := NewBuilder(dialect.Postgres)
		p.build(b)
		return b.String(), b.Args()
	}

	t.Run("Comparison", func(t *testing.T) {
		tests := []struct {
			pred *Predicate
			want string
			args []any
		}{
			{EQ("age", 18), `"age" = $1`, []any{18}},
			{NEQ("age", 18), `"age" <> $1`, []any{18}},
			{GT("age", 18), `"age" > $1`, []any{18}},
			{GTE("age", 18), `"age" >= $1`, []any{18}},
			{LT("age", 18), `"age" < $1`, []any{18}},
			{LTE("age", 18), `"age" <= $1`, []any{18}},
		}
		for _, tt := range tests {
			query, args := render(tt.pred)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, tt.args, args)
		}
	})

	t.Run("NilIsNull", func(t *testing.T) {
		query, args := render(EQ("image", nil))
		assert.Equal(t, `"image" IS NULL`, query)
		assert.Empty(t, args)

		query, args = render(NEQ("image", nil))
		assert.Equal(t, `"image" IS NOT NULL`, query)
		assert.Empty(t, args)
	})

	t.Run("In", func(t *testing.T) {
		query, args := render(In("id", "a", "b", "c"))
		assert.Equal(t, `"id" IN ($1, $2, $3)`, query)
		assert.Equal(t, []any{"a", "b", "c"}, args)
	})

	t.Run("InEmpty", func(t *testing.T) {
		query, args := render(In("id"))
		assert.Equal(t, "FALSE", query)
		assert.Empty(t, args)

		query, _ = render(NotIn("id"))
		assert.Equal(t, "TRUE", query)
	})

	t.Run("AndOrNot", func(t *testing.T) {
		query, args := render(And(EQ("a", 1), Or(EQ("b", 2), EQ("c", 3))))
		assert.Equal(t, `("a" = $1 AND ("b" = $2 OR "c" = $3))`, query)
		assert.Equal(t, []any{1, 2, 3}, args)

		query, _ = render(Not(EQ("a", 1)))
		assert.Equal(t, `NOT ("a" = $1)`, query)
	})

	t.Run("SingleAndUnwrapped", func(t *testing.T) {
		query, _ := render(And(EQ("a", 1)))
		assert.Equal(t, `"a" = $1`, query)
	})

	t.Run("Like", func(t *testing.T) {
		query, args := render(Contains("name", "oh"))
		assert.Equal(t, `"name" LIKE $1`, query)
		assert.Equal(t, []any{"%oh%"}, args)

		query, args = render(HasPrefix("email", "admin"))
		assert.Equal(t, `"email" LIKE $1`, query)
		assert.Equal(t, []any{"admin%"}, args)

		query, args = render(HasSuffix("email", "@example.com"))
		assert.Equal(t, `"email" LIKE $1`, query)
		assert.Equal(t, []any{"%@example.com"}, args)
	})

	t.Run("LikeEscapesWildcards", func(t *testing.T) {
		_, args := render(Contains("name", "50%_off"))
		assert.Equal(t, []any{`%50\%\_off%`}, args)
	})

	t.Run("LikeSQLiteEscapeClause", func(t *testing.T) {
		b := NewBuilder(dialect.SQLite)
		Contains("name", "oh").build(b)
		assert.Equal(t, `"name" LIKE ? ESCAPE '\'`, b.String())
	})

	t.Run("Fold", func(t *testing.T) {
		query, args := render(EqualFold("email", "A@B.C"))
		assert.Equal(t, `LOWER("email") = $1`, query)
		assert.Equal(t, []any{"a@b.c"}, args)

		query, args = render(ContainsFold("name", "John"))
		assert.Equal(t, `LOWER("name") LIKE $1`, query)
		assert.Equal(t, []any{"%john%"}, args)
	})
}

func TestInsertBuilder(t *testing.T) {
	t.Parallel()

	t.Run("SingleRow", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Insert("tags").
			Columns("id", "name").
			Values("t1", "sunset").
			Query()
		assert.Equal(t, `INSERT INTO "tags" ("id", "name") VALUES ($1, $2)`, query)
		assert.Equal(t, []any{"t1", "sunset"}, args)
	})

	t.Run("MultiRow", func(t *testing.T) {
		query, args := Dialect(dialect.MySQL).
			Insert("tags").
			Columns("id", "name").
			Values("t1", "sunset").
			Values("t2", "beach").
			Query()
		assert.Equal(t, "INSERT INTO `tags` (`id`, `name`) VALUES (?, ?), (?, ?)", query)
		assert.Equal(t, []any{"t1", "sunset", "t2", "beach"}, args)
	})

	t.Run("OnConflictDoNothing", func(t *testing.T) {
		query, _ := Dialect(dialect.Postgres).
			Insert("tags").
			Columns("id").
			Values("t1").
			OnConflictDoNothing().
			Query()
		assert.Equal(t, `INSERT INTO "tags" ("id") VALUES ($1) ON CONFLICT DO NOTHING`, query)
	})

	t.Run("InsertIgnoreMySQL", func(t *testing.T) {
		query, _ := Dialect(dialect.MySQL).
			Insert("tags").
			Columns("id").
			Values("t1").
			OnConflictDoNothing().
			Query()
		assert.Equal(t, "INSERT IGNORE INTO `tags` (`id`) VALUES (?)", query)
	})
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	t.Run("SetWhere", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Update("users").
			Set("name", "john").
			Set("role", "ADMIN").
			Where(EQ("id", "u1")).
			Query()
		assert.Equal(t, `UPDATE "users" SET "name" = $1, "role" = $2 WHERE "id" = $3`, query)
		assert.Equal(t, []any{"john", "ADMIN", "u1"}, args)
	})

	t.Run("NilSetsNull", func(t *testing.T) {
		query, args := Dialect(dialect.Postgres).
			Update("galleries").
			Set("cover_image_id", nil).
			Where(EQ("id", "g1")).
			Query()
		assert.Equal(t, `UPDATE "galleries" SET "cover_image_id" = NULL WHERE "id" = $1`, query)
		assert.Equal(t, []any{"g1"}, args)
	})

	t.Run("Empty", func(t *testing.T) {
		u := Dialect(dialect.Postgres).Update("users")
		assert.True(t, u.Empty())
		u.Set("name", "x")
		assert.False(t, u.Empty())
	})
}

func TestDeleteBuilder(t *testing.T) {
	t.Parallel()

	query, args := Dialect(dialect.SQLite).
		Delete("sessions").
		Where(LT("expires", 42)).
		Query()
	assert.Equal(t, `DELETE FROM "sessions" WHERE "expires" < ?`, query)
	assert.Equal(t, []any{42}, args)

	query, args = Dialect(dialect.MySQL).Delete("sessions").Query()
	assert.Equal(t, "DELETE FROM `sessions`", query)
	assert.Empty(t, args)
}

func TestAggregateHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "COUNT(*)", Count("*"))
	assert.Equal(t, `MIN("age")`, Min(`"age"`))
	assert.Equal(t, `MAX("age")`, Max(`"age"`))
	assert.Equal(t, `AVG("age")`, Avg(`"age"`))
	assert.Equal(t, `SUM("age")`, Sum(`"age"`))
	assert.Equal(t, "COUNT(*) AS n", As(Count("*"), "n"))
}
