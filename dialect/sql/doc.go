// Package sql provides SQL query building primitives and database dialect abstraction.
//
// This package is the foundation for generating and executing SQL queries across
// different database systems (PostgreSQL, MySQL, SQLite). It provides a fluent API
// for constructing parameterized SQL statements.
//
// # Builder Types
//
// The package provides specialized builders for different SQL operations:
//
//   - Builder: Low-level SQL string builder with identifier quoting
//   - Selector: SELECT query builder with joins, predicates, and pagination
//   - InsertBuilder: INSERT statement builder with multi-row and conflict handling
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE statement builder with WHERE predicates
//
// # Dialect Support
//
// SQL generation adapts to different database dialects:
//
//	import "github.com/vcostin/gallerydb/dialect"
//
//	// PostgreSQL
//	sql.Dialect(dialect.Postgres).
//		Select("id", "name").From("users").Where(sql.EQ("status", "active"))
//
//	// MySQL
//	sql.Dialect(dialect.MySQL)
//
// Identifier quoting (backticks vs. double quotes) and argument placeholders
// (? vs. $N) follow the chosen dialect.
//
// # Predicates
//
// Predicate functions build WHERE conditions:
//
//	// Equality
//	sql.EQ("name", "john")           // name = 'john'
//	sql.NEQ("status", "deleted")     // status <> 'deleted'
//
//	// Comparison
//	sql.GT("age", 18)                // age > 18
//	sql.LTE("price", 100.0)          // price <= 100.0
//
//	// String matching
//	sql.Contains("name", "john")     // name LIKE '%john%'
//	sql.HasPrefix("email", "admin")  // email LIKE 'admin%'
//
//	// NULL checks
//	sql.IsNull("deleted_at")         // deleted_at IS NULL
//	sql.NotNull("email")             // email IS NOT NULL
//
//	// IN clauses
//	sql.In("status", "active", "pending")  // status IN ('active', 'pending')
//
// Predicates compose with And, Or, and Not.
//
// # Joins
//
// Join operations are supported through the selector:
//
//	sql.Select("users.id", "users.name").
//	    From("users").
//	    Join("posts", "users.id", "posts.user_id").
//	    Where(sql.EQ("users.status", "active"))
//
// # Pagination
//
// Offset pagination renders LIMIT/OFFSET clauses for every dialect,
// including the no-limit fallback MySQL and SQLite require when only an
// offset is set:
//
//	sql.Select("*").From("users").Offset(20).Limit(10)
//
// Cursor pagination is built from ordinary predicates and ordering:
//
//	sql.Select("*").From("users").
//	    Where(sql.GTE("created_at", cursor)).
//	    OrderBy(sql.Asc("created_at")).
//	    Limit(10)
//
// # Execution
//
// Open wraps database/sql connections in the dialect.Driver interface used by
// higher layers:
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://localhost/gallery")
//	if err != nil { ... }
//	var rows sql.Rows
//	err = drv.Query(ctx, query, args, &rows)
package sql
