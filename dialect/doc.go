// Package dialect provides the database abstraction used by gallerydb.
//
// It defines the interfaces and types used for database-specific operations,
// allowing the client to run against PostgreSQL, MySQL, and SQLite.
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the narrow "execute(statement, params)" surface
// the rest of the client is built on:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback.
//
// # Sub-packages
//
//   - dialect/sql: the database/sql-backed driver, the parameterized
//     statement builders, and constraint-error decoding.
//
// # Logging
//
// Debug wraps any Driver with statement logging, either through log/slog or
// through a user-supplied event callback:
//
//	drv, _ := sql.Open(dialect.SQLite, "file:demo?mode=memory")
//	client := gallerydb.NewClient(dialect.Debug(drv))
package dialect
