package dialect

import (
	"context"
	"log/slog"
	"time"
)

// Supported dialect names. They match the driver names used by database/sql.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two basic Exec and Query methods.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The v argument,
	// if non-nil, must be a *sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. The v argument must be
	// a *sql.Rows wrapper provided by the concrete driver package.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transaction commit and rollback around an ExecQuerier.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx with a no-op Commit / Rollback.
func NopTx(d Driver) Tx {
	return nopTx{d}
}

// LogEvent is emitted by the debug driver for every statement.
type LogEvent struct {
	// Level is one of "query", "info", "warn" or "error".
	Level string
	// Query is the statement that was executed.
	Query string
	// Args holds the bound statement parameters.
	Args []any
	// Duration is the statement execution time.
	Duration time.Duration
	// Err is set when the statement failed.
	Err error
}

// LogFunc receives log events instead of (or in addition to) slog output.
type LogFunc func(context.Context, LogEvent)

// DebugDriver is a driver that logs all driver operations.
type DebugDriver struct {
	Driver
	log   *slog.Logger
	event LogFunc
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// WithLogger sets the slog logger used for emitted statements.
// The default is slog.Default.
func WithLogger(l *slog.Logger) DebugOption {
	return func(d *DebugDriver) { d.log = l }
}

// WithLogFunc registers a callback receiving every log event. When set,
// events are delivered to the callback and not to the logger.
func WithLogFunc(f LogFunc) DebugOption {
	return func(d *DebugDriver) { d.event = f }
}

// Debug gets a driver and a set of options, and returns a new debug driver
// that prints all outgoing operations.
func Debug(d Driver, opts ...DebugOption) Driver {
	drv := &DebugDriver{Driver: d, log: slog.Default()}
	for _, opt := range opts {
		opt(drv)
	}
	return drv
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.emit(ctx, query, args, time.Since(start), err)
	return err
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.emit(ctx, query, args, time.Since(start), err)
	return err
}

// Tx starts a logged transaction.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		d.emit(ctx, "BEGIN", nil, 0, err)
		return nil, err
	}
	d.emit(ctx, "BEGIN", nil, 0, nil)
	return &DebugTx{Tx: tx, drv: d}, nil
}

func (d *DebugDriver) emit(ctx context.Context, query string, args any, took time.Duration, err error) {
	argv, _ := args.([]any)
	level := "query"
	if err != nil {
		level = "error"
	}
	if d.event != nil {
		d.event(ctx, LogEvent{Level: level, Query: query, Args: argv, Duration: took, Err: err})
		return
	}
	if err != nil {
		d.log.ErrorContext(ctx, "statement failed", "query", query, "args", argv, "err", err)
		return
	}
	d.log.DebugContext(ctx, "statement", "query", query, "args", argv, "duration", took)
}

// DebugTx is a transaction implementation that logs all transaction operations.
type DebugTx struct {
	Tx
	drv *DebugDriver
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Tx.Exec(ctx, query, args, v)
	d.drv.emit(ctx, query, args, time.Since(start), err)
	return err
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Tx.Query(ctx, query, args, v)
	d.drv.emit(ctx, query, args, time.Since(start), err)
	return err
}

// Commit logs this step and calls the underlying transaction Commit method.
func (d *DebugTx) Commit() error {
	err := d.Tx.Commit()
	d.drv.emit(context.Background(), "COMMIT", nil, 0, err)
	return err
}

// Rollback logs this step and calls the underlying transaction Rollback method.
func (d *DebugTx) Rollback() error {
	err := d.Tx.Rollback()
	d.drv.emit(context.Background(), "ROLLBACK", nil, 0, err)
	return err
}
