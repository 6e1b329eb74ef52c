// Package gallerydb is a typed database client for the picture gallery
// schema. It exposes one delegate per entity, a composable filter and
// pagination API, relation loading, and batch and interactive transactions
// on MySQL, Postgres and SQLite.
package gallerydb

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
	"time"

	"github.com/vcostin/gallerydb/dialect"
	dsql "github.com/vcostin/gallerydb/dialect/sql"
	"github.com/vcostin/gallerydb/schema"
)

//go:embed schema.yaml
var schemaDoc []byte

// Model is the compiled gallery schema. It is immutable after load; all
// clients share it.
var Model = schema.MustLoad(schemaDoc)

type config struct {
	logger   *slog.Logger
	cache    Cache
	cacheTTL time.Duration
	debug    bool
}

// Option configures a Client.
type Option func(*config)

// WithLogger sets the logger used for client diagnostics and, with
// WithDebug, for statement logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCache enables read-through caching of unique lookups. Mutations on a
// table invalidate its cached entries.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *config) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithDebug logs every executed statement with its arguments and duration.
func WithDebug() Option {
	return func(c *config) { c.debug = true }
}

// Client is the entry point to the gallery database. All delegates share the
// client's driver and configuration. A Client is safe for concurrent use.
type Client struct {
	cfg config
	drv dialect.Driver

	User              *UserClient
	Account           *AccountClient
	Session           *SessionClient
	VerificationToken *VerificationTokenClient
	Image             *ImageClient
	Gallery           *GalleryClient
	Tag               *TagClient
	ImageInGallery    *ImageInGalleryClient
}

// Open opens a connection to the database identified by the driver name
// ("mysql", "postgres", "sqlite") and DSN, and returns a client for it.
func Open(driverName, dsn string, opts ...Option) (*Client, error) {
	drv, err := dsql.Open(driverName, dsn)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return NewClient(drv, opts...), nil
}

// NewClient returns a client backed by the given driver. Use it to supply a
// pre-configured pool, a stats driver, or a mock.
func NewClient(drv dialect.Driver, opts ...Option) *Client {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.debug {
		drv = dialect.Debug(drv, dialect.WithLogger(cfg.logger))
	}
	c := &Client{cfg: cfg, drv: drv}
	c.init(drv)
	return c
}

func (c *Client) init(drv dialect.Driver) {
	s := &session{drv: drv, cfg: &c.cfg}
	c.User = &UserClient{s: s}
	c.Account = &AccountClient{s: s}
	c.Session = &SessionClient{s: s}
	c.VerificationToken = &VerificationTokenClient{s: s}
	c.Image = &ImageClient{s: s}
	c.Gallery = &GalleryClient{s: s}
	c.Tag = &TagClient{s: s}
	c.ImageInGallery = &ImageInGalleryClient{s: s}
}

// Schema returns the compiled schema model.
func (c *Client) Schema() *schema.Schema {
	return Model
}

// CreateTables creates the schema's tables, foreign keys and unique indexes
// if they do not exist. Intended for tests and embedded deployments; use a
// migration tool for production databases.
func (c *Client) CreateTables(ctx context.Context) error {
	return schema.CreateTables(ctx, c.drv, Model)
}

// QueryRaw runs a raw SQL query against the underlying driver. The caller
// owns the returned rows.
func (c *Client) QueryRaw(ctx context.Context, q string, args ...any) (*dsql.Rows, error) {
	var rows dsql.Rows
	if err := c.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	return &rows, nil
}

// ExecRaw runs a raw SQL statement against the underlying driver.
func (c *Client) ExecRaw(ctx context.Context, q string, args ...any) (sql.Result, error) {
	var res sql.Result
	if err := c.drv.Exec(ctx, q, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Close releases the underlying driver resources.
func (c *Client) Close() error {
	return c.drv.Close()
}
