package gallerydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vcostin/gallerydb/dialect"
	dsql "github.com/vcostin/gallerydb/dialect/sql"
)

// Default interactive transaction limits, applied when TxOptions leaves them
// zero.
const (
	DefaultTxMaxWait = 2 * time.Second
	DefaultTxTimeout = 5 * time.Second
)

// TxOptions bounds an interactive transaction.
type TxOptions struct {
	// MaxWait limits how long to wait for a connection before the
	// transaction starts.
	MaxWait time.Duration
	// Timeout limits the total transaction duration. On expiry the
	// transaction is rolled back and TxTimeoutError is returned.
	Timeout time.Duration
	// Isolation is the transaction isolation level. The default is the
	// driver's default.
	Isolation sql.IsolationLevel
}

// Tx is a transactional client. It exposes the same delegates as Client,
// bound to a single database transaction. Caching is bypassed inside a
// transaction; the cache is invalidated after commit.
type Tx struct {
	cfg *config
	tx  dialect.Tx

	User              *UserClient
	Account           *AccountClient
	Session           *SessionClient
	VerificationToken *VerificationTokenClient
	Image             *ImageClient
	Gallery           *GalleryClient
	Tag               *TagClient
	ImageInGallery    *ImageInGalleryClient
}

// txDriver adapts a running transaction to the driver interface the
// delegates execute against.
type txDriver struct {
	conn dialect.Tx
	name string
}

func (d txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.conn.Exec(ctx, query, args, v)
}

func (d txDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.conn.Query(ctx, query, args, v)
}

func (d txDriver) Dialect() string { return d.name }

func (d txDriver) Close() error { return nil }

func (d txDriver) Tx(context.Context) (dialect.Tx, error) {
	return nil, ErrTxStarted
}

type txBeginner interface {
	BeginTx(context.Context, *dsql.TxOptions) (dialect.Tx, error)
}

func (c *Client) begin(ctx context.Context, opt TxOptions) (*Tx, error) {
	maxWait := opt.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultTxMaxWait
	}
	// The context handed to the driver governs the whole transaction
	// lifetime, so the acquisition wait is bounded with a timer instead of
	// a context deadline.
	type beginResult struct {
		tx  dialect.Tx
		err error
	}
	res := make(chan beginResult, 1)
	go func() {
		var r beginResult
		if b, ok := c.drv.(txBeginner); ok {
			r.tx, r.err = b.BeginTx(ctx, &dsql.TxOptions{Isolation: opt.Isolation})
		} else {
			r.tx, r.err = c.drv.Tx(ctx)
		}
		res <- r
	}()
	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	var tx dialect.Tx
	select {
	case r := <-res:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return nil, &TxTimeoutError{Phase: "maxWait", Err: r.err}
			}
			return nil, &ConnectionError{Err: r.err}
		}
		tx = r.tx
	case <-timer.C:
		// Release the transaction if the driver hands one out late.
		go func() {
			if r := <-res; r.err == nil {
				r.tx.Rollback()
			}
		}()
		return nil, &TxTimeoutError{Phase: "maxWait", Err: context.DeadlineExceeded}
	case <-ctx.Done():
		go func() {
			if r := <-res; r.err == nil {
				r.tx.Rollback()
			}
		}()
		return nil, &ConnectionError{Err: ctx.Err()}
	}

	// Caching is disabled on the transactional config so uncommitted reads
	// never land in the shared cache.
	txCfg := c.cfg
	txCfg.cache = nil
	t := &Tx{cfg: &txCfg, tx: tx}
	drv := txDriver{conn: tx, name: c.drv.Dialect()}
	s := &session{drv: drv, cfg: &txCfg, serial: true}
	t.User = &UserClient{s: s}
	t.Account = &AccountClient{s: s}
	t.Session = &SessionClient{s: s}
	t.VerificationToken = &VerificationTokenClient{s: s}
	t.Image = &ImageClient{s: s}
	t.Gallery = &GalleryClient{s: s}
	t.Tag = &TagClient{s: s}
	t.ImageInGallery = &ImageInGalleryClient{s: s}
	return t, nil
}

// Transaction runs fn inside an interactive transaction. The transaction is
// committed when fn returns nil and rolled back when it returns an error or
// panics; a panic is re-raised after the rollback. When fn exceeds
// the configured timeout, its context is canceled, the transaction is rolled
// back and a TxTimeoutError is returned.
func (c *Client) Transaction(ctx context.Context, fn func(ctx context.Context, tx *Tx) error, opts ...TxOptions) error {
	var opt TxOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	t, err := c.begin(ctx, opt)
	if err != nil {
		return err
	}
	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// A panicking callback must not leave the transaction open.
	defer func() {
		if v := recover(); v != nil {
			t.tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(txCtx, t); err != nil {
		if rerr := t.tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, &RollbackError{Err: rerr})
		}
		if errors.Is(err, context.DeadlineExceeded) && txCtx.Err() != nil {
			return &TxTimeoutError{Phase: "timeout", Err: err}
		}
		return err
	}
	if err := txCtx.Err(); err != nil {
		if rerr := t.tx.Rollback(); rerr != nil {
			return &RollbackError{Err: rerr}
		}
		return &TxTimeoutError{Phase: "timeout", Err: err}
	}
	if err := t.tx.Commit(); err != nil {
		return commitError(err)
	}
	if c.cfg.cache != nil {
		// Coarse but correct: any committed write may touch cached lookups.
		if err := c.cfg.cache.Clear(ctx); err != nil {
			c.cfg.logger.Warn("cache clear after commit failed", "err", err)
		}
	}
	return nil
}

func commitError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TxTimeoutError{Phase: "timeout", Err: err}
	}
	return err
}

// Batch runs the given operations sequentially inside one transaction.
// Either all of them commit or, on the first error, none do.
func (c *Client) Batch(ctx context.Context, ops ...func(ctx context.Context, tx *Tx) error) error {
	return c.Transaction(ctx, func(ctx context.Context, tx *Tx) error {
		for _, op := range ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}
