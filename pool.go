package bolt

import (
	"context"
	"sync"

	pool "github.com/jolestar/go-commons-pool"

	"github.com/graphwire/golang-bolt5-driver/config"
	"github.com/graphwire/golang-bolt5-driver/errors"
	"github.com/graphwire/golang-bolt5-driver/log"
	"github.com/graphwire/golang-bolt5-driver/metrics"
)

// connFactory dials, validates and tears down pooled connections on
// behalf of the object pool.
type connFactory struct {
	address  string
	dialOpts DialOptions
}

// MakeObject dials a fresh, authenticated connection
func (f *connFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	conn, err := Dial(f.address, f.dialOpts)
	if err != nil {
		return nil, err
	}
	metrics.ConnectionsCreated.Inc()
	metrics.ConnectionsActive.Inc()
	return pool.NewPooledObject(conn), nil
}

// DestroyObject closes a connection the pool is done with
func (f *connFactory) DestroyObject(ctx context.Context, object *pool.PooledObject) error {
	conn := object.Object.(*Conn)
	metrics.ConnectionsActive.Dec()
	metrics.ConnectionsDestroyed.Inc()
	return conn.Close()
}

// ValidateObject decides whether a connection may be handed out again.
// Stale and defunct connections are evicted, never repaired.
func (f *connFactory) ValidateObject(ctx context.Context, object *pool.PooledObject) bool {
	conn := object.Object.(*Conn)
	if conn.Defunct() || conn.Closed() {
		metrics.DefunctEvictions.Inc()
		return false
	}
	if conn.Stale() {
		metrics.StaleEvictions.Inc()
		return false
	}
	return true
}

// ActivateObject is a no-op; connections need no reactivation
func (f *connFactory) ActivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

// PassivateObject is a no-op; connections idle as-is
func (f *connFactory) PassivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

// Pool hands out ready-to-use connections to a single Bolt address.
// Unlike connections, the Pool is safe for concurrent use.
//
// The pool tracks the auth token across re-authentication so that
// connections it creates later start out with the newest credentials.
type Pool struct {
	inner   *pool.ObjectPool
	factory *connFactory

	mu    sync.Mutex
	token *AuthToken
}

// NewPool builds a connection pool for the given address. connOpts are
// applied to every connection the pool creates, on top of what cfg
// provides.
func NewPool(ctx context.Context, address string, cfg config.DriverConfig, connOpts ...Option) *Pool {
	p := &Pool{}

	opts := append([]Option{
		WithUserAgent(cfg.UserAgent),
		WithTimeout(cfg.ReadTimeout),
	}, connOpts...)
	opts = append(opts, func(c *Conn) {
		c.onAuthUpdated = p.noteAuthToken
	})

	p.factory = &connFactory{
		address: address,
		dialOpts: DialOptions{
			ConnectTimeout:        cfg.ConnectTimeout,
			MaxConnectionLifetime: cfg.MaxConnectionLifetime,
			ConnOptions:           opts,
		},
	}

	poolCfg := pool.NewDefaultPoolConfig()
	poolCfg.MaxTotal = cfg.MaxPoolSize
	poolCfg.MaxIdle = cfg.MaxIdle
	poolCfg.TestOnBorrow = true
	poolCfg.TestOnReturn = true

	p.inner = pool.NewObjectPool(ctx, p.factory, poolCfg)

	if cfg.MetricsPort > 0 {
		metrics.StartServer(cfg.MetricsPort, cfg.MetricsPath)
	}
	return p
}

// Borrow takes a connection out of the pool, dialing a new one when
// none are idle.
func (p *Pool) Borrow(ctx context.Context) (*Conn, error) {
	object, err := p.inner.BorrowObject(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "An error occurred borrowing a connection from the pool")
	}
	conn, ok := object.(*Conn)
	if !ok {
		return nil, errors.New("Pool returned an unexpected object of type %T", object)
	}

	// A token refreshed on one connection applies to its siblings too
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	if token != nil && conn.AuthToken() != nil && !sameToken(*conn.AuthToken(), *token) {
		if err := conn.ReAuth(*token, conn.AuthManager()); err != nil {
			if ierr := p.inner.InvalidateObject(ctx, object); ierr != nil {
				log.Errorf("An error occurred invalidating a connection after a failed re-authentication: %s", ierr)
			}
			return nil, err
		}
	}
	return conn, nil
}

// Return gives a connection back to the pool for reuse.
func (p *Pool) Return(ctx context.Context, conn *Conn) error {
	if err := p.inner.ReturnObject(ctx, conn); err != nil {
		return errors.Wrap(err, "An error occurred returning a connection to the pool")
	}
	return nil
}

// Discard tells the pool a connection must not be reused.
func (p *Pool) Discard(ctx context.Context, conn *Conn) error {
	conn.SetStale()
	if err := p.inner.InvalidateObject(ctx, conn); err != nil {
		return errors.Wrap(err, "An error occurred discarding a connection")
	}
	return nil
}

// Close shuts the pool down, closing every idle connection.
func (p *Pool) Close(ctx context.Context) {
	p.inner.Close(ctx)
}

func (p *Pool) noteAuthToken(token AuthToken) {
	p.mu.Lock()
	p.token = &token
	p.mu.Unlock()
}
