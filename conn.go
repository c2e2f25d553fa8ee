package bolt

import (
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/graphwire/golang-bolt5-driver/encoding"
	"github.com/graphwire/golang-bolt5-driver/errors"
	"github.com/graphwire/golang-bolt5-driver/log"
	"github.com/graphwire/golang-bolt5-driver/messages"
	"github.com/graphwire/golang-bolt5-driver/metrics"
)

// Conn is a single Bolt 5.1 connection.
//
// Conn objects ARE NOT THREAD SAFE. Queuing never blocks; SendAll and
// the Fetch methods are the only calls that touch the network. A pool
// wanting cross-connection concurrency should hand each goroutine its
// own Conn.
//
// Requests are pipelined: operations only append to an outbox, and
// nothing hits the wire until SendAll. Responses come back in send
// order and must be drained in that order.
type Conn struct {
	address   string
	transport net.Conn
	timeout   time.Duration
	chunkSize uint16
	pipeline  *pipeline
	features  featureSet

	id     string // client-side id used in log lines
	connID string // server-assigned connection id, known after HELLO
	server string // server agent string, known after HELLO

	createdAt   time.Time
	lastUsed    time.Time
	maxLifetime int64 // seconds; negative means unbounded

	staleFlag bool
	defunct   bool
	closed    bool

	userAgent      string
	routingContext map[string]interface{}
	auth           *AuthToken
	authManager    AuthManager
	notifications  NotificationConfig
	recordFunc     func(fields []interface{})

	// onAuthUpdated lets the pool track the active token across ReAuth
	onAuthUpdated func(token AuthToken)
}

// Option configures a Conn at construction time.
type Option func(*Conn)

// WithAuth configures the token used for the LOGON pipelined behind
// HELLO and for explicit Logon calls.
func WithAuth(token AuthToken) Option {
	return func(c *Conn) {
		c.auth = &token
	}
}

// WithAuthManager attaches the re-authentication policy holder.
func WithAuthManager(manager AuthManager) Option {
	return func(c *Conn) {
		c.authManager = manager
	}
}

// WithRoutingContext attaches the routing context sent in HELLO. The
// mapping is used as-is for the connection's whole life.
func WithRoutingContext(routingContext map[string]interface{}) Option {
	return func(c *Conn) {
		c.routingContext = routingContext
	}
}

// WithUserAgent overrides the user agent announced in HELLO.
func WithUserAgent(userAgent string) Option {
	return func(c *Conn) {
		c.userAgent = userAgent
	}
}

// WithNotifications requests notification filtering. Bolt 5.1 does not
// support it; Hello will reject the connection configuration.
func WithNotifications(notifications NotificationConfig) Option {
	return func(c *Conn) {
		c.notifications = notifications
	}
}

// WithTimeout sets the starting transport receive timeout. Servers may
// adjust it through the connection.recv_timeout_seconds hint.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Conn) {
		c.timeout = timeout
	}
}

// WithChunkSize sets the outgoing message chunk size.
func WithChunkSize(chunkSize uint16) Option {
	return func(c *Conn) {
		c.chunkSize = chunkSize
	}
}

// WithRecordFunc installs a callback invoked for every RECORD message
// drained off the connection.
func WithRecordFunc(recordFunc func(fields []interface{})) Option {
	return func(c *Conn) {
		c.recordFunc = recordFunc
	}
}

// NewConn creates a connection over an established transport.
// maxLifetime is in seconds; a negative value disables the time-based
// staleness check. The connection is usable for queuing immediately;
// Hello performs the authentication handshake.
func NewConn(address string, transport net.Conn, maxLifetime int64, opts ...Option) *Conn {
	now := time.Now()
	c := &Conn{
		address:     address,
		transport:   transport,
		timeout:     10 * time.Second,
		chunkSize:   encoding.DefaultChunkSize,
		features:    bolt5x1Features,
		id:          uuid.New().String(),
		createdAt:   now,
		lastUsed:    now,
		maxLifetime: maxLifetime,
		userAgent:   ClientID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pipeline = newPipeline(c, c.chunkSize)
	return c
}

// Read reads from the underlying transport, applying the receive
// timeout as a read deadline.
func (c *Conn) Read(b []byte) (n int, err error) {
	if c.timeout > 0 {
		if err := c.transport.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	n, err = c.transport.Read(b)
	if err != nil && err != io.EOF {
		log.Errorf("An error occurred reading from stream: %s", err)
	}
	return n, err
}

// Write writes to the underlying transport, applying the timeout as a
// write deadline.
func (c *Conn) Write(b []byte) (n int, err error) {
	if c.timeout > 0 {
		if err := c.transport.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	n, err = c.transport.Write(b)
	// Contents are traced per message in the pipeline, where frames
	// carrying credentials can be elided; never dump raw bytes here.
	log.Tracef("Wrote %d of %d bytes to stream", n, len(b))
	if err != nil {
		log.Errorf("An error occurred writing to stream: %s", err)
	}
	return n, err
}

// Address gets the remote address this connection was built for
func (c *Conn) Address() string {
	return c.address
}

// Server gets the server agent string reported in the HELLO response
func (c *Conn) Server() string {
	return c.server
}

// ConnectionID gets the server-assigned connection id
func (c *Conn) ConnectionID() string {
	return c.connID
}

// SetTimeout sets the receive timeout for the transport
func (c *Conn) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Stale reports whether the pool should refuse to reuse this
// connection. It is true once SetStale has been called, or once the
// connection has outlived its maximum lifetime. The time-based check
// stays live until read; it is never cached.
func (c *Conn) Stale() bool {
	if c.staleFlag {
		return true
	}
	if c.maxLifetime < 0 {
		return false
	}
	return time.Since(c.createdAt) >= time.Duration(c.maxLifetime)*time.Second
}

// SetStale marks the connection stale. The flag is sticky: once set it
// never clears.
func (c *Conn) SetStale() {
	c.staleFlag = true
}

// Defunct reports whether an unrecoverable protocol or transport error
// has occurred. A defunct connection must be discarded, never reused.
func (c *Conn) Defunct() bool {
	return c.defunct
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.closed
}

// Hello queues the HELLO message and, when an auth token is
// configured, a LOGON right behind it, sends both in a single flush
// and drains exactly that many responses. The common case pays one
// round trip for greeting plus authentication.
func (c *Conn) Hello() error {
	if err := checkNotificationFiltering(c.notifications, c.features); err != nil {
		return err
	}

	if c.auth == nil && c.authManager != nil {
		token, err := c.authManager.GetAuthToken()
		if err != nil {
			return errors.Wrap(err, "An error occurred getting an auth token from the auth manager")
		}
		c.auth = &token
	}

	extra := map[string]interface{}{
		"user_agent": c.userAgent,
	}
	if c.routingContext != nil {
		extra["routing"] = c.routingContext
	}

	if err := c.pipeline.queue(messages.NewHelloMessage(extra), c.helloResponseHandler()); err != nil {
		return err
	}
	expected := 1

	if c.auth != nil {
		log.Infof("[%s] Authenticating: %s", c.id, *c.auth)
		if err := c.pipeline.queue(messages.NewLogonMessage(c.auth.wireMap()), c.logonResponseHandler()); err != nil {
			return err
		}
		expected++
	}

	if err := c.SendAll(); err != nil {
		return err
	}
	for i := 0; i < expected; i++ {
		// A failure halts the drain; remaining responses belong to a
		// handshake that already went wrong.
		if err := c.FetchOne(); err != nil {
			return err
		}
	}
	log.Infof("[%s] Connected to %s", c.id, c.server)
	return nil
}

// Logon queues a LOGON message built from the configured auth token.
// It does not flush.
func (c *Conn) Logon() error {
	if c.auth == nil {
		return errors.New("An auth token is required to LOGON")
	}
	log.Infof("[%s] Authenticating: %s", c.id, *c.auth)
	return c.pipeline.queue(messages.NewLogonMessage(c.auth.wireMap()), c.logonResponseHandler())
}

// Logoff queues a LOGOFF message, returning the connection to the
// unauthenticated state once flushed. It does not flush.
func (c *Conn) Logoff() error {
	return c.pipeline.queue(messages.NewLogoffMessage(), c.expectedSuccessHandler(nil))
}

// ReAuth queues LOGOFF followed by LOGON with the new token, then
// replaces the stored token and auth manager. It does not flush, so
// the exchange can ride along with whatever is sent next.
func (c *Conn) ReAuth(token AuthToken, manager AuthManager) error {
	if err := c.Logoff(); err != nil {
		return err
	}
	log.Infof("[%s] Re-authenticating: %s", c.id, token)
	if err := c.pipeline.queue(messages.NewLogonMessage(token.wireMap()), c.logonResponseHandler()); err != nil {
		return err
	}
	c.auth = &token
	c.authManager = manager
	if c.onAuthUpdated != nil {
		c.onAuthUpdated(token)
	}
	return nil
}

// AuthManager gets the current auth manager reference
func (c *Conn) AuthManager() AuthManager {
	return c.authManager
}

// AuthToken gets the current auth token, or nil when unauthenticated
func (c *Conn) AuthToken() *AuthToken {
	return c.auth
}

// Run queues a RUN message for the given statement and parameters.
func (c *Conn) Run(statement string, parameters map[string]interface{}, config TxConfig) error {
	if err := checkNotificationFiltering(config.Notifications, c.features); err != nil {
		return err
	}
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	msg := messages.NewRunMessage(statement, parameters, txExtras(config))
	return c.pipeline.queue(msg, c.expectedSuccessHandler(nil))
}

// Begin queues a BEGIN message opening an explicit transaction.
func (c *Conn) Begin(config TxConfig) error {
	if err := checkNotificationFiltering(config.Notifications, c.features); err != nil {
		return err
	}
	return c.pipeline.queue(messages.NewBeginMessage(txExtras(config)), c.expectedSuccessHandler(nil))
}

// Discard queues a DISCARD message throwing away up to n records
// (-1 for all) of query qid (-1 for the most recent).
func (c *Conn) Discard(n, qid int64) error {
	return c.pipeline.queue(messages.NewDiscardMessage(streamExtras(n, qid)), c.expectedSuccessHandler(nil))
}

// Pull queues a PULL message requesting up to n records (-1 for all)
// of query qid (-1 for the most recent). Records drained later are
// handed to the record callback, if one was configured.
func (c *Conn) Pull(n, qid int64) error {
	handler := c.expectedSuccessHandler(nil)
	handler.onRecord = c.recordFunc
	return c.pipeline.queue(messages.NewPullMessage(streamExtras(n, qid)), handler)
}

// Reset queues a RESET message, asking the server to forget any
// failure state and pending results.
func (c *Conn) Reset() error {
	return c.pipeline.queue(messages.NewResetMessage(), c.expectedSuccessHandler(nil))
}

// Goodbye queues a GOODBYE message. The server hangs up instead of
// responding, so no handler is registered.
func (c *Conn) Goodbye() error {
	return c.pipeline.queueNoResponse(messages.NewGoodbyeMessage())
}

// SendAll flushes the outbox: every queued message is written to the
// transport in FIFO order.
func (c *Conn) SendAll() error {
	if err := c.pipeline.flush(); err != nil {
		c.defunct = true
		return err
	}
	return nil
}

// FetchOne drains exactly one response, resolving the oldest pending
// handler. A *ServerError return leaves the connection usable;
// anything else marks it defunct.
func (c *Conn) FetchOne() error {
	err := c.pipeline.fetchOne()
	if err == nil {
		c.lastUsed = time.Now()
		return nil
	}
	if _, ok := err.(*ServerError); ok {
		c.lastUsed = time.Now()
		return err
	}
	c.defunct = true
	return err
}

// FetchAll drains responses until nothing is pending, stopping at the
// first error.
func (c *Conn) FetchAll() error {
	for c.pipeline.pendingCount() > 0 {
		if err := c.FetchOne(); err != nil {
			return err
		}
	}
	return nil
}

// Close says GOODBYE (best effort) and closes the transport. The
// connection is unusable afterwards.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if !c.defunct {
		if err := c.Goodbye(); err == nil {
			if err := c.SendAll(); err != nil {
				log.Infof("[%s] Could not say goodbye: %s", c.id, err)
			}
		}
	}

	if err := c.transport.Close(); err != nil {
		log.Errorf("An error occurred closing the connection: %s", err)
		return errors.Wrap(err, "An error occurred closing the connection")
	}
	return nil
}

func (c *Conn) helloResponseHandler() responseHandler {
	return responseHandler{
		onSuccess: func(metadata map[string]interface{}) {
			if server, ok := metadata["server"].(string); ok {
				c.server = server
			}
			if connID, ok := metadata["connection_id"].(string); ok {
				c.connID = connID
			}
			c.applyHints(metadata)
		},
		onFailure: func(failure *ServerError) {
			metrics.AuthFailures.Inc()
		},
	}
}

func (c *Conn) logonResponseHandler() responseHandler {
	return responseHandler{
		onFailure: func(failure *ServerError) {
			metrics.AuthFailures.Inc()
			if c.authManager != nil && c.auth != nil {
				c.authManager.OnAuthExpired(*c.auth)
			}
		},
	}
}

func (c *Conn) expectedSuccessHandler(onSuccess func(metadata map[string]interface{})) responseHandler {
	return responseHandler{onSuccess: onSuccess}
}
