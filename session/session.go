package session

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/avtocod/avtocod-go/connector"
	"github.com/avtocod/avtocod-go/proxy"
)

const (
	// DefaultTimeout bounds a single request attempt unless overridden
	// per call.
	DefaultTimeout = 60 * time.Second

	defaultMaxIdleConns    = 32
	defaultIdleConnTimeout = 90 * time.Second
)

// Session owns the pooled HTTP connection resource used to issue API
// requests.
//
// The pool is created lazily on first acquisition. Changing the proxy
// configuration marks the pool dirty; the next acquisition closes the
// stale pool and opens a new one built from the updated connector.
// Requests that already acquired the old pool keep using it until they
// finish.
type Session struct {
	mu sync.Mutex

	client *http.Client
	dirty  bool

	conn      connector.Connector
	factory   connector.Factory
	connCfg   connector.Config
	proxySpec *proxy.Spec

	apiURL  string
	headers http.Header
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithProxy routes all session traffic through the given proxy or
// chain. A nil spec means direct connections.
func WithProxy(spec *proxy.Spec) Option {
	return func(s *Session) { s.proxySpec = spec }
}

// WithConnectorFactory replaces the default connector factory. Useful
// for swapping in a custom transport layer.
func WithConnectorFactory(f connector.Factory) Option {
	return func(s *Session) { s.factory = f }
}

// WithConnectorConfig sets dialing knobs for every connector kind.
func WithConnectorConfig(cfg connector.Config) Option {
	return func(s *Session) { s.connCfg = cfg }
}

// WithAPIURL overrides the endpoint all method calls are POSTed to.
func WithAPIURL(u string) Option {
	return func(s *Session) { s.apiURL = u }
}

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) Option {
	return func(s *Session) { s.headers.Set(key, value) }
}

// WithTimeout sets the session's default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New constructs a Session. If a proxy spec is given, it is resolved
// here so configuration errors surface before any network I/O.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		dirty:   true,
		factory: connector.New,
		connCfg: connector.Config{
			DialTimeout:        10 * time.Second,
			NegotiationTimeout: 10 * time.Second,
		},
		headers: make(http.Header),
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	s.headers.Set("Content-Type", "application/json")

	for _, o := range opts {
		o(s)
	}

	if s.proxySpec != nil {
		conn, err := s.factory(s.connCfg, s.proxySpec)
		if err != nil {
			return nil, err
		}
		s.conn = conn
	}

	return s, nil
}

// SetHeader sets a header sent with every subsequent request, e.g. the
// authorization token obtained after login.
func (s *Session) SetHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers.Set(key, value)
}

// Proxy returns the current proxy spec, nil when dialing directly.
func (s *Session) Proxy() *proxy.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proxySpec
}

// SetProxy updates the proxy configuration. The new connector is built
// synchronously, so a bad spec fails here and leaves the session
// untouched. The live pool, if any, is marked dirty and replaced on the
// next acquisition; in-flight requests keep the pool they acquired.
func (s *Session) SetProxy(spec *proxy.Spec) error {
	conn, err := s.factory(s.connCfg, spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proxySpec = spec
	s.conn = conn
	s.dirty = true
	s.log.Debug().Bool("chain", spec != nil && spec.IsChain()).Msg("session proxy updated")
	return nil
}

// Acquire returns the live pooled client, performing any pending
// transition first: a dirty or missing pool is (re)built from the
// current connector. It never returns a closed pool; acquiring after
// Close simply opens a fresh one.
func (s *Session) Acquire() (*http.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty {
		s.closeLocked()
	}

	if s.client == nil {
		conn := s.conn
		if conn == nil {
			c, err := s.factory(s.connCfg, nil)
			if err != nil {
				return nil, err
			}
			conn = c
			s.conn = c
		}
		s.client = &http.Client{Transport: s.newTransport(conn)}
		s.dirty = false
		s.log.Debug().Msg("session opened")
	}

	return s.client, nil
}

// Close tears down the pooled client. It is idempotent: closing twice,
// or before the pool was ever opened, is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *Session) closeLocked() {
	if s.client == nil {
		return
	}
	s.client.CloseIdleConnections()
	s.client = nil
	s.log.Debug().Msg("session closed")
}

func (s *Session) newTransport(conn connector.Connector) *http.Transport {
	return &http.Transport{
		DialContext:         conn.DialContext,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConns,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: s.connCfg.NegotiationTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}
