package avtocod

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/avtocod/avtocod-go/methods"
	"github.com/avtocod/avtocod-go/proxy"
	"github.com/avtocod/avtocod-go/session"
	"github.com/avtocod/avtocod-go/types"
)

// Client is a high-level Avtocod API client. It wraps a session with
// typed method calls; the session owns all transport concerns.
type Client struct {
	sess *session.Session
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	token    string
	sess     *session.Session
	sessOpts []session.Option
	log      zerolog.Logger
}

// WithToken authorizes every request with a previously obtained token.
func WithToken(token string) Option {
	return func(c *clientConfig) { c.token = token }
}

// WithSession supplies a preconfigured session instead of building one.
func WithSession(s *session.Session) Option {
	return func(c *clientConfig) { c.sess = s }
}

// WithProxy routes all client traffic through the given proxy or chain.
func WithProxy(spec *proxy.Spec) Option {
	return func(c *clientConfig) { c.sessOpts = append(c.sessOpts, session.WithProxy(spec)) }
}

// WithAPIURL overrides the API endpoint.
func WithAPIURL(u string) Option {
	return func(c *clientConfig) { c.sessOpts = append(c.sessOpts, session.WithAPIURL(u)) }
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.sessOpts = append(c.sessOpts, session.WithTimeout(d)) }
}

// WithLogger attaches a logger to the client and its session.
func WithLogger(log zerolog.Logger) Option {
	return func(c *clientConfig) { c.log = log }
}

// New constructs a Client. Proxy configuration errors surface here,
// before any request is made.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{log: zerolog.Nop()}
	for _, o := range opts {
		o(&cfg)
	}

	sess := cfg.sess
	if sess == nil {
		var err error
		sess, err = session.New(append(cfg.sessOpts, session.WithLogger(cfg.log))...)
		if err != nil {
			return nil, err
		}
	}
	if cfg.token != "" {
		sess.SetHeader("Authorization", "Bearer "+cfg.token)
	}

	return &Client{sess: sess, log: cfg.log}, nil
}

// Session exposes the underlying session, e.g. for session.Execute with
// custom methods.
func (c *Client) Session() *session.Session { return c.sess }

// SetProxy changes where subsequent requests are routed. In-flight
// requests finish on the connection pool they started with.
func (c *Client) SetProxy(spec *proxy.Spec) error { return c.sess.SetProxy(spec) }

// Close releases the pooled connection resources. Idempotent.
func (c *Client) Close() error { return c.sess.Close() }

// Login exchanges credentials for a token and authorizes the client
// with it.
func (c *Client) Login(ctx context.Context, email, password string) (*types.Token, error) {
	token, err := session.Execute[types.Token](ctx, c.sess, methods.AuthLogin{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	c.sess.SetHeader("Authorization", "Bearer "+token.Token)
	c.log.Debug().Msg("client authorized")
	return token, nil
}

// CreateReport asks for a report to be generated for query.
func (c *Client) CreateReport(ctx context.Context, query string, queryType types.QueryType) (*types.ReportID, error) {
	return session.Execute[types.ReportID](ctx, c.sess, methods.ReportCreate{Query: query, QueryType: queryType})
}

// Report fetches a report by uuid. The report may still be in progress;
// check Report.Ready.
func (c *Client) Report(ctx context.Context, uuid string) (*types.Report, error) {
	return session.Execute[types.Report](ctx, c.sess, methods.ReportGet{UUID: uuid})
}

// Reports pages through the account's reports.
func (c *Client) Reports(ctx context.Context, list methods.ReportsList) ([]types.Report, error) {
	reports, err := session.Execute[[]types.Report](ctx, c.sess, list)
	if err != nil {
		return nil, err
	}
	return *reports, nil
}

// WaitReport polls a report until every source has answered or ctx
// expires.
func (c *Client) WaitReport(ctx context.Context, uuid string, interval time.Duration) (*types.Report, error) {
	if interval <= 0 {
		interval = 3 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := c.Report(ctx, uuid)
		if err != nil {
			return nil, err
		}
		if report.Ready() {
			return report, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
