package avtocod

import "context"

type clientContextKey struct{}

// ContextWithClient returns a context carrying c, for code paths where
// passing the client explicitly is impractical. The binding is scoped
// to the returned context; there is no process-wide current client.
func ContextWithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientContextKey{}, c)
}

// ClientFromContext returns the client bound to ctx, or nil if none is
// bound.
func ClientFromContext(ctx context.Context) *Client {
	if c, ok := ctx.Value(clientContextKey{}).(*Client); ok {
		return c
	}
	return nil
}
