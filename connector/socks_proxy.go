package connector

import (
	"context"
	"fmt"
	"net"
	"net/url"

	xproxy "golang.org/x/net/proxy"
	"h12.io/socks"

	"github.com/avtocod/avtocod-go/apierrors"
	"github.com/avtocod/avtocod-go/proxy"
)

// SOCKS5Connector dials outbound TCP connections via a SOCKS5 proxy
// reached through the forward Connector.
//
// Target hostnames are passed to the proxy unresolved, so DNS lookups
// happen remotely and follow the same route as the connection.
type SOCKS5Connector struct {
	params  proxy.Params
	dialer  xproxy.ContextDialer
	forward Connector
}

// NewSOCKS5 constructs a SOCKS5 connector for the resolved hop p,
// reached via forward.
func NewSOCKS5(cfg Config, p proxy.Params, forward Connector) (Connector, error) {
	var auth *xproxy.Auth
	if p.Username != "" || p.Password != "" {
		auth = &xproxy.Auth{User: p.Username, Password: p.Password}
	}

	d, err := xproxy.SOCKS5("tcp", p.Addr(), auth, &forwardDialer{c: forward})
	if err != nil {
		return nil, apierrors.NewConfiguration("socks5 connector init", err)
	}
	cd, ok := d.(xproxy.ContextDialer)
	if !ok {
		return nil, apierrors.NewConfiguration("socks5 connector: context dialing unsupported", nil)
	}

	return &SOCKS5Connector{params: p, dialer: cd, forward: forward}, nil
}

// ProxyAddr returns the hop's host:port.
func (f *SOCKS5Connector) ProxyAddr() string {
	return f.params.Addr()
}

// Forward returns the connector used to reach the proxy itself.
func (f *SOCKS5Connector) Forward() Connector {
	return f.forward
}

func (f *SOCKS5Connector) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: unsupported network", network, address)
	}

	c, err := f.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: %w", network, address, err)
	}
	return c, nil
}

// forwardDialer adapts a Connector to the x/net/proxy dialer interfaces.
type forwardDialer struct {
	c Connector
}

func (f *forwardDialer) Dial(network, address string) (net.Conn, error) {
	return f.c.DialContext(context.Background(), network, address)
}

func (f *forwardDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f.c.DialContext(ctx, network, address)
}

// SOCKS4Connector dials outbound TCP connections via a SOCKS4 or SOCKS4a
// proxy. The underlying protocol library opens its own TCP connection,
// so this hop kind is only available at the first position of a chain.
type SOCKS4Connector struct {
	params proxy.Params
	dial   func(network, address string) (net.Conn, error)
}

// NewSOCKS4 constructs a SOCKS4/SOCKS4a connector for the resolved hop p.
//
// SOCKS4 has no password authentication; a configured username is sent
// as the protocol's userid field.
func NewSOCKS4(cfg Config, p proxy.Params) (Connector, error) {
	u := url.URL{Scheme: string(p.Type), Host: p.Addr()}
	if p.Username != "" {
		u.User = url.User(p.Username)
	}
	if cfg.DialTimeout > 0 {
		u.RawQuery = "timeout=" + cfg.DialTimeout.String()
	}

	return &SOCKS4Connector{params: p, dial: socks.Dial(u.String())}, nil
}

// ProxyAddr returns the hop's host:port.
func (f *SOCKS4Connector) ProxyAddr() string {
	return f.params.Addr()
}

func (f *SOCKS4Connector) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	_ = ctx // h12.io/socks has no context-aware dial
	if network != "tcp" {
		return nil, fmt.Errorf("%s proxy dial %s %s: unsupported network", f.params.Type, network, address)
	}

	c, err := f.dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("%s proxy dial %s %s: %w", f.params.Type, network, address, err)
	}
	return c, nil
}
