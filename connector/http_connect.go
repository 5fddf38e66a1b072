package connector

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avtocod/avtocod-go/proxy"
)

// HTTPConnectConnector dials outbound TCP connections via an HTTP or
// HTTPS proxy using the HTTP CONNECT method. The proxy itself is reached
// through the forward Connector, so hops can be stacked into a chain.
type HTTPConnectConnector struct {
	cfg     Config
	params  proxy.Params
	auth    string
	forward Connector
}

// NewHTTPConnect constructs an HTTP CONNECT connector for the resolved
// hop p, reached via forward.
//
// If p carries a username, Proxy-Authorization is set using HTTP Basic
// auth.
func NewHTTPConnect(cfg Config, p proxy.Params, forward Connector) (Connector, error) {
	auth := ""
	if p.Username != "" {
		auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(p.Username+":"+p.Password))
	}

	return &HTTPConnectConnector{
		cfg:     cfg,
		params:  p,
		auth:    auth,
		forward: forward,
	}, nil
}

// ProxyAddr returns the hop's host:port.
func (f *HTTPConnectConnector) ProxyAddr() string {
	return f.params.Addr()
}

// Forward returns the connector used to reach the proxy itself.
func (f *HTTPConnectConnector) Forward() Connector {
	return f.forward
}

// DialContext establishes a TCP connection to address via the hop,
// returned as a net.Conn.
//
// For HTTPS hops, a TLS handshake to the proxy happens before CONNECT.
// CONNECT negotiation is performed synchronously before returning; if
// NegotiationTimeout is set, a deadline is applied during negotiation
// and cleared before returning.
func (f *HTTPConnectConnector) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("http proxy dial %s %s: unsupported network", network, address)
	}

	c, err := f.forward.DialContext(ctx, network, f.params.Addr())
	if err != nil {
		return nil, fmt.Errorf("http proxy: %w", err)
	}

	if f.params.Type == proxy.HTTPS {
		tlsConn := tls.Client(c, &tls.Config{MinVersion: tls.VersionTLS12, ServerName: f.params.Host})
		if f.cfg.NegotiationTimeout > 0 {
			_ = tlsConn.SetDeadline(time.Now().Add(f.cfg.NegotiationTimeout))
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = tlsConn.Close()
			return nil, fmt.Errorf("http proxy connect tls handshake: %w", err)
		}
		c = tlsConn
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: address},
		Host:   address,
		Header: make(http.Header),
	}
	if f.auth != "" {
		req.Header.Set("Proxy-Authorization", f.auth)
	}

	if f.cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Now().Add(f.cfg.NegotiationTimeout))
	}

	if err := req.Write(c); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("http proxy connect write: %w", err)
	}

	br := bufio.NewReader(c)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("http proxy connect read: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		_ = c.Close()
		return nil, fmt.Errorf("http proxy connect failed: %s", resp.Status)
	}

	if f.cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Time{})
	}
	return c, nil
}
