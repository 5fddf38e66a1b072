package connector

import (
	"context"
	"fmt"
	"net"
)

type directConnector struct {
	cfg Config
}

// NewDirect returns a Connector that dials targets without any proxy.
func NewDirect(cfg Config) Connector {
	return &directConnector{cfg: cfg}
}

func (f *directConnector) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	dd := net.Dialer{Timeout: f.cfg.DialTimeout}

	conn, err := dd.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(f.cfg.KeepAlive)
	}

	return conn, nil
}
