package connector

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/avtocod/avtocod-go/apierrors"
	"github.com/avtocod/avtocod-go/proxy"
)

// Connector mirrors the net.Dialer interface. The session layer plugs a
// Connector into its HTTP transport as the DialContext hook.
type Connector interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Factory builds a Connector for a proxy spec. The session layer holds a
// Factory value so proxy-chaining support stays pluggable; New is the
// default.
type Factory func(cfg Config, spec *proxy.Spec) (Connector, error)

// Config carries dialing knobs shared by every connector kind.
type Config struct {
	DialTimeout        time.Duration
	NegotiationTimeout time.Duration
	KeepAlive          net.KeepAliveConfig
}

// New constructs the appropriate outbound Connector for spec.
//
//   - nil spec: direct dialing.
//   - Single spec: one proxy hop dialed directly.
//   - Chain spec: each hop dialed through the previous one, first hop
//     nearest the client.
//
// Resolution errors and impossible hop arrangements surface as
// configuration errors before any network I/O happens.
func New(cfg Config, spec *proxy.Spec) (Connector, error) {
	if spec == nil {
		return NewDirect(cfg), nil
	}

	params, err := spec.Resolve()
	if err != nil {
		return nil, err
	}

	forward := NewDirect(cfg)
	for i, p := range params {
		forward, err = newHop(cfg, p, forward, i)
		if err != nil {
			return nil, err
		}
	}
	return forward, nil
}

func newHop(cfg Config, p proxy.Params, forward Connector, pos int) (Connector, error) {
	switch p.Type {
	case proxy.HTTP, proxy.HTTPS:
		return NewHTTPConnect(cfg, p, forward)
	case proxy.SOCKS5:
		return NewSOCKS5(cfg, p, forward)
	case proxy.SOCKS4, proxy.SOCKS4A:
		if pos > 0 {
			return nil, apierrors.NewConfiguration(
				fmt.Sprintf("chain hop %d: %s proxies cannot be dialed through another hop", pos, p.Type), nil)
		}
		return NewSOCKS4(cfg, p)
	default:
		return nil, apierrors.NewConfiguration(fmt.Sprintf("unsupported proxy type %q", p.Type), nil)
	}
}
