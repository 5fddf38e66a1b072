package proxy

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/avtocod/avtocod-go/apierrors"
)

// Type is the protocol spoken to a proxy hop.
type Type string

const (
	SOCKS4  Type = "socks4"
	SOCKS4A Type = "socks4a"
	SOCKS5  Type = "socks5"
	HTTP    Type = "http"
	HTTPS   Type = "https"
)

// Auth is an explicit credential pair for a proxy hop. When present it
// overrides any credentials embedded in the hop URL.
type Auth struct {
	Username string
	Password string
}

// Basic is one proxy endpoint: a URL plus optional explicit credentials.
type Basic struct {
	URL  string
	Auth *Auth
}

// Spec describes where outgoing traffic is routed: a single proxy or an
// ordered chain of proxies, first hop nearest the client.
//
// The two shapes are distinct constructors (Single, Chain) rather than a
// single polymorphic input, so a two-hop chain can never be mistaken for
// a proxy-plus-credentials pair.
type Spec struct {
	hops  []Basic
	chain bool
}

// Single builds a Spec for one proxy endpoint.
func Single(rawURL string) *Spec {
	return &Spec{hops: []Basic{{URL: rawURL}}}
}

// SingleAuth builds a Spec for one proxy endpoint with explicit
// credentials.
func SingleAuth(rawURL string, auth Auth) *Spec {
	return &Spec{hops: []Basic{{URL: rawURL, Auth: &auth}}}
}

// Chain builds a Spec routing through every hop in order.
func Chain(hops ...Basic) *Spec {
	return &Spec{hops: hops, chain: true}
}

// ChainURLs builds a chain Spec from bare proxy URLs.
func ChainURLs(rawURLs ...string) *Spec {
	hops := make([]Basic, 0, len(rawURLs))
	for _, u := range rawURLs {
		hops = append(hops, Basic{URL: u})
	}
	return Chain(hops...)
}

// IsChain reports whether the Spec was built with Chain.
func (s *Spec) IsChain() bool { return s.chain }

// Hops returns the proxy endpoints in hop order.
func (s *Spec) Hops() []Basic { return s.hops }

// Params are the resolved per-hop connection parameters.
type Params struct {
	Type     Type
	Host     string
	Port     int
	Username string
	Password string

	// RemoteDNS requests that target hostnames be resolved by the
	// proxy rather than locally, so DNS traffic follows the same route
	// as the connection itself.
	RemoteDNS bool
}

// Addr returns the hop's host:port.
func (p Params) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Resolve parses a single proxy endpoint into connection parameters.
//
// The URL must carry a supported scheme and a host; a missing port is
// filled with the scheme's default. Explicit Auth credentials override
// any found in the URL userinfo.
func Resolve(b Basic) (Params, error) {
	u, err := url.Parse(b.URL)
	if err != nil {
		return Params{}, apierrors.NewConfiguration(fmt.Sprintf("invalid proxy url %q", b.URL), err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return Params{}, apierrors.NewConfiguration(fmt.Sprintf("invalid proxy url %q: missing scheme", b.URL), nil)
	}
	if u.Path != "" && u.Path != "/" {
		return Params{}, apierrors.NewConfiguration(fmt.Sprintf("invalid proxy url %q: path should be empty", b.URL), nil)
	}

	var typ Type
	switch scheme {
	case "socks4":
		typ = SOCKS4
	case "socks4a":
		typ = SOCKS4A
	case "socks5", "socks5h":
		typ = SOCKS5
	case "http":
		typ = HTTP
	case "https":
		typ = HTTPS
	default:
		return Params{}, apierrors.NewConfiguration(fmt.Sprintf("unsupported proxy scheme %q", u.Scheme), nil)
	}

	host := u.Hostname()
	if host == "" {
		return Params{}, apierrors.NewConfiguration(fmt.Sprintf("invalid proxy url %q: missing host", b.URL), nil)
	}

	portStr := u.Port()
	if portStr == "" {
		portStr = defaultPortForType(typ)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Params{}, apierrors.NewConfiguration(fmt.Sprintf("invalid proxy url %q: bad port %q", b.URL, portStr), nil)
	}

	var username, password string
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}
	if b.Auth != nil {
		username = b.Auth.Username
		password = b.Auth.Password
	}

	return Params{
		Type:      typ,
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		RemoteDNS: true,
	}, nil
}

// ResolveChain resolves every hop independently, preserving order. The
// whole chain fails if any hop fails; an empty chain is a configuration
// error.
func ResolveChain(hops []Basic) ([]Params, error) {
	if len(hops) == 0 {
		return nil, apierrors.NewConfiguration("proxy chain is empty", nil)
	}

	params := make([]Params, 0, len(hops))
	for i, hop := range hops {
		p, err := Resolve(hop)
		if err != nil {
			return nil, fmt.Errorf("chain hop %d: %w", i, err)
		}
		params = append(params, p)
	}
	return params, nil
}

// Resolve resolves the Spec's hops in order.
func (s *Spec) Resolve() ([]Params, error) {
	if s == nil {
		return nil, errors.New("nil proxy spec")
	}
	return ResolveChain(s.hops)
}

func defaultPortForType(t Type) string {
	switch t {
	case HTTP:
		return "80"
	case HTTPS:
		return "443"
	case SOCKS4, SOCKS4A, SOCKS5:
		return "1080"
	default:
		return ""
	}
}
