package connector

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/avtocod/avtocod-go/internal/testutil"
	"github.com/avtocod/avtocod-go/proxy"
)

func TestSOCKS5DialSuccess(t *testing.T) {
	tests := []struct {
		name string
		user string
		pass string
	}{
		{name: "no_auth"},
		{name: "user_pass", user: "user", pass: "pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			echoLn := testutil.StartEchoTCPServer(t, ctx)
			defer echoLn.Close()

			upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
				_ = testutil.HandleSOCKS5Connect(ctx, c, tt.user, tt.pass)
			})

			basic := proxy.Basic{URL: "socks5://" + upLn.Addr().String()}
			if tt.user != "" {
				basic.Auth = &proxy.Auth{Username: tt.user, Password: tt.pass}
			}
			p, err := proxy.Resolve(basic)
			if err != nil {
				t.Fatal(err)
			}

			f, err := NewSOCKS5(Config{DialTimeout: 2 * time.Second}, p, NewDirect(Config{DialTimeout: 2 * time.Second}))
			if err != nil {
				t.Fatal(err)
			}

			conn, err := f.DialContext(ctx, "tcp", echoLn.Addr().String())
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()

			testutil.AssertEcho(t, conn, conn, []byte("hello"))

			waitUp()
		})
	}
}

func TestSOCKS5DialRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		testutil.RefuseSOCKS5Connect(c)
	})

	p, err := proxy.Resolve(proxy.Basic{URL: "socks5://" + upLn.Addr().String()})
	if err != nil {
		t.Fatal(err)
	}

	f, err := NewSOCKS5(Config{DialTimeout: 2 * time.Second}, p, NewDirect(Config{DialTimeout: 2 * time.Second}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.DialContext(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}

	waitUp()
}

// Two local SOCKS5 hops stacked into a chain: the connection to the
// second hop travels through the first.
func TestChainedSOCKS5Dial(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	echoLn := testutil.StartEchoTCPServer(t, ctx)
	defer echoLn.Close()

	hop1Ln, waitHop1 := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		_ = testutil.HandleSOCKS5Connect(ctx, c, "", "")
	})
	hop2Ln, waitHop2 := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		_ = testutil.HandleSOCKS5Connect(ctx, c, "", "")
	})

	c, err := New(Config{DialTimeout: 2 * time.Second}, proxy.ChainURLs(
		"socks5://"+hop1Ln.Addr().String(),
		"socks5://"+hop2Ln.Addr().String(),
	))
	if err != nil {
		t.Fatal(err)
	}

	conn, err := c.DialContext(ctx, "tcp", echoLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	testutil.AssertEcho(t, conn, conn, []byte("through two hops"))

	waitHop1()
	waitHop2()
}

func TestSOCKS5UnsupportedNetwork(t *testing.T) {
	t.Parallel()

	p, err := proxy.Resolve(proxy.Basic{URL: "socks5://host:1080"})
	if err != nil {
		t.Fatal(err)
	}

	f, err := NewSOCKS5(Config{}, p, NewDirect(Config{}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.DialContext(context.Background(), "udp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}
}
