package connector

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/avtocod/avtocod-go/internal/testutil"
	"github.com/avtocod/avtocod-go/proxy"
)

func TestHTTPConnectDialSuccess(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		pass     string
		wantAuth string
	}{
		{name: "no_auth"},
		{name: "basic_auth", user: "user", pass: "pass", wantAuth: "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			echoLn := testutil.StartEchoTCPServer(t, ctx)
			defer echoLn.Close()

			upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
				_ = testutil.HandleHTTPConnect(ctx, c, tt.wantAuth)
			})

			basic := proxy.Basic{URL: "http://" + upLn.Addr().String()}
			if tt.user != "" {
				basic.Auth = &proxy.Auth{Username: tt.user, Password: tt.pass}
			}
			p, err := proxy.Resolve(basic)
			if err != nil {
				t.Fatal(err)
			}

			f, err := NewHTTPConnect(Config{DialTimeout: 2 * time.Second}, p, NewDirect(Config{DialTimeout: 2 * time.Second}))
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

func TestHTTPConnectDialAuthRejected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		_ = testutil.HandleHTTPConnect(ctx, c, "Basic dXNlcjpwYXNz")
	})

	p, err := proxy.Resolve(proxy.Basic{URL: "http://" + upLn.Addr().String()})
	if err != nil {
		t.Fatal(err)
	}

	f, err := NewHTTPConnect(Config{DialTimeout: 2 * time.Second}, p, NewDirect(Config{DialTimeout: 2 * time.Second}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.DialContext(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}

	waitUp()
}

func TestHTTPConnectUnsupportedNetwork(t *testing.T) {
	t.Parallel()

	p, err := proxy.Resolve(proxy.Basic{URL: "http://host:3128"})
	if err != nil {
		t.Fatal(err)
	}

	f, err := NewHTTPConnect(Config{}, p, NewDirect(Config{}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.DialContext(context.Background(), "udp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}
}
