package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avtocod/avtocod-go/apierrors"
	"github.com/avtocod/avtocod-go/internal/testutil"
	"github.com/avtocod/avtocod-go/methods"
	"github.com/avtocod/avtocod-go/types"
)

type stubMethod struct {
	method string
	params map[string]any
}

func (m stubMethod) BuildRequest() methods.Request {
	return methods.NewRequest(m.method, m.params)
}

func TestDoReturnsResult(t *testing.T) {
	t.Parallel()

	srv := testutil.StartRPCServer(t, func(call testutil.RPCCall) (any, map[string]any) {
		if call.Method != "dev.ping" {
			t.Errorf("got method %q want dev.ping", call.Method)
		}
		return map[string]any{"pong": true}, nil
	})

	s, err := New(WithAPIURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	raw, err := s.Do(context.Background(), stubMethod{method: "dev.ping"})
	if err != nil {
		t.Fatal(err)
	}

	var result struct {
		Pong bool `json:"pong"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatal(err)
	}
	if !result.Pong {
		t.Fatalf("unexpected result %s", raw)
	}
}

func TestDoOmitsUnsetAndNilFields(t *testing.T) {
	t.Parallel()

	var seen map[string]any
	srv := testutil.StartRPCServer(t, func(call testutil.RPCCall) (any, map[string]any) {
		seen = call.Params
		return map[string]any{}, nil
	})

	s, err := New(WithAPIURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	m := stubMethod{method: "dev.echo", params: map[string]any{
		"a": 1,
		"b": types.Unset,
		"c": nil,
	}}
	if _, err := s.Do(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 1 {
		t.Fatalf("payload params = %v, want only \"a\"", seen)
	}
	if _, ok := seen["a"]; !ok {
		t.Fatalf("payload params = %v, missing \"a\"", seen)
	}
}

func TestDoSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := testutil.StartRPCServer(t, func(call testutil.RPCCall) (any, map[string]any) {
		return nil, map[string]any{"code": 22004, "message": "report not found"}
	})

	s, err := New(WithAPIURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Do(context.Background(), stubMethod{method: "report.get"})
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != 22004 || apiErr.Message != "report not found" {
		t.Fatalf("unexpected APIError %+v", apiErr)
	}
}

func TestDoTimeoutLeavesSessionReusable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(500 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":{}}`))
	}))
	defer srv.Close()

	s, err := New(WithAPIURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	before, err := s.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Do(context.Background(), stubMethod{method: "dev.slow"}, WithRequestTimeout(50*time.Millisecond))
	var netErr *apierrors.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Message != "Request timeout error" {
		t.Fatalf("got message %q want %q", netErr.Message, "Request timeout error")
	}

	// The pooled session survives a single timed-out request.
	after, err := s.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Fatal("timeout tore down the session")
	}
	if _, err := s.Do(context.Background(), stubMethod{method: "dev.fast"}); err != nil {
		t.Fatalf("session not reusable after timeout: %v", err)
	}
}

func TestDoTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from now on

	s, err := New(WithAPIURL(url))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Do(context.Background(), stubMethod{method: "dev.ping"})
	var netErr *apierrors.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Message == "Request timeout error" {
		t.Fatal("connection failure misreported as timeout")
	}
	if netErr.Unwrap() == nil {
		t.Fatal("NetworkError does not carry its cause")
	}
}

func TestDoRejectsNonJSONResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	s, err := New(WithAPIURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Do(context.Background(), stubMethod{method: "dev.ping"})
	var netErr *apierrors.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestExecuteDecodesResult(t *testing.T) {
	t.Parallel()

	srv := testutil.StartRPCServer(t, func(call testutil.RPCCall) (any, map[string]any) {
		return map[string]any{"uuid": "abc-123"}, nil
	})

	s, err := New(WithAPIURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := Execute[types.ReportID](context.Background(), s, stubMethod{method: "report.create"})
	if err != nil {
		t.Fatal(err)
	}
	if id.UUID != "abc-123" {
		t.Fatalf("got uuid %q want abc-123", id.UUID)
	}
}

func TestBuildPayloadShape(t *testing.T) {
	t.Parallel()

	req := methods.NewRequest("report.get", map[string]any{"uuid": "abc"})
	body, err := buildPayload(req)
	if err != nil {
		t.Fatal(err)
	}

	var payload struct {
		JSONRPC string         `json:"jsonrpc"`
		ID      string         `json:"id"`
		Method  string         `json:"method"`
		Params  map[string]any `json:"params"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.JSONRPC != "2.0" {
		t.Fatalf("got jsonrpc %q", payload.JSONRPC)
	}
	if payload.ID == "" {
		t.Fatal("payload id is empty")
	}
	if payload.Method != "report.get" {
		t.Fatalf("got method %q", payload.Method)
	}
	if payload.Params["uuid"] != "abc" {
		t.Fatalf("got params %v", payload.Params)
	}
}
