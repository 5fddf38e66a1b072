package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/avtocod/avtocod-go/apierrors"
	"github.com/avtocod/avtocod-go/methods"
	"github.com/avtocod/avtocod-go/types"
)

// DefaultAPIURL is the JSON-RPC endpoint method calls are POSTed to
// unless overridden with WithAPIURL.
const DefaultAPIURL = "https://api-profi.avtocod.ru/rpc"

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	timeout time.Duration
}

// WithRequestTimeout overrides the session's default timeout for one
// call.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// Do issues a single request attempt for m and returns the envelope's
// raw result payload.
//
// The method's request fields are serialized into a JSON-RPC payload;
// fields whose value is nil or types.Unset are omitted entirely. A
// timeout maps to a NetworkError with message "Request timeout error";
// any other transport failure maps to a NetworkError carrying the
// underlying error's type and description. A declared API error in the
// response envelope is returned as an *apierrors.APIError.
func (s *Session) Do(ctx context.Context, m methods.Method, opts ...RequestOption) (json.RawMessage, error) {
	var ro requestOptions
	for _, o := range opts {
		o(&ro)
	}

	client, err := s.Acquire()
	if err != nil {
		return nil, err
	}

	body, err := buildPayload(m.BuildRequest())
	if err != nil {
		return nil, err
	}

	timeout := s.timeout
	if ro.timeout > 0 {
		timeout = ro.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url := s.apiURL
	if url == "" {
		url = DefaultAPIURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apierrors.NewConfiguration(fmt.Sprintf("invalid api url %q", url), err)
	}
	s.mu.Lock()
	req.Header = s.headers.Clone()
	s.mu.Unlock()

	resp, err := client.Do(req)
	if err != nil {
		return nil, asNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, asNetworkError(err)
	}

	env, err := methods.CheckResponse(resp.Header.Get("Content-Type"), raw)
	if err != nil {
		return nil, err
	}
	return env.Result, nil
}

// Execute runs m through s and decodes the result payload into T.
func Execute[T any](ctx context.Context, s *Session, m methods.Method, opts ...RequestOption) (*T, error) {
	raw, err := s.Do(ctx, m, opts...)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, apierrors.NewNetwork(fmt.Sprintf("cannot decode result payload: %v", err), err)
	}
	return out, nil
}

// buildPayload serializes a method request into the wire body. Request
// fields that are absent (nil) or explicitly unset are left out of the
// payload, distinguishing "not provided" from "provided as empty".
func buildPayload(req methods.Request) ([]byte, error) {
	params := make(map[string]any, len(req.Params))
	for key, value := range req.Params {
		if value == nil || types.IsUnset(value) {
			continue
		}
		params[key] = value
	}

	return json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"method":  req.Method,
		"params":  params,
	})
}

func asNetworkError(err error) *apierrors.NetworkError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return apierrors.NewNetwork("Request timeout error", err)
	}
	return apierrors.NewNetwork(fmt.Sprintf("http client error: %T: %v", err, err), err)
}
