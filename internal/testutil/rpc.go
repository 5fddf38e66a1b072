package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// RPCCall is one JSON-RPC request as seen by the test server.
type RPCCall struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// StartRPCServer starts an httptest server that decodes each POSTed
// JSON-RPC call and replies with whatever handler returns: the first
// value becomes the envelope's result, a non-nil second value becomes
// its error object.
func StartRPCServer(t *testing.T, handler func(call RPCCall) (any, map[string]any)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call RPCCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, rpcErr := handler(call)
		reply := map[string]any{"jsonrpc": "2.0", "id": call.ID}
		if rpcErr != nil {
			reply["error"] = rpcErr
		} else {
			reply["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))

	t.Cleanup(srv.Close)
	return srv
}
