package testutil

// Package testutil holds test-only servers: TCP echo, single-accept
// listeners, SOCKS5 and HTTP CONNECT proxy handlers, and a JSON-RPC
// endpoint stub.
