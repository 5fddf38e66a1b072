package methods

// Package methods defines the API method objects the session layer
// executes: each method serializes itself into a JSON-RPC request, and
// CheckResponse interprets response bodies into result envelopes or
// declared API errors.
