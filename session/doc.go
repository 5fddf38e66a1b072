package session

// Package session manages the lifecycle of the pooled HTTP connection
// resource behind the client and executes API method calls through it.
//
// A Session moves between four states: uninitialized, live, dirty
// (proxy configuration changed, pool must be replaced before reuse) and
// closed. All transitions are idempotent and guarded by a mutex; a
// request keeps the pool it acquired for its whole duration even if the
// configuration changes concurrently.
