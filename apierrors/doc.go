package apierrors

// Package apierrors defines the error taxonomy surfaced by the client:
// configuration errors raised before any I/O, network errors raised for
// transport failures, and declared API errors parsed from response
// envelopes. Lower-level transport errors never cross the session
// boundary unwrapped.
