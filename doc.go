package avtocod

// Package avtocod is a Go client for the Avtocod vehicle-history API.
//
// The root package offers a typed Client; transport concerns — the
// pooled HTTP session, proxy routing (single proxies and ordered
// chains), timeouts and the error taxonomy — live in the session,
// connector, proxy and apierrors subpackages.
