package connector

// Package connector provides outbound dialing implementations used by
// the session layer.
//
// Connectors implement a small interface (DialContext) and establish
// outbound connections either directly or via one or more upstream
// proxies (HTTP CONNECT, SOCKS4/4a, SOCKS5). Chained hops are folded so
// each proxy is reached through the previous one.
