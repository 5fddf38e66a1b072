package proxy

// Package proxy describes where the client routes its API traffic: no
// proxy, a single proxy, or an ordered chain of proxies, each hop given
// as a URL with optional explicit credentials.
//
// Resolve turns a hop into normalized connection parameters; package
// connector turns those parameters into something that can dial.
