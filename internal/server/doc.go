// Package server wires the application together: session registry, shell
// provider, metrics recorder, middleware stack, and the HTTP/WebSocket
// route table. It owns startup and graceful shutdown ordering (HTTP drains
// first, then live shell sessions are closed).
package server
