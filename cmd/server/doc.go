// Package main is the entry point for the shellmux server.
//
// The server hosts interactive shell sessions behind a REST API and a
// WebSocket stream. Each session runs a real shell on a PTY; command
// execution is coordinated with completion markers, and unread output is
// disclosed only through a human confirmation gate.
//
// Configuration resolves in three layers: built-in defaults, an optional
// YAML file (-config), then environment variables. The -port and -host
// flags override whatever those layers produced.
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# With a config file
//	./server -config /etc/shellmux/config.yaml
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown (HTTP drains, sessions close)
package main
