// Package http provides HTTP handlers and routing for the REST API.
//
// This package implements all HTTP endpoints using the Gin framework,
// including health checks, tool execution, and session management.
//
// Endpoints:
//   - Health: / and /health
//   - Services: /services, /services/discover, /services/execute
//   - Sessions: /sessions, /sessions/:id, /sessions/:id/output,
//     /sessions/:id/input, /sessions/:id/confirmations/:request_id
//
// Session taxonomy errors map onto HTTP status codes (404 not_found,
// 409 session_busy/conflict, 410 session_closed, 429 session_limit) and
// every error body carries a stable machine-readable "code".
package http
