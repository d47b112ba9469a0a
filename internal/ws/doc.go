// Package ws provides the WebSocket presentation surface for shell sessions.
//
// One connection sees every session: lifecycle events, decoded output
// chunks, and confirmation prompts stream out as they happen; the human
// operator types commands and answers confirmation prompts back over the
// same connection.
//
// Message Types (Client → Server):
//   - operator_command: {session_id, text} forward a line to the shell
//   - confirmation: {session_id, request_id, approve} answer a prompt
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection greeting with current session list
//   - session_created / session_closed: Lifecycle events
//   - output: One decoded output chunk with origin attribution
//   - confirmation_requested / confirmation_resolved: Gate events
//   - ack: Input accepted
//   - error: Input rejected
//
// Example Usage:
//
//	handler := ws.NewHandler(sessions, logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
