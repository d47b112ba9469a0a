// Package shell exposes operator-gated shell sessions over the tool protocol.
//
// This provider lets the automated caller run commands in persistent shell
// sessions that a human operator co-owns: commands finishing within a bounded
// wait return output inline, slower ones hand back a pending session handle,
// and every later read of buffered output passes through a human
// confirmation gate.
//
// Tools:
//   - shell.run: Create a session in a working directory and run a command
//   - shell.append: Run another command in an existing session
//   - shell.get_output: Request human-approved disclosure of unread output
//   - shell.close: Terminate a session (idempotent)
//   - shell.list: List sessions with lifecycle state
//
// Failure results carry a stable machine-readable code under Data["code"]
// (not_found, session_busy, conflict, session_closed, command_blocked,
// session_limit, invalid_path, spawn_error, write_error) so callers branch
// on codes instead of messages.
package shell
