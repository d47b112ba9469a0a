// Package session implements operator-gated interactive shell sessions.
//
// Each session binds exactly one long-lived shell process (spawned on a PTY)
// to an append-only output record and a lifecycle state machine. Two actors
// share the session: an automated tool caller and a human operator watching
// the same shell through a presentation surface.
//
// Architecture:
//   - Process: one native shell on a PTY; write-line and drain primitives,
//     polite-then-forced termination
//   - Buffer: append-only decoded output chunks with a forward-only read
//     cursor; disclosure through the confirmation gate advances the cursor
//   - Registry: authoritative session map; registry lock for insert/remove,
//     per-session lock for everything mutable inside a session
//   - Execute: sentinel-marker completion detection raced against a
//     deadline; inline output when the command finishes in time, a pending
//     session handle otherwise
//   - RequestRead: every automated read of buffered output is mediated by a
//     human decision; declined or timed-out requests disclose nothing
//   - Bridge: fans session events out to attached presentation surfaces
//
// Concurrency model:
//   - one background drain goroutine per live session decodes output and
//     scans for the completion marker
//   - command writes from either actor are totally ordered by the session
//     lock, so the process input stream never interleaves
//   - closing a session cancels in-flight waits and auto-declines a pending
//     confirmation
package session
