// Package providers groups the service providers exposed through the
// service registry.
//
// Each provider implements the service.Provider interface:
//   - Definition(): returns service metadata and tool definitions
//   - Execute(): executes a tool with parameters and context
//
// Available Providers:
//   - Shell: interactive PTY-backed shell sessions with risk
//     classification and a confirmation gate on output disclosure
package providers
