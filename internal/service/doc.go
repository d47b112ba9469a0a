// Package service provides the provider registry for tool execution.
//
// The registry maintains a catalog of service providers and handles
// discovery, tool routing, and statistics.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//
// Tool IDs are namespaced as "<service>.<operation>"; the registry routes
// each invocation to the provider owning the prefix. Discovery scores
// services against a free-text intent by keyword, capability, and category
// matches.
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(shellProvider)
//	result, err := registry.Execute(ctx, "shell.run", params, appCtx)
package service
