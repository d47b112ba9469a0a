// Package middleware provides HTTP middleware for the API surface.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - GlobalRateLimit: Single shared token bucket
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
//	    RequestsPerSecond: 100,
//	    Burst:             200,
//	}))
package middleware
