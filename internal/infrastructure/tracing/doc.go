/*
Package tracing provides lightweight request tracing.

# Overview

Every HTTP request gets a trace ID and a span; callers that send
X-Trace-ID and X-Span-ID headers have their IDs inherited, so a frontend
can correlate its own logs with the server's. Completed spans are emitted
as structured log entries on a background goroutine.

# Usage

	tracer := tracing.New("shellmux", logger)
	router.Use(tracing.Middleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Trace Format

Traces use standard HTTP headers for propagation:
  - X-Trace-ID: unique identifier for the entire request flow
  - X-Span-ID: identifier for the current operation
*/
package tracing
