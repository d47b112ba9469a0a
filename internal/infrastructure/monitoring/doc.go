/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the server,
tracking HTTP requests, session lifecycle, command outcomes, confirmation
outcomes, and WebSocket traffic.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Feed session lifecycle into gauges via the registry bridge
	registry.Bridge().Attach(monitoring.NewRecorder(metrics))

	// Count command and confirmation outcomes
	metrics.CommandFinished("completed")
	metrics.ConfirmationFinished("approved")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
