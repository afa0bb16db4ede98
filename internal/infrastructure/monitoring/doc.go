/*
Package monitoring provides Prometheus metrics for the shell runtime.

# Overview

Collectors cover the shell HTTP surface, outbound backend calls, tab store
operations, session outcomes, module registry resolutions and storage writes.
All recording methods are nil-safe so stores can run without metrics.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, "POST", "/auth/login")
	// ... perform call ...
	timer.Stop("200")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
