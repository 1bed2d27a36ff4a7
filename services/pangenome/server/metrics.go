// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestTotal counts requests by route and status.
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgtools_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})

	// requestDuration tracks handler latency per route.
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pgtools_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"route"})

	// reloadTotal counts index reloads by result.
	reloadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgtools_index_reload_total",
		Help: "Total index reloads by result",
	}, []string{"result"})
)

// metricsMiddleware records requestTotal and requestDuration.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
