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
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/pgtools/services/pangenome/telemetry"
)

// RegisterRoutes registers the index routes under rg.
//
// Routes:
//
//	GET  /pgtools/health
//	GET  /pgtools/index
//	GET  /pgtools/segments
//	GET  /pgtools/segments/:name
//	GET  /pgtools/paths
//	GET  /pgtools/paths/:name
//	GET  /pgtools/paths/:name/position?pos=N
//	POST /pgtools/reload
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	pg := rg.Group("/pgtools")
	{
		pg.GET("/health", handlers.HandleHealth)
		pg.GET("/index", handlers.HandleIndex)

		pg.GET("/segments", handlers.HandleListSegments)
		pg.GET("/segments/:name", handlers.HandleSegment)

		pg.GET("/paths", handlers.HandleListPaths)
		pg.GET("/paths/:name", handlers.HandlePath)
		pg.GET("/paths/:name/position", handlers.HandlePosition)

		pg.POST("/reload", handlers.HandleReload)
	}
}

// NewRouter builds the engine served by `pgtools serve`: recovery, tracing
// and request metrics middleware, the /v1 routes, and /metrics.
func NewRouter(svc *Service, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(metricsMiddleware())

	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	RegisterRoutes(router.Group("/v1"), NewHandlers(svc))
	return router
}
