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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
	"github.com/AleutianAI/pgtools/services/pangenome/index"
	"github.com/AleutianAI/pgtools/services/pangenome/query"
)

// Handlers contains the HTTP handlers for the index service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleHealth handles GET /v1/pgtools/health.
//
// Always 200; Loaded reports whether an index is being served.
func (h *Handlers) HandleHealth(c *gin.Context) {
	_, err := h.svc.Reader()
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
		Loaded:  err == nil,
	})
}

// HandleIndex handles GET /v1/pgtools/index.
func (h *Handlers) HandleIndex(c *gin.Context) {
	r, ok := h.reader(c, "HandleIndex")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, indexResponse(r))
}

// HandleListSegments handles GET /v1/pgtools/segments.
//
// # Query Parameters
//
//	offset - Names to skip (default 0)
//	limit  - Maximum names to return, 0 for all
//
// # Response
//
//	200 OK: ListResponse, names sorted
//	400 Bad Request: Invalid paging parameters
//	503 Service Unavailable: No index loaded
func (h *Handlers) HandleListSegments(c *gin.Context) {
	h.list(c, "HandleListSegments", (*query.IndexedReader).ListSegments)
}

// HandleListPaths handles GET /v1/pgtools/paths. Names are in source order.
func (h *Handlers) HandleListPaths(c *gin.Context) {
	h.list(c, "HandleListPaths", (*query.IndexedReader).ListPaths)
}

func (h *Handlers) list(c *gin.Context, handler string, names func(*query.IndexedReader) []string) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, handler, err)
		return
	}
	r, ok := h.reader(c, handler)
	if !ok {
		return
	}

	all := names(r)
	if all == nil {
		all = []string{}
	}
	c.JSON(http.StatusOK, ListResponse{Total: len(all), Names: page(all, q.Offset, q.Limit)})
}

// HandleSegment handles GET /v1/pgtools/segments/:name.
func (h *Handlers) HandleSegment(c *gin.Context) {
	r, ok := h.reader(c, "HandleSegment")
	if !ok {
		return
	}
	name := c.Param("name")
	seg, found := r.GetSegment(name)
	if !found {
		notFound(c, "Segment not found: "+name)
		return
	}
	c.JSON(http.StatusOK, seg)
}

// HandlePath handles GET /v1/pgtools/paths/:name.
func (h *Handlers) HandlePath(c *gin.Context) {
	r, ok := h.reader(c, "HandlePath")
	if !ok {
		return
	}
	name := c.Param("name")
	p, found := r.GetPath(name)
	if !found {
		notFound(c, "Path not found: "+name)
		return
	}
	c.JSON(http.StatusOK, p)
}

// HandlePosition handles GET /v1/pgtools/paths/:name/position.
//
// # Query Parameters
//
//	pos - Zero-based coordinate along the path (required)
//
// # Response
//
//	200 OK: PositionResponse
//	400 Bad Request: Missing or non-numeric pos
//	404 Not Found: Path not indexed or pos beyond its end
//	503 Service Unavailable: No index loaded
func (h *Handlers) HandlePosition(c *gin.Context) {
	var q PositionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, "HandlePosition", err)
		return
	}
	r, ok := h.reader(c, "HandlePosition")
	if !ok {
		return
	}

	name := c.Param("name")
	e, found := r.QueryPosition(name, *q.Pos)
	if !found {
		notFound(c, "No segment found at that position")
		return
	}
	c.JSON(http.StatusOK, PositionResponse{
		Path:        name,
		Position:    *q.Pos,
		SegmentName: e.SegmentName,
		StepIndex:   e.StepIndex,
		Start:       e.Start,
		End:         e.End,
	})
}

// HandleReload handles POST /v1/pgtools/reload.
//
// # Response
//
//	200 OK: IndexResponse for the newly loaded index
//	404 Not Found: Index or source file missing
//	422 Unprocessable Entity: Index file is not a valid index
//	500 Internal Server Error: Other load failures
func (h *Handlers) HandleReload(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReload")

	r, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		status, code := http.StatusInternalServerError, CodeInternalError
		var formatErr *index.FormatError
		switch {
		case errors.Is(err, gfa.ErrFileNotFound):
			status, code = http.StatusNotFound, CodeNotFound
		case errors.As(err, &formatErr):
			status, code = http.StatusUnprocessableEntity, CodeInvalidRequest
		}
		logger.Error("Reload failed", "error", err)
		c.JSON(status, ErrorResponse{
			Error:   "Failed to reload index",
			Code:    code,
			Details: err.Error(),
		})
		return
	}

	logger.Info("Index reloaded")
	c.JSON(http.StatusOK, indexResponse(r))
}

// reader writes 503 and returns false when nothing is loaded.
func (h *Handlers) reader(c *gin.Context, handler string) (*query.IndexedReader, bool) {
	r, err := h.svc.Reader()
	if err != nil {
		requestID := getOrCreateRequestID(c)
		slog.With("request_id", requestID, "handler", handler).Warn("No index loaded")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "No index is loaded",
			Code:  CodeIndexNotLoaded,
		})
		return nil, false
	}
	return r, true
}

func indexResponse(r *query.IndexedReader) IndexResponse {
	return IndexResponse{
		Info:       r.Index().Info(),
		SourcePath: r.SourcePath(),
		LoadedAt:   r.LoadedAt().UTC().Format(time.RFC3339),
	}
}

func invalidRequest(c *gin.Context, handler string, err error) {
	requestID := getOrCreateRequestID(c)
	slog.With("request_id", requestID, "handler", handler).Warn("Invalid query parameters", "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid query parameters",
		Code:    CodeInvalidRequest,
		Details: err.Error(),
	})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: msg, Code: CodeNotFound})
}

// page slices names by offset and limit. A zero limit means no limit.
func page(names []string, offset, limit int) []string {
	if offset >= len(names) {
		return []string{}
	}
	names = names[offset:]
	if limit > 0 && limit < len(names) {
		names = names[:limit]
	}
	return names
}

// getOrCreateRequestID returns the X-Request-ID header, generating one when
// absent, and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
