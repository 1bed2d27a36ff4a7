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
	"github.com/AleutianAI/pgtools/services/pangenome/index"
	"github.com/AleutianAI/pgtools/services/pangenome/query"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeIndexNotLoaded = "INDEX_NOT_LOADED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Loaded  bool   `json:"loaded"`
}

// IndexResponse is returned by GET /index and POST /reload.
type IndexResponse struct {
	index.Info
	SourcePath string `json:"source_path"`
	LoadedAt   string `json:"loaded_at"`
}

// ListQuery pages a name listing.
type ListQuery struct {
	Offset int `form:"offset" binding:"gte=0"`
	Limit  int `form:"limit" binding:"gte=0,lte=100000"`
}

// ListResponse is returned by GET /segments and GET /paths.
type ListResponse struct {
	Total int      `json:"total"`
	Names []string `json:"names"`
}

// PositionQuery is bound from GET /paths/:name/position.
type PositionQuery struct {
	Pos *uint64 `form:"pos" binding:"required"`
}

// SegmentResponse is returned by GET /segments/:name.
type SegmentResponse = query.SegmentInfo

// PathResponse is returned by GET /paths/:name.
type PathResponse = query.PathInfo

// PositionResponse is returned by GET /paths/:name/position.
type PositionResponse struct {
	Path        string `json:"path"`
	Position    uint64 `json:"position"`
	SegmentName string `json:"segment_name"`
	StepIndex   int    `json:"step_index"`
	Start       uint64 `json:"start"`
	End         uint64 `json:"end"`
}
