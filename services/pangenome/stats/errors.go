// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

import "errors"

var (
	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("ctx must not be nil")

	// ErrNilGraph is returned when Compute is given a nil graph.
	ErrNilGraph = errors.New("graph must not be nil")

	// ErrMalformedLine is returned by the streaming readers for an S record
	// without a sequence field.
	ErrMalformedLine = errors.New("malformed GFA line")
)

// MalformedLineError carries the offending line.
type MalformedLineError struct {
	Line   int
	Record string
}

// Error implements the error interface.
func (e *MalformedLineError) Error() string {
	return "Malformed GFA line: " + e.Record
}

// Unwrap returns ErrMalformedLine.
func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedLine
}
