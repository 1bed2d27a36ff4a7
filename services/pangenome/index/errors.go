// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic means the file does not start with the index magic.
	ErrInvalidMagic = errors.New("not an index file")

	// ErrUnsupportedVersion means the file was written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported index version")

	// ErrCorruptPayload covers short reads, decode failures, and size
	// mismatches.
	ErrCorruptPayload = errors.New("corrupt index payload")

	// ErrInvalidIndexType is returned for an unknown index variant.
	ErrInvalidIndexType = errors.New("invalid index type")

	// ErrNilGraph is returned when Build is given a nil graph.
	ErrNilGraph = errors.New("graph must not be nil")

	// ErrNilIndex is returned when Save is given a nil index.
	ErrNilIndex = errors.New("index must not be nil")

	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("ctx must not be nil")
)

// FormatError reports an index file that could not be loaded.
//
// Kind is one of ErrInvalidMagic, ErrUnsupportedVersion, or
// ErrCorruptPayload. Cause is the underlying read or decode error, if any.
type FormatError struct {
	Kind   error
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("index format error: %s", e.Reason)
	}
	return fmt.Sprintf("index format error: %s: %v", e.Reason, e.Cause)
}

// Unwrap returns Kind and Cause so both match errors.Is.
func (e *FormatError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func corrupt(reason string, cause error) *FormatError {
	return &FormatError{Kind: ErrCorruptPayload, Reason: reason, Cause: cause}
}
