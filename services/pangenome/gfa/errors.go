// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gfa

import (
	"errors"
	"fmt"
)

// Sentinel errors for GFA parsing.
var (
	// ErrParse is the sentinel wrapped by every *ParseError.
	ErrParse = errors.New("gfa parse error")

	// ErrFileNotFound is returned when the input path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidInput is returned for values outside their closed domain,
	// such as an orientation character other than '+' or '-'.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("ctx must not be nil")
)

// ParseError reports a malformed record.
//
// Line is 1-based and counts every physical line of the input, including
// blank lines and comments. Err is the optional cause, for example an
// *InvalidInputError for a bad orientation character.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("GFA parse error at line %d: %s", e.Line, e.Message)
}

// Unwrap returns ErrParse and the cause, if any.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// FileNotFoundError names the missing path.
type FileNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// Unwrap returns ErrFileNotFound.
func (e *FileNotFoundError) Unwrap() error {
	return ErrFileNotFound
}

// InvalidInputError describes a rejected value.
type InvalidInputError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Message
}

// Unwrap returns ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// IOError wraps an underlying read failure with the operation and path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}
