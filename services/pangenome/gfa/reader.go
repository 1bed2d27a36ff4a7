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
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// GzipSuffix selects transparent decompression in Open.
const GzipSuffix = ".gz"

// CheckExists returns a *FileNotFoundError if path does not exist.
func CheckExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileNotFoundError{Path: path}
		}
		return &IOError{Op: "stat", Path: path, Err: err}
	}
	return nil
}

// Open opens a GFA file for reading.
//
// # Description
//
// Checks that the file exists before opening it so that a missing input is
// reported as ErrFileNotFound rather than a generic I/O failure. Paths ending
// in ".gz" are decompressed transparently.
//
// # Outputs
//
//   - io.ReadCloser: Closing it releases the decompressor and the file.
//   - error: *FileNotFoundError or *IOError.
func Open(path string) (io.ReadCloser, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	if !strings.HasSuffix(path, GzipSuffix) {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, &IOError{Op: "gzip header", Path: path, Err: err}
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

// gzipFile closes both the decompressor and the underlying file.
type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
