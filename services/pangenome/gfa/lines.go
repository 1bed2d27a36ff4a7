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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// cancelCheckInterval is how many lines are read between context checks.
const cancelCheckInterval = 4096

// LineFunc receives one whitespace-trimmed line and its 1-based number.
type LineFunc func(lineNo int, line string) error

// ForEachLine calls fn for every physical line of r.
//
// # Description
//
// Lines are split on '\n' with no length limit and trimmed of surrounding
// whitespace, so CRLF input is accepted. Blank lines are passed through;
// callers decide whether they count. The context is checked every few
// thousand lines.
//
// # Outputs
//
//   - error: The first error from fn, an *IOError, or the context error.
func ForEachLine(ctx context.Context, r io.Reader, fn LineFunc) error {
	br := bufio.NewReaderSize(r, 1<<20)
	lineNo := 0
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return &IOError{Op: "read", Err: readErr}
		}
		if len(raw) == 0 && readErr != nil {
			return nil
		}

		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("read cancelled at line %d: %w", lineNo, err)
			}
		}

		if err := fn(lineNo, strings.TrimSpace(raw)); err != nil {
			return err
		}
		if readErr != nil {
			return nil
		}
	}
}
