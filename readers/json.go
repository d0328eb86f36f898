//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2026 The DataPrimer Authors
//
// This file is part of DataPrimer.
//
// DataPrimer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DataPrimer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DataPrimer. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dataprimer"
)

// JSONReaderError wraps structured error information for the JSON reader.
type JSONReaderError struct {
	Op   string
	Line int64
	Err  error
}

func (e *JSONReaderError) Error() string {
	return fmt.Sprintf("json reader %s (line %d): %v", e.Op, e.Line, e.Err)
}

func (e *JSONReaderError) Unwrap() error {
	return e.Err
}

// JSONReader implements DataSource for line-delimited JSON. Blank lines are
// skipped.
type JSONReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int64
}

// NewJSONReader creates a new JSON reader for line-delimited JSON.
func NewJSONReader(r io.ReadCloser) *JSONReader {
	return &JSONReader{
		scanner: bufio.NewScanner(r),
		closer:  r,
	}
}

// Read implements the DataSource interface.
func (j *JSONReader) Read(ctx context.Context) (dataprimer.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &JSONReaderError{Op: "read", Line: j.line, Err: ctx.Err()}
	default:
	}

	for j.scanner.Scan() {
		j.line++
		line := strings.TrimSpace(j.scanner.Text())
		if line == "" {
			continue
		}

		var record dataprimer.Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, &JSONReaderError{Op: "unmarshal", Line: j.line, Err: err}
		}
		return record, nil
	}

	if err := j.scanner.Err(); err != nil {
		return nil, &JSONReaderError{Op: "scan", Line: j.line, Err: err}
	}
	return nil, io.EOF
}

// Close implements the DataSource interface.
func (j *JSONReader) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
