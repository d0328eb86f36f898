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

// Package fileio provides path-level file handling exercises: peeking at and
// counting CSV records, merging files, converting between formats, flattening
// nested JSON, and counting records across many files concurrently. The
// streaming work is delegated to the readers and writers packages; fileio adds
// the file-path plumbing around them.
package fileio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"dataprimer"
	"dataprimer/readers"
	"dataprimer/writers"
)

// FileType identifies a data file format by its extension.
type FileType string

const (
	FileTypeCSV     FileType = "csv"
	FileTypeJSON    FileType = "json"
	FileTypeParquet FileType = "parquet"
	FileTypeGzip    FileType = "gzip"
	FileTypeUnknown FileType = "unknown"
)

// DetectFileType reports the format of a file based on its extension.
// For gzip files the compressed extension wins: "data.csv.gz" is gzip.
func DetectFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FileTypeCSV
	case ".json", ".ndjson", ".jsonl":
		return FileTypeJSON
	case ".parquet":
		return FileTypeParquet
	case ".gz", ".gzip":
		return FileTypeGzip
	default:
		return FileTypeUnknown
	}
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.Mode().IsRegular()
}

// ReadCSVHead returns the first n records of a CSV file. Reading stops early
// when the file has fewer records.
func ReadCSVHead(ctx context.Context, filename string, n int) ([]dataprimer.Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	reader, err := readers.NewCSVReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	defer reader.Close()

	records := make([]dataprimer.Record, 0, n)
	for len(records) < n {
		record, err := reader.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// CountCSVRecords counts data records in a CSV file, excluding the header.
func CountCSVRecords(ctx context.Context, filename string) (int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}

	reader, err := readers.NewCSVReader(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	defer reader.Close()

	var count int64
	for {
		if _, err := reader.Read(ctx); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return count, err
		}
		count++
	}
}

// WriteCSV writes records to a CSV file, creating parent directories as
// needed. Headers come from the first record's keys in sorted order.
func WriteCSV(ctx context.Context, filename string, records []dataprimer.Record) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	writer, err := writers.NewCSVWriter(f)
	if err != nil {
		f.Close()
		return err
	}

	for _, record := range records {
		if err := writer.Write(ctx, record); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}

// MergeCSVFiles concatenates the records of several CSV files into one output
// file. Column order follows the header of the first input; inputs with extra
// columns contribute only the shared ones.
func MergeCSVFiles(ctx context.Context, inputs []string, output string) (int64, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("no input files to merge")
	}

	out, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create merge output: %w", err)
	}

	var writer *writers.CSVWriter
	var merged int64

	// Closing the writer closes out; until the writer exists, out is closed
	// directly. Every failure path releases whichever is live.
	cleanup := func() {
		if writer != nil {
			writer.Close()
		} else {
			out.Close()
		}
	}

	for _, input := range inputs {
		f, err := os.Open(input)
		if err != nil {
			cleanup()
			return merged, fmt.Errorf("failed to open %s: %w", input, err)
		}
		reader, err := readers.NewCSVReader(f)
		if err != nil {
			f.Close()
			cleanup()
			return merged, err
		}

		for {
			record, err := reader.Read(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				reader.Close()
				cleanup()
				return merged, err
			}
			if writer == nil {
				writer, err = writers.NewCSVWriter(out, writers.WithHeaders(reader.Headers()))
				if err != nil {
					reader.Close()
					cleanup()
					return merged, err
				}
			}
			if err := writer.Write(ctx, record); err != nil {
				reader.Close()
				cleanup()
				return merged, err
			}
			merged++
		}
		reader.Close()
	}

	if writer == nil {
		return 0, out.Close()
	}
	return merged, writer.Close()
}

// CSVToJSON converts a CSV file to line-delimited JSON and returns the number
// of converted records.
func CSVToJSON(ctx context.Context, csvPath, jsonPath string) (int64, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	reader, err := readers.NewCSVReader(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	defer reader.Close()

	out, err := os.Create(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create JSON output: %w", err)
	}
	writer := writers.NewJSONWriter(out)

	for {
		record, err := reader.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			writer.Close()
			return writer.RecordsWritten(), err
		}
		if err := writer.Write(ctx, record); err != nil {
			writer.Close()
			return writer.RecordsWritten(), err
		}
	}
	return writer.RecordsWritten(), writer.Close()
}

// ReadJSONFile reads a file containing a top-level JSON array of objects.
func ReadJSONFile(filename string) ([]dataprimer.Record, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var records []dataprimer.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	return records, nil
}

// ReadJSONLines reads a line-delimited JSON file into records.
func ReadJSONLines(ctx context.Context, filename string) ([]dataprimer.Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	reader := readers.NewJSONReader(f)
	defer reader.Close()

	var records []dataprimer.Record
	for {
		record, err := reader.Read(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// WriteJSONFile writes records as an indented top-level JSON array.
func WriteJSONFile(filename string, records []dataprimer.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// Flatten collapses one level of nesting into compound keys, e.g.
// {"user": {"name": "x"}} becomes {"user_name": "x"}. Values nested deeper
// than one level are copied verbatim under their compound key, and arrays and
// scalars pass through unchanged.
func Flatten(record dataprimer.Record) dataprimer.Record {
	flat := make(dataprimer.Record, len(record))
	for key, value := range record {
		switch nested := value.(type) {
		case map[string]interface{}:
			for subKey, subValue := range nested {
				flat[key+"_"+subKey] = subValue
			}
		case dataprimer.Record:
			for subKey, subValue := range nested {
				flat[key+"_"+subKey] = subValue
			}
		default:
			flat[key] = value
		}
	}
	return flat
}

// ReadGzipLines reads a gzip-compressed text file and returns its lines.
func ReadGzipLines(filename string) ([]string, error) {
	rc, err := readers.OpenGzip(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var lines []string
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan gzip content: %w", err)
	}
	return lines, nil
}

// FileCount pairs a path with its record count.
type FileCount struct {
	Path  string
	Count int64
}

// CountRecordsInFiles counts data records across many CSV or line-delimited
// JSON files, one goroutine per file. Results come back sorted by path; the
// first failing file aborts the whole group.
func CountRecordsInFiles(ctx context.Context, paths []string) ([]FileCount, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	counts := make([]FileCount, 0, len(paths))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			count, err := countFileRecords(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mu.Lock()
			counts = append(counts, FileCount{Path: path, Count: count})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].Path < counts[j].Path })
	return counts, nil
}

func countFileRecords(ctx context.Context, path string) (int64, error) {
	switch DetectFileType(path) {
	case FileTypeCSV:
		return CountCSVRecords(ctx, path)
	case FileTypeJSON:
		records, err := ReadJSONLines(ctx, path)
		return int64(len(records)), err
	default:
		return 0, fmt.Errorf("unsupported file type for counting")
	}
}
