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

// Package basics covers the warm-up problems every data engineer runs into:
// counting lines and records in raw inputs, word frequencies in logs,
// threshold filtering, deduplication, date reformatting, and small summary
// statistics. Everything operates on readers or in-memory records so each
// function stays independently usable.
package basics

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"dataprimer"
)

// CountLines returns the number of lines in the input.
// Useful when sizing log files or raw ingestion data.
func CountLines(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("count lines: %w", err)
	}
	return count, nil
}

// WordCount pairs a word with its number of occurrences.
type WordCount struct {
	Word  string
	Count int
}

// TopWords returns the n most frequent words in the input, lowercased and
// split on whitespace. Ties are broken alphabetically so results are stable.
func TopWords(r io.Reader, n int) ([]WordCount, error) {
	counts := make(map[string]int)
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		counts[strings.ToLower(scanner.Text())]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("top words: %w", err)
	}

	result := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		result = append(result, WordCount{Word: word, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Word < result[j].Word
	})
	if n < len(result) {
		result = result[:n]
	}
	return result, nil
}

// CountCSVRecords counts data rows in CSV input, excluding the header row.
// Helpful for validating ingestion completeness.
func CountCSVRecords(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Header row does not count as data.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("count csv records: %w", err)
	}

	count := 0
	for {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return 0, fmt.Errorf("count csv records: %w", err)
		}
		count++
	}
}

// FilterAbove returns the records whose numeric field exceeds threshold.
// Common in financial and transaction-based pipelines.
func FilterAbove(records []dataprimer.Record, field string, threshold float64) []dataprimer.Record {
	var out []dataprimer.Record
	for _, record := range records {
		if num, ok := toFloat64(record[field]); ok && num > threshold {
			out = append(out, record)
		}
	}
	return out
}

// ReplaceNilWithZero replaces nil entries in a numeric series with zero,
// avoiding calculation errors downstream.
func ReplaceNilWithZero(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = 0
		} else {
			out[i] = v
		}
	}
	return out
}

// DedupeByField removes duplicate records using the given field as the unique
// key, keeping the first occurrence of each key in input order.
func DedupeByField(records []dataprimer.Record, field string) []dataprimer.Record {
	seen := make(map[interface{}]bool)
	var out []dataprimer.Record
	for _, record := range records {
		key := record[field]
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, record)
	}
	return out
}

// ReformatDate converts a date string from YYYY-MM-DD to DD-MM-YYYY,
// a common requirement for reporting and downstream compatibility.
func ReformatDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("reformat date %q: %w", date, err)
	}
	return t.Format("02-01-2006"), nil
}

// EnvOr reads a configuration value from the environment, falling back to a
// default when the variable is unset. Useful for DEV/QA/PROD deployments.
func EnvOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// CountByField counts records per distinct value of the given field,
// similar to GROUP BY ... COUNT(*) in SQL.
func CountByField(records []dataprimer.Record, field string) map[string]int {
	counts := make(map[string]int)
	for _, record := range records {
		counts[fmt.Sprintf("%v", record[field])]++
	}
	return counts
}

// SortByField returns records ordered ascending by the given field.
// Numeric values compare numerically, everything else as strings.
func SortByField(records []dataprimer.Record, field string) []dataprimer.Record {
	out := append([]dataprimer.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return lessValues(out[i][field], out[j][field])
	})
	return out
}

// ReadFileOrDefault reads a file's contents, returning fallback when the file
// does not exist. Other errors are still reported.
func ReadFileOrDefault(path, fallback string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return string(data), nil
}

// HaveRequiredFields reports whether every record contains all required
// fields. Important for schema validation before loading.
func HaveRequiredFields(records []dataprimer.Record, required ...string) bool {
	for _, record := range records {
		for _, field := range required {
			if _, ok := record[field]; !ok {
				return false
			}
		}
	}
	return true
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]`)

// CleanString trims surrounding whitespace, lowercases the text, and removes
// special characters, leaving only letters, digits, and spaces.
func CleanString(text string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
}

// Summary holds basic summary statistics for a numeric series.
type Summary struct {
	Min     float64
	Max     float64
	Sum     float64
	Average float64
}

// Summarize computes min, max, sum, and average. An empty input yields a
// zero-valued summary rather than an error.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Min: values[0], Max: values[0]}
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		s.Sum += v
	}
	s.Average = s.Sum / float64(len(values))
	return s
}

// MapValues applies fn to every value, the "process" step of the classic
// read/process/write decomposition. Compose it with a reader and writer to
// keep each stage separately testable; the etl package shows the full version.
func MapValues(values []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = fn(v)
	}
	return out
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func lessValues(a, b interface{}) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}
