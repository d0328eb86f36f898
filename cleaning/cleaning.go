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

package cleaning

import (
	"regexp"
	"strings"
	"time"

	"dataprimer"
)

// Package cleaning provides the data-cleaning and validation steps that sit
// between raw ingestion and curated layers: dropping incomplete records,
// filling defaults, normalizing text and booleans, deduplication, and schema
// consistency checks. Helpers operate on record slices; see validate.go for
// the configurable batch validator.

// DropNullRecords removes records where the given field is missing, nil, or
// an empty string. Run it before transformations that assume the field.
func DropNullRecords(records []dataprimer.Record, field string) []dataprimer.Record {
	var out []dataprimer.Record
	for _, record := range records {
		value, exists := record[field]
		if !exists || value == nil {
			continue
		}
		if str, ok := value.(string); ok && str == "" {
			continue
		}
		out = append(out, record)
	}
	return out
}

// ReplaceMissing substitutes nil entries in a series with the fallback value,
// preventing errors during aggregations.
func ReplaceMissing(values []interface{}, fallback interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = fallback
		} else {
			out[i] = v
		}
	}
	return out
}

// TrimStringFields removes leading and trailing whitespace from every string
// field in the record. Non-string fields pass through unchanged.
func TrimStringFields(record dataprimer.Record) dataprimer.Record {
	out := make(dataprimer.Record, len(record))
	for key, value := range record {
		if str, ok := value.(string); ok {
			out[key] = strings.TrimSpace(str)
		} else {
			out[key] = value
		}
	}
	return out
}

// StandardizeFieldNames lowercases field names and replaces spaces with
// underscores, enforcing naming standards across datasets.
func StandardizeFieldNames(record dataprimer.Record) dataprimer.Record {
	out := make(dataprimer.Record, len(record))
	for key, value := range record {
		out[strings.ReplaceAll(strings.ToLower(key), " ", "_")] = value
	}
	return out
}

// IsNumeric reports whether a value is an integer or floating-point number.
func IsNumeric(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// DedupeByKey removes duplicate records using the given field as the unique
// key, preserving first-occurrence order.
func DedupeByKey(records []dataprimer.Record, uniqueKey string) []dataprimer.Record {
	seen := make(map[interface{}]bool)
	var out []dataprimer.Record
	for _, record := range records {
		key := record[uniqueKey]
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, record)
	}
	return out
}

// ValidDate reports whether a date string matches YYYY-MM-DD.
// Catching bad dates here prevents downstream parsing failures.
func ValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// FillDefaults returns a copy of the record with missing keys filled from
// defaults, keeping the schema consistent across a batch.
func FillDefaults(record dataprimer.Record, defaults dataprimer.Record) dataprimer.Record {
	out := record.Clone()
	for key, fallback := range defaults {
		if _, exists := out[key]; !exists {
			out[key] = fallback
		}
	}
	return out
}

// DropEmptyStrings removes empty string values from a list.
func DropEmptyStrings(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether an email address follows the basic
// local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ConsistentSchema verifies that every record carries the same set of fields
// as the first one, guarding against schema drift. An empty batch passes.
func ConsistentSchema(records []dataprimer.Record) bool {
	if len(records) == 0 {
		return true
	}
	base := records[0]
	for _, record := range records[1:] {
		if len(record) != len(base) {
			return false
		}
		for field := range base {
			if _, exists := record[field]; !exists {
				return false
			}
		}
	}
	return true
}

// DropInvalidIDs removes records whose ID field is not an integer,
// enforcing type consistency on keys.
func DropInvalidIDs(records []dataprimer.Record, idField string) []dataprimer.Record {
	var out []dataprimer.Record
	for _, record := range records {
		switch record[idField].(type) {
		case int, int32, int64:
			out = append(out, record)
		}
	}
	return out
}

// NormalizeBool converts the usual boolean spellings ("true", "1", "yes",
// any case) to true and everything else to false. Handy when ingesting from
// multiple sources.
func NormalizeBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

// OutliersAbove returns the values exceeding threshold,
// the simplest outlier screen.
func OutliersAbove(values []float64, threshold float64) []float64 {
	var out []float64
	for _, v := range values {
		if v > threshold {
			out = append(out, v)
		}
	}
	return out
}

// HasMandatoryFields reports whether the record contains every required field.
// Essential before loading into curated layers.
func HasMandatoryFields(record dataprimer.Record, required ...string) bool {
	for _, field := range required {
		if _, exists := record[field]; !exists {
			return false
		}
	}
	return true
}
