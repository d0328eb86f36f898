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

package filter

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"dataprimer"
)

// Package filter provides reusable, composable record filters for pipelines:
// field-based, value-based, and custom predicate filters for conditional
// record selection. All functions return dataprimer.Filter implementations.

// NotNull creates a filter that excludes records where the field is missing,
// nil, or an empty string.
func NotNull(field string) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		if value == nil {
			return false, nil
		}
		if str, ok := value.(string); ok && str == "" {
			return false, nil
		}
		return true, nil
	})
}

// Equals creates a filter that includes records where the field equals the value.
func Equals(field string, expectedValue interface{}) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		return reflect.DeepEqual(value, expectedValue), nil
	})
}

// Contains creates a filter that includes records where the string field
// contains the substring.
func Contains(field, substring string) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		if str, ok := value.(string); ok {
			return strings.Contains(str, substring), nil
		}
		return false, nil
	})
}

// StartsWith creates a filter that includes records where the string field
// starts with the prefix.
func StartsWith(field, prefix string) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		if str, ok := value.(string); ok {
			return strings.HasPrefix(str, prefix), nil
		}
		return false, nil
	})
}

// EndsWith creates a filter that includes records where the string field ends
// with the suffix.
func EndsWith(field, suffix string) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		if str, ok := value.(string); ok {
			return strings.HasSuffix(str, suffix), nil
		}
		return false, nil
	})
}

// MatchesRegex creates a filter that includes records where the string field
// matches the pattern. The pattern must compile.
func MatchesRegex(field, pattern string) dataprimer.Filter {
	regex := regexp.MustCompile(pattern)
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		if str, ok := value.(string); ok {
			return regex.MatchString(str), nil
		}
		return false, nil
	})
}

// GreaterThan creates a filter that includes records where the numeric field
// exceeds the threshold. Non-numeric values are excluded.
func GreaterThan(field string, threshold float64) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		num, ok := numericField(record, field)
		if !ok {
			return false, nil
		}
		return num > threshold, nil
	})
}

// LessThan creates a filter that includes records where the numeric field is
// below the threshold.
func LessThan(field string, threshold float64) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		num, ok := numericField(record, field)
		if !ok {
			return false, nil
		}
		return num < threshold, nil
	})
}

// Between creates a filter that includes records where the numeric field lies
// in [min, max].
func Between(field string, min, max float64) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		num, ok := numericField(record, field)
		if !ok {
			return false, nil
		}
		return num >= min && num <= max, nil
	})
}

// In creates a filter that includes records where the field value is in the set.
func In(field string, values ...interface{}) dataprimer.Filter {
	valueSet := make(map[interface{}]bool)
	for _, v := range values {
		valueSet[v] = true
	}

	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		value, exists := record[field]
		if !exists {
			return false, nil
		}
		return valueSet[value], nil
	})
}

// And creates a filter that requires all provided filters to pass.
func And(filters ...dataprimer.Filter) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			if !include {
				return false, nil
			}
		}
		return true, nil
	})
}

// Or creates a filter that requires at least one of the provided filters to pass.
func Or(filters ...dataprimer.Filter) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		for _, filter := range filters {
			include, err := filter.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			if include {
				return true, nil
			}
		}
		return false, nil
	})
}

// Not creates a filter that negates the provided filter.
func Not(filter dataprimer.Filter) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		return !include, nil
	})
}

// Custom creates a filter from a plain predicate. The predicate returns true
// to include the record.
func Custom(predicate func(dataprimer.Record) bool) dataprimer.Filter {
	return dataprimer.FilterFunc(func(ctx context.Context, record dataprimer.Record) (bool, error) {
		return predicate(record), nil
	})
}

// CustomWithContext creates a filter from a context-aware predicate.
func CustomWithContext(predicate func(context.Context, dataprimer.Record) (bool, error)) dataprimer.Filter {
	return dataprimer.FilterFunc(predicate)
}

func numericField(record dataprimer.Record, field string) (float64, bool) {
	value, exists := record[field]
	if !exists {
		return 0, false
	}
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
