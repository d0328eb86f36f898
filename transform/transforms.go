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

package transform

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dataprimer"
)

// Package transform provides reusable, composable record transformers for
// pipelines: field selection, renaming, type conversion, string normalization,
// date reformatting, and custom field logic. All functions return
// dataprimer.Transformer implementations.

// Select creates a transformer that keeps only the specified fields.
// Fields not listed are omitted from the output record.
func Select(fields ...string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := make(dataprimer.Record)
		for _, field := range fields {
			if value, exists := record[field]; exists {
				result[field] = value
			}
		}
		return result, nil
	})
}

// Rename creates a transformer that renames fields according to the provided
// mapping. Keys are original field names, values are new field names.
func Rename(mapping map[string]string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := make(dataprimer.Record)
		for key, value := range record {
			if newKey, exists := mapping[key]; exists {
				result[newKey] = value
			} else {
				result[key] = value
			}
		}
		return result, nil
	})
}

// AddField creates a transformer that adds a computed field to each record.
// The value function receives the current record.
func AddField(field string, fn func(dataprimer.Record) interface{}) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()
		result[field] = fn(record)
		return result, nil
	})
}

// ConvertType creates a transformer that converts a field to the given
// reflect.Type. Conversion failures fail the record.
func ConvertType(field string, targetType reflect.Type) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		if value, exists := record[field]; exists {
			converted, err := convertValue(value, targetType)
			if err != nil {
				return nil, fmt.Errorf("failed to convert field %s: %w", field, err)
			}
			result[field] = converted
		}

		return result, nil
	})
}

// ToString creates a transformer that converts a field to a string.
func ToString(field string) dataprimer.Transformer {
	return ConvertType(field, reflect.TypeOf(""))
}

// ToInt creates a transformer that converts a field to an int.
func ToInt(field string) dataprimer.Transformer {
	return ConvertType(field, reflect.TypeOf(0))
}

// ToFloat creates a transformer that converts a field to a float64.
func ToFloat(field string) dataprimer.Transformer {
	return ConvertType(field, reflect.TypeOf(0.0))
}

// TrimSpace creates a transformer that trims whitespace from the specified
// string fields.
func TrimSpace(fields ...string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		for _, field := range fields {
			if value, exists := record[field]; exists {
				if str, ok := value.(string); ok {
					result[field] = strings.TrimSpace(str)
				}
			}
		}

		return result, nil
	})
}

// ToUpper creates a transformer that uppercases the specified string fields.
func ToUpper(fields ...string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		for _, field := range fields {
			if value, exists := record[field]; exists {
				if str, ok := value.(string); ok {
					result[field] = strings.ToUpper(str)
				}
			}
		}

		return result, nil
	})
}

// ToLower creates a transformer that lowercases the specified string fields.
func ToLower(fields ...string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		for _, field := range fields {
			if value, exists := record[field]; exists {
				if str, ok := value.(string); ok {
					result[field] = strings.ToLower(str)
				}
			}
		}

		return result, nil
	})
}

// ParseTime creates a transformer that parses a string field into a time.Time
// using the given layout.
func ParseTime(field, layout string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		if value, exists := record[field]; exists {
			if str, ok := value.(string); ok {
				parsed, err := time.Parse(layout, str)
				if err != nil {
					return nil, fmt.Errorf("failed to parse time field %s: %w", field, err)
				}
				result[field] = parsed
			}
		}

		return result, nil
	})
}

// ReformatDate creates a transformer that rewrites a string date field from
// one layout to another, e.g. "2006-01-02" to "02-01-2006".
func ReformatDate(field, fromLayout, toLayout string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		if value, exists := record[field]; exists {
			if str, ok := value.(string); ok {
				parsed, err := time.Parse(fromLayout, str)
				if err != nil {
					return nil, fmt.Errorf("failed to reformat date field %s: %w", field, err)
				}
				result[field] = parsed.Format(toLayout)
			}
		}

		return result, nil
	})
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9 ]`)

// CleanString creates a transformer that lowercases the specified string
// fields and strips everything but letters, digits, and spaces.
func CleanString(fields ...string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		for _, field := range fields {
			if value, exists := record[field]; exists {
				if str, ok := value.(string); ok {
					result[field] = nonAlphanumeric.ReplaceAllString(strings.ToLower(str), "")
				}
			}
		}

		return result, nil
	})
}

// StandardizeKeys creates a transformer that lowercases field names and
// replaces spaces with underscores.
func StandardizeKeys() dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := make(dataprimer.Record, len(record))
		for key, value := range record {
			result[strings.ReplaceAll(strings.ToLower(key), " ", "_")] = value
		}
		return result, nil
	})
}

// NormalizeBool creates a transformer that coerces a field to a bool.
// "true", "1", and "yes" in any case map to true; everything else to false.
func NormalizeBool(field string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		if value, exists := record[field]; exists {
			switch v := value.(type) {
			case bool:
				result[field] = v
			case int:
				result[field] = v == 1
			case string:
				switch strings.ToLower(strings.TrimSpace(v)) {
				case "true", "1", "yes":
					result[field] = true
				default:
					result[field] = false
				}
			default:
				result[field] = false
			}
		}

		return result, nil
	})
}

// FillNA creates a transformer that replaces nil or missing fields with
// defaults. Keys present with non-nil values pass through unchanged.
func FillNA(defaults dataprimer.Record) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := record.Clone()

		for field, fallback := range defaults {
			if value, exists := result[field]; !exists || value == nil {
				result[field] = fallback
			}
		}

		return result, nil
	})
}

// RemoveField creates a transformer that removes the specified field.
// If the field doesn't exist, the record is returned unchanged.
func RemoveField(field string) dataprimer.Transformer {
	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := make(dataprimer.Record, len(record))
		for k, v := range record {
			if k != field {
				result[k] = v
			}
		}
		return result, nil
	})
}

// RemoveFields creates a transformer that removes multiple fields in one pass.
// Fields that don't exist are ignored.
func RemoveFields(fields ...string) dataprimer.Transformer {
	fieldsToRemove := make(map[string]bool, len(fields))
	for _, field := range fields {
		fieldsToRemove[field] = true
	}

	return dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
		result := make(dataprimer.Record, len(record))
		for k, v := range record {
			if !fieldsToRemove[k] {
				result[k] = v
			}
		}
		return result, nil
	})
}

// convertValue converts a value to the specified reflect.Type.
func convertValue(value interface{}, targetType reflect.Type) (interface{}, error) {
	if value == nil {
		return reflect.Zero(targetType).Interface(), nil
	}

	sourceValue := reflect.ValueOf(value)
	if sourceValue.Type() == targetType {
		return value, nil
	}

	switch targetType.Kind() {
	case reflect.String:
		return fmt.Sprintf("%v", value), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return convertToInt(value)
	case reflect.Float32, reflect.Float64:
		return convertToFloat(value)
	case reflect.Bool:
		return convertToBool(value)
	default:
		return nil, fmt.Errorf("unsupported target type: %s", targetType)
	}
}

func convertToInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func convertToFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", value)
	}
}

func convertToBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}
