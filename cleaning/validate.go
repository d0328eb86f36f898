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

// validate.go - configurable batch validation before loading
package cleaning

import (
	"fmt"
	"regexp"
	"strings"

	"dataprimer"
)

// RecordValidator performs data quality checks over a batch of records before
// it is loaded: record count bounds, field presence, null value rates,
// per-field rules, and custom validation functions.
type RecordValidator struct {
	MinRecords       int                                       // Minimum number of records required
	MaxRecords       int                                       // Maximum number of records allowed (0 = unlimited)
	MaxNullRate      float64                                   // Maximum allowed null rate per field (0.0-1.0)
	RequiredFields   []string                                  // Fields that must be present in all records
	ForbiddenFields  []string                                  // Fields that must not be present
	FieldRules       map[string]FieldRule                      // Per-field validation rules
	CustomValidators []func([]dataprimer.Record) (bool, error) // Custom validation functions
}

// FieldRule defines validation constraints for an individual field.
type FieldRule struct {
	Type          FieldType                       // Expected data type
	Pattern       *regexp.Regexp                  // Regex pattern for string fields
	MinValue      interface{}                     // Minimum value (numeric fields)
	MaxValue      interface{}                     // Maximum value (numeric fields)
	AllowedValues []interface{}                   // Whitelist of allowed values
	CustomFunc    func(interface{}) (bool, error) // Custom value check
}

// FieldType represents expected data types for validation.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeFloat  FieldType = "float"
	FieldTypeBool   FieldType = "bool"
	FieldTypeEmail  FieldType = "email"
	FieldTypeDate   FieldType = "date"
	FieldTypeAny    FieldType = "any"
)

// NewRecordValidator creates a validator requiring at least minRecords records,
// each carrying the required fields. Use options for further constraints.
func NewRecordValidator(minRecords int, requiredFields []string, options ...ValidatorOption) *RecordValidator {
	rv := &RecordValidator{
		MinRecords:     minRecords,
		RequiredFields: requiredFields,
		FieldRules:     make(map[string]FieldRule),
	}
	for _, option := range options {
		option(rv)
	}
	return rv
}

// ValidatorOption is a functional option for configuring RecordValidator.
type ValidatorOption func(*RecordValidator)

// WithMaxRecords sets the maximum record count.
func WithMaxRecords(max int) ValidatorOption {
	return func(rv *RecordValidator) {
		rv.MaxRecords = max
	}
}

// WithMaxNullRate sets the maximum per-field null value rate.
func WithMaxNullRate(rate float64) ValidatorOption {
	return func(rv *RecordValidator) {
		rv.MaxNullRate = rate
	}
}

// WithForbiddenFields sets fields that must not be present.
func WithForbiddenFields(fields ...string) ValidatorOption {
	return func(rv *RecordValidator) {
		rv.ForbiddenFields = fields
	}
}

// WithFieldRule adds a per-field rule.
func WithFieldRule(field string, rule FieldRule) ValidatorOption {
	return func(rv *RecordValidator) {
		if rv.FieldRules == nil {
			rv.FieldRules = make(map[string]FieldRule)
		}
		rv.FieldRules[field] = rule
	}
}

// WithCustomValidator adds a batch-level validation function.
func WithCustomValidator(fn func([]dataprimer.Record) (bool, error)) ValidatorOption {
	return func(rv *RecordValidator) {
		rv.CustomValidators = append(rv.CustomValidators, fn)
	}
}

// Validate runs all configured checks over the batch. The first failure is
// returned as an error describing the offending record and field; nil means
// the batch may be loaded.
func (rv *RecordValidator) Validate(records []dataprimer.Record) error {
	count := len(records)
	if count < rv.MinRecords {
		return fmt.Errorf("insufficient records: got %d, need at least %d", count, rv.MinRecords)
	}
	if rv.MaxRecords > 0 && count > rv.MaxRecords {
		return fmt.Errorf("too many records: got %d, maximum allowed %d", count, rv.MaxRecords)
	}
	if count == 0 {
		return nil
	}

	if err := rv.validateFieldPresence(records); err != nil {
		return err
	}
	if err := rv.validateNullRates(records); err != nil {
		return err
	}
	if err := rv.validateFieldValues(records); err != nil {
		return err
	}

	for i, validator := range rv.CustomValidators {
		valid, err := validator(records)
		if err != nil {
			return fmt.Errorf("custom validator %d: %w", i, err)
		}
		if !valid {
			return fmt.Errorf("custom validator %d failed validation", i)
		}
	}

	return nil
}

func (rv *RecordValidator) validateFieldPresence(records []dataprimer.Record) error {
	if len(rv.RequiredFields) == 0 && len(rv.ForbiddenFields) == 0 {
		return nil
	}

	for idx, record := range records {
		for _, field := range rv.RequiredFields {
			if _, exists := record[field]; !exists {
				return fmt.Errorf("record %d missing required field: %s", idx, field)
			}
		}
		for _, field := range rv.ForbiddenFields {
			if _, exists := record[field]; exists {
				return fmt.Errorf("record %d contains forbidden field: %s", idx, field)
			}
		}
	}

	return nil
}

func (rv *RecordValidator) validateNullRates(records []dataprimer.Record) error {
	if rv.MaxNullRate <= 0 {
		return nil
	}

	fieldNames := make(map[string]bool)
	for _, record := range records {
		for field := range record {
			fieldNames[field] = true
		}
	}

	for field := range fieldNames {
		nullCount := 0
		for _, record := range records {
			if value, exists := record[field]; !exists || value == nil {
				nullCount++
			}
		}
		nullRate := float64(nullCount) / float64(len(records))
		if nullRate > rv.MaxNullRate {
			return fmt.Errorf("field %s has null rate %.2f, exceeds maximum %.2f", field, nullRate, rv.MaxNullRate)
		}
	}

	return nil
}

func (rv *RecordValidator) validateFieldValues(records []dataprimer.Record) error {
	if len(rv.FieldRules) == 0 {
		return nil
	}

	for idx, record := range records {
		for field, rule := range rv.FieldRules {
			value, exists := record[field]
			if !exists || value == nil {
				// Presence is covered by RequiredFields, nulls by MaxNullRate.
				continue
			}
			if err := rv.validateValue(field, value, rule, idx); err != nil {
				return err
			}
		}
	}

	return nil
}

func (rv *RecordValidator) validateValue(field string, value interface{}, rule FieldRule, idx int) error {
	if !matchesType(value, rule.Type) {
		return fmt.Errorf("record %d field %s has invalid type, expected %s", idx, field, rule.Type)
	}

	if rule.Pattern != nil {
		if str, ok := value.(string); ok && !rule.Pattern.MatchString(str) {
			return fmt.Errorf("record %d field %s value %q does not match pattern", idx, field, str)
		}
	}

	if err := rv.validateRange(field, value, rule.MinValue, rule.MaxValue, idx); err != nil {
		return err
	}

	if len(rule.AllowedValues) > 0 {
		allowed := false
		for _, candidate := range rule.AllowedValues {
			if value == candidate {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("record %d field %s value %v not in allowed values", idx, field, value)
		}
	}

	if rule.CustomFunc != nil {
		valid, err := rule.CustomFunc(value)
		if err != nil {
			return fmt.Errorf("record %d field %s custom check: %w", idx, field, err)
		}
		if !valid {
			return fmt.Errorf("record %d field %s failed custom check", idx, field)
		}
	}

	return nil
}

func (rv *RecordValidator) validateRange(field string, value, minValue, maxValue interface{}, idx int) error {
	if minValue == nil && maxValue == nil {
		return nil
	}

	val, ok := numericValue(value)
	if !ok {
		return nil
	}

	if minValue != nil {
		if min, ok := numericValue(minValue); ok && val < min {
			return fmt.Errorf("record %d field %s value %v below minimum %v", idx, field, value, minValue)
		}
	}
	if maxValue != nil {
		if max, ok := numericValue(maxValue); ok && val > max {
			return fmt.Errorf("record %d field %s value %v above maximum %v", idx, field, value, maxValue)
		}
	}

	return nil
}

func matchesType(value interface{}, expected FieldType) bool {
	switch expected {
	case FieldTypeAny, "":
		return true
	case FieldTypeString:
		_, ok := value.(string)
		return ok
	case FieldTypeInt:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	case FieldTypeFloat:
		switch value.(type) {
		case float32, float64:
			return true
		}
		return false
	case FieldTypeBool:
		_, ok := value.(bool)
		return ok
	case FieldTypeEmail:
		if str, ok := value.(string); ok {
			return ValidEmail(str)
		}
		return false
	case FieldTypeDate:
		if str, ok := value.(string); ok {
			return ValidDate(strings.TrimSpace(str))
		}
		return false
	default:
		return true
	}
}

func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
