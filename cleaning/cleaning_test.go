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
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer"
)

func TestDropNullRecords(t *testing.T) {
	records := []dataprimer.Record{
		{"name": "alice", "email": "a@example.com"},
		{"name": "bob", "email": nil},
		{"name": "carol", "email": ""},
		{"name": "dave"},
	}

	out := DropNullRecords(records, "email")
	require.Len(t, out, 1)
	assert.Equal(t, "alice", out[0]["name"])
}

func TestReplaceMissing(t *testing.T) {
	values := []interface{}{1, nil, 3, nil}
	out := ReplaceMissing(values, 0)
	assert.Equal(t, []interface{}{1, 0, 3, 0}, out)

	// Input is untouched.
	assert.Nil(t, values[1])
}

func TestTrimStringFields(t *testing.T) {
	record := dataprimer.Record{"name": "  alice  ", "age": 30}
	out := TrimStringFields(record)
	assert.Equal(t, "alice", out["name"])
	assert.Equal(t, 30, out["age"])
}

func TestStandardizeFieldNames(t *testing.T) {
	record := dataprimer.Record{"First Name": "alice", "AGE": 30}
	out := StandardizeFieldNames(record)
	assert.Equal(t, "alice", out["first_name"])
	assert.Equal(t, 30, out["age"])
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric(42))
	assert.True(t, IsNumeric(3.14))
	assert.False(t, IsNumeric("42"))
	assert.False(t, IsNumeric(nil))
}

func TestDedupeByKey_KeepsFirstOccurrence(t *testing.T) {
	records := []dataprimer.Record{
		{"id": 1, "city": "austin"},
		{"id": 2, "city": "boston"},
		{"id": 1, "city": "chicago"},
	}

	out := DedupeByKey(records, "id")
	require.Len(t, out, 2)
	assert.Equal(t, "austin", out[0]["city"])
	assert.Equal(t, "boston", out[1]["city"])
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-03-15"))
	assert.False(t, ValidDate("15-03-2026"))
	assert.False(t, ValidDate("2026-13-01"))
	assert.False(t, ValidDate("not a date"))
}

func TestFillDefaults(t *testing.T) {
	record := dataprimer.Record{"name": "alice"}
	defaults := dataprimer.Record{"name": "unknown", "active": true}

	out := FillDefaults(record, defaults)
	assert.Equal(t, "alice", out["name"])
	assert.Equal(t, true, out["active"])

	// Original stays unchanged.
	_, exists := record["active"]
	assert.False(t, exists)
}

func TestDropEmptyStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DropEmptyStrings([]string{"a", "", "b", ""}))
	assert.Empty(t, DropEmptyStrings([]string{"", ""}))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.False(t, ValidEmail("user@example"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a b@example.com"))
}

func TestConsistentSchema(t *testing.T) {
	consistent := []dataprimer.Record{
		{"id": 1, "name": "a"},
		{"id": 2, "name": "b"},
	}
	assert.True(t, ConsistentSchema(consistent))

	drifted := []dataprimer.Record{
		{"id": 1, "name": "a"},
		{"id": 2, "email": "b@example.com"},
	}
	assert.False(t, ConsistentSchema(drifted))

	assert.True(t, ConsistentSchema(nil))
}

func TestDropInvalidIDs(t *testing.T) {
	records := []dataprimer.Record{
		{"id": 1},
		{"id": "two"},
		{"id": int64(3)},
		{"id": nil},
	}

	out := DropInvalidIDs(records, "id")
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0]["id"])
	assert.Equal(t, int64(3), out[1]["id"])
}

func TestNormalizeBool(t *testing.T) {
	assert.True(t, NormalizeBool(true))
	assert.True(t, NormalizeBool("TRUE"))
	assert.True(t, NormalizeBool(" yes "))
	assert.True(t, NormalizeBool("1"))
	assert.True(t, NormalizeBool(1))
	assert.False(t, NormalizeBool("no"))
	assert.False(t, NormalizeBool(0))
	assert.False(t, NormalizeBool(nil))
}

func TestOutliersAbove(t *testing.T) {
	assert.Equal(t, []float64{150, 200}, OutliersAbove([]float64{10, 150, 50, 200}, 100))
	assert.Empty(t, OutliersAbove([]float64{1, 2}, 100))
}

func TestHasMandatoryFields(t *testing.T) {
	record := dataprimer.Record{"id": 1, "name": "alice"}
	assert.True(t, HasMandatoryFields(record, "id", "name"))
	assert.False(t, HasMandatoryFields(record, "id", "email"))
}

func TestRecordValidator_MinRecords(t *testing.T) {
	validator := NewRecordValidator(3, nil)
	err := validator.Validate([]dataprimer.Record{{"id": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient records")
}

func TestRecordValidator_MaxRecords(t *testing.T) {
	validator := NewRecordValidator(0, nil, WithMaxRecords(1))
	err := validator.Validate([]dataprimer.Record{{"id": 1}, {"id": 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many records")
}

func TestRecordValidator_RequiredFields(t *testing.T) {
	validator := NewRecordValidator(1, []string{"id", "email"})

	err := validator.Validate([]dataprimer.Record{{"id": 1, "email": "a@example.com"}})
	require.NoError(t, err)

	err = validator.Validate([]dataprimer.Record{{"id": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field: email")
}

func TestRecordValidator_ForbiddenFields(t *testing.T) {
	validator := NewRecordValidator(0, nil, WithForbiddenFields("password"))
	err := validator.Validate([]dataprimer.Record{{"id": 1, "password": "hunter2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden field: password")
}

func TestRecordValidator_NullRate(t *testing.T) {
	validator := NewRecordValidator(0, nil, WithMaxNullRate(0.25))
	records := []dataprimer.Record{
		{"email": "a@example.com"},
		{"email": nil},
		{"email": "c@example.com"},
		{"email": nil},
	}
	err := validator.Validate(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null rate")
}

func TestRecordValidator_FieldRules(t *testing.T) {
	validator := NewRecordValidator(0, nil,
		WithFieldRule("age", FieldRule{Type: FieldTypeInt, MinValue: 0, MaxValue: 120}),
		WithFieldRule("email", FieldRule{Type: FieldTypeEmail}),
		WithFieldRule("status", FieldRule{AllowedValues: []interface{}{"active", "inactive"}}),
	)

	good := []dataprimer.Record{{"age": 30, "email": "a@example.com", "status": "active"}}
	require.NoError(t, validator.Validate(good))

	badType := []dataprimer.Record{{"age": "thirty"}}
	assert.Error(t, validator.Validate(badType))

	badRange := []dataprimer.Record{{"age": 200}}
	assert.Error(t, validator.Validate(badRange))

	badEmail := []dataprimer.Record{{"email": "nope"}}
	assert.Error(t, validator.Validate(badEmail))

	badValue := []dataprimer.Record{{"status": "deleted"}}
	assert.Error(t, validator.Validate(badValue))
}

func TestRecordValidator_Pattern(t *testing.T) {
	validator := NewRecordValidator(0, nil,
		WithFieldRule("sku", FieldRule{Pattern: regexp.MustCompile(`^[A-Z]{3}-\d{4}$`)}),
	)

	require.NoError(t, validator.Validate([]dataprimer.Record{{"sku": "ABC-1234"}}))
	assert.Error(t, validator.Validate([]dataprimer.Record{{"sku": "abc-12"}}))
}

func TestRecordValidator_DateRule(t *testing.T) {
	validator := NewRecordValidator(0, nil,
		WithFieldRule("order_date", FieldRule{Type: FieldTypeDate}),
	)

	require.NoError(t, validator.Validate([]dataprimer.Record{{"order_date": "2026-01-15"}}))
	assert.Error(t, validator.Validate([]dataprimer.Record{{"order_date": "15/01/2026"}}))
}

func TestRecordValidator_CustomValidator(t *testing.T) {
	validator := NewRecordValidator(0, nil,
		WithCustomValidator(func(records []dataprimer.Record) (bool, error) {
			return len(records)%2 == 0, nil
		}),
	)

	require.NoError(t, validator.Validate([]dataprimer.Record{{"id": 1}, {"id": 2}}))
	assert.Error(t, validator.Validate([]dataprimer.Record{{"id": 1}}))
}

func TestRecordValidator_CustomValidatorError(t *testing.T) {
	validator := NewRecordValidator(0, nil,
		WithCustomValidator(func([]dataprimer.Record) (bool, error) {
			return false, errors.New("lookup failed")
		}),
	)

	err := validator.Validate([]dataprimer.Record{{"id": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup failed")
}

func TestRecordValidator_EmptyBatchPasses(t *testing.T) {
	validator := NewRecordValidator(0, []string{"id"}, WithMaxNullRate(0.1))
	require.NoError(t, validator.Validate(nil))
}
