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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer"
)

func apply(t *testing.T, tr dataprimer.Transformer, record dataprimer.Record) dataprimer.Record {
	t.Helper()
	out, err := tr.Transform(context.Background(), record)
	require.NoError(t, err)
	return out
}

func TestSelect(t *testing.T) {
	record := dataprimer.Record{"id": 1, "name": "alice", "email": "a@example.com"}
	out := apply(t, Select("id", "name"), record)
	assert.Equal(t, dataprimer.Record{"id": 1, "name": "alice"}, out)
}

func TestRename(t *testing.T) {
	record := dataprimer.Record{"nm": "alice", "id": 1}
	out := apply(t, Rename(map[string]string{"nm": "name"}), record)
	assert.Equal(t, "alice", out["name"])
	assert.Equal(t, 1, out["id"])
	_, exists := out["nm"]
	assert.False(t, exists)
}

func TestAddField(t *testing.T) {
	record := dataprimer.Record{"price": 10.0, "quantity": 3.0}
	out := apply(t, AddField("total", func(r dataprimer.Record) interface{} {
		return r["price"].(float64) * r["quantity"].(float64)
	}), record)
	assert.Equal(t, 30.0, out["total"])

	// Source record is untouched.
	_, exists := record["total"]
	assert.False(t, exists)
}

func TestTypeConversions(t *testing.T) {
	record := dataprimer.Record{"age": "42", "score": "3.5", "id": 7}

	out := apply(t, ToInt("age"), record)
	assert.Equal(t, 42, out["age"])

	out = apply(t, ToFloat("score"), record)
	assert.Equal(t, 3.5, out["score"])

	out = apply(t, ToString("id"), record)
	assert.Equal(t, "7", out["id"])
}

func TestConvertType_Failure(t *testing.T) {
	_, err := ToInt("age").Transform(context.Background(), dataprimer.Record{"age": "forty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to convert field age")
}

func TestStringNormalization(t *testing.T) {
	record := dataprimer.Record{"name": "  Alice  ", "city": "austin"}

	out := apply(t, TrimSpace("name"), record)
	assert.Equal(t, "Alice", out["name"])

	out = apply(t, ToUpper("city"), record)
	assert.Equal(t, "AUSTIN", out["city"])

	out = apply(t, ToLower("name"), record)
	assert.Equal(t, "  alice  ", out["name"])
}

func TestParseTime(t *testing.T) {
	record := dataprimer.Record{"created": "2026-03-15"}
	out := apply(t, ParseTime("created", "2006-01-02"), record)
	parsed, ok := out["created"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2026, parsed.Year())

	_, err := ParseTime("created", "2006-01-02").Transform(context.Background(), dataprimer.Record{"created": "bad"})
	assert.Error(t, err)
}

func TestReformatDate(t *testing.T) {
	record := dataprimer.Record{"order_date": "2026-03-15"}
	out := apply(t, ReformatDate("order_date", "2006-01-02", "02-01-2006"), record)
	assert.Equal(t, "15-03-2026", out["order_date"])
}

func TestCleanString(t *testing.T) {
	record := dataprimer.Record{"title": "Hello, World! 123"}
	out := apply(t, CleanString("title"), record)
	assert.Equal(t, "hello world 123", out["title"])
}

func TestStandardizeKeys(t *testing.T) {
	record := dataprimer.Record{"First Name": "alice", "AGE": 30}
	out := apply(t, StandardizeKeys(), record)
	assert.Equal(t, "alice", out["first_name"])
	assert.Equal(t, 30, out["age"])
}

func TestNormalizeBool(t *testing.T) {
	for _, truthy := range []interface{}{true, "TRUE", "yes", " 1 ", 1} {
		out := apply(t, NormalizeBool("active"), dataprimer.Record{"active": truthy})
		assert.Equal(t, true, out["active"], "value %v", truthy)
	}
	for _, falsy := range []interface{}{false, "no", "0", 0, 3.5} {
		out := apply(t, NormalizeBool("active"), dataprimer.Record{"active": falsy})
		assert.Equal(t, false, out["active"], "value %v", falsy)
	}
}

func TestFillNA(t *testing.T) {
	record := dataprimer.Record{"name": "alice", "email": nil}
	out := apply(t, FillNA(dataprimer.Record{"email": "unknown", "active": true}), record)
	assert.Equal(t, "unknown", out["email"])
	assert.Equal(t, true, out["active"])
	assert.Equal(t, "alice", out["name"])
}

func TestRemoveFields(t *testing.T) {
	record := dataprimer.Record{"id": 1, "password": "x", "token": "y"}

	out := apply(t, RemoveField("password"), record)
	assert.Len(t, out, 2)

	out = apply(t, RemoveFields("password", "token"), record)
	assert.Equal(t, dataprimer.Record{"id": 1}, out)
}
