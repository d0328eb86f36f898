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

package sqlkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer"
)

func sampleOrders() []dataprimer.Record {
	return []dataprimer.Record{
		{"id": 1, "customer_id": 10, "region": "east", "amount": 1200.0},
		{"id": 2, "customer_id": 11, "region": "west", "amount": 800.0},
		{"id": 3, "customer_id": 10, "region": "east", "amount": 450.0},
		{"id": 4, "customer_id": 12, "region": "north", "amount": 2100.0},
	}
}

func TestSelect(t *testing.T) {
	out := Select(sampleOrders(), "id", "region")
	require.Len(t, out, 4)
	assert.Equal(t, dataprimer.Record{"id": 1, "region": "east"}, out[0])

	// Missing columns surface as nil, like SQL NULL.
	out = Select(sampleOrders()[:1], "id", "missing")
	assert.Nil(t, out[0]["missing"])
}

func TestWhere(t *testing.T) {
	out := Where(sampleOrders(), "region", "east")
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0]["id"])
	assert.Equal(t, 3, out[1]["id"])
}

func TestWhereGreaterThan(t *testing.T) {
	out := WhereGreaterThan(sampleOrders(), "amount", 1000)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0]["id"])
	assert.Equal(t, 4, out[1]["id"])
}

func TestGroupByCount(t *testing.T) {
	counts := GroupByCount(sampleOrders(), "region")
	assert.Equal(t, map[string]int{"east": 2, "west": 1, "north": 1}, counts)
}

func TestGroupBySum(t *testing.T) {
	sums := GroupBySum(sampleOrders(), "region", "amount")
	assert.InDelta(t, 1650.0, sums["east"], 0.001)
	assert.InDelta(t, 800.0, sums["west"], 0.001)
	assert.InDelta(t, 2100.0, sums["north"], 0.001)
}

func TestOrderBy(t *testing.T) {
	asc := OrderBy(sampleOrders(), "amount", true)
	assert.Equal(t, 3, asc[0]["id"])
	assert.Equal(t, 4, asc[3]["id"])

	desc := OrderBy(sampleOrders(), "amount", false)
	assert.Equal(t, 4, desc[0]["id"])
	assert.Equal(t, 3, desc[3]["id"])
}

func TestInnerJoin(t *testing.T) {
	customers := []dataprimer.Record{
		{"customer_id": 10, "name": "Acme"},
		{"customer_id": 11, "name": "Globex"},
	}

	joined := InnerJoin(sampleOrders(), customers, "customer_id")
	require.Len(t, joined, 3) // customer 12 has no match
	assert.Equal(t, "Acme", joined[0]["name"])
	assert.Equal(t, 1, joined[0]["id"])
}

func TestLeftJoin_KeepsUnmatchedRows(t *testing.T) {
	customers := []dataprimer.Record{
		{"customer_id": 10, "name": "Acme"},
	}

	joined := LeftJoin(sampleOrders(), customers, "customer_id")
	require.Len(t, joined, 4)
	assert.Equal(t, "Acme", joined[0]["name"])
	_, hasName := joined[1]["name"]
	assert.False(t, hasName)
}

func TestHaving(t *testing.T) {
	grouped := GroupByCount(sampleOrders(), "region")
	filtered := Having(grouped, 1)
	assert.Equal(t, map[string]int{"east": 2}, filtered)
}

func TestDistinct(t *testing.T) {
	values := Distinct(sampleOrders(), "region")
	assert.Equal(t, []interface{}{"east", "north", "west"}, values)
}

func TestJoinDoesNotMutateInputs(t *testing.T) {
	left := sampleOrders()
	customers := []dataprimer.Record{{"customer_id": 10, "name": "Acme"}}
	_ = LeftJoin(left, customers, "customer_id")

	_, hasName := left[0]["name"]
	assert.False(t, hasName)
}
