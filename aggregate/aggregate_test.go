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

package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer"
)

func sampleSales() []dataprimer.Record {
	return []dataprimer.Record{
		{"category": "books", "region": "east", "amount": 100.0},
		{"category": "books", "region": "west", "amount": 50.0},
		{"category": "games", "region": "east", "amount": 200.0},
		{"category": "books", "region": "east", "amount": 25.0},
	}
}

func TestGroupBy_CountSumAvg(t *testing.T) {
	results, err := NewGroupBy("category").
		Count("orders").
		Sum("amount", "revenue").
		Avg("amount", "avg_amount").
		Process(context.Background(), sampleSales())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results are sorted by group key: books before games.
	books := results[0]
	assert.Equal(t, "books", books["category"])
	assert.Equal(t, 3, books["orders"])
	assert.InDelta(t, 175.0, books["revenue"].(float64), 0.001)
	assert.InDelta(t, 58.333, books["avg_amount"].(float64), 0.001)

	games := results[1]
	assert.Equal(t, "games", games["category"])
	assert.Equal(t, 1, games["orders"])
}

func TestGroupBy_MultipleFields(t *testing.T) {
	results, err := NewGroupBy("category", "region").
		Count("n").
		Process(context.Background(), sampleSales())
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, result := range results {
		if result["category"] == "books" && result["region"] == "east" {
			assert.Equal(t, 2, result["n"])
		}
	}
}

func TestGroupBy_MinMax(t *testing.T) {
	results, err := NewGroupBy("category").
		Min("amount", "lowest").
		Max("amount", "highest").
		Process(context.Background(), sampleSales())
	require.NoError(t, err)

	books := results[0]
	assert.Equal(t, 25.0, books["lowest"])
	assert.Equal(t, 100.0, books["highest"])
}

func TestAggregatorReset(t *testing.T) {
	agg := &SumAggregator{Field: "amount"}
	ctx := context.Background()
	require.NoError(t, agg.Add(ctx, dataprimer.Record{"amount": 5.0}))
	agg.Reset()
	require.NoError(t, agg.Add(ctx, dataprimer.Record{"amount": 2.0}))

	result, err := agg.Result()
	require.NoError(t, err)
	assert.Equal(t, 2.0, result["sum"])
}

func TestTotal_IgnoresDirtyRows(t *testing.T) {
	records := []dataprimer.Record{
		{"amount": 10.0},
		{"amount": "oops"},
		{"other": 1},
		{"amount": 5},
	}
	assert.InDelta(t, 15.0, Total(records, "amount"), 0.001)
}

func TestAverage(t *testing.T) {
	assert.InDelta(t, 2.0, Average([]float64{1, 2, 3}), 0.001)
	assert.Equal(t, 0.0, Average(nil))
}

func TestGroupRecords(t *testing.T) {
	grouped := GroupRecords(sampleSales(), "category")
	assert.Len(t, grouped["books"], 3)
	assert.Len(t, grouped["games"], 1)
}

func TestPivot(t *testing.T) {
	pivot := Pivot(sampleSales(), "category", "region", "amount")
	assert.Equal(t, 200.0, pivot["games"]["east"])
	// Later rows win on collision.
	assert.Equal(t, 25.0, pivot["books"]["east"])
}

func TestRunningTotal(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 6}, RunningTotal([]float64{1, 2, 3}))
	assert.Empty(t, RunningTotal(nil))
}

func TestRank(t *testing.T) {
	ranked := Rank(sampleSales(), "amount")
	require.Len(t, ranked, 4)
	assert.Equal(t, 1, ranked[0]["rank"])
	assert.Equal(t, 200.0, ranked[0]["amount"])
	assert.Equal(t, 4, ranked[3]["rank"])
	assert.Equal(t, 25.0, ranked[3]["amount"])

	// Originals keep no rank field.
	_, hasRank := sampleSales()[0]["rank"]
	assert.False(t, hasRank)
}

func TestBucketize(t *testing.T) {
	buckets := Bucketize([]float64{3, 12, 17, 21}, 10)
	assert.Equal(t, []float64{3}, buckets[0])
	assert.Equal(t, []float64{12, 17}, buckets[10])
	assert.Equal(t, []float64{21}, buckets[20])
}

func TestBucketize_NonPositiveSize(t *testing.T) {
	assert.Nil(t, Bucketize([]float64{1, 2, 3}, 0))
	assert.Nil(t, Bucketize([]float64{1, 2, 3}, -5))
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float64{0, 5, 10})
	assert.InDelta(t, 0.0, out[0], 0.001)
	assert.InDelta(t, 0.5, out[1], 0.001)
	assert.InDelta(t, 1.0, out[2], 0.001)

	// Constant series normalizes to zeros.
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{7, 7}))
}

func TestMetrics(t *testing.T) {
	m := Metrics([]float64{2, 4, 6})
	assert.Equal(t, 12.0, m["sum"])
	assert.Equal(t, 2.0, m["min"])
	assert.Equal(t, 6.0, m["max"])
	assert.InDelta(t, 4.0, m["average"].(float64), 0.001)

	assert.Empty(t, Metrics(nil))
}
