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

package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer"
	"dataprimer/aggregate"
)

func sampleOrders() []dataprimer.Record {
	return []dataprimer.Record{
		{"id": 1, "customer": "alice", "amount": 120.0, "region": "east"},
		{"id": 2, "customer": "bob", "amount": 30.0, "region": "west"},
		{"id": 3, "customer": "alice", "amount": 75.0, "region": "east"},
		{"id": 4, "customer": "carol", "amount": 200.0, "region": "west"},
	}
}

func TestSelectAndWhere(t *testing.T) {
	out, err := New(sampleOrders()).
		Where("region", "east").
		Select("customer", "amount").
		Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, dataprimer.Record{"customer": "alice", "amount": 120.0}, out[0])
}

func TestFilterAndWithColumn(t *testing.T) {
	out, err := New(sampleOrders()).
		Filter(func(r dataprimer.Record) bool { return r["amount"].(float64) > 50 }).
		WithColumn("amount_with_tax", func(r dataprimer.Record) interface{} {
			return r["amount"].(float64) * 1.08
		}).
		Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.InDelta(t, 129.6, out[0]["amount_with_tax"].(float64), 0.001)

	// Source rows gain no column.
	_, exists := sampleOrders()[0]["amount_with_tax"]
	assert.False(t, exists)
}

func TestDropRenameFillNA(t *testing.T) {
	records := []dataprimer.Record{{"id": 1, "nm": "alice", "email": nil, "secret": "x"}}

	out, err := New(records).
		Drop("secret").
		Rename(map[string]string{"nm": "name"}).
		FillNA(dataprimer.Record{"email": "unknown"}).
		Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, dataprimer.Record{"id": 1, "name": "alice", "email": "unknown"}, out[0])
}

func TestOrderBy(t *testing.T) {
	out, err := New(sampleOrders()).
		OrderBy("amount", false).
		Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200.0, out[0]["amount"])
	assert.Equal(t, 30.0, out[3]["amount"])
}

func TestGroupBy(t *testing.T) {
	out, err := New(sampleOrders()).
		GroupBy(aggregate.NewGroupBy("region").Count("orders").Sum("amount", "revenue")).
		Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	east := out[0]
	assert.Equal(t, "east", east["region"])
	assert.Equal(t, 2, east["orders"])
	assert.InDelta(t, 195.0, east["revenue"].(float64), 0.001)
}

func TestJoin(t *testing.T) {
	customers := New([]dataprimer.Record{
		{"customer": "alice", "tier": "gold"},
		{"customer": "bob", "tier": "silver"},
	})

	out, err := New(sampleOrders()).
		Join(customers, "customer").
		Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "gold", out[0]["tier"])
}

func TestLeftJoin_KeepsUnmatched(t *testing.T) {
	customers := New([]dataprimer.Record{{"customer": "alice", "tier": "gold"}})

	out, err := New(sampleOrders()).
		LeftJoin(customers, "customer").
		Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 4)

	_, hasTier := out[1]["tier"]
	assert.False(t, hasTier)
}

func TestDistinctAndCount(t *testing.T) {
	ctx := context.Background()

	n, err := New(sampleOrders()).Distinct("customer").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestChainingIsImmutable(t *testing.T) {
	ctx := context.Background()
	base := New(sampleOrders()).Where("region", "east")

	a, err := base.Select("id").Collect(ctx)
	require.NoError(t, err)
	b, err := base.Collect(ctx)
	require.NoError(t, err)

	// The Select branch must not leak into the base plan.
	assert.Len(t, a, 2)
	assert.Len(t, b, 2)
	assert.Contains(t, b[0], "customer")
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	calls := 0

	df := New(sampleOrders()).Filter(func(r dataprimer.Record) bool {
		calls++
		return true
	})

	cached, err := df.Cache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)

	_, err = cached.Collect(ctx)
	require.NoError(t, err)
	_, err = cached.Collect(ctx)
	require.NoError(t, err)

	// The filter ran only during Cache.
	assert.Equal(t, 4, calls)
}

func TestCollect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(sampleOrders()).Select("id").Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
