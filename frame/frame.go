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

// Package frame provides a lazy, chainable view over record slices in the
// style of distributed dataframe APIs: operations accumulate into a plan and
// nothing executes until Collect. Cache materializes an intermediate result
// so repeated Collects do not re-run the prefix.
package frame

import (
	"context"

	"dataprimer"
	"dataprimer/aggregate"
	"dataprimer/sqlkit"
)

// DataFrame is an immutable view over records plus a plan of pending
// operations. Each chained call returns a new DataFrame; the source slice is
// never modified.
type DataFrame struct {
	source []dataprimer.Record
	ops    []operation
}

type operation func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error)

// New wraps a record slice in a DataFrame.
func New(records []dataprimer.Record) *DataFrame {
	return &DataFrame{source: records}
}

func (df *DataFrame) with(op operation) *DataFrame {
	ops := make([]operation, len(df.ops), len(df.ops)+1)
	copy(ops, df.ops)
	return &DataFrame{source: df.source, ops: append(ops, op)}
}

// Select keeps only the named columns.
func (df *DataFrame) Select(columns ...string) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		return sqlkit.Select(records, columns...), nil
	})
}

// Filter keeps records matching the predicate.
func (df *DataFrame) Filter(predicate func(dataprimer.Record) bool) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		var out []dataprimer.Record
		for _, record := range records {
			if predicate(record) {
				out = append(out, record)
			}
		}
		return out, nil
	})
}

// Where keeps records whose field equals value.
func (df *DataFrame) Where(field string, value interface{}) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		return sqlkit.Where(records, field, value), nil
	})
}

// WithColumn adds or replaces a column computed from each record.
func (df *DataFrame) WithColumn(name string, fn func(dataprimer.Record) interface{}) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		out := make([]dataprimer.Record, len(records))
		for i, record := range records {
			clone := record.Clone()
			clone[name] = fn(record)
			out[i] = clone
		}
		return out, nil
	})
}

// Drop removes the named columns.
func (df *DataFrame) Drop(columns ...string) *DataFrame {
	toDrop := make(map[string]bool, len(columns))
	for _, c := range columns {
		toDrop[c] = true
	}
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		out := make([]dataprimer.Record, len(records))
		for i, record := range records {
			clone := make(dataprimer.Record, len(record))
			for k, v := range record {
				if !toDrop[k] {
					clone[k] = v
				}
			}
			out[i] = clone
		}
		return out, nil
	})
}

// Rename renames columns according to the mapping.
func (df *DataFrame) Rename(mapping map[string]string) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		out := make([]dataprimer.Record, len(records))
		for i, record := range records {
			clone := make(dataprimer.Record, len(record))
			for k, v := range record {
				if newKey, exists := mapping[k]; exists {
					clone[newKey] = v
				} else {
					clone[k] = v
				}
			}
			out[i] = clone
		}
		return out, nil
	})
}

// FillNA replaces nil or missing columns with defaults.
func (df *DataFrame) FillNA(defaults dataprimer.Record) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		out := make([]dataprimer.Record, len(records))
		for i, record := range records {
			clone := record.Clone()
			for field, fallback := range defaults {
				if value, exists := clone[field]; !exists || value == nil {
					clone[field] = fallback
				}
			}
			out[i] = clone
		}
		return out, nil
	})
}

// OrderBy sorts by a field. The sort is stable.
func (df *DataFrame) OrderBy(field string, ascending bool) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		return sqlkit.OrderBy(records, field, ascending), nil
	})
}

// GroupBy aggregates the frame with the given GroupBy plan. The result
// records replace the frame's rows.
func (df *DataFrame) GroupBy(plan *aggregate.GroupBy) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		return plan.Process(ctx, records)
	})
}

// Join inner-joins the frame with other on joinKey.
func (df *DataFrame) Join(other *DataFrame, joinKey string) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		right, err := other.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return sqlkit.InnerJoin(records, right, joinKey), nil
	})
}

// LeftJoin left-joins the frame with other on joinKey, keeping unmatched
// left rows.
func (df *DataFrame) LeftJoin(other *DataFrame, joinKey string) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		right, err := other.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return sqlkit.LeftJoin(records, right, joinKey), nil
	})
}

// Distinct keeps the first record per distinct value of field.
func (df *DataFrame) Distinct(field string) *DataFrame {
	return df.with(func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
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
		return out, nil
	})
}

// Cache materializes the plan so far into a new frame. Use it before fanning
// a frame into several downstream chains to avoid re-running the prefix.
func (df *DataFrame) Cache(ctx context.Context) (*DataFrame, error) {
	records, err := df.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

// Collect executes the accumulated plan and returns the resulting records.
func (df *DataFrame) Collect(ctx context.Context) ([]dataprimer.Record, error) {
	records := df.source
	for _, op := range df.ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		records, err = op(ctx, records)
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Count executes the plan and returns the number of resulting records.
func (df *DataFrame) Count(ctx context.Context) (int, error) {
	records, err := df.Collect(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
