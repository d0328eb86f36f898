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
	"fmt"
	"reflect"
	"sort"

	"dataprimer"
)

// Package sqlkit re-expresses the core SQL clauses as operations over
// in-memory record slices: SELECT, WHERE, GROUP BY, ORDER BY, JOIN, HAVING,
// and DISTINCT. Each function returns new slices/maps and leaves its input
// untouched.

// Select projects each record down to the given columns.
// Equivalent to: SELECT col1, col2 FROM table.
// Missing columns appear as nil, mirroring SQL's NULL.
func Select(records []dataprimer.Record, columns ...string) []dataprimer.Record {
	out := make([]dataprimer.Record, 0, len(records))
	for _, record := range records {
		selected := make(dataprimer.Record, len(columns))
		for _, column := range columns {
			selected[column] = record[column]
		}
		out = append(out, selected)
	}
	return out
}

// Where returns records whose field equals value.
// Equivalent to: SELECT * FROM table WHERE field = value.
func Where(records []dataprimer.Record, field string, value interface{}) []dataprimer.Record {
	var out []dataprimer.Record
	for _, record := range records {
		if reflect.DeepEqual(record[field], value) {
			out = append(out, record)
		}
	}
	return out
}

// WhereGreaterThan returns records whose numeric field exceeds threshold.
// Equivalent to: WHERE amount > 1000.
func WhereGreaterThan(records []dataprimer.Record, field string, threshold float64) []dataprimer.Record {
	var out []dataprimer.Record
	for _, record := range records {
		if num, ok := toFloat64(record[field]); ok && num > threshold {
			out = append(out, record)
		}
	}
	return out
}

// GroupByCount counts records per distinct value of the group field.
// Equivalent to: SELECT field, COUNT(*) FROM table GROUP BY field.
func GroupByCount(records []dataprimer.Record, groupField string) map[string]int {
	counts := make(map[string]int)
	for _, record := range records {
		counts[keyString(record[groupField])]++
	}
	return counts
}

// GroupBySum sums a numeric field per distinct value of the group field.
// Equivalent to: SELECT field, SUM(amount) FROM table GROUP BY field.
// Non-numeric values contribute zero.
func GroupBySum(records []dataprimer.Record, groupField, sumField string) map[string]float64 {
	sums := make(map[string]float64)
	for _, record := range records {
		key := keyString(record[groupField])
		if num, ok := toFloat64(record[sumField]); ok {
			sums[key] += num
		} else {
			sums[key] += 0
		}
	}
	return sums
}

// OrderBy returns records sorted by the given field.
// Equivalent to: ORDER BY field ASC/DESC. The sort is stable.
func OrderBy(records []dataprimer.Record, field string, ascending bool) []dataprimer.Record {
	out := append([]dataprimer.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		less := lessValues(out[i][field], out[j][field])
		if ascending {
			return less
		}
		return lessValues(out[j][field], out[i][field])
	})
	return out
}

// InnerJoin joins two record sets on a common key, keeping only rows with a
// match on both sides. Right-side fields overwrite left-side fields on
// collision, as in the merged-row convention.
func InnerJoin(left, right []dataprimer.Record, joinKey string) []dataprimer.Record {
	lookup := buildLookup(right, joinKey)
	var out []dataprimer.Record
	for _, record := range left {
		match, ok := lookup[keyString(record[joinKey])]
		if !ok {
			continue
		}
		out = append(out, merge(record, match))
	}
	return out
}

// LeftJoin joins two record sets on a common key, keeping every left row.
// Unmatched left rows pass through unchanged.
func LeftJoin(left, right []dataprimer.Record, joinKey string) []dataprimer.Record {
	lookup := buildLookup(right, joinKey)
	out := make([]dataprimer.Record, 0, len(left))
	for _, record := range left {
		if match, ok := lookup[keyString(record[joinKey])]; ok {
			out = append(out, merge(record, match))
		} else {
			out = append(out, record.Clone())
		}
	}
	return out
}

// Having filters grouped counts by a minimum threshold.
// Equivalent to: HAVING COUNT(*) > n.
func Having(grouped map[string]int, threshold int) map[string]int {
	out := make(map[string]int)
	for key, count := range grouped {
		if count > threshold {
			out[key] = count
		}
	}
	return out
}

// Distinct returns the distinct values of a column, sorted for determinism.
// Equivalent to: SELECT DISTINCT column FROM table.
func Distinct(records []dataprimer.Record, field string) []interface{} {
	seen := make(map[string]interface{})
	for _, record := range records {
		seen[keyString(record[field])] = record[field]
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		out = append(out, seen[key])
	}
	return out
}

func buildLookup(records []dataprimer.Record, key string) map[string]dataprimer.Record {
	lookup := make(map[string]dataprimer.Record, len(records))
	for _, record := range records {
		lookup[keyString(record[key])] = record
	}
	return lookup
}

func merge(left, right dataprimer.Record) dataprimer.Record {
	out := left.Clone()
	for k, v := range right {
		out[k] = v
	}
	return out
}

func keyString(value interface{}) string {
	return fmt.Sprintf("%v", value)
}

func toFloat64(value interface{}) (float64, bool) {
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

func lessValues(a, b interface{}) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af < bf
	}
	return keyString(a) < keyString(b)
}
