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

// metrics.go - reporting transformations over record slices and numeric series
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"dataprimer"
)

// Total sums a numeric field across all records. Non-numeric and missing
// values contribute zero, so dirty rows do not poison a report.
func Total(records []dataprimer.Record, field string) float64 {
	total := 0.0
	for _, record := range records {
		if num, ok := toFloat64(record[field]); ok {
			total += num
		}
	}
	return total
}

// Average computes the mean of a numeric series. An empty series yields 0.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// GroupRecords buckets records by the value of the given key,
// like GROUP BY without an aggregate.
func GroupRecords(records []dataprimer.Record, key string) map[string][]dataprimer.Record {
	grouped := make(map[string][]dataprimer.Record)
	for _, record := range records {
		groupKey := fmt.Sprintf("%v", record[key])
		grouped[groupKey] = append(grouped[groupKey], record)
	}
	return grouped
}

// Pivot reshapes row-based records into a nested rowKey -> columnKey -> value
// structure, a common analytics transformation.
func Pivot(records []dataprimer.Record, rowKey, columnKey, valueKey string) map[string]map[string]interface{} {
	pivot := make(map[string]map[string]interface{})
	for _, record := range records {
		row := fmt.Sprintf("%v", record[rowKey])
		col := fmt.Sprintf("%v", record[columnKey])
		if pivot[row] == nil {
			pivot[row] = make(map[string]interface{})
		}
		pivot[row][col] = record[valueKey]
	}
	return pivot
}

// RunningTotal returns the cumulative sum of the series,
// used in trend and time-series analysis.
func RunningTotal(values []float64) []float64 {
	out := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		total += v
		out[i] = total
	}
	return out
}

// Rank sorts records descending by a numeric field and annotates each with a
// 1-based "rank" field. Input records are not modified.
func Rank(records []dataprimer.Record, field string) []dataprimer.Record {
	out := make([]dataprimer.Record, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return compareValues(out[i][field], out[j][field]) > 0
	})
	for i, record := range out {
		record["rank"] = i + 1
	}
	return out
}

// Bucketize groups numeric values into fixed-size buckets keyed by the bucket
// floor, used for segmentation and histograms. A non-positive bucket size has
// no meaningful floor and yields nil.
func Bucketize(values []float64, bucketSize float64) map[float64][]float64 {
	if bucketSize <= 0 {
		return nil
	}
	buckets := make(map[float64][]float64)
	for _, v := range values {
		floor := math.Floor(v/bucketSize) * bucketSize
		buckets[floor] = append(buckets[floor], v)
	}
	return buckets
}

// Normalize scales values into [0, 1] via min-max normalization.
// A constant series (min == max) normalizes to all zeros.
func Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == min {
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}

// Metrics aggregates sum, min, max, and average in one pass,
// the shape of a summary reporting layer.
func Metrics(values []float64) dataprimer.Record {
	if len(values) == 0 {
		return dataprimer.Record{}
	}
	sum, min, max := 0.0, values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return dataprimer.Record{
		"sum":     sum,
		"min":     min,
		"max":     max,
		"average": sum / float64(len(values)),
	}
}
