package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dataprimer"
)

// GroupBy accumulates records into groups keyed by one or more fields and
// applies a set of named aggregators to each group.
type GroupBy struct {
	groupFields []string
	aggregators map[string]func() dataprimer.Aggregator
	order       []string
}

// NewGroupBy creates a GroupBy over the given grouping fields.
func NewGroupBy(groupFields ...string) *GroupBy {
	return &GroupBy{
		groupFields: groupFields,
		aggregators: make(map[string]func() dataprimer.Aggregator),
	}
}

// Count adds a record counter under the given output field.
func (g *GroupBy) Count(outputField string) *GroupBy {
	return g.add(outputField, func() dataprimer.Aggregator { return &CountAggregator{} })
}

// Sum adds a sum over field under the given output field.
func (g *GroupBy) Sum(field, outputField string) *GroupBy {
	return g.add(outputField, func() dataprimer.Aggregator { return &SumAggregator{Field: field} })
}

// Avg adds an average over field under the given output field.
func (g *GroupBy) Avg(field, outputField string) *GroupBy {
	return g.add(outputField, func() dataprimer.Aggregator { return &AvgAggregator{Field: field} })
}

// Min adds a minimum over field under the given output field.
func (g *GroupBy) Min(field, outputField string) *GroupBy {
	return g.add(outputField, func() dataprimer.Aggregator { return &MinAggregator{Field: field} })
}

// Max adds a maximum over field under the given output field.
func (g *GroupBy) Max(field, outputField string) *GroupBy {
	return g.add(outputField, func() dataprimer.Aggregator { return &MaxAggregator{Field: field} })
}

func (g *GroupBy) add(outputField string, factory func() dataprimer.Aggregator) *GroupBy {
	if _, exists := g.aggregators[outputField]; !exists {
		g.order = append(g.order, outputField)
	}
	g.aggregators[outputField] = factory
	return g
}

// Process aggregates all records and returns one result record per group.
// Each result carries the original grouping fields plus the aggregated
// output fields. Results are ordered by group key for determinism.
func (g *GroupBy) Process(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
	groups := make(map[string]map[string]dataprimer.Aggregator)
	groupKeys := make(map[string]dataprimer.Record)

	for _, record := range records {
		key := g.buildGroupKey(record)

		if _, exists := groups[key]; !exists {
			groups[key] = make(map[string]dataprimer.Aggregator, len(g.aggregators))
			for outputField, factory := range g.aggregators {
				groups[key][outputField] = factory()
			}
			// Remember the actual key values so results carry real columns.
			keyRecord := make(dataprimer.Record, len(g.groupFields))
			for _, field := range g.groupFields {
				keyRecord[field] = record[field]
			}
			groupKeys[key] = keyRecord
		}

		for outputField, aggregator := range groups[key] {
			if err := aggregator.Add(ctx, record); err != nil {
				return nil, fmt.Errorf("aggregate %s: %w", outputField, err)
			}
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make([]dataprimer.Record, 0, len(keys))
	for _, key := range keys {
		result := groupKeys[key].Clone()
		for _, outputField := range g.order {
			value, err := groups[key][outputField].Result()
			if err != nil {
				return nil, fmt.Errorf("result for %s: %w", outputField, err)
			}
			for _, v := range value {
				result[outputField] = v
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// buildGroupKey encodes the grouping field values into a single stable key.
func (g *GroupBy) buildGroupKey(record dataprimer.Record) string {
	parts := make([]string, len(g.groupFields))
	for i, field := range g.groupFields {
		parts[i] = fmt.Sprintf("%s=%v", field, record[field])
	}
	return strings.Join(parts, "\x1f")
}

// CountAggregator counts the number of records.
type CountAggregator struct {
	count int
}

func (c *CountAggregator) Add(ctx context.Context, record dataprimer.Record) error {
	c.count++
	return nil
}

func (c *CountAggregator) Result() (dataprimer.Record, error) {
	return dataprimer.Record{"count": c.count}, nil
}

func (c *CountAggregator) Reset() {
	c.count = 0
}

// SumAggregator sums numeric values of a field. Non-numeric values are ignored.
type SumAggregator struct {
	Field string
	sum   float64
}

func (s *SumAggregator) Add(ctx context.Context, record dataprimer.Record) error {
	if value, exists := record[s.Field]; exists {
		if num, ok := toFloat64(value); ok {
			s.sum += num
		}
	}
	return nil
}

func (s *SumAggregator) Result() (dataprimer.Record, error) {
	return dataprimer.Record{"sum": s.sum}, nil
}

func (s *SumAggregator) Reset() {
	s.sum = 0
}

// AvgAggregator averages numeric values of a field.
type AvgAggregator struct {
	Field string
	sum   float64
	count int
}

func (a *AvgAggregator) Add(ctx context.Context, record dataprimer.Record) error {
	if value, exists := record[a.Field]; exists {
		if num, ok := toFloat64(value); ok {
			a.sum += num
			a.count++
		}
	}
	return nil
}

func (a *AvgAggregator) Result() (dataprimer.Record, error) {
	if a.count == 0 {
		return dataprimer.Record{"avg": 0.0}, nil
	}
	return dataprimer.Record{"avg": a.sum / float64(a.count)}, nil
}

func (a *AvgAggregator) Reset() {
	a.sum = 0
	a.count = 0
}

// MinAggregator tracks the minimum value of a field.
type MinAggregator struct {
	Field string
	min   interface{}
	set   bool
}

func (m *MinAggregator) Add(ctx context.Context, record dataprimer.Record) error {
	if value, exists := record[m.Field]; exists {
		if !m.set || compareValues(value, m.min) < 0 {
			m.min = value
			m.set = true
		}
	}
	return nil
}

func (m *MinAggregator) Result() (dataprimer.Record, error) {
	return dataprimer.Record{"min": m.min}, nil
}

func (m *MinAggregator) Reset() {
	m.min = nil
	m.set = false
}

// MaxAggregator tracks the maximum value of a field.
type MaxAggregator struct {
	Field string
	max   interface{}
	set   bool
}

func (m *MaxAggregator) Add(ctx context.Context, record dataprimer.Record) error {
	if value, exists := record[m.Field]; exists {
		if !m.set || compareValues(value, m.max) > 0 {
			m.max = value
			m.set = true
		}
	}
	return nil
}

func (m *MaxAggregator) Result() (dataprimer.Record, error) {
	return dataprimer.Record{"max": m.max}, nil
}

func (m *MaxAggregator) Reset() {
	m.max = nil
	m.set = false
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

func compareValues(a, b interface{}) int {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
