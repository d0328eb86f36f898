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

package etl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer"
	"dataprimer/aggregate"
	"dataprimer/cleaning"
	"dataprimer/filter"
	"dataprimer/transform"
)

// memSink records writes and lifecycle calls.
type memSink struct {
	records []dataprimer.Record
	flushed bool
	closed  bool
	failOn  int
}

func (m *memSink) Write(ctx context.Context, record dataprimer.Record) error {
	if m.failOn > 0 && len(m.records)+1 >= m.failOn {
		return fmt.Errorf("simulated sink failure")
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memSink) Flush() error {
	m.flushed = true
	return nil
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

// failingSource errors on the first read.
type failingSource struct{}

func (f *failingSource) Read(ctx context.Context) (dataprimer.Record, error) {
	return nil, fmt.Errorf("simulated source failure")
}

func (f *failingSource) Close() error { return nil }

func orderSource() *sliceSource {
	return &sliceSource{records: []dataprimer.Record{
		{"region": "east", "amount": 120.0, "customer": "alice"},
		{"region": "west", "amount": nil, "customer": "bob"},
		{"region": "east", "amount": 75.0, "customer": "carol"},
		{"region": "west", "amount": 200.0, "customer": "dave"},
	}}
}

func TestJobRun_FullStages(t *testing.T) {
	sink := &memSink{}
	job := &Job{
		Name:     "regional-revenue",
		Source:   orderSource(),
		Cleaners: []dataprimer.Filter{filter.NotNull("amount")},
		Transforms: []dataprimer.Transformer{
			transform.AddField("currency", func(dataprimer.Record) interface{} { return "EUR" }),
		},
		Validator: cleaning.NewRecordValidator(1, []string{"region", "amount"}),
		Aggregate: func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
			return aggregate.NewGroupBy("region").
				Count("orders").
				Sum("amount", "revenue").
				Process(ctx, records)
		},
		Sink:   sink,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Counts[StageExtract])
	assert.Equal(t, 3, result.Counts[StageClean])
	assert.Equal(t, 3, result.Counts[StageDerive])
	assert.Equal(t, 3, result.Counts[StageValidate])
	assert.Equal(t, 2, result.Counts[StageAggregate])
	assert.Equal(t, 2, result.Counts[StageLoad])

	require.Len(t, sink.records, 2)
	assert.True(t, sink.flushed)
	assert.True(t, sink.closed)

	byRegion := make(map[string]dataprimer.Record)
	for _, record := range sink.records {
		byRegion[record["region"].(string)] = record
	}
	assert.Equal(t, 195.0, byRegion["east"]["revenue"])
	assert.Equal(t, 2, byRegion["east"]["orders"])
}

func TestJobRun_MinimalStages(t *testing.T) {
	sink := &memSink{}
	job := &Job{
		Name:   "passthrough",
		Source: orderSource(),
		Sink:   sink,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Counts[StageExtract])
	assert.Equal(t, 4, result.Counts[StageLoad])
	assert.NotContains(t, result.Counts, StageClean)
	assert.Len(t, sink.records, 4)
}

func TestJobRun_ValidationFailure(t *testing.T) {
	sink := &memSink{}
	job := &Job{
		Name:      "strict",
		Source:    orderSource(),
		Validator: cleaning.NewRecordValidator(10, nil),
		Sink:      sink,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := job.Run(context.Background())
	require.Error(t, err)

	var jobErr *JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, StageValidate, jobErr.Stage)
	assert.Empty(t, sink.records)
	assert.True(t, sink.closed)
}

func TestJobRun_ExtractFailureClosesSink(t *testing.T) {
	sink := &memSink{}
	job := &Job{
		Name:   "broken-source",
		Source: &failingSource{},
		Sink:   sink,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := job.Run(context.Background())
	require.Error(t, err)

	var jobErr *JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, StageExtract, jobErr.Stage)
	assert.True(t, sink.closed)
}

func TestJobRun_SinkFailureClosesSink(t *testing.T) {
	sink := &memSink{failOn: 2}
	job := &Job{
		Name:   "failing-load",
		Source: orderSource(),
		Sink:   sink,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := job.Run(context.Background())
	require.Error(t, err)

	var jobErr *JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, StageLoad, jobErr.Stage)
	assert.True(t, sink.closed)
}

func TestJobRun_RequiresSourceAndSink(t *testing.T) {
	_, err := (&Job{Name: "no-source", Sink: &memSink{}}).Run(context.Background())
	require.Error(t, err)

	_, err = (&Job{Name: "no-sink", Source: orderSource()}).Run(context.Background())
	require.Error(t, err)
}

func TestSafeRun_RecoversPanic(t *testing.T) {
	job := &Job{
		Name:   "panicky",
		Source: orderSource(),
		Transforms: []dataprimer.Transformer{
			dataprimer.TransformFunc(func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
				panic("boom")
			}),
		},
		Sink:   &memSink{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := job.SafeRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic during run")
}

func TestJobRun_StageLogging(t *testing.T) {
	var buf strings.Builder
	job := &Job{
		Name:   "logged",
		Source: orderSource(),
		Sink:   &memSink{},
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "job=logged")
	assert.Contains(t, output, "stage=extract")
	assert.Contains(t, output, "job complete")
}
