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

// Package etl runs small end-to-end jobs: extract from a source, clean and
// derive with filters and transformers, validate the batch, optionally
// aggregate, and load into a sink. Each stage runs as its own pipeline pass
// with record counts and structured step logging, which is the shape most
// production jobs start from.
package etl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"dataprimer"
)

// Stage names a step of a job run.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageClean     Stage = "clean"
	StageDerive    Stage = "derive"
	StageValidate  Stage = "validate"
	StageAggregate Stage = "aggregate"
	StageLoad      Stage = "load"
)

// Validator checks a whole batch between the derive and aggregate stages.
// cleaning.RecordValidator satisfies this.
type Validator interface {
	Validate(records []dataprimer.Record) error
}

// AggregateFunc reduces the cleaned batch to its output records.
type AggregateFunc func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error)

// Job describes one extract-to-load run. Source and Sink are required; every
// other stage is optional and skipped when unset.
type Job struct {
	Name       string
	Source     dataprimer.DataSource
	Cleaners   []dataprimer.Filter
	Transforms []dataprimer.Transformer
	Validator  Validator
	Aggregate  AggregateFunc
	Sink       dataprimer.DataSink
	Logger     *slog.Logger
}

// JobError wraps a failure with the job and stage it happened in.
type JobError struct {
	Job   string
	Stage Stage
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: stage %s: %v", e.Job, e.Stage, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Result summarizes a completed run.
type Result struct {
	Counts   map[Stage]int
	Duration time.Duration
}

// Run executes the job stages in order and returns per-stage record counts.
// The sink is closed exactly once on every path, including failures in the
// stages before load.
func (j *Job) Run(ctx context.Context) (result *Result, err error) {
	if j.Source == nil {
		return nil, &JobError{Job: j.Name, Stage: StageExtract, Err: fmt.Errorf("source is required")}
	}
	if j.Sink == nil {
		return nil, &JobError{Job: j.Name, Stage: StageLoad, Err: fmt.Errorf("sink is required")}
	}

	var sinkClosed bool
	closeSink := func() error {
		if sinkClosed {
			return nil
		}
		sinkClosed = true
		return j.Sink.Close()
	}
	defer func() {
		if err != nil {
			closeSink()
		}
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("job", j.Name)

	start := time.Now()
	counts := make(map[Stage]int)

	records, err := j.extract(ctx)
	if err != nil {
		return nil, &JobError{Job: j.Name, Stage: StageExtract, Err: err}
	}
	counts[StageExtract] = len(records)
	logger.Info("stage complete", "stage", StageExtract, "records", len(records))

	if len(j.Cleaners) > 0 {
		records, err = j.clean(ctx, records)
		if err != nil {
			return nil, &JobError{Job: j.Name, Stage: StageClean, Err: err}
		}
		counts[StageClean] = len(records)
		logger.Info("stage complete", "stage", StageClean, "records", len(records))
	}

	if len(j.Transforms) > 0 {
		records, err = j.derive(ctx, records)
		if err != nil {
			return nil, &JobError{Job: j.Name, Stage: StageDerive, Err: err}
		}
		counts[StageDerive] = len(records)
		logger.Info("stage complete", "stage", StageDerive, "records", len(records))
	}

	if j.Validator != nil {
		if err := j.Validator.Validate(records); err != nil {
			return nil, &JobError{Job: j.Name, Stage: StageValidate, Err: err}
		}
		counts[StageValidate] = len(records)
		logger.Info("stage complete", "stage", StageValidate, "records", len(records))
	}

	if j.Aggregate != nil {
		records, err = j.Aggregate(ctx, records)
		if err != nil {
			return nil, &JobError{Job: j.Name, Stage: StageAggregate, Err: err}
		}
		counts[StageAggregate] = len(records)
		logger.Info("stage complete", "stage", StageAggregate, "records", len(records))
	}

	if err := j.load(ctx, records); err != nil {
		return nil, &JobError{Job: j.Name, Stage: StageLoad, Err: err}
	}
	if err := closeSink(); err != nil {
		return nil, &JobError{Job: j.Name, Stage: StageLoad, Err: err}
	}
	counts[StageLoad] = len(records)

	result = &Result{Counts: counts, Duration: time.Since(start)}
	logger.Info("job complete", "stage", StageLoad, "records", len(records), "duration", result.Duration)
	return result, nil
}

// SafeRun is Run with panic recovery, so a misbehaving transformer fails the
// job instead of the process.
func (j *Job) SafeRun(ctx context.Context) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &JobError{Job: j.Name, Stage: StageDerive, Err: fmt.Errorf("panic during run: %v", r)}
		}
	}()
	return j.Run(ctx)
}

func (j *Job) extract(ctx context.Context) ([]dataprimer.Record, error) {
	collector := &sliceSink{}
	pipeline, err := dataprimer.NewPipeline().
		From(j.Source).
		To(collector).
		Build()
	if err != nil {
		return nil, err
	}
	if err := pipeline.Execute(ctx); err != nil {
		return nil, err
	}
	return collector.records, nil
}

func (j *Job) clean(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
	builder := dataprimer.NewPipeline().From(&sliceSource{records: records})
	for _, cleaner := range j.Cleaners {
		builder = builder.Filter(cleaner)
	}
	return runCollecting(ctx, builder)
}

func (j *Job) derive(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
	builder := dataprimer.NewPipeline().From(&sliceSource{records: records})
	for _, transform := range j.Transforms {
		builder = builder.Transform(transform)
	}
	return runCollecting(ctx, builder)
}

// load writes and flushes; closing is owned by Run so failures in earlier
// stages release the sink the same way.
func (j *Job) load(ctx context.Context, records []dataprimer.Record) error {
	for _, record := range records {
		if err := j.Sink.Write(ctx, record); err != nil {
			return err
		}
	}
	return j.Sink.Flush()
}

func runCollecting(ctx context.Context, builder *dataprimer.PipelineBuilder) ([]dataprimer.Record, error) {
	collector := &sliceSink{}
	pipeline, err := builder.To(collector).Build()
	if err != nil {
		return nil, err
	}
	if err := pipeline.Execute(ctx); err != nil {
		return nil, err
	}
	return collector.records, nil
}

// sliceSource replays an in-memory batch as a DataSource.
type sliceSource struct {
	records []dataprimer.Record
	pos     int
}

func (s *sliceSource) Read(ctx context.Context) (dataprimer.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	record := s.records[s.pos]
	s.pos++
	return record, nil
}

func (s *sliceSource) Close() error { return nil }

// sliceSink collects pipeline output in memory.
type sliceSink struct {
	records []dataprimer.Record
}

func (s *sliceSink) Write(ctx context.Context, record dataprimer.Record) error {
	s.records = append(s.records, record)
	return nil
}

func (s *sliceSink) Flush() error { return nil }
func (s *sliceSink) Close() error { return nil }
