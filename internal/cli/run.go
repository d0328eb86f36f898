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

package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dataprimer"
	"dataprimer/aggregate"
	"dataprimer/cleaning"
	"dataprimer/config"
	"dataprimer/etl"
	"dataprimer/fileio"
	"dataprimer/filter"
	"dataprimer/target"
)

var (
	runIn      string
	runOut     string
	runNotNull []string
	runRequire []string
	runTrim    bool
	runGroupBy string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a clean/validate/load job",
	Long: `Run an extract-clean-validate-load job: read records from the input
file, drop records with nulls in the named fields, trim string fields,
validate required fields, and write the result to the output file.

Examples:
  dataprimer run --in raw.csv --out clean.csv --not-null amount
  dataprimer run --in raw.csv --out clean.parquet --require id,amount --trim
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runIn == "" || runOut == "" {
			return fmt.Errorf("--in and --out are required")
		}
		if !fileio.FileExists(runIn) {
			return fmt.Errorf("file not found: %s", runIn)
		}

		logger, err := config.NewLogger(cmd.ErrOrStderr(), logLevel)
		if err != nil {
			return err
		}

		source, err := openSource(runIn)
		if err != nil {
			return err
		}

		format, err := target.ParseFormat(string(fileio.DetectFileType(runOut)))
		if err != nil {
			return fmt.Errorf("cannot infer output format from %s: %w", runOut, err)
		}
		sink, err := target.FileLocation{Path: runOut}.NewSink(format)
		if err != nil {
			source.Close()
			return err
		}

		job := &etl.Job{
			Name:   "cli-run",
			Source: source,
			Sink:   sink,
			Logger: logger,
		}
		for _, field := range runNotNull {
			job.Cleaners = append(job.Cleaners, filter.NotNull(field))
		}
		if runTrim {
			job.Transforms = append(job.Transforms, dataprimer.TransformFunc(
				func(ctx context.Context, record dataprimer.Record) (dataprimer.Record, error) {
					return cleaning.TrimStringFields(record), nil
				}))
		}
		if len(runRequire) > 0 {
			job.Validator = cleaning.NewRecordValidator(0, runRequire)
		}
		if runGroupBy != "" {
			job.Aggregate = groupByCount(runGroupBy)
		}

		result, err := job.SafeRun(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		green := color.New(color.FgGreen)
		bold.Fprintln(out, "job complete")
		for _, stage := range []etl.Stage{etl.StageExtract, etl.StageClean, etl.StageDerive, etl.StageValidate, etl.StageAggregate, etl.StageLoad} {
			if count, ok := result.Counts[stage]; ok {
				green.Fprintf(out, "%8d", count)
				fmt.Fprintf(out, "  %s\n", stage)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runIn, "in", "", "Input file (csv, jsonl, parquet)")
	runCmd.Flags().StringVar(&runOut, "out", "", "Output file (csv, jsonl, parquet)")
	runCmd.Flags().StringSliceVar(&runNotNull, "not-null", nil, "Drop records where these fields are null")
	runCmd.Flags().StringSliceVar(&runRequire, "require", nil, "Fail the job when these fields are missing")
	runCmd.Flags().BoolVar(&runTrim, "trim", false, "Trim whitespace from string fields")
	runCmd.Flags().StringVar(&runGroupBy, "group-by", "", "Aggregate output to per-group record counts")
}

func groupByCount(field string) etl.AggregateFunc {
	return func(ctx context.Context, records []dataprimer.Record) ([]dataprimer.Record, error) {
		return aggregate.NewGroupBy(field).Count("count").Process(ctx, records)
	}
}
