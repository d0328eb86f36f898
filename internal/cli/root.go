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
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "dataprimer",
	Short: "Inspect, convert, and pipeline record-oriented data files",
	Long: `DataPrimer works with record-oriented data files: CSV, line-delimited
JSON, and Parquet.

Examples:
	# Peek at the first records of a CSV file
	dataprimer head --rows 5 orders.csv

	# Count records across many files concurrently
	dataprimer count orders.csv events.jsonl

	# Convert CSV to line-delimited JSON
	dataprimer convert orders.csv orders.jsonl

	# Merge several CSV files into one
	dataprimer merge --out all.csv jan.csv feb.csv mar.csv

	# Run a clean/validate/load job
	dataprimer run --in orders.csv --out clean.parquet --not-null amount

Output:
	Commands write human-readable output to stdout. Use --log-level to control
	structured job logging on stderr.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level for job output (debug, info, warn, error)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
