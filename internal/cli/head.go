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
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dataprimer"
	"dataprimer/fileio"
)

var headRows int

var headCmd = &cobra.Command{
	Use:   "head [file]",
	Short: "Print the first records of a data file",
	Long: `Print the first records of a CSV or line-delimited JSON file.

Examples:
  dataprimer head orders.csv
  dataprimer head --rows 3 events.jsonl
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !fileio.FileExists(path) {
			return fmt.Errorf("file not found: %s", path)
		}

		var records []dataprimer.Record
		var err error
		switch fileio.DetectFileType(path) {
		case fileio.FileTypeCSV:
			records, err = fileio.ReadCSVHead(cmd.Context(), path, headRows)
		case fileio.FileTypeJSON:
			records, err = fileio.ReadJSONLines(cmd.Context(), path)
			if len(records) > headRows {
				records = records[:headRows]
			}
		default:
			return fmt.Errorf("unsupported file type for head: %s", path)
		}
		if err != nil {
			return err
		}

		printRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

func printRecords(w io.Writer, records []dataprimer.Record) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	for i, record := range records {
		faint.Fprintf(w, "--- record %d ---\n", i+1)

		fields := make([]string, 0, len(record))
		for field := range record {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			bold.Fprintf(w, "%s: ", field)
			if record[field] == nil {
				faint.Fprintln(w, "<null>")
			} else {
				fmt.Fprintf(w, "%v\n", record[field])
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(headCmd)
	headCmd.Flags().IntVarP(&headRows, "rows", "n", 10, "Number of records to print")
}
