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

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dataprimer/fileio"
)

var countCmd = &cobra.Command{
	Use:   "count [files...]",
	Short: "Count records across data files",
	Long: `Count data records in CSV and line-delimited JSON files. Files are
counted concurrently, one worker per file.

Examples:
  dataprimer count orders.csv
  dataprimer count jan.csv feb.csv events.jsonl
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := fileio.CountRecordsInFiles(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		green := color.New(color.FgGreen)

		var total int64
		for _, fc := range counts {
			green.Fprintf(out, "%8d", fc.Count)
			fmt.Fprintf(out, "  %s\n", fc.Path)
			total += fc.Count
		}
		if len(counts) > 1 {
			bold := color.New(color.Bold)
			bold.Fprintf(out, "%8d", total)
			fmt.Fprintln(out, "  total")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
