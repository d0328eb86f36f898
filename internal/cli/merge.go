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

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge several CSV files into one",
	Long: `Concatenate the records of several CSV files into a single output
file. Column order follows the header of the first input.

Examples:
  dataprimer merge --out q1.csv jan.csv feb.csv mar.csv
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if !fileio.FileExists(path) {
				return fmt.Errorf("file not found: %s", path)
			}
		}

		merged, err := fileio.MergeCSVFiles(cmd.Context(), args, mergeOut)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen)
		green.Fprintf(cmd.OutOrStdout(), "merged %d records", merged)
		fmt.Fprintf(cmd.OutOrStdout(), " from %d files into %s\n", len(args), mergeOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeOut, "out", "merged.csv", "Output file path")
}
