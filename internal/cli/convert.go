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
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dataprimer"
	"dataprimer/fileio"
	"dataprimer/readers"
	"dataprimer/target"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert a data file between formats",
	Long: `Convert between CSV, line-delimited JSON, and Parquet. Input and
output formats are detected from file extensions.

Examples:
  dataprimer convert orders.csv orders.jsonl
  dataprimer convert orders.csv orders.parquet
  dataprimer convert events.jsonl events.csv
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]
		if !fileio.FileExists(input) {
			return fmt.Errorf("file not found: %s", input)
		}

		source, err := openSource(input)
		if err != nil {
			return err
		}
		defer source.Close()

		format, err := target.ParseFormat(string(fileio.DetectFileType(output)))
		if err != nil {
			return fmt.Errorf("cannot infer output format from %s: %w", output, err)
		}
		sink, err := target.FileLocation{Path: output}.NewSink(format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var converted int64
		for {
			record, err := source.Read(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				sink.Close()
				return err
			}
			if err := sink.Write(ctx, record); err != nil {
				sink.Close()
				return err
			}
			converted++
		}
		if err := sink.Close(); err != nil {
			return err
		}

		green := color.New(color.FgGreen)
		green.Fprintf(cmd.OutOrStdout(), "converted %d records", converted)
		fmt.Fprintf(cmd.OutOrStdout(), " %s -> %s\n", input, output)
		return nil
	},
}

// openSource builds a streaming DataSource for a local file based on its
// extension.
func openSource(path string) (dataprimer.DataSource, error) {
	switch fileio.DetectFileType(path) {
	case fileio.FileTypeCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return readers.NewCSVReader(f)
	case fileio.FileTypeJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return readers.NewJSONReader(f), nil
	case fileio.FileTypeParquet:
		return readers.NewParquetReader(path)
	case fileio.FileTypeGzip:
		rc, err := readers.OpenGzip(path)
		if err != nil {
			return nil, err
		}
		return readers.NewJSONReader(rc), nil
	default:
		return nil, fmt.Errorf("unsupported input file type: %s", path)
	}
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
