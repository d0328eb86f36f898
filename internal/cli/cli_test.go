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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprimer/fileio"
)

func init() {
	color.NoColor = true
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeSample(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHeadCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "orders.csv", "name,amount\nalice,120\nbob,75\ncarol,30\n")

	output, err := runCLI(t, "head", "--rows", "2", path)
	require.NoError(t, err)
	assert.Contains(t, output, "record 1")
	assert.Contains(t, output, "name: alice")
	assert.Contains(t, output, "amount: 75")
	assert.NotContains(t, output, "carol")
}

func TestHeadCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "head", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestCountCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeSample(t, dir, "a.csv", "id\n1\n2\n")
	b := writeSample(t, dir, "b.jsonl", "{\"id\":1}\n")

	output, err := runCLI(t, "count", a, b)
	require.NoError(t, err)
	assert.Contains(t, output, a)
	assert.Contains(t, output, b)
	assert.Contains(t, output, "total")
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "orders.csv", "name,amount\nalice,120\n")
	out := filepath.Join(dir, "orders.jsonl")

	output, err := runCLI(t, "convert", in, out)
	require.NoError(t, err)
	assert.Contains(t, output, "converted 1 records")

	records, err := fileio.ReadJSONLines(context.Background(), out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0]["name"])
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeSample(t, dir, "a.csv", "id\n1\n")
	b := writeSample(t, dir, "b.csv", "id\n2\n3\n")
	out := filepath.Join(dir, "merged.csv")

	output, err := runCLI(t, "merge", "--out", out, a, b)
	require.NoError(t, err)
	assert.Contains(t, output, "merged 3 records")

	count, err := fileio.CountCSVRecords(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "raw.csv", "name,amount\nalice,120\nbob,\ncarol,30\n")
	out := filepath.Join(dir, "clean.csv")

	output, err := runCLI(t, "run", "--in", in, "--out", out, "--not-null", "amount")
	require.NoError(t, err)
	assert.Contains(t, output, "job complete")
	assert.Contains(t, output, "extract")
	assert.Contains(t, output, "load")

	count, err := fileio.CountCSVRecords(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestVersionCommand(t *testing.T) {
	SetBuildInfo("1.2.3", "abc", "today")
	output, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "dataprimer 1.2.3")
}
