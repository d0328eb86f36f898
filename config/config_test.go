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

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsGetAndValidate(t *testing.T) {
	settings := Settings{"db_host": "localhost", "db_port": "5432", "empty": ""}

	assert.Equal(t, "localhost", settings.Get("db_host", "fallback"))
	assert.Equal(t, "fallback", settings.Get("missing", "fallback"))
	assert.Equal(t, "fallback", settings.Get("empty", "fallback"))

	require.NoError(t, settings.Validate("db_host", "db_port"))

	err := settings.Validate("db_host", "db_user", "db_pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_user")
	assert.Contains(t, err.Error(), "db_pass")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DP_TEST_DB_HOST", "envhost")
	t.Setenv("DP_TEST_BATCH", "100")
	t.Setenv("OTHER_KEY", "ignored")

	settings := FromEnv("DP_TEST_")
	assert.Equal(t, "envhost", settings["db_host"])
	assert.Equal(t, "100", settings["batch"])
	assert.NotContains(t, settings, "other_key")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"db_host": "filehost", "batch_size": 500, "verbose": true, "note": null}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	settings, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "filehost", settings["db_host"])
	assert.Equal(t, "500", settings["batch_size"])
	assert.Equal(t, "true", settings["verbose"])
	assert.Equal(t, "", settings["note"])
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	_, err = LoadFile(path)
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"db_host": "filehost"}`), 0644))
	t.Setenv("DP_LOAD_DB_HOST", "envhost")

	settings, err := Load(path, "DP_LOAD_")
	require.NoError(t, err)
	assert.Equal(t, "envhost", settings["db_host"])
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	_, err = ParseLogLevel("loud")
	require.Error(t, err)
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf strings.Builder
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("visible")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "visible")
}

func TestSafeDivide(t *testing.T) {
	result, err := SafeDivide(10, 4)
	require.NoError(t, err)
	assert.Equal(t, 2.5, result)

	_, err = SafeDivide(1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}
