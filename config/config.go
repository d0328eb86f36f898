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

// Package config covers configuration and error-safety exercises: reading
// settings from the environment and JSON files, validating required keys,
// switching structured-log levels at runtime, and the classic safe-division
// teaching example.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Settings is a flat key/value configuration map.
type Settings map[string]string

// Get returns the value for key, or fallback when the key is absent or empty.
func (s Settings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Validate checks that every required key is present and non-empty. All
// missing keys are reported at once.
func (s Settings) Validate(required ...string) error {
	var missing []string
	for _, key := range required {
		if v, ok := s[key]; !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FromEnv builds Settings from environment variables with the given prefix.
// "APP_DB_HOST=x" with prefix "APP_" yields key "db_host".
func FromEnv(prefix string) Settings {
	settings := make(Settings)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		if name != "" {
			settings[name] = value
		}
	}
	return settings
}

// LoadFile reads Settings from a JSON object file. Non-string values are
// rendered with their default formatting so numeric settings stay usable.
func LoadFile(filename string) (Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := make(Settings, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			settings[key] = v
		case nil:
			settings[key] = ""
		default:
			settings[key] = fmt.Sprintf("%v", v)
		}
	}
	return settings, nil
}

// Load merges a JSON config file with environment overrides. Environment
// values win over file values.
func Load(filename, envPrefix string) (Settings, error) {
	settings, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	for key, value := range FromEnv(envPrefix) {
		settings[key] = value
	}
	return settings, nil
}

// ParseLogLevel maps a level name to a slog.Level. Unknown names fall back to
// info with an error.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger builds a text slog.Logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	parsed, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parsed})
	return slog.New(handler), nil
}

// SafeDivide divides a by b, returning an error instead of panicking on a
// zero divisor.
func SafeDivide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return a / b, nil
}
