// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "PGTOOLS_CONFIG"

var (
	// Global is the configuration loaded by Load.
	Global  PgToolsConfig
	once    sync.Once
	loadErr error
)

// Load reads the configuration into Global once per process.
//
// The path is explicit when non-empty, else $PGTOOLS_CONFIG, else
// ~/.pgtools/pgtools.yaml. A missing file is created with DefaultConfig.
func Load(explicit string) error {
	once.Do(func() {
		var path string
		path, loadErr = ResolvePath(explicit)
		if loadErr != nil {
			return
		}
		var cfg *PgToolsConfig
		cfg, loadErr = LoadFrom(path)
		if loadErr == nil {
			Global = *cfg
		}
	})
	return loadErr
}

// ResolvePath applies the lookup order used by Load.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return ExpandHome(explicit), nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return ExpandHome(env), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".pgtools", "pgtools.yaml"), nil
}

// LoadFrom reads and validates the configuration at path, creating it with
// defaults first if it does not exist. Fields absent from the file keep
// their default values.
func LoadFrom(path string) (*PgToolsConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExpandHome expands a leading "~" to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
