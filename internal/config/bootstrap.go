// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultConfigYAML is the commented starter config: memory store, local
// hash encoder and the extractive generator.
//
//go:embed legalease.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/legalease/legalease.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", lerr.Errorf(lerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "legalease", "legalease.yaml"), nil
}

// WriteDefault creates path with DefaultConfigYAML. It reports false
// without touching the file when path already exists.
func WriteDefault(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, lerr.Wrap(err, lerr.CodeConfigWriteFailure, "creating config directory")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, lerr.Wrap(err, lerr.CodeConfigWriteFailure, "creating config file")
	}
	if _, err := f.Write(DefaultConfigYAML); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return false, lerr.Wrap(err, lerr.CodeConfigWriteFailure, "writing default config")
	}
	if err := f.Close(); err != nil {
		return false, lerr.Wrap(err, lerr.CodeConfigWriteFailure, "closing config file")
	}
	return true, nil
}

// BootstrapConfig ensures the user config exists at DefaultConfigPath and
// returns its path. Failures are logged at debug level and yield "", which
// callers treat as "defaults and environment only".
func BootstrapConfig(logger *slog.Logger) string {
	path, err := DefaultConfigPath()
	if err != nil {
		logger.Debug("config bootstrap skipped", "error", err)
		return ""
	}
	created, err := WriteDefault(path)
	if err != nil {
		logger.Debug("config bootstrap skipped", "path", path, "error", err)
		return ""
	}
	if created {
		logger.Info("wrote starter config", "path", path)
	}
	return path
}
