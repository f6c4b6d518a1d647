// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/legalease-ai/legalease/internal/config"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// newLogger writes text to w, or JSON lines to cfg.File when it is set.
// verbose forces debug level.
func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, lerr.Errorf(lerr.CodeCLISetupFailure, "parsing log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(w, opts)), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, lerr.Errorf(lerr.CodeCLISetupFailure, "creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, lerr.Errorf(lerr.CodeCLISetupFailure, "opening log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), func() { _ = f.Close() }, nil
}
