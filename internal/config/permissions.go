// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// exposedBits are the group and other read bits.
const exposedBits fs.FileMode = 0o044

// WarnInsecurePermissions logs a warning when the config file at path can be
// read by group or others, since provider API keys may be stored inline.
// It reports whether the warning was logged and never fails startup.
func WarnInsecurePermissions(logger *slog.Logger, path string) bool {
	if path == "" {
		return false
	}
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("config permission check skipped", "path", path, "error", err)
		return false
	}
	if info.Mode().Perm()&exposedBits == 0 {
		return false
	}

	logger.Warn("config file has insecure permissions; API keys may be exposed to other users",
		"path", path,
		"mode", info.Mode().Perm().String(),
		"recommended", "0600",
	)
	return true
}
