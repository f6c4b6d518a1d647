// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

//go:build windows

package config

import "log/slog"

// WarnInsecurePermissions is a no-op on Windows, where file access is
// governed by ACLs rather than mode bits.
func WarnInsecurePermissions(logger *slog.Logger, path string) bool {
	if path != "" && logger != nil {
		logger.Debug("config permission check not available on windows", "path", path)
	}
	return false
}
