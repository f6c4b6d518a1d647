// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package health

import "time"

// Metrics is a point-in-time snapshot of one capability backend
// (encoder or generator), safe to serialize to JSON.
type Metrics struct {
	Provider      string     `json:"provider"`
	Available     bool       `json:"available"`
	FailureCount  int64      `json:"failure_count"`
	SuccessCount  int64      `json:"success_count"`
	LastError     string     `json:"last_error,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}
