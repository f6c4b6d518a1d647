// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package google

// ConvertMessages and BuildConfig expose request conversion for white-box testing.
var (
	ConvertMessages = convertMessages
	BuildConfig     = buildConfig
)
