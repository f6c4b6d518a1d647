// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend      string // "memory", "vptree" or "sqlite"; empty means "memory".
	EmbeddingDim int    // 0 uses DefaultEmbeddingDim.
	Path         string // sqlite file; relative paths resolve against the data dir.
}

// DefaultEmbeddingDim matches the 768-wide sentence encoders the analyzer
// was first built around.
const DefaultEmbeddingDim = 768
