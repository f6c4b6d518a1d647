// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package sqlite

import (
	"os"
	"path/filepath"

	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultFile is the database file name used when StorageConfig.Path is empty.
const DefaultFile = "fragments.db"

func init() {
	store.RegisterBackend("sqlite", newVectorStore)
}

func newVectorStore(cfg store.StorageConfig, dataDir string) (store.VectorStore, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "creating data directory")
	}
	return NewVectorStore(path, cfg.EmbeddingDim)
}
