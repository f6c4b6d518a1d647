// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

import (
	"sort"
	"sync"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// Factory opens a VectorStore for cfg. dataDir is the application data
// directory; cfg.EmbeddingDim is already resolved to a positive value.
type Factory func(cfg StorageConfig, dataDir string) (VectorStore, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveBackend returns the effective backend name, defaulting to "memory".
func resolveBackend(cfg StorageConfig) string {
	if cfg.Backend == "" {
		return "memory"
	}
	return cfg.Backend
}

// NewVectorStore opens the configured backend.
func NewVectorStore(cfg StorageConfig, dataDir string) (VectorStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, lerr.Errorf(lerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	cfg.Backend = backend
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = DefaultEmbeddingDim
	}

	return factory(cfg, dataDir)
}
