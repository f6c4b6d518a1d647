// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package memory implements store.VectorStore in process memory.
package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func init() {
	store.RegisterBackend("memory", func(cfg store.StorageConfig, _ string) (store.VectorStore, error) {
		return New(cfg.EmbeddingDim)
	})
}

// Compile-time interface checks.
var (
	_ store.VectorStore    = (*Store)(nil)
	_ store.MetadataLister = (*Store)(nil)
)

// Store keeps fragments, embeddings and norms in parallel slices guarded by
// one RWMutex. Ranking is delegated to a store.Index, brute force unless
// another index is supplied.
type Store struct {
	mu         sync.RWMutex
	dim        int
	fragments  []store.Fragment
	embeddings [][]float32
	norms      []float64
	index      store.Index
	nextID     int64
	closed     bool
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIndex replaces the brute-force ranking. The index must be empty.
func WithIndex(idx store.Index) Option {
	return func(s *Store) { s.index = idx }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store for embeddings of length dim.
func New(dim int, opts ...Option) (*Store, error) {
	if dim <= 0 {
		return nil, lerr.Errorf(lerr.CodeStoreVectorAddInvalid, "embedding dimension must be positive, got %d", dim)
	}
	s := &Store{dim: dim, nextID: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.index == nil {
		s.index = store.NewBruteForce()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

func (s *Store) AddDocuments(ctx context.Context, fragments []store.Fragment, embeddings [][]float32) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateAdd(s.dim, fragments, embeddings); err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return []int64{}, nil
	}

	// Copy outside the lock so callers can reuse their buffers.
	frags := make([]store.Fragment, len(fragments))
	vecs := make([][]float32, len(embeddings))
	norms := make([]float64, len(embeddings))
	for i := range fragments {
		frags[i] = fragments[i].Clone()
		vecs[i] = append([]float32(nil), embeddings[i]...)
		norms[i] = store.Norm(vecs[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, lerr.New(lerr.CodeStoreClosed, "vector store is closed")
	}

	ids := make([]int64, len(frags))
	for i := range frags {
		frags[i].ID = s.nextID
		ids[i] = s.nextID
		s.nextID++
	}
	s.fragments = append(s.fragments, frags...)
	s.embeddings = append(s.embeddings, vecs...)
	s.norms = append(s.norms, norms...)
	s.index.Add(vecs, norms)

	s.logger.Debug("fragments added", "count", len(ids), "first_id", ids[0], "size", len(s.fragments))
	return ids, nil
}

func (s *Store) SimilaritySearch(ctx context.Context, query []float32, k int) ([]store.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateQuery(s.dim, query, k); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, lerr.New(lerr.CodeStoreClosed, "vector store is closed")
	}

	n := len(s.fragments)
	if k > n {
		k = n
	}
	results := make([]store.RetrievalResult, 0, k)
	if k == 0 {
		return results, nil
	}

	for _, sc := range s.index.Query(query, store.Norm(query), k) {
		results = append(results, store.RetrievalResult{
			Fragment: s.fragments[sc.Pos].Clone(),
			Score:    sc.Score,
		})
	}
	return results, nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments), nil
}

func (s *Store) Dimension() int { return s.dim }

func (s *Store) MetadataValues(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, lerr.New(lerr.CodeStoreClosed, "vector store is closed")
	}

	values := []string{}
	for _, f := range s.fragments {
		if v, ok := f.Metadata[key].(string); ok {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return slices.Compact(values), nil
}

// Close releases the stored data. Further calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.fragments = nil
	s.embeddings = nil
	s.norms = nil
	return nil
}
