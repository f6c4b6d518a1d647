// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalease-ai/legalease/internal/store"
	"github.com/legalease-ai/legalease/internal/store/memory"
	"github.com/stretchr/testify/require"
)

// keywordEncoder maps each text to a 3-dim vector counting the words
// "pay", "terminate" and "confidential".
type keywordEncoder struct {
	calls int
	err   error
	dim   int
}

func (e *keywordEncoder) Name() string { return "keyword" }

func (e *keywordEncoder) Dimension() int {
	if e.dim > 0 {
		return e.dim
	}
	return 3
}

func (e *keywordEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	lower := strings.ToLower(text)
	v := make([]float32, e.Dimension())
	for i, w := range []string{"pay", "terminat", "confidential"} {
		if i < len(v) {
			v[i] = float32(strings.Count(lower, w))
		}
	}
	return v, nil
}

type fakeGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// failingStore fails every search with err.
type failingStore struct {
	store.VectorStore
	err error
}

func (s failingStore) SimilaritySearch(context.Context, []float32, int) ([]store.RetrievalResult, error) {
	return nil, s.err
}

func seededStore(t *testing.T) store.VectorStore {
	t.Helper()
	s, err := memory.New(3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	enc := &keywordEncoder{}
	texts := []string{
		"The Buyer shall pay all invoices within 30 days.",
		"Either party may terminate this Agreement on 60 days notice.",
		"Each party shall keep Confidential Information confidential.",
	}
	frags := make([]store.Fragment, len(texts))
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		frags[i] = store.Fragment{Text: text, Metadata: map[string]any{store.MetaClauseIndex: i}}
		vecs[i], err = enc.Encode(context.Background(), text)
		require.NoError(t, err)
	}
	_, err = s.AddDocuments(context.Background(), frags, vecs)
	require.NoError(t, err)
	return s
}

var errDatabase = errors.New("disk I/O error")

func emptyStore(t *testing.T) store.VectorStore {
	t.Helper()
	s, err := memory.New(3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
