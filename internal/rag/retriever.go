// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package rag answers questions over stored clause fragments: a Retriever
// finds the fragments nearest to a query and a Chain turns them into a
// grounded prompt for a Generator.
package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legalease-ai/legalease/internal/provider"
	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultK is the number of fragments retrieved when the caller passes 0.
const DefaultK = 5

// Retriever encodes a query and searches the vector store with it.
type Retriever struct {
	encoder provider.Encoder
	store   store.VectorStore
	logger  *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

func WithRetrieverLogger(l *slog.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

func NewRetriever(enc provider.Encoder, vs store.VectorStore, opts ...RetrieverOption) (*Retriever, error) {
	if enc == nil || vs == nil {
		return nil, lerr.New(lerr.CodeRAGSetupInvalid, "retriever needs an encoder and a vector store")
	}

	r := &Retriever{encoder: enc, store: vs}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Retrieve returns up to k fragments ranked by similarity to query. k == 0
// selects DefaultK. The query is encoded once per call.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]store.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, lerr.New(lerr.CodeRAGRetrieveInvalid, "query is empty")
	}
	if k < 0 {
		return nil, lerr.Errorf(lerr.CodeRAGRetrieveInvalid, "k must not be negative, got %d", k)
	}
	if k == 0 {
		k = DefaultK
	}

	vec, err := r.encoder.Encode(ctx, query)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeRAGRetrieveEncodingFailure, "encoding query", lerr.FieldProvider(r.encoder.Name()))
	}

	results, err := r.store.SimilaritySearch(ctx, vec, k)
	if err != nil {
		if lerr.IsDimensionMismatch(err) {
			return nil, err
		}
		return nil, lerr.Wrap(err, lerr.CodeRAGRetrieveFailure, "searching vector store")
	}

	r.logger.Debug("retrieved fragments", "k", k, "count", len(results))
	return results, nil
}
