// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

import "context"

// VectorStore is an append-only collection of (Fragment, embedding) pairs
// with k-nearest-neighbor search by cosine similarity.
//
// Implementations are safe for concurrent use. Appends are serialized and
// become visible to readers as a whole; a search never observes a fragment
// without its embedding.
type VectorStore interface {
	// AddDocuments appends fragments and their embeddings in input order and
	// returns the ids assigned to them. Input is validated in full before
	// anything is written; on error the store is unchanged. Fragment IDs
	// supplied by the caller are ignored.
	AddDocuments(ctx context.Context, fragments []Fragment, embeddings [][]float32) ([]int64, error)

	// SimilaritySearch returns at most k results by descending score. Equal
	// scores keep insertion order. k larger than the store returns everything.
	SimilaritySearch(ctx context.Context, query []float32, k int) ([]RetrievalResult, error)

	Len(ctx context.Context) (int, error)
	Dimension() int
	Close() error
}

// MetadataLister is implemented by stores that can enumerate the distinct
// string values of one metadata key across every stored fragment. Values
// come back sorted.
type MetadataLister interface {
	MetadataValues(ctx context.Context, key string) ([]string, error)
}
