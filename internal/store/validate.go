// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

import (
	"math"
	"strings"

	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// ValidateAdd checks an AddDocuments call against a store of dimension dim.
// Backends call it before touching any state.
func ValidateAdd(dim int, fragments []Fragment, embeddings [][]float32) error {
	if len(fragments) != len(embeddings) {
		return lerr.New(lerr.CodeStoreVectorAddLengthMismatch,
			"fragments and embeddings differ in length",
			lerr.Field("fragments", len(fragments)),
			lerr.Field("embeddings", len(embeddings)),
		)
	}

	for i, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			return lerr.New(lerr.CodeStoreVectorAddInvalid, "fragment text is empty", lerr.Field("index", i))
		}
		for key, value := range f.Metadata {
			if !isScalar(value) {
				return lerr.New(lerr.CodeStoreVectorAddInvalid, "metadata values must be scalar",
					lerr.Field("index", i), lerr.Field("key", key))
			}
		}
	}

	for i, emb := range embeddings {
		if len(emb) != dim {
			fields := append(lerr.FieldDimensions(dim, len(emb)), lerr.Field("index", i))
			return lerr.New(lerr.CodeStoreVectorAddDimensionMismatch, "embedding dimension mismatch", fields...)
		}
		if !finite(emb) {
			return lerr.New(lerr.CodeStoreVectorAddInvalid, "embedding contains NaN or Inf", lerr.Field("index", i))
		}
	}
	return nil
}

// ValidateQuery checks a SimilaritySearch call against a store of dimension dim.
func ValidateQuery(dim int, query []float32, k int) error {
	if k <= 0 {
		return lerr.New(lerr.CodeStoreVectorSearchInvalid, "k must be positive", lerr.Field("k", k))
	}
	if len(query) != dim {
		return lerr.New(lerr.CodeStoreVectorSearchDimensionMismatch, "query dimension mismatch",
			lerr.FieldDimensions(dim, len(query))...)
	}
	if !finite(query) {
		return lerr.New(lerr.CodeStoreVectorSearchInvalid, "query contains NaN or Inf")
	}
	return nil
}

func finite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
