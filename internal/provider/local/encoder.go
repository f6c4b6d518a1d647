// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package local provides offline capability backends: a feature-hashing
// encoder and an extractive generator. Both are deterministic.
package local

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/legalease-ai/legalease/internal/provider"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultDimension matches the default store embedding dimension.
const DefaultDimension = 768

// HashEncoder embeds text by hashing content words into signed buckets
// and L2-normalizing. Texts sharing vocabulary get high cosine similarity.
// Text made only of stopwords or punctuation has nothing to embed and is
// rejected as invalid input.
type HashEncoder struct {
	dim int
}

var _ provider.BatchEncoder = (*HashEncoder)(nil)

func NewHashEncoder(dim int) (*HashEncoder, error) {
	if dim <= 0 {
		return nil, lerr.Errorf(lerr.CodeProviderRequestInvalid, "local: encoder dimension must be positive, got %d", dim)
	}
	return &HashEncoder{dim: dim}, nil
}

func (e *HashEncoder) Name() string   { return "local/hash" }
func (e *HashEncoder) Dimension() int { return e.dim }

func (e *HashEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, lerr.Wrap(err, lerr.CodeEncoderFailure, "local: encode cancelled", lerr.FieldProvider(e.Name()))
	}
	if err := provider.ValidateText(e.Name(), text); err != nil {
		return nil, err
	}

	toks := terms(text)
	if len(toks) == 0 {
		return nil, lerr.New(lerr.CodeEncoderInvalidInput, "local: text has no content terms", lerr.FieldProvider(e.Name()))
	}
	counts := make(map[string]int, len(toks))
	for _, tok := range toks {
		counts[tok]++
	}

	acc := make([]float64, e.dim)
	for tok, n := range counts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dim))
		sign := 1.0
		if sum>>63 == 1 {
			sign = -1.0
		}
		// Sublinear term frequency.
		acc[bucket] += sign * (1 + math.Log(float64(n)))
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dim)
	if norm == 0 {
		return out, nil
	}
	for i, x := range acc {
		out[i] = float32(x / norm)
	}
	return out, nil
}

func (e *HashEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Encode(ctx, text)
		if err != nil {
			return nil, lerr.With(err, lerr.Field("index", i))
		}
		out[i] = v
	}
	return out, nil
}
