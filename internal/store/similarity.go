// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

import "math"

// Dot returns the float64-accumulated dot product of a and b.
// The vectors must have equal length.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}

// CosineSimilarity returns (a·b)/(‖a‖‖b‖), or 0 when either vector has
// zero norm. The result is symmetric and clamped to [-1, 1].
func CosineSimilarity(a, b []float32) float64 {
	return CosineWithNorms(a, b, Norm(a), Norm(b))
}

// CosineWithNorms is CosineSimilarity with precomputed norms.
func CosineWithNorms(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}
