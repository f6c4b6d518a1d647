// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

import (
	"container/heap"
	"sort"
)

// Scored pairs a stored position (insertion order, zero-based) with its
// similarity to a query.
type Scored struct {
	Pos   int
	Score float64
}

// Better reports whether s outranks o: higher score first, then the
// earlier-inserted position.
func (s Scored) Better(o Scored) bool {
	if s.Score != o.Score {
		return s.Score > o.Score
	}
	return s.Pos < o.Pos
}

// Index ranks stored embeddings against a query. The owning store calls Add
// under its write lock and Query under its read lock, so Add never runs
// concurrently with anything; Query may run concurrently with itself.
type Index interface {
	// Add appends vectors, which continue the position sequence.
	Add(vectors [][]float32, norms []float64)
	// Query returns the best min(k, Len()) positions, best first.
	Query(query []float32, norm float64, k int) []Scored
	Len() int
}

// BruteForce scores every stored vector. It is exact and O(n·d) per query.
type BruteForce struct {
	vectors [][]float32
	norms   []float64
}

var _ Index = (*BruteForce)(nil)

func NewBruteForce() *BruteForce { return &BruteForce{} }

func (b *BruteForce) Add(vectors [][]float32, norms []float64) {
	b.vectors = append(b.vectors, vectors...)
	b.norms = append(b.norms, norms...)
}

func (b *BruteForce) Query(query []float32, norm float64, k int) []Scored {
	top := NewTopK(k)
	for i, v := range b.vectors {
		top.Push(Scored{Pos: i, Score: CosineWithNorms(query, v, norm, b.norms[i])})
	}
	return top.Sorted()
}

func (b *BruteForce) Len() int { return len(b.vectors) }

// TopK retains the k best Scored values pushed into it.
type TopK struct {
	k    int
	heap worstFirst
}

func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, heap: make(worstFirst, 0, min(k, 1024))}
}

// Push offers s; it is kept if fewer than k values are held or it beats
// the current worst.
func (t *TopK) Push(s Scored) {
	if t.k == 0 {
		return
	}
	if len(t.heap) < t.k {
		heap.Push(&t.heap, s)
		return
	}
	if s.Better(t.heap[0]) {
		t.heap[0] = s
		heap.Fix(&t.heap, 0)
	}
}

func (t *TopK) Full() bool { return t.k > 0 && len(t.heap) == t.k }

// Worst returns the lowest-ranked retained value. Only valid when Len() > 0.
func (t *TopK) Worst() Scored { return t.heap[0] }

func (t *TopK) Len() int { return len(t.heap) }

// Sorted returns the retained values best first.
func (t *TopK) Sorted() []Scored {
	out := make([]Scored, len(t.heap))
	copy(out, t.heap)
	sort.Slice(out, func(i, j int) bool { return out[i].Better(out[j]) })
	return out
}

// worstFirst is a heap whose root is the lowest-ranked entry.
type worstFirst []Scored

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return h[j].Better(h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Scored)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
