// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package vptree provides a vantage-point tree index for the in-memory
// vector store.
//
// Points are compared by angular distance acos(cos(a, b)), which is a metric
// on non-zero vectors, so triangle-inequality pruning discards only points
// that are strictly worse than the current k-th result. Pruning allows a
// slack of Slack radians for floating-point error. Results therefore match
// the brute-force ranking, except that fragments whose scores differ by
// less than about 1e-9 may come back in a different relative order.
// Zero-norm vectors have similarity 0 to everything and are kept out of
// the tree.
package vptree

import (
	"math"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"github.com/legalease-ai/legalease/internal/store"
	"github.com/legalease-ai/legalease/internal/store/memory"
)

// Slack is the pruning tolerance in radians.
const Slack = 1e-6

// leafSize is the bucket size below which nodes are scanned linearly.
const leafSize = 8

func init() {
	store.RegisterBackend("vptree", func(cfg store.StorageConfig, _ string) (store.VectorStore, error) {
		return memory.New(cfg.EmbeddingDim, memory.WithIndex(New()))
	})
}

var _ store.Index = (*Index)(nil)

// Index is a lazily rebuilt vantage-point tree. Add marks the tree stale;
// the next Query rebuilds it.
type Index struct {
	mu      sync.RWMutex
	vectors [][]float32
	norms   []float64
	zero    []int
	root    *node
	stale   bool
}

type node struct {
	vp      int
	mu      float64
	inside  *node
	outside *node
	bucket  []int
}

func New() *Index { return &Index{} }

func (x *Index) Add(vectors [][]float32, norms []float64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	base := len(x.vectors)
	x.vectors = append(x.vectors, vectors...)
	x.norms = append(x.norms, norms...)
	for i, n := range norms {
		if n == 0 {
			x.zero = append(x.zero, base+i)
		}
	}
	x.stale = true
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

func (x *Index) Query(query []float32, norm float64, k int) []store.Scored {
	x.ensureBuilt()

	x.mu.RLock()
	defer x.mu.RUnlock()

	top := store.NewTopK(k)
	if norm == 0 {
		// Every similarity is 0; insertion order decides.
		for i := 0; i < len(x.vectors) && i < k; i++ {
			top.Push(store.Scored{Pos: i})
		}
		return top.Sorted()
	}

	s := searcher{x: x, query: query, norm: norm, top: top}
	s.visit(x.root)
	for _, pos := range x.zero {
		top.Push(store.Scored{Pos: pos})
	}
	return top.Sorted()
}

func (x *Index) ensureBuilt() {
	x.mu.RLock()
	stale := x.stale
	x.mu.RUnlock()
	if !stale {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.stale {
		return
	}
	points := make([]int, 0, len(x.vectors)-len(x.zero))
	for i, n := range x.norms {
		if n != 0 {
			points = append(points, i)
		}
	}
	mags := make([]float32, len(x.vectors))
	for _, p := range points {
		mags[p] = search.Float32s(x.vectors[p]).Magnitude()
	}
	b := builder{x: x, mags: mags}
	x.root = b.build(points)
	x.stale = false
}

// builder partitions with viant/vec float32 distances; exactness is not
// needed for partitioning, only for the radii used in pruning.
type builder struct {
	x    *Index
	mags []float32
}

func (b *builder) build(points []int) *node {
	if len(points) == 0 {
		return nil
	}
	if len(points) <= leafSize {
		return &node{vp: -1, bucket: append([]int(nil), points...)}
	}

	vp := points[0]
	rest := points[1:]
	type pd struct {
		pos    int
		coarse float32
	}
	items := make([]pd, len(rest))
	v := search.Float32s(b.x.vectors[vp])
	for i, p := range rest {
		items[i] = pd{pos: p, coarse: v.CosineDistanceWithMagnitude(b.x.vectors[p], b.mags[vp], b.mags[p])}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].coarse < items[j].coarse })

	half := len(items) / 2
	inner := make([]int, 0, half)
	outer := make([]int, 0, len(items)-half)
	for i, it := range items {
		if i < half {
			inner = append(inner, it.pos)
		} else {
			outer = append(outer, it.pos)
		}
	}

	// The split radius is the exact angular distance to the farthest inner
	// point so that the pruning bounds hold regardless of coarse rounding.
	n := &node{vp: vp}
	for _, p := range inner {
		if d := b.x.angle(vp, p); d > n.mu {
			n.mu = d
		}
	}
	// Outer points closer than mu in exact terms would break the outer
	// bound; move them inside.
	kept := outer[:0]
	for _, p := range outer {
		if b.x.angle(vp, p) <= n.mu {
			inner = append(inner, p)
		} else {
			kept = append(kept, p)
		}
	}
	n.inside = b.build(inner)
	n.outside = b.build(kept)
	return n
}

func (x *Index) angle(a, b int) float64 {
	return math.Acos(store.CosineWithNorms(x.vectors[a], x.vectors[b], x.norms[a], x.norms[b]))
}

type searcher struct {
	x     *Index
	query []float32
	norm  float64
	top   *store.TopK
}

func (s *searcher) score(pos int) store.Scored {
	return store.Scored{Pos: pos, Score: store.CosineWithNorms(s.query, s.x.vectors[pos], s.norm, s.x.norms[pos])}
}

// tau is the angular distance of the current k-th result, or +Inf while
// fewer than k results are held.
func (s *searcher) tau() float64 {
	if !s.top.Full() {
		return math.Inf(1)
	}
	return math.Acos(s.top.Worst().Score)
}

func (s *searcher) visit(n *node) {
	if n == nil {
		return
	}
	if n.vp < 0 {
		for _, pos := range n.bucket {
			s.top.Push(s.score(pos))
		}
		return
	}

	sc := s.score(n.vp)
	s.top.Push(sc)
	d := math.Acos(sc.Score)

	// Points inside satisfy angle(vp, p) <= mu, so angle(q, p) >= d - mu.
	// Points outside satisfy angle(vp, p) > mu, so angle(q, p) > mu - d.
	first, second := n.inside, n.outside
	if d > n.mu {
		first, second = n.outside, n.inside
	}
	s.visitIf(first, n, d)
	s.visitIf(second, n, d)
}

func (s *searcher) visitIf(child, parent *node, d float64) {
	if child == nil {
		return
	}
	var lower float64
	if child == parent.inside {
		lower = d - parent.mu
	} else {
		lower = parent.mu - d
	}
	if lower > s.tau()+Slack {
		return
	}
	s.visit(child)
}
