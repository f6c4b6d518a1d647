// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package ingest turns documents into stored, embedded clause fragments.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	"github.com/legalease-ai/legalease/internal/provider"
	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// Document is one ingestion request. ID is generated when empty; Title is
// read from the text when empty.
type Document struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Result reports what was stored for a document.
type Result struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	ClauseIDs  []int64 `json:"clause_ids"`
	Clauses    int     `json:"clauses"`
	Skipped    int     `json:"skipped"`
}

// Pipeline splits, encodes and stores documents. Ingest calls are
// serialized so the dedup set stays consistent with the store.
type Pipeline struct {
	mu       sync.Mutex
	splitter *clause.Splitter
	encoder  provider.Encoder
	store    store.VectorStore
	dedup    bool
	seeded   bool
	seen     map[string]struct{}
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDedup skips clauses whose content hash is already stored. Stores
// implementing store.MetadataLister seed the known hashes on first use, so
// dedup holds across restarts; otherwise it covers what this pipeline
// stored.
func WithDedup(on bool) Option {
	return func(p *Pipeline) { p.dedup = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func NewPipeline(splitter *clause.Splitter, enc provider.Encoder, vs store.VectorStore, opts ...Option) (*Pipeline, error) {
	if splitter == nil || enc == nil || vs == nil {
		return nil, lerr.New(lerr.CodeIngestDocumentInvalid, "pipeline requires a splitter, an encoder and a vector store")
	}
	p := &Pipeline{
		splitter: splitter,
		encoder:  enc,
		store:    vs,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// Ingest stores every clause of doc with its document and clause metadata.
// Either all new clauses are stored or none are.
func (p *Pipeline) Ingest(ctx context.Context, doc Document) (*Result, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, lerr.New(lerr.CodeIngestDocumentInvalid, "document text is empty", lerr.FieldDocumentID(doc.ID))
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Title == "" {
		doc.Title = analysis.ExtractMetadata(doc.Text).Title
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dedup && !p.seeded {
		if err := p.seedSeen(ctx); err != nil {
			return nil, err
		}
	}

	clauses := p.splitter.Split(doc.Text)
	res := &Result{DocumentID: doc.ID, Title: doc.Title, ClauseIDs: []int64{}, Clauses: len(clauses)}

	var (
		fragments []store.Fragment
		texts     []string
		hashes    []string
		batch     = make(map[string]struct{})
	)
	for i, c := range clauses {
		hash := contentHash(c.Text)
		if p.dedup {
			if _, dup := p.seen[hash]; dup {
				res.Skipped++
				continue
			}
			if _, dup := batch[hash]; dup {
				res.Skipped++
				continue
			}
			batch[hash] = struct{}{}
		}

		meta := map[string]any{
			store.MetaDocumentID:  doc.ID,
			store.MetaClauseIndex: i,
			store.MetaClauseKind:  string(c.Kind),
			store.MetaContentHash: hash,
		}
		if doc.Title != "" {
			meta[store.MetaDocumentTitle] = doc.Title
		}
		if c.Marker != "" {
			meta[store.MetaClauseMarker] = c.Marker
		}
		fragments = append(fragments, store.Fragment{Text: c.Text, Metadata: meta})
		texts = append(texts, c.Text)
		hashes = append(hashes, hash)
	}

	if len(fragments) == 0 {
		p.logger.Info("document ingested", "document_id", doc.ID, "clauses", res.Clauses, "stored", 0, "skipped", res.Skipped)
		return res, nil
	}

	embeddings, err := provider.EncodeAll(ctx, p.encoder, texts)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeIngestEncodeFailure, "encoding clauses", lerr.FieldDocumentID(doc.ID))
	}
	ids, err := p.store.AddDocuments(ctx, fragments, embeddings)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeIngestStoreFailure, "storing clauses", lerr.FieldDocumentID(doc.ID))
	}

	for _, h := range hashes {
		p.seen[h] = struct{}{}
	}
	res.ClauseIDs = ids

	p.logger.Info("document ingested",
		"document_id", doc.ID,
		"clauses", res.Clauses,
		"stored", len(ids),
		"skipped", res.Skipped,
		"encoder", p.encoder.Name(),
	)
	return res, nil
}

func (p *Pipeline) seedSeen(ctx context.Context) error {
	lister, ok := p.store.(store.MetadataLister)
	if !ok {
		p.seeded = true
		return nil
	}
	hashes, err := lister.MetadataValues(ctx, store.MetaContentHash)
	if err != nil {
		return lerr.Wrap(err, lerr.CodeIngestStoreFailure, "loading stored content hashes")
	}
	for _, h := range hashes {
		p.seen[h] = struct{}{}
	}
	p.seeded = true
	p.logger.Debug("dedup seeded from store", "hashes", len(hashes))
	return nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
