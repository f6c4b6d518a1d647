// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalease-ai/legalease/internal/provider"
	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/legalease-ai/legalease/pkg/types"
)

// Response is the outcome of one Chain.Run. Context is exactly the slice
// that was formatted into Prompt.
type Response struct {
	Response string                  `json:"response"`
	Context  []store.RetrievalResult `json:"context"`
	Prompt   string                  `json:"prompt,omitempty"`
}

// Chain runs retrieve, format and generate for one query.
type Chain struct {
	retriever *Retriever
	generator provider.Generator
	k         int
	template  PromptTemplate
	logger    *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithK sets the number of fragments retrieved per query. Zero keeps
// DefaultK.
func WithK(k int) ChainOption {
	return func(c *Chain) { c.k = k }
}

func WithPromptTemplate(t PromptTemplate) ChainOption {
	return func(c *Chain) { c.template = t }
}

func WithLogger(l *slog.Logger) ChainOption {
	return func(c *Chain) { c.logger = l }
}

func NewChain(r *Retriever, g provider.Generator, opts ...ChainOption) (*Chain, error) {
	if r == nil || g == nil {
		return nil, lerr.New(lerr.CodeRAGSetupInvalid, "chain needs a retriever and a generator")
	}
	c := &Chain{retriever: r, generator: g, template: DefaultPromptTemplate}
	for _, opt := range opts {
		opt(c)
	}
	if c.k < 0 {
		return nil, lerr.Errorf(lerr.CodeRAGSetupInvalid, "k must not be negative, got %d", c.k)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Run answers query from retrieved context. A failure in any stage is
// returned as a *StageError and no partial Response is produced.
func (c *Chain) Run(ctx context.Context, query string) (*Response, error) {
	return c.RunK(ctx, query, c.k)
}

// RunK is Run with a per-call fragment count. k == 0 uses the chain's k,
// which in turn falls back to DefaultK.
func (c *Chain) RunK(ctx context.Context, query string, k int) (*Response, error) {
	if k == 0 {
		k = c.k
	}
	logger := c.logger.With("run_id", uuid.NewString())
	start := time.Now()

	docs, err := c.retriever.Retrieve(ctx, query, k)
	if err != nil {
		logger.Warn("retrieval failed", "error", err)
		return nil, stageError(types.StageRetrieval, lerr.CodeRAGRetrieveFailure, err)
	}

	prompt, err := c.FormatPrompt(query, docs)
	if err != nil {
		logger.Warn("prompt formatting failed", "error", err)
		return nil, stageError(types.StagePrompt, lerr.CodeRAGPromptFailure, err)
	}

	answer, err := c.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("generation failed", "generator", c.generator.Name(), "error", err)
		return nil, &StageError{Stage: types.StageGeneration, Code: lerr.CodeRAGGenerateFailure, Err: err}
	}

	logger.Info("query answered",
		"fragments", len(docs),
		"generator", c.generator.Name(),
		"duration", time.Since(start),
	)
	return &Response{Response: answer, Context: docs, Prompt: prompt}, nil
}

// FormatPrompt renders with the chain's template.
func (c *Chain) FormatPrompt(query string, docs []store.RetrievalResult) (string, error) {
	return c.template.Format(query, docs)
}

// Generate calls the generator once. Errors come back coded as generation
// failures.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", lerr.Wrap(err, lerr.CodeRAGGenerateFailure, "generating answer", lerr.FieldProvider(c.generator.Name()))
	}
	if strings.TrimSpace(out) == "" {
		return "", lerr.New(lerr.CodeRAGGenerateFailure, "generator returned an empty answer", lerr.FieldProvider(c.generator.Name()))
	}
	return out, nil
}
