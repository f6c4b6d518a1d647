// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package server

import (
	"context"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	"github.com/legalease-ai/legalease/internal/ingest"
	"github.com/legalease-ai/legalease/internal/rag"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/legalease-ai/legalease/pkg/health"
)

// QueryService answers questions; *rag.Chain implements it.
type QueryService interface {
	RunK(ctx context.Context, query string, k int) (*rag.Response, error)
}

// IngestService stores documents; *ingest.Pipeline implements it.
type IngestService interface {
	Ingest(ctx context.Context, doc ingest.Document) (*ingest.Result, error)
}

// AnalysisService produces clause/risk/entity reports; *analysis.Analyzer
// implements it.
type AnalysisService interface {
	Analyze(ctx context.Context, text string) (*analysis.Report, error)
}

// SplitService cuts text into clauses; *clause.Splitter implements it.
type SplitService interface {
	Split(text string) []clause.Clause
}

// StoreService reports the vector store size.
type StoreService interface {
	Len(ctx context.Context) (int, error)
}

// ProviderService reports generator health; *provider.Registry implements it.
type ProviderService interface {
	Health() []health.Metrics
}

// Deps lists the collaborators the routes need. Providers is optional.
type Deps struct {
	Query     QueryService
	Ingest    IngestService
	Analysis  AnalysisService
	Split     SplitService
	Store     StoreService
	Providers ProviderService
	Encoder   string
	Generator string
}

// Services holds dependencies injected into route handlers.
type Services struct {
	deps Deps
}

// NewServices validates deps. Every service except Providers is required.
func NewServices(deps Deps) (*Services, error) {
	switch {
	case deps.Query == nil:
		return nil, lerr.New(lerr.CodeServerConfigInvalid, "query service is required")
	case deps.Ingest == nil:
		return nil, lerr.New(lerr.CodeServerConfigInvalid, "ingest service is required")
	case deps.Analysis == nil:
		return nil, lerr.New(lerr.CodeServerConfigInvalid, "analysis service is required")
	case deps.Split == nil:
		return nil, lerr.New(lerr.CodeServerConfigInvalid, "split service is required")
	case deps.Store == nil:
		return nil, lerr.New(lerr.CodeServerConfigInvalid, "store service is required")
	}
	return &Services{deps: deps}, nil
}
