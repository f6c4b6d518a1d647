// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package analysis types clauses, flags risky wording and extracts named
// entities from legal documents.
package analysis

import (
	"context"
	"log/slog"
	"strings"

	"github.com/legalease-ai/legalease/internal/clause"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// ClauseType is the subject a clause deals with.
type ClauseType string

const (
	TypePaymentTerms         ClauseType = "payment_terms"
	TypeTermination          ClauseType = "termination"
	TypeConfidentiality      ClauseType = "confidentiality"
	TypeLiability            ClauseType = "liability"
	TypeIndemnification      ClauseType = "indemnification"
	TypeGoverningLaw         ClauseType = "governing_law"
	TypeDisputeResolution    ClauseType = "dispute_resolution"
	TypeIntellectualProperty ClauseType = "intellectual_property"
	TypeOther                ClauseType = "other"
)

// ClassifiedClause is one clause of a Report.
type ClassifiedClause struct {
	Text       string     `json:"text" yaml:"text"`
	Type       ClauseType `json:"type" yaml:"type"`
	Confidence float64    `json:"confidence" yaml:"confidence"`
	Marker     string     `json:"marker,omitempty" yaml:"marker,omitempty"`
}

// Report is the full analysis of one document.
type Report struct {
	Clauses  []ClassifiedClause `json:"clauses" yaml:"clauses"`
	Risks    []Risk             `json:"risks" yaml:"risks"`
	Entities []Entity           `json:"entities" yaml:"entities"`
}

// Classifier assigns a ClauseType and a confidence in [0, 1] to clause text.
type Classifier interface {
	Classify(ctx context.Context, text string) (ClauseType, float64, error)
}

// RiskScorer inspects classified clauses and reports the risky ones.
type RiskScorer interface {
	Score(ctx context.Context, clauses []ClassifiedClause) ([]Risk, error)
}

// EntityExtractor finds named entities in document text.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// Analyzer runs the splitter and the three collaborators over a document.
type Analyzer struct {
	splitter   *clause.Splitter
	classifier Classifier
	scorer     RiskScorer
	extractor  EntityExtractor
	logger     *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

func WithClassifier(c Classifier) Option {
	return func(a *Analyzer) { a.classifier = c }
}

func WithRiskScorer(s RiskScorer) Option {
	return func(a *Analyzer) { a.scorer = s }
}

func WithEntityExtractor(e EntityExtractor) Option {
	return func(a *Analyzer) { a.extractor = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer returns an Analyzer using the keyword classifier, the term
// risk scorer and the regex entity extractor unless options replace them.
func NewAnalyzer(splitter *clause.Splitter, opts ...Option) (*Analyzer, error) {
	if splitter == nil {
		return nil, lerr.New(lerr.CodeAnalysisInputInvalid, "analyzer requires a clause splitter")
	}
	a := &Analyzer{splitter: splitter}
	for _, opt := range opts {
		opt(a)
	}
	if a.classifier == nil {
		a.classifier = NewKeywordClassifier()
	}
	if a.scorer == nil {
		a.scorer = NewTermRiskScorer()
	}
	if a.extractor == nil {
		a.extractor = NewRegexEntityExtractor()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// Analyze splits text into clauses, classifies each one, scores the risks
// and extracts entities from the whole text. Slices in the Report are never
// nil.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, lerr.New(lerr.CodeAnalysisInputInvalid, "document text is empty")
	}

	parts := a.splitter.Split(text)
	clauses := make([]ClassifiedClause, 0, len(parts))
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		typ, conf, err := a.classifier.Classify(ctx, p.Text)
		if err != nil {
			return nil, lerr.Wrap(err, lerr.CodeAnalysisFailure, "classifying clause")
		}
		clauses = append(clauses, ClassifiedClause{Text: p.Text, Type: typ, Confidence: conf, Marker: p.Marker})
	}

	risks, err := a.scorer.Score(ctx, clauses)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeAnalysisFailure, "scoring risks")
	}
	entities, err := a.extractor.Extract(ctx, text)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeAnalysisFailure, "extracting entities")
	}
	if risks == nil {
		risks = []Risk{}
	}
	if entities == nil {
		entities = []Entity{}
	}

	a.logger.Debug("document analyzed",
		"clauses", len(clauses),
		"risks", len(risks),
		"entities", len(entities),
	)
	return &Report{Clauses: clauses, Risks: risks, Entities: entities}, nil
}
