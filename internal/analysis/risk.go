// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// RiskLevel grades how unfavorable a clause may be.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Risk flags one clause. ClauseID is the 1-based position of the clause in
// Report.Clauses.
type Risk struct {
	ClauseID    int       `json:"clause_id" yaml:"clause_id"`
	Level       RiskLevel `json:"level" yaml:"level"`
	Description string    `json:"description" yaml:"description"`
	Confidence  float64   `json:"confidence" yaml:"confidence"`
}

var (
	highRiskTerms = []string{
		"unlimited liability",
		"sole discretion",
		"without notice",
		"irrevocable",
		"perpetual",
		"waive",
		"liquidated damages",
		"automatically renew",
		"automatic renewal",
	}
	mediumRiskTerms = []string{
		"penalty",
		"exclusive",
		"non-compete",
		"late fee",
		"interest",
		"may modify",
		"best efforts",
		"terminate for convenience",
	}
)

// baselineTypes are clause types that shift liability even when worded
// neutrally.
var baselineTypes = map[ClauseType]string{
	TypeLiability:       "Allocates liability between the parties",
	TypeIndemnification: "Creates an indemnification obligation",
}

// TermRiskScorer flags clauses containing trigger terms. Any high term makes
// the clause high risk; otherwise any medium term or a baseline clause type
// makes it medium. Clauses with no indicator are omitted.
type TermRiskScorer struct {
	high   []string
	medium []string
}

func NewTermRiskScorer() *TermRiskScorer {
	return &TermRiskScorer{high: highRiskTerms, medium: mediumRiskTerms}
}

func (s *TermRiskScorer) Score(ctx context.Context, clauses []ClassifiedClause) ([]Risk, error) {
	risks := make([]Risk, 0)
	for i, c := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lower := foldText(c.Text)

		if found := matchTerms(lower, s.high); len(found) > 0 {
			risks = append(risks, Risk{
				ClauseID:    i + 1,
				Level:       RiskHigh,
				Description: fmt.Sprintf("Contains high-risk wording: %s", strings.Join(found, ", ")),
				Confidence:  confidence(0.6, len(found), 0.95),
			})
			continue
		}
		if found := matchTerms(lower, s.medium); len(found) > 0 {
			risks = append(risks, Risk{
				ClauseID:    i + 1,
				Level:       RiskMedium,
				Description: fmt.Sprintf("Contains wording worth reviewing: %s", strings.Join(found, ", ")),
				Confidence:  confidence(0.5, len(found), 0.9),
			})
			continue
		}
		if desc, ok := baselineTypes[c.Type]; ok {
			risks = append(risks, Risk{
				ClauseID:    i + 1,
				Level:       RiskMedium,
				Description: desc,
				Confidence:  math.Min(c.Confidence, 0.5),
			})
		}
	}
	return risks, nil
}

func matchTerms(lower string, terms []string) []string {
	var found []string
	for _, t := range terms {
		if strings.Contains(lower, t) {
			found = append(found, t)
		}
	}
	return found
}

func confidence(base float64, hits int, ceiling float64) float64 {
	return math.Min(base+0.1*float64(hits), ceiling)
}
