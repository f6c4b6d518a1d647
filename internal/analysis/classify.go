// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package analysis

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// keywordRule lists lowercase phrases that indicate one clause type. Order
// matters: earlier rules win ties.
type keywordRule struct {
	typ      ClauseType
	keywords []string
}

var defaultKeywordRules = []keywordRule{
	{TypePaymentTerms, []string{"payment", "pay ", "invoice", "fees", "price", "compensation", "due within"}},
	{TypeTermination, []string{"terminat", "expir", "cancel", "notice period"}},
	{TypeConfidentiality, []string{"confidential", "non-disclosure", "proprietary information", "disclose"}},
	{TypeLiability, []string{"liabilit", "liable", "damages", "limitation of"}},
	{TypeIndemnification, []string{"indemnif", "hold harmless", "defend"}},
	{TypeGoverningLaw, []string{"governing law", "governed by", "laws of", "jurisdiction"}},
	{TypeDisputeResolution, []string{"arbitrat", "dispute", "mediation", "court"}},
	{TypeIntellectualProperty, []string{"intellectual property", "copyright", "patent", "trademark", "license"}},
}

// KeywordClassifier types clauses by counting keyword occurrences per type.
// The type with the most hits wins. Confidence is the winner's share of all
// hits damped by 1-2^-hits, so one stray keyword yields 0.5 at most.
type KeywordClassifier struct {
	rules []keywordRule
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: defaultKeywordRules}
}

func (c *KeywordClassifier) Classify(ctx context.Context, text string) (ClauseType, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	lower := foldText(text)

	best, bestHits, total := TypeOther, 0, 0
	for _, rule := range c.rules {
		hits := 0
		for _, kw := range rule.keywords {
			hits += strings.Count(lower, kw)
		}
		total += hits
		if hits > bestHits {
			best, bestHits = rule.typ, hits
		}
	}
	if bestHits == 0 {
		return TypeOther, 0.5, nil
	}

	damp := 1.0
	for i := 0; i < bestHits; i++ {
		damp /= 2
	}
	return best, float64(bestHits) / float64(total) * (1 - damp), nil
}

// foldText normalizes compatibility characters (ligatures, full-width
// letters, non-breaking spaces) and lowercases.
func foldText(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
