// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package local

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/legalease-ai/legalease/internal/provider"
	"github.com/legalease-ai/legalease/internal/rag"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

// DefaultMaxSentences bounds the length of an extractive answer.
const DefaultMaxSentences = 3

// NoAnswer is returned when the prompt carries no context fragments.
const NoAnswer = "The indexed documents do not contain information that answers this question."

// ExtractiveGenerator answers from the prompt's own context: it picks the
// context sentences that share the most content words with the question
// and cites the fragment each came from.
type ExtractiveGenerator struct {
	maxSentences int
}

var _ provider.Generator = (*ExtractiveGenerator)(nil)

func NewExtractiveGenerator(maxSentences int) *ExtractiveGenerator {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &ExtractiveGenerator{maxSentences: maxSentences}
}

func (g *ExtractiveGenerator) Name() string { return "local/extractive" }

type candidate struct {
	rank  int
	order int
	text  string
	score float64
}

func (g *ExtractiveGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", lerr.Wrap(err, lerr.CodeGeneratorFailure, "local: generate cancelled", lerr.FieldProvider(g.Name()))
	}
	if strings.TrimSpace(prompt) == "" {
		return "", lerr.New(lerr.CodeGeneratorInvalidInput, "prompt is empty", lerr.FieldProvider(g.Name()))
	}

	parsed, err := rag.ParsePrompt(prompt)
	if err != nil {
		// Not wrapped: the parse error's own code would take precedence.
		return "", lerr.New(lerr.CodeGeneratorInvalidInput, "local: prompt is not in retrieval layout: "+err.Error(), lerr.FieldProvider(g.Name()))
	}
	if len(parsed.Fragments) == 0 {
		return NoAnswer, nil
	}

	query := make(map[string]struct{})
	for _, tok := range terms(parsed.Question) {
		query[tok] = struct{}{}
	}

	var cands []candidate
	for _, frag := range parsed.Fragments {
		for _, sent := range sentences(frag.Text) {
			words := terms(sent)
			hits := 0
			for _, w := range words {
				if _, ok := query[w]; ok {
					hits++
				}
			}
			score := 0.0
			if len(words) > 0 {
				// Normalize by sentence length so long sentences do not dominate.
				score = float64(hits) / math.Sqrt(float64(len(words)))
			}
			cands = append(cands, candidate{rank: frag.Rank, order: len(cands), text: sent, score: score})
		}
	}
	if len(cands) == 0 {
		return NoAnswer, nil
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	if cands[0].score == 0 {
		// Stable sort keeps the first sentence of the top fragment in front.
		first := cands[0]
		return fmt.Sprintf("No retrieved clause addresses the question directly. The closest match is: %s [%d]", first.text, first.rank), nil
	}

	var picked []candidate
	for _, c := range cands {
		if c.score == 0 || len(picked) == g.maxSentences {
			break
		}
		picked = append(picked, c)
	}
	// Present in document order: by fragment rank, then position.
	sort.Slice(picked, func(i, j int) bool { return picked[i].order < picked[j].order })

	parts := make([]string, len(picked))
	for i, c := range picked {
		parts[i] = fmt.Sprintf("%s [%d]", c.text, c.rank)
	}
	return strings.Join(parts, " "), nil
}
