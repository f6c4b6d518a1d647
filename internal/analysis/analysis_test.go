// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package analysis_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contract = `MASTER SERVICES AGREEMENT
This Agreement is made on January 5, 2026 between Acme Corp and Beta Holdings LLC.
1. The Client shall pay all invoices of $5,000 within 30 days. Late payments accrue interest at 1.5% per month.
2. Either party may terminate this Agreement without notice.
3. The Supplier shall indemnify and hold harmless the Client.
4. This Agreement is governed by the laws of Delaware.`

func newAnalyzer(t *testing.T, opts ...analysis.Option) *analysis.Analyzer {
	t.Helper()
	a, err := analysis.NewAnalyzer(clause.NewSplitter(), opts...)
	require.NoError(t, err)
	return a
}

func TestAnalyze_Contract(t *testing.T) {
	report, err := newAnalyzer(t).Analyze(context.Background(), contract)
	require.NoError(t, err)

	require.Len(t, report.Clauses, 5)
	types := make([]analysis.ClauseType, len(report.Clauses))
	for i, c := range report.Clauses {
		types[i] = c.Type
	}
	assert.Equal(t, []analysis.ClauseType{
		analysis.TypeOther,
		analysis.TypePaymentTerms,
		analysis.TypeTermination,
		analysis.TypeIndemnification,
		analysis.TypeGoverningLaw,
	}, types)
	assert.Equal(t, "1.", report.Clauses[1].Marker)
	assert.InDelta(t, 0.875, report.Clauses[1].Confidence, 1e-9)

	require.Len(t, report.Risks, 3)
	assert.Equal(t, 2, report.Risks[0].ClauseID)
	assert.Equal(t, analysis.RiskMedium, report.Risks[0].Level)
	assert.Contains(t, report.Risks[0].Description, "interest")
	assert.Equal(t, 3, report.Risks[1].ClauseID)
	assert.Equal(t, analysis.RiskHigh, report.Risks[1].Level)
	assert.Contains(t, report.Risks[1].Description, "without notice")
	assert.InDelta(t, 0.7, report.Risks[1].Confidence, 1e-9)
	assert.Equal(t, 4, report.Risks[2].ClauseID)
	assert.Equal(t, analysis.RiskMedium, report.Risks[2].Level)

	byType := map[analysis.EntityType][]string{}
	for _, e := range report.Entities {
		byType[e.Type] = append(byType[e.Type], e.Text)
		assert.Equal(t, e.Text, contract[e.Start:e.End])
	}
	assert.Equal(t, []string{"$5,000"}, byType[analysis.EntityMoney])
	assert.Equal(t, []string{"January 5, 2026"}, byType[analysis.EntityDate])
	assert.Equal(t, []string{"30 days"}, byType[analysis.EntityDuration])
	assert.Equal(t, []string{"1.5%"}, byType[analysis.EntityPercent])
	assert.Equal(t, []string{"Acme Corp", "Beta Holdings LLC"}, byType[analysis.EntityOrganization])
	assert.Equal(t, []string{"Client", "Supplier", "Client"}, byType[analysis.EntityParty])

	for i := 1; i < len(report.Entities); i++ {
		assert.LessOrEqual(t, report.Entities[i-1].Start, report.Entities[i].Start)
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	_, err := newAnalyzer(t).Analyze(context.Background(), " \n ")
	require.Error(t, err)
	assert.True(t, lerr.IsInvalidInput(err))
}

func TestAnalyze_NoFindingsHasEmptySlices(t *testing.T) {
	report, err := newAnalyzer(t).Analyze(context.Background(), "Nothing of note here.")
	require.NoError(t, err)
	require.Len(t, report.Clauses, 1)
	assert.Equal(t, analysis.TypeOther, report.Clauses[0].Type)
	assert.NotNil(t, report.Risks)
	assert.Empty(t, report.Risks)
	assert.NotNil(t, report.Entities)
	assert.Empty(t, report.Entities)
}

type brokenClassifier struct{}

func (brokenClassifier) Classify(context.Context, string) (analysis.ClauseType, float64, error) {
	return "", 0, errors.New("model unavailable")
}

func TestAnalyze_CollaboratorFailure(t *testing.T) {
	a := newAnalyzer(t, analysis.WithClassifier(brokenClassifier{}))
	_, err := a.Analyze(context.Background(), contract)
	require.Error(t, err)
	assert.Equal(t, lerr.CodeAnalysisFailure, lerr.CodeOf(err))
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestAnalyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAnalyzer(t).Analyze(ctx, contract)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAnalyzer_RequiresSplitter(t *testing.T) {
	_, err := analysis.NewAnalyzer(nil)
	assert.True(t, lerr.IsInvalidInput(err))
}

func TestKeywordClassifier(t *testing.T) {
	c := analysis.NewKeywordClassifier()
	tests := []struct {
		text string
		want analysis.ClauseType
	}{
		{"Each party shall keep all Confidential Information secret.", analysis.TypeConfidentiality},
		{"Any dispute shall be settled by binding arbitration.", analysis.TypeDisputeResolution},
		{"Licensor grants a license to the patent.", analysis.TypeIntellectualProperty},
		{"In no event shall either party be liable for indirect damages.", analysis.TypeLiability},
		{"The sun rises in the east.", analysis.TypeOther},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			got, conf, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Greater(t, conf, 0.0)
			assert.LessOrEqual(t, conf, 1.0)
		})
	}
}

func TestKeywordClassifier_NormalizesCompatibilityForms(t *testing.T) {
	// Full-width letters fold to ASCII before matching.
	got, _, err := analysis.NewKeywordClassifier().Classify(context.Background(), "ＴＥＲＭＩＮＡＴＩＯＮ for cause")
	require.NoError(t, err)
	assert.Equal(t, analysis.TypeTermination, got)
}

func TestTermRiskScorer_HighBeatsMedium(t *testing.T) {
	risks, err := analysis.NewTermRiskScorer().Score(context.Background(), []analysis.ClassifiedClause{
		{Text: "Vendor may modify prices at its sole discretion.", Type: analysis.TypePaymentTerms},
		{Text: "Payment is due monthly.", Type: analysis.TypePaymentTerms},
	})
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, 1, risks[0].ClauseID)
	assert.Equal(t, analysis.RiskHigh, risks[0].Level)
	assert.Equal(t, "Contains high-risk wording: sole discretion", risks[0].Description)
}

func TestRegexEntityExtractor_Overlaps(t *testing.T) {
	text := "Fee of 1,000 USD and 250 dollars, due 2026-03-01 or 03/01/2026, within 10 business days at 5 percent."
	got, err := analysis.NewRegexEntityExtractor().Extract(context.Background(), text)
	require.NoError(t, err)

	var pairs []string
	for _, e := range got {
		pairs = append(pairs, string(e.Type)+":"+e.Text)
	}
	assert.Equal(t, []string{
		"MONEY:1,000 USD",
		"MONEY:250 dollars",
		"DATE:2026-03-01",
		"DATE:03/01/2026",
		"DURATION:10 business days",
		"PERCENT:5 percent",
	}, pairs)
	assert.Equal(t, "USD", got[0].Metadata["currency"])
}

func TestRegexEntityExtractor_PartyRoles(t *testing.T) {
	got, err := analysis.NewRegexEntityExtractor().Extract(context.Background(), "Party A sells to the Buyer.")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Party A", got[0].Text)
	assert.Empty(t, got[0].Metadata)
	assert.Equal(t, "Buyer", got[1].Text)
	assert.Equal(t, "buyer", got[1].Metadata["role"])
	assert.Equal(t, strings.Index("Party A sells to the Buyer.", "Buyer"), got[1].Start)
}

func TestExtractMetadata(t *testing.T) {
	md := analysis.ExtractMetadata(contract)
	assert.Equal(t, "MASTER SERVICES AGREEMENT", md.Title)
	assert.Equal(t, "January 5, 2026", md.Date)
	assert.Equal(t, []string{"Acme Corp", "Beta Holdings LLC"}, md.Parties)
}

func TestExtractMetadata_HeadingIsNotTitle(t *testing.T) {
	md := analysis.ExtractMetadata("\n1. Party A pays Party B.\n2. Party A pays again.")
	assert.Empty(t, md.Title)
	assert.Empty(t, md.Date)
	assert.Equal(t, []string{"Party A", "Party B"}, md.Parties)
}
