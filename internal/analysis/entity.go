// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package analysis

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// EntityType is the category of an extracted entity.
type EntityType string

const (
	EntityMoney        EntityType = "MONEY"
	EntityDate         EntityType = "DATE"
	EntityDuration     EntityType = "DURATION"
	EntityPercent      EntityType = "PERCENT"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityParty        EntityType = "PARTY"
)

// Entity is a span of the document. Start and End are byte offsets into the
// analyzed text, End exclusive.
type Entity struct {
	Text     string            `json:"text" yaml:"text"`
	Type     EntityType        `json:"type" yaml:"type"`
	Start    int               `json:"start" yaml:"start"`
	End      int               `json:"end" yaml:"end"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

// entityRule extracts one entity type. When group is non-zero the entity
// is that capture group rather than the whole match.
type entityRule struct {
	typ     EntityType
	pattern *regexp.Regexp
	group   int
}

var (
	entityRulesOnce  sync.Once
	entityRulesCache []entityRule
)

// entityRules returns the compiled rules in priority order. A span claimed
// by an earlier rule is not reported again by a later one.
func entityRules() []entityRule {
	entityRulesOnce.Do(func() {
		const month = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`
		entityRulesCache = []entityRule{
			{
				typ:     EntityMoney,
				pattern: regexp.MustCompile(`[$€£]\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?|\b\d{1,3}(?:,\d{3})*(?:\.\d+)?\s?(?:USD|EUR|GBP|dollars)\b`),
			},
			{
				typ:     EntityPercent,
				pattern: regexp.MustCompile(`\b\d+(?:\.\d+)?(?:%|\s?percent\b)`),
			},
			{
				typ:     EntityDate,
				pattern: regexp.MustCompile(`\b` + month + `\s+\d{1,2},\s+\d{4}\b|\b\d{1,2}\s+` + month + `\s+\d{4}\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{4}\b`),
			},
			{
				typ:     EntityDuration,
				pattern: regexp.MustCompile(`(?i)\b\d+\s+(?:business\s+|calendar\s+)?(?:days?|weeks?|months?|years?)\b`),
			},
			{
				typ:     EntityOrganization,
				pattern: regexp.MustCompile(`\b(?:[A-Z][\w&]*[ \t]+){0,3}[A-Z][\w&]*,?[ \t]+(?:Inc|LLC|Ltd|Corp|Corporation|GmbH|LLP|Company)\b`),
			},
			{
				typ:     EntityParty,
				pattern: regexp.MustCompile(`\b(Party [A-Z])\b`),
				group:   1,
			},
			{
				typ:     EntityParty,
				pattern: regexp.MustCompile(`\b(?:the|The)\s+(Buyer|Seller|Licensor|Licensee|Client|Contractor|Customer|Employer|Employee|Landlord|Tenant|Lessor|Lessee|Vendor|Supplier)\b`),
				group:   1,
			},
		}
	})
	return entityRulesCache
}

// RegexEntityExtractor finds entities with a fixed set of patterns. It is
// stateless and safe for concurrent use.
type RegexEntityExtractor struct {
	rules []entityRule
}

func NewRegexEntityExtractor() *RegexEntityExtractor {
	return &RegexEntityExtractor{rules: entityRules()}
}

// Extract returns non-overlapping entities ordered by Start.
func (x *RegexEntityExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Entity
	taken := func(start, end int) bool {
		for _, e := range out {
			if start < e.End && e.Start < end {
				return true
			}
		}
		return false
	}

	for _, rule := range x.rules {
		for _, m := range rule.pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if rule.group > 0 {
				start, end = m[2*rule.group], m[2*rule.group+1]
			}
			if start < 0 || taken(start, end) {
				continue
			}
			out = append(out, Entity{
				Text:     text[start:end],
				Type:     rule.typ,
				Start:    start,
				End:      end,
				Metadata: entityMetadata(rule.typ, text[start:end]),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	if out == nil {
		out = []Entity{}
	}
	return out, nil
}

func entityMetadata(typ EntityType, text string) map[string]string {
	meta := map[string]string{}
	switch typ {
	case EntityParty:
		if !strings.HasPrefix(text, "Party ") {
			meta["role"] = strings.ToLower(text)
		}
	case EntityMoney:
		switch {
		case strings.HasPrefix(text, "€"), strings.HasSuffix(text, "EUR"):
			meta["currency"] = "EUR"
		case strings.HasPrefix(text, "£"), strings.HasSuffix(text, "GBP"):
			meta["currency"] = "GBP"
		default:
			meta["currency"] = "USD"
		}
	}
	return meta
}
