// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package analysis

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/legalease-ai/legalease/internal/clause"
)

// maxTitleLen bounds the first line accepted as a title.
const maxTitleLen = 120

// Metadata is the document-level summary: a title, the first date and the
// named parties.
type Metadata struct {
	Title   string   `json:"title" yaml:"title"`
	Date    string   `json:"date" yaml:"date"`
	Parties []string `json:"parties" yaml:"parties"`
}

// ExtractMetadata reads the title from the first non-blank line when it is
// short and is not itself a clause heading. Date is the first DATE entity.
// Parties are the distinct organizations and "Party X" names in order of
// appearance.
func ExtractMetadata(text string) Metadata {
	md := Metadata{Parties: []string{}}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) <= maxTitleLen && !startsClause(line) {
			md.Title = line
		}
		break
	}

	entities, _ := NewRegexEntityExtractor().Extract(context.Background(), text)
	var parties []string
	for _, e := range entities {
		switch {
		case e.Type == EntityDate && md.Date == "":
			md.Date = e.Text
		case e.Type == EntityOrganization:
			parties = append(parties, e.Text)
		case e.Type == EntityParty && e.Metadata["role"] == "":
			parties = append(parties, e.Text)
		}
	}
	if len(parties) > 0 {
		md.Parties = lo.Uniq(parties)
	}
	return md
}

var headingSplitter = clause.NewSplitter()

func startsClause(line string) bool {
	cs := headingSplitter.Split(line)
	return len(cs) > 0 && cs[0].Marker != ""
}
