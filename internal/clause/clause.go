// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

// Package clause cuts legal documents into clauses at numbered, lettered,
// Article and Section headings.
package clause

import (
	"regexp"
	"strings"
)

// Kind names the boundary pattern a clause was cut at.
type Kind string

const (
	KindPreamble Kind = "preamble"
	KindNumbered Kind = "numbered"
	KindLettered Kind = "lettered"
	KindArticle  Kind = "article"
	KindSection  Kind = "section"
)

// Clause is one cleaned span of a document. [Start, End) is the byte range
// of the input it was cut from, marker included.
type Clause struct {
	Text   string `json:"text" yaml:"text"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
}

type boundary struct {
	kind    Kind
	pattern *regexp.Regexp
}

// Splitter holds the prioritized boundary patterns. It has no mutable
// state and is safe for concurrent use.
type Splitter struct {
	boundaries []boundary
}

// NewSplitter returns a Splitter with the standard pattern order:
// numbered, lettered, Article, Section. Patterns match at the start of a
// line after optional blanks. Numbered and lettered markers must be
// followed by blanks or a line break. Blanks are the ASCII space, tab and
// carriage return, the same set CleanClause collapses.
func NewSplitter() *Splitter {
	return &Splitter{boundaries: []boundary{
		{KindNumbered, regexp.MustCompile(`\A[ \t\r]*(\d+\.)(?:[ \t\r]+|[ \t\r]*\n)`)},
		{KindLettered, regexp.MustCompile(`\A[ \t\r]*([A-Z]\.)(?:[ \t\r]+|[ \t\r]*\n)`)},
		{KindArticle, regexp.MustCompile(`\A[ \t\r]*(Article[ \t\r]+\d+)`)},
		{KindSection, regexp.MustCompile(`\A[ \t\r]*(Section[ \t\r]+\d+)`)},
	}}
}

type cut struct {
	kind   Kind
	marker string
	start  int // line start
	body   int // end of marker match
}

// Split partitions text into clauses in document order. Text before the
// first boundary becomes a preamble clause. Clauses that clean to empty
// are dropped, so blank input yields an empty slice.
func (s *Splitter) Split(text string) []Clause {
	if strings.TrimSpace(text) == "" {
		return []Clause{}
	}

	var cuts []cut
	for pos := 0; pos < len(text); {
		if c, ok := s.match(text, pos); ok {
			cuts = append(cuts, c)
			// A marker never crosses a line break, so the body starts on
			// the marker's line or the next one.
			pos = c.body
			if text[pos-1] != '\n' {
				pos = nextLine(text, pos)
			}
			continue
		}
		pos = nextLine(text, pos)
	}

	out := make([]Clause, 0, len(cuts)+1)
	add := func(kind Kind, marker string, start, body, end int) {
		if t := CleanClause(text[body:end]); strings.TrimSpace(t) != "" {
			out = append(out, Clause{Text: t, Kind: kind, Marker: marker, Start: start, End: end})
		}
	}

	first := len(text)
	if len(cuts) > 0 {
		first = cuts[0].start
	}
	add(KindPreamble, "", 0, 0, first)

	for i, c := range cuts {
		end := len(text)
		if i+1 < len(cuts) {
			end = cuts[i+1].start
		}
		add(c.kind, c.marker, c.start, c.body, end)
	}
	return out
}

// match tries every boundary at the line starting at pos, in priority order.
func (s *Splitter) match(text string, pos int) (cut, bool) {
	rest := text[pos:]
	for _, b := range s.boundaries {
		m := b.pattern.FindStringSubmatchIndex(rest)
		if m == nil {
			continue
		}
		return cut{
			kind:   b.kind,
			marker: rest[m[2]:m[3]],
			start:  pos,
			body:   pos + m[1],
		}, true
	}
	return cut{}, false
}

func nextLine(text string, pos int) int {
	i := strings.IndexByte(text[pos:], '\n')
	if i < 0 {
		return len(text)
	}
	return pos + i + 1
}

// CleanClause trims s and collapses every internal run of ASCII space, tab,
// carriage return or newline to a single space. Other whitespace, such as
// U+00A0, is kept, since boundary patterns never treat it as a blank.
func CleanClause(s string) string {
	return strings.Join(strings.FieldsFunc(s, isBlank), " ")
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// Join renders clauses one per line as "Marker Text". Splitting the result
// gives back the same Text, Kind and Marker sequence.
func Join(clauses []Clause) string {
	var b strings.Builder
	for i, c := range clauses {
		if i > 0 {
			b.WriteByte('\n')
		}
		if c.Marker != "" {
			b.WriteString(c.Marker)
			b.WriteByte(' ')
		}
		b.WriteString(c.Text)
	}
	return b.String()
}
