// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package store

import "maps"

// Fragment is a unit of retrievable text. The store assigns ID on insert;
// a Fragment is never modified once stored.
type Fragment struct {
	ID       int64          `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clone returns a copy that does not share the metadata map.
func (f Fragment) Clone() Fragment {
	out := f
	if f.Metadata != nil {
		out.Metadata = maps.Clone(f.Metadata)
	}
	return out
}

// RetrievalResult is a fragment ranked against one query.
// Score is the cosine similarity of the fragment's embedding to the
// query embedding; higher is more similar.
type RetrievalResult struct {
	Fragment Fragment `json:"fragment"`
	Score    float64  `json:"score"`
}

// Well-known metadata keys written by ingestion.
const (
	MetaDocumentID    = "document_id"
	MetaDocumentTitle = "document_title"
	MetaClauseIndex   = "clause_index"
	MetaClauseKind    = "clause_kind"
	MetaClauseMarker  = "clause_marker"
	MetaContentHash   = "content_hash"
)
