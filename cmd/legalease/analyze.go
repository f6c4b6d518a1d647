// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/legalease-ai/legalease/internal/analysis"
	"github.com/legalease-ai/legalease/internal/clause"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Classify clauses, score risks and extract entities",
		Long:  "Run the clause analyzer over a document (or stdin for \"-\") and print the report.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	cmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")
	cmd.Flags().Bool("metadata", false, "include title, date and parties")

	return cmd
}

// analyzeOutput is the json/yaml document printed by analyze.
type analyzeOutput struct {
	Metadata        *analysis.Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	analysis.Report `yaml:",inline"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	withMeta, _ := cmd.Flags().GetBool("metadata")
	switch format {
	case "text", "json", "yaml":
	default:
		return lerr.Errorf(lerr.CodeCLIInputInvalid, "unknown format %q (want text, json or yaml)", format)
	}

	doc, err := readDocument(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	// The analyzer needs no encoder or store, so no config is loaded here.
	analyzer, err := analysis.NewAnalyzer(clause.NewSplitter())
	if err != nil {
		return err
	}
	report, err := analyzer.Analyze(contextOf(cmd), doc.Text)
	if err != nil {
		return lerr.Wrap(err, lerr.CodeCLIRequestFailure, "analyzing document")
	}

	out := analyzeOutput{Report: *report}
	if withMeta {
		md := analysis.ExtractMetadata(doc.Text)
		out.Metadata = &md
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeReport(w, out)
	}
}

func writeReport(w io.Writer, out analyzeOutput) error {
	if md := out.Metadata; md != nil {
		if _, err := fmt.Fprintf(w, "Title:   %s\nDate:    %s\nParties: %v\n\n", md.Title, md.Date, md.Parties); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w, "Clauses:")
	for i, c := range out.Clauses {
		if _, err := fmt.Fprintf(w, "  %2d. %-22s %.2f  %s\n", i+1, c.Type, c.Confidence, truncate(c.Text, 60)); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w, "\nRisks:")
	if len(out.Risks) == 0 {
		_, _ = fmt.Fprintln(w, "  none found")
	}
	for _, r := range out.Risks {
		if _, err := fmt.Fprintf(w, "  clause %d  %-6s %.2f  %s\n", r.ClauseID, r.Level, r.Confidence, r.Description); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w, "\nEntities:")
	if len(out.Entities) == 0 {
		_, _ = fmt.Fprintln(w, "  none found")
	}
	for _, e := range out.Entities {
		if _, err := fmt.Fprintf(w, "  %-12s %s\n", e.Type, e.Text); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
