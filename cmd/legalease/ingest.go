// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legalease-ai/legalease/internal/ingest"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Split, embed and store documents",
		Long:  "Read each file (or stdin for \"-\"), split it into clauses and add them to the vector store.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().String("id", "", "document id (single file only)")
	cmd.Flags().String("title", "", "document title (single file only)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")
	if len(args) > 1 && (id != "" || title != "") {
		return lerr.New(lerr.CodeCLIInputInvalid, "--id and --title need exactly one file")
	}

	app, closeApp, err := wireFromCmd(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	out := cmd.OutOrStdout()
	for _, path := range args {
		doc, err := readDocument(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		if id != "" {
			doc.ID = id
		}
		if title != "" {
			doc.Title = title
		}

		res, err := app.Pipeline.Ingest(contextOf(cmd), doc)
		if err != nil {
			return lerr.Wrapf(err, lerr.CodeCLIRequestFailure, "ingesting %s", path)
		}
		if _, err := fmt.Fprintf(out, "%s: %d clause(s) stored as %s (%q), %d skipped\n",
			path, len(res.ClauseIDs), res.DocumentID, res.Title, res.Skipped); err != nil {
			return err
		}
	}
	return nil
}

// readDocument reads path, or stdin when path is "-". The file's base name
// without extension becomes the id.
func readDocument(stdin io.Reader, path string) (ingest.Document, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return ingest.Document{}, lerr.Errorf(lerr.CodeCLIInputInvalid, "reading %s: %w", path, err)
	}

	doc := ingest.Document{Text: string(raw)}
	if path != "-" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}
