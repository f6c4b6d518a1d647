// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const sampleContract = `MASTER SERVICES AGREEMENT
This Agreement is made on January 5, 2024 between Acme Corp and Globex LLC.
1. The Client shall pay all invoices within 30 days.
2. Either party may terminate this Agreement with 60 days written notice.
3. The Provider shall have unlimited liability for any breach.
`

// isolate points HOME and the data directory at temp dirs so no test reads
// or bootstraps the developer's real configuration.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("LEGALEASE_CONFIG", "")
	t.Setenv("LEGALEASE_DATA_DIR", filepath.Join(dir, "data"))
	t.Cleanup(viper.Reset)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// writeConfig writes a small in-memory configuration.
func writeConfig(t *testing.T, dir string, extra ...string) string {
	t.Helper()
	cfg := `storage:
  backend: memory
  embedding_dim: 64
logging:
  level: error
` + strings.Join(extra, "\n")
	return writeFile(t, dir, "legalease.yaml", cfg)
}

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}
