// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/legalease-ai/legalease/internal/config"
	"github.com/legalease-ai/legalease/internal/secrets"
	"github.com/legalease-ai/legalease/internal/store"
)

// doctorHTTPClient is used for the server check. Tests may replace it.
var doctorHTTPClient = &http.Client{Timeout: 3 * time.Second}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the binary, configuration, provider keys, storage backends, the running server and disk space.",
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", "", "server address to check (defaults to server.listen_addr)")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")
	dataDir := resolveDataDir()
	cfgPath := resolveConfigPath()
	cfg, cfgErr := config.Load(cfgPath)
	if addr == "" && cfg != nil {
		addr = cfg.Server.ListenAddr
	}

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Config", func() string { return checkConfig(cfgPath, cfgErr) }},
		{"Backends", checkBackends},
		{"Provider keys", func() string { return checkProviderKeys(cfg) }},
		{"Server", func() string { return checkServer(addr) }},
		{"Disk Space", func() string { return checkDiskSpace(dataDir) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("legalease %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(path string, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("error: %s", err)
	case path == "":
		return "using defaults (no config file found)"
	default:
		return fmt.Sprintf("loaded from %s", path)
	}
}

func checkBackends() string {
	return strings.Join(store.Backends(), ", ")
}

// checkProviderKeys reports, per configured provider, whether a key is set
// and whether keyring references resolve. Keys are never printed.
func checkProviderKeys(cfg *config.Config) string {
	if cfg == nil || len(cfg.Providers) == 0 {
		return "no remote providers configured"
	}
	resolved, err := secrets.ResolveProviders(secretStoreFactory(), cfg.Providers)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	var missing []string
	for name, pc := range resolved {
		if pc.APIKey == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Sprintf("missing api_key for %s", strings.Join(missing, ", "))
	}
	return fmt.Sprintf("%d provider(s) configured", len(resolved))
}

func checkServer(addr string) string {
	if addr == "" {
		return "no address configured"
	}
	resp, err := doctorHTTPClient.Get("http://" + addr + "/health")
	if err != nil {
		return fmt.Sprintf("not running at %s (run 'legalease serve')", addr)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status    string `json:"status"`
		StoreSize int    `json:"store_size"`
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("unhealthy at %s (HTTP %d)", addr, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s at %s, %d fragment(s) stored", body.Status, addr, body.StoreSize)
}

func checkDiskSpace(dataDir string) string {
	path := dataDir
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Fall back to home directory if data dir doesn't exist yet.
		path, _ = os.UserHomeDir()
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
