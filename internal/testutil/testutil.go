// Package testutil provides shared test helpers for setting up vault fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/leit/internal/storage"
)

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// SeedVault writes the given vault-relative files, creating parent
// directories as needed. Keys use forward slashes on every platform.
func SeedVault(t *testing.T, vaultDir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(vaultDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
