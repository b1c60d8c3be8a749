// Package storage defines the vault file-system abstraction. The index never
// mutates vault files; only listing, reading, and stat are exposed.
package storage

import "github.com/starford/leit/internal/models"

// Provider is the interface for vault file access. Paths are slash-separated
// and relative to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir, "" for the whole
	// vault. Order follows the directory walk and is stable between calls.
	List(dir string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Stat returns metadata for a single file.
	Stat(path string) (models.DocumentMeta, error)
}
