// Package storage defines the content-root file-system abstraction.
package storage

import (
	"time"

	"github.com/starford/kramify/internal/models"
)

// Provider is the interface for document file operations. Paths are relative
// to the content root and use the host separator.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// ModTime returns the modification time of the file at path.
	ModTime(path string) (time.Time, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
}
