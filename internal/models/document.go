// Package models defines the domain types shared by storage, pipeline and API.
package models

import "time"

// DocumentMetadata describes one Markdown file under the content root.
type DocumentMetadata struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}

// ConversionRecord is the ledger entry written after a document is processed.
type ConversionRecord struct {
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	Generator   string    `json:"generator"`
	ConvertedAt time.Time `json:"converted_at"`
}
