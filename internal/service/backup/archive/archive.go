// Package archive encodes project backups as zip files holding a backup.json
// manifest plus media/<id><ext> entries, and decodes them again.
package archive

import (
	"fmt"

	"cowrite/internal/domain"
)

const (
	// ManifestName is the manifest entry at the root of every archive.
	ManifestName = "backup.json"
	// MediaDir prefixes every media entry.
	MediaDir = "media/"
	// ContentType of a finished archive.
	ContentType = "application/zip"
)

var (
	ErrUnsupportedFormat  = fmt.Errorf("unsupported backup file (expected zip or json): %w", domain.ErrValidation)
	ErrUnsupportedVersion = fmt.Errorf("unsupported backup version: %w", domain.ErrValidation)
)

// File is one media entry to bundle.
type File struct {
	Path string
	Data []byte
}

// MediaPath is the entry name for a media file.
func MediaPath(id, ext string) string {
	return MediaDir + id + ext
}
