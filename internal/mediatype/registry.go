// Package mediatype resolves file extensions for media assets.
package mediatype

import (
	"embed"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry looks up extensions by content type and back. It is read-only
// after NewRegistry and safe for concurrent use.
type Registry struct {
	byType map[string]string
	byExt  map[string]string
}

// NewRegistry creates a registry from the embedded type table.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		byType: make(map[string]string),
		byExt:  make(map[string]string),
	}
	if err := r.loadFile("config/types.yaml"); err != nil {
		return nil, err
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level wiring; the table is embedded,
// so a failure is a build defect.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) loadFile(filename string) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var file typesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	for _, t := range file.Types {
		if len(t.Extensions) == 0 {
			return fmt.Errorf("%s: content type %s has no extensions", filename, t.ContentType)
		}
		r.byType[t.ContentType] = t.Extensions[0]
		for _, ext := range t.Extensions {
			if _, seen := r.byExt[ext]; !seen {
				r.byExt[ext] = t.ContentType
			}
		}
	}
	return nil
}

// Extension returns the canonical extension for contentType, or "".
// Parameters such as "; charset=utf-8" are ignored.
func (r *Registry) Extension(contentType string) string {
	return r.byType[normalize(contentType)]
}

// ContentType returns the content type registered for ext, or "".
func (r *Registry) ContentType(ext string) string {
	return r.byExt[strings.ToLower(ext)]
}

// Resolve picks an extension for a stored media file: the declared content
// type first, then the extension of the storage path, then the file bytes.
// Returns "" when nothing is conclusive.
func (r *Registry) Resolve(contentType, storagePath string, data []byte) string {
	if ext := r.Extension(contentType); ext != "" {
		return ext
	}
	if ext := strings.ToLower(path.Ext(storagePath)); ext != "" && ext != "." {
		return ext
	}
	if len(data) == 0 {
		return ""
	}
	detected := mimetype.Detect(data)
	if ext := r.Extension(detected.String()); ext != "" {
		return ext
	}
	return detected.Extension()
}

func normalize(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
