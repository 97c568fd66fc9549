package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	models "cowrite/internal/domain/models/backup"

	"github.com/tidwall/gjson"
)

// Archive is a decoded backup.
type Archive struct {
	Manifest *models.Manifest

	entries    map[string]*zip.File
	mediaPaths map[string]string
	maxEntry   int64
}

// Read decodes a zip archive, or a bare backup.json document when data is
// not a zip. maxEntryBytes bounds every decompressed entry.
func Read(data []byte, maxEntryBytes int64) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		m, err := decodeManifest(data)
		if err != nil {
			return nil, err
		}
		return &Archive{Manifest: m}, nil
	}

	a := &Archive{
		entries:  make(map[string]*zip.File, len(zr.File)),
		maxEntry: maxEntryBytes,
	}
	for _, f := range zr.File {
		if _, dup := a.entries[f.Name]; !dup {
			a.entries[f.Name] = f
		}
	}

	entry, ok := a.entries[ManifestName]
	if !ok {
		return nil, fmt.Errorf("%w: zip has no %s", ErrUnsupportedFormat, ManifestName)
	}
	raw, err := readEntry(entry, maxEntryBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if a.Manifest, err = decodeManifest(raw); err != nil {
		return nil, err
	}

	a.mediaPaths = make(map[string]string, len(a.Manifest.MediaAssets))
	for _, m := range a.Manifest.MediaAssets {
		if m.ID == "" {
			continue
		}
		p := m.ZipPath
		if p == "" {
			p = MediaPath(m.ID, m.Ext)
		}
		a.mediaPaths[m.ID] = p
	}
	return a, nil
}

// IsZip reports whether the backup came with bundled media.
func (a *Archive) IsZip() bool {
	return a.entries != nil
}

// HasMedia reports whether bytes for the media id are bundled.
func (a *Archive) HasMedia(id string) bool {
	p, ok := a.mediaPaths[id]
	if !ok {
		return false
	}
	_, ok = a.entries[p]
	return ok
}

// MediaSize returns the declared decompressed size of a bundled media entry.
// archive/zip rejects entries that inflate past their declared size.
func (a *Archive) MediaSize(id string) (int64, bool) {
	p, ok := a.mediaPaths[id]
	if !ok {
		return 0, false
	}
	f, ok := a.entries[p]
	if !ok || f.UncompressedSize64 > math.MaxInt64 {
		return 0, false
	}
	return int64(f.UncompressedSize64), true
}

// Media returns the bundled bytes for a media id.
func (a *Archive) Media(id string) ([]byte, bool) {
	p, ok := a.mediaPaths[id]
	if !ok {
		return nil, false
	}
	f, ok := a.entries[p]
	if !ok {
		return nil, false
	}
	data, err := readEntry(f, a.maxEntry)
	if err != nil {
		return nil, false
	}
	return data, true
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, limit)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, limit)
	}
	return data, nil
}

func decodeManifest(raw []byte) (*models.Manifest, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrUnsupportedFormat
	}
	version := gjson.GetBytes(raw, "version")
	if version.Type != gjson.Number || version.Num != models.ManifestVersion {
		return nil, fmt.Errorf("%w %s", ErrUnsupportedVersion, displayVersion(version))
	}

	var m models.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return &m, nil
}

func displayVersion(v gjson.Result) string {
	if !v.Exists() {
		return "(missing)"
	}
	return v.Raw
}
