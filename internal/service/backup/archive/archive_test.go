package archive

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"cowrite/internal/domain"
	models "cowrite/internal/domain/models/backup"
	"cowrite/internal/jsontree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *models.Manifest {
	content := `<p>see <img src="/media/ABC"></p>`
	return &models.Manifest{
		Version:    models.ManifestVersion,
		ExportedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Graph: models.Graph{
			Project: models.Project{ID: "p1", Title: "Novel", Settings: jsontree.EmptyObject()},
			Documents: []models.Document{
				{ID: "d1", Title: "Ch 1", Content: &content, Status: "draft", Type: "chapter"},
			},
			MediaAssets: []models.MediaAsset{
				{ID: "ABC", MimeType: "image/png", URL: "/api/media/ABC", ZipPath: MediaPath("ABC", ".png"), Ext: ".png"},
			},
		},
	}
}

func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := map[string][]byte{}
	for _, f := range zr.File {
		raw, err := readEntry(f, 0)
		require.NoError(t, err)
		out[f.Name] = raw
	}
	return out
}

func TestWrite_LayoutAndManifest(t *testing.T) {
	t.Parallel()
	data, err := Write(testManifest(), []File{{Path: "media/ABC.png", Data: []byte("PNGDATA")}})
	require.NoError(t, err)

	entries := zipEntries(t, data)
	require.Len(t, entries, 2)
	assert.Equal(t, []byte("PNGDATA"), entries["media/ABC.png"])

	manifest := string(entries[ManifestName])
	assert.Contains(t, manifest, `"version": 1`)
	assert.Contains(t, manifest, `/media/ABC`)
	assert.Contains(t, manifest, `"zipPath": "media/ABC.png"`)
	assert.Contains(t, manifest, `"exportedAt": "2024-03-01T12:00:00Z"`)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()
	in := testManifest()
	data, err := Write(in, []File{{Path: "media/ABC.png", Data: []byte("PNGDATA")}})
	require.NoError(t, err)

	a, err := Read(data, 1<<20)
	require.NoError(t, err)
	assert.True(t, a.IsZip())
	assert.Equal(t, "Novel", a.Manifest.Project.Title)
	require.Len(t, a.Manifest.Documents, 1)
	assert.Equal(t, *in.Documents[0].Content, *a.Manifest.Documents[0].Content)

	assert.True(t, a.HasMedia("ABC"))
	got, ok := a.Media("ABC")
	require.True(t, ok)
	assert.Equal(t, []byte("PNGDATA"), got)

	_, ok = a.Media("missing")
	assert.False(t, ok)
}

func TestArchive_MediaSize(t *testing.T) {
	t.Parallel()
	data, err := Write(testManifest(), []File{{Path: "media/ABC.png", Data: make([]byte, 4096)}})
	require.NoError(t, err)
	require.Less(t, len(data), 4096)

	a, err := Read(data, 1<<20)
	require.NoError(t, err)
	n, ok := a.MediaSize("ABC")
	require.True(t, ok)
	assert.Equal(t, int64(4096), n)

	_, ok = a.MediaSize("missing")
	assert.False(t, ok)
}

func TestRead_BareJSONFallback(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"version":1,"project":{"id":"p1","title":"Loose"},"documents":[{"id":"d1","title":"x"}],"mediaAssets":[{"id":"m1","mimeType":"image/png","url":"/api/media/m1"}]}`)

	a, err := Read(raw, 1<<20)
	require.NoError(t, err)
	assert.False(t, a.IsZip())
	assert.Equal(t, "Loose", a.Manifest.Project.Title)
	assert.Len(t, a.Manifest.Documents, 1)
	assert.Empty(t, a.Manifest.Characters)

	assert.False(t, a.HasMedia("m1"))
	_, ok := a.Media("m1")
	assert.False(t, ok)
}

func TestRead_MediaPathDefaultsToIDAndExt(t *testing.T) {
	t.Parallel()
	m := testManifest()
	m.MediaAssets[0].ZipPath = ""
	data, err := Write(m, []File{{Path: "media/ABC.png", Data: []byte("x")}})
	require.NoError(t, err)

	a, err := Read(data, 0)
	require.NoError(t, err)
	assert.True(t, a.HasMedia("ABC"))
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	zipWithout := func() []byte {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		require.NoError(t, writeZipFile(zw, "notes.txt", []byte("hi"), time.Now()))
		require.NoError(t, zw.Close())
		return buf.Bytes()
	}()
	zipWithBadJSON := func() []byte {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		require.NoError(t, writeZipFile(zw, ManifestName, []byte("{nope"), time.Now()))
		require.NoError(t, zw.Close())
		return buf.Bytes()
	}()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrUnsupportedFormat},
		{"garbage", []byte("definitely not a backup"), ErrUnsupportedFormat},
		{"zip without manifest", zipWithout, ErrUnsupportedFormat},
		{"zip with malformed manifest", zipWithBadJSON, ErrUnsupportedFormat},
		{"wrong version", []byte(`{"version":2,"project":{"id":"p"}}`), ErrUnsupportedVersion},
		{"missing version", []byte(`{"project":{"id":"p"}}`), ErrUnsupportedVersion},
		{"string version", []byte(`{"version":"1"}`), ErrUnsupportedVersion},
		{"wrong field type", []byte(`{"version":1,"documents":"x"}`), ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.data, 1<<20)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRead_EntryLimit(t *testing.T) {
	t.Parallel()
	big := bytes.Repeat([]byte("a"), 4096)
	data, err := Write(testManifest(), []File{{Path: "media/ABC.png", Data: big}})
	require.NoError(t, err)

	a, err := Read(data, 2048)
	// manifest fits, media entry does not
	require.NoError(t, err)
	_, ok := a.Media("ABC")
	assert.False(t, ok)
}
