package mediatype

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestRegistry_Extension(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/webp", ".webp"},
		{"image/gif", ".gif"},
		{"image/svg+xml", ".svg"},
		{"IMAGE/PNG; charset=binary", ".png"},
		{"application/x-unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Extension(tt.contentType))
		})
	}
}

func TestRegistry_ContentType(t *testing.T) {
	r := MustRegistry()
	assert.Equal(t, "image/jpeg", r.ContentType(".JPEG"))
	assert.Equal(t, "image/png", r.ContentType(".png"))
	assert.Equal(t, "", r.ContentType(".exe"))
}

func TestRegistry_Resolve(t *testing.T) {
	r := MustRegistry()

	t.Run("declared type wins", func(t *testing.T) {
		assert.Equal(t, ".webp", r.Resolve("image/webp", "media/x.png", pngHeader))
	})
	t.Run("falls back to storage path", func(t *testing.T) {
		assert.Equal(t, ".png", r.Resolve("application/octet-stream", "/uploads/abc.PNG", nil))
	})
	t.Run("falls back to sniffing", func(t *testing.T) {
		assert.Equal(t, ".png", r.Resolve("", "media/abc", pngHeader))
	})
	t.Run("nothing conclusive", func(t *testing.T) {
		assert.Equal(t, "", r.Resolve("", "media/abc", nil))
	})
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	r := MustRegistry()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Equal(t, ".png", r.Extension("image/png"))
				assert.Equal(t, "image/png", r.ContentType(".png"))
			}
		}()
	}
	wg.Wait()
}
