package backup

import "context"

// BlobStore holds media bytes by key.
type BlobStore interface {
	// Read returns the object bytes, or an error wrapping blobstore.ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
