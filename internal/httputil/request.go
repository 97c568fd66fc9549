package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"cowrite/internal/domain"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file itself.
const multipartOverhead = 1 << 20

// ReadUpload returns the bytes of the multipart file field. Bodies above
// maxBytes fail with a *domain.PayloadTooLargeError; a missing field fails
// with domain.ErrValidation.
func ReadUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	tooLarge := &domain.PayloadTooLargeError{
		Message: fmt.Sprintf("upload exceeds %d bytes", maxBytes),
		Limit:   maxBytes,
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, "", tooLarge
		case errors.Is(err, http.ErrMissingFile):
			return nil, "", &domain.ValidationError{Message: fmt.Sprintf("multipart field %q is required", field)}
		default:
			return nil, "", fmt.Errorf("%w: invalid multipart form: %v", domain.ErrValidation, err)
		}
	}
	defer file.Close()

	if header.Size > maxBytes {
		return nil, "", tooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", tooLarge
	}
	return data, header.Filename, nil
}
