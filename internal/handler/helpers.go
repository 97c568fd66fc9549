package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"cowrite/internal/domain"
	"cowrite/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Unclassified errors
// are logged and reported as a generic 500.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var tooLarge *domain.PayloadTooLargeError
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &tooLarge):
		httputil.RespondErrorWithExtras(w, http.StatusRequestEntityTooLarge, tooLarge.Error(), map[string]any{
			"limit": tooLarge.Limit,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
