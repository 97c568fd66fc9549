package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"cowrite/internal/config"
	backupSvc "cowrite/internal/domain/services/backup"
	"cowrite/internal/httputil"
)

// BackupHandler handles project export and import requests.
type BackupHandler struct {
	backupService backupSvc.BackupService
	maxUpload     int64
	logger        *slog.Logger
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService backupSvc.BackupService, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		maxUpload:     config.MaxBackupUploadBytes,
		logger:        logger,
	}
}

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	Success   bool                    `json:"success"`
	ProjectID string                  `json:"projectId"`
	Summary   backupSvc.ImportSummary `json:"summary"`
}

// ExportProject streams a zip backup of the project.
// GET /api/backups/projects/{projectId}/export
func (h *BackupHandler) ExportProject(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectId")

	result, err := h.backupService.ExportProject(r.Context(), userID, projectID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("X-Media-Count", strconv.Itoa(result.MediaCount))
	httputil.RespondAttachment(w, result.Filename, result.ContentType, result.Content)
}

// ImportArchive restores an uploaded backup as a new project.
// POST /api/backups/import (multipart field "file")
func (h *BackupHandler) ImportArchive(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	data, filename, err := httputil.ReadUpload(w, r, "file", h.maxUpload)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("starting backup import",
		"user_id", userID,
		"file", filename,
		"bytes", len(data),
		"request_id", httputil.RequestID(r.Context()),
	)

	result, err := h.backupService.ImportArchive(r.Context(), userID, data)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, ImportResponse{
		Success:   true,
		ProjectID: result.ProjectID,
		Summary:   result.Summary,
	})
}
