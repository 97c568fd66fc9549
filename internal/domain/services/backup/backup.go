package backup

import (
	"context"

	models "cowrite/internal/domain/models/backup"
)

// BackupService exports projects to archives and restores archives as new projects.
type BackupService interface {
	// ExportProject builds a zip archive of the project graph and its media.
	ExportProject(ctx context.Context, userID, projectID string) (*ExportResult, error)

	// ImportArchive restores a zip archive (or bare backup.json) as a new
	// project owned by userID. Either the whole graph is created or nothing is.
	ImportArchive(ctx context.Context, userID string, data []byte) (*ImportResult, error)
}

// ExportResult is a finished archive ready to be streamed to the caller.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
	MediaCount  int
}

// ImportResult describes a restored project.
type ImportResult struct {
	ProjectID string        `json:"projectId"`
	Summary   ImportSummary `json:"summary"`
}

// ImportSummary counts what was created and what was left out.
type ImportSummary struct {
	Created       map[models.EntityType]int `json:"created"`
	Dropped       map[models.EntityType]int `json:"dropped,omitempty"`
	MediaRestored int                       `json:"mediaRestored"`
}
