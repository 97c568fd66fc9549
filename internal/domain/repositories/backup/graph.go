package backup

import (
	"context"

	models "cowrite/internal/domain/models/backup"
)

// GraphReader loads everything scoped to a project. Callers that need one
// consistent view run it inside TransactionManager.ExecSnapshot.
type GraphReader interface {
	// LoadGraph returns domain.ErrNotFound when the project is missing or deleted.
	LoadGraph(ctx context.Context, projectID string) (*models.Graph, error)
}

// GraphWriter inserts a fully remapped graph. It participates in the
// transaction carried by ctx.
type GraphWriter interface {
	// InsertGraph inserts the project and every dependent record in
	// dependency order. ownerID is recorded on owner-scoped rows.
	InsertGraph(ctx context.Context, g *models.Graph, ownerID string) error
}

// MediaCatalog looks up media asset rows.
type MediaCatalog interface {
	// ListByProject returns media owned by the project.
	ListByProject(ctx context.Context, projectID string) ([]models.MediaAsset, error)

	// FindByIDs returns the rows that exist among ids. Unknown or malformed
	// ids are ignored.
	FindByIDs(ctx context.Context, ids []string) ([]models.MediaAsset, error)
}
