package backup

import (
	"context"
	"fmt"

	models "cowrite/internal/domain/models/backup"
	backupRepo "cowrite/internal/domain/repositories/backup"
	"cowrite/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMediaCatalog implements the MediaCatalog interface
type PostgresMediaCatalog struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewMediaCatalog creates a new media catalog
func NewMediaCatalog(config *postgres.RepositoryConfig) backupRepo.MediaCatalog {
	return &PostgresMediaCatalog{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const mediaColumns = `id, project_id, original_name, mime_type, size, url, storage_path`

// ListByProject returns media owned by the project
func (c *PostgresMediaCatalog) ListByProject(ctx context.Context, projectID string) ([]models.MediaAsset, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		ORDER BY created_at
	`, mediaColumns, c.tables.MediaAssets)

	executor := postgres.GetExecutor(ctx, c.pool)
	assets, err := collect(ctx, executor, query, projectID, scanMediaAsset)
	if err != nil {
		return nil, fmt.Errorf("list project media: %w", err)
	}
	return assets, nil
}

// FindByIDs returns the rows among ids; ids that are not UUIDs cannot exist
// and are skipped before querying.
func (c *PostgresMediaCatalog) FindByIDs(ctx context.Context, ids []string) ([]models.MediaAsset, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.MediaAsset{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at
	`, mediaColumns, c.tables.MediaAssets)

	executor := postgres.GetExecutor(ctx, c.pool)
	rows, err := executor.Query(ctx, query, valid)
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	assets, err := pgx.CollectRows(rows, scanMediaAsset)
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	return assets, nil
}

func scanMediaAsset(row pgx.CollectableRow) (models.MediaAsset, error) {
	var m models.MediaAsset
	err := row.Scan(&m.ID, &m.ProjectID, &m.OriginalName, &m.MimeType, &m.Size, &m.URL, &m.StoragePath)
	return m, err
}
