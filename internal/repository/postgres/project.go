package postgres

import (
	"context"
	"fmt"

	"cowrite/internal/domain"
	"cowrite/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProjectAccessRepository implements repositories.ProjectAccessRepository
type PostgresProjectAccessRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectAccessRepository creates a new project access repository
func NewProjectAccessRepository(config *RepositoryConfig) repositories.ProjectAccessRepository {
	return &PostgresProjectAccessRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetAccessRole returns "owner", the member role, or "" for no access
func (r *PostgresProjectAccessRepository) GetAccessRole(ctx context.Context, projectID, userID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT CASE WHEN p.owner_id = $2 THEN 'owner' ELSE m.role END
		FROM %s p
		LEFT JOIN %s m ON m.project_id = p.id AND m.user_id = $2
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`, r.tables.Projects, r.tables.ProjectMembers)

	var role *string
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, userID).Scan(&role)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return "", fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get project access: %w", err)
	}
	if role == nil {
		return "", nil
	}
	return *role, nil
}
