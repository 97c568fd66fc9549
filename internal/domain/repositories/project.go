package repositories

import "context"

// ProjectAccessRepository answers membership questions about projects.
type ProjectAccessRepository interface {
	// GetAccessRole returns "owner" or the member role of userID on the project,
	// or "" when the user has no access. Returns domain.ErrNotFound when the
	// project does not exist or is deleted.
	GetAccessRole(ctx context.Context, projectID, userID string) (string, error)
}
