package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cowrite/internal/domain"
	"cowrite/internal/domain/repositories"
)

// ProjectAccessGate implements ResourceAuthorizer using project membership.
// A user can access a project they own or are a member of.
type ProjectAccessGate struct {
	access repositories.ProjectAccessRepository
	logger *slog.Logger
}

// NewProjectAccessGate creates a new membership-based authorizer
func NewProjectAccessGate(access repositories.ProjectAccessRepository, logger *slog.Logger) *ProjectAccessGate {
	return &ProjectAccessGate{
		access: access,
		logger: logger,
	}
}

// CanAccessProject checks if user owns or is a member of the project.
// A missing project is reported as forbidden so callers cannot probe ids.
func (g *ProjectAccessGate) CanAccessProject(ctx context.Context, userID, projectID string) error {
	if userID == "" {
		return fmt.Errorf("project access requires a user: %w", domain.ErrUnauthorized)
	}

	role, err := g.access.GetAccessRole(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to project %s: %w", projectID, domain.ErrForbidden)
		}
		return fmt.Errorf("check project access: %w", err)
	}
	if role == "" {
		g.logger.Debug("project access denied",
			"project_id", projectID,
			"user_id", userID,
		)
		return fmt.Errorf("access denied to project %s: %w", projectID, domain.ErrForbidden)
	}
	return nil
}
