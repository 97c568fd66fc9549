package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
//
// Services call the authorizer before reading or writing project data.
type ResourceAuthorizer interface {
	// CanAccessProject returns nil when userID owns or is a member of the
	// project, and an error wrapping domain.ErrForbidden otherwise.
	CanAccessProject(ctx context.Context, userID, projectID string) error
}

// SearchIndexer receives documents to (re)index after a write commits.
type SearchIndexer interface {
	IndexDocument(ctx context.Context, index, id string, fields map[string]any) error
}
