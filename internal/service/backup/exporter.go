package backup

import (
	"context"
	"fmt"
	"time"

	"cowrite/internal/domain"
	models "cowrite/internal/domain/models/backup"
	backupSvc "cowrite/internal/domain/services/backup"
	"cowrite/internal/service/backup/archive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ExportProject snapshots the project graph, bundles its media and returns
// the finished zip.
func (s *service) ExportProject(ctx context.Context, userID, projectID string) (result *backupSvc.ExportResult, err error) {
	ctx, span := tracer.Start(ctx, "backup.export", trace.WithAttributes(
		attribute.String("project_id", projectID),
	))
	start := time.Now()
	defer func() {
		exportsTotal.WithLabelValues(resultLabel(err)).Inc()
		operationDuration.WithLabelValues("export").Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "export failed")
		}
		span.End()
	}()

	if userID == "" {
		return nil, fmt.Errorf("export requires a signed-in user: %w", domain.ErrUnauthorized)
	}
	if err := validation.Validate(projectID, validation.Required, is.UUID.Error("must be a valid project id")); err != nil {
		return nil, fmt.Errorf("%w: project id %v", domain.ErrValidation, err)
	}
	if err := s.authorizer.CanAccessProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	var (
		graph  *models.Graph
		assets []models.MediaAsset
	)
	err = s.txManager.ExecSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if graph, err = s.reader.LoadGraph(ctx, projectID); err != nil {
			return err
		}
		assets, err = s.media.Assets(ctx, projectID, graph)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", projectID, err)
	}

	bundle, err := s.media.Fetch(ctx, assets)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().UTC()
	manifest := &models.Manifest{
		Version:    models.ManifestVersion,
		ExportedAt: exportedAt,
		Graph:      *graph,
	}
	manifest.MediaAssets = bundle.Assets

	content, err := archive.Write(manifest, bundle.Files)
	if err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	span.SetAttributes(
		attribute.Int("media.bundled", len(bundle.Files)),
		attribute.Int("media.skipped", bundle.Skipped),
		attribute.Int("archive.bytes", len(content)),
	)
	s.logger.Info("project exported",
		"project_id", projectID,
		"user_id", userID,
		"documents", len(graph.Documents),
		"media", len(bundle.Files),
		"media_skipped", bundle.Skipped,
		"bytes", len(content),
	)

	return &backupSvc.ExportResult{
		Filename:    ArchiveFilename(graph.Project.Title, exportedAt),
		ContentType: archive.ContentType,
		Content:     content,
		MediaCount:  len(bundle.Files),
	}, nil
}
