package backup

import (
	"context"
	"fmt"
	"time"

	"cowrite/internal/config"
	"cowrite/internal/domain"
	models "cowrite/internal/domain/models/backup"
	backupSvc "cowrite/internal/domain/services/backup"
	"cowrite/internal/service/backup/archive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const compensationTimeout = 30 * time.Second

// ImportArchive restores an archive as a new project owned by userID.
//
// Rows are inserted in one transaction. Media files are written to the blob
// store inside that transaction's callback and removed again if anything
// fails before commit completes. The import is detached from ctx
// cancellation and bounded by the import timeout instead, so a caller that
// hangs up cannot leave files behind.
func (s *service) ImportArchive(ctx context.Context, userID string, data []byte) (result *backupSvc.ImportResult, err error) {
	ctx, span := tracer.Start(ctx, "backup.import", trace.WithAttributes(
		attribute.Int("archive.bytes", len(data)),
	))
	start := time.Now()
	defer func() {
		importsTotal.WithLabelValues(resultLabel(err)).Inc()
		operationDuration.WithLabelValues("import").Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "import failed")
		}
		span.End()
	}()

	if userID == "" {
		return nil, fmt.Errorf("import requires a signed-in user: %w", domain.ErrUnauthorized)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", domain.ErrValidation)
	}

	arc, err := archive.Read(data, s.maxEntryBytes)
	if err != nil {
		return nil, err
	}
	if err := validateManifest(arc.Manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	payloads, err := s.loadMedia(arc)
	if err != nil {
		return nil, err
	}

	plan := Remap(&arc.Manifest.Graph, RemapOptions{
		NewID:   s.newID,
		OwnerID: userID,
		MediaAvailable: func(id string) bool {
			_, ok := payloads[id]
			return ok
		},
	})
	for i := range plan.Graph.MediaAssets {
		m := &plan.Graph.MediaAssets[i]
		b := payloads[plan.MediaOrigins[m.ID]]
		ext := s.media.types.Resolve(m.MimeType, m.ZipPath, b)
		m.Ext = ext
		m.Size = int64(len(b))
		m.StoragePath = archive.MediaPath(m.ID, ext)
	}
	for entity, n := range plan.Dropped {
		droppedRecordsTotal.WithLabelValues(string(entity)).Add(float64(n))
	}

	projectID := plan.Graph.Project.ID
	span.SetAttributes(attribute.String("project_id", projectID))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.importTimeout)
	defer cancel()

	undo := &undoStack{}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.writer.InsertGraph(txCtx, plan.Graph, userID); err != nil {
			return fmt.Errorf("insert project graph: %w", err)
		}
		for _, m := range plan.Graph.MediaAssets {
			key := m.StoragePath
			if err := s.blobs.Write(txCtx, key, payloads[plan.MediaOrigins[m.ID]]); err != nil {
				return fmt.Errorf("write media %s: %w", m.ID, err)
			}
			undo.push("delete "+key, func(ctx context.Context) error {
				return s.blobs.Delete(ctx, key)
			})
		}
		return nil
	})
	if err != nil {
		cleanupCtx, cancelCleanup := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
		defer cancelCleanup()
		written := undo.len()
		failed := undo.run(cleanupCtx, s.logger)
		compensatedFilesTotal.Add(float64(written - failed))
		s.logger.Error("import failed",
			"user_id", userID,
			"project_id", projectID,
			"media_removed", written-failed,
			"error", err,
		)
		return nil, fmt.Errorf("import project: %w", err)
	}

	graph := plan.Graph
	s.spawn(func() { s.indexImported(ctx, graph, userID) })

	created := plan.Graph.Counts()
	created[models.EntityProject] = 1
	s.logger.Info("project imported",
		"project_id", projectID,
		"user_id", userID,
		"documents", len(plan.Graph.Documents),
		"media", len(plan.Graph.MediaAssets),
		"dropped", plan.Dropped,
	)

	summary := backupSvc.ImportSummary{
		Created:       created,
		MediaRestored: len(plan.Graph.MediaAssets),
	}
	if len(plan.Dropped) > 0 {
		summary.Dropped = plan.Dropped
	}
	return &backupSvc.ImportResult{ProjectID: projectID, Summary: summary}, nil
}

// loadMedia decompresses the bundled media, keeping the running total under
// maxMediaBytes. Declared sizes are checked before anything is inflated.
func (s *service) loadMedia(arc *archive.Archive) (map[string][]byte, error) {
	tooLarge := &domain.PayloadTooLargeError{
		Message: fmt.Sprintf("bundled media exceeds %d bytes", s.maxMediaBytes),
		Limit:   s.maxMediaBytes,
	}

	var declared int64
	seen := make(map[string]bool)
	for _, m := range arc.Manifest.MediaAssets {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if n, ok := arc.MediaSize(m.ID); ok {
			declared += n
			if declared > s.maxMediaBytes {
				return nil, tooLarge
			}
		}
	}

	var total int64
	payloads := make(map[string][]byte)
	for _, m := range arc.Manifest.MediaAssets {
		if _, dup := payloads[m.ID]; dup || m.ID == "" {
			continue
		}
		b, ok := arc.Media(m.ID)
		if !ok {
			continue
		}
		total += int64(len(b))
		if total > s.maxMediaBytes {
			return nil, tooLarge
		}
		payloads[m.ID] = b
	}
	return payloads, nil
}

// validateManifest bounds the size of an archive's record collections.
// Reference problems are not errors; Remap drops or clears them.
func validateManifest(m *models.Manifest) error {
	g := &m.Graph
	limit := validation.Length(0, config.MaxImportRecords)
	return validation.ValidateStruct(g,
		validation.Field(&g.Documents, limit),
		validation.Field(&g.DocumentVersions, limit),
		validation.Field(&g.Characters, limit),
		validation.Field(&g.CharacterStats, limit),
		validation.Field(&g.WorldSettings, limit),
		validation.Field(&g.Relationships, limit),
		validation.Field(&g.Plots, limit),
		validation.Field(&g.PlotPoints, limit),
		validation.Field(&g.WritingGoals, limit),
		validation.Field(&g.ResearchItems, limit),
		validation.Field(&g.Translations, limit),
		validation.Field(&g.AudioAssets, limit),
		validation.Field(&g.Storyboards, limit),
		validation.Field(&g.ReaderPredictions, limit),
		validation.Field(&g.DocumentComments, limit),
		validation.Field(&g.MediaAssets, limit),
	)
}
