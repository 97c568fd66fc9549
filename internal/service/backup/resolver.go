package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"cowrite/internal/blobstore"
	models "cowrite/internal/domain/models/backup"
	backupRepo "cowrite/internal/domain/repositories/backup"
	backupSvc "cowrite/internal/domain/services/backup"
	"cowrite/internal/mediatype"
	"cowrite/internal/service/backup/archive"

	"golang.org/x/sync/errgroup"
)

// MediaResolver decides which media belong in an export and loads their bytes.
type MediaResolver struct {
	catalog     backupRepo.MediaCatalog
	blobs       backupSvc.BlobStore
	types       *mediatype.Registry
	concurrency int
	logger      *slog.Logger
}

// NewMediaResolver creates a resolver that reads at most concurrency blobs at once.
func NewMediaResolver(
	catalog backupRepo.MediaCatalog,
	blobs backupSvc.BlobStore,
	types *mediatype.Registry,
	concurrency int,
	logger *slog.Logger,
) *MediaResolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MediaResolver{
		catalog:     catalog,
		blobs:       blobs,
		types:       types,
		concurrency: concurrency,
		logger:      logger,
	}
}

// MediaBundle is the media half of an archive.
type MediaBundle struct {
	Assets  []models.MediaAsset
	Files   []archive.File
	Skipped int
}

// Assets returns the media rows an export of g should carry: media owned by
// the project plus every id referenced from its text or JSON fields.
func (r *MediaResolver) Assets(ctx context.Context, projectID string, g *models.Graph) ([]models.MediaAsset, error) {
	owned, err := r.catalog.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project media: %w", err)
	}

	known := make(map[string]bool, len(owned))
	for _, m := range owned {
		known[m.ID] = true
	}

	var referenced []string
	g.EachText(func(s string) {
		for _, id := range ScanMediaRefs(s) {
			if !known[id] {
				known[id] = true
				referenced = append(referenced, id)
			}
		}
	})
	if len(referenced) == 0 {
		return owned, nil
	}

	found, err := r.catalog.FindByIDs(ctx, referenced)
	if err != nil {
		return nil, fmt.Errorf("find referenced media: %w", err)
	}
	return append(owned, found...), nil
}

// Fetch reads the bytes of every asset concurrently. Assets whose bytes
// cannot be read are left out of the bundle; only context cancellation
// fails the call.
func (r *MediaResolver) Fetch(ctx context.Context, assets []models.MediaAsset) (*MediaBundle, error) {
	type fetched struct {
		asset models.MediaAsset
		data  []byte
		ok    bool
	}
	results := make([]fetched, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, asset := range assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := r.blobs.Read(gctx, asset.StoragePath)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				level := slog.LevelWarn
				if errors.Is(err, blobstore.ErrNotFound) {
					level = slog.LevelInfo
				}
				r.logger.Log(gctx, level, "media skipped",
					"media_id", asset.ID,
					"storage_path", asset.StoragePath,
					"error", err,
				)
				return nil
			}
			results[i] = fetched{asset: asset, data: data, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}

	bundle := &MediaBundle{
		Assets: []models.MediaAsset{},
	}
	for _, res := range results {
		if !res.ok {
			bundle.Skipped++
			continue
		}
		asset := res.asset
		asset.Ext = r.types.Resolve(asset.MimeType, asset.StoragePath, res.data)
		asset.ZipPath = archive.MediaPath(asset.ID, asset.Ext)
		asset.Size = int64(len(res.data))
		bundle.Assets = append(bundle.Assets, asset)
		bundle.Files = append(bundle.Files, archive.File{Path: asset.ZipPath, Data: res.data})
	}
	sort.Slice(bundle.Assets, func(i, j int) bool { return bundle.Assets[i].ID < bundle.Assets[j].ID })
	mediaSkippedTotal.Add(float64(bundle.Skipped))
	return bundle, nil
}
