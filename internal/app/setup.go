// Package app assembles the backup service from configuration. The server and
// the backupctl CLI share it.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cowrite/internal/blobstore"
	"cowrite/internal/config"
	"cowrite/internal/domain/services"
	backupSvc "cowrite/internal/domain/services/backup"
	"cowrite/internal/mediatype"
	"cowrite/internal/repository/postgres"
	postgresBackup "cowrite/internal/repository/postgres/backup"
	serviceAuth "cowrite/internal/service/auth"
	serviceBackup "cowrite/internal/service/backup"
	"cowrite/internal/service/search"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the long-lived dependencies of a running process.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Backup backupSvc.BackupService

	closers []io.Closer
}

// NewLogger builds the JSON logger used by every binary: debug level in dev,
// mirrored to a log file when cfg.LogDir is set. The returned closer releases
// the file and is never nil.
func NewLogger(cfg *config.Config, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Environment == "dev" {
		level = slog.LevelDebug
	}

	out := stdout
	var closer io.Closer = nopCloser{}
	if cfg.LogDir != "" {
		f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(stdout, f)
		closer = f
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}

// New connects to the database and storage backends and wires the backup
// service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, Pool: pool}

	blobs, err := blobstore.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	if c, ok := blobs.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	types, err := mediatype.NewRegistry()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load media types: %w", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	graphRepo := postgresBackup.NewGraphRepository(repoConfig)

	a.Backup = serviceBackup.NewService(serviceBackup.Dependencies{
		TxManager:  postgres.NewTransactionManager(pool, logger),
		Reader:     graphRepo,
		Writer:     graphRepo,
		Media:      serviceBackup.NewMediaResolver(postgresBackup.NewMediaCatalog(repoConfig), blobs, types, cfg.MediaFetchConcurrency, logger),
		Blobs:      blobs,
		Authorizer: serviceAuth.NewProjectAccessGate(postgres.NewProjectAccessRepository(repoConfig), logger),
		Indexer:    newIndexer(ctx, cfg, logger),
		Logger:     logger,
	}, serviceBackup.Options{
		ImportTimeout:        cfg.ImportTimeout,
		SearchTimeout:        cfg.SearchTimeout,
		MaxArchiveEntryBytes: config.MaxArchiveEntryBytes,
		MaxImportMediaBytes:  config.MaxImportMediaBytes,
	})

	logger.Info("backup service ready",
		"blob_backend", cfg.BlobBackend,
		"table_prefix", cfg.TablePrefix,
		"search_enabled", cfg.ElasticsearchURL != "",
	)
	return a, nil
}

// newIndexer returns the Elasticsearch indexer, or a no-op one when search is
// not configured. Index creation failures are logged; indexing stays
// best-effort.
func newIndexer(ctx context.Context, cfg *config.Config, logger *slog.Logger) services.SearchIndexer {
	if cfg.ElasticsearchURL == "" {
		return search.Noop{}
	}
	idx, err := search.NewElasticIndexer(search.Config{
		URL:    cfg.ElasticsearchURL,
		APIKey: cfg.ElasticsearchAPIKey,
	}, logger)
	if err != nil {
		logger.Warn("search indexing disabled", "error", err)
		return search.Noop{}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.SearchTimeout)
	defer cancel()
	if err := idx.EnsureIndices(ctx); err != nil {
		logger.Warn("failed to ensure search indices", "error", err)
	}
	return idx
}

// Close releases the pool and any storage clients.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn("close failed", "error", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// LoadConfig reads the environment and validates it.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
