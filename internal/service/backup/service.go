package backup

import (
	"log/slog"
	"time"

	"cowrite/internal/config"
	"cowrite/internal/domain/repositories"
	backupRepo "cowrite/internal/domain/repositories/backup"
	"cowrite/internal/domain/services"
	backupSvc "cowrite/internal/domain/services/backup"

	"github.com/google/uuid"
)

// Dependencies wires the backup service.
type Dependencies struct {
	TxManager  repositories.TransactionManager
	Reader     backupRepo.GraphReader
	Writer     backupRepo.GraphWriter
	Media      *MediaResolver
	Blobs      backupSvc.BlobStore
	Authorizer services.ResourceAuthorizer
	// Indexer is optional; nil disables search indexing.
	Indexer services.SearchIndexer
	Logger  *slog.Logger
}

// Options tunes the backup service. Zero values take defaults.
type Options struct {
	ImportTimeout        time.Duration
	SearchTimeout        time.Duration
	MaxArchiveEntryBytes int64
	MaxImportMediaBytes  int64
}

// service implements the BackupService interface
type service struct {
	txManager  repositories.TransactionManager
	reader     backupRepo.GraphReader
	writer     backupRepo.GraphWriter
	media      *MediaResolver
	blobs      backupSvc.BlobStore
	authorizer services.ResourceAuthorizer
	indexer    services.SearchIndexer
	logger     *slog.Logger

	importTimeout time.Duration
	searchTimeout time.Duration
	maxEntryBytes int64
	maxMediaBytes int64

	newID func() string
	now   func() time.Time
	// spawn runs post-commit work; tests make it synchronous.
	spawn func(func())
}

// NewService creates a new backup service
func NewService(deps Dependencies, opts Options) backupSvc.BackupService {
	return newService(deps, opts)
}

func newService(deps Dependencies, opts Options) *service {
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = config.DefaultImportTimeout
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 10 * time.Second
	}
	if opts.MaxArchiveEntryBytes <= 0 {
		opts.MaxArchiveEntryBytes = config.MaxArchiveEntryBytes
	}
	if opts.MaxImportMediaBytes <= 0 {
		opts.MaxImportMediaBytes = config.MaxImportMediaBytes
	}
	return &service{
		txManager:     deps.TxManager,
		reader:        deps.Reader,
		writer:        deps.Writer,
		media:         deps.Media,
		blobs:         deps.Blobs,
		authorizer:    deps.Authorizer,
		indexer:       deps.Indexer,
		logger:        deps.Logger,
		importTimeout: opts.ImportTimeout,
		searchTimeout: opts.SearchTimeout,
		maxEntryBytes: opts.MaxArchiveEntryBytes,
		maxMediaBytes: opts.MaxImportMediaBytes,
		newID:         uuid.NewString,
		now:           time.Now,
		spawn:         func(f func()) { go f() },
	}
}
