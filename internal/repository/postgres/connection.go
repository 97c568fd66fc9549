package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"cowrite/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Projects          string
	ProjectMembers    string
	Documents         string
	DocumentVersions  string
	DocumentComments  string
	Characters        string
	CharacterStats    string
	WorldSettings     string
	Relationships     string
	Plots             string
	PlotPoints        string
	WritingGoals      string
	ResearchItems     string
	Translations      string
	AudioAssets       string
	Storyboards       string
	ReaderPredictions string
	MediaAssets       string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Projects:          fmt.Sprintf("%sprojects", prefix),
		ProjectMembers:    fmt.Sprintf("%sproject_members", prefix),
		Documents:         fmt.Sprintf("%sdocuments", prefix),
		DocumentVersions:  fmt.Sprintf("%sdocument_versions", prefix),
		DocumentComments:  fmt.Sprintf("%sdocument_comments", prefix),
		Characters:        fmt.Sprintf("%scharacters", prefix),
		CharacterStats:    fmt.Sprintf("%scharacter_stats", prefix),
		WorldSettings:     fmt.Sprintf("%sworld_settings", prefix),
		Relationships:     fmt.Sprintf("%srelationships", prefix),
		Plots:             fmt.Sprintf("%splots", prefix),
		PlotPoints:        fmt.Sprintf("%splot_points", prefix),
		WritingGoals:      fmt.Sprintf("%swriting_goals", prefix),
		ResearchItems:     fmt.Sprintf("%sresearch_items", prefix),
		Translations:      fmt.Sprintf("%stranslations", prefix),
		AudioAssets:       fmt.Sprintf("%saudio_assets", prefix),
		Storyboards:       fmt.Sprintf("%sstoryboards", prefix),
		ReaderPredictions: fmt.Sprintf("%sreader_predictions", prefix),
		MediaAssets:       fmt.Sprintf("%smedia_assets", prefix),
	}
}

// CreateConnectionPool creates a pgx pool and verifies it with a ping.
//
// Port 6543 is the Supabase transaction pooler (PgBouncer), which cannot hold
// prepared statements; there the pool switches to QueryExecModeCacheDescribe
// unless default_query_exec_mode was set explicitly in the URL. Table prefixes
// are interpolated before statements are sent, so each prefix gets its own
// cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	// Check if there's a transaction in the context
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	// No transaction, use the pool
	return pool
}
