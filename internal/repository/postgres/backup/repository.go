package backup

import (
	"context"
	"fmt"
	"log/slog"

	"cowrite/internal/domain/repositories"
	"cowrite/internal/jsontree"
	"cowrite/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGraphRepository reads and writes whole project graphs.
// It implements both GraphReader and GraphWriter.
type PostgresGraphRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewGraphRepository creates a new graph repository
func NewGraphRepository(config *postgres.RepositoryConfig) *PostgresGraphRepository {
	return &PostgresGraphRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// collect runs a project-scoped query and maps every row with fn.
// The result is never nil so empty collections encode as [].
func collect[T any](ctx context.Context, exec repositories.DBTX, query, projectID string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := exec.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

type treeCol struct {
	dst *jsontree.Tree
	raw []byte
}

func decodeTrees(cols ...treeCol) error {
	for _, c := range cols {
		t, err := jsontree.FromBytes(c.raw)
		if err != nil {
			return fmt.Errorf("decode json column: %w", err)
		}
		*c.dst = t
	}
	return nil
}

// jsonArg encodes a tree for a JSONB parameter; null trees become SQL NULL.
func jsonArg(t jsontree.Tree) (any, error) {
	b, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return string(b), nil
}
