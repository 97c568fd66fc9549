// Package search feeds the full-text search cluster.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cowrite/internal/domain/services"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

// Indices the backup service writes to.
var Indices = []string{"projects", "documents", "characters", "world_settings", "plots"}

// ElasticIndexer implements services.SearchIndexer on Elasticsearch.
type ElasticIndexer struct {
	client *elasticsearch.Client
	logger *slog.Logger
}

// Config for NewElasticIndexer.
type Config struct {
	URL    string
	APIKey string
	// Transport is optional; tests point it at an httptest server.
	Transport http.RoundTripper
}

// NewElasticIndexer creates an indexer for the cluster at cfg.URL.
func NewElasticIndexer(cfg Config, logger *slog.Logger) (*ElasticIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &ElasticIndexer{client: client, logger: logger}, nil
}

// IndexDocument upserts one document and waits until it is searchable.
func (e *ElasticIndexer) IndexDocument(ctx context.Context, index, id string, fields map[string]any) error {
	res, err := e.client.Index(index, esutil.NewJSONReader(fields),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(id),
		e.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", index, id, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("index %s/%s: %s", index, id, res.Status())
	}
	return nil
}

// EnsureIndices creates any of Indices that does not exist yet.
func (e *ElasticIndexer) EnsureIndices(ctx context.Context) error {
	for _, index := range Indices {
		res, err := e.client.Indices.Exists([]string{index}, e.client.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("check index %s: %w", index, err)
		}
		drain(res)
		if res.StatusCode == http.StatusOK {
			continue
		}
		if res.StatusCode != http.StatusNotFound {
			return fmt.Errorf("check index %s: %s", index, res.Status())
		}

		res, err = e.client.Indices.Create(index, e.client.Indices.Create.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("create index %s: %w", index, err)
		}
		drain(res)
		if res.IsError() {
			return fmt.Errorf("create index %s: %s", index, res.Status())
		}
		e.logger.Info("search index created", "index", index)
	}
	return nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

// Noop discards every document. Used when no cluster is configured.
type Noop struct{}

func (Noop) IndexDocument(context.Context, string, string, map[string]any) error { return nil }

var (
	_ services.SearchIndexer = (*ElasticIndexer)(nil)
	_ services.SearchIndexer = Noop{}
)
