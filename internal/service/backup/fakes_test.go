package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"cowrite/internal/blobstore"
	"cowrite/internal/domain"
	models "cowrite/internal/domain/models/backup"
	"cowrite/internal/domain/repositories"
	"cowrite/internal/domain/services"
	"cowrite/internal/mediatype"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

// fakeStore is an in-memory database: graph reader, graph writer, media
// catalog and transaction manager in one. Writes made inside ExecTx become
// visible only when the callback succeeds and commitErr is nil.
type fakeStore struct {
	mu       sync.Mutex
	graphs   map[string]*models.Graph
	owners   map[string]string
	media    map[string]models.MediaAsset
	inserted int

	pendingGraphs []*models.Graph
	pendingMedia  []models.MediaAsset

	insertErr error
	commitErr error
	snapshots int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		graphs: map[string]*models.Graph{},
		owners: map[string]string{},
		media:  map[string]models.MediaAsset{},
	}
}

func (f *fakeStore) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.mu.Lock()
	f.pendingGraphs, f.pendingMedia = nil, nil
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.discard()
		return err
	}
	if f.commitErr != nil {
		f.discard()
		return fmt.Errorf("commit transaction: %w", f.commitErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.pendingGraphs {
		f.graphs[g.Project.ID] = g
		f.owners[g.Project.ID] = g.Project.OwnerID
	}
	for _, m := range f.pendingMedia {
		f.media[m.ID] = m
	}
	f.pendingGraphs, f.pendingMedia = nil, nil
	return nil
}

func (f *fakeStore) discard() {
	f.mu.Lock()
	f.pendingGraphs, f.pendingMedia = nil, nil
	f.mu.Unlock()
}

func (f *fakeStore) ExecSnapshot(ctx context.Context, fn repositories.TxFn) error {
	f.mu.Lock()
	f.snapshots++
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeStore) InsertGraph(_ context.Context, g *models.Graph, ownerID string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *g
	stored.Project.OwnerID = ownerID
	stored.MediaAssets = nil
	f.pendingGraphs = append(f.pendingGraphs, &stored)
	f.pendingMedia = append(f.pendingMedia, g.MediaAssets...)
	f.inserted++
	return nil
}

func (f *fakeStore) LoadGraph(_ context.Context, projectID string) (*models.Graph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.graphs[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	out := *g
	out.MediaAssets = []models.MediaAsset{}
	return &out, nil
}

func (f *fakeStore) ListByProject(_ context.Context, projectID string) ([]models.MediaAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.MediaAsset{}
	for _, m := range f.media {
		if m.ProjectID != nil && *m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByIDs(_ context.Context, ids []string) ([]models.MediaAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.MediaAsset{}
	for _, id := range ids {
		if m, ok := f.media[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeBlobs is an in-memory blob store. failOnWrite makes the Nth write
// (1-based) fail.
type fakeBlobs struct {
	mu          sync.Mutex
	objects     map[string][]byte
	writes      int
	deleted     []string
	failOnWrite int
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (b *fakeBlobs) Read(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, blobstore.ErrNotFound)
	}
	return data, nil
}

func (b *fakeBlobs) Write(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.failOnWrite > 0 && b.writes == b.failOnWrite {
		return errors.New("disk full")
	}
	b.objects[key] = data
	return nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBlobs) keysWithPrefix(prefix string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// fakeAuthorizer grants access to owners recorded in the store plus any
// explicit grants.
type fakeAuthorizer struct {
	store  *fakeStore
	grants map[string]bool // projectID + "/" + userID
}

func (a *fakeAuthorizer) CanAccessProject(_ context.Context, userID, projectID string) error {
	a.store.mu.Lock()
	owner := a.store.owners[projectID]
	a.store.mu.Unlock()
	if owner == userID || a.grants[projectID+"/"+userID] {
		return nil
	}
	return fmt.Errorf("access denied to project %s: %w", projectID, domain.ErrForbidden)
}

type indexedDoc struct {
	index  string
	id     string
	fields map[string]any
}

type recordingIndexer struct {
	mu   sync.Mutex
	docs []indexedDoc
	err  error
}

func (r *recordingIndexer) IndexDocument(_ context.Context, index, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, indexedDoc{index, id, fields})
	return r.err
}

type testEnv struct {
	svc     *service
	store   *fakeStore
	blobs   *fakeBlobs
	indexer *recordingIndexer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newFakeStore()
	blobs := newFakeBlobs()
	indexer := &recordingIndexer{}

	var indexerIface services.SearchIndexer = indexer
	svc := newService(Dependencies{
		TxManager:  store,
		Reader:     store,
		Writer:     store,
		Media:      NewMediaResolver(store, blobs, mediatype.MustRegistry(), 4, logger),
		Blobs:      blobs,
		Authorizer: &fakeAuthorizer{store: store, grants: map[string]bool{}},
		Indexer:    indexerIface,
		Logger:     logger,
	}, Options{})
	svc.spawn = func(f func()) { f() }
	svc.now = func() time.Time { return fixedNow }

	return &testEnv{svc: svc, store: store, blobs: blobs, indexer: indexer}
}

// seed stores g as a committed project owned by ownerID.
func (e *testEnv) seed(g *models.Graph, ownerID string) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	stored := *g
	stored.Project.OwnerID = ownerID
	stored.MediaAssets = nil
	e.store.graphs[g.Project.ID] = &stored
	e.store.owners[g.Project.ID] = ownerID
}

// seedMedia stores a media row and its bytes.
func (e *testEnv) seedMedia(m models.MediaAsset, data []byte) {
	e.store.mu.Lock()
	e.store.media[m.ID] = m
	e.store.mu.Unlock()
	if data != nil {
		e.blobs.objects[m.StoragePath] = data
	}
}
