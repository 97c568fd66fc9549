package backup

import (
	"context"
	"time"

	models "cowrite/internal/domain/models/backup"
)

// Search indices fed after an import commits.
const (
	IndexProjects      = "projects"
	IndexDocuments     = "documents"
	IndexCharacters    = "characters"
	IndexWorldSettings = "world_settings"
	IndexPlots         = "plots"
)

type searchEntry struct {
	index  string
	id     string
	fields map[string]any
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// searchEntries lists the documents to index for a freshly imported graph.
func searchEntries(g *models.Graph, ownerID string) []searchEntry {
	p := g.Project
	entries := []searchEntry{{
		index: IndexProjects,
		id:    p.ID,
		fields: map[string]any{
			"id":          p.ID,
			"title":       p.Title,
			"description": p.Description,
			"genre":       p.Genre,
			"ownerId":     ownerID,
		},
	}}

	for _, d := range g.Documents {
		entries = append(entries, searchEntry{IndexDocuments, d.ID, map[string]any{
			"id":        d.ID,
			"projectId": p.ID,
			"title":     d.Title,
			"content":   deref(d.Content),
		}})
	}
	for _, c := range g.Characters {
		entries = append(entries, searchEntry{IndexCharacters, c.ID, map[string]any{
			"id":        c.ID,
			"projectId": p.ID,
			"name":      c.Name,
			"role":      c.Role,
		}})
	}
	for _, w := range g.WorldSettings {
		entries = append(entries, searchEntry{IndexWorldSettings, w.ID, map[string]any{
			"id":        w.ID,
			"projectId": p.ID,
			"title":     w.Title,
			"content":   deref(w.Content),
			"category":  w.Category,
		}})
	}
	for _, pl := range g.Plots {
		entries = append(entries, searchEntry{IndexPlots, pl.ID, map[string]any{
			"id":          pl.ID,
			"projectId":   p.ID,
			"title":       pl.Title,
			"description": deref(pl.Description),
		}})
	}
	return entries
}

// indexImported pushes the imported graph to the search indexer. Failures are
// logged per document and never reach the caller.
func (s *service) indexImported(ctx context.Context, g *models.Graph, ownerID string) {
	if s.indexer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.searchTimeout)
	defer cancel()

	start := time.Now()
	failed := 0
	entries := searchEntries(g, ownerID)
	for _, e := range entries {
		if err := s.indexer.IndexDocument(ctx, e.index, e.id, e.fields); err != nil {
			failed++
			s.logger.Warn("search indexing failed",
				"index", e.index,
				"id", e.id,
				"error", err,
			)
		}
	}
	s.logger.Debug("search indexing finished",
		"project_id", g.Project.ID,
		"documents", len(entries),
		"failed", failed,
		"duration", time.Since(start),
	)
}
