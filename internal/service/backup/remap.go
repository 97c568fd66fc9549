package backup

import (
	"strings"
	"unicode/utf8"

	"cowrite/internal/config"
	models "cowrite/internal/domain/models/backup"
	"cowrite/internal/jsontree"

	"github.com/google/uuid"
)

// ImportedTitleSuffix marks projects created from an archive.
const ImportedTitleSuffix = " (imported)"

// IDMap holds old → new identifiers per entity type.
type IDMap map[models.EntityType]map[string]string

// Lookup returns the new id for an old one.
func (m IDMap) Lookup(t models.EntityType, oldID string) (string, bool) {
	newID, ok := m[t][oldID]
	return newID, ok
}

func (m IDMap) set(t models.EntityType, oldID, newID string) {
	if m[t] == nil {
		m[t] = make(map[string]string)
	}
	m[t][oldID] = newID
}

// RemapOptions configures Remap.
type RemapOptions struct {
	// NewID allocates identifiers. Defaults to uuid.NewString.
	NewID func() string
	// MediaAvailable reports whether bytes for an archived media id can be
	// restored. Media without bytes get no mapping and no row.
	MediaAvailable func(oldID string) bool
	// OwnerID becomes the owner of the new project.
	OwnerID string
}

// RemapResult is a graph ready for insertion.
type RemapResult struct {
	Graph *models.Graph
	IDs   IDMap
	// Dropped counts records left out because a required reference did not
	// resolve or the record duplicated an earlier id.
	Dropped map[models.EntityType]int
	// MediaOrigins maps each new media id to its id inside the archive.
	MediaOrigins map[string]string
}

// Remap assigns fresh identifiers to every record of g and rewrites every
// reference to match. Required references that do not resolve drop the
// record; optional ones become null. Media references embedded in text and
// JSON values are rewritten at any depth. g is not modified.
func Remap(g *models.Graph, opts RemapOptions) *RemapResult {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	available := opts.MediaAvailable
	if available == nil {
		available = func(string) bool { return false }
	}

	r := &remapper{
		ids:     IDMap{},
		dropped: map[models.EntityType]int{},
		newID:   newID,
	}

	// Allocation pass: every identity gets its new id before any reference
	// is resolved, so forward references work.
	r.ids.set(models.EntityProject, g.Project.ID, newID())
	for _, d := range g.Documents {
		r.allocate(models.EntityDocument, d.ID)
	}
	for _, c := range g.Characters {
		r.allocate(models.EntityCharacter, c.ID)
	}
	for _, w := range g.WorldSettings {
		r.allocate(models.EntityWorldSetting, w.ID)
	}
	for _, p := range g.Plots {
		r.allocate(models.EntityPlot, p.ID)
	}
	for _, m := range g.MediaAssets {
		if m.ID != "" && available(m.ID) {
			r.allocate(models.EntityMediaAsset, m.ID)
		}
	}

	out := &models.Graph{}
	out.Project = r.project(g.Project, opts.OwnerID)

	out.Documents = remapEach(r, models.EntityDocument, g.Documents, func(d models.Document) (models.Document, bool) {
		id, ok := r.identity(models.EntityDocument, d.ID)
		if !ok {
			return d, false
		}
		d.ID = id
		d.ParentID = r.optional(models.EntityDocument, d.ParentID)
		if d.Type == "" {
			d.Type = models.DefaultDocumentType
		}
		if d.Status == "" {
			d.Status = models.DefaultDocumentStatus
		}
		d.Title = r.text(d.Title)
		d.Content = r.textPtr(d.Content)
		d.Notes = r.textPtr(d.Notes)
		return d, true
	})
	out.Documents = orderTree(out.Documents,
		func(d *models.Document) string { return d.ID },
		func(d *models.Document) **string { return &d.ParentID },
	)

	out.DocumentVersions = remapEach(r, models.EntityDocumentVersion, g.DocumentVersions, func(v models.DocumentVersion) (models.DocumentVersion, bool) {
		docID, ok := r.ids.Lookup(models.EntityDocument, v.DocumentID)
		if !ok {
			return v, false
		}
		v.ID = r.fresh(models.EntityDocumentVersion, v.ID)
		v.DocumentID = docID
		v.Content = r.text(v.Content)
		v.VersionName = r.textPtr(v.VersionName)
		return v, true
	})

	out.Characters = remapEach(r, models.EntityCharacter, g.Characters, func(c models.Character) (models.Character, bool) {
		id, ok := r.identity(models.EntityCharacter, c.ID)
		if !ok {
			return c, false
		}
		c.ID = id
		c.Name = r.text(c.Name)
		c.Role = r.textPtr(c.Role)
		c.Profile = r.object(c.Profile)
		c.Appearance = r.object(c.Appearance)
		c.Personality = r.object(c.Personality)
		c.Backstory = r.textPtr(c.Backstory)
		c.SpeechSample = r.textPtr(c.SpeechSample)
		c.ImageURL = r.textPtr(c.ImageURL)
		return c, true
	})

	out.CharacterStats = remapEach(r, models.EntityCharacterStat, g.CharacterStats, func(s models.CharacterStat) (models.CharacterStat, bool) {
		charID, ok := r.ids.Lookup(models.EntityCharacter, s.CharacterID)
		if !ok {
			return s, false
		}
		s.ID = r.fresh(models.EntityCharacterStat, s.ID)
		s.CharacterID = charID
		s.Stats = r.object(s.Stats)
		return s, true
	})

	out.WorldSettings = remapEach(r, models.EntityWorldSetting, g.WorldSettings, func(w models.WorldSetting) (models.WorldSetting, bool) {
		id, ok := r.identity(models.EntityWorldSetting, w.ID)
		if !ok {
			return w, false
		}
		w.ID = id
		w.ParentID = r.optional(models.EntityWorldSetting, w.ParentID)
		w.Title = r.text(w.Title)
		w.Content = r.textPtr(w.Content)
		w.Metadata = r.object(w.Metadata)
		return w, true
	})
	out.WorldSettings = orderTree(out.WorldSettings,
		func(w *models.WorldSetting) string { return w.ID },
		func(w *models.WorldSetting) **string { return &w.ParentID },
	)

	out.Relationships = remapEach(r, models.EntityRelationship, g.Relationships, func(rel models.Relationship) (models.Relationship, bool) {
		a, okA := r.ids.Lookup(models.EntityCharacter, rel.CharacterAID)
		b, okB := r.ids.Lookup(models.EntityCharacter, rel.CharacterBID)
		if !okA || !okB {
			return rel, false
		}
		rel.ID = r.fresh(models.EntityRelationship, rel.ID)
		rel.CharacterAID = a
		rel.CharacterBID = b
		rel.Description = r.textPtr(rel.Description)
		rel.Metadata = r.object(rel.Metadata)
		return rel, true
	})

	out.Plots = remapEach(r, models.EntityPlot, g.Plots, func(p models.Plot) (models.Plot, bool) {
		id, ok := r.identity(models.EntityPlot, p.ID)
		if !ok {
			return p, false
		}
		p.ID = id
		p.Title = r.text(p.Title)
		p.Description = r.textPtr(p.Description)
		p.Metadata = r.object(p.Metadata)
		return p, true
	})

	out.PlotPoints = remapEach(r, models.EntityPlotPoint, g.PlotPoints, func(pp models.PlotPoint) (models.PlotPoint, bool) {
		plotID, ok := r.ids.Lookup(models.EntityPlot, pp.PlotID)
		if !ok {
			return pp, false
		}
		pp.ID = r.fresh(models.EntityPlotPoint, pp.ID)
		pp.PlotID = plotID
		pp.DocumentID = r.optional(models.EntityDocument, pp.DocumentID)
		pp.Title = r.text(pp.Title)
		pp.Description = r.textPtr(pp.Description)
		pp.Metadata = r.object(pp.Metadata)
		return pp, true
	})

	out.WritingGoals = remapEach(r, models.EntityWritingGoal, g.WritingGoals, func(wg models.WritingGoal) (models.WritingGoal, bool) {
		wg.ID = r.fresh(models.EntityWritingGoal, wg.ID)
		return wg, true
	})

	out.ResearchItems = remapEach(r, models.EntityResearchItem, g.ResearchItems, func(ri models.ResearchItem) (models.ResearchItem, bool) {
		ri.ID = r.fresh(models.EntityResearchItem, ri.ID)
		ri.Query = r.text(ri.Query)
		ri.Result = r.object(ri.Result)
		return ri, true
	})

	out.Translations = remapEach(r, models.EntityTranslation, g.Translations, func(tr models.Translation) (models.Translation, bool) {
		docID, ok := r.ids.Lookup(models.EntityDocument, tr.DocumentID)
		if !ok {
			return tr, false
		}
		tr.ID = r.fresh(models.EntityTranslation, tr.ID)
		tr.DocumentID = docID
		tr.Content = r.textPtr(tr.Content)
		return tr, true
	})

	out.AudioAssets = remapEach(r, models.EntityAudioAsset, g.AudioAssets, func(a models.AudioAsset) (models.AudioAsset, bool) {
		docID, ok := r.ids.Lookup(models.EntityDocument, a.DocumentID)
		if !ok {
			return a, false
		}
		a.ID = r.fresh(models.EntityAudioAsset, a.ID)
		a.DocumentID = docID
		a.Script = r.textPtr(a.Script)
		a.AudioURL = r.textPtr(a.AudioURL)
		return a, true
	})

	out.Storyboards = remapEach(r, models.EntityStoryboard, g.Storyboards, func(sb models.Storyboard) (models.Storyboard, bool) {
		docID, ok := r.ids.Lookup(models.EntityDocument, sb.DocumentID)
		if !ok {
			return sb, false
		}
		sb.ID = r.fresh(models.EntityStoryboard, sb.ID)
		sb.DocumentID = docID
		sb.Content = r.object(sb.Content)
		return sb, true
	})

	out.ReaderPredictions = remapEach(r, models.EntityReaderPrediction, g.ReaderPredictions, func(rp models.ReaderPrediction) (models.ReaderPrediction, bool) {
		docID, ok := r.ids.Lookup(models.EntityDocument, rp.DocumentID)
		if !ok {
			return rp, false
		}
		rp.ID = r.fresh(models.EntityReaderPrediction, rp.ID)
		rp.DocumentID = docID
		rp.Result = r.object(rp.Result)
		return rp, true
	})

	out.DocumentComments = remapEach(r, models.EntityDocumentComment, g.DocumentComments, func(c models.DocumentComment) (models.DocumentComment, bool) {
		docID, ok := r.ids.Lookup(models.EntityDocument, c.DocumentID)
		if !ok {
			return c, false
		}
		c.ID = r.fresh(models.EntityDocumentComment, c.ID)
		c.DocumentID = docID
		c.Content = r.text(c.Content)
		c.Position = r.tree(c.Position)
		return c, true
	})

	origins := make(map[string]string)
	out.MediaAssets = remapEach(r, models.EntityMediaAsset, g.MediaAssets, func(m models.MediaAsset) (models.MediaAsset, bool) {
		if m.ID == "" {
			return m, false
		}
		id, ok := r.identity(models.EntityMediaAsset, m.ID)
		if !ok {
			return m, false
		}
		origins[id] = m.ID
		m.ID = id
		if m.ProjectID != nil && *m.ProjectID != "" {
			projectID := out.Project.ID
			m.ProjectID = &projectID
		} else {
			m.ProjectID = nil
		}
		m.URL = "/api/media/" + id
		m.StoragePath = ""
		return m, true
	})

	return &RemapResult{
		Graph:        out,
		IDs:          r.ids,
		Dropped:      r.dropped,
		MediaOrigins: origins,
	}
}

type remapper struct {
	ids     IDMap
	dropped map[models.EntityType]int
	newID   func() string
	// claimed tracks identities already emitted, so duplicate ids in a
	// hand-edited manifest cannot produce two rows with one key.
	claimed map[models.EntityType]map[string]bool
}

// allocate maps oldID to a fresh id unless it is empty or already mapped.
func (r *remapper) allocate(t models.EntityType, oldID string) {
	if oldID == "" {
		return
	}
	if _, ok := r.ids.Lookup(t, oldID); ok {
		return
	}
	r.ids.set(t, oldID, r.newID())
}

// identity returns the pre-allocated id for a referenceable record. The
// second occurrence of an id reports false. Records without an id get a
// fresh, unreferenceable id.
func (r *remapper) identity(t models.EntityType, oldID string) (string, bool) {
	if oldID == "" {
		return r.newID(), true
	}
	newID, ok := r.ids.Lookup(t, oldID)
	if !ok {
		return "", false
	}
	if r.claimed == nil {
		r.claimed = make(map[models.EntityType]map[string]bool)
	}
	if r.claimed[t] == nil {
		r.claimed[t] = make(map[string]bool)
	}
	if r.claimed[t][oldID] {
		return "", false
	}
	r.claimed[t][oldID] = true
	return newID, true
}

// fresh allocates an id for a record nothing else references.
func (r *remapper) fresh(t models.EntityType, oldID string) string {
	newID := r.newID()
	if oldID != "" {
		r.ids.set(t, oldID, newID)
	}
	return newID
}

// optional resolves a nullable reference; unresolved references become nil.
func (r *remapper) optional(t models.EntityType, oldID *string) *string {
	if oldID == nil {
		return nil
	}
	newID, ok := r.ids.Lookup(t, *oldID)
	if !ok {
		return nil
	}
	return &newID
}

func (r *remapper) text(s string) string {
	return RewriteMediaRefs(s, r.ids[models.EntityMediaAsset])
}

func (r *remapper) textPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := r.text(*s)
	return &out
}

// tree rewrites a nullable JSON value.
func (r *remapper) tree(t jsontree.Tree) jsontree.Tree {
	return t.MapStrings(r.text)
}

// object rewrites a JSON value stored in a NOT NULL object column.
func (r *remapper) object(t jsontree.Tree) jsontree.Tree {
	return r.tree(t.OrEmptyObject())
}

func (r *remapper) project(p models.Project, ownerID string) models.Project {
	newID, _ := r.ids.Lookup(models.EntityProject, p.ID)

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Untitled project"
	}
	if limit := config.MaxProjectTitleLength - utf8.RuneCountInString(ImportedTitleSuffix); utf8.RuneCountInString(title) > limit {
		title = string([]rune(title)[:limit])
	}
	return models.Project{
		ID:          newID,
		Title:       r.text(title) + ImportedTitleSuffix,
		Description: r.textPtr(p.Description),
		Genre:       r.textPtr(p.Genre),
		CoverURL:    r.textPtr(p.CoverURL),
		Settings:    r.object(p.Settings),
		WordCount:   0,
		IsPublic:    false,
		OwnerID:     ownerID,
	}
}

// remapEach applies fn to every record, counting the ones it rejects.
func remapEach[T any](r *remapper, t models.EntityType, in []T, fn func(T) (T, bool)) []T {
	out := make([]T, 0, len(in))
	for _, rec := range in {
		mapped, ok := fn(rec)
		if !ok {
			r.dropped[t]++
			continue
		}
		out = append(out, mapped)
	}
	return out
}

// orderTree returns items with every parent before its children. Parents
// that are not in items are cleared, and a cycle is broken by clearing the
// parent of the node that closes it. Relative order is otherwise kept.
func orderTree[T any](items []T, id func(*T) string, parent func(*T) **string) []T {
	pos := make(map[string]int, len(items))
	for i := range items {
		pos[id(&items[i])] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(items))
	out := make([]T, 0, len(items))

	var visit func(i int)
	visit = func(i int) {
		state[i] = visiting
		p := parent(&items[i])
		if *p != nil {
			j, ok := pos[**p]
			switch {
			case !ok:
				*p = nil
			case state[j] == unvisited:
				visit(j)
			case state[j] == visiting:
				*p = nil
			}
		}
		state[i] = done
		out = append(out, items[i])
	}

	for i := range items {
		if state[i] == unvisited {
			visit(i)
		}
	}
	return out
}
