package backup

import (
	"fmt"
	"strings"
	"testing"

	models "cowrite/internal/domain/models/backup"
	"cowrite/internal/jsontree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// sequentialIDs returns an allocator producing new-1, new-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func mustTree(t *testing.T, raw string) jsontree.Tree {
	t.Helper()
	var tree jsontree.Tree
	require.NoError(t, tree.UnmarshalJSON([]byte(raw)))
	return tree
}

func encodeTree(t *testing.T, tree jsontree.Tree) string {
	t.Helper()
	b, err := tree.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func allMedia(string) bool { return true }

func TestRemap_ProjectHeader(t *testing.T) {
	g := &models.Graph{Project: models.Project{
		ID: "p-old", Title: "  My Novel ", WordCount: 12000, IsPublic: true, OwnerID: "someone-else",
	}}

	res := Remap(g, RemapOptions{NewID: sequentialIDs(), OwnerID: "importer"})

	p := res.Graph.Project
	assert.Equal(t, "new-1", p.ID)
	assert.Equal(t, "My Novel (imported)", p.Title)
	assert.Equal(t, 0, p.WordCount)
	assert.False(t, p.IsPublic)
	assert.Equal(t, "importer", p.OwnerID)
	assert.Equal(t, "{}", encodeTree(t, p.Settings))

	newID, ok := res.IDs.Lookup(models.EntityProject, "p-old")
	require.True(t, ok)
	assert.Equal(t, "new-1", newID)

	// input untouched
	assert.Equal(t, "p-old", g.Project.ID)
	assert.True(t, g.Project.IsPublic)
}

func TestRemap_UntitledAndLongTitles(t *testing.T) {
	res := Remap(&models.Graph{}, RemapOptions{NewID: sequentialIDs()})
	assert.Equal(t, "Untitled project (imported)", res.Graph.Project.Title)

	long := strings.Repeat("é", 400)
	res = Remap(&models.Graph{Project: models.Project{Title: long}}, RemapOptions{NewID: sequentialIDs()})
	assert.Equal(t, 255, len([]rune(res.Graph.Project.Title)))
	assert.True(t, strings.HasSuffix(res.Graph.Project.Title, ImportedTitleSuffix))
}

func TestRemap_ReferencesResolveToNewIDs(t *testing.T) {
	g := &models.Graph{
		Project: models.Project{ID: "p"},
		Documents: []models.Document{
			{ID: "d1", Title: "Part"},
			{ID: "d2", ParentID: strPtr("d1"), Title: "Chapter"},
		},
		DocumentVersions: []models.DocumentVersion{{ID: "v1", DocumentID: "d2", Content: "draft"}},
		Characters:       []models.Character{{ID: "c1", Name: "Ann"}, {ID: "c2", Name: "Bo"}},
		CharacterStats:   []models.CharacterStat{{ID: "s1", CharacterID: "c2", TemplateType: "rpg"}},
		Relationships:    []models.Relationship{{ID: "r1", CharacterAID: "c1", CharacterBID: "c2", RelationType: "rival"}},
		Plots:            []models.Plot{{ID: "pl1", Title: "Main"}},
		PlotPoints:       []models.PlotPoint{{ID: "pp1", PlotID: "pl1", DocumentID: strPtr("d2"), Title: "Twist"}},
		Translations:     []models.Translation{{ID: "t1", DocumentID: "d1", TargetLanguage: "ko"}},
		AudioAssets:      []models.AudioAsset{{ID: "a1", DocumentID: "d1"}},
		Storyboards:      []models.Storyboard{{ID: "sb1", DocumentID: "d2"}},
		ReaderPredictions: []models.ReaderPrediction{
			{ID: "rp1", DocumentID: "d2"},
		},
		DocumentComments: []models.DocumentComment{{ID: "dc1", DocumentID: "d1", Content: "nice"}},
		WritingGoals:     []models.WritingGoal{{ID: "g1", GoalType: "daily", TargetWords: 500}},
		ResearchItems:    []models.ResearchItem{{ID: "ri1", Query: "castles"}},
	}

	res := Remap(g, RemapOptions{NewID: sequentialIDs(), OwnerID: "u"})
	out := res.Graph
	ids := res.IDs

	lookup := func(et models.EntityType, old string) string {
		v, ok := ids.Lookup(et, old)
		require.True(t, ok, "%s %s not mapped", et, old)
		return v
	}

	require.Len(t, out.Documents, 2)
	assert.Equal(t, lookup(models.EntityDocument, "d1"), *out.Documents[1].ParentID)
	assert.Equal(t, lookup(models.EntityDocument, "d2"), out.DocumentVersions[0].DocumentID)
	assert.Equal(t, lookup(models.EntityCharacter, "c2"), out.CharacterStats[0].CharacterID)
	assert.Equal(t, lookup(models.EntityCharacter, "c1"), out.Relationships[0].CharacterAID)
	assert.Equal(t, lookup(models.EntityCharacter, "c2"), out.Relationships[0].CharacterBID)
	assert.Equal(t, lookup(models.EntityPlot, "pl1"), out.PlotPoints[0].PlotID)
	assert.Equal(t, lookup(models.EntityDocument, "d2"), *out.PlotPoints[0].DocumentID)
	assert.Equal(t, lookup(models.EntityDocument, "d1"), out.Translations[0].DocumentID)
	assert.Equal(t, lookup(models.EntityDocument, "d1"), out.AudioAssets[0].DocumentID)
	assert.Equal(t, lookup(models.EntityDocument, "d2"), out.Storyboards[0].DocumentID)
	assert.Equal(t, lookup(models.EntityDocument, "d2"), out.ReaderPredictions[0].DocumentID)
	assert.Equal(t, lookup(models.EntityDocument, "d1"), out.DocumentComments[0].DocumentID)
	assert.Empty(t, res.Dropped)

	// every new id is distinct and none reuses an old one
	seen := map[string]bool{}
	for _, m := range ids {
		for old, newID := range m {
			assert.NotEqual(t, old, newID)
			assert.False(t, seen[newID], "id %s allocated twice", newID)
			seen[newID] = true
		}
	}
	assert.Equal(t, 1, out.Counts()[models.EntityWritingGoal])
	assert.Equal(t, 1, out.Counts()[models.EntityResearchItem])
}

func TestRemap_DanglingReferences(t *testing.T) {
	g := &models.Graph{
		Project:   models.Project{ID: "p"},
		Documents: []models.Document{{ID: "d1", ParentID: strPtr("ghost")}},
		Plots:     []models.Plot{{ID: "pl1"}},
		PlotPoints: []models.PlotPoint{
			{ID: "pp-ok", PlotID: "pl1", DocumentID: strPtr("missing-doc")},
			{ID: "pp-orphan", PlotID: "missing-plot"},
		},
		CharacterStats:   []models.CharacterStat{{ID: "s1", CharacterID: "nobody"}},
		Relationships:    []models.Relationship{{ID: "r1", CharacterAID: "x", CharacterBID: "y"}},
		DocumentVersions: []models.DocumentVersion{{ID: "v1", DocumentID: "gone"}},
	}

	res := Remap(g, RemapOptions{NewID: sequentialIDs()})

	require.Len(t, res.Graph.Documents, 1)
	assert.Nil(t, res.Graph.Documents[0].ParentID)

	require.Len(t, res.Graph.PlotPoints, 1)
	assert.Nil(t, res.Graph.PlotPoints[0].DocumentID)

	assert.Empty(t, res.Graph.CharacterStats)
	assert.Empty(t, res.Graph.Relationships)
	assert.Empty(t, res.Graph.DocumentVersions)
	assert.Equal(t, map[models.EntityType]int{
		models.EntityPlotPoint:       1,
		models.EntityCharacterStat:   1,
		models.EntityRelationship:    1,
		models.EntityDocumentVersion: 1,
	}, res.Dropped)
}

func TestRemap_TreeOrderingAndCycles(t *testing.T) {
	g := &models.Graph{
		Project: models.Project{ID: "p"},
		Documents: []models.Document{
			{ID: "child", ParentID: strPtr("parent")},
			{ID: "parent", ParentID: strPtr("root")},
			{ID: "root"},
			{ID: "self", ParentID: strPtr("self")},
			{ID: "a", ParentID: strPtr("b")},
			{ID: "b", ParentID: strPtr("a")},
		},
	}

	res := Remap(g, RemapOptions{NewID: sequentialIDs()})
	docs := res.Graph.Documents
	require.Len(t, docs, 6)

	pos := map[string]int{}
	for i, d := range docs {
		pos[d.ID] = i
	}
	for _, d := range docs {
		if d.ParentID != nil {
			p, ok := pos[*d.ParentID]
			require.True(t, ok, "parent of %s not in output", d.ID)
			assert.Less(t, p, pos[d.ID], "parent of %s inserted after it", d.ID)
			assert.NotEqual(t, d.ID, *d.ParentID)
		}
	}

	self, _ := res.IDs.Lookup(models.EntityDocument, "self")
	assert.Nil(t, docs[pos[self]].ParentID)

	// exactly one side of the a<->b cycle loses its parent
	a, _ := res.IDs.Lookup(models.EntityDocument, "a")
	b, _ := res.IDs.Lookup(models.EntityDocument, "b")
	nilParents := 0
	for _, id := range []string{a, b} {
		if docs[pos[id]].ParentID == nil {
			nilParents++
		}
	}
	assert.Equal(t, 1, nilParents)
}

func TestRemap_WorldSettingTree(t *testing.T) {
	g := &models.Graph{
		Project: models.Project{ID: "p"},
		WorldSettings: []models.WorldSetting{
			{ID: "city", ParentID: strPtr("country"), Category: "place", Title: "City"},
			{ID: "country", Category: "place", Title: "Country"},
		},
	}
	res := Remap(g, RemapOptions{NewID: sequentialIDs()})
	ws := res.Graph.WorldSettings
	require.Len(t, ws, 2)
	assert.Equal(t, "Country", ws[0].Title)
	assert.Equal(t, ws[0].ID, *ws[1].ParentID)
}

func TestRemap_DuplicateIDsKeepFirst(t *testing.T) {
	g := &models.Graph{
		Project:    models.Project{ID: "p"},
		Characters: []models.Character{{ID: "c1", Name: "first"}, {ID: "c1", Name: "second"}},
	}
	res := Remap(g, RemapOptions{NewID: sequentialIDs()})
	require.Len(t, res.Graph.Characters, 1)
	assert.Equal(t, "first", res.Graph.Characters[0].Name)
	assert.Equal(t, 1, res.Dropped[models.EntityCharacter])
}

func TestRemap_RecordsWithoutIDsGetFreshIDs(t *testing.T) {
	g := &models.Graph{
		Project:   models.Project{ID: "p"},
		Documents: []models.Document{{Title: "no id"}, {Title: "also none"}},
	}
	res := Remap(g, RemapOptions{NewID: sequentialIDs()})
	require.Len(t, res.Graph.Documents, 2)
	assert.NotEmpty(t, res.Graph.Documents[0].ID)
	assert.NotEqual(t, res.Graph.Documents[0].ID, res.Graph.Documents[1].ID)
}

func TestRemap_RewritesMediaRefsAtAnyDepth(t *testing.T) {
	g := &models.Graph{
		Project: models.Project{
			ID:       "p",
			CoverURL: strPtr("/api/media/m1"),
			Settings: mustTree(t, `{"theme":{"banner":{"src":"/media/m1"}}}`),
		},
		Documents: []models.Document{{
			ID:      "d1",
			Content: strPtr(`<img src="/api/media/m1"><img src="/media/m2">`),
		}},
		Characters: []models.Character{{
			ID:      "c1",
			Profile: mustTree(t, `{"a":{"b":{"c":["/media/m1", 3, {"d":"/media/m1 twice /media/m1"}]}}}`),
		}},
		DocumentComments: []models.DocumentComment{{
			ID: "dc1", DocumentID: "d1", Content: "x",
			Position: mustTree(t, `{"anchor":"/media/m1"}`),
		}},
		MediaAssets: []models.MediaAsset{
			{ID: "m1", ProjectID: strPtr("p"), MimeType: "image/png"},
			{ID: "m2", MimeType: "image/png"},
		},
	}

	res := Remap(g, RemapOptions{
		NewID:          sequentialIDs(),
		MediaAvailable: func(id string) bool { return id == "m1" },
	})
	m1, ok := res.IDs.Lookup(models.EntityMediaAsset, "m1")
	require.True(t, ok)
	_, ok = res.IDs.Lookup(models.EntityMediaAsset, "m2")
	assert.False(t, ok, "media without bytes must not be mapped")

	out := res.Graph
	assert.Equal(t, "/api/media/"+m1, *out.Project.CoverURL)
	assert.Equal(t, `{"theme":{"banner":{"src":"/media/`+m1+`"}}}`, encodeTree(t, out.Project.Settings))
	assert.Equal(t, `<img src="/api/media/`+m1+`"><img src="/media/m2">`, *out.Documents[0].Content)
	assert.Equal(t,
		`{"a":{"b":{"c":["/media/`+m1+`",3,{"d":"/media/`+m1+` twice /media/`+m1+`"}]}}}`,
		encodeTree(t, out.Characters[0].Profile))
	assert.Equal(t, `{"anchor":"/media/`+m1+`"}`, encodeTree(t, out.DocumentComments[0].Position))

	require.Len(t, out.MediaAssets, 1)
	media := out.MediaAssets[0]
	assert.Equal(t, m1, media.ID)
	assert.Equal(t, "/api/media/"+m1, media.URL)
	assert.Equal(t, out.Project.ID, *media.ProjectID)
	assert.Equal(t, "m1", res.MediaOrigins[m1])
	assert.Equal(t, 1, res.Dropped[models.EntityMediaAsset])
}

func TestRemap_NullJSONFields(t *testing.T) {
	g := &models.Graph{
		Project:          models.Project{ID: "p"},
		ResearchItems:    []models.ResearchItem{{ID: "r1", Query: "q"}},
		DocumentComments: []models.DocumentComment{{ID: "c1", DocumentID: "d1"}},
		Documents:        []models.Document{{ID: "d1"}},
	}
	res := Remap(g, RemapOptions{NewID: sequentialIDs(), MediaAvailable: allMedia})
	assert.Equal(t, "{}", encodeTree(t, res.Graph.ResearchItems[0].Result))
	assert.True(t, res.Graph.DocumentComments[0].Position.IsNull())
}

func TestRemap_DocumentColumnDefaults(t *testing.T) {
	g := &models.Graph{
		Project: models.Project{ID: "p", Title: "Drafts"},
		Documents: []models.Document{
			{ID: "d1", Title: "Bare"},
			{ID: "d2", Title: "Kept", Type: "scene", Status: "final"},
		},
	}

	out := Remap(g, RemapOptions{NewID: sequentialIDs(), OwnerID: "u"}).Graph
	require.Len(t, out.Documents, 2)
	assert.Equal(t, models.DefaultDocumentType, out.Documents[0].Type)
	assert.Equal(t, models.DefaultDocumentStatus, out.Documents[0].Status)
	assert.Equal(t, "scene", out.Documents[1].Type)
	assert.Equal(t, "final", out.Documents[1].Status)
}
