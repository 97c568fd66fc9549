package backup

import "time"

// ManifestVersion is the only archive format version accepted on import.
const ManifestVersion = 1

// EntityType names one kind of record in a project graph.
type EntityType string

const (
	EntityProject          EntityType = "project"
	EntityDocument         EntityType = "document"
	EntityDocumentVersion  EntityType = "documentVersion"
	EntityCharacter        EntityType = "character"
	EntityCharacterStat    EntityType = "characterStat"
	EntityWorldSetting     EntityType = "worldSetting"
	EntityRelationship     EntityType = "relationship"
	EntityPlot             EntityType = "plot"
	EntityPlotPoint        EntityType = "plotPoint"
	EntityWritingGoal      EntityType = "writingGoal"
	EntityResearchItem     EntityType = "researchItem"
	EntityTranslation      EntityType = "translation"
	EntityAudioAsset       EntityType = "audioAsset"
	EntityStoryboard       EntityType = "storyboard"
	EntityReaderPrediction EntityType = "readerPrediction"
	EntityDocumentComment  EntityType = "documentComment"
	EntityMediaAsset       EntityType = "mediaAsset"
)

// Graph is every record scoped to one project.
type Graph struct {
	Project           Project            `json:"project"`
	Documents         []Document         `json:"documents"`
	DocumentVersions  []DocumentVersion  `json:"documentVersions"`
	Characters        []Character        `json:"characters"`
	CharacterStats    []CharacterStat    `json:"characterStats"`
	WorldSettings     []WorldSetting     `json:"worldSettings"`
	Relationships     []Relationship     `json:"relationships"`
	Plots             []Plot             `json:"plots"`
	PlotPoints        []PlotPoint        `json:"plotPoints"`
	WritingGoals      []WritingGoal      `json:"writingGoals"`
	ResearchItems     []ResearchItem     `json:"researchItems"`
	Translations      []Translation      `json:"translations"`
	AudioAssets       []AudioAsset       `json:"audioAssets"`
	Storyboards       []Storyboard       `json:"storyboards"`
	ReaderPredictions []ReaderPrediction `json:"readerPredictions"`
	DocumentComments  []DocumentComment  `json:"documentComments"`
	MediaAssets       []MediaAsset       `json:"mediaAssets"`
}

// Manifest is the backup.json document at the root of an archive.
type Manifest struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Graph
}

// Counts returns the number of records per entity type.
func (g *Graph) Counts() map[EntityType]int {
	return map[EntityType]int{
		EntityDocument:         len(g.Documents),
		EntityDocumentVersion:  len(g.DocumentVersions),
		EntityCharacter:        len(g.Characters),
		EntityCharacterStat:    len(g.CharacterStats),
		EntityWorldSetting:     len(g.WorldSettings),
		EntityRelationship:     len(g.Relationships),
		EntityPlot:             len(g.Plots),
		EntityPlotPoint:        len(g.PlotPoints),
		EntityWritingGoal:      len(g.WritingGoals),
		EntityResearchItem:     len(g.ResearchItems),
		EntityTranslation:      len(g.Translations),
		EntityAudioAsset:       len(g.AudioAssets),
		EntityStoryboard:       len(g.Storyboards),
		EntityReaderPrediction: len(g.ReaderPredictions),
		EntityDocumentComment:  len(g.DocumentComments),
		EntityMediaAsset:       len(g.MediaAssets),
	}
}

// EachText calls fn for every free-text value in the graph, including strings
// nested inside JSON fields. Media assets are not visited.
func (g *Graph) EachText(fn func(string)) {
	str := func(s string) {
		if s != "" {
			fn(s)
		}
	}
	opt := func(s *string) {
		if s != nil {
			str(*s)
		}
	}

	p := &g.Project
	str(p.Title)
	opt(p.Description)
	opt(p.Genre)
	opt(p.CoverURL)
	p.Settings.WalkStrings(fn)

	for i := range g.Documents {
		d := &g.Documents[i]
		str(d.Title)
		opt(d.Content)
		opt(d.Notes)
	}
	for i := range g.DocumentVersions {
		v := &g.DocumentVersions[i]
		str(v.Content)
		opt(v.VersionName)
	}
	for i := range g.Characters {
		c := &g.Characters[i]
		str(c.Name)
		opt(c.Role)
		c.Profile.WalkStrings(fn)
		c.Appearance.WalkStrings(fn)
		c.Personality.WalkStrings(fn)
		opt(c.Backstory)
		opt(c.SpeechSample)
		opt(c.ImageURL)
	}
	for i := range g.CharacterStats {
		g.CharacterStats[i].Stats.WalkStrings(fn)
	}
	for i := range g.WorldSettings {
		w := &g.WorldSettings[i]
		str(w.Title)
		opt(w.Content)
		w.Metadata.WalkStrings(fn)
	}
	for i := range g.Relationships {
		r := &g.Relationships[i]
		opt(r.Description)
		r.Metadata.WalkStrings(fn)
	}
	for i := range g.Plots {
		p := &g.Plots[i]
		str(p.Title)
		opt(p.Description)
		p.Metadata.WalkStrings(fn)
	}
	for i := range g.PlotPoints {
		pp := &g.PlotPoints[i]
		str(pp.Title)
		opt(pp.Description)
		pp.Metadata.WalkStrings(fn)
	}
	for i := range g.ResearchItems {
		r := &g.ResearchItems[i]
		str(r.Query)
		r.Result.WalkStrings(fn)
	}
	for i := range g.Translations {
		opt(g.Translations[i].Content)
	}
	for i := range g.AudioAssets {
		a := &g.AudioAssets[i]
		opt(a.Script)
		opt(a.AudioURL)
	}
	for i := range g.Storyboards {
		g.Storyboards[i].Content.WalkStrings(fn)
	}
	for i := range g.ReaderPredictions {
		g.ReaderPredictions[i].Result.WalkStrings(fn)
	}
	for i := range g.DocumentComments {
		c := &g.DocumentComments[i]
		str(c.Content)
		c.Position.WalkStrings(fn)
	}
}
