package backup

import "cowrite/internal/jsontree"

type Character struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Role         *string       `json:"role"`
	Profile      jsontree.Tree `json:"profile"`
	Appearance   jsontree.Tree `json:"appearance"`
	Personality  jsontree.Tree `json:"personality"`
	Backstory    *string       `json:"backstory"`
	SpeechSample *string       `json:"speechSample"`
	ImageURL     *string       `json:"imageUrl"`
}

type CharacterStat struct {
	ID           string        `json:"id"`
	CharacterID  string        `json:"characterId"`
	TemplateType string        `json:"templateType"`
	Stats        jsontree.Tree `json:"stats"`
	EpisodeNum   *int          `json:"episodeNum"`
}

type WorldSetting struct {
	ID       string        `json:"id"`
	ParentID *string       `json:"parentId"`
	Category string        `json:"category"`
	Title    string        `json:"title"`
	Content  *string       `json:"content"`
	Metadata jsontree.Tree `json:"metadata"`
}

type Relationship struct {
	ID              string        `json:"id"`
	CharacterAID    string        `json:"characterAId"`
	CharacterBID    string        `json:"characterBId"`
	RelationType    string        `json:"relationType"`
	Description     *string       `json:"description"`
	IsBidirectional bool          `json:"isBidirectional"`
	Metadata        jsontree.Tree `json:"metadata"`
}

type Plot struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	OrderIndex  int           `json:"orderIndex"`
	Metadata    jsontree.Tree `json:"metadata"`
}

type PlotPoint struct {
	ID          string        `json:"id"`
	PlotID      string        `json:"plotId"`
	DocumentID  *string       `json:"documentId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	OrderIndex  int           `json:"orderIndex"`
	Metadata    jsontree.Tree `json:"metadata"`
}

type WritingGoal struct {
	ID           string  `json:"id"`
	GoalType     string  `json:"goalType"`
	TargetWords  int     `json:"targetWords"`
	CurrentWords int     `json:"currentWords"`
	DueDate      *string `json:"dueDate"`
}

type ResearchItem struct {
	ID     string        `json:"id"`
	Query  string        `json:"query"`
	Result jsontree.Tree `json:"result"`
}
