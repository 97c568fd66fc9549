package backup

import (
	"time"

	"cowrite/internal/jsontree"
)

// Project is the root of an exported graph.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Genre       *string       `json:"genre"`
	CoverURL    *string       `json:"coverUrl"`
	Settings    jsontree.Tree `json:"settings"`
	WordCount   int           `json:"wordCount"`
	IsPublic    bool          `json:"isPublic"`
	OwnerID     string        `json:"-"`
}

// Column defaults applied to documents that arrive without them.
const (
	DefaultDocumentType   = "chapter"
	DefaultDocumentStatus = "draft"
)

type Document struct {
	ID         string  `json:"id"`
	ParentID   *string `json:"parentId"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Content    *string `json:"content"`
	OrderIndex int     `json:"orderIndex"`
	WordCount  int     `json:"wordCount"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
}

type DocumentVersion struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"documentId"`
	Content     string     `json:"content"`
	WordCount   *int       `json:"wordCount"`
	VersionName *string    `json:"versionName"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// DocumentComment is an inline comment anchored to a document position.
type DocumentComment struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"documentId"`
	Content    string        `json:"content"`
	Position   jsontree.Tree `json:"position"`
	CreatedAt  *time.Time    `json:"createdAt"`
}

type Translation struct {
	ID             string  `json:"id"`
	DocumentID     string  `json:"documentId"`
	TargetLanguage string  `json:"targetLanguage"`
	Provider       *string `json:"provider"`
	Content        *string `json:"content"`
}

type AudioAsset struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"documentId"`
	Voice      *string `json:"voice"`
	Provider   *string `json:"provider"`
	Script     *string `json:"script"`
	AudioURL   *string `json:"audioUrl"`
}

type Storyboard struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"documentId"`
	Provider   *string       `json:"provider"`
	Content    jsontree.Tree `json:"content"`
}

type ReaderPrediction struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"documentId"`
	Provider   *string       `json:"provider"`
	Result     jsontree.Tree `json:"result"`
}
