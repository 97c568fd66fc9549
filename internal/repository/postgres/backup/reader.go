package backup

import (
	"context"
	"fmt"

	"cowrite/internal/domain"
	models "cowrite/internal/domain/models/backup"
	backupRepo "cowrite/internal/domain/repositories/backup"
	"cowrite/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
)

// NewGraphReader creates a GraphReader
func NewGraphReader(config *postgres.RepositoryConfig) backupRepo.GraphReader {
	return NewGraphRepository(config)
}

// LoadGraph reads the project and everything hanging off it.
func (r *PostgresGraphRepository) LoadGraph(ctx context.Context, projectID string) (*models.Graph, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	t := r.tables

	g := &models.Graph{}
	if err := r.loadProject(ctx, projectID, &g.Project); err != nil {
		return nil, err
	}

	var err error
	if g.Documents, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, parent_id, type, title, content, order_index, word_count, status, notes
		FROM %s WHERE project_id = $1
		ORDER BY order_index, created_at
	`, t.Documents), projectID, scanDocument); err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	if g.DocumentVersions, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT v.id, v.document_id, v.content, v.word_count, v.version_name, v.created_at
		FROM %s v JOIN %s d ON d.id = v.document_id
		WHERE d.project_id = $1
		ORDER BY v.created_at
	`, t.DocumentVersions, t.Documents), projectID, scanDocumentVersion); err != nil {
		return nil, fmt.Errorf("load document versions: %w", err)
	}

	if g.Characters, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, name, role, profile, appearance, personality, backstory, speech_sample, image_url
		FROM %s WHERE project_id = $1
		ORDER BY created_at
	`, t.Characters), projectID, scanCharacter); err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}

	if g.CharacterStats, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT s.id, s.character_id, s.template_type, s.stats, s.episode_num
		FROM %s s JOIN %s c ON c.id = s.character_id
		WHERE c.project_id = $1
		ORDER BY s.created_at
	`, t.CharacterStats, t.Characters), projectID, scanCharacterStat); err != nil {
		return nil, fmt.Errorf("load character stats: %w", err)
	}

	if g.WorldSettings, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, parent_id, category, title, content, metadata
		FROM %s WHERE project_id = $1
		ORDER BY created_at
	`, t.WorldSettings), projectID, scanWorldSetting); err != nil {
		return nil, fmt.Errorf("load world settings: %w", err)
	}

	if g.Relationships, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, character_a_id, character_b_id, relation_type, description, is_bidirectional, metadata
		FROM %s WHERE project_id = $1
		ORDER BY created_at
	`, t.Relationships), projectID, scanRelationship); err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}

	if g.Plots, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, title, description, order_index, metadata
		FROM %s WHERE project_id = $1
		ORDER BY order_index, created_at
	`, t.Plots), projectID, scanPlot); err != nil {
		return nil, fmt.Errorf("load plots: %w", err)
	}

	if g.PlotPoints, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT pp.id, pp.plot_id, pp.document_id, pp.title, pp.description, pp.order_index, pp.metadata
		FROM %s pp JOIN %s p ON p.id = pp.plot_id
		WHERE p.project_id = $1
		ORDER BY pp.order_index, pp.created_at
	`, t.PlotPoints, t.Plots), projectID, scanPlotPoint); err != nil {
		return nil, fmt.Errorf("load plot points: %w", err)
	}

	if g.WritingGoals, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, goal_type, target_words, current_words, due_date::text
		FROM %s WHERE project_id = $1
		ORDER BY created_at
	`, t.WritingGoals), projectID, scanWritingGoal); err != nil {
		return nil, fmt.Errorf("load writing goals: %w", err)
	}

	if g.ResearchItems, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT id, query, result
		FROM %s WHERE project_id = $1
		ORDER BY created_at
	`, t.ResearchItems), projectID, scanResearchItem); err != nil {
		return nil, fmt.Errorf("load research items: %w", err)
	}

	if g.Translations, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT x.id, x.document_id, x.target_language, x.provider, x.content
		FROM %s x JOIN %s d ON d.id = x.document_id
		WHERE d.project_id = $1
		ORDER BY x.created_at
	`, t.Translations, t.Documents), projectID, scanTranslation); err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	if g.AudioAssets, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT x.id, x.document_id, x.voice, x.provider, x.script, x.audio_url
		FROM %s x JOIN %s d ON d.id = x.document_id
		WHERE d.project_id = $1
		ORDER BY x.created_at
	`, t.AudioAssets, t.Documents), projectID, scanAudioAsset); err != nil {
		return nil, fmt.Errorf("load audio assets: %w", err)
	}

	if g.Storyboards, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT x.id, x.document_id, x.provider, x.content
		FROM %s x JOIN %s d ON d.id = x.document_id
		WHERE d.project_id = $1
		ORDER BY x.created_at
	`, t.Storyboards, t.Documents), projectID, scanStoryboard); err != nil {
		return nil, fmt.Errorf("load storyboards: %w", err)
	}

	if g.ReaderPredictions, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT x.id, x.document_id, x.provider, x.result
		FROM %s x JOIN %s d ON d.id = x.document_id
		WHERE d.project_id = $1
		ORDER BY x.created_at
	`, t.ReaderPredictions, t.Documents), projectID, scanReaderPrediction); err != nil {
		return nil, fmt.Errorf("load reader predictions: %w", err)
	}

	if g.DocumentComments, err = collect(ctx, executor, fmt.Sprintf(`
		SELECT x.id, x.document_id, x.content, x.position, x.created_at
		FROM %s x JOIN %s d ON d.id = x.document_id
		WHERE d.project_id = $1
		ORDER BY x.created_at
	`, t.DocumentComments, t.Documents), projectID, scanDocumentComment); err != nil {
		return nil, fmt.Errorf("load document comments: %w", err)
	}

	// Media rows are resolved separately; see MediaCatalog.
	g.MediaAssets = []models.MediaAsset{}

	return g, nil
}

func (r *PostgresGraphRepository) loadProject(ctx context.Context, projectID string, p *models.Project) error {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, genre, cover_url, settings, word_count, is_public
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Projects)

	var settings []byte
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.Genre,
		&p.CoverURL,
		&settings,
		&p.WordCount,
		&p.IsPublic,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return fmt.Errorf("load project: %w", err)
	}
	return decodeTrees(treeCol{&p.Settings, settings})
}

func scanDocument(row pgx.CollectableRow) (models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.ParentID, &d.Type, &d.Title, &d.Content, &d.OrderIndex, &d.WordCount, &d.Status, &d.Notes)
	return d, err
}

func scanDocumentVersion(row pgx.CollectableRow) (models.DocumentVersion, error) {
	var v models.DocumentVersion
	err := row.Scan(&v.ID, &v.DocumentID, &v.Content, &v.WordCount, &v.VersionName, &v.CreatedAt)
	return v, err
}

func scanCharacter(row pgx.CollectableRow) (models.Character, error) {
	var c models.Character
	var profile, appearance, personality []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Role, &profile, &appearance, &personality,
		&c.Backstory, &c.SpeechSample, &c.ImageURL); err != nil {
		return c, err
	}
	err := decodeTrees(
		treeCol{&c.Profile, profile},
		treeCol{&c.Appearance, appearance},
		treeCol{&c.Personality, personality},
	)
	return c, err
}

func scanCharacterStat(row pgx.CollectableRow) (models.CharacterStat, error) {
	var s models.CharacterStat
	var stats []byte
	if err := row.Scan(&s.ID, &s.CharacterID, &s.TemplateType, &stats, &s.EpisodeNum); err != nil {
		return s, err
	}
	err := decodeTrees(treeCol{&s.Stats, stats})
	return s, err
}

func scanWorldSetting(row pgx.CollectableRow) (models.WorldSetting, error) {
	var w models.WorldSetting
	var metadata []byte
	if err := row.Scan(&w.ID, &w.ParentID, &w.Category, &w.Title, &w.Content, &metadata); err != nil {
		return w, err
	}
	err := decodeTrees(treeCol{&w.Metadata, metadata})
	return w, err
}

func scanRelationship(row pgx.CollectableRow) (models.Relationship, error) {
	var rel models.Relationship
	var metadata []byte
	if err := row.Scan(&rel.ID, &rel.CharacterAID, &rel.CharacterBID, &rel.RelationType,
		&rel.Description, &rel.IsBidirectional, &metadata); err != nil {
		return rel, err
	}
	err := decodeTrees(treeCol{&rel.Metadata, metadata})
	return rel, err
}

func scanPlot(row pgx.CollectableRow) (models.Plot, error) {
	var p models.Plot
	var metadata []byte
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.OrderIndex, &metadata); err != nil {
		return p, err
	}
	err := decodeTrees(treeCol{&p.Metadata, metadata})
	return p, err
}

func scanPlotPoint(row pgx.CollectableRow) (models.PlotPoint, error) {
	var pp models.PlotPoint
	var metadata []byte
	if err := row.Scan(&pp.ID, &pp.PlotID, &pp.DocumentID, &pp.Title, &pp.Description,
		&pp.OrderIndex, &metadata); err != nil {
		return pp, err
	}
	err := decodeTrees(treeCol{&pp.Metadata, metadata})
	return pp, err
}

func scanWritingGoal(row pgx.CollectableRow) (models.WritingGoal, error) {
	var w models.WritingGoal
	err := row.Scan(&w.ID, &w.GoalType, &w.TargetWords, &w.CurrentWords, &w.DueDate)
	return w, err
}

func scanResearchItem(row pgx.CollectableRow) (models.ResearchItem, error) {
	var ri models.ResearchItem
	var result []byte
	if err := row.Scan(&ri.ID, &ri.Query, &result); err != nil {
		return ri, err
	}
	err := decodeTrees(treeCol{&ri.Result, result})
	return ri, err
}

func scanTranslation(row pgx.CollectableRow) (models.Translation, error) {
	var tr models.Translation
	err := row.Scan(&tr.ID, &tr.DocumentID, &tr.TargetLanguage, &tr.Provider, &tr.Content)
	return tr, err
}

func scanAudioAsset(row pgx.CollectableRow) (models.AudioAsset, error) {
	var a models.AudioAsset
	err := row.Scan(&a.ID, &a.DocumentID, &a.Voice, &a.Provider, &a.Script, &a.AudioURL)
	return a, err
}

func scanStoryboard(row pgx.CollectableRow) (models.Storyboard, error) {
	var sb models.Storyboard
	var content []byte
	if err := row.Scan(&sb.ID, &sb.DocumentID, &sb.Provider, &content); err != nil {
		return sb, err
	}
	err := decodeTrees(treeCol{&sb.Content, content})
	return sb, err
}

func scanReaderPrediction(row pgx.CollectableRow) (models.ReaderPrediction, error) {
	var rp models.ReaderPrediction
	var result []byte
	if err := row.Scan(&rp.ID, &rp.DocumentID, &rp.Provider, &result); err != nil {
		return rp, err
	}
	err := decodeTrees(treeCol{&rp.Result, result})
	return rp, err
}

func scanDocumentComment(row pgx.CollectableRow) (models.DocumentComment, error) {
	var c models.DocumentComment
	var position []byte
	if err := row.Scan(&c.ID, &c.DocumentID, &c.Content, &position, &c.CreatedAt); err != nil {
		return c, err
	}
	err := decodeTrees(treeCol{&c.Position, position})
	return c, err
}
