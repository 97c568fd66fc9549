package backup

import (
	"context"
	"fmt"

	models "cowrite/internal/domain/models/backup"
	backupRepo "cowrite/internal/domain/repositories/backup"
	"cowrite/internal/jsontree"
	"cowrite/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
)

// NewGraphWriter creates a GraphWriter
func NewGraphWriter(config *postgres.RepositoryConfig) backupRepo.GraphWriter {
	return NewGraphRepository(config)
}

// insertBatch queues statements and remembers what each one inserts so a
// failure names the offending record.
type insertBatch struct {
	batch  pgx.Batch
	labels []string
	err    error
}

func (b *insertBatch) queue(label, sql string, args ...any) {
	if b.err != nil {
		return
	}
	b.batch.Queue(sql, args...)
	b.labels = append(b.labels, label)
}

// encode converts a tree to a JSONB argument, recording the first failure.
// notNull turns a null tree into {}.
func (b *insertBatch) encode(t jsontree.Tree, notNull bool) any {
	if b.err != nil {
		return nil
	}
	if notNull {
		t = t.OrEmptyObject()
	}
	v, err := jsonArg(t)
	if err != nil {
		b.err = err
	}
	return v
}

// InsertGraph inserts the project and every record in dependency order:
// project, documents (parents first), versions, characters, stats, world
// settings (parents first), relationships, plots, plot points, goals, research,
// translations, audio, storyboards, predictions, comments, media.
func (r *PostgresGraphRepository) InsertGraph(ctx context.Context, g *models.Graph, ownerID string) error {
	t := r.tables
	b := &insertBatch{}
	nullable := func(x jsontree.Tree) any { return b.encode(x, false) }
	object := func(x jsontree.Tree) any { return b.encode(x, true) }

	p := g.Project
	b.queue("project "+p.ID, fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, title, description, genre, cover_url, settings, word_count, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.Projects), p.ID, ownerID, p.Title, p.Description, p.Genre, p.CoverURL, object(p.Settings), p.WordCount, p.IsPublic)

	for _, d := range g.Documents {
		b.queue("document "+d.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, parent_id, type, title, content, order_index, word_count, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, t.Documents), d.ID, p.ID, d.ParentID, d.Type, d.Title, d.Content, d.OrderIndex, d.WordCount, d.Status, d.Notes)
	}

	for _, v := range g.DocumentVersions {
		b.queue("document version "+v.ID, fmt.Sprintf(`
			INSERT INTO %s (id, document_id, content, word_count, version_name, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()))
		`, t.DocumentVersions), v.ID, v.DocumentID, v.Content, v.WordCount, v.VersionName, ownerID, v.CreatedAt)
	}

	for _, c := range g.Characters {
		b.queue("character "+c.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, name, role, profile, appearance, personality, backstory, speech_sample, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, t.Characters), c.ID, p.ID, c.Name, c.Role, object(c.Profile), object(c.Appearance), object(c.Personality),
			c.Backstory, c.SpeechSample, c.ImageURL)
	}

	for _, s := range g.CharacterStats {
		b.queue("character stat "+s.ID, fmt.Sprintf(`
			INSERT INTO %s (id, character_id, template_type, stats, episode_num)
			VALUES ($1, $2, $3, $4, $5)
		`, t.CharacterStats), s.ID, s.CharacterID, s.TemplateType, object(s.Stats), s.EpisodeNum)
	}

	for _, w := range g.WorldSettings {
		b.queue("world setting "+w.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, parent_id, category, title, content, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, t.WorldSettings), w.ID, p.ID, w.ParentID, w.Category, w.Title, w.Content, object(w.Metadata))
	}

	for _, rel := range g.Relationships {
		b.queue("relationship "+rel.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, character_a_id, character_b_id, relation_type, description, is_bidirectional, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, t.Relationships), rel.ID, p.ID, rel.CharacterAID, rel.CharacterBID, rel.RelationType, rel.Description,
			rel.IsBidirectional, object(rel.Metadata))
	}

	for _, pl := range g.Plots {
		b.queue("plot "+pl.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, title, description, order_index, metadata)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.Plots), pl.ID, p.ID, pl.Title, pl.Description, pl.OrderIndex, object(pl.Metadata))
	}

	for _, pp := range g.PlotPoints {
		b.queue("plot point "+pp.ID, fmt.Sprintf(`
			INSERT INTO %s (id, plot_id, document_id, title, description, order_index, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, t.PlotPoints), pp.ID, pp.PlotID, pp.DocumentID, pp.Title, pp.Description, pp.OrderIndex, object(pp.Metadata))
	}

	for _, wg := range g.WritingGoals {
		b.queue("writing goal "+wg.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, user_id, goal_type, target_words, current_words, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7::text::date)
		`, t.WritingGoals), wg.ID, p.ID, ownerID, wg.GoalType, wg.TargetWords, wg.CurrentWords, wg.DueDate)
	}

	for _, ri := range g.ResearchItems {
		b.queue("research item "+ri.ID, fmt.Sprintf(`
			INSERT INTO %s (id, project_id, query, result)
			VALUES ($1, $2, $3, $4)
		`, t.ResearchItems), ri.ID, p.ID, ri.Query, object(ri.Result))
	}

	for _, tr := range g.Translations {
		b.queue("translation "+tr.ID, fmt.Sprintf(`
			INSERT INTO %s (id, document_id, target_language, provider, content)
			VALUES ($1, $2, $3, $4, $5)
		`, t.Translations), tr.ID, tr.DocumentID, tr.TargetLanguage, tr.Provider, tr.Content)
	}

	for _, a := range g.AudioAssets {
		b.queue("audio asset "+a.ID, fmt.Sprintf(`
			INSERT INTO %s (id, document_id, voice, provider, script, audio_url)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.AudioAssets), a.ID, a.DocumentID, a.Voice, a.Provider, a.Script, a.AudioURL)
	}

	for _, sb := range g.Storyboards {
		b.queue("storyboard "+sb.ID, fmt.Sprintf(`
			INSERT INTO %s (id, document_id, provider, content)
			VALUES ($1, $2, $3, $4)
		`, t.Storyboards), sb.ID, sb.DocumentID, sb.Provider, object(sb.Content))
	}

	for _, rp := range g.ReaderPredictions {
		b.queue("reader prediction "+rp.ID, fmt.Sprintf(`
			INSERT INTO %s (id, document_id, provider, result)
			VALUES ($1, $2, $3, $4)
		`, t.ReaderPredictions), rp.ID, rp.DocumentID, rp.Provider, object(rp.Result))
	}

	for _, c := range g.DocumentComments {
		b.queue("document comment "+c.ID, fmt.Sprintf(`
			INSERT INTO %s (id, document_id, user_id, content, position, created_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
		`, t.DocumentComments), c.ID, c.DocumentID, ownerID, c.Content, nullable(c.Position), c.CreatedAt)
	}

	for _, m := range g.MediaAssets {
		b.queue("media asset "+m.ID, fmt.Sprintf(`
			INSERT INTO %s (id, user_id, project_id, original_name, mime_type, size, storage_path, url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, t.MediaAssets), m.ID, ownerID, m.ProjectID, m.OriginalName, m.MimeType, m.Size, m.StoragePath, m.URL)
	}

	if b.err != nil {
		return fmt.Errorf("encode json column: %w", b.err)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	results := executor.SendBatch(ctx, &b.batch)
	for _, label := range b.labels {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert %s: %w", label, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("insert graph: %w", err)
	}

	r.logger.Debug("graph inserted",
		"project_id", p.ID,
		"statements", len(b.labels),
	)
	return nil
}
