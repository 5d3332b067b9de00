package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/texsite/internal/dataset"
	"github.com/dgallion1/texsite/internal/extract"
)

// ExportStore persists data sets and answers lookups against the latest one.
type ExportStore interface {
	// Save replaces the stored export with d under buildID.
	Save(ctx context.Context, buildID string, d *dataset.DataSet) error
	// Latest returns the id and meta of the stored export. Returns
	// ErrNotFound when nothing has been saved.
	Latest(ctx context.Context) (string, *dataset.Meta, error)
	// QuestionsByTag returns the stored questions carrying tag, in data set order.
	QuestionsByTag(ctx context.Context, tag string) ([]extract.Question, error)
	// CountByKind returns the number of stored questions per kind.
	CountByKind(ctx context.Context) (map[extract.QuestionKind]int, error)
}

// ExportRepo implements ExportStore on SQLite.
type ExportRepo struct {
	db *sql.DB
}

func NewExportRepo(db *sql.DB) *ExportRepo {
	return &ExportRepo{db: db}
}

// Save runs in one transaction: previous builds are removed and d is
// written in full, so readers never see a partial export.
func (r *ExportRepo) Save(ctx context.Context, buildID string, d *dataset.DataSet) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin export: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM builds"); err != nil {
		return fmt.Errorf("failed to clear builds: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO builds (id, title, version, knowledge_count, question_count) VALUES (?, ?, ?, ?, ?)",
		buildID, d.Meta.Title, d.Meta.Version, d.Meta.KnowledgeCount, d.Meta.QuestionCount,
	); err != nil {
		return fmt.Errorf("failed to insert build: %w", err)
	}

	for i, doc := range d.Documents {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO documents (build_id, position, id, title, description, web, pdf, pages) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			buildID, i, doc.ID, doc.Title, doc.Desc, doc.Web, doc.PDF, doc.Pages,
		); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
		}
	}

	for i, k := range d.Knowledge {
		tags, jerr := json.Marshal(k.Tags)
		if jerr != nil {
			return fmt.Errorf("failed to encode tags of %s: %w", k.ID, jerr)
		}
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO knowledge (build_id, position, id, chapter, title, content, tags) VALUES (?, ?, ?, ?, ?, ?, ?)",
			buildID, i, k.ID, k.Chapter, k.Title, k.Content, string(tags),
		); err != nil {
			return fmt.Errorf("failed to insert knowledge %s: %w", k.ID, err)
		}
	}

	for i, q := range d.Questions {
		if err = insertQuestion(ctx, tx, buildID, i, q); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, buildID string, pos int, q extract.Question) error {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	optJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to encode options of %s: %w", q.ID, err)
	}
	tagJSON, err := json.Marshal(q.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags of %s: %w", q.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO questions (build_id, position, id, source, qtype, stem, options, answer, explanation, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		buildID, pos, q.ID, q.Source, string(q.Kind), q.Stem, string(optJSON), q.Answer, q.Explanation, string(tagJSON),
	); err != nil {
		return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
	}
	seen := make(map[string]bool, len(q.Tags))
	for _, tag := range q.Tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO question_tags (build_id, position, tag) VALUES (?, ?, ?)",
			buildID, pos, tag,
		); err != nil {
			return fmt.Errorf("failed to tag question %s: %w", q.ID, err)
		}
	}
	return nil
}

func (r *ExportRepo) Latest(ctx context.Context) (string, *dataset.Meta, error) {
	var id string
	var meta dataset.Meta
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, version, knowledge_count, question_count FROM builds ORDER BY created_at DESC LIMIT 1",
	).Scan(&id, &meta.Title, &meta.Version, &meta.KnowledgeCount, &meta.QuestionCount)
	if err == sql.ErrNoRows {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to query build: %w", err)
	}
	return id, &meta, nil
}

func (r *ExportRepo) QuestionsByTag(ctx context.Context, tag string) ([]extract.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT q.id, q.source, q.qtype, q.stem, q.options, q.answer, q.explanation, q.tags
		 FROM questions q
		 JOIN question_tags t ON t.build_id = q.build_id AND t.position = q.position
		 WHERE t.tag = ?
		 ORDER BY q.position`,
		tag,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	questions := []extract.Question{}
	for rows.Next() {
		var q extract.Question
		var kind, options, tags string
		if err := rows.Scan(&q.ID, &q.Source, &kind, &q.Stem, &options, &q.Answer, &q.Explanation, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Kind = extract.QuestionKind(kind)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options of %s: %w", q.ID, err)
		}
		if err := json.Unmarshal([]byte(tags), &q.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return questions, nil
}

func (r *ExportRepo) CountByKind(ctx context.Context) (map[extract.QuestionKind]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT qtype, COUNT(*) FROM questions GROUP BY qtype")
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[extract.QuestionKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[extract.QuestionKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}
