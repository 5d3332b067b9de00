package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dgallion1/texsite/internal/dataset"
	"github.com/dgallion1/texsite/internal/extract"
	"github.com/dgallion1/texsite/internal/parser"
	"github.com/dgallion1/texsite/internal/storage"
)

// DataOptions overrides output locations of a data build.
type DataOptions struct {
	Out        string // data file path; config data_file when empty
	SQLitePath string // SQLite export path; config sqlite_path when empty
}

// DataResult summarizes a data build.
type DataResult struct {
	BuildID  string
	Set      *dataset.DataSet
	Path     string
	Written  bool
	Exported bool
}

// unit is the output of one fan-out unit: a bank section or the knowledge
// source.
type unit struct {
	questions []extract.Question
	knowledge []extract.Knowledge
}

// Data extracts the question bank and knowledge base, assembles the data
// set and writes it. Row statistics are reset at the start of every build.
func (b *Builder) Data(ctx context.Context, opts DataOptions) (*DataResult, error) {
	bankPath := b.cfg.SourcePath(b.cfg.Bank.Source)
	bank, err := parser.ReadSource(bankPath)
	if err != nil {
		b.log.Error("question bank unavailable", "path", bankPath, "error", err)
		return nil, fmt.Errorf("question bank: %w", err)
	}
	kbPath := b.cfg.SourcePath(b.cfg.Knowledge.Source)
	kb, err := parser.ReadSource(kbPath)
	if err != nil {
		b.log.Error("knowledge base unavailable", "path", kbPath, "error", err)
		return nil, fmt.Errorf("knowledge base: %w", err)
	}
	bank = parser.PrepareBody(bank)
	kb = parser.PrepareBody(kb)

	windows, err := extract.Segment(bank, b.cfg.Labels())
	if err != nil {
		b.log.Error("question bank segmentation failed", "path", bankPath, "error", err)
		return nil, fmt.Errorf("question bank: %w", err)
	}

	b.stats.Reset()
	ex := extract.New(extract.NewClassifier(b.cfg.Topics, b.cfg.FallbackTopic), b.stats, b.log)
	sections := b.cfg.Bank.Sections

	units, err := fanOut(ctx, len(sections)+1, b.cfg.WorkerCount, func(_ context.Context, i int) (unit, error) {
		if i == len(sections) {
			return unit{knowledge: ex.Knowledge(kb, b.cfg.Knowledge.MinLength)}, nil
		}
		sec := sections[i]
		return unit{questions: ex.Section(windows[sec.Label], sec)}, nil
	})
	if err != nil {
		return nil, err
	}

	var questions []extract.Question
	var knowledge []extract.Knowledge
	for _, u := range units {
		questions = append(questions, u.questions...)
		knowledge = append(knowledge, u.knowledge...)
	}
	questions = extract.FilterQuestions(questions)
	knowledge = extract.FilterKnowledge(knowledge)
	b.reportDuplicates(questions, knowledge)

	var entries []dataset.Entry
	for _, d := range b.cfg.Documents {
		if d.Manifest {
			entries = append(entries, dataset.Entry{
				ID: d.ID, Title: d.Title, Desc: d.Desc, Web: b.cfg.WebPath(d), PDF: d.PDF,
			})
		}
	}
	docs := dataset.Documents(entries, b.cfg.SiteDir, b.log)

	set := dataset.New(b.cfg.SiteTitle, b.cfg.Version, docs, knowledge, questions)
	if err := set.Check(); err != nil {
		return nil, err
	}
	data, err := set.Marshal()
	if err != nil {
		return nil, err
	}

	res := &DataResult{BuildID: uuid.NewString(), Set: set, Path: opts.Out}
	if res.Path == "" {
		res.Path = b.cfg.DataPath()
	}
	if res.Written, err = WriteIfChanged(res.Path, data, b.log); err != nil {
		return nil, err
	}

	sqlitePath := opts.SQLitePath
	if sqlitePath == "" {
		sqlitePath = b.cfg.SQLitePath
	}
	if sqlitePath != "" {
		if err := export(ctx, sqlitePath, res.BuildID, set); err != nil {
			return nil, err
		}
		res.Exported = true
		b.log.Info("sqlite export complete", "path", sqlitePath, "build_id", res.BuildID)
	}

	b.log.Info("data build complete",
		"build_id", res.BuildID,
		"knowledge", set.Meta.KnowledgeCount,
		"questions", set.Meta.QuestionCount,
		"documents", len(set.Documents),
	)
	return res, nil
}

func (b *Builder) reportDuplicates(questions []extract.Question, knowledge []extract.Knowledge) {
	qids := make([]string, len(questions))
	for i, q := range questions {
		qids[i] = q.ID
	}
	if dups := extract.DuplicateIDs(qids); len(dups) > 0 {
		b.log.Warn("duplicate question ids", "ids", dups)
	}
	kids := make([]string, len(knowledge))
	for i, k := range knowledge {
		kids[i] = k.ID
	}
	if dups := extract.DuplicateIDs(kids); len(dups) > 0 {
		b.log.Warn("duplicate knowledge ids", "ids", dups)
	}
}

func export(ctx context.Context, path, buildID string, set *dataset.DataSet) error {
	db, err := storage.New(path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return storage.NewExportRepo(db).Save(ctx, buildID, set)
}
