package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/repository"
	"dsa_arena/internal/platform/logger"

	"github.com/gosimple/slug"
)

const defaultPlatform = "leetcode"

type Options struct {
	SheetName   string
	Description string
	Image       string
	// PlatformFromLink derives each question's platform from its link instead of assuming leetcode.
	PlatformFromLink bool
	// Replace drops the existing sheet, with everything hanging off it, before importing.
	Replace bool
}

type Result struct {
	SheetID  int64
	Created  bool
	Topics   int
	Inserted int
	Skipped  int
}

type Importer struct {
	txRunner     repository.TxRunner
	sheetRepo    repository.SheetRepository
	questionRepo repository.QuestionRepository
	progressRepo repository.ProgressRepository
	log          *logger.Logger
}

func New(
	txRunner repository.TxRunner,
	sheetRepo repository.SheetRepository,
	questionRepo repository.QuestionRepository,
	progressRepo repository.ProgressRepository,
	log *logger.Logger,
) *Importer {
	return &Importer{
		txRunner:     txRunner,
		sheetRepo:    sheetRepo,
		questionRepo: questionRepo,
		progressRepo: progressRepo,
		log:          log.With("component", "importer"),
	}
}

// Import loads rows into the named sheet in a single transaction. Questions already present
// under the same topic and title are skipped.
func (im *Importer) Import(ctx context.Context, rows []Row, opts Options) (*Result, error) {
	name := strings.TrimSpace(opts.SheetName)
	if name == "" {
		return nil, fmt.Errorf("sheet name is required: %w", common.ErrBadRequest)
	}

	res := &Result{}
	err := im.txRunner.WithinTx(ctx, func(tx *sql.Tx) error {
		sheet, created, err := im.prepareSheet(ctx, tx, name, opts)
		if err != nil {
			return err
		}
		res.SheetID, res.Created = sheet.ID, created

		topics := make(map[string]*model.Topic)
		for _, row := range rows {
			topic, ok := topics[row.Topic]
			if !ok {
				topic, err = im.sheetRepo.FindOrCreateTopic(ctx, tx, sheet.ID, row.Topic)
				if err != nil {
					return fmt.Errorf("topic %q: %w", row.Topic, err)
				}
				topics[row.Topic] = topic
			}

			q := &model.Question{
				TopicID:    topic.ID,
				Title:      row.Title,
				Link:       row.Link,
				Platform:   defaultPlatform,
				Difficulty: row.Difficulty,
			}
			if opts.PlatformFromLink {
				q.Platform = PlatformFromLink(row.Link)
			}
			if row.Solution != "" {
				solution := row.Solution
				q.Solution = &solution
			}
			inserted, err := im.questionRepo.CreateQuestion(ctx, tx, q)
			if err != nil {
				return fmt.Errorf("question %q: %w", row.Title, err)
			}
			if inserted {
				res.Inserted++
			} else {
				res.Skipped++
			}
		}
		res.Topics = len(topics)
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.log.Info("sheet imported",
		"sheet", name,
		"sheet_id", res.SheetID,
		"created", res.Created,
		"topics", res.Topics,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (im *Importer) prepareSheet(ctx context.Context, tx *sql.Tx, name string, opts Options) (*model.Sheet, bool, error) {
	existing, err := im.sheetRepo.FindSheetByName(ctx, tx, name)
	switch {
	case err == nil:
		if !opts.Replace {
			return existing, false, nil
		}
		if err := im.sheetRepo.DeleteSheet(ctx, tx, existing.ID); err != nil {
			return nil, false, fmt.Errorf("delete sheet %q: %w", name, err)
		}
		im.log.Warn("existing sheet removed before import", "sheet", name, "sheet_id", existing.ID)
	case !errors.Is(err, common.ErrNotFound):
		return nil, false, err
	}

	sheet := &model.Sheet{
		Name:        name,
		Slug:        slug.Make(name),
		Description: opts.Description,
	}
	if opts.Image != "" {
		image := opts.Image
		sheet.Image = &image
	}
	if err := im.sheetRepo.CreateSheet(ctx, tx, sheet); err != nil {
		return nil, false, fmt.Errorf("create sheet %q: %w", name, err)
	}
	return sheet, true, nil
}

// PrimeProgress inserts zero progress rows for every user and sheet that lack one.
func (im *Importer) PrimeProgress(ctx context.Context) (int64, error) {
	n, err := im.progressRepo.PrimeAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("prime progress: %w", err)
	}
	im.log.Info("progress rows primed", "inserted", n)
	return n, nil
}
