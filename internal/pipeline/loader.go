// Package pipeline drives the extract-and-load run: it feeds extracted
// question records into the relational store as per-question transactional
// load units and reports the outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/stackpipe/internal/database"
	"github.com/jonesrussell/stackpipe/internal/domain"
	"github.com/jonesrussell/stackpipe/internal/extract"
	"github.com/jonesrussell/stackpipe/internal/logger"
)

// Per-item load failures. These fail one load unit without aborting the run.
var (
	// ErrMissingExternalID is returned for a question whose external id could
	// not be read; there is no key to upsert on.
	ErrMissingExternalID = errors.New("question has no external id")
	// ErrMissingAnswerID is returned when an answer carries no external id.
	ErrMissingAnswerID = errors.New("answer has no external id")
)

// Loader persists extracted question records. Each question's writes (author,
// question, tags, answers) form one transaction: the whole unit commits or
// rolls back together, including any author or tag rows first created inside
// it.
type Loader struct {
	db  *sqlx.DB
	log logger.Interface
}

// NewLoader creates a new loader.
func NewLoader(db *sqlx.DB, log logger.Interface) *Loader {
	return &Loader{
		db:  db,
		log: log.WithComponent("loader"),
	}
}

// Load consumes the extraction sequence in order and loads each question as
// one unit of work. Per-item failures (extraction errors, constraint
// violations) are accumulated into the report; only store connectivity
// failures abort the run, returning the partial report alongside the error.
func (l *Loader) Load(ctx context.Context, results iter.Seq[extract.Result]) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}

	for result := range results {
		if result.Err != nil {
			report.addFailure(result.ExternalID, result.Err.Error())
			continue
		}

		if loadErr := l.loadQuestion(ctx, result.Question); loadErr != nil {
			if database.IsConnectivityError(loadErr) || errors.Is(loadErr, errBeginFailed) {
				return report, fmt.Errorf("store unreachable: %w", loadErr)
			}

			l.log.Warn("load unit failed",
				"run_id", report.RunID,
				"question_id", result.ExternalID,
				"error", loadErr.Error(),
			)
			report.addFailure(result.ExternalID, loadErr.Error())
			continue
		}

		report.Succeeded++
	}

	return report, nil
}

// errBeginFailed marks a transaction begin failure, which is always fatal.
var errBeginFailed = errors.New("begin transaction")

// loadQuestion runs one question's full load unit in a single transaction.
func (l *Loader) loadQuestion(ctx context.Context, question *domain.Question) error {
	if question.ExternalID == nil {
		return ErrMissingExternalID
	}

	votes, views, parseErr := parseCounts(question.Votes, question.Views)
	if parseErr != nil {
		return parseErr
	}

	tx, beginErr := l.db.BeginTxx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("%w: %w", errBeginFailed, beginErr)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	authors := database.NewAuthorRepository(tx)

	authorID, authorErr := authors.GetOrCreate(ctx, question.Username)
	if authorErr != nil {
		return authorErr
	}

	questionID, upsertErr := database.NewQuestionRepository(tx).Upsert(ctx, database.UpsertQuestionParams{
		ExternalID: *question.ExternalID,
		AuthorID:   authorID,
		Title:      question.Title,
		Votes:      votes,
		Views:      views,
		AskedAt:    question.AskedAt,
	})
	if upsertErr != nil {
		return upsertErr
	}

	if tagErr := l.loadTags(ctx, tx, questionID, question.Tags); tagErr != nil {
		return tagErr
	}

	if answerErr := l.loadAnswers(ctx, tx, questionID, authors, question.Answers); answerErr != nil {
		return answerErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit load unit: %w", commitErr)
	}

	return nil
}

// loadTags resolves each tag label and links the question to all of them in
// one bulk statement.
func (l *Loader) loadTags(ctx context.Context, tx *sqlx.Tx, questionID int64, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	tags := database.NewTagRepository(tx)

	tagIDs := make([]int64, 0, len(labels))
	for _, label := range labels {
		tagID, err := tags.GetOrCreate(ctx, label)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tagID)
	}

	return tags.LinkQuestion(ctx, questionID, tagIDs)
}

// loadAnswers resolves each answer's author and upserts the answer rows.
func (l *Loader) loadAnswers(
	ctx context.Context,
	tx *sqlx.Tx,
	questionID int64,
	authors *database.AuthorRepository,
	answers []domain.Answer,
) error {
	answerRepo := database.NewAnswerRepository(tx)

	for i := range answers {
		answer := &answers[i]

		if answer.ExternalID == nil {
			return ErrMissingAnswerID
		}

		votes, parseErr := parseCount(answer.Votes)
		if parseErr != nil {
			return fmt.Errorf("answer %d votes: %w", *answer.ExternalID, parseErr)
		}

		authorID, authorErr := authors.GetOrCreate(ctx, answer.Username)
		if authorErr != nil {
			return authorErr
		}

		_, upsertErr := answerRepo.Upsert(ctx, database.UpsertAnswerParams{
			ExternalID: *answer.ExternalID,
			QuestionID: questionID,
			AuthorID:   authorID,
			Body:       answer.Body,
			Votes:      votes,
			AnsweredAt: answer.AnsweredAt,
		})
		if upsertErr != nil {
			return upsertErr
		}
	}

	return nil
}

// parseCounts converts the question's normalized vote and view strings at
// the store-write boundary.
func parseCounts(votesRaw, viewsRaw string) (votes, views int, err error) {
	votes, err = parseCount(votesRaw)
	if err != nil {
		return 0, 0, fmt.Errorf("votes: %w", err)
	}

	views, err = parseCount(viewsRaw)
	if err != nil {
		return 0, 0, fmt.Errorf("views: %w", err)
	}

	return votes, views, nil
}

// parseCount converts a normalized count string to an int. An empty value
// defaults to 0; anything non-integer, including a normalized abbreviated
// count like "1.2000", is an error.
func parseCount(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", raw, err)
	}
	return count, nil
}
