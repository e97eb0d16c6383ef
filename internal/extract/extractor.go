// Package extract converts rendered Q&A listing and detail pages into
// structured question records using goquery.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/stackpipe/internal/domain"
	"github.com/jonesrussell/stackpipe/internal/fetch"
	"github.com/jonesrussell/stackpipe/internal/logger"
)

// Errors returned for individual listing items. A failed item never aborts
// extraction of the remaining items.
var (
	// ErrTitleMissing is returned when a listing item has no title.
	ErrTitleMissing = errors.New("question title missing")
	// ErrAuthorMissing is returned when an item carries no author name.
	ErrAuthorMissing = errors.New("author missing")
	// ErrDetailLinkMissing is returned when a listing item has no detail link.
	ErrDetailLinkMissing = errors.New("question detail link missing")
	// ErrAnswerBodyMissing is returned when an answer has no body node.
	ErrAnswerBodyMissing = errors.New("answer body missing")
)

// Stat unit labels recognized on listing items. Singular and plural forms
// fold to the same stat kind.
const (
	unitVote  = "vote"
	unitVotes = "votes"
	unitView  = "view"
	unitViews = "views"
)

// Result is one element of the extraction sequence: either a question record
// or a per-item extraction error. ExternalID carries the item's id for error
// reporting when it could still be read.
type Result struct {
	Question   *domain.Question
	ExternalID string
	Err        error
}

// Extractor converts one listing page into a sequence of question records,
// fetching each question's detail page for its answers.
type Extractor struct {
	fetcher fetch.Fetcher
	baseURL *url.URL
	log     logger.Interface
}

// New creates an extractor. baseURL is the site root used to resolve the
// relative detail links found on listing items.
func New(fetcher fetch.Fetcher, baseURL string, log logger.Interface) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Extractor{
		fetcher: fetcher,
		baseURL: base,
		log:     log.WithComponent("extractor"),
	}, nil
}

// Extract parses the listing page and returns a lazy sequence of results in
// listing order. Detail pages are fetched as the sequence is consumed. The
// sequence is single-use; iterating it a second time yields nothing.
func (e *Extractor) Extract(ctx context.Context, listingHTML []byte) (iter.Seq[Result], error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(listingHTML))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	items := doc.Find("div.js-post-summary")
	consumed := false

	seq := func(yield func(Result) bool) {
		if consumed {
			return
		}
		consumed = true

		for i := range items.Length() {
			if ctx.Err() != nil {
				return
			}

			if !yield(e.extractItem(ctx, items.Eq(i))) {
				return
			}
		}
	}

	return seq, nil
}

// extractItem converts one listing item into a Result.
func (e *Extractor) extractItem(ctx context.Context, item *goquery.Selection) Result {
	externalID := itemExternalID(item)

	question, err := e.extractQuestion(ctx, item)
	if err != nil {
		e.log.Warn("skipping listing item",
			"question_id", externalID,
			"error", err.Error(),
		)
		return Result{ExternalID: externalID, Err: err}
	}

	return Result{Question: question, ExternalID: externalID}
}

// extractQuestion pulls all question fields from a listing item and fetches
// its answers from the detail page.
func (e *Extractor) extractQuestion(
	ctx context.Context,
	item *goquery.Selection,
) (*domain.Question, error) {
	title := strings.TrimSpace(item.Find("h3.s-post-summary--content-title").First().Text())
	if title == "" {
		return nil, ErrTitleMissing
	}

	username := strings.TrimSpace(item.Find("div.s-user-card--link").First().Text())
	if username == "" {
		return nil, ErrAuthorMissing
	}

	detailURL, err := e.detailURL(item)
	if err != nil {
		return nil, err
	}

	votes, views := extractStats(item)

	answers, err := e.extractAnswers(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("fetch answers: %w", err)
	}

	return &domain.Question{
		ExternalID: parseExternalID(item, "data-post-id"),
		Title:      title,
		Tags:       extractTags(item),
		Votes:      votes,
		Views:      views,
		Username:   username,
		AskedAt:    extractTimestamp(item, "time.s-user-card--time", "asked"),
		DetailURL:  detailURL,
		Answers:    answers,
	}, nil
}

// itemExternalID reads the listing item's external id as text, for reporting.
func itemExternalID(item *goquery.Selection) string {
	id, _ := item.Attr("data-post-id")
	return strings.TrimSpace(id)
}

// parseExternalID reads an external id attribute as an int64. An absent or
// malformed id is recorded as unknown, not an error.
func parseExternalID(s *goquery.Selection, attr string) *int64 {
	raw, exists := s.Attr(attr)
	if !exists {
		return nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// extractTags returns the item's tag labels in document order.
func extractTags(item *goquery.Selection) []string {
	var tags []string
	item.Find("li.js-post-tag-list-item").Each(func(_ int, tag *goquery.Selection) {
		tags = append(tags, strings.TrimSpace(tag.Text()))
	})
	return tags
}

// extractStats reads the vote and view counts from the item's stat blocks.
// Absent stats default to "0". Values keep their normalized textual form.
func extractStats(item *goquery.Selection) (votes, views string) {
	votes, views = "0", "0"

	item.Find("div.s-post-summary--stats-item").Each(func(_ int, stat *goquery.Selection) {
		unit := strings.TrimSpace(stat.Find("span.s-post-summary--stats-item-unit").Text())
		value := NormalizeCount(stat.Find("span.s-post-summary--stats-item-number").Text())

		switch unit {
		case unitVote, unitVotes:
			votes = value
		case unitView, unitViews:
			views = value
		}
	})

	return votes, views
}

// extractTimestamp reads the machine-readable timestamp from the node matched
// by selector, provided its text carries the expected action marker ("asked"
// or "answered"). A missing marker or node means the timestamp is unknown.
func extractTimestamp(s *goquery.Selection, selector, marker string) *time.Time {
	node := s.Find(selector).First()
	if node.Length() == 0 || !strings.Contains(node.Text(), marker) {
		return nil
	}

	title, exists := node.Find("span.relativetime").Attr("title")
	if !exists {
		return nil
	}

	ts, err := parseSourceTime(title)
	if err != nil {
		return nil
	}
	return &ts
}

// detailURL resolves the item's detail link against the site base URL.
func (e *Extractor) detailURL(item *goquery.Selection) (string, error) {
	href, exists := item.Find("a.s-link").First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return "", ErrDetailLinkMissing
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse detail link: %w", err)
	}

	return e.baseURL.ResolveReference(ref).String(), nil
}

// extractAnswers fetches the question's detail page and extracts its answers
// in page order. A fetch or per-answer failure invalidates the whole item;
// an empty answer list is never fabricated from a failed fetch.
func (e *Extractor) extractAnswers(ctx context.Context, detailURL string) ([]domain.Answer, error) {
	body, err := e.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	var answers []domain.Answer
	var answerErr error

	doc.Find("div.answer.js-answer").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		answer, extractErr := extractAnswer(node)
		if extractErr != nil {
			answerErr = extractErr
			return false
		}
		answers = append(answers, *answer)
		return true
	})

	if answerErr != nil {
		return nil, answerErr
	}

	return answers, nil
}

// extractAnswer pulls one answer's fields from its detail-page node.
func extractAnswer(node *goquery.Selection) (*domain.Answer, error) {
	bodyNode := node.Find("div.s-prose.js-post-body").First()
	if bodyNode.Length() == 0 {
		return nil, ErrAnswerBodyMissing
	}

	username, err := answerAuthor(node)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		ExternalID: parseExternalID(node, "data-answerid"),
		Body:       strings.TrimSpace(bodyNode.Text()),
		Username:   username,
		Votes:      NormalizeCount(node.Find("div.js-vote-count").First().Text()),
		AnsweredAt: extractTimestamp(node, "div.user-action-time", "answered"),
	}, nil
}

// answerAuthor resolves the answer's author display name. The author card is
// structured either as a named span or as a plain profile link; both resolve
// to the same display name.
func answerAuthor(node *goquery.Selection) (string, error) {
	card := node.Find("div[itemprop='author']").First()

	name := strings.TrimSpace(card.Find("span[itemprop='name']").First().Text())
	if name == "" {
		name = strings.TrimSpace(card.Find("a").First().Text())
	}

	if name == "" {
		return "", ErrAuthorMissing
	}
	return name, nil
}
