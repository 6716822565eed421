package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"articlebench/internal/cache"
	"articlebench/internal/domain"
	"articlebench/internal/inference"
)

const restrictedError = "restricted"

var (
	ErrRestricted = errors.New(restrictedError)
	ErrNoSummary  = errors.New("no summary generated")
)

// Request describes one summary for a (URL, model) pair.
type Request struct {
	URL       string
	Model     string
	MaxLength int
	Mode      domain.Mode
}

// ArticleSource yields the plain text of a page.
type ArticleSource interface {
	GetOrFetch(ctx context.Context, pageURL string) (domain.Article, error)
}

// SummaryStore keeps generated summaries by key.
type SummaryStore interface {
	Get(key string) (string, bool, error)
	Put(key string, text string) error
	Path(key string) string
}

// CheckFunc runs right before inference for model. A non-nil error fails the
// request without calling the model.
type CheckFunc func(ctx context.Context, model string) error

type Summarizer struct {
	articles  ArticleSource
	summaries SummaryStore
	client    inference.Client
	models    inference.ModelManager
	check     CheckFunc
	log       *slog.Logger
}

type Option func(*Summarizer)

// WithUnloadAroundInference unloads every loaded model before and after each
// inference call so timings include model load and memory is released.
func WithUnloadAroundInference(models inference.ModelManager) Option {
	return func(s *Summarizer) {
		s.models = models
	}
}

// WithCheckBeforeInference runs check only when a request reaches inference,
// so cached summaries never touch the inference server.
func WithCheckBeforeInference(check CheckFunc) Option {
	return func(s *Summarizer) {
		s.check = check
	}
}

func New(
	articles ArticleSource,
	summaries SummaryStore,
	client inference.Client,
	log *slog.Logger,
	opts ...Option,
) *Summarizer {
	s := &Summarizer{
		articles:  articles,
		summaries: summaries,
		client:    client,
		log:       log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Summarize produces a single-attempt record. The returned error is nil
// exactly when the record is successful; record.Error carries its raw text.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (domain.BenchmarkRecord, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Model = strings.TrimSpace(req.Model)

	summaryKey := cache.SummaryKey(req.URL, req.Model, req.MaxLength)
	record := domain.BenchmarkRecord{
		URL:              req.URL,
		Model:            req.Model,
		MaxLength:        req.MaxLength,
		Runs:             1,
		SummaryCachePath: s.summaries.Path(summaryKey),
	}

	article, err := s.articles.GetOrFetch(ctx, req.URL)
	if err != nil {
		return fail(record, fmt.Errorf("get article: %w", err))
	}
	record.ContentCachePath = article.Path

	if article.Restricted {
		record.Restricted = true
		record.Error = restrictedError

		return record, ErrRestricted
	}

	if req.Mode == domain.ModeCached {
		cached, ok, getErr := s.summaries.Get(summaryKey)
		if getErr != nil {
			return fail(record, getErr)
		}

		if ok {
			s.log.DebugContext(ctx, "Using cached summary",
				"url", req.URL,
				"model", req.Model,
				"path", record.SummaryCachePath)

			return succeed(record, cached, true), nil
		}
	}

	if s.check != nil {
		if err = s.check(ctx, req.Model); err != nil {
			return fail(record, err)
		}
	}

	s.unload(ctx, "before")
	res := s.client.Generate(ctx, req.Model, BuildPrompt(req.MaxLength, article.Text))
	s.unload(ctx, "after")

	record.MeanTime = res.Elapsed.Seconds()
	record.InputTokens = res.InputTokens
	record.OutputTokens = res.OutputTokens

	if !res.Success {
		s.log.ErrorContext(ctx, "Failed to generate summary",
			"error", res.Error,
			"errorKind", res.ErrorKind,
			"url", req.URL,
			"model", req.Model)

		return fail(record, inference.ResultError(res))
	}

	text := inference.CleanText(res.Text)
	if length := utf8.RuneCountInString(text); req.MaxLength > 0 && length > req.MaxLength {
		s.log.WarnContext(ctx, "Summary exceeds target length",
			"url", req.URL,
			"model", req.Model,
			"length", length,
			"maxLength", req.MaxLength)

		text = Truncate(text, req.MaxLength)
	}

	if text == "" {
		return fail(record, ErrNoSummary)
	}

	if err = s.summaries.Put(summaryKey, text); err != nil {
		return fail(record, err)
	}

	s.log.InfoContext(ctx, "Summary is generated",
		"url", req.URL,
		"model", req.Model,
		"elapsedSeconds", record.MeanTime,
		"length", utf8.RuneCountInString(text),
		"inputTokens", res.InputTokens,
		"outputTokens", res.OutputTokens)

	return succeed(record, text, false), nil
}

func (s *Summarizer) unload(ctx context.Context, stage string) {
	if s.models == nil {
		return
	}

	if unloaded, err := inference.UnloadAll(ctx, s.models, s.log); err != nil {
		s.log.WarnContext(ctx, "Failed to unload models",
			"error", err,
			"stage", stage,
			"unloaded", unloaded)
	}
}

func succeed(record domain.BenchmarkRecord, text string, fromCache bool) domain.BenchmarkRecord {
	record.Success = true
	record.SuccessfulRuns = 1
	record.FromCache = fromCache
	record.Summary = text
	record.SummaryLength = utf8.RuneCountInString(text)
	record.Error = ""

	return record
}

func fail(record domain.BenchmarkRecord, err error) (domain.BenchmarkRecord, error) {
	record.Success = false
	record.Summary = ""
	record.SummaryLength = 0
	record.Error = err.Error()

	return record, err
}
