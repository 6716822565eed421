package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"articlebench/internal/domain"
	"articlebench/internal/summarizer"

	"github.com/google/uuid"
)

// Summarizer produces one summary attempt.
type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (domain.BenchmarkRecord, error)
}

type Runner struct {
	summarizer Summarizer
	onAttempt  func(domain.Attempt)
	log        *slog.Logger
}

type Option func(*Runner)

// WithOnAttempt registers a callback invoked after every attempt.
func WithOnAttempt(fn func(domain.Attempt)) Option {
	return func(r *Runner) {
		r.onAttempt = fn
	}
}

func NewRunner(s Summarizer, log *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		summarizer: s,
		log:        log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run benchmarks every model against every URL, models outer. A failing pair
// is recorded and the run continues. On context cancellation the records of
// finished pairs are returned with the context error.
func (r *Runner) Run(ctx context.Context, plan Plan) ([]domain.BenchmarkRecord, error) {
	plan = plan.Normalize()
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()

	r.log.InfoContext(ctx, "Benchmark is started",
		"runID", runID,
		"models", len(plan.Models),
		"urls", len(plan.URLs),
		"repetitions", plan.Repetitions,
		"summaryLength", plan.SummaryLength)

	records := make([]domain.BenchmarkRecord, 0, plan.Pairs())
	failures := 0

	for _, model := range plan.Models {
		for _, pageURL := range plan.URLs {
			if err := ctx.Err(); err != nil {
				r.log.WarnContext(ctx, "Benchmark is interrupted",
					"error", err,
					"runID", runID,
					"completedPairs", len(records))

				return records, err
			}

			record, err := r.runPair(ctx, runID, plan, model, pageURL)
			if err != nil {
				return records, err
			}

			// A pair cut short by cancellation is not reported.
			if err = ctx.Err(); err != nil {
				return records, err
			}

			if !record.Success {
				failures++
			}
			records = append(records, record)
		}
	}

	r.log.InfoContext(ctx, "Benchmark is finished",
		"runID", runID,
		"pairs", len(records),
		"failures", failures,
		"elapsedSeconds", time.Since(start).Seconds())

	return records, nil
}

func (r *Runner) runPair(
	ctx context.Context,
	runID string,
	plan Plan,
	model string,
	pageURL string,
) (domain.BenchmarkRecord, error) {
	record := domain.BenchmarkRecord{
		URL:       pageURL,
		Model:     model,
		MaxLength: plan.SummaryLength,
	}

	req := summarizer.Request{
		URL:       pageURL,
		Model:     model,
		MaxLength: plan.SummaryLength,
		Mode:      domain.ModeRepeated,
	}

	var times []float64

	for run := 1; run <= plan.Repetitions; run++ {
		if err := ctx.Err(); err != nil {
			return record, fmt.Errorf("run pair (model = %s, url = %s): %w", model, pageURL, err)
		}

		attempt, err := r.summarizer.Summarize(ctx, req)
		record.Runs++
		record.ContentCachePath = attempt.ContentCachePath
		record.SummaryCachePath = attempt.SummaryCachePath

		if r.onAttempt != nil {
			r.onAttempt(domain.Attempt{Run: run, Record: attempt})
		}

		if err != nil {
			record.Error = attempt.Error
			if record.Error == "" {
				record.Error = err.Error()
			}

			r.log.WarnContext(ctx, "Attempt failed",
				"error", err,
				"runID", runID,
				"model", model,
				"url", pageURL,
				"run", run)

			if errors.Is(err, summarizer.ErrRestricted) {
				record.Restricted = true
				break
			}

			continue
		}

		times = append(times, attempt.MeanTime)
		record.SuccessfulRuns++
		record.Summary = attempt.Summary
		record.SummaryLength = attempt.SummaryLength
		record.InputTokens = attempt.InputTokens
		record.OutputTokens = attempt.OutputTokens
	}

	record.Success = record.SuccessfulRuns > 0
	record.MeanTime, record.StddevTime = MeanStddev(times)

	r.log.InfoContext(ctx, "Pair is benchmarked",
		"runID", runID,
		"model", model,
		"url", pageURL,
		"success", record.Success,
		"successfulRuns", record.SuccessfulRuns,
		"meanSeconds", record.MeanTime,
		"stddevSeconds", record.StddevTime)

	return record, nil
}
