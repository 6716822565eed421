package bench_test

import (
	"articlebench/internal/bench"
	"articlebench/internal/domain"
	"articlebench/internal/summarizer"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
)

type stubSummarizer struct {
	mu       sync.Mutex
	calls    []summarizer.Request
	failing  map[[2]string]bool
	times    []float64
	onCall   func(call int)
	restrict map[string]bool
}

func (s *stubSummarizer) Summarize(
	_ context.Context,
	req summarizer.Request,
) (domain.BenchmarkRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	call := len(s.calls)
	s.mu.Unlock()

	if s.onCall != nil {
		s.onCall(call)
	}

	record := domain.BenchmarkRecord{
		URL:       req.URL,
		Model:     req.Model,
		MaxLength: req.MaxLength,
		Runs:      1,
	}

	if s.restrict[req.URL] {
		record.Error = "restricted"
		record.Restricted = true

		return record, summarizer.ErrRestricted
	}

	if s.failing[[2]string{req.Model, req.URL}] {
		record.Error = "400 Bad Request: boom"

		return record, errors.New(record.Error)
	}

	record.Success = true
	record.SuccessfulRuns = 1
	record.Summary = "X - Y - Z"
	record.SummaryLength = 9
	record.InputTokens = 100
	record.OutputTokens = 20
	record.MeanTime = 1
	if len(s.times) > 0 {
		record.MeanTime = s.times[(call-1)%len(s.times)]
	}

	return record, nil
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

func TestRunThreeByThreeWithFailingPairs(t *testing.T) {
	stub := &stubSummarizer{
		failing: map[[2]string]bool{
			{"m2", "https://example.com/1"}: true,
			{"m3", "https://example.com/3"}: true,
		},
	}

	runner := bench.NewRunner(stub, slog.Default())

	records, err := runner.Run(context.Background(), bench.Plan{
		Models:        []string{"m1", "m2", "m3"},
		URLs:          []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"},
		SummaryLength: 257,
		Repetitions:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 9 {
		t.Fatalf("expected 9 records, got %d", len(records))
	}

	failures := 0
	for _, r := range records {
		if !r.Success {
			failures++
			if r.Error != "400 Bad Request: boom" {
				t.Fatalf("expected raw error on failed pair, got %q", r.Error)
			}
		}
	}

	if failures != 2 {
		t.Fatalf("expected 2 failures, got %d", failures)
	}

	wantOrder := [][2]string{
		{"m1", "https://example.com/1"},
		{"m1", "https://example.com/2"},
		{"m1", "https://example.com/3"},
		{"m2", "https://example.com/1"},
	}
	for i, want := range wantOrder {
		if records[i].Model != want[0] || records[i].URL != want[1] {
			t.Fatalf("unexpected order at %d: got %s %s", i, records[i].Model, records[i].URL)
		}
	}
}

func TestRunComputesStatsOverSuccessfulAttempts(t *testing.T) {
	stub := &stubSummarizer{times: []float64{1, 2, 3}}

	var mu sync.Mutex
	var attempts []domain.Attempt

	runner := bench.NewRunner(stub, slog.Default(), bench.WithOnAttempt(func(a domain.Attempt) {
		mu.Lock()
		defer mu.Unlock()
		attempts = append(attempts, a)
	}))

	records, err := runner.Run(context.Background(), bench.Plan{
		Models:        []string{"m1"},
		URLs:          []string{"https://example.com/1"},
		SummaryLength: 100,
		Repetitions:   3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := records[0]
	if r.Runs != 3 || r.SuccessfulRuns != 3 || !r.Success {
		t.Fatalf("unexpected run counts: %+v", r)
	}

	if r.MeanTime != 2 || math.Abs(r.StddevTime-1) > 1e-9 {
		t.Fatalf("unexpected stats: mean %v stddev %v", r.MeanTime, r.StddevTime)
	}

	if r.InputTokens != 100 || r.OutputTokens != 20 || r.Summary != "X - Y - Z" {
		t.Fatalf("unexpected last successful attempt fields: %+v", r)
	}

	if len(attempts) != 3 || attempts[2].Run != 3 {
		t.Fatalf("expected 3 observed attempts, got %+v", attempts)
	}
}

func TestRunAllAttemptsFailing(t *testing.T) {
	stub := &stubSummarizer{
		failing: map[[2]string]bool{{"m1", "https://example.com/1"}: true},
	}

	records, err := bench.NewRunner(stub, slog.Default()).Run(context.Background(), bench.Plan{
		Models:        []string{"m1"},
		URLs:          []string{"https://example.com/1"},
		SummaryLength: 100,
		Repetitions:   2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := records[0]
	if r.Success || r.MeanTime != 0 || r.StddevTime != 0 || r.Summary != "" {
		t.Fatalf("unexpected failed record: %+v", r)
	}

	if r.Runs != 2 || r.SuccessfulRuns != 0 {
		t.Fatalf("unexpected run counts: %+v", r)
	}
}

func TestRunStopsRepeatingRestrictedPages(t *testing.T) {
	stub := &stubSummarizer{restrict: map[string]bool{"https://example.com/gated": true}}

	records, err := bench.NewRunner(stub, slog.Default()).Run(context.Background(), bench.Plan{
		Models:        []string{"m1"},
		URLs:          []string{"https://example.com/gated"},
		SummaryLength: 100,
		Repetitions:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.callCount(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}

	if !records[0].Restricted || records[0].Error != "restricted" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestRunReturnsPartialRecordsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubSummarizer{}
	stub.onCall = func(call int) {
		if call == 2 {
			cancel()
		}
	}

	records, err := bench.NewRunner(stub, slog.Default()).Run(ctx, bench.Plan{
		Models:        []string{"m1", "m2"},
		URLs:          []string{"https://example.com/1", "https://example.com/2"},
		SummaryLength: 100,
		Repetitions:   1,
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 finished pair, got %d", len(records))
	}
}

func TestRunRejectsInvalidPlans(t *testing.T) {
	tooMany := make([]string, bench.MaxURLs+1)
	for i := range tooMany {
		tooMany[i] = "https://example.com/" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	plans := []bench.Plan{
		{URLs: []string{"https://example.com"}, SummaryLength: 1, Repetitions: 1},
		{Models: []string{"m"}, SummaryLength: 1, Repetitions: 1},
		{Models: []string{"m"}, URLs: tooMany, SummaryLength: 1, Repetitions: 1},
		{Models: []string{"m"}, URLs: []string{"https://example.com"}, SummaryLength: 0, Repetitions: 1},
		{Models: []string{"m"}, URLs: []string{"https://example.com"}, SummaryLength: 1, Repetitions: 0},
	}

	stub := &stubSummarizer{}
	runner := bench.NewRunner(stub, slog.Default())

	for i, plan := range plans {
		if _, err := runner.Run(context.Background(), plan); !errors.Is(err, bench.ErrInvalidPlan) {
			t.Fatalf("plan %d: expected ErrInvalidPlan, got %v", i, err)
		}
	}

	if got := stub.callCount(); got != 0 {
		t.Fatalf("expected no work for invalid plans, got %d calls", got)
	}
}

func TestPlanNormalizeDeduplicates(t *testing.T) {
	plan := bench.Plan{
		Models: []string{" m1 ", "m2", "m1", ""},
		URLs:   []string{"https://example.com/a", "https://example.com/a"},
	}.Normalize()

	if len(plan.Models) != 2 || plan.Models[0] != "m1" || plan.Models[1] != "m2" {
		t.Fatalf("unexpected models: %v", plan.Models)
	}

	if len(plan.URLs) != 1 {
		t.Fatalf("unexpected urls: %v", plan.URLs)
	}
}

func TestMeanStddev(t *testing.T) {
	if m, s := bench.MeanStddev(nil); m != 0 || s != 0 {
		t.Fatalf("expected zeros for empty input, got %v %v", m, s)
	}

	if m, s := bench.MeanStddev([]float64{4}); m != 4 || s != 0 {
		t.Fatalf("expected single value stats, got %v %v", m, s)
	}

	m, s := bench.MeanStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if m != 5 || math.Abs(s-2.138089935) > 1e-6 {
		t.Fatalf("unexpected stats: %v %v", m, s)
	}
}
