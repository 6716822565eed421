package domain

import (
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	// ModeRepeated always regenerates and overwrites the cached summary.
	ModeRepeated Mode = "REPEATED"
	// ModeCached reuses an existing cached summary and skips inference.
	ModeCached Mode = "CACHED"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModeRepeated:
		return ModeRepeated, nil
	case ModeCached:
		return ModeCached, nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: repeated, cached)", raw)
	}
}

type Article struct {
	Key        string
	Text       string
	Restricted bool
	FromCache  bool
	Path       string
}

type ErrorKind string

const (
	ErrorKindHTTP      ErrorKind = "http"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindDecode    ErrorKind = "decode"
	ErrorKindEmpty     ErrorKind = "empty"
)

type InferenceResult struct {
	Success      bool
	Text         string
	InputTokens  int
	OutputTokens int
	Elapsed      time.Duration
	Error        string
	ErrorKind    ErrorKind
}

// BenchmarkRecord is one report row for a (URL, model) pair. The summarizer
// produces single-attempt records that the benchmark runner aggregates.
type BenchmarkRecord struct {
	URL              string
	Model            string
	MaxLength        int
	MeanTime         float64
	StddevTime       float64
	SummaryLength    int
	InputTokens      int
	OutputTokens     int
	Success          bool
	Error            string
	Summary          string
	ContentCachePath string
	SummaryCachePath string

	Runs           int
	SuccessfulRuns int
	FromCache      bool
	Restricted     bool
}

// Attempt describes a single summarization call made during a benchmark.
type Attempt struct {
	Run    int
	Record BenchmarkRecord
}
