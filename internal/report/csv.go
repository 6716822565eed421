package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"articlebench/internal/domain"
)

const summaryPreviewLen = 100

var Header = []string{
	"URL",
	"Model",
	"Mean Time (s)",
	"Stddev Time (s)",
	"Summary Length",
	"Input Tokens",
	"Output Tokens",
	"Success",
	"Error",
	"Summary",
	"Content Cache Path",
	"Summary Cache Path",
}

var AttemptHeader = []string{
	"URL",
	"Model",
	"Run",
	"Time (s)",
	"Success",
	"Summary Length",
	"Target Length",
	"Length Match",
	"Cache Used",
	"Error",
	"Summary",
}

// FileName returns the default report name for a run started at t.
func FileName(dir string, prefix string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.csv", prefix, t.Unix()))
}

// WriteCSV writes one row per record under Header.
func WriteCSV(w io.Writer, records []domain.BenchmarkRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.URL,
			r.Model,
			formatSeconds(r.MeanTime),
			formatSeconds(r.StddevTime),
			strconv.Itoa(r.SummaryLength),
			strconv.Itoa(r.InputTokens),
			strconv.Itoa(r.OutputTokens),
			strconv.FormatBool(r.Success),
			r.Error,
			r.Summary,
			r.ContentCachePath,
			r.SummaryCachePath,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row (model = %s, url = %s): %w", r.Model, r.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// AttemptWriter streams per-attempt rows and flushes after each one so a
// crashed run keeps what it measured.
type AttemptWriter struct {
	cw            *csv.Writer
	headerWritten bool
}

func NewAttemptWriter(w io.Writer) *AttemptWriter {
	return &AttemptWriter{cw: csv.NewWriter(w)}
}

func (a *AttemptWriter) Write(attempt domain.Attempt) error {
	if !a.headerWritten {
		if err := a.cw.Write(AttemptHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		a.headerWritten = true
	}

	r := attempt.Record
	row := []string{
		r.URL,
		r.Model,
		strconv.Itoa(attempt.Run),
		formatSeconds(r.MeanTime),
		strconv.FormatBool(r.Success),
		strconv.Itoa(r.SummaryLength),
		strconv.Itoa(r.MaxLength),
		strconv.FormatBool(r.Success && r.SummaryLength <= r.MaxLength),
		strconv.FormatBool(r.FromCache),
		r.Error,
		preview(r.Summary),
	}

	if err := a.cw.Write(row); err != nil {
		return fmt.Errorf("write row (model = %s, url = %s): %w", r.Model, r.URL, err)
	}

	a.cw.Flush()
	if err := a.cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func preview(summary string) string {
	runes := []rune(summary)
	if len(runes) <= summaryPreviewLen {
		return summary
	}

	return string(runes[:summaryPreviewLen]) + "..."
}
