package report

import (
	"fmt"
	"strconv"
	"strings"

	"articlebench/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
)

const (
	chartHeight = 10
	chartWidth  = 60
	maxURLWidth = 48
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#e06c75"))
)

// RenderSummary renders per-pair timings as a terminal table.
func RenderSummary(records []domain.BenchmarkRecord) string {
	rows := make([][]string, 0, len(records))
	failed := make(map[int]bool)

	for i, r := range records {
		status := fmt.Sprintf("%d/%d", r.SuccessfulRuns, r.Runs)
		if !r.Success {
			failed[i] = true
		}

		rows = append(rows, []string{
			r.Model,
			shorten(r.URL, maxURLWidth),
			formatSeconds(r.MeanTime),
			formatSeconds(r.StddevTime),
			strconv.Itoa(r.SummaryLength),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Model", "URL", "Mean (s)", "Stddev (s)", "Length", "Runs").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case failed[row]:
				return failStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

// RenderChart plots the mean time of every successful pair in run order.
func RenderChart(records []domain.BenchmarkRecord) string {
	data := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Success {
			data = append(data, r.MeanTime)
		}
	}

	if len(data) < 2 {
		return ""
	}

	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("mean seconds per pair"),
	)
}

// Text renders a plain-text digest suitable for chat notifications.
func Text(records []domain.BenchmarkRecord) string {
	var b strings.Builder
	failures := 0

	for _, r := range records {
		if !r.Success {
			failures++
		}
	}

	fmt.Fprintf(&b, "Benchmark finished: %d pairs, %d failed\n", len(records), failures)

	for _, r := range records {
		if r.Success {
			fmt.Fprintf(&b, "%s %s %ss (%d/%d)\n", r.Model, r.URL, formatSeconds(r.MeanTime), r.SuccessfulRuns, r.Runs)
			continue
		}

		fmt.Fprintf(&b, "%s %s failed: %s\n", r.Model, r.URL, r.Error)
	}

	return strings.TrimRight(b.String(), "\n")
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-1]) + "…"
}
