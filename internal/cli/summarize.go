package cli

import (
	"fmt"

	"articlebench/internal/domain"
	"articlebench/internal/summarizer"

	"github.com/spf13/cobra"
)

const (
	DefaultModel  = "qwen3:1.7b"
	DefaultLength = 257
)

func newSummarizeCommand(state *rootState) *cobra.Command {
	var (
		model  string
		length int
		mode   string
		unload bool
	)

	cmd := &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize one article and print the summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := state.opts.Log

			parsedMode, err := domain.ParseMode(mode)
			if err != nil {
				return err
			}

			if length < 1 {
				return fmt.Errorf("length must be positive, got %d", length)
			}

			a, err := buildApp(ctx, state.cfg, buildOptions{unload: unload, checkModel: true}, log)
			if err != nil {
				return err
			}

			record, err := a.summarizer.Summarize(ctx, summarizer.Request{
				URL:       args[0],
				Model:     model,
				MaxLength: length,
				Mode:      parsedMode,
			})
			if err != nil {
				return fmt.Errorf("summarize %s: %w", args[0], err)
			}

			log.InfoContext(ctx, "Summary is ready",
				"url", record.URL,
				"model", record.Model,
				"fromCache", record.FromCache,
				"elapsedSeconds", record.MeanTime,
				"length", record.SummaryLength,
				"maxLength", length,
				"contentCachePath", record.ContentCachePath,
				"summaryCachePath", record.SummaryCachePath)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), record.Summary)

			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", DefaultModel, "model name")
	cmd.Flags().IntVarP(&length, "length", "l", DefaultLength, "target summary length in characters")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeCached), "cache mode: repeated or cached")
	cmd.Flags().BoolVar(&unload, "unload", false, "unload all models before and after inference")

	return cmd
}
