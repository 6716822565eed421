// Package cli wires the articlebench commands.
package cli

import (
	"log/slog"

	"articlebench/internal/config"

	"github.com/spf13/cobra"
)

// Options holds process-level collaborators.
type Options struct {
	Log   *slog.Logger
	Level *slog.LevelVar
}

type rootState struct {
	opts    Options
	envFile string
	cfg     config.Config
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	state := &rootState{opts: opts}

	root := &cobra.Command{
		Use:   "articlebench",
		Short: "Summarize articles with local LLMs and benchmark the models",
		Long: "articlebench fetches articles, caches their text, summarizes them with " +
			"models served by Ollama and benchmarks summarization speed across models.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(state.envFile)
			if err != nil {
				return err
			}

			state.cfg = cfg
			if opts.Level != nil {
				opts.Level.Set(cfg.LogLevel)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&state.envFile, "env-file", ".env", "path to an optional .env file")

	root.AddCommand(newSummarizeCommand(state))
	root.AddCommand(newBenchCommand(state))
	root.AddCommand(newModelsCommand(state))

	return root
}
