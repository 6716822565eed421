package cli

import (
	"fmt"
	"slices"

	"articlebench/internal/inference"
	"articlebench/internal/sources"

	"github.com/spf13/cobra"
)

func newModelsCommand(state *rootState) *cobra.Command {
	var unloadAll bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models served by Ollama and which are loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := state.opts.Log
			client := inference.NewOllamaClient(state.cfg.OllamaHost, state.cfg.InferenceTimeout, log)

			if unloadAll {
				unloaded, err := inference.UnloadAll(ctx, client, log)
				if err != nil {
					return fmt.Errorf("unload models: %w", err)
				}

				log.InfoContext(ctx, "Models are unloaded",
					"count", unloaded)
			}

			available, err := client.Models(ctx)
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}

			loaded, err := client.LoadedModels(ctx)
			if err != nil {
				return fmt.Errorf("list loaded models: %w", err)
			}

			generative, _ := sources.FilterGenerativeModels(available)
			out := cmd.OutOrStdout()

			for _, m := range available {
				var tags []string
				if slices.Contains(loaded, m) {
					tags = append(tags, "loaded")
				}
				if !slices.Contains(generative, m) {
					tags = append(tags, "embedding")
				}

				if len(tags) == 0 {
					fmt.Fprintln(out, m)
					continue
				}
				fmt.Fprintf(out, "%s %v\n", m, tags)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&unloadAll, "unload", false, "unload all loaded models first")

	return cmd
}
