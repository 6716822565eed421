package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"articlebench/internal/bench"
	"articlebench/internal/domain"
	"articlebench/internal/report"
	"articlebench/internal/scheduler"
	"articlebench/internal/sources"

	"github.com/spf13/cobra"
)

const reportPrefix = "bench"

type benchFlags struct {
	models      string
	modelFile   string
	urls        string
	urlFile     string
	feed        string
	channel     string
	feedLimit   int
	planFile    string
	repetitions int
	length      int
	outDir      string
	runsOut     string
	schedule    string
	unload      bool
	noChart     bool
}

func newBenchCommand(state *rootState) *cobra.Command {
	var flags benchFlags

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark summarization time across models and URLs",
		Long: `Run every model against every URL several times and write a CSV report.

Models and URLs come from comma-separated flags, files with one entry per line
('#' starts a comment), an RSS/Atom feed, a public Telegram channel or a YAML
plan file. Flags override the plan file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			plan, schedule, err := resolvePlan(ctx, cmd, state, flags)
			if err != nil {
				return err
			}

			a, err := buildApp(ctx, state.cfg, buildOptions{unload: flags.unload}, state.opts.Log)
			if err != nil {
				return err
			}

			if err = a.preflightBench(ctx, plan.Models...); err != nil {
				return err
			}

			job := func(ctx context.Context) error {
				return runBenchmark(ctx, a, plan, flags, cmd.OutOrStdout())
			}

			if schedule == "" {
				return job(ctx)
			}

			return runScheduled(ctx, a, schedule, job)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.models, "models", "m", "", "comma-separated models")
	f.StringVar(&flags.modelFile, "model-file", "", "file with one model per line")
	f.StringVarP(&flags.urls, "urls", "u", "", "comma-separated URLs")
	f.StringVar(&flags.urlFile, "url-file", "", "file with one URL per line")
	f.StringVar(&flags.feed, "feed", "", "RSS or Atom feed to take URLs from")
	f.StringVar(&flags.channel, "channel", "", "public Telegram channel (@name or t.me link) to take URLs from")
	f.IntVar(&flags.feedLimit, "feed-limit", 5, "maximum URLs taken from the feed or channel")
	f.StringVar(&flags.planFile, "plan", "", "YAML plan file")
	f.IntVarP(&flags.repetitions, "runs", "r", bench.DefaultRepetitions, "attempts per model and URL")
	f.IntVarP(&flags.length, "length", "l", bench.DefaultSummaryLength, "target summary length in characters")
	f.StringVarP(&flags.outDir, "out", "o", ".", "directory for the CSV report")
	f.StringVar(&flags.runsOut, "runs-out", "", "optional CSV file for per-attempt rows")
	f.StringVar(&flags.schedule, "schedule", "", "cron spec to repeat the benchmark (UTC)")
	f.BoolVar(&flags.unload, "unload", false, "unload all models before and after each inference")
	f.BoolVar(&flags.noChart, "no-chart", false, "do not print the timing chart")

	return cmd
}

func resolvePlan(
	ctx context.Context,
	cmd *cobra.Command,
	state *rootState,
	flags benchFlags,
) (bench.Plan, string, error) {
	log := state.opts.Log

	var file sources.PlanFile
	if flags.planFile != "" {
		loaded, err := sources.LoadPlan(flags.planFile)
		if err != nil {
			return bench.Plan{}, "", err
		}
		file = loaded
	}

	plan := file.Plan

	models, err := sources.ParseList(flags.models, flags.modelFile)
	if err != nil {
		return bench.Plan{}, "", fmt.Errorf("read models: %w", err)
	}
	if len(models) > 0 {
		plan.Models = models
	}

	kept, dropped := sources.FilterGenerativeModels(plan.Models)
	if len(dropped) > 0 {
		log.WarnContext(ctx, "Embedding models are skipped",
			"models", dropped)
	}
	plan.Models = kept

	rawURLs, err := sources.ParseList(flags.urls, flags.urlFile)
	if err != nil {
		return bench.Plan{}, "", fmt.Errorf("read urls: %w", err)
	}
	if len(rawURLs) > 0 {
		plan.URLs = rawURLs
	}

	urls, err := sources.ExtractURLs(plan.URLs)
	if err != nil {
		return bench.Plan{}, "", fmt.Errorf("parse urls: %w", err)
	}
	plan.URLs = urls

	feedURL, feedLimit := file.Feed, file.FeedLimit
	if flags.feed != "" {
		feedURL = flags.feed
	}
	if cmd.Flags().Changed("feed-limit") || feedLimit == 0 {
		feedLimit = flags.feedLimit
	}

	if feedURL != "" {
		reader := sources.NewFeedReader(state.cfg.FetchTimeout, state.cfg.UserAgent, log)

		fromFeed, feedErr := reader.URLs(ctx, feedURL, feedLimit)
		if feedErr != nil {
			return bench.Plan{}, "", feedErr
		}
		plan.URLs = append(plan.URLs, fromFeed...)
	}

	channel := file.Channel
	if flags.channel != "" {
		channel = flags.channel
	}

	if channel != "" {
		reader := sources.NewChannelReader(state.cfg.FetchTimeout, state.cfg.UserAgent, log)

		fromChannel, channelErr := reader.URLs(ctx, channel, feedLimit)
		if channelErr != nil {
			return bench.Plan{}, "", channelErr
		}
		plan.URLs = append(plan.URLs, fromChannel...)
	}

	if cmd.Flags().Changed("runs") || plan.Repetitions == 0 {
		plan.Repetitions = flags.repetitions
	}
	if cmd.Flags().Changed("length") || plan.SummaryLength == 0 {
		plan.SummaryLength = flags.length
	}

	plan = plan.Normalize()
	if err = plan.Validate(); err != nil {
		return bench.Plan{}, "", err
	}

	schedule := file.Schedule
	if flags.schedule != "" {
		schedule = flags.schedule
	}
	if schedule != "" {
		if err = scheduler.Validate(schedule); err != nil {
			return bench.Plan{}, "", err
		}
	}

	return plan, schedule, nil
}

func runBenchmark(ctx context.Context, a *app, plan bench.Plan, flags benchFlags, stdout io.Writer) error {
	log := a.log
	var runnerOpts []bench.Option

	if flags.runsOut != "" {
		attemptsFile, err := os.Create(flags.runsOut)
		if err != nil {
			return fmt.Errorf("create runs file: %w", err)
		}
		defer func() {
			if err = attemptsFile.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to close runs file",
					"error", err,
					"path", flags.runsOut)
			}
		}()

		attempts := report.NewAttemptWriter(attemptsFile)
		runnerOpts = append(runnerOpts, bench.WithOnAttempt(func(attempt domain.Attempt) {
			if writeErr := attempts.Write(attempt); writeErr != nil {
				log.ErrorContext(ctx, "Failed to write attempt row",
					"error", writeErr,
					"path", flags.runsOut,
					"model", attempt.Record.Model,
					"url", attempt.Record.URL,
					"run", attempt.Run)
			}
		}))
	}

	records, runErr := bench.NewRunner(a.summarizer, log, runnerOpts...).Run(ctx, plan)
	if len(records) == 0 && runErr != nil {
		return runErr
	}

	path := report.FileName(flags.outDir, reportPrefix, time.Now())
	if err := writeReport(path, records); err != nil {
		return errors.Join(runErr, err)
	}

	log.InfoContext(ctx, "Report is written",
		"path", path,
		"pairs", len(records))

	fmt.Fprintln(stdout, report.RenderSummary(records))
	if !flags.noChart {
		if chart := report.RenderChart(records); chart != "" {
			fmt.Fprintln(stdout, chart)
		}
	}
	fmt.Fprintf(stdout, "Results saved to %s\n", path)

	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, report.Text(records)); err != nil {
			log.ErrorContext(ctx, "Failed to send notification",
				"error", err,
				"pairs", len(records))
		}
	}

	return runErr
}

func writeReport(path string, records []domain.BenchmarkRecord) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close report: %w", closeErr))
		}
	}()

	return report.WriteCSV(f, records)
}

func runScheduled(ctx context.Context, a *app, spec string, job scheduler.Job) error {
	s := scheduler.New(ctx, spec, job, 0, a.log)

	if err := s.Start(); err != nil {
		return err
	}
	defer s.Stop()

	a.log.InfoContext(ctx, "Scheduler is started",
		"spec", spec,
		"timezone", scheduler.Timezone,
		"next", s.Next())

	<-ctx.Done()

	a.log.InfoContext(ctx, "Scheduler is stopping",
		"error", ctx.Err())

	return nil
}
