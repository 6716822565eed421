package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"articlebench/internal/article"
	"articlebench/internal/cache"
	"articlebench/internal/classify"
	"articlebench/internal/config"
	"articlebench/internal/inference"
	"articlebench/internal/notify"
	"articlebench/internal/ratelimiter"
	"articlebench/internal/summarizer"
)

const cacheFileExt = ".txt"

// app holds the collaborators shared by all commands.
type app struct {
	cfg        config.Config
	summarizer *summarizer.Summarizer
	models     *inference.OllamaClient
	notifier   notify.Notifier
	log        *slog.Logger
}

type buildOptions struct {
	unload bool
	// checkModel verifies the server and model right before inference.
	checkModel bool
}

func buildApp(ctx context.Context, cfg config.Config, opts buildOptions, log *slog.Logger) (*app, error) {
	contentStore, err := cache.NewFileStore(cfg.ContentDir(), cacheFileExt)
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}

	summaryStore, err := cache.NewFileStore(cfg.SummaryDir(), cacheFileExt)
	if err != nil {
		return nil, fmt.Errorf("open summary store: %w", err)
	}

	restrictions, err := cache.OpenRestrictionLog(cfg.RestrictionLogPath())
	if err != nil {
		return nil, fmt.Errorf("open restriction log: %w", err)
	}

	signatures := cfg.RestrictionSignatures
	if len(signatures) == 0 {
		signatures = classify.DefaultSignatures()
	}

	var limiter *ratelimiter.RateLimiter
	if cfg.FetchInterval > 0 {
		limiter = ratelimiter.New(ratelimiter.Fixed(cfg.FetchInterval), log)
	}

	content := cache.NewContentCache(
		contentStore,
		article.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent, limiter, log),
		article.NewGoqueryReader(),
		classify.NewSignatureClassifier(signatures, 0),
		restrictions,
		log,
	)

	models := inference.NewOllamaClient(cfg.OllamaHost, cfg.InferenceTimeout, log)

	var client inference.Client = models
	if cfg.InferenceAPI == config.InferenceAPIOpenAI {
		client = inference.NewOpenAIClient(cfg.OllamaHost, cfg.OpenAIAPIKey, cfg.InferenceTimeout)
	}

	a := &app{
		cfg:    cfg,
		models: models,
		log:    log,
	}

	var summarizerOpts []summarizer.Option
	if opts.unload {
		summarizerOpts = append(summarizerOpts, summarizer.WithUnloadAroundInference(models))
	}
	if opts.checkModel {
		summarizerOpts = append(summarizerOpts, summarizer.WithCheckBeforeInference(a.preflightModel))
	}

	a.summarizer = summarizer.New(content, cache.NewSummaryCache(summaryStore), client, log, summarizerOpts...)

	if cfg.TelegramEnabled() {
		tg, tgErr := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, log)
		if tgErr != nil {
			return nil, fmt.Errorf("create telegram notifier: %w", tgErr)
		}
		a.notifier = tg
	}

	log.DebugContext(ctx, "App is initialized",
		"cacheDir", cfg.CacheDir,
		"inferenceAPI", cfg.InferenceAPI,
		"ollamaHost", cfg.OllamaHost,
		"restrictionSignatures", len(signatures),
		"notifications", a.notifier != nil)

	return a, nil
}

// preflightModel checks that the server answers and serves model.
func (a *app) preflightModel(ctx context.Context, model string) error {
	available, err := a.ping(ctx)
	if err != nil || available == nil {
		return err
	}

	if missing := missingModels(available, model); len(missing) > 0 {
		return fmt.Errorf("models not available: %s (available: %s)",
			strings.Join(missing, ", "), strings.Join(available, ", "))
	}

	return nil
}

// preflightBench checks that the server answers. Missing models are only
// reported; their pairs fail on their own during the run.
func (a *app) preflightBench(ctx context.Context, models ...string) error {
	available, err := a.ping(ctx)
	if err != nil || available == nil {
		return err
	}

	if missing := missingModels(available, models...); len(missing) > 0 {
		a.log.WarnContext(ctx, "Models are not available on the server",
			"models", missing,
			"available", available)
	}

	return nil
}

// ping returns the served models, or nil when the API has no model listing.
func (a *app) ping(ctx context.Context) ([]string, error) {
	if a.cfg.InferenceAPI != config.InferenceAPIOllama {
		return nil, nil
	}

	if err := a.models.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping inference server: %w", err)
	}

	available, err := a.models.Models(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	if available == nil {
		available = []string{}
	}

	return available, nil
}

func missingModels(available []string, models ...string) []string {
	var missing []string
	for _, m := range models {
		if !slices.Contains(available, m) {
			missing = append(missing, m)
		}
	}

	return missing
}
