package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"articlebench/internal/cli"
)

func main() {
	level := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cli.Options{Log: log, Level: level})

	if err := root.ExecuteContext(ctx); err != nil {
		log.ErrorContext(ctx, "Command failed",
			"error", err,
			"args", os.Args[1:],
			"uptimeSeconds", time.Since(start).Seconds())

		stop()
		os.Exit(1)
	}
}
