package main

import (
	"context"

	"github.com/spf13/cobra"

	"tg_scanner/internal/cleanup"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run cleanup, scan, digest and analyze in sequence",
		Long: `run is the entry point for the periodic trigger. It cleans old files,
stops early if the keyword file is missing, scans the channels and, when
today's collection exists, builds the digest and the analysis. A failing
step is logged and the remaining steps still run where possible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.run(cmd.Context())
			return nil
		},
	}
}

func (a *app) run(ctx context.Context) {
	a.log.Info("running cleanup process")
	_ = a.cleanup(cleanup.DefaultPattern)

	if !fileExists(a.cfg.KeywordsFile) {
		a.log.Error("missing keywords file, stopping execution", "path", a.cfg.KeywordsFile)
		return
	}
	a.log.Info("found keywords file", "path", a.cfg.KeywordsFile)

	if _, err := a.scan(ctx); err != nil {
		a.log.Error("scan failed", "error", err)
	}

	if !a.collectionExists(ctx) {
		a.log.Info("no collection for today, stopping execution", "day", a.dayKey())
		return
	}

	if err := a.digest(ctx); err != nil {
		a.log.Error("digest failed", "error", err)
	}
	if err := a.analyze(ctx); err != nil {
		a.log.Error("analysis failed", "error", err)
	}
	a.log.Info("all tasks completed")
}

func (a *app) collectionExists(ctx context.Context) bool {
	store, _, err := a.openStore(ctx)
	if err != nil {
		a.log.Error("open store", "error", err)
		return false
	}
	defer func() { _ = store.Close() }()

	ok, err := store.Exists(ctx, a.dayKey())
	if err != nil {
		a.log.Error("check today's collection", "error", err)
		return false
	}
	return ok
}
