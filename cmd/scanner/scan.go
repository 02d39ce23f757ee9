package main

import (
	"context"

	"github.com/spf13/cobra"

	"tg_scanner/internal/fetcher"
	"tg_scanner/internal/filter"
	"tg_scanner/internal/model"
	"tg_scanner/internal/pipeline"
	"tg_scanner/internal/postid"
	"tg_scanner/internal/registry"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the configured channels and store matching messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.scan(cmd.Context())
			return err
		},
	}
}

func (a *app) scan(ctx context.Context) (pipeline.Result, error) {
	if err := a.cfg.RequireSourceFeed(); err != nil {
		return pipeline.Result{}, err
	}

	store, backend, err := a.openStore(ctx)
	if err != nil {
		return pipeline.Result{}, err
	}
	defer func() { _ = store.Close() }()

	ids := postid.New(backend, a.log)
	ids.Load(ctx)

	vocab := filter.LoadVocabulary(a.cfg.KeywordsFile, a.log)
	sources := registry.Load(a.cfg.GroupsFile, a.log)

	p := pipeline.New(fetcher.New(a.httpClient, a.cfg.SourceFeedURL), store, ids, a.log)
	p.SetPersistEachPost(a.cfg.PersistCounterEachPost)

	window := model.TrailingWindow(a.today(), a.cfg.Window())
	return p.Run(ctx, vocab, sources, window), nil
}
