package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tg_scanner/internal/analyzer"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Extract products, prices and relevance from today's matches into a CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.analyze(cmd.Context())
		},
	}
}

func (a *app) analyze(ctx context.Context) error {
	if err := a.cfg.RequireOpenAI(); err != nil {
		return err
	}
	a.log.Info("starting analysis")

	posts, err := a.todaysPosts(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		a.log.Info("no posts to analyze", "day", a.dayKey())
		return nil
	}

	client := &analyzer.Client{
		BaseURL:    a.cfg.OpenAIBaseURL,
		APIKey:     a.cfg.OpenAIAPIKey,
		Model:      a.cfg.OpenAIModel,
		MaxTokens:  500,
		HTTPClient: a.httpClient,
	}
	description := analyzer.LoadDescription(a.cfg.DescriptionFile, a.log)
	rows := analyzer.New(client, description, a.log).Analyze(ctx, posts)

	path, err := analyzer.WriteCSV(a.cfg.AnalysisDir, a.today(), rows)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	a.log.Info("saved analysis", "path", path, "rows", len(rows))
	return nil
}
