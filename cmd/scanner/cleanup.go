package main

import (
	"github.com/spf13/cobra"

	"tg_scanner/internal/cleanup"
)

func newCleanupCmd(a *app) *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored posts, summaries and analyses older than the retention period",
		RunE: func(*cobra.Command, []string) error {
			return a.cleanup(pattern)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", cleanup.DefaultPattern, "doublestar pattern of files to consider in each directory")
	return cmd
}

func (a *app) cleanup(pattern string) error {
	c := cleanup.New(a.cfg.Retention(), pattern, a.log)
	for _, dir := range []string{a.cfg.PostsDir, a.cfg.HTMLDir, a.cfg.AnalysisDir} {
		n, err := c.Clean(dir)
		if err != nil {
			a.log.Error("error deleting files", "dir", dir, "error", err)
			continue
		}
		if n > 0 {
			a.log.Info("deleted old files", "dir", dir, "count", n)
		}
	}
	return nil
}
