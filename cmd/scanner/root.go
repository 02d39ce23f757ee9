package main

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"tg_scanner/internal/config"
	"tg_scanner/internal/logging"
)

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "scanner",
		Short: "Scan channels for keyword matches and build a daily digest",
		Long: `scanner pulls the last day of messages from the configured channels,
keeps the ones matching the keyword file and stores them per day. The digest
and analyze commands turn a day's matches into an HTML summary, Telegram
messages and a CSV of AI-extracted products and prices.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}

			log, closer := logging.New(cfg.LogLevel, cmd.ErrOrStderr(), cfg.LogFile)
			a.cfg = cfg
			a.log = log.With("run_id", newRunID(), "cmd", cmd.Name())
			a.logCloser = closer
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newScanCmd(a),
		newDigestCmd(a),
		newAnalyzeCmd(a),
		newCleanupCmd(a),
		newRunCmd(a),
	)
	return root
}

func newRunID() string {
	return ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
}
