package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tg_scanner/internal/bot"
	"tg_scanner/internal/config"
	"tg_scanner/internal/digest"
)

func newDigestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Render today's matches as HTML and deliver them to Telegram",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.digest(cmd.Context())
		},
	}
}

func (a *app) digest(ctx context.Context) error {
	a.log.Info("starting summary generation")

	posts, err := a.todaysPosts(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		a.log.Info("no posts to include in the summary", "day", a.dayKey())
		return nil
	}

	path, err := digest.WriteHTML(a.cfg.HTMLDir, a.today(), posts)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	a.log.Info("generated HTML summary", "path", path, "posts", len(posts))

	if !a.cfg.TelegramConfigured() {
		a.log.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, skipping delivery")
		return nil
	}

	b, err := bot.New(a.cfg.TelegramBotToken, a.cfg.TelegramChatID, a.log)
	if err != nil {
		return err
	}
	return deliver(b, a.cfg.DigestMode, path, digest.Messages(a.today(), posts, digest.MessageLimit))
}

type sender interface {
	SendDocument(path, caption string) error
	SendMessages(texts []string) error
}

func deliver(s sender, mode, htmlPath string, messages []string) error {
	if mode == config.DigestBoth || mode == config.DigestFile {
		if err := s.SendDocument(htmlPath, digest.Caption); err != nil {
			return err
		}
	}
	if mode == config.DigestBoth || mode == config.DigestMessage {
		if err := s.SendMessages(messages); err != nil {
			return err
		}
	}
	return nil
}
