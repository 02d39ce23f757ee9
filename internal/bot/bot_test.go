package bot

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"
)

type sentMsg struct {
	ChatID    int64
	Text      string
	ParseMode string
	NoPreview bool
}

type sentDoc struct {
	ChatID  int64
	Caption string
	Path    string
}

type mockAPI struct {
	mu     sync.Mutex
	msgs   []sentMsg
	docs   []sentDoc
	failAt int
	calls  int
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAt > 0 && m.calls == m.failAt {
		return tgbotapi.Message{}, errors.New("Bad Request: chat not found")
	}
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		m.msgs = append(m.msgs, sentMsg{ChatID: v.ChatID, Text: v.Text, ParseMode: v.ParseMode, NoPreview: v.DisableWebPagePreview})
	case tgbotapi.DocumentConfig:
		m.docs = append(m.docs, sentDoc{ChatID: v.ChatID, Caption: v.Caption, Path: string(v.File.(tgbotapi.FilePath))})
	}
	return tgbotapi.Message{}, nil
}

func newTestBot(api *mockAPI) *Bot {
	b := newWithAPI(api, -100500, slog.New(slog.NewTextHandler(io.Discard, nil)))
	b.pause = 0
	return b
}

func TestSendDocument(t *testing.T) {
	api := &mockAPI{}
	if err := newTestBot(api).SendDocument("html/17-10-2026.html", "Daily Telegram Summary"); err != nil {
		t.Fatalf("send document: %v", err)
	}
	want := []sentDoc{{ChatID: -100500, Caption: "Daily Telegram Summary", Path: "html/17-10-2026.html"}}
	if diff := cmp.Diff(want, api.docs); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessages(t *testing.T) {
	api := &mockAPI{}
	if err := newTestBot(api).SendMessages([]string{"*Deals*\npart one", "part two"}); err != nil {
		t.Fatalf("send messages: %v", err)
	}
	want := []sentMsg{
		{ChatID: -100500, Text: "*Deals*\npart one", ParseMode: tgbotapi.ModeMarkdown, NoPreview: true},
		{ChatID: -100500, Text: "part two", ParseMode: tgbotapi.ModeMarkdown, NoPreview: true},
	}
	if diff := cmp.Diff(want, api.msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessagesStopsOnError(t *testing.T) {
	api := &mockAPI{failAt: 2}
	err := newTestBot(api).SendMessages([]string{"a", "b", "c"})
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff(1, len(api.msgs)); diff != "" {
		t.Errorf("sent count mismatch (-want +got):\n%s", diff)
	}
}
