// Package digest renders a day's matched posts as an HTML page and as
// Telegram-sized text messages.
package digest

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg_scanner/internal/model"
)

// MessageLimit keeps chunks under Telegram's 4096-character message limit.
const MessageLimit = 4000

// Caption is attached to the HTML document when it is delivered.
const Caption = "Daily Telegram Summary"

// ErrNoPosts is returned when there is nothing to render.
var ErrNoPosts = errors.New("no posts to include in the summary")

//go:embed summary.html.tmpl
var pageSource string

var page = template.Must(template.New("summary").Parse(pageSource))

type pagePost struct {
	Keywords string
	Group    string
	Date     string
	Text     template.HTML
	Link     string
}

type pageData struct {
	Date  string
	Posts []pagePost
}

// RenderHTML writes the HTML summary of posts for the given date.
func RenderHTML(w io.Writer, date time.Time, posts []model.Post) error {
	if len(posts) == 0 {
		return ErrNoPosts
	}

	data := pageData{Date: date.Format("02/01/2006")}
	for _, p := range posts {
		pp := pagePost{
			Keywords: strings.Join(p.MatchedKeywords, ", "),
			Group:    p.GroupName,
			Date:     p.Date,
			Text:     template.HTML(strings.ReplaceAll(template.HTMLEscapeString(p.Text), "\n", "<br>")), //nolint:gosec // escaped above
		}
		if p.Link != nil {
			pp.Link = *p.Link
		}
		data.Posts = append(data.Posts, pp)
	}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

// WriteHTML renders the summary into <dir>/<DD-MM-YYYY>.html and returns its path.
func WriteHTML(dir string, date time.Time, posts []model.Post) (string, error) {
	if len(posts) == 0 {
		return "", ErrNoPosts
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create html directory: %w", err)
	}

	path := filepath.Join(dir, model.DayKey(date)+".html")
	f, err := os.Create(path) //nolint:gosec // path built from configured dir
	if err != nil {
		return "", fmt.Errorf("create summary file: %w", err)
	}
	if err := RenderHTML(f, date, posts); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close summary file: %w", err)
	}
	return path, nil
}

// Messages splits the summary into Telegram Markdown chunks of at most limit
// characters. Group names are bold; everything else is escaped. A post that
// does not fit in one chunk is split across several.
func Messages(date time.Time, posts []model.Post, limit int) []string {
	if len(posts) == 0 {
		return nil
	}

	var chunks []string
	current := fmt.Sprintf("Daily Telegram Summary - %s\n\n", model.DayKey(date))
	for _, p := range posts {
		for _, part := range splitRunes(formatEntry(p), limit) {
			if current != "" && runeLen(current)+runeLen(part) > limit {
				chunks = append(chunks, current)
				current = ""
			}
			current += part
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func formatEntry(p model.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s\nKeywords: %s\n%s\n",
		escape(p.GroupName), escape(p.Date), escape(strings.Join(p.MatchedKeywords, ", ")), escape(p.Text))
	if p.Link != nil && *p.Link != "" {
		fmt.Fprintf(&b, "🔗 %s\n", escape(*p.Link))
	}
	b.WriteString("\n" + strings.Repeat("=", 30) + "\n\n")
	return b.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// splitRunes cuts s into pieces of at most limit runes, preferring line
// breaks in the second half of a piece. A piece never ends inside an escape.
func splitRunes(s string, limit int) []string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return []string{s}
	}

	var parts []string
	for len(r) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if r[i] == '\n' {
				cut = i + 1
				break
			}
		}
		if r[cut-1] == '\\' && cut > 1 {
			cut--
		}
		parts = append(parts, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
