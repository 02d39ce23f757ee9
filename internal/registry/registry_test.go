package registry

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tg_scanner/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.Source
	}{
		{
			name:  "malformed id is skipped",
			input: "TELEGRAM_GROUP_ID_DEALS=123\nTELEGRAM_GROUP_ID_NEWS=abc\n",
			want:  []model.Source{{ID: 123, Name: "Deals"}},
		},
		{
			name: "comments and lines without equals are skipped",
			input: "# main groups\n" +
				"TELEGRAM_GROUP_ID_HOT_DEALS=-1001234\n" +
				"just some text\n" +
				"\n" +
				"TELEGRAM_GROUP_ID_tech_stuff = 42\n",
			want: []model.Source{
				{ID: -1001234, Name: "Hot Deals"},
				{ID: 42, Name: "Tech Stuff"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			got, err := Parse(strings.NewReader(tt.input), log)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLogsInvalidLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	if _, err := Parse(strings.NewReader("TELEGRAM_GROUP_ID_NEWS=abc\n"), log); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(buf.String(), "invalid group ID") {
		t.Errorf("expected warning in log, got %q", buf.String())
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"TELEGRAM_GROUP_ID_DEALS", "Deals"},
		{"TELEGRAM_GROUP_ID_SECOND_HAND", "Second Hand"},
		{"TELEGRAM_GROUP_ID_IPHONE2GO", "Iphone2Go"},
		{"OTHER_KEY", "Other Key"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DisplayName(tt.key)); diff != "" {
				t.Errorf("DisplayName() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := Load(filepath.Join(t.TempDir(), "groups.txt"), log); got != nil {
		t.Errorf("expected no sources, got %v", got)
	}
}
