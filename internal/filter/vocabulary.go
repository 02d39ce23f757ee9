package filter

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"tg_scanner/internal/model"
)

// LoadVocabulary reads the keyword file at path.
// A missing or unreadable file yields an empty vocabulary, which matches nothing.
func LoadVocabulary(path string, log *slog.Logger) model.Vocabulary {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("keyword file not found", "path", path)
		} else {
			log.Warn("open keyword file", "path", path, "error", err)
		}
		return nil
	}
	defer func() { _ = f.Close() }()

	vocab, err := ParseVocabulary(f)
	if err != nil {
		log.Warn("read keyword file", "path", path, "error", err)
		return nil
	}
	log.Debug("loaded keywords", "path", path, "groups", len(vocab))
	return vocab
}

// ParseVocabulary reads one keyword group per line. Terms are comma-separated,
// trimmed and lower-cased; empty terms are kept as empty strings.
func ParseVocabulary(r io.Reader) (model.Vocabulary, error) {
	var vocab model.Vocabulary
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		parts := strings.Split(strings.TrimSpace(sc.Text()), ",")
		group := make(model.KeywordGroup, len(parts))
		for i, p := range parts {
			group[i] = strings.ToLower(strings.TrimSpace(p))
		}
		vocab = append(vocab, group)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return vocab, nil
}
