// Package registry parses the configured list of channels to scan.
package registry

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"

	"tg_scanner/internal/model"
)

// KeyPrefix is stripped from registry keys to build display names.
const KeyPrefix = "TELEGRAM_GROUP_ID_"

// Load reads the registry file at path. A missing file yields no sources.
func Load(path string, log *slog.Logger) []model.Source {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("groups file not found", "path", path)
		} else {
			log.Warn("open groups file", "path", path, "error", err)
		}
		return nil
	}
	defer func() { _ = f.Close() }()

	sources, err := Parse(f, log)
	if err != nil {
		log.Warn("read groups file", "path", path, "error", err)
	}
	return sources
}

// Parse reads lines of the form PREFIX_NAME=id. Comment lines and lines
// without "=" are skipped; lines with a non-integer id are logged and skipped.
func Parse(r io.Reader, log *slog.Logger) ([]model.Source, error) {
	var sources []model.Source
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			log.Warn("invalid group ID", "line", line)
			continue
		}
		sources = append(sources, model.Source{ID: id, Name: DisplayName(key)})
	}
	return sources, sc.Err()
}

// DisplayName turns a registry key such as TELEGRAM_GROUP_ID_HOT_DEALS into
// "Hot Deals".
func DisplayName(key string) string {
	name := strings.TrimPrefix(strings.TrimSpace(key), KeyPrefix)
	name = strings.ReplaceAll(name, "_", " ")
	return titleCase(name)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "IPHONE2GO" becomes "Iphone2Go".
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
