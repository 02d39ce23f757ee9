package analyzer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tg_scanner/internal/model"
)

// utf8BOM makes spreadsheet applications detect UTF-8 (Hebrew text).
const utf8BOM = "\ufeff"

// Headers is the CSV header row.
var Headers = []string{"Product", "Description", "Price", "Is What I'm Looking For", "Link"}

// WriteCSV writes rows to <dir>/<DD-MM-YYYY>.csv and returns its path.
func WriteCSV(dir string, date time.Time, rows []model.Extraction) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create analysis directory: %w", err)
	}
	path := filepath.Join(dir, model.DayKey(date)+".csv")

	f, err := os.Create(path) //nolint:gosec // path built from configured dir
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(utf8BOM); err != nil {
		return "", fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(bw)
	if err := w.Write(Headers); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Product, r.Description, r.Price, r.Relevance, r.Link}); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, f.Close()
}
