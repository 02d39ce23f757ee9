// Package analyzer runs the AI extraction pass over a day's posts: for every
// post it asks a chat model for product, price and relevance, then exports the
// rows as CSV.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"tg_scanner/internal/model"
)

const (
	unknown  = "Unknown"
	notAvail = "N/A"
	maybe    = "MAYBE"
	errValue = "Error"
)

// Completer returns a model reply for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer extracts structured rows from posts.
type Analyzer struct {
	llm         Completer
	description string
	log         *slog.Logger
}

// New creates an Analyzer. description is what the user is looking for; the
// model rates each post against it.
func New(llm Completer, description string, log *slog.Logger) *Analyzer {
	return &Analyzer{llm: llm, description: description, log: log}
}

// LoadDescription reads the description file. A missing file yields "".
func LoadDescription(path string, log *slog.Logger) string {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("description file not found", "path", path)
		} else {
			log.Warn("read description file", "path", path, "error", err)
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Analyze returns the extraction rows for posts. A post whose request or reply
// fails yields a single Error row carrying the post link.
func (a *Analyzer) Analyze(ctx context.Context, posts []model.Post) []model.Extraction {
	var rows []model.Extraction
	for _, p := range posts {
		if ctx.Err() != nil {
			a.log.Warn("analysis cancelled", "error", ctx.Err())
			break
		}

		link := notAvail
		if p.Link != nil {
			link = *p.Link
		}

		reply, err := a.llm.Complete(ctx, buildPrompt(a.description, p.Text, link))
		if err != nil {
			a.log.Error("error processing post", "post_id", p.ID, "error", err)
			rows = append(rows, errorRow(link))
			continue
		}

		extracted, err := ParseReply(reply)
		if err != nil {
			a.log.Error("invalid JSON format from model response", "post_id", p.ID, "response", reply, "error", err)
			rows = append(rows, errorRow(link))
			continue
		}
		for _, e := range extracted {
			a.log.Info("processed product", "post_id", p.ID, "product", e.Product)
		}
		rows = append(rows, extracted...)
	}
	return rows
}

func errorRow(link string) model.Extraction {
	return model.Extraction{Product: errValue, Description: errValue, Price: errValue, Relevance: errValue, Link: link}
}

func buildPrompt(description, text, link string) string {
	var b strings.Builder
	b.WriteString("Extract the following details from the given post and return as JSON:\n")
	b.WriteString("[\n    {\n")
	b.WriteString(`        "product_name": "Extracted product name",` + "\n")
	b.WriteString(`        "short_description": "Extracted short description",` + "\n")
	b.WriteString(`        "price": "Exact price or price range",` + "\n")
	b.WriteString(`        "relevance": "YES/NO/MAYBE based on the description compare",` + "\n")
	fmt.Fprintf(&b, "        \"link\": %q\n", link)
	b.WriteString("    }\n]\n")
	fmt.Fprintf(&b, "**Description to compare with**: %s\n\n", description)
	fmt.Fprintf(&b, "**Post**: %s\n", text)
	return b.String()
}

// CleanReply strips a surrounding ```json ... ``` fence from a model reply.
func CleanReply(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseReply decodes a reply holding one extraction object or a list of them.
// Missing fields take the defaults Unknown, N/A, Unknown, MAYBE, N/A.
func ParseReply(reply string) ([]model.Extraction, error) {
	cleaned := CleanReply(reply)

	var objs []map[string]any
	if strings.HasPrefix(cleaned, "{") {
		var obj map[string]any
		if err := decodeReply(cleaned, &obj); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		objs = append(objs, obj)
	} else if err := decodeReply(cleaned, &objs); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	rows := make([]model.Extraction, 0, len(objs))
	for _, o := range objs {
		rows = append(rows, model.Extraction{
			Product:     field(o, "product_name", unknown),
			Description: field(o, "short_description", notAvail),
			Price:       field(o, "price", unknown),
			Relevance:   field(o, "relevance", maybe),
			Link:        field(o, "link", notAvail),
		})
	}
	return rows, nil
}

// decodeReply keeps numbers as their JSON literals so prices such as 1500000
// are not reformatted as floats.
func decodeReply(data string, v any) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func field(o map[string]any, key, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
