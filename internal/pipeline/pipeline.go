// Package pipeline runs one ingestion pass: it scans every registered source,
// matches messages against the vocabulary and stores the matches.
package pipeline

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"tg_scanner/internal/filter"
	"tg_scanner/internal/model"
	"tg_scanner/internal/storage"
)

// Source streams the messages of a channel, newest first.
type Source interface {
	Messages(ctx context.Context, src model.Source) iter.Seq2[model.RawMessage, error]
}

// Allocator hands out post IDs and persists the counter.
type Allocator interface {
	Next() int64
	Persist(ctx context.Context) error
}

// Result holds the totals of a pass.
type Result struct {
	Sources int
	Posts   int
	Scanned int
}

// Pipeline scans sources sequentially and appends matched posts to the
// daily collection of the run.
type Pipeline struct {
	source          Source
	store           storage.Storage
	ids             Allocator
	log             *slog.Logger
	persistEachPost bool
}

// New creates a Pipeline.
func New(source Source, store storage.Storage, ids Allocator, log *slog.Logger) *Pipeline {
	return &Pipeline{
		source: source,
		store:  store,
		ids:    ids,
		log:    log,
	}
}

// SetPersistEachPost makes the pipeline persist the post counter after every
// stored post instead of once at the end of the run.
func (p *Pipeline) SetPersistEachPost(v bool) {
	p.persistEachPost = v
}

// Run scans sources in order and stores every matching message that falls in
// window. Posts go to the collection of the UTC date of window.To. Failures are
// logged and isolated to the source they happen in; Run never fails as a whole.
func (p *Pipeline) Run(ctx context.Context, vocab model.Vocabulary, sources []model.Source, window model.Window) Result {
	var res Result
	if len(sources) == 0 {
		p.log.Warn("no groups found")
		return res
	}
	if len(vocab) == 0 {
		p.log.Warn("empty vocabulary, nothing will match")
	}

	dayKey := model.DayKey(window.To)
	for _, src := range sources {
		if ctx.Err() != nil {
			p.log.Warn("scan cancelled", "error", ctx.Err())
			break
		}
		saved, scanned := p.processSource(ctx, vocab, src, window, dayKey)
		res.Sources++
		res.Posts += saved
		res.Scanned += scanned
	}

	// IDs already handed out must be recorded even when the run is cancelled.
	if err := p.ids.Persist(context.WithoutCancel(ctx)); err != nil {
		p.log.Error("persist post counter", "error", err)
	}

	p.log.Info("scan finished",
		"groups", len(sources),
		"posts_saved", res.Posts,
		"messages_scanned", res.Scanned,
	)
	return res
}

func (p *Pipeline) processSource(ctx context.Context, vocab model.Vocabulary, src model.Source, window model.Window, dayKey string) (saved, scanned int) {
	p.log.Debug("scanning group", "group", src.Name, "group_id", src.ID)

	for msg, err := range p.source.Messages(ctx, src) {
		if err != nil {
			p.log.Error("critical error in group", "group", src.Name, "error", err)
			break
		}
		scanned++

		// Streams are newest first: the first message outside the window ends the source.
		if msg.Timestamp.Before(window.From) {
			break
		}
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}

		ok, err := p.handleMessage(ctx, vocab, src, msg, dayKey)
		if err != nil {
			p.log.Error("critical error in group", "group", src.Name, "error", err)
			break
		}
		if ok {
			saved++
		}
		if ctx.Err() != nil {
			break
		}
	}

	p.log.Info("group scanned",
		"group", src.Name,
		"posts_saved", saved,
		"messages_scanned", scanned,
	)
	return saved, scanned
}

func (p *Pipeline) handleMessage(ctx context.Context, vocab model.Vocabulary, src model.Source, msg model.RawMessage, dayKey string) (bool, error) {
	matched := filter.Match(msg.Text, vocab)
	if len(matched) == 0 {
		return false, nil
	}

	post := model.Post{
		ID:              p.ids.Next(),
		Date:            msg.Timestamp.UTC().Format(model.TimestampLayout),
		Text:            msg.Text,
		Source:          model.SourceTelegram,
		GroupName:       src.Name,
		MatchedKeywords: matched,
	}
	if link, ok := filter.ExtractFirstLink(msg.Text); ok {
		post.Link = &link
	}

	if err := p.store.Append(ctx, dayKey, post); err != nil {
		return false, err
	}

	if p.persistEachPost {
		if err := p.ids.Persist(context.WithoutCancel(ctx)); err != nil {
			p.log.Error("persist post counter", "post_id", post.ID, "error", err)
		}
	}

	p.log.Info("saved post",
		"group", src.Name,
		"post_id", post.ID,
		"keywords", strings.Join(matched, ", "),
		"link", derefOr(post.Link, ""),
	)
	return true, nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
