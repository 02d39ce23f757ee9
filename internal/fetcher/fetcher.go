// Package fetcher streams channel messages from a feed bridge.
//
// Every source ID is turned into a feed URL through a template such as
// "https://bridge.example/telegram/{id}.xml". The feed is downloaded, parsed
// and replayed newest-first as RawMessage values.
package fetcher

import (
	"context"
	"fmt"
	"html"
	"io"
	"iter"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"tg_scanner/internal/model"
)

// IDPlaceholder is replaced by the source ID in the feed URL template.
const IDPlaceholder = "{id}"

const (
	maxBodySize = 5 * 1024 * 1024
	userAgent   = "ChannelScanner/1.0"
)

var breakRe = regexp.MustCompile(`(?i)<br\s*/?>|</p>`)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses source feeds.
type Fetcher struct {
	client      HTTPClient
	urlTemplate string
	timeout     time.Duration
	policy      *bluemonday.Policy
}

// New creates a Fetcher with the given HTTP client and feed URL template.
func New(client HTTPClient, urlTemplate string) *Fetcher {
	return &Fetcher{
		client:      client,
		urlTemplate: urlTemplate,
		timeout:     30 * time.Second,
		policy:      bluemonday.StrictPolicy(),
	}
}

// FeedURL returns the feed URL for a source.
func (f *Fetcher) FeedURL(sourceID int64) string {
	return strings.ReplaceAll(f.urlTemplate, IDPlaceholder, strconv.FormatInt(sourceID, 10))
}

// Fetch downloads and parses the feed of src. Errors name the source and the
// bridge URL so a failing channel can be told apart in the logs.
func (f *Fetcher) Fetch(ctx context.Context, src model.Source) (*gofeed.Feed, error) {
	url := f.FeedURL(src.ID)
	feed, err := f.fetchURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch source %d (%s): %w", src.ID, url, err)
	}
	return feed, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// Messages streams the messages of src, newest first. The feed is fetched
// when iteration starts; a fetch failure is yielded as a single error.
// The response body is closed before the first message is yielded.
func (f *Fetcher) Messages(ctx context.Context, src model.Source) iter.Seq2[model.RawMessage, error] {
	return func(yield func(model.RawMessage, error) bool) {
		feed, err := f.Fetch(ctx, src)
		if err != nil {
			yield(model.RawMessage{}, err)
			return
		}
		for _, msg := range f.ToMessages(src.ID, feed.Items) {
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// ToMessages converts feed items into messages sorted newest first.
// Items without a date sort last with a zero timestamp.
func (f *Fetcher) ToMessages(sourceID int64, items []*gofeed.Item) []model.RawMessage {
	msgs := make([]model.RawMessage, 0, len(items))
	for _, item := range items {
		msgs = append(msgs, model.RawMessage{
			Timestamp: itemTime(item),
			Text:      f.itemText(item),
			SourceID:  sourceID,
		})
	}
	slices.SortStableFunc(msgs, func(a, b model.RawMessage) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return msgs
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

func (f *Fetcher) itemText(item *gofeed.Item) string {
	raw := item.Content
	if strings.TrimSpace(raw) == "" {
		raw = item.Description
	}
	if strings.TrimSpace(raw) == "" {
		raw = item.Title
	}
	raw = breakRe.ReplaceAllString(raw, "\n")
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(raw)))
}
