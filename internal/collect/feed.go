package collect

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

// FeedCollector polls one RSS/Atom news feed
type FeedCollector struct {
	feed     model.FeedConfig
	nearLock model.NearLockConfig
	fetcher  *Fetcher
	parser   *gofeed.Parser
	table    *priority.Table
	logger   *log.Logger

	mu    sync.Mutex
	polls cadence
}

// NewFeedCollector creates a collector for feed
func NewFeedCollector(feed model.FeedConfig, nearLock model.NearLockConfig, fetcher *Fetcher, table *priority.Table, logger *log.Logger) *FeedCollector {
	return &FeedCollector{
		feed:     feed,
		nearLock: nearLock,
		fetcher:  fetcher,
		parser:   gofeed.NewParser(),
		table:    table,
		logger:   logger.WithPrefix("feed"),
	}
}

func (c *FeedCollector) Name() string {
	return c.feed.Name
}

// Due reports whether the feed's interval for the current cadence has elapsed
func (c *FeedCollector) Due(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls.due(now, c.feed.Interval(c.nearLock.Active(now)))
}

// Collect fetches the feed and returns one item per entry
func (c *FeedCollector) Collect(ctx context.Context) ([]model.RawItem, error) {
	body, err := c.fetcher.FetchWithRetry(ctx, c.feed.URL, acceptFeed)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.feed.Name, err)
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.feed.Name, err)
	}

	now := nowFunc()
	items := make([]model.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		text := strings.TrimSpace(entry.Title + " " + entry.Description)
		if text == "" {
			continue
		}
		item := newItem(model.ItemKindRSS, c.feed.Source, text, published(entry), c.table, now)
		item.Link = entry.Link
		items = append(items, item)
	}

	c.mu.Lock()
	c.polls.last = now
	c.mu.Unlock()

	c.logger.Debug("polled feed", "feed", c.feed.Name, "items", len(items))
	return items, nil
}

// published prefers the parsed publish time, then the update time, then the raw string
func published(entry *gofeed.Item) string {
	switch {
	case entry.PublishedParsed != nil:
		return model.FormatTimestamp(*entry.PublishedParsed)
	case entry.UpdatedParsed != nil:
		return model.FormatTimestamp(*entry.UpdatedParsed)
	case entry.Published != "":
		return entry.Published
	default:
		return entry.Updated
	}
}
