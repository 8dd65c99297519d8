package collect

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/injurywire/internal/extract"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

// BridgeCollector reads a social account through an RSS bridge and keeps
// only posts mentioning an alert keyword.
type BridgeCollector struct {
	account model.AccountConfig
	url     string
	fetcher *Fetcher
	parser  *gofeed.Parser
	table   *priority.Table
	logger  *log.Logger
}

// NewBridgeCollector creates a collector for account. The account's own
// bridge URL wins over template, where %s is replaced by the handle.
func NewBridgeCollector(account model.AccountConfig, template string, fetcher *Fetcher, table *priority.Table, logger *log.Logger) *BridgeCollector {
	url := account.BridgeURL
	if url == "" && template != "" {
		url = fmt.Sprintf(template, account.Handle)
	}
	return &BridgeCollector{
		account: account,
		url:     url,
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		table:   table,
		logger:  logger.WithPrefix("bridge"),
	}
}

func (c *BridgeCollector) Name() string {
	return "@" + c.account.Handle
}

// Collect fetches the bridge feed and returns alert-worthy posts
func (c *BridgeCollector) Collect(ctx context.Context) ([]model.RawItem, error) {
	if c.url == "" {
		return nil, nil
	}

	body, err := c.fetcher.FetchWithRetry(ctx, c.url, acceptFeed)
	if err != nil {
		return nil, fmt.Errorf("fetch @%s: %w", c.account.Handle, err)
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse @%s: %w", c.account.Handle, err)
	}

	now := nowFunc()
	var items []model.RawItem
	skipped := 0
	for _, entry := range feed.Items {
		text := strings.TrimSpace(entry.Title)
		if text == "" {
			text = strings.TrimSpace(entry.Description)
		}
		if !extract.ContainsAlert(text) {
			skipped++
			continue
		}
		item := newItem(model.ItemKindTweet, c.account.Source, text, published(entry), c.table, now)
		item.Link = entry.Link
		items = append(items, item)
	}

	c.logger.Debug("polled account", "handle", c.account.Handle, "items", len(items), "skipped", skipped)
	return items, nil
}
