// Package collect gathers raw news items from feeds, social bridges,
// the official injury report, and JSON Lines files.
package collect

import (
	"context"
	"time"

	"github.com/ppiankov/injurywire/internal/dedup"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

var nowFunc = time.Now

// Collector produces RawItems from one source
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]model.RawItem, error)
}

// Scheduled is implemented by collectors with their own polling cadence
type Scheduled interface {
	Due(now time.Time) bool
}

// newItem fills the fields every collector sets the same way
func newItem(kind model.ItemKind, source, text, published string, table *priority.Table, fetched time.Time) model.RawItem {
	item := model.RawItem{
		Text:           text,
		Source:         source,
		SourcePriority: table.Rank(source),
		PublishedAt:    published,
		FetchedAt:      model.FormatTimestamp(fetched),
		Kind:           kind,
	}
	item.DedupKey = dedup.KeyOf(item)
	return item
}

// cadence tracks the last successful poll of an interval-driven collector
type cadence struct {
	last time.Time
}

func (c *cadence) due(now time.Time, interval time.Duration) bool {
	return c.last.IsZero() || interval <= 0 || now.Sub(c.last) >= interval
}
