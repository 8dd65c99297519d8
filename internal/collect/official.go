package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

// reportEntry is one row of the official report as published
type reportEntry struct {
	PlayerName string `json:"Player Name"`
	Status     string `json:"Current Status"`
	Reason     string `json:"Reason"`
	Team       string `json:"Team"`
	Matchup    string `json:"Matchup"`
	GameDate   string `json:"Game Date"`
	GameTime   string `json:"Game Time"`
}

// OfficialCollector fetches the official injury report
type OfficialCollector struct {
	cfg     model.OfficialConfig
	fetcher *Fetcher
	table   *priority.Table
	logger  *log.Logger

	mu    sync.Mutex
	polls cadence
}

// NewOfficialCollector creates the official report collector
func NewOfficialCollector(cfg model.OfficialConfig, fetcher *Fetcher, table *priority.Table, logger *log.Logger) *OfficialCollector {
	return &OfficialCollector{
		cfg:     cfg,
		fetcher: fetcher,
		table:   table,
		logger:  logger.WithPrefix("official"),
	}
}

func (c *OfficialCollector) Name() string {
	return "official report"
}

// Due is always true inside the reporting windows (12-14h, 16-18h, from 19h
// local) and hourly otherwise.
func (c *OfficialCollector) Due(now time.Time) bool {
	if reportingWindow(now.Hour()) {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls.due(now, time.Hour)
}

func reportingWindow(hour int) bool {
	return (hour >= 12 && hour <= 14) || (hour >= 16 && hour <= 18) || hour >= 19
}

// Collect fetches and decodes the report, one item per player row
func (c *OfficialCollector) Collect(ctx context.Context) ([]model.RawItem, error) {
	body, err := c.fetcher.FetchWithRetry(ctx, c.cfg.URL, acceptJSON)
	if err != nil {
		return nil, fmt.Errorf("fetch official report: %w", err)
	}

	entries, err := decodeReport(body)
	if err != nil {
		return nil, fmt.Errorf("decode official report: %w", err)
	}

	now := nowFunc()
	items := make([]model.RawItem, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.PlayerName) == "" || strings.TrimSpace(e.Status) == "" {
			continue
		}
		entry := &model.ReportEntry{
			PlayerName: strings.TrimSpace(e.PlayerName),
			Status:     strings.TrimSpace(e.Status),
			Reason:     strings.TrimSpace(e.Reason),
			Team:       e.Team,
			Matchup:    e.Matchup,
			GameDate:   e.GameDate,
			GameTime:   e.GameTime,
		}
		// No publish time: an unchanged row re-fetched within the dedup window hashes the same
		item := newItem(model.ItemKindOfficial, c.cfg.Source, entry.Line(), "", c.table, now)
		item.Report = entry
		items = append(items, item)
	}

	c.mu.Lock()
	c.polls.last = now
	c.mu.Unlock()

	c.logger.Info("fetched official report", "entries", len(items))
	return items, nil
}

// decodeReport accepts a bare array of rows or an object wrapping one
func decodeReport(body []byte) ([]reportEntry, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var entries []reportEntry
	if body[0] == '[' {
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var wrapped struct {
		Entries []reportEntry `json:"entries"`
		Data    []reportEntry `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Entries) > 0 {
		return wrapped.Entries, nil
	}
	return wrapped.Data, nil
}
