package collect

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/injurywire/internal/dedup"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

// FileCollector reads RawItems from a JSON Lines file, or stdin for "-"
type FileCollector struct {
	path   string
	stdin  io.Reader
	table  *priority.Table
	logger *log.Logger
}

// NewFileCollector creates a collector for path
func NewFileCollector(path string, table *priority.Table, logger *log.Logger) *FileCollector {
	return &FileCollector{
		path:   path,
		stdin:  os.Stdin,
		table:  table,
		logger: logger.WithPrefix("file"),
	}
}

func (c *FileCollector) Name() string {
	return c.path
}

// Collect reads every item in the file
func (c *FileCollector) Collect(ctx context.Context) ([]model.RawItem, error) {
	if c.path == "-" {
		return ReadItems(c.stdin, c.table, c.logger)
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadItems(f, c.table, c.logger)
}

// ReadItems decodes one RawItem per line. Blank lines and # comments are
// skipped; undecodable lines are logged and skipped. Missing priorities are
// filled from table and missing dedup keys are computed.
func ReadItems(r io.Reader, table *priority.Table, logger *log.Logger) ([]model.RawItem, error) {
	var items []model.RawItem

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var item model.RawItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			logger.Warn("skipping malformed item", "line", lineNo, "err", err)
			continue
		}
		if item.Kind == "" {
			item.Kind = model.ItemKindFile
		}
		if item.SourcePriority <= 0 {
			item.SourcePriority = table.Rank(item.Source)
		}
		if item.DedupKey == "" {
			item.DedupKey = dedup.KeyOf(item)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return items, fmt.Errorf("read input: %w", err)
	}
	return items, nil
}
