package assume

import (
	"sort"
	"sync"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

// Merger resolves competing assumptions for the same player and game
type Merger struct {
	table *priority.Table
}

// NewMerger creates a merger ranking sources by the given table
func NewMerger(table *priority.Table) *Merger {
	return &Merger{table: table}
}

// Merge returns the surviving assumption. The lower source rank wins; on a
// rank tie the later timestamp wins and identical timestamps keep incoming.
func (m *Merger) Merge(existing, incoming model.Assumption) model.Assumption {
	if m.Prefers(existing, incoming) {
		return incoming
	}
	return existing
}

// Prefers reports whether incoming beats existing
func (m *Merger) Prefers(existing, incoming model.Assumption) bool {
	re, ri := m.table.Rank(existing.Source), m.table.Rank(incoming.Source)
	if ri != re {
		return ri < re
	}
	return !(existing.Timestamp > incoming.Timestamp)
}

// Fold reduces assumptions to one survivor per key, in order of each key's
// first appearance
func (m *Merger) Fold(assumptions []model.Assumption) []model.Assumption {
	index := make(map[model.Key]int)
	var out []model.Assumption
	for _, a := range assumptions {
		i, ok := index[a.Key()]
		if !ok {
			index[a.Key()] = len(out)
			out = append(out, a)
			continue
		}
		out[i] = m.Merge(out[i], a)
	}
	return out
}

// Ledger holds the current survivor per key and serializes merges into it
type Ledger struct {
	mu      sync.Mutex
	merger  *Merger
	current map[model.Key]model.Assumption
	offered int
}

// NewLedger creates an empty ledger
func NewLedger(merger *Merger) *Ledger {
	return &Ledger{
		merger:  merger,
		current: make(map[model.Key]model.Assumption),
	}
}

// Offer merges a candidate into its key and reports whether it became the
// current survivor
func (l *Ledger) Offer(a model.Assumption) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.offered++
	existing, ok := l.current[a.Key()]
	if ok && !l.merger.Prefers(existing, a) {
		return false
	}
	l.current[a.Key()] = a
	return true
}

// Get returns the current survivor for key
func (l *Ledger) Get(key model.Key) (model.Assumption, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.current[key]
	return a, ok
}

// Superseded returns how many offered candidates lost a merge
func (l *Ledger) Superseded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offered - len(l.current)
}

// Survivors returns current survivors ordered by player id, then game id
func (l *Ledger) Survivors() []model.Assumption {
	l.mu.Lock()
	out := make([]model.Assumption, 0, len(l.current))
	for _, a := range l.current {
		out = append(out, a)
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}
