package priority

import (
	"sort"
	"strings"
)

// Unranked is the rank given to sources absent from the table
const Unranked = 5

// Table maps source identifiers to authority ranks (lower = more authoritative)
type Table struct {
	ranks map[string]int
}

// NewTable creates a priority table from a source->rank map.
// Keys are matched case-insensitively; non-positive ranks are ignored.
func NewTable(ranks map[string]int) *Table {
	t := &Table{ranks: make(map[string]int, len(ranks))}
	for source, rank := range ranks {
		if rank <= 0 {
			continue
		}
		t.ranks[normalize(source)] = rank
	}
	return t
}

// Rank returns the rank of a source, or Unranked when not listed
func (t *Table) Rank(source string) int {
	if t == nil {
		return Unranked
	}
	if rank, ok := t.ranks[normalize(source)]; ok {
		return rank
	}
	return Unranked
}

// Known reports whether the source has an explicit rank
func (t *Table) Known(source string) bool {
	if t == nil {
		return false
	}
	_, ok := t.ranks[normalize(source)]
	return ok
}

// Sources returns the ranked sources ordered by rank, then name
func (t *Table) Sources() []string {
	if t == nil {
		return nil
	}
	sources := make([]string, 0, len(t.ranks))
	for source := range t.ranks {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		ri, rj := t.ranks[sources[i]], t.ranks[sources[j]]
		if ri != rj {
			return ri < rj
		}
		return sources[i] < sources[j]
	})
	return sources
}

func normalize(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}
