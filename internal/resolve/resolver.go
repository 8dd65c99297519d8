package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/injurywire/internal/model"
)

// DefaultFuzzyThreshold is the minimum similarity accepted by fuzzy matching
const DefaultFuzzyThreshold = 0.85

// Strategy names how a name was resolved
type Strategy string

const (
	StrategyExact Strategy = "exact"
	StrategyAlias Strategy = "alias"
	StrategyFuzzy Strategy = "fuzzy"
)

// Directory supplies the players the resolver matches against
type Directory interface {
	Players(ctx context.Context) ([]model.Player, error)
}

// StaticDirectory is a fixed in-memory player list
type StaticDirectory []model.Player

// Players returns the static list
func (d StaticDirectory) Players(ctx context.Context) ([]model.Player, error) {
	return d, nil
}

// Match is the outcome of resolving one name. A zero Match is a miss.
type Match struct {
	PlayerID int64    `json:"player_id"`
	Name     string   `json:"name,omitempty"` // Canonical name matched
	Strategy Strategy `json:"strategy,omitempty"`
	Score    float64  `json:"score"`
}

// Resolved reports whether the match found a player
func (m Match) Resolved() bool {
	return m.Strategy != ""
}

type cachedPlayer struct {
	id    int64
	name  string
	lower string
}

// Resolver maps free-text player names to player ids
type Resolver struct {
	mu        sync.RWMutex
	directory Directory
	players   []cachedPlayer   // Sorted by lowercased name, then id
	exact     map[string]int64 // Lowercased name -> id
	aliases   map[string]string
	threshold float64
	logger    *log.Logger
}

// NewResolver creates a resolver over the given directory with the default
// alias table. Call Refresh to load players.
func NewResolver(directory Directory, threshold float64, logger *log.Logger) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	if logger == nil {
		logger = log.Default()
	}

	r := &Resolver{
		directory: directory,
		exact:     make(map[string]int64),
		aliases:   make(map[string]string),
		threshold: threshold,
		logger:    logger.WithPrefix("resolve"),
	}
	for alias, name := range defaultAliases {
		r.aliases[strings.ToLower(alias)] = name
	}
	return r
}

// Refresh reloads the player cache from the directory
func (r *Resolver) Refresh(ctx context.Context) error {
	if r.directory == nil {
		r.load(nil)
		return nil
	}

	players, err := r.directory.Players(ctx)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}

	r.load(players)
	r.logger.Info("player cache refreshed", "players", len(players))
	return nil
}

// load replaces the cache. Sorting pins fuzzy tie-breaks independent of
// directory order.
func (r *Resolver) load(players []model.Player) {
	cached := make([]cachedPlayer, 0, len(players))
	for _, p := range players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		cached = append(cached, cachedPlayer{id: p.ID, name: name, lower: strings.ToLower(name)})
	}
	sort.SliceStable(cached, func(i, j int) bool {
		if cached[i].lower != cached[j].lower {
			return cached[i].lower < cached[j].lower
		}
		return cached[i].id < cached[j].id
	})

	exact := make(map[string]int64, len(cached))
	for _, p := range cached {
		if _, exists := exact[p.lower]; !exists {
			exact[p.lower] = p.id
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = cached
	r.exact = exact
}

// AddAlias registers a nickname for subsequent resolutions
func (r *Resolver) AddAlias(alias, canonical string) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	canonical = strings.TrimSpace(canonical)
	if alias == "" || canonical == "" {
		return
	}

	r.mu.Lock()
	r.aliases[alias] = canonical
	r.mu.Unlock()

	r.logger.Debug("alias added", "alias", alias, "name", canonical)
}

// AddAliases registers every alias in the map
func (r *Resolver) AddAliases(aliases map[string]string) {
	for alias, canonical := range aliases {
		r.AddAlias(alias, canonical)
	}
}

// Resolve returns the player id for name
func (r *Resolver) Resolve(name string) (int64, bool) {
	m := r.ResolveMatch(name)
	return m.PlayerID, m.Resolved()
}

// ResolveMatch tries exact, alias, then fuzzy matching
func (r *Resolver) ResolveMatch(name string) Match {
	name = strings.TrimSpace(name)
	if name == "" {
		return Match{}
	}
	lower := strings.ToLower(name)

	r.mu.RLock()
	m := r.match(lower)
	r.mu.RUnlock()

	switch m.Strategy {
	case "":
		r.logger.Warn("unresolved player", "name", name)
	case StrategyFuzzy:
		r.logger.Info("fuzzy matched player", "name", name, "match", m.Name, "score", fmt.Sprintf("%.2f", m.Score))
	default:
		r.logger.Debug("resolved player", "name", name, "strategy", m.Strategy, "player_id", m.PlayerID)
	}
	return m
}

// match must be called with the read lock held
func (r *Resolver) match(lower string) Match {
	if id, ok := r.exact[lower]; ok {
		return Match{PlayerID: id, Name: r.nameOf(lower), Strategy: StrategyExact, Score: 1.0}
	}

	if canonical, ok := r.aliases[lower]; ok {
		canonicalLower := strings.ToLower(canonical)
		if id, ok := r.exact[canonicalLower]; ok {
			return Match{PlayerID: id, Name: r.nameOf(canonicalLower), Strategy: StrategyAlias, Score: 1.0}
		}
	}

	var best *cachedPlayer
	bestScore := 0.0
	for i := range r.players {
		score := Similarity(lower, r.players[i].lower)
		if score > bestScore {
			bestScore = score
			best = &r.players[i]
		}
	}
	if best != nil && bestScore >= r.threshold {
		return Match{PlayerID: best.id, Name: best.name, Strategy: StrategyFuzzy, Score: bestScore}
	}

	return Match{}
}

func (r *Resolver) nameOf(lower string) string {
	i := sort.Search(len(r.players), func(i int) bool { return r.players[i].lower >= lower })
	if i < len(r.players) && r.players[i].lower == lower {
		return r.players[i].name
	}
	return ""
}

// ResolveBatch resolves every name; misses map to a zero Match
func (r *Resolver) ResolveBatch(names []string) map[string]Match {
	results := make(map[string]Match, len(names))
	resolved := 0
	for _, name := range names {
		if _, done := results[name]; done {
			continue
		}
		m := r.ResolveMatch(name)
		if m.Resolved() {
			resolved++
		}
		results[name] = m
	}
	r.logger.Info("resolved batch", "resolved", resolved, "names", len(results))
	return results
}

// Size returns the number of cached players
func (r *Resolver) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
