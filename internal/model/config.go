package model

import "time"

// Config holds the complete injurywire configuration
type Config struct {
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Dedup       DedupConfig       `yaml:"dedup" mapstructure:"dedup"`
	Redis       RedisConfig       `yaml:"redis" mapstructure:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka" mapstructure:"kafka"`
	Resolver    ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Priorities  map[string]int    `yaml:"priorities" mapstructure:"priorities"`
	Feeds       []FeedConfig      `yaml:"feeds" mapstructure:"feeds"`
	Accounts    []AccountConfig   `yaml:"accounts" mapstructure:"accounts"`
	Official    OfficialConfig    `yaml:"official" mapstructure:"official"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Schedule    ScheduleConfig    `yaml:"schedule" mapstructure:"schedule"`
	NearLock    NearLockConfig    `yaml:"near_lock" mapstructure:"near_lock"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
}

// LogConfig controls logger construction
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
	File   string `yaml:"file" mapstructure:"file"`     // Empty means stderr
}

// StoreConfig points at the SQLite database
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DedupConfig selects the seen-hash backend
type DedupConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // memory, redis, disk, layered
	Dir     string `yaml:"dir" mapstructure:"dir"`         // Marker directory for the disk backend
	Prefix  string `yaml:"prefix" mapstructure:"prefix"`
}

// RedisConfig holds the shared seen-store connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// KafkaConfig configures the recompute trigger
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
}

// ResolverConfig tunes player name resolution
type ResolverConfig struct {
	FuzzyThreshold float64           `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
	Aliases        map[string]string `yaml:"aliases" mapstructure:"aliases"`
	AliasesFile    string            `yaml:"aliases_file" mapstructure:"aliases_file"`
}

// FeedConfig describes one RSS/Atom news feed
type FeedConfig struct {
	Name                    string `yaml:"name" mapstructure:"name"`
	Source                  string `yaml:"source" mapstructure:"source"` // Priority table key
	URL                     string `yaml:"url" mapstructure:"url"`
	PollIntervalMinutes     int    `yaml:"poll_interval_minutes" mapstructure:"poll_interval_minutes"`
	NearLockIntervalMinutes int    `yaml:"near_lock_interval_minutes" mapstructure:"near_lock_interval_minutes"`
}

// Interval returns the polling interval for the current cadence
func (f FeedConfig) Interval(nearLock bool) time.Duration {
	if nearLock && f.NearLockIntervalMinutes > 0 {
		return time.Duration(f.NearLockIntervalMinutes) * time.Minute
	}
	return time.Duration(f.PollIntervalMinutes) * time.Minute
}

// AccountConfig describes one social account read through an RSS bridge
type AccountConfig struct {
	Handle      string `yaml:"handle" mapstructure:"handle"`
	DisplayName string `yaml:"display_name" mapstructure:"display_name"`
	Source      string `yaml:"source" mapstructure:"source"`
	BridgeURL   string `yaml:"bridge_url" mapstructure:"bridge_url"` // Defaults to the bridge template
}

// OfficialConfig configures the official injury report collector
type OfficialConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url"`
	Source  string `yaml:"source" mapstructure:"source"`
}

// HTTPConfig contains collector HTTP settings
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes       int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	Retries        int           `yaml:"retries" mapstructure:"retries"`
	RespectRobots  bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	BridgeTemplate string        `yaml:"bridge_template" mapstructure:"bridge_template"` // %s is the handle
	HTTPProxy      string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy     string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy        string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ConcurrencyConfig contains worker and rate limit settings
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ScheduleConfig holds the cron expressions used by serve
type ScheduleConfig struct {
	Normal   string `yaml:"normal" mapstructure:"normal"`
	NearLock string `yaml:"near_lock" mapstructure:"near_lock"`
	Official string `yaml:"official" mapstructure:"official"`
}

// NearLockConfig bounds the pre-lock window in local hours, inclusive
type NearLockConfig struct {
	StartHour int `yaml:"start_hour" mapstructure:"start_hour"`
	EndHour   int `yaml:"end_hour" mapstructure:"end_hour"`
}

// Active reports whether t falls inside the near-lock window
func (n NearLockConfig) Active(t time.Time) bool {
	h := t.Hour()
	return h >= n.StartHour && h <= n.EndHour
}

// ServerConfig configures the REST API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Path: "injurywire.db",
		},
		Dedup: DedupConfig{
			Backend: "memory",
			Dir:     ".injurywire/seen",
			Prefix:  "injurywire:seen:",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "projection-recompute",
		},
		Resolver: ResolverConfig{
			FuzzyThreshold: 0.85,
		},
		Priorities: map[string]int{
			"official_nba_injury_report": 1,
			"underdog_nba_twitter":       2,
			"fantasylabs_nba_twitter":    2,
			"rotowire_nba_twitter":       2,
			"rotowire_rss":               2,
			"realgm_rss":                 2,
			"instreetclothes_twitter":    3,
			"beat_writer_twitter":        3,
			"hoopsrumors_rss":            3,
			"hoopswire_rss":              3,
			"hoopshype_rss":              3,
			"general_news_rss":           3,
			"general_news":               4,
		},
		Feeds: []FeedConfig{
			{Name: "RotoWire NBA", Source: "rotowire_rss", URL: "https://www.rotowire.com/rss/news.php?sport=NBA", PollIntervalMinutes: 10, NearLockIntervalMinutes: 2},
			{Name: "RealGM Injury", Source: "realgm_rss", URL: "https://basketball.realgm.com/rss/wiretap", PollIntervalMinutes: 30, NearLockIntervalMinutes: 15},
			{Name: "Hoops Rumors", Source: "hoopsrumors_rss", URL: "https://hoopsrumors.com/feed", PollIntervalMinutes: 30, NearLockIntervalMinutes: 15},
			{Name: "HoopsWire", Source: "hoopswire_rss", URL: "https://hoopswire.com/feed", PollIntervalMinutes: 30, NearLockIntervalMinutes: 15},
			{Name: "HoopsHype", Source: "hoopshype_rss", URL: "https://hoopshype.com/feed", PollIntervalMinutes: 60, NearLockIntervalMinutes: 30},
		},
		Accounts: []AccountConfig{
			{Handle: "UnderdogNBA", DisplayName: "Underdog NBA", Source: "underdog_nba_twitter"},
			{Handle: "FantasyLabsNBA", DisplayName: "FantasyLabs NBA", Source: "fantasylabs_nba_twitter"},
			{Handle: "RotoWireNBA", DisplayName: "RotoWire NBA", Source: "rotowire_nba_twitter"},
			{Handle: "InStreetClothes", DisplayName: "Jeff Stotts", Source: "instreetclothes_twitter"},
		},
		Official: OfficialConfig{
			Source: "official_nba_injury_report",
		},
		HTTP: HTTPConfig{
			Timeout:        15 * time.Second,
			UserAgent:      "injurywire/0.1 (+https://github.com/ppiankov/injurywire)",
			MaxBytes:       5 * 1024 * 1024,
			Retries:        2,
			RespectRobots:  true,
			BridgeTemplate: "https://nitter.net/%s/rss",
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 1.0,
			Burst:             2,
		},
		Schedule: ScheduleConfig{
			Normal:   "*/15 0-15,23 * * *",
			NearLock: "*/5 16-22 * * *",
			Official: "5 * * * *",
		},
		NearLock: NearLockConfig{
			StartHour: 16,
			EndHour:   22,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
