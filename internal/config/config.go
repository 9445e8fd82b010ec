// Package config defines the engine configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and EKIDEN_ env vars on top of the defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/ekiden/internal/domain/calendar"
	"github.com/okian/ekiden/internal/domain/news"
)

// Storage adapter names.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// RaceStartDate is day 1 of the race, formatted 2006-01-02.
	RaceStartDate string `koanf:"race_start_date"`
	// Timezone is the IANA zone used for race days and operating hours.
	Timezone string `koanf:"timezone"`

	RosterFile       string `koanf:"roster_file"`
	ShadowFile       string `koanf:"shadow_file"`
	DistanceFeedFile string `koanf:"distance_feed_file"`
	CommentaryFile   string `koanf:"commentary_file"`

	// StorageAdapter selects the repository backend: file or redis.
	StorageAdapter string `koanf:"storage_adapter"`
	DataDir        string `koanf:"data_dir"`
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// LedgerSize bounds the processed commentary ledger.
	LedgerSize int `koanf:"commentary_ledger_size"`

	WebhookURLs      []string `koanf:"webhook_urls"`
	WebhookTimeoutMS int      `koanf:"webhook_timeout_ms"`

	MetricsTextfile       string `koanf:"metrics_textfile"`
	MetricsPushgatewayURL string `koanf:"metrics_pushgateway_url"`

	NewsHoursStart       int     `koanf:"news_hours_start"`
	NewsHoursEnd         int     `koanf:"news_hours_end"`
	NewsCommentWindowMin int     `koanf:"news_comment_window_minutes"`
	NewsSnippetLength    int     `koanf:"news_snippet_length"`
	NewsPreserveMin      int     `koanf:"news_preserve_minutes"`
	NewsSuppressMin      int     `koanf:"news_suppress_minutes"`
	NewsExtremeHighKM    float64 `koanf:"news_extreme_high_km"`
	NewsExtremeLowKM     float64 `koanf:"news_extreme_low_km"`
	NewsJumpMargin       int     `koanf:"news_jump_margin"`
	NewsDropMargin       int     `koanf:"news_drop_margin"`
	NewsGapKM            float64 `koanf:"news_gap_km"`
	NewsGapPositions     []int   `koanf:"news_gap_positions"`
	NewsTopRunnerMinute  int     `koanf:"news_top_runner_minute"`
	NewsLeaderMinute     int     `koanf:"news_leader_minute"`
}

// New creates a Config populated with defaults.
func New() *Config {
	d := news.DefaultSettings()
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Timezone:             "Asia/Tokyo",
		StorageAdapter:       StorageFile,
		DataDir:              "data",
		RedisAddr:            "localhost:6379",
		RedisKeyPrefix:       "ekiden:",
		LedgerSize:           1000,
		WebhookTimeoutMS:     2000,
		NewsHoursStart:       d.HoursStart,
		NewsHoursEnd:         d.HoursEnd,
		NewsCommentWindowMin: int(d.CommentWindow / time.Minute),
		NewsSnippetLength:    d.SnippetRunes,
		NewsPreserveMin:      int(d.Preserve / time.Minute),
		NewsSuppressMin:      int(d.Suppress / time.Minute),
		NewsExtremeHighKM:    d.ExtremeHigh,
		NewsExtremeLowKM:     d.ExtremeLow,
		NewsJumpMargin:       d.JumpMargin,
		NewsDropMargin:       d.DropMargin,
		NewsGapKM:            d.GapThreshold,
		NewsGapPositions:     append([]int(nil), d.GapPositions...),
		NewsTopRunnerMinute:  d.TopRunnerMinute,
		NewsLeaderMinute:     d.LeaderMinute,
	}
}

// Calendar builds the race calendar from RaceStartDate and Timezone.
func (c *Config) Calendar() (calendar.Calendar, error) {
	cal, err := calendar.New(c.RaceStartDate, c.Timezone)
	if err != nil {
		return calendar.Calendar{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cal, nil
}

// NewsSettings maps the news_* keys onto detector thresholds.
func (c *Config) NewsSettings() news.Settings {
	return news.Settings{
		HoursStart:      c.NewsHoursStart,
		HoursEnd:        c.NewsHoursEnd,
		CommentWindow:   time.Duration(c.NewsCommentWindowMin) * time.Minute,
		SnippetRunes:    c.NewsSnippetLength,
		Preserve:        time.Duration(c.NewsPreserveMin) * time.Minute,
		Suppress:        time.Duration(c.NewsSuppressMin) * time.Minute,
		ExtremeHigh:     c.NewsExtremeHighKM,
		ExtremeLow:      c.NewsExtremeLowKM,
		JumpMargin:      c.NewsJumpMargin,
		DropMargin:      c.NewsDropMargin,
		GapThreshold:    c.NewsGapKM,
		GapPositions:    append([]int(nil), c.NewsGapPositions...),
		TopRunnerMinute: c.NewsTopRunnerMinute,
		LeaderMinute:    c.NewsLeaderMinute,
	}
}

// WebhookTimeout returns the per-delivery timeout.
func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutMS) * time.Millisecond
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := c.Calendar(); err != nil {
		add("race_start_date/timezone: %v", err)
	}
	if strings.TrimSpace(c.RosterFile) == "" {
		add("roster_file must not be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		add("log_format %q must be text or json", c.LogFormat)
	}
	switch c.StorageAdapter {
	case StorageFile:
		if c.DataDir == "" {
			add("data_dir must not be empty for the file adapter")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			add("redis_addr must not be empty for the redis adapter")
		}
		if c.RedisDB < 0 {
			add("redis_db must not be negative")
		}
	default:
		add("storage_adapter %q must be file or redis", c.StorageAdapter)
	}
	if c.LedgerSize <= 0 {
		add("commentary_ledger_size must be positive")
	}
	if c.WebhookTimeoutMS <= 0 {
		add("webhook_timeout_ms must be positive")
	}
	if c.NewsHoursStart < 0 || c.NewsHoursEnd > 24 || c.NewsHoursStart >= c.NewsHoursEnd {
		add("news hours [%d,%d) out of range", c.NewsHoursStart, c.NewsHoursEnd)
	}
	for _, m := range []int{c.NewsTopRunnerMinute, c.NewsLeaderMinute} {
		if m < 0 || m > 59 {
			add("scheduled minute %d out of range", m)
		}
	}
	if c.NewsCommentWindowMin <= 0 || c.NewsSnippetLength <= 0 || c.NewsPreserveMin < 0 || c.NewsSuppressMin < 0 {
		add("news windows must be positive")
	}
	if c.NewsExtremeHighKM <= 0 || c.NewsExtremeLowKM <= 0 || c.NewsGapKM <= 0 {
		add("news distance thresholds must be positive")
	}
	if c.NewsExtremeLowKM > c.NewsExtremeHighKM {
		add("news_extreme_low_km %v must not exceed news_extreme_high_km %v", c.NewsExtremeLowKM, c.NewsExtremeHighKM)
	}
	if c.NewsJumpMargin <= 0 || c.NewsDropMargin <= 0 {
		add("news rank margins must be positive")
	}
	for _, p := range c.NewsGapPositions {
		if p < 1 {
			add("news gap position %d must be at least 1", p)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
