package config

import (
	"time"

	"insider-tracker/pkg/config"
)

// EDGAR holds the SEC EDGAR endpoints and request policy.
type EDGAR struct {
	UserAgent      string        `mapstructure:"user_agent"`
	TickersURL     string        `mapstructure:"tickers_url"`
	SubmissionsURL string        `mapstructure:"submissions_url"`
	SearchURL      string        `mapstructure:"search_url"`
	ArchiveBaseURL string        `mapstructure:"archive_base_url"`
	FeedURL        string        `mapstructure:"feed_url"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Collector holds the collection run settings.
type Collector struct {
	Mode                string   `mapstructure:"mode"`
	Watchlist           []string `mapstructure:"watchlist"`
	MaxFilingsPerTicker int      `mapstructure:"max_filings_per_ticker"`
	MaxSearchFilings    int      `mapstructure:"max_search_filings"`
	CacheDir            string   `mapstructure:"cache_dir"`
	DataDir             string   `mapstructure:"data_dir"`
}

// Scheduler holds the periodic collection settings.
type Scheduler struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full tracker configuration.
type Config struct {
	App       config.App    `mapstructure:"app"`
	Logger    config.Logger `mapstructure:"logger"`
	API       config.API    `mapstructure:"api"`
	EDGAR     EDGAR         `mapstructure:"edgar"`
	Collector Collector     `mapstructure:"collector"`
	Scheduler Scheduler     `mapstructure:"scheduler"`
	Telegram  Telegram      `mapstructure:"telegram"`
}

// Load loads the tracker configuration from the given path and fills in
// defaults for anything the file leaves out.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.EDGAR.UserAgent == "" {
		c.EDGAR.UserAgent = "insider-tracker admin@example.com"
	}
	if c.EDGAR.TickersURL == "" {
		c.EDGAR.TickersURL = "https://www.sec.gov/files/company_tickers.json"
	}
	if c.EDGAR.SubmissionsURL == "" {
		c.EDGAR.SubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	}
	if c.EDGAR.SearchURL == "" {
		c.EDGAR.SearchURL = "https://efts.sec.gov/LATEST/search-index"
	}
	if c.EDGAR.ArchiveBaseURL == "" {
		c.EDGAR.ArchiveBaseURL = "https://www.sec.gov/Archives/edgar/data"
	}
	if c.EDGAR.FeedURL == "" {
		c.EDGAR.FeedURL = "https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=4&output=atom&count=%d"
	}
	if c.EDGAR.RequestDelay <= 0 {
		c.EDGAR.RequestDelay = 150 * time.Millisecond
	}
	if c.EDGAR.RequestTimeout <= 0 {
		c.EDGAR.RequestTimeout = 30 * time.Second
	}
	if c.Collector.Mode == "" {
		c.Collector.Mode = "watchlist"
	}
	if len(c.Collector.Watchlist) == 0 {
		c.Collector.Watchlist = []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
			"META", "TSLA", "JPM", "V", "JNJ",
		}
	}
	if c.Collector.MaxFilingsPerTicker <= 0 {
		c.Collector.MaxFilingsPerTicker = 10
	}
	if c.Collector.MaxSearchFilings <= 0 {
		c.Collector.MaxSearchFilings = 200
	}
	if c.Collector.CacheDir == "" {
		c.Collector.CacheDir = "cache"
	}
	if c.Collector.DataDir == "" {
		c.Collector.DataDir = "data"
	}
	if c.Scheduler.CronSpec == "" {
		c.Scheduler.CronSpec = "0 18 * * *"
	}
}
