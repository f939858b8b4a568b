// Package config loads the axlive YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level axlive configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Pages     []PageConfig    `yaml:"pages"`
	Announcer AnnouncerConfig `yaml:"announcer"`
	Mode      ModeConfig      `yaml:"mode"`
	Locale    string          `yaml:"locale"`
	History   HistoryConfig   `yaml:"history"`
	HTTP      HTTPConfig      `yaml:"http"`
	Sinks     []SinkConfig    `yaml:"sinks"`
}

// BrowserConfig controls the Chrome connection.
type BrowserConfig struct {
	Remote          string        `yaml:"remote"` // ws:// control URL; empty launches Chrome
	Bin             string        `yaml:"bin"`
	Headless        *bool         `yaml:"headless"`
	Stealth         bool          `yaml:"stealth"`
	Debounce        time.Duration `yaml:"debounce"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RefreshBurst    int           `yaml:"refresh_burst"`
}

// PageConfig is one tab to open and track.
type PageConfig struct {
	ID    string `yaml:"id"`
	URL   string `yaml:"url"`
	Focus bool   `yaml:"focus"`
}

// AnnouncerConfig tunes live-region announcements.
type AnnouncerConfig struct {
	QueueTime   time.Duration `yaml:"queue_time"`
	MinSameNode time.Duration `yaml:"min_same_node"`
	// Pointer so an absent key keeps the default (true).
	AnnounceFromBackgroundTabs *bool `yaml:"announce_from_background_tabs"`
}

// ModeConfig mirrors the screen reader's global mode.
type ModeConfig struct {
	Classic bool  `yaml:"classic"`
	Active  *bool `yaml:"active"`
}

type HistoryConfig struct {
	Path      string        `yaml:"path"`
	Retention time.Duration `yaml:"retention"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type    string        `yaml:"type"` // stdout | webhook | history
	URL     string        `yaml:"url"`  // for webhook
	Retries int           `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"`
}

// LoadFile reads and validates a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Browser.Headless == nil {
		c.Browser.Headless = ptr(true)
	}
	if c.Browser.Debounce <= 0 {
		c.Browser.Debounce = 50 * time.Millisecond
	}
	if c.Browser.RefreshInterval <= 0 {
		c.Browser.RefreshInterval = 150 * time.Millisecond
	}
	if c.Browser.RefreshBurst <= 0 {
		c.Browser.RefreshBurst = 4
	}
	if c.Announcer.QueueTime <= 0 {
		c.Announcer.QueueTime = 5 * time.Second
	}
	if c.Announcer.MinSameNode <= 0 {
		c.Announcer.MinSameNode = 20 * time.Millisecond
	}
	if c.Announcer.AnnounceFromBackgroundTabs == nil {
		c.Announcer.AnnounceFromBackgroundTabs = ptr(true)
	}
	if c.Mode.Active == nil {
		c.Mode.Active = ptr(true)
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "stdout"}}
	}
	for i := range c.Pages {
		if c.Pages[i].ID == "" {
			c.Pages[i].ID = fmt.Sprintf("page%d", i+1)
		}
	}
	for i := range c.Sinks {
		if c.Sinks[i].Type == "webhook" {
			if c.Sinks[i].Retries <= 0 {
				c.Sinks[i].Retries = 3
			}
			if c.Sinks[i].Backoff <= 0 {
				c.Sinks[i].Backoff = 200 * time.Millisecond
			}
		}
	}
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		if p.URL == "" {
			return fmt.Errorf("config: page %q: url is required", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("config: duplicate page id %q", p.ID)
		}
		seen[p.ID] = true
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: sink %d: webhook url is required", i)
			}
		case "history":
			if c.History.Path == "" {
				return fmt.Errorf("config: sink %d: history sink needs history.path", i)
			}
		default:
			return fmt.Errorf("config: sink %d: unknown type %q", i, s.Type)
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
