package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Sites               []Site              `yaml:"sites"`
	Keywords            []string            `yaml:"keywords"`
	Pages               int                 `yaml:"pages"`
	Output              OutputConfig        `yaml:"output"`
	HTTP                HttpConfig          `yaml:"http"`
	Rod                 RodConfig           `yaml:"rod"`
	RobotsCacheTTLHours int                 `yaml:"robots_cache_ttl_hours"`
	Observability       ObservabilityConfig `yaml:"observability"`
}

type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Basename string `yaml:"basename"`
}

type HttpConfig struct {
	UserAgent     string `yaml:"user_agent"`
	TimeoutMS     int    `yaml:"timeout_ms"`
	DelayMS       int    `yaml:"delay_ms"`
	RespectRobots bool   `yaml:"respect_robots"`
}

type RodConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ChromePath   string `yaml:"chrome_path"`
	PageTimeoutS int    `yaml:"page_timeout_s"`
}

type ObservabilityConfig struct {
	LogPath     string `yaml:"log_path"`
	LogLevel    string `yaml:"log_level"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`
	ConsoleOnly bool   `yaml:"console_only"`
}

// Default returns the settings the crawler runs with when the config file
// leaves a field out.
func Default() *Config {
	return &Config{
		Sites:    []Site{SiteEldorado},
		Keywords: []string{"python", "data", "risk", "quant", "quantitative", "analytics"},
		Pages:    10,
		Output: OutputConfig{
			Dir:      "links",
			Basename: "job_links",
		},
		HTTP: HttpConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) job-links/1.0",
			TimeoutMS: 30000,
			DelayMS:   10000,
		},
		Rod: RodConfig{
			PageTimeoutS: 60,
		},
		RobotsCacheTTLHours: 12,
		Observability: ObservabilityConfig{
			LogPath:    "logs/job-links.log",
			LogLevel:   "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("sites must list at least one site")
	}
	seen := make(map[Site]bool, len(c.Sites))
	for _, s := range c.Sites {
		if _, err := s.Spec(); err != nil {
			return fmt.Errorf("sites: %w", err)
		}
		if seen[s] {
			return fmt.Errorf("sites: %s listed twice", s)
		}
		seen[s] = true
	}
	hasKeyword := false
	for _, kw := range c.Keywords {
		if strings.TrimSpace(kw) != "" {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return fmt.Errorf("keywords must contain at least one non-blank keyword")
	}
	if c.Pages <= 0 {
		return fmt.Errorf("pages must be > 0")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Output.Basename == "" {
		return fmt.Errorf("output.basename is required")
	}
	if filepath.Base(c.Output.Basename) != c.Output.Basename {
		return fmt.Errorf("output.basename must not contain path separators")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TimeoutMS <= 0 {
		return fmt.Errorf("http.timeout_ms must be > 0")
	}
	if c.HTTP.DelayMS < 0 {
		return fmt.Errorf("http.delay_ms must be >= 0")
	}
	if c.HTTP.RespectRobots && c.RobotsCacheTTLHours <= 0 {
		return fmt.Errorf("robots_cache_ttl_hours must be > 0 when http.respect_robots is true")
	}
	if c.Rod.Enabled && c.Rod.PageTimeoutS <= 0 {
		return fmt.Errorf("rod.page_timeout_s must be > 0")
	}
	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error")
	}
	if c.Observability.MaxSizeMB < 0 || c.Observability.MaxBackups < 0 || c.Observability.MaxAgeDays < 0 {
		return fmt.Errorf("observability rotation limits must be >= 0")
	}
	return nil
}

// Getters
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMS) * time.Millisecond
}

func (c *Config) GetDelay() time.Duration {
	return time.Duration(c.HTTP.DelayMS) * time.Millisecond
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.RobotsCacheTTLHours) * time.Hour
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}
