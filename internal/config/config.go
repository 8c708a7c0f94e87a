package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// SCHOLARSITE_PORT or SCHOLARSITE_CONTENT_DIR.
const EnvPrefix = "SCHOLARSITE"

type Config struct {
	Port    string `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`

	// Content tree and static output
	ContentDir    string `mapstructure:"content_dir"`
	OutDir        string `mapstructure:"out_dir"`
	IncludeDrafts bool   `mapstructure:"include_drafts"`

	// Rendering
	Workers        int    `mapstructure:"workers"`
	MaxPasses      int    `mapstructure:"max_passes"`
	PreScan        bool   `mapstructure:"pre_scan"`
	HighlightStyle string `mapstructure:"highlight_style"`
	SummaryWords   int    `mapstructure:"summary_words"`

	// Content loading
	LoadAttempts int           `mapstructure:"load_attempts"`
	LoadDelay    time.Duration `mapstructure:"load_delay"`

	// Dev server
	Debounce        time.Duration `mapstructure:"debounce"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Build state
	BuildTTL    time.Duration `mapstructure:"build_ttl"`
	StatsWindow time.Duration `mapstructure:"stats_window"`

	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:            "8090",
		ContentDir:      "content",
		OutDir:          "public",
		Workers:         4,
		MaxPasses:       3,
		PreScan:         true,
		HighlightStyle:  "github",
		SummaryWords:    40,
		LoadAttempts:    3,
		LoadDelay:       200 * time.Millisecond,
		Debounce:        250 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
		BuildTTL:        1 * time.Hour,
		StatsWindow:     1 * time.Hour,
		LogLevel:        "info",
	}
}

// Load reads configuration from defaults, an optional YAML file and
// SCHOLARSITE_* environment variables, in increasing precedence. With an
// empty cfgFile, scholarsite.yaml in the working directory is used when
// present.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("content_dir", d.ContentDir)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("include_drafts", d.IncludeDrafts)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("max_passes", d.MaxPasses)
	v.SetDefault("pre_scan", d.PreScan)
	v.SetDefault("highlight_style", d.HighlightStyle)
	v.SetDefault("summary_words", d.SummaryWords)
	v.SetDefault("load_attempts", d.LoadAttempts)
	v.SetDefault("load_delay", d.LoadDelay)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
	v.SetDefault("build_ttl", d.BuildTTL)
	v.SetDefault("stats_window", d.StatsWindow)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("scholarsite")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

// clamp replaces non-positive numeric settings with their defaults.
func (c *Config) clamp() {
	d := Default()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxPasses <= 0 {
		c.MaxPasses = d.MaxPasses
	}
	if c.SummaryWords <= 0 {
		c.SummaryWords = d.SummaryWords
	}
	if c.LoadAttempts <= 0 {
		c.LoadAttempts = d.LoadAttempts
	}
	if c.LoadDelay < 0 {
		c.LoadDelay = d.LoadDelay
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.BuildTTL <= 0 {
		c.BuildTTL = d.BuildTTL
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = d.HighlightStyle
	}
}

func (c Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir is required")
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port %q is not a valid TCP port", c.Port)
	}
	if _, ok := styles.Registry[c.HighlightStyle]; !ok {
		return fmt.Errorf("unknown highlight_style %q", c.HighlightStyle)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level setting to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}
