package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/scholarsite/internal/config"
	"github.com/dgallion1/scholarsite/internal/markup"
	"github.com/dgallion1/scholarsite/internal/site"
)

var (
	cfgFile    string
	contentDir string
	baseURL    string
	drafts     bool
	logLevel   string

	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scholarsite",
	Short: "Static site generator for academic homepages",
	Long: `Scholarsite builds a personal academic homepage from a content directory:
site settings, an about page, publications, news and blog posts written in
Markdown with numbered sections, figures, cross-references, citations and
charts.

Configuration is read from scholarsite.yaml (or --config) and SCHOLARSITE_*
environment variables; flags take precedence over both.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("content") {
			c.ContentDir = contentDir
		}
		if flags.Changed("base-url") {
			c.BaseURL = baseURL
		}
		if flags.Changed("drafts") {
			c.IncludeDrafts = drafts
		}
		if flags.Changed("log-level") {
			c.LogLevel = logLevel
		}
		if err := c.Validate(); err != nil {
			return err
		}
		level, _ := config.ParseLevel(c.LogLevel)
		cfg = c
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./scholarsite.yaml)")
	pf.StringVar(&contentDir, "content", "", "content directory (default: content)")
	pf.StringVar(&baseURL, "base-url", "", "absolute URL the site is published at")
	pf.BoolVar(&drafts, "drafts", false, "include draft posts")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd, buildCmd, previewCmd, versionCmd)
}

func renderOptions(c config.Config) markup.Options {
	return markup.Options{
		PreScan:        c.PreScan,
		MaxPasses:      c.MaxPasses,
		HighlightStyle: c.HighlightStyle,
		SummaryWords:   c.SummaryWords,
	}
}

func builderOptions(c config.Config) site.Options {
	return site.Options{
		Workers:       c.Workers,
		IncludeDrafts: c.IncludeDrafts,
		BaseURL:       c.BaseURL,
		Render:        renderOptions(c),
		LoadAttempts:  uint(c.LoadAttempts),
		LoadDelay:     c.LoadDelay,
	}
}

// newBuilder creates a builder over the configured content directory.
func newBuilder(c config.Config) (*site.Builder, error) {
	return site.NewBuilder(
		os.DirFS(c.ContentDir),
		builderOptions(c),
		site.NewBuildStore(c.BuildTTL),
		site.NewRenderStats(c.StatsWindow),
		log,
	)
}
