package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/dgallion1/scholarsite/internal/markup"
)

var previewWidth int

var previewCmd = &cobra.Command{
	Use:   "preview SLUG",
	Short: "Render a post in the terminal",
	Long: `Render one post with sections, figures and references numbered as
they will appear on the site, formatted for the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		files := os.DirFS(cfg.ContentDir)
		c, err := content.Load(ctx, files, content.LoadOptions{IncludeDrafts: true, Log: log})
		if err != nil {
			return err
		}
		post, err := c.Post(args[0])
		if err != nil {
			return err
		}

		opts := renderOptions(cfg)
		opts.Data = files
		md, err := markup.NewRenderer(opts, log).Resolve(ctx, post.Path, post.Source)
		if err != nil {
			return fmt.Errorf("render %s: %w", post.Slug, err)
		}

		term, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(previewWidth),
		)
		if err != nil {
			return err
		}
		out, err := term.Render(string(md))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewWidth, "width", 80, "wrap width in columns")
}
