package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/scholarsite/internal/site"
)

var outDir string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write the static site to a directory",
	Long: `Build the site once and write it as static files.

Examples:
  scholarsite build                  # Write to ./public
  scholarsite build --out dist       # Write to ./dist`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("out") {
			cfg.OutDir = outDir
		}
		builder, err := newBuilder(cfg)
		if err != nil {
			return err
		}
		s, err := builder.Build(cmd.Context())
		if err != nil {
			return err
		}
		if err := site.Export(cmd.Context(), s, cfg.OutDir, log); err != nil {
			return err
		}
		snap := builder.Builds().Get(s.BuildID).Snapshot()
		log.Info("site written",
			"out", cfg.OutDir,
			"build_id", s.BuildID,
			"status", snap.Status,
			"posts", len(s.Posts),
			"warnings", snap.Progress.Warnings,
		)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&outDir, "out", "", "output directory (default: public)")
}
