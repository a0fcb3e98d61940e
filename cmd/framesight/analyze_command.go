package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"framesight/internal/catalog"
	"framesight/internal/media"
	"framesight/internal/pipeline"
	"framesight/internal/semantic"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var videoPath string
	var noSave bool

	cmd := &cobra.Command{
		Use:   "analyze <manifest.json>",
		Short: "Run the analysis pipeline against an extracted frame manifest",
		Long: `Analyze runs the full pipeline against a frame manifest: a JSON file
holding video metadata, frames (optionally with base64 rasters), and the
per-frame detections produced by an external detector. The semantic analyzer
is called over HTTP when an API key is configured; without one the semantic
stage is skipped and the report degrades gracefully.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			manifest, err := media.LoadManifest(args[0])
			if err != nil {
				return err
			}

			var analyzer semantic.Analyzer
			if strings.TrimSpace(cfg.Analyzer.APIKey) != "" {
				analyzer = semantic.NewClient(semantic.Config{
					APIKey:         cfg.Analyzer.APIKey,
					BaseURL:        cfg.Analyzer.BaseURL,
					Model:          cfg.Analyzer.Model,
					TimeoutSeconds: cfg.Analyzer.TimeoutSeconds,
					PollSeconds:    cfg.Analyzer.PollSeconds,
				})
			}

			target := videoPath
			if target == "" {
				target = args[0]
			}

			report := pipeline.Run(cmd.Context(), manifest, manifest, analyzer, pipeline.Options{
				Config:    cfg,
				Logger:    logger,
				VideoPath: target,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReportSummary(report))

			if !noSave {
				store, err := catalog.Open(cfg)
				if err != nil {
					return fmt.Errorf("open catalog: %w", err)
				}
				defer store.Close()
				if err := store.SaveReport(cmd.Context(), report); err != nil {
					return fmt.Errorf("save report: %w", err)
				}
				fmt.Fprintf(out, "Saved report %s\n", report.ID)
			}

			if report.Status == pipeline.StatusFailed {
				return fmt.Errorf("analysis failed: %s", report.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Source video path recorded in the report")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print the report without writing it to the catalog")

	return cmd
}
