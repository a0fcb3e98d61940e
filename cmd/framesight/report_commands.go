package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"framesight/internal/catalog"
	"framesight/internal/pipeline"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect stored analysis reports",
	}

	reportCmd.AddCommand(newReportListCommand(ctx))
	reportCmd.AddCommand(newReportShowCommand(ctx))

	return reportCmd
}

func newReportListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			summaries, err := store.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No reports in the catalog.")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					summary.ID,
					summary.VideoPath,
					summary.Status,
					summary.CreatedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%.1fs", summary.DurationSeconds),
					strconv.Itoa(summary.TotalDetections),
					strconv.Itoa(summary.TotalTracks),
					strconv.Itoa(summary.TotalMasks),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Video", "Status", "Created", "Duration", "Detections", "Tracks", "Masks"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of reports to list (0 for all)")
	return cmd
}

func newReportShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show one stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			report, err := store.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}
			fmt.Fprintln(out, renderReportSummary(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func renderReportSummary(report *pipeline.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Report %s\n", report.ID)
	fmt.Fprintf(&b, "Video:  %s\n", report.VideoPath)
	fmt.Fprintf(&b, "Status: %s", report.Status)
	if report.Reason != "" {
		fmt.Fprintf(&b, " (%s)", report.Reason)
	}
	b.WriteString("\n\n")

	stageRows := make([][]string, 0, len(report.Stages))
	for _, stage := range report.Stages {
		stageRows = append(stageRows, []string{
			stage.Stage,
			string(stage.Status),
			fmt.Sprintf("%.2fs", stage.DurationSeconds),
			stage.Reason,
		})
	}
	b.WriteString(renderTable(
		[]string{"Stage", "Status", "Time", "Detail"},
		stageRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nScenes: %d  Verified detections: %d  Tracks: %d  Masks: %d\n",
		len(report.Scenes),
		report.DetectionStats.TotalDetections,
		report.TrackStats.TotalTracks,
		report.MaskStats.TotalMasks)

	if len(report.KeyEvents) > 0 {
		b.WriteString("\nKey events:\n")
		for _, event := range report.KeyEvents {
			fmt.Fprintf(&b, "  %s\n", event)
		}
	}
	return b.String()
}
