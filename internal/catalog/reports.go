package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"framesight/internal/pipeline"
)

// ErrNotFound indicates the requested report is not in the catalog.
var ErrNotFound = errors.New("report not found")

// Summary is the listing row for one stored report.
type Summary struct {
	ID              string
	VideoPath       string
	Status          string
	Reason          string
	CreatedAt       time.Time
	DurationSeconds float64
	TotalDetections int
	TotalTracks     int
	TotalMasks      int
}

// SaveReport stores one finalized report. The full report is kept as JSON;
// the summary columns are denormalized for listing queries.
func (s *Store) SaveReport(ctx context.Context, report *pipeline.Report) error {
	if report == nil {
		return errors.New("nil report")
	}
	if !report.Finalized() {
		return errors.New("report not finalized")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	err = s.execWithRetry(ctx,
		`INSERT INTO reports (
            id, video_path, status, reason, created_at, completed_at,
            fps, total_frames, duration_seconds,
            total_detections, total_tracks, total_masks, report_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.VideoPath,
		string(report.Status),
		report.Reason,
		report.CreatedAt.Format(time.RFC3339Nano),
		report.CompletedAt.Format(time.RFC3339Nano),
		report.Metadata.FPS,
		report.Metadata.TotalFrames,
		report.Metadata.DurationSeconds,
		report.DetectionStats.TotalDetections,
		report.TrackStats.TotalTracks,
		report.MaskStats.TotalMasks,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport loads one report by id.
func (s *Store) GetReport(ctx context.Context, id string) (*pipeline.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT report_json FROM reports WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report pipeline.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns stored report summaries, newest first. A limit of 0
// means no limit.
func (s *Store) ListReports(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT id, video_path, status, reason, created_at,
        duration_seconds, total_detections, total_tracks, total_masks
        FROM reports ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary   Summary
			reason    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&summary.ID, &summary.VideoPath, &summary.Status, &reason, &createdAt,
			&summary.DurationSeconds, &summary.TotalDetections, &summary.TotalTracks, &summary.TotalMasks); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		summary.Reason = reason.String
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			summary.CreatedAt = ts
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return summaries, nil
}

// DeleteReport removes one report by id.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	return s.execWithRetry(ctx, "DELETE FROM reports WHERE id = ?", id)
}
