package track

// Statistics aggregates the finalized track set.
type Statistics struct {
	TotalTracks            int     `json:"total_tracks"`
	AverageDurationFrames  float64 `json:"average_duration_frames"`
	AverageDurationSeconds float64 `json:"average_duration_seconds"`
	AverageConfidence      float64 `json:"average_confidence"`
	MinDurationFrames      int     `json:"min_duration_frames"`
	MaxDurationFrames      int     `json:"max_duration_frames"`
}

// ComputeStatistics summarizes finalized tracks.
func ComputeStatistics(tracks map[int64]*Track) Statistics {
	stats := Statistics{}
	if len(tracks) == 0 {
		return stats
	}
	stats.TotalTracks = len(tracks)

	var frames, seconds, confidence float64
	first := true
	for _, tr := range tracks {
		frames += float64(tr.DurationFrames)
		seconds += tr.DurationSeconds
		confidence += tr.AvgConfidence
		if first || tr.DurationFrames < stats.MinDurationFrames {
			stats.MinDurationFrames = tr.DurationFrames
		}
		if first || tr.DurationFrames > stats.MaxDurationFrames {
			stats.MaxDurationFrames = tr.DurationFrames
		}
		first = false
	}
	n := float64(len(tracks))
	stats.AverageDurationFrames = frames / n
	stats.AverageDurationSeconds = seconds / n
	stats.AverageConfidence = confidence / n
	return stats
}

// FilterByDuration drops tracks shorter than minFrames.
func FilterByDuration(tracks map[int64]*Track, minFrames int) map[int64]*Track {
	if minFrames <= 1 {
		return tracks
	}
	kept := make(map[int64]*Track, len(tracks))
	for id, tr := range tracks {
		if tr.DurationFrames >= minFrames {
			kept[id] = tr
		}
	}
	return kept
}
