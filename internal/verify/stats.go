package verify

import "framesight/internal/media"

// Statistics summarizes a per-frame detection set.
type Statistics struct {
	TotalDetections      int            `json:"total_detections"`
	FramesWithDetections int            `json:"frames_with_detections"`
	AverageConfidence    float64        `json:"average_confidence"`
	ClassDistribution    map[string]int `json:"class_distribution"`
}

// ComputeStatistics aggregates detection counts, confidence, and the class
// histogram across frames.
func ComputeStatistics(detections map[int][]media.Detection) Statistics {
	stats := Statistics{ClassDistribution: make(map[string]int)}
	var confidenceSum float64
	for _, frameDetections := range detections {
		if len(frameDetections) > 0 {
			stats.FramesWithDetections++
		}
		for _, det := range frameDetections {
			stats.TotalDetections++
			confidenceSum += det.Confidence
			stats.ClassDistribution[det.ClassLabel]++
		}
	}
	if stats.TotalDetections > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.TotalDetections)
	}
	return stats
}
