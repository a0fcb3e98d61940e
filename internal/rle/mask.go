package rle

// Mask is one encoded segmentation mask tied to a detection. The raster
// shape is not embedded in the RLE payload; callers persist height and width
// alongside it.
type Mask struct {
	DetectionID    string  `json:"detection_id"`
	FrameIndex     int     `json:"frame_index"`
	ClassLabel     string  `json:"class_label"`
	Confidence     float64 `json:"confidence"`
	RLE            string  `json:"rle"`
	AreaPixels     int     `json:"area_pixels"`
	StabilityScore float64 `json:"stability_score"`
}

// FilterByArea drops masks outside [minArea, maxArea]. A maxArea of 0 means
// unbounded.
func FilterByArea(masks map[int][]Mask, minArea, maxArea int) map[int][]Mask {
	filtered := make(map[int][]Mask, len(masks))
	for frame, frameMasks := range masks {
		kept := make([]Mask, 0, len(frameMasks))
		for _, m := range frameMasks {
			if m.AreaPixels < minArea {
				continue
			}
			if maxArea > 0 && m.AreaPixels > maxArea {
				continue
			}
			kept = append(kept, m)
		}
		filtered[frame] = kept
	}
	return filtered
}

// FilterByStability drops masks whose stability score falls below the
// threshold. A threshold of 0 keeps everything.
func FilterByStability(masks map[int][]Mask, threshold float64) map[int][]Mask {
	filtered := make(map[int][]Mask, len(masks))
	for frame, frameMasks := range masks {
		kept := make([]Mask, 0, len(frameMasks))
		for _, m := range frameMasks {
			if m.StabilityScore < threshold {
				continue
			}
			kept = append(kept, m)
		}
		filtered[frame] = kept
	}
	return filtered
}

// Statistics summarizes a per-frame mask set.
type Statistics struct {
	TotalMasks            int     `json:"total_masks"`
	FramesWithMasks       int     `json:"frames_with_masks"`
	AverageMaskArea       float64 `json:"average_mask_area"`
	AverageStabilityScore float64 `json:"average_stability_score"`
	AverageConfidence     float64 `json:"average_confidence"`
}

// ComputeStatistics aggregates mask counts, areas, stability, and confidence.
func ComputeStatistics(masks map[int][]Mask) Statistics {
	stats := Statistics{}
	var areaSum, stabilitySum, confidenceSum float64
	for _, frameMasks := range masks {
		if len(frameMasks) > 0 {
			stats.FramesWithMasks++
		}
		for _, m := range frameMasks {
			stats.TotalMasks++
			areaSum += float64(m.AreaPixels)
			stabilitySum += m.StabilityScore
			confidenceSum += m.Confidence
		}
	}
	if stats.TotalMasks > 0 {
		n := float64(stats.TotalMasks)
		stats.AverageMaskArea = areaSum / n
		stats.AverageStabilityScore = stabilitySum / n
		stats.AverageConfidence = confidenceSum / n
	}
	return stats
}
