package scenes

import "framesight/internal/media"

// DiscontinuityScores derives a per-frame discontinuity signal from the raw
// rasters: the mean absolute byte difference against the previous frame,
// normalized to [0, 1]. The first frame scores zero. Frames with missing or
// mismatched rasters score zero rather than forcing a boundary.
func DiscontinuityScores(frames []media.Frame) []float64 {
	scores := make([]float64, len(frames))
	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1].Raster, frames[i].Raster
		n := len(prev)
		if len(cur) < n {
			n = len(cur)
		}
		if n == 0 {
			continue
		}
		var sum int64
		for j := 0; j < n; j++ {
			d := int64(prev[j]) - int64(cur[j])
			if d < 0 {
				d = -d
			}
			sum += d
		}
		scores[i] = float64(sum) / (255 * float64(n))
	}
	return scores
}
