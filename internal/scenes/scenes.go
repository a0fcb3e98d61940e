package scenes

import (
	"fmt"
	"math"
)

// Scene is one contiguous frame range with its representative keyframe.
type Scene struct {
	ID            int     `json:"scene_id"`
	StartFrame    int     `json:"start_frame"`
	EndFrame      int     `json:"end_frame"`
	StartSecond   float64 `json:"start_second"`
	EndSecond     float64 `json:"end_second"`
	KeyframeIndex int     `json:"keyframe_index"`
}

// Segment partitions frames [0, totalFrames-1] into contiguous scenes from a
// per-frame discontinuity signal.
//
// A boundary opens at frame f when scores[f] exceeds threshold and at least
// fps frames (one second) have elapsed since the previous boundary; the
// minimum gap keeps noisy scores from shredding the video into one-frame
// scenes. When no boundary fires the whole range is a single scene. The
// final scene always closes at the last frame.
func Segment(totalFrames int, scores []float64, fps, threshold float64) ([]Scene, error) {
	if totalFrames <= 0 {
		return nil, fmt.Errorf("segment: no frames")
	}
	if fps <= 0 {
		return nil, fmt.Errorf("segment: non-positive fps %v", fps)
	}

	// Round up so fractional rates like 29.97 still enforce a full second.
	minGap := int(math.Ceil(fps))
	if minGap < 1 {
		minGap = 1
	}

	boundaries := []int{0}
	lastBoundary := 0
	limit := totalFrames
	if len(scores) < limit {
		limit = len(scores)
	}
	for f := 1; f < limit; f++ {
		if scores[f] <= threshold {
			continue
		}
		if f-lastBoundary < minGap {
			continue
		}
		boundaries = append(boundaries, f)
		lastBoundary = f
	}

	result := make([]Scene, 0, len(boundaries))
	for i, start := range boundaries {
		end := totalFrames - 1
		if i+1 < len(boundaries) {
			end = boundaries[i+1] - 1
		}
		result = append(result, Scene{
			ID:            i + 1,
			StartFrame:    start,
			EndFrame:      end,
			StartSecond:   float64(start) / fps,
			EndSecond:     float64(end) / fps,
			KeyframeIndex: (start + end) / 2,
		})
	}
	return result, nil
}

// Validate checks the scene-list invariant: sorted, non-overlapping,
// contiguous, starting at frame 0 and ending at totalFrames-1.
func Validate(list []Scene, totalFrames int) error {
	if len(list) == 0 {
		return fmt.Errorf("scenes: empty scene list")
	}
	if list[0].StartFrame != 0 {
		return fmt.Errorf("scenes: first scene starts at %d, want 0", list[0].StartFrame)
	}
	if last := list[len(list)-1]; last.EndFrame != totalFrames-1 {
		return fmt.Errorf("scenes: last scene ends at %d, want %d", last.EndFrame, totalFrames-1)
	}
	for i, scene := range list {
		if scene.EndFrame < scene.StartFrame {
			return fmt.Errorf("scenes: scene %d inverted: [%d, %d]", scene.ID, scene.StartFrame, scene.EndFrame)
		}
		if scene.KeyframeIndex < scene.StartFrame || scene.KeyframeIndex > scene.EndFrame {
			return fmt.Errorf("scenes: scene %d keyframe %d outside range", scene.ID, scene.KeyframeIndex)
		}
		if i > 0 && scene.StartFrame != list[i-1].EndFrame+1 {
			return fmt.Errorf("scenes: gap between scene %d and %d", list[i-1].ID, scene.ID)
		}
	}
	return nil
}
