package track

import (
	"fmt"

	"framesight/internal/media"
)

// State is the lifecycle position of a track.
//
// Tracks spawn tentative from an unmatched detection, become active when
// matched again in a later frame, turn stale after going unmatched for
// longer than the staleness window, and are removed (never reported) when
// they go stale without ever having been rematched.
type State string

const (
	StateTentative State = "tentative"
	StateActive    State = "active"
	StateStale     State = "stale"
)

// Point is one observation of a tracked object.
type Point struct {
	FrameIndex int        `json:"frame_index"`
	BBox       media.BBox `json:"bbox"`
	Confidence float64    `json:"confidence"`
}

// Track is one object identity maintained across frames. Points are strictly
// increasing in frame index with no duplicate frames.
type Track struct {
	ID         int64   `json:"track_id"`
	State      State   `json:"state"`
	Points     []Point `json:"points"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`

	// Derived at finalize.
	DurationFrames  int     `json:"duration_frames"`
	DurationSeconds float64 `json:"duration_seconds"`
	AvgConfidence   float64 `json:"avg_confidence"`
	VelocityX       float64 `json:"velocity_x"`
	VelocityY       float64 `json:"velocity_y"`

	lastSeen int
}

// LastPoint returns the most recent observation.
func (t *Track) LastPoint() Point {
	return t.Points[len(t.Points)-1]
}

func (t *Track) appendPoint(p Point) error {
	if len(t.Points) > 0 && p.FrameIndex <= t.LastPoint().FrameIndex {
		return fmt.Errorf("track %d: point frame %d not after %d", t.ID, p.FrameIndex, t.LastPoint().FrameIndex)
	}
	t.Points = append(t.Points, p)
	t.EndFrame = p.FrameIndex
	t.lastSeen = p.FrameIndex
	return nil
}

// finalizeStats computes the derived fields from the accumulated points.
func (t *Track) finalizeStats(frameRate float64) {
	t.DurationFrames = t.EndFrame - t.StartFrame + 1
	if frameRate > 0 {
		t.DurationSeconds = float64(t.DurationFrames) / frameRate
	}

	if len(t.Points) > 0 {
		sum := 0.0
		for _, p := range t.Points {
			sum += p.Confidence
		}
		t.AvgConfidence = sum / float64(len(t.Points))
	}

	if len(t.Points) >= 2 {
		var vx, vy float64
		for i := 1; i < len(t.Points); i++ {
			vx += t.Points[i].BBox.CenterX() - t.Points[i-1].BBox.CenterX()
			vy += t.Points[i].BBox.CenterY() - t.Points[i-1].BBox.CenterY()
		}
		n := float64(len(t.Points) - 1)
		t.VelocityX = vx / n
		t.VelocityY = vy / n
	}
}

// Strategy is the tracker contract both identity-management algorithms
// implement. Update must be called with strictly increasing frame indices;
// the returned slice holds the track id assigned to each detection, in
// order. Finalize computes per-track statistics and returns every surviving
// track keyed by id; the tracker must not be updated afterwards.
type Strategy interface {
	Update(frameIndex int, detections []media.Detection) ([]int64, error)
	Finalize() map[int64]*Track
}
