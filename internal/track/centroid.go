package track

import (
	"math"
	"sort"

	"framesight/internal/media"
	"framesight/internal/services"
)

const (
	// DefaultMaxDistance is the largest centroid displacement, in pixels,
	// a detection may move between observations and still continue a track.
	DefaultMaxDistance = 50.0

	// DefaultStalenessWindow is how many frames a track may go unmatched
	// before it turns stale.
	DefaultStalenessWindow = 5
)

// CentroidConfig tunes the centroid tracker.
type CentroidConfig struct {
	MaxDistance     float64
	StalenessWindow int
	FrameRate       float64
}

// CentroidTracker associates detections across frames by greedy
// nearest-centroid matching. It is the fallback strategy used when no
// library-backed tracker is wired in, and it never loses or duplicates a
// detection: every detection either continues an existing track or spawns
// a new one.
type CentroidTracker struct {
	cfg       CentroidConfig
	nextID    int64
	lastFrame int

	// live holds tentative and active tracks, still eligible for matching.
	// retired holds active tracks that went stale; they are excluded from
	// matching but still reported at finalize.
	live    map[int64]*Track
	retired map[int64]*Track

	finalized bool
}

// NewCentroidTracker builds a tracker, filling zero config fields with the
// defaults.
func NewCentroidTracker(cfg CentroidConfig) *CentroidTracker {
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultMaxDistance
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	return &CentroidTracker{
		cfg:       cfg,
		nextID:    1,
		lastFrame: -1,
		live:      make(map[int64]*Track),
		retired:   make(map[int64]*Track),
	}
}

// Update ingests one frame's detections and returns the track id assigned to
// each detection, in input order. Frames must arrive in strictly increasing
// index order. Each detection is matched greedily to the nearest live track
// within MaxDistance; ties on distance go to the lowest track id, and a track
// accepts at most one detection per frame. Unmatched detections spawn new
// tentative tracks. Tracks unmatched for longer than the staleness window are
// evicted before matching, so a stale identity is never resurrected.
func (c *CentroidTracker) Update(frameIndex int, detections []media.Detection) ([]int64, error) {
	if c.finalized {
		return nil, services.Wrap(services.ErrValidation, "tracking", "update", "tracker already finalized", nil)
	}
	if frameIndex <= c.lastFrame {
		return nil, services.Wrap(services.ErrValidation, "tracking", "update",
			"frame indices must be strictly increasing", nil)
	}
	c.lastFrame = frameIndex
	c.evict(frameIndex)

	assigned := make([]int64, len(detections))
	matched := make(map[int64]struct{}, len(c.live))
	liveIDs := sortedIDs(c.live)

	for i, det := range detections {
		bestID := int64(-1)
		bestDist := math.Inf(1)
		for _, id := range liveIDs {
			if _, taken := matched[id]; taken {
				continue
			}
			d := centroidDistance(c.live[id].LastPoint().BBox, det.BBox)
			// Strict less keeps the lowest id on equal distance, since ids
			// are visited in ascending order.
			if d < bestDist {
				bestDist = d
				bestID = id
			}
		}

		if bestID >= 0 && bestDist < c.cfg.MaxDistance {
			tr := c.live[bestID]
			if err := tr.appendPoint(Point{FrameIndex: frameIndex, BBox: det.BBox, Confidence: det.Confidence}); err != nil {
				return nil, services.Wrap(services.ErrValidation, "tracking", "update", "append point", err)
			}
			tr.State = StateActive
			matched[bestID] = struct{}{}
			assigned[i] = bestID
			continue
		}

		id := c.spawn(frameIndex, det)
		matched[id] = struct{}{}
		assigned[i] = id
	}

	return assigned, nil
}

// Finalize retires the remaining tracks, drops the ones that never advanced
// past a single observation, computes per-track statistics, and returns the
// surviving tracks keyed by id. The tracker accepts no further updates.
func (c *CentroidTracker) Finalize() map[int64]*Track {
	c.finalized = true

	out := make(map[int64]*Track, len(c.live)+len(c.retired))
	for id, tr := range c.retired {
		tr.finalizeStats(c.cfg.FrameRate)
		out[id] = tr
	}
	for id, tr := range c.live {
		if tr.State == StateTentative && len(tr.Points) < 2 {
			// A lone observation at end of input carries no motion signal.
			continue
		}
		tr.finalizeStats(c.cfg.FrameRate)
		out[id] = tr
	}
	c.live = make(map[int64]*Track)
	c.retired = make(map[int64]*Track)
	return out
}

func (c *CentroidTracker) spawn(frameIndex int, det media.Detection) int64 {
	id := c.nextID
	c.nextID++
	c.live[id] = &Track{
		ID:         id,
		State:      StateTentative,
		Points:     []Point{{FrameIndex: frameIndex, BBox: det.BBox, Confidence: det.Confidence}},
		StartFrame: frameIndex,
		EndFrame:   frameIndex,
		lastSeen:   frameIndex,
	}
	return id
}

// evict ages live tracks against the staleness window. Tracks that went
// stale before ever being rematched are dropped outright; active tracks
// retire and stay out of future matching.
func (c *CentroidTracker) evict(frameIndex int) {
	for id, tr := range c.live {
		if frameIndex-tr.lastSeen <= c.cfg.StalenessWindow {
			continue
		}
		delete(c.live, id)
		if tr.State == StateActive {
			tr.State = StateStale
			c.retired[id] = tr
		}
	}
}

func centroidDistance(a, b media.BBox) float64 {
	dx := a.CenterX() - b.CenterX()
	dy := a.CenterY() - b.CenterY()
	return math.Sqrt(dx*dx + dy*dy)
}

func sortedIDs(tracks map[int64]*Track) []int64 {
	ids := make([]int64, 0, len(tracks))
	for id := range tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
