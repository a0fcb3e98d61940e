package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"framesight/internal/media"
	"framesight/internal/rle"
	"framesight/internal/scenes"
	"framesight/internal/semantic"
	"framesight/internal/services"
	"framesight/internal/track"
	"framesight/internal/verify"
)

// OverallStatus summarizes the whole run.
type OverallStatus string

const (
	StatusCompleted OverallStatus = "completed"
	StatusPartial   OverallStatus = "partial"
	StatusFailed    OverallStatus = "failed"
)

// Report is the consolidated output of one pipeline run. It is built
// incrementally by the orchestrator and finalized exactly once; after
// finalization the overall status and reason never change.
type Report struct {
	ID          string        `json:"id"`
	VideoPath   string        `json:"video_path"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Status      OverallStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`

	Metadata media.VideoMetadata `json:"metadata"`
	Stages   []StageResult       `json:"stages"`

	Semantic *semantic.Analysis `json:"semantic,omitempty"`
	Scenes   []scenes.Scene     `json:"scenes,omitempty"`

	Verified       map[int][]media.Detection `json:"verified,omitempty"`
	DetectionStats verify.Statistics         `json:"detection_stats"`

	Tracks     map[int64]*track.Track `json:"tracks,omitempty"`
	TrackStats track.Statistics       `json:"track_stats"`

	Masks     map[int][]rle.Mask `json:"masks,omitempty"`
	MaskStats rle.Statistics     `json:"mask_stats"`

	KeyEvents         []string       `json:"key_events,omitempty"`
	ClassDistribution map[string]int `json:"class_distribution,omitempty"`

	finalized bool
}

func newReport(videoPath string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		VideoPath: videoPath,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *Report) addStage(result StageResult) {
	r.Stages = append(r.Stages, result)
}

// StageFor returns the recorded result for the named stage.
func (r *Report) StageFor(stage string) (StageResult, bool) {
	for _, result := range r.Stages {
		if result.Stage == stage {
			return result, true
		}
	}
	return StageResult{}, false
}

// finalize computes the overall status from the recorded stages and seals the
// report. fatalErr, when set, forces the failed status.
func (r *Report) finalize(fatalErr error) {
	if r.finalized {
		return
	}
	r.finalized = true
	r.CompletedAt = time.Now().UTC()

	if fatalErr != nil {
		r.Status = StatusFailed
		r.Reason = fatalErr.Error()
		return
	}

	var degraded []string
	for _, result := range r.Stages {
		if result.Status == services.StatusSuccess {
			continue
		}
		degraded = append(degraded, fmt.Sprintf("%s %s: %s", result.Stage, result.Status, result.Reason))
	}
	if len(degraded) == 0 {
		r.Status = StatusCompleted
		return
	}
	r.Status = StatusPartial
	r.Reason = strings.Join(degraded, "; ")
}

// Finalized reports whether the report has been sealed.
func (r *Report) Finalized() bool {
	return r.finalized
}

// consolidate fills the derived summary fields from the stage outputs.
func (r *Report) consolidate() {
	if r.Semantic != nil {
		r.KeyEvents = r.Semantic.KeyEvents(maxKeyEvents)
	}
	if len(r.DetectionStats.ClassDistribution) > 0 {
		r.ClassDistribution = r.DetectionStats.ClassDistribution
	}
}

const maxKeyEvents = 10

// VerifiedFrameOrder returns the frame indices of the verified detection set
// in ascending order, the order the tracker consumes them in.
func (r *Report) VerifiedFrameOrder() []int {
	frames := make([]int, 0, len(r.Verified))
	for frame := range r.Verified {
		frames = append(frames, frame)
	}
	sort.Ints(frames)
	return frames
}
