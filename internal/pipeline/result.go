package pipeline

import (
	"fmt"
	"time"

	"framesight/internal/services"
)

// Stage names as they appear in reports and logs.
const (
	StageSemantic     = "semantic"
	StageScenes       = "scenes"
	StageDetection    = "detection"
	StageVerification = "verification"
	StageTracking     = "tracking"
	StageMasks        = "masks"
)

// StageResult is the tagged outcome of one stage. Exactly one of the three
// variants applies: success, skipped (collaborator unavailable, with a
// reason), or failed (with the captured error message).
type StageResult struct {
	Stage           string          `json:"stage"`
	Status          services.Status `json:"status"`
	Reason          string          `json:"reason,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
}

// StageSuccess records a completed stage.
func StageSuccess(stage string, elapsed time.Duration) StageResult {
	return StageResult{Stage: stage, Status: services.StatusSuccess, DurationSeconds: elapsed.Seconds()}
}

// StageSkipped records a stage degraded away because its collaborator is
// unavailable.
func StageSkipped(stage, reason string, elapsed time.Duration) StageResult {
	return StageResult{Stage: stage, Status: services.StatusSkipped, Reason: reason, DurationSeconds: elapsed.Seconds()}
}

// StageFailed records a stage that ran and errored.
func StageFailed(stage string, err error, elapsed time.Duration) StageResult {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return StageResult{Stage: stage, Status: services.StatusFailed, Reason: reason, DurationSeconds: elapsed.Seconds()}
}

// stageResultFor classifies a stage error into the matching variant.
func stageResultFor(stage string, err error, elapsed time.Duration) StageResult {
	switch services.StageStatus(err) {
	case services.StatusSuccess:
		return StageSuccess(stage, elapsed)
	case services.StatusSkipped:
		return StageSkipped(stage, err.Error(), elapsed)
	default:
		return StageFailed(stage, err, elapsed)
	}
}

func (r StageResult) String() string {
	if r.Reason == "" {
		return fmt.Sprintf("%s: %s", r.Stage, r.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Stage, r.Status, r.Reason)
}
