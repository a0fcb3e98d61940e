package scenes_test

import (
	"testing"

	"framesight/internal/scenes"
)

func TestSegmentNoBoundaries(t *testing.T) {
	scores := make([]float64, 100)
	list, err := scenes.Segment(100, scores, 25, 0.4)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one scene, got %d", len(list))
	}
	scene := list[0]
	if scene.StartFrame != 0 || scene.EndFrame != 99 {
		t.Fatalf("unexpected range: [%d, %d]", scene.StartFrame, scene.EndFrame)
	}
	if scene.KeyframeIndex != 49 {
		t.Fatalf("unexpected keyframe: %d", scene.KeyframeIndex)
	}
	if err := scenes.Validate(list, 100); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSegmentSplitsOnDiscontinuity(t *testing.T) {
	scores := make([]float64, 120)
	scores[40] = 0.9
	scores[80] = 0.7

	list, err := scenes.Segment(120, scores, 25, 0.4)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected three scenes, got %d", len(list))
	}
	if list[0].EndFrame != 39 || list[1].StartFrame != 40 {
		t.Fatalf("unexpected first boundary: %+v", list[:2])
	}
	if list[1].EndFrame != 79 || list[2].StartFrame != 80 {
		t.Fatalf("unexpected second boundary: %+v", list[1:])
	}
	if list[2].EndFrame != 119 {
		t.Fatalf("final scene not closed at last frame: %+v", list[2])
	}
	if err := scenes.Validate(list, 120); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSegmentMinimumGapSuppressesNoise(t *testing.T) {
	// Spikes every 5 frames; with fps 25 only spikes at least 25 frames
	// apart may open a scene.
	scores := make([]float64, 100)
	for f := 5; f < 100; f += 5 {
		scores[f] = 0.95
	}

	list, err := scenes.Segment(100, scores, 25, 0.4)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	// Boundaries land at 25, 50, 75.
	if len(list) != 4 {
		t.Fatalf("expected four scenes, got %d: %+v", len(list), list)
	}
	for i := 1; i < len(list); i++ {
		gap := list[i].StartFrame - list[i-1].StartFrame
		if gap < 25 {
			t.Fatalf("scenes %d and %d closer than minimum gap: %d", i-1, i, gap)
		}
	}
	if err := scenes.Validate(list, 100); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSegmentFractionalFPSRoundsGapUp(t *testing.T) {
	// At 29.97 fps a spike 29 frames after the previous boundary is still
	// inside the one-second window; 30 frames is not.
	scores := make([]float64, 120)
	scores[29] = 0.9
	scores[60] = 0.9

	list, err := scenes.Segment(120, scores, 29.97, 0.4)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two scenes, got %d: %+v", len(list), list)
	}
	if list[1].StartFrame != 60 {
		t.Fatalf("unexpected boundary: %+v", list[1])
	}
	if err := scenes.Validate(list, 120); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSegmentBoundaryAtLastFrame(t *testing.T) {
	scores := make([]float64, 60)
	scores[59] = 0.99

	list, err := scenes.Segment(60, scores, 30, 0.4)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	// The final scene still closes at frame 59 even though a boundary fired there.
	last := list[len(list)-1]
	if last.EndFrame != 59 {
		t.Fatalf("final scene not closed at last frame: %+v", last)
	}
	if err := scenes.Validate(list, 60); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSegmentSecondsAndKeyframes(t *testing.T) {
	scores := make([]float64, 100)
	scores[50] = 1.0
	list, err := scenes.Segment(100, scores, 25, 0.4)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two scenes, got %d", len(list))
	}
	if list[1].StartSecond != 2.0 {
		t.Fatalf("unexpected start second: %v", list[1].StartSecond)
	}
	if list[0].KeyframeIndex != 24 {
		t.Fatalf("unexpected keyframe: %d", list[0].KeyframeIndex)
	}
}

func TestSegmentRejectsBadInput(t *testing.T) {
	if _, err := scenes.Segment(0, nil, 25, 0.4); err == nil {
		t.Fatal("expected error for zero frames")
	}
	if _, err := scenes.Segment(10, nil, 0, 0.4); err == nil {
		t.Fatal("expected error for zero fps")
	}
}

func TestValidateDetectsGaps(t *testing.T) {
	list := []scenes.Scene{
		{ID: 1, StartFrame: 0, EndFrame: 10, KeyframeIndex: 5},
		{ID: 2, StartFrame: 12, EndFrame: 20, KeyframeIndex: 16},
	}
	if err := scenes.Validate(list, 21); err == nil {
		t.Fatal("expected gap error")
	}
}
