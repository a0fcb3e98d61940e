package scenes_test

import (
	"testing"

	"framesight/internal/media"
	"framesight/internal/scenes"
)

func solidFrame(index int, value byte, size int) media.Frame {
	raster := make([]byte, size)
	for i := range raster {
		raster[i] = value
	}
	return media.Frame{Index: index, Raster: raster}
}

func TestDiscontinuityScoresFlatSequence(t *testing.T) {
	frames := []media.Frame{
		solidFrame(0, 40, 16),
		solidFrame(1, 40, 16),
		solidFrame(2, 40, 16),
	}
	scores := scenes.DiscontinuityScores(frames)
	if len(scores) != 3 {
		t.Fatalf("expected one score per frame, got %d", len(scores))
	}
	for i, s := range scores {
		if s != 0 {
			t.Fatalf("frame %d: expected zero score, got %v", i, s)
		}
	}
}

func TestDiscontinuityScoresSpikeOnCut(t *testing.T) {
	frames := []media.Frame{
		solidFrame(0, 10, 16),
		solidFrame(1, 10, 16),
		solidFrame(2, 200, 16),
		solidFrame(3, 200, 16),
	}
	scores := scenes.DiscontinuityScores(frames)
	if scores[0] != 0 {
		t.Fatalf("first frame must score zero, got %v", scores[0])
	}
	want := 190.0 / 255.0
	if diff := scores[2] - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected cut score: got %v want %v", scores[2], want)
	}
	if scores[1] != 0 || scores[3] != 0 {
		t.Fatalf("steady frames must score zero: %v", scores)
	}
}

func TestDiscontinuityScoresMissingRasters(t *testing.T) {
	frames := []media.Frame{
		{Index: 0},
		{Index: 1},
		solidFrame(2, 90, 8),
	}
	scores := scenes.DiscontinuityScores(frames)
	for i, s := range scores {
		if s != 0 {
			t.Fatalf("frame %d: raster-less comparison must score zero, got %v", i, s)
		}
	}
}
