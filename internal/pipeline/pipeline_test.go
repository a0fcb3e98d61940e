package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"framesight/internal/config"
	"framesight/internal/media"
	"framesight/internal/pipeline"
	"framesight/internal/rle"
	"framesight/internal/scenes"
	"framesight/internal/semantic"
	"framesight/internal/services"
	"framesight/internal/testsupport"
)

func bowlAnalysis() *semantic.Analysis {
	return &semantic.Analysis{
		Products: []semantic.Entity{
			{ID: "product-1", Kind: semantic.KindProduct, Descriptor: "Dog Bowl", Category: "container"},
		},
		Timeline: []semantic.Event{
			{Second: 2.5, Frame: 5, Description: "bowl placed on the floor", ProductsInvolved: []int{1}},
		},
		Summary: "a dog bowl is shown",
	}
}

// cutFrames yields ten frames with a hard discontinuity at frame 5.
func cutFrames() []media.Frame {
	return testsupport.SolidFrames(2, []byte{10, 10, 10, 10, 10, 200, 200, 200, 200, 200}, 64)
}

func bowlDetections(frames int) map[int][]media.Detection {
	out := make(map[int][]media.Detection, frames)
	for i := 0; i < frames; i++ {
		out[i] = []media.Detection{{
			ClassLabel: "bowl",
			Confidence: 0.9,
			BBox:       media.BBox{X: float64(i * 3), Y: 10, Width: 80, Height: 80},
		}}
	}
	return out
}

func TestRunCompleted(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) { c.Masks.Enabled = false })
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: bowlDetections(10)}
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, detector, analyzer, pipeline.Options{
		Config:    cfg,
		VideoPath: "/videos/bowl.mp4",
	})

	if report.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", report.Status, report.Reason)
	}
	if !report.Finalized() {
		t.Fatal("report not finalized")
	}
	if report.ID == "" {
		t.Fatal("missing report id")
	}
	if len(report.Stages) != 5 {
		t.Fatalf("expected 5 stages, got %d: %+v", len(report.Stages), report.Stages)
	}
	for _, stage := range report.Stages {
		if stage.Status != services.StatusSuccess {
			t.Fatalf("stage %s not successful: %+v", stage.Stage, stage)
		}
	}

	if len(report.Scenes) != 2 {
		t.Fatalf("expected two scenes, got %+v", report.Scenes)
	}
	if err := scenes.Validate(report.Scenes, 10); err != nil {
		t.Fatalf("scene invariant: %v", err)
	}

	if report.DetectionStats.TotalDetections != 10 {
		t.Fatalf("expected 10 verified detections, got %d", report.DetectionStats.TotalDetections)
	}
	if report.ClassDistribution["bowl"] != 10 {
		t.Fatalf("unexpected class distribution: %v", report.ClassDistribution)
	}
	for _, dets := range report.Verified {
		for _, det := range dets {
			if !det.Verified || det.MatchedEntityID != "product-1" {
				t.Fatalf("detection not verified against entity: %+v", det)
			}
		}
	}

	if len(report.Tracks) != 1 {
		t.Fatalf("expected one track, got %d", len(report.Tracks))
	}
	if report.TrackStats.TotalTracks != 1 || report.TrackStats.MaxDurationFrames != 10 {
		t.Fatalf("unexpected track stats: %+v", report.TrackStats)
	}

	if len(report.KeyEvents) != 1 || !strings.Contains(report.KeyEvents[0], "bowl placed") {
		t.Fatalf("unexpected key events: %v", report.KeyEvents)
	}
	if analyzer.Calls != 1 {
		t.Fatalf("analyzer called %d times, want 1", analyzer.Calls)
	}
}

type fixedSegmenter struct{}

func (fixedSegmenter) Segment(ctx context.Context, frame media.Frame, detections []media.Detection) ([]rle.Mask, error) {
	masks := make([]rle.Mask, 0, len(detections))
	for range detections {
		masks = append(masks, rle.Mask{
			DetectionID:    "det",
			FrameIndex:     frame.Index,
			ClassLabel:     "bowl",
			Confidence:     0.9,
			RLE:            "0,150",
			AreaPixels:     150,
			StabilityScore: 0.97,
		})
	}
	return masks, nil
}

func TestRunMasksStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: bowlDetections(10)}
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, detector, analyzer, pipeline.Options{
		Config:    cfg,
		Segmenter: fixedSegmenter{},
	})

	if report.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", report.Status, report.Reason)
	}
	if len(report.Stages) != 6 {
		t.Fatalf("expected 6 stages, got %d", len(report.Stages))
	}
	if report.MaskStats.TotalMasks != 10 {
		t.Fatalf("expected 10 masks, got %+v", report.MaskStats)
	}
	if report.MaskStats.AverageMaskArea != 150 {
		t.Fatalf("unexpected mask area: %v", report.MaskStats.AverageMaskArea)
	}
}

// shakySegmenter pairs every stable mask with one below any reasonable
// stability threshold.
type shakySegmenter struct{}

func (shakySegmenter) Segment(ctx context.Context, frame media.Frame, detections []media.Detection) ([]rle.Mask, error) {
	masks := make([]rle.Mask, 0, 2*len(detections))
	for range detections {
		masks = append(masks,
			rle.Mask{FrameIndex: frame.Index, ClassLabel: "bowl", Confidence: 0.9, RLE: "0,150", AreaPixels: 150, StabilityScore: 0.97},
			rle.Mask{FrameIndex: frame.Index, ClassLabel: "bowl", Confidence: 0.9, RLE: "0,150", AreaPixels: 150, StabilityScore: 0.10},
		)
	}
	return masks, nil
}

func TestRunMasksDropsUnstableMasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: bowlDetections(10)}
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, detector, analyzer, pipeline.Options{
		Config:    cfg,
		Segmenter: shakySegmenter{},
	})

	if report.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", report.Status, report.Reason)
	}
	// Half of the emitted masks sit below the default 0.95 stability threshold.
	if report.MaskStats.TotalMasks != 10 {
		t.Fatalf("expected 10 stable masks, got %+v", report.MaskStats)
	}
	for frame, frameMasks := range report.Masks {
		for _, m := range frameMasks {
			if m.StabilityScore < cfg.Masks.StabilityThreshold {
				t.Fatalf("frame %d kept unstable mask: %+v", frame, m)
			}
		}
	}
}

func TestRunMasksSkippedWithoutSegmenter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: bowlDetections(10)}
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, detector, analyzer, pipeline.Options{Config: cfg})

	if report.Status != pipeline.StatusPartial {
		t.Fatalf("expected partial, got %s", report.Status)
	}
	masks, ok := report.StageFor(pipeline.StageMasks)
	if !ok || masks.Status != services.StatusSkipped {
		t.Fatalf("expected masks skipped, got %+v", masks)
	}
}

func TestRunNoAnalyzerDegrades(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) { c.Masks.Enabled = false })
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: bowlDetections(10)}

	report := pipeline.Run(context.Background(), source, detector, nil, pipeline.Options{Config: cfg})

	if report.Status != pipeline.StatusPartial {
		t.Fatalf("expected partial, got %s (%s)", report.Status, report.Reason)
	}
	sem, _ := report.StageFor(pipeline.StageSemantic)
	if sem.Status != services.StatusSkipped {
		t.Fatalf("expected semantic skipped, got %+v", sem)
	}
	ver, _ := report.StageFor(pipeline.StageVerification)
	if ver.Status != services.StatusSkipped {
		t.Fatalf("expected verification skipped, got %+v", ver)
	}
	tr, _ := report.StageFor(pipeline.StageTracking)
	if tr.Status != services.StatusSkipped {
		t.Fatalf("expected tracking skipped, got %+v", tr)
	}
	// Scene segmentation still ran.
	sc, _ := report.StageFor(pipeline.StageScenes)
	if sc.Status != services.StatusSuccess {
		t.Fatalf("expected scenes success, got %+v", sc)
	}
}

func TestRunZeroFramesFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := testsupport.NewFrameSource(2, nil)
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, &testsupport.Detector{}, analyzer, pipeline.Options{Config: cfg})

	if report.Status != pipeline.StatusFailed {
		t.Fatalf("expected failed, got %s", report.Status)
	}
	if !strings.Contains(report.Reason, "zero decodable frames") {
		t.Fatalf("unexpected reason: %q", report.Reason)
	}
	if _, ok := report.StageFor(pipeline.StageTracking); ok {
		t.Fatal("tracking must not run after a fatal input error")
	}
}

func TestRunDetectorFailurePartial(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) { c.Masks.Enabled = false })
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{Err: errors.New("model crashed")}
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, detector, analyzer, pipeline.Options{Config: cfg})

	if report.Status != pipeline.StatusPartial {
		t.Fatalf("expected partial, got %s", report.Status)
	}
	det, _ := report.StageFor(pipeline.StageDetection)
	if det.Status != services.StatusFailed || !strings.Contains(det.Reason, "model crashed") {
		t.Fatalf("unexpected detection result: %+v", det)
	}
	sc, _ := report.StageFor(pipeline.StageScenes)
	if sc.Status != services.StatusSuccess {
		t.Fatalf("expected scenes success, got %+v", sc)
	}
}

type panickingDetector struct{}

func (panickingDetector) Detect(ctx context.Context, frame media.Frame) ([]media.Detection, error) {
	panic("index out of range")
}

func TestRunContainsStagePanics(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) { c.Masks.Enabled = false })
	source := testsupport.NewFrameSource(2, cutFrames())
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, panickingDetector{}, analyzer, pipeline.Options{Config: cfg})

	if report.Status != pipeline.StatusPartial {
		t.Fatalf("expected partial, got %s", report.Status)
	}
	det, _ := report.StageFor(pipeline.StageDetection)
	if det.Status != services.StatusFailed || !strings.Contains(det.Reason, "panic") {
		t.Fatalf("panic not converted to stage failure: %+v", det)
	}
}

type blockingAnalyzer struct{}

func (blockingAnalyzer) Analyze(ctx context.Context, videoPath string) (*semantic.Analysis, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunSemanticTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Masks.Enabled = false
		c.Stages.SemanticTimeout = 1
	})
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: bowlDetections(10)}

	report := pipeline.Run(context.Background(), source, detector, blockingAnalyzer{}, pipeline.Options{Config: cfg})

	sem, _ := report.StageFor(pipeline.StageSemantic)
	if sem.Status != services.StatusFailed || !strings.Contains(sem.Reason, "budget") {
		t.Fatalf("expected semantic timeout failure, got %+v", sem)
	}
	if report.Status != pipeline.StatusPartial {
		t.Fatalf("expected partial, got %s", report.Status)
	}
}

func TestRunScenarioAZeroDetections(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) { c.Masks.Enabled = false })
	source := testsupport.NewFrameSource(2, cutFrames())
	detector := &testsupport.Detector{ByFrame: map[int][]media.Detection{}}
	analyzer := &testsupport.Analyzer{Analysis: bowlAnalysis()}

	report := pipeline.Run(context.Background(), source, detector, analyzer, pipeline.Options{Config: cfg})

	if report.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", report.Status, report.Reason)
	}
	if len(report.Verified) != 0 {
		t.Fatalf("expected empty verified set, got %v", report.Verified)
	}
	if report.DetectionStats.TotalDetections != 0 || report.DetectionStats.FramesWithDetections != 0 {
		t.Fatalf("expected zero detection stats, got %+v", report.DetectionStats)
	}
	if len(report.Tracks) != 0 {
		t.Fatalf("expected no tracks, got %d", len(report.Tracks))
	}
}

func TestRunNilFrameSourceFails(t *testing.T) {
	report := pipeline.Run(context.Background(), nil, nil, nil, pipeline.Options{})
	if report.Status != pipeline.StatusFailed {
		t.Fatalf("expected failed, got %s", report.Status)
	}
}
