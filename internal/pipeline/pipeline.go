package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"framesight/internal/config"
	"framesight/internal/logging"
	"framesight/internal/media"
	"framesight/internal/rle"
	"framesight/internal/scenes"
	"framesight/internal/semantic"
	"framesight/internal/services"
	"framesight/internal/track"
	"framesight/internal/verify"
)

// Segmenter produces segmentation masks for one frame's verified detections.
// The mask model is an external collaborator; when none is wired in, the
// masks stage is skipped.
type Segmenter interface {
	Segment(ctx context.Context, frame media.Frame, detections []media.Detection) ([]rle.Mask, error)
}

// Options carries run configuration and optional collaborator overrides.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	VideoPath string

	// Tracker overrides the config-selected strategy, for callers that
	// construct a library-backed tracker themselves.
	Tracker   track.Strategy
	Segmenter Segmenter
}

// Run executes the full analysis pipeline against one video and always
// returns a finalized report; errors surface as stage results and the
// overall status, never as a panic or a returned error.
//
// Semantic analysis and the frame path (decode, detection, scene
// segmentation) run concurrently and join before verification. A stage that
// exceeds its configured budget fails with a timeout reason and the pipeline
// consolidates whatever completed. Zero decodable frames aborts the run.
func Run(ctx context.Context, source media.FrameSource, detector media.Detector, analyzer semantic.Analyzer, opts Options) *Report {
	cfg := opts.Config
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	report := newReport(opts.VideoPath)
	ctx = services.WithAnalysisID(ctx, report.ID)
	ctx = services.WithVideo(ctx, opts.VideoPath)
	logger = logging.WithContext(ctx, logger)
	logger.Info("pipeline started")

	if source == nil {
		report.finalize(services.Wrap(services.ErrFatalInput, StageDetection, "open", "no frame source", nil))
		return report
	}
	meta, err := source.Metadata()
	if err != nil {
		report.finalize(services.Wrap(services.ErrFatalInput, StageDetection, "metadata", "read video metadata", err))
		return report
	}
	report.Metadata = meta

	var (
		analysis   *semantic.Analysis
		frames     []media.Frame
		detections map[int][]media.Detection
		sceneList  []scenes.Scene

		semanticRes  StageResult
		detectionRes StageResult
		scenesRes    StageResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		started := time.Now()
		err := safeStage(StageSemantic, func() error {
			var serr error
			analysis, serr = runSemantic(gctx, analyzer, opts.VideoPath, cfg)
			return serr
		})
		semanticRes = stageResultFor(StageSemantic, err, time.Since(started))
		return nil
	})
	g.Go(func() error {
		started := time.Now()
		sctx, cancel := stageContext(gctx, cfg.Stages.DetectionTimeout)
		defer cancel()

		var cerr error
		frames, cerr = media.CollectFrames(sctx, source)
		if cerr != nil {
			return services.Wrap(services.ErrFatalInput, StageDetection, "decode", "collect frames", cerr)
		}
		if len(frames) == 0 {
			return services.Wrap(services.ErrFatalInput, StageDetection, "decode", "zero decodable frames", nil)
		}

		derr := safeStage(StageDetection, func() error {
			var serr error
			detections, serr = runDetection(sctx, detector, frames, cfg)
			return serr
		})
		detectionRes = stageResultFor(StageDetection, derr, time.Since(started))

		started = time.Now()
		serr := safeStage(StageScenes, func() error {
			var serr error
			sceneList, serr = runScenes(gctx, frames, meta, cfg)
			return serr
		})
		scenesRes = stageResultFor(StageScenes, serr, time.Since(started))
		return nil
	})
	fatalErr := g.Wait()

	for _, result := range []StageResult{semanticRes, detectionRes, scenesRes} {
		if result.Stage == "" {
			continue
		}
		report.addStage(result)
		logStage(logger, result)
	}
	report.Semantic = analysis
	report.Scenes = sceneList

	if fatalErr != nil {
		report.finalize(fatalErr)
		logger.Error("pipeline aborted", logging.Error(fatalErr))
		return report
	}

	runVerification(report, analysis, detections, semanticRes, detectionRes, logger)
	runTracking(ctx, report, meta, cfg, opts.Tracker, logger)
	if cfg.Masks.Enabled {
		runMasks(ctx, report, frames, cfg, opts.Segmenter, logger)
	}

	report.consolidate()
	report.finalize(nil)
	logger.Info("pipeline finished",
		logging.String("status", string(report.Status)),
		logging.Int("stages", len(report.Stages)))
	return report
}

func runSemantic(ctx context.Context, analyzer semantic.Analyzer, videoPath string, cfg *config.Config) (*semantic.Analysis, error) {
	if analyzer == nil {
		return nil, services.Wrap(services.ErrUnavailable, StageSemantic, "analyze", "no analyzer configured", nil)
	}
	sctx, cancel := stageContext(ctx, cfg.Stages.SemanticTimeout)
	defer cancel()

	analysis, err := analyzer.Analyze(sctx, videoPath)
	if err != nil {
		if sctx.Err() == context.DeadlineExceeded {
			return nil, services.Wrap(services.ErrTimeout, StageSemantic, "analyze", "stage budget exceeded", err)
		}
		return nil, err
	}
	return analysis, nil
}

func runDetection(ctx context.Context, detector media.Detector, frames []media.Frame, cfg *config.Config) (map[int][]media.Detection, error) {
	if detector == nil {
		return nil, services.Wrap(services.ErrUnavailable, StageDetection, "detect", "no detector configured", nil)
	}
	sample := cfg.Detector.SampleRate
	if sample < 1 {
		sample = 1
	}

	out := make(map[int][]media.Detection)
	for _, frame := range frames {
		if frame.Index%sample != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrTimeout, StageDetection, "detect", "stage budget exceeded", err)
		}
		dets, err := detector.Detect(ctx, frame)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalService, StageDetection, "detect",
				fmt.Sprintf("frame %d", frame.Index), err)
		}
		dets = media.FilterDetections(dets, cfg.Detector.MinConfidence, cfg.Detector.MinBoxSize)
		if limit := cfg.Detector.MaxDetections; limit > 0 && len(dets) > limit {
			dets = dets[:limit]
		}
		for i := range dets {
			dets[i].FrameIndex = frame.Index
		}
		if len(dets) > 0 {
			out[frame.Index] = dets
		}
	}
	return out, nil
}

func runScenes(ctx context.Context, frames []media.Frame, meta media.VideoMetadata, cfg *config.Config) ([]scenes.Scene, error) {
	sctx, cancel := stageContext(ctx, cfg.Stages.SceneTimeout)
	defer cancel()
	if err := sctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTimeout, StageScenes, "segment", "stage budget exceeded", err)
	}

	scores := scenes.DiscontinuityScores(frames)
	list, err := scenes.Segment(len(frames), scores, meta.FPS, cfg.Scenes.Threshold)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageScenes, "segment", "", err)
	}
	if err := scenes.Validate(list, len(frames)); err != nil {
		return nil, services.Wrap(services.ErrValidation, StageScenes, "validate", "", err)
	}
	return list, nil
}

func runVerification(report *Report, analysis *semantic.Analysis, detections map[int][]media.Detection, semanticRes, detectionRes StageResult, logger *slog.Logger) {
	started := time.Now()
	err := safeStage(StageVerification, func() error {
		if semanticRes.Status != services.StatusSuccess {
			return services.Wrap(services.ErrUnavailable, StageVerification, "match",
				fmt.Sprintf("no entity catalog: semantic stage %s", semanticRes.Status), nil)
		}
		if detectionRes.Status != services.StatusSuccess {
			return services.Wrap(services.ErrUnavailable, StageVerification, "match",
				fmt.Sprintf("no detections: detection stage %s", detectionRes.Status), nil)
		}
		report.Verified = verify.Match(analysis.Entities(), detections)
		report.DetectionStats = verify.ComputeStatistics(report.Verified)
		return nil
	})
	result := stageResultFor(StageVerification, err, time.Since(started))
	report.addStage(result)
	logStage(logger, result)
}

func runTracking(ctx context.Context, report *Report, meta media.VideoMetadata, cfg *config.Config, override track.Strategy, logger *slog.Logger) {
	started := time.Now()
	err := safeStage(StageTracking, func() error {
		verification, _ := report.StageFor(StageVerification)
		if verification.Status != services.StatusSuccess {
			return services.Wrap(services.ErrUnavailable, StageTracking, "update",
				"no verified detections", nil)
		}

		strategy := override
		if strategy == nil {
			strategy = selectStrategy(cfg, meta, logger)
		}

		sctx, cancel := stageContext(ctx, cfg.Stages.TrackingTimeout)
		defer cancel()
		for _, frame := range report.VerifiedFrameOrder() {
			if err := sctx.Err(); err != nil {
				return services.Wrap(services.ErrTimeout, StageTracking, "update", "stage budget exceeded", err)
			}
			if _, err := strategy.Update(frame, report.Verified[frame]); err != nil {
				return err
			}
		}
		tracks := track.FilterByDuration(strategy.Finalize(), cfg.Tracker.MinTrackFrames)
		report.Tracks = tracks
		report.TrackStats = track.ComputeStatistics(tracks)
		return nil
	})
	result := stageResultFor(StageTracking, err, time.Since(started))
	report.addStage(result)
	logStage(logger, result)
}

func runMasks(ctx context.Context, report *Report, frames []media.Frame, cfg *config.Config, segmenter Segmenter, logger *slog.Logger) {
	started := time.Now()
	err := safeStage(StageMasks, func() error {
		if segmenter == nil {
			return services.Wrap(services.ErrUnavailable, StageMasks, "segment", "no segmenter configured", nil)
		}
		verification, _ := report.StageFor(StageVerification)
		if verification.Status != services.StatusSuccess {
			return services.Wrap(services.ErrUnavailable, StageMasks, "segment", "no verified detections", nil)
		}

		sample := cfg.Masks.SampleRate
		if sample < 1 {
			sample = 1
		}
		byIndex := make(map[int]media.Frame, len(frames))
		for _, frame := range frames {
			byIndex[frame.Index] = frame
		}

		sctx, cancel := stageContext(ctx, cfg.Stages.MaskTimeout)
		defer cancel()
		masks := make(map[int][]rle.Mask)
		for _, frameIndex := range report.VerifiedFrameOrder() {
			if frameIndex%sample != 0 {
				continue
			}
			frame, ok := byIndex[frameIndex]
			if !ok {
				continue
			}
			if err := sctx.Err(); err != nil {
				return services.Wrap(services.ErrTimeout, StageMasks, "segment", "stage budget exceeded", err)
			}
			frameMasks, err := segmenter.Segment(sctx, frame, report.Verified[frameIndex])
			if err != nil {
				return services.Wrap(services.ErrExternalService, StageMasks, "segment",
					fmt.Sprintf("frame %d", frameIndex), err)
			}
			if len(frameMasks) > 0 {
				masks[frameIndex] = frameMasks
			}
		}
		masks = rle.FilterByArea(masks, cfg.Masks.MinAreaPixels, 0)
		masks = rle.FilterByStability(masks, cfg.Masks.StabilityThreshold)
		report.Masks = masks
		report.MaskStats = rle.ComputeStatistics(masks)
		return nil
	})
	result := stageResultFor(StageMasks, err, time.Since(started))
	report.addStage(result)
	logStage(logger, result)
}

// selectStrategy picks the configured tracker, falling back to the centroid
// strategy when no library-backed tracker is registered.
func selectStrategy(cfg *config.Config, meta media.VideoMetadata, logger *slog.Logger) track.Strategy {
	if cfg.Tracker.Strategy == config.TrackerStrategyExternal {
		strategy, err := track.NewExternal(track.ExternalConfig{
			TrackBuffer:    cfg.Tracker.TrackBuffer,
			MatchThreshold: cfg.Tracker.MatchThreshold,
			FrameRate:      meta.FPS,
		})
		if err == nil {
			return strategy
		}
		logger.Warn("library tracker unavailable, using centroid fallback", logging.Error(err))
	}
	return track.NewCentroidTracker(track.CentroidConfig{
		MaxDistance:     cfg.Tracker.MaxDistance,
		StalenessWindow: cfg.Tracker.StalenessWindow,
		FrameRate:       meta.FPS,
	})
}

func stageContext(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

// safeStage converts a stage panic into a failed-stage error so nothing
// escapes Run.
func safeStage(stage string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = services.Wrap(services.ErrExternalService, stage, "panic", fmt.Sprint(rec), nil)
		}
	}()
	return fn()
}

func logStage(logger *slog.Logger, result StageResult) {
	attrs := []any{
		logging.String("stage", result.Stage),
		logging.String("status", string(result.Status)),
		logging.Float64("seconds", result.DurationSeconds),
	}
	if result.Reason != "" {
		attrs = append(attrs, logging.String("reason", result.Reason))
	}
	switch result.Status {
	case services.StatusFailed:
		logger.Error("stage failed", attrs...)
	case services.StatusSkipped:
		logger.Warn("stage skipped", attrs...)
	default:
		logger.Info("stage complete", attrs...)
	}
}
