package services

import "context"

type contextKey string

const (
	analysisIDKey contextKey = "analysis_id"
	stageKey      contextKey = "stage"
	videoKey      contextKey = "video"
)

// WithAnalysisID annotates context with the analysis identifier.
func WithAnalysisID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, analysisIDKey, id)
}

// AnalysisIDFromContext extracts the analysis identifier if present.
func AnalysisIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(analysisIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithVideo annotates context with the source video path.
func WithVideo(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, videoKey, path)
}

// VideoFromContext returns the source video path if present.
func VideoFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(videoKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
