package config

const (
	defaultWorkDir    = "~/.local/share/framesight/work"
	defaultLogDir     = "~/.local/share/framesight/logs"
	defaultCatalogDir = "~/.local/share/framesight/catalog"

	defaultAnalyzerBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultAnalyzerModel          = "gemini-2.0-flash"
	defaultAnalyzerTimeoutSeconds = 300
	defaultAnalyzerPollSeconds    = 2

	defaultDetectorMinConfidence = 0.5
	defaultDetectorMinBoxSize    = 64
	defaultDetectorSampleRate    = 1
	defaultDetectorMaxDetections = 300

	defaultSceneThreshold = 0.4

	defaultTrackerStrategy        = "centroid"
	defaultTrackerMaxDistance     = 50
	defaultTrackerStalenessWindow = 5
	defaultTrackerMinTrackFrames  = 1
	defaultTrackerTrackBuffer     = 30
	defaultTrackerMatchThreshold  = 0.8

	defaultMaskMinAreaPixels      = 100
	defaultMaskStabilityThreshold = 0.95
	defaultMaskSampleRate         = 1

	defaultSemanticTimeout  = 300
	defaultSceneTimeout     = 120
	defaultDetectionTimeout = 300
	defaultTrackingTimeout  = 120
	defaultMaskTimeout      = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			LogDir:     defaultLogDir,
			CatalogDir: defaultCatalogDir,
		},
		Analyzer: Analyzer{
			BaseURL:        defaultAnalyzerBaseURL,
			Model:          defaultAnalyzerModel,
			TimeoutSeconds: defaultAnalyzerTimeoutSeconds,
			PollSeconds:    defaultAnalyzerPollSeconds,
		},
		Detector: Detector{
			MinConfidence: defaultDetectorMinConfidence,
			MinBoxSize:    defaultDetectorMinBoxSize,
			SampleRate:    defaultDetectorSampleRate,
			MaxDetections: defaultDetectorMaxDetections,
		},
		Scenes: Scenes{
			Threshold: defaultSceneThreshold,
		},
		Tracker: Tracker{
			Strategy:        defaultTrackerStrategy,
			MaxDistance:     defaultTrackerMaxDistance,
			StalenessWindow: defaultTrackerStalenessWindow,
			MinTrackFrames:  defaultTrackerMinTrackFrames,
			TrackBuffer:     defaultTrackerTrackBuffer,
			MatchThreshold:  defaultTrackerMatchThreshold,
		},
		Masks: Masks{
			Enabled:            true,
			MinAreaPixels:      defaultMaskMinAreaPixels,
			StabilityThreshold: defaultMaskStabilityThreshold,
			SampleRate:         defaultMaskSampleRate,
		},
		Stages: Stages{
			SemanticTimeout:  defaultSemanticTimeout,
			SceneTimeout:     defaultSceneTimeout,
			DetectionTimeout: defaultDetectionTimeout,
			TrackingTimeout:  defaultTrackingTimeout,
			MaskTimeout:      defaultMaskTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
