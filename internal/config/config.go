package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir    string `toml:"work_dir"`
	LogDir     string `toml:"log_dir"`
	CatalogDir string `toml:"catalog_dir"`
}

// Analyzer contains connection settings for the semantic video analysis service.
type Analyzer struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PollSeconds    int    `toml:"poll_seconds"`
}

// Detector contains options applied to closed-vocabulary detector output.
type Detector struct {
	MinConfidence float64 `toml:"min_confidence"`
	MinBoxSize    float64 `toml:"min_box_size"`
	SampleRate    int     `toml:"sample_rate"`
	MaxDetections int     `toml:"max_detections"`
}

// Scenes contains scene segmentation settings.
type Scenes struct {
	Threshold float64 `toml:"threshold"`
}

// Tracker strategy selector values.
const (
	TrackerStrategyCentroid = "centroid"
	TrackerStrategyExternal = "external"
)

// Tracker contains object tracking settings.
type Tracker struct {
	Strategy        string  `toml:"strategy"`
	MaxDistance     float64 `toml:"max_distance"`
	StalenessWindow int     `toml:"staleness_window"`
	MinTrackFrames  int     `toml:"min_track_frames"`
	TrackBuffer     int     `toml:"track_buffer"`
	MatchThreshold  float64 `toml:"match_threshold"`
}

// Masks contains segmentation mask settings.
type Masks struct {
	Enabled            bool    `toml:"enabled"`
	MinAreaPixels      int     `toml:"min_area_pixels"`
	StabilityThreshold float64 `toml:"stability_threshold"`
	SampleRate         int     `toml:"sample_rate"`
}

// Stages contains per-stage timeout budgets in seconds. A stage that exceeds
// its budget is marked failed and the pipeline consolidates without it.
type Stages struct {
	SemanticTimeout  int `toml:"semantic_timeout"`
	SceneTimeout     int `toml:"scene_timeout"`
	DetectionTimeout int `toml:"detection_timeout"`
	TrackingTimeout  int `toml:"tracking_timeout"`
	MaskTimeout      int `toml:"mask_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for framesight.
//
// Configuration sections by subsystem:
//   - Paths: working, log, and catalog directories
//   - Analyzer: semantic video analysis service connection
//   - Detector: closed-vocabulary detector output filters
//   - Scenes: scene segmentation threshold
//   - Tracker: tracking strategy selection and association limits
//   - Masks: segmentation mask generation filters
//   - Stages: per-stage timeout budgets
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analyzer Analyzer `toml:"analyzer"`
	Detector Detector `toml:"detector"`
	Scenes   Scenes   `toml:"scenes"`
	Tracker  Tracker  `toml:"tracker"`
	Masks    Masks    `toml:"masks"`
	Stages   Stages   `toml:"stages"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/framesight/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("framesight.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.CatalogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
