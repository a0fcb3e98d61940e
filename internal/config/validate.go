package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateScenes(); err != nil {
		return err
	}
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateMasks(); err != nil {
		return err
	}
	if err := c.validateStages(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetector() error {
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("detector.min_confidence must be between 0 and 1")
	}
	if c.Detector.MinBoxSize < 0 {
		return errors.New("detector.min_box_size must not be negative")
	}
	if c.Detector.SampleRate < 1 {
		return errors.New("detector.sample_rate must be at least 1")
	}
	if c.Detector.MaxDetections < 1 {
		return errors.New("detector.max_detections must be at least 1")
	}
	return nil
}

func (c *Config) validateScenes() error {
	if c.Scenes.Threshold < 0 || c.Scenes.Threshold > 1 {
		return errors.New("scenes.threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateTracker() error {
	switch c.Tracker.Strategy {
	case TrackerStrategyCentroid, TrackerStrategyExternal:
	default:
		return fmt.Errorf("tracker.strategy must be %q or %q", TrackerStrategyCentroid, TrackerStrategyExternal)
	}
	if c.Tracker.MaxDistance <= 0 {
		return errors.New("tracker.max_distance must be positive")
	}
	if c.Tracker.StalenessWindow < 1 {
		return errors.New("tracker.staleness_window must be at least 1")
	}
	if c.Tracker.MinTrackFrames < 1 {
		return errors.New("tracker.min_track_frames must be at least 1")
	}
	if c.Tracker.TrackBuffer < 1 {
		return errors.New("tracker.track_buffer must be at least 1")
	}
	if c.Tracker.MatchThreshold < 0 || c.Tracker.MatchThreshold > 1 {
		return errors.New("tracker.match_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateMasks() error {
	if c.Masks.MinAreaPixels < 0 {
		return errors.New("masks.min_area_pixels must not be negative")
	}
	if c.Masks.StabilityThreshold < 0 || c.Masks.StabilityThreshold > 1 {
		return errors.New("masks.stability_threshold must be between 0 and 1")
	}
	if c.Masks.SampleRate < 1 {
		return errors.New("masks.sample_rate must be at least 1")
	}
	return nil
}

func (c *Config) validateStages() error {
	return ensurePositiveMap(map[string]int{
		"stages.semantic_timeout":  c.Stages.SemanticTimeout,
		"stages.scene_timeout":     c.Stages.SceneTimeout,
		"stages.detection_timeout": c.Stages.DetectionTimeout,
		"stages.tracking_timeout":  c.Stages.TrackingTimeout,
		"stages.mask_timeout":      c.Stages.MaskTimeout,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q", "console", "json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
