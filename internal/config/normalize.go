package config

import (
	"os"
	"strings"
)

// AnalyzerAPIKeyEnv overrides analyzer.api_key when the config leaves it empty.
const AnalyzerAPIKeyEnv = "FRAMESIGHT_ANALYZER_API_KEY"

// normalize expands path fields and trims string settings so downstream code
// never sees "~" prefixes or stray whitespace.
func (c *Config) normalize() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.CatalogDir, err = expandPath(c.Paths.CatalogDir); err != nil {
		return err
	}

	c.Analyzer.APIKey = strings.TrimSpace(c.Analyzer.APIKey)
	if c.Analyzer.APIKey == "" {
		c.Analyzer.APIKey = strings.TrimSpace(os.Getenv(AnalyzerAPIKeyEnv))
	}
	c.Analyzer.BaseURL = strings.TrimSpace(c.Analyzer.BaseURL)
	c.Analyzer.Model = strings.TrimSpace(c.Analyzer.Model)
	c.Tracker.Strategy = strings.ToLower(strings.TrimSpace(c.Tracker.Strategy))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
