// Package config loads, validates, and normalizes framesight configuration.
//
// Configuration lives in a TOML file resolved from an explicit path, the
// default user config location, or a project-local framesight.toml. Defaults
// cover every key so a missing file is not an error; validation rejects
// values the pipeline cannot run with.
package config
