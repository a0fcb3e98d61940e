// Package track maintains object identities across frames. Two strategies
// share one contract: a library-backed tracker registered at startup, and a
// centroid fallback that matches each detection to the nearest recent track.
// Track ids are monotonic and never reused within a run.
package track
