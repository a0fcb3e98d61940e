// Package pipeline orchestrates the analysis stages for one video: semantic
// analysis and the frame path run concurrently, join, then verification,
// tracking, and optional mask generation. Failures degrade per stage; the
// consolidated report is always returned.
package pipeline
