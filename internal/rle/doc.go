// Package rle implements the run-length codec used to persist binary
// segmentation masks compactly, plus filtering and summary helpers over
// per-frame mask sets.
package rle
