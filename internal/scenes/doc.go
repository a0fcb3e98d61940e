// Package scenes partitions a frame sequence into contiguous scenes using a
// per-frame discontinuity signal with a one-second minimum scene length.
package scenes
