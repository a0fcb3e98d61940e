package media

import (
	"context"
	"io"
)

// FrameSource yields the ordered, finite frame sequence of one video.
// Implementations live outside the core (container decoding is a
// collaborator concern); the pipeline only consumes this contract.
type FrameSource interface {
	// Metadata reports fps, duration, and dimensions before iteration.
	Metadata() (VideoMetadata, error)
	// Frames opens a frame iterator. Sources are not required to be
	// restartable; the pipeline makes a single pass.
	Frames(ctx context.Context) (FrameIterator, error)
}

// FrameIterator walks frames in strictly increasing index order.
type FrameIterator interface {
	// Next returns the next frame, or io.EOF once the sequence ends.
	Next() (Frame, error)
	Close() error
}

// Detector produces closed-vocabulary detections for a single frame.
type Detector interface {
	Detect(ctx context.Context, frame Frame) ([]Detection, error)
}

// CollectFrames drains an iterator into memory. The pipeline buffers the
// full sequence this way because detection, segmentation, and masking all
// revisit frames by index; sources are sized for short clips.
func CollectFrames(ctx context.Context, source FrameSource) ([]Frame, error) {
	it, err := source.Frames(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var frames []Frame
	for {
		frame, err := it.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// FilterDetections drops detections below the confidence floor or smaller
// than the minimum box size on either side.
func FilterDetections(detections []Detection, minConfidence, minBoxSize float64) []Detection {
	kept := make([]Detection, 0, len(detections))
	for _, det := range detections {
		if det.Confidence < minConfidence {
			continue
		}
		if det.BBox.Width < minBoxSize || det.BBox.Height < minBoxSize {
			continue
		}
		kept = append(kept, det)
	}
	return kept
}
