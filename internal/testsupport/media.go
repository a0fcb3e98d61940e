package testsupport

import (
	"context"
	"io"

	"framesight/internal/media"
	"framesight/internal/semantic"
)

// FrameSource is an in-memory frame source for tests.
type FrameSource struct {
	Meta     media.VideoMetadata
	FrameSet []media.Frame

	MetadataErr error
	FramesErr   error
}

// NewFrameSource builds a source whose metadata matches the supplied frames.
func NewFrameSource(fps float64, frames []media.Frame) *FrameSource {
	meta := media.VideoMetadata{FPS: fps, TotalFrames: len(frames), Width: 64, Height: 64}
	if fps > 0 {
		meta.DurationSeconds = float64(len(frames)) / fps
	}
	return &FrameSource{Meta: meta, FrameSet: frames}
}

func (s *FrameSource) Metadata() (media.VideoMetadata, error) {
	return s.Meta, s.MetadataErr
}

func (s *FrameSource) Frames(ctx context.Context) (media.FrameIterator, error) {
	if s.FramesErr != nil {
		return nil, s.FramesErr
	}
	return &sliceIterator{frames: s.FrameSet}, nil
}

type sliceIterator struct {
	frames []media.Frame
	next   int
}

func (it *sliceIterator) Next() (media.Frame, error) {
	if it.next >= len(it.frames) {
		return media.Frame{}, io.EOF
	}
	frame := it.frames[it.next]
	it.next++
	return frame, nil
}

func (it *sliceIterator) Close() error { return nil }

// SolidFrames generates count frames whose rasters are filled with the given
// byte values, one value per frame. A jump in value between consecutive
// frames reads as a scene discontinuity.
func SolidFrames(fps float64, values []byte, rasterSize int) []media.Frame {
	frames := make([]media.Frame, len(values))
	for i, value := range values {
		raster := make([]byte, rasterSize)
		for j := range raster {
			raster[j] = value
		}
		frames[i] = media.Frame{Index: i, Timestamp: float64(i) / fps, Raster: raster}
	}
	return frames
}

// Detector replays scripted detections per frame index.
type Detector struct {
	ByFrame map[int][]media.Detection
	Err     error
	Calls   int
}

func (d *Detector) Detect(ctx context.Context, frame media.Frame) ([]media.Detection, error) {
	d.Calls++
	if d.Err != nil {
		return nil, d.Err
	}
	return d.ByFrame[frame.Index], nil
}

// Analyzer replays a scripted semantic analysis.
type Analyzer struct {
	Analysis *semantic.Analysis
	Err      error
	Calls    int
}

func (a *Analyzer) Analyze(ctx context.Context, videoPath string) (*semantic.Analysis, error) {
	a.Calls++
	if a.Err != nil {
		return nil, a.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.Analysis, nil
}
