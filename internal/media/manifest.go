package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Manifest is a file-based stand-in for the decode and detection
// collaborators: video metadata, frames, and per-frame detections produced
// by an external extraction step. Rasters are optional base64 payloads; when
// absent, scene segmentation sees a flat discontinuity signal.
type Manifest struct {
	Meta    VideoMetadata   `json:"metadata"`
	Entries []ManifestFrame `json:"frames"`
}

// ManifestFrame is one frame entry in a manifest file.
type ManifestFrame struct {
	Index      int         `json:"index"`
	Timestamp  float64     `json:"timestamp"`
	Raster     string      `json:"raster,omitempty"`
	Detections []Detection `json:"detections,omitempty"`
}

// LoadManifest reads and validates a manifest file. Frames are sorted by
// index; duplicate indices are rejected.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var manifest Manifest
	if err := json.NewDecoder(file).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	sort.Slice(manifest.Entries, func(i, j int) bool {
		return manifest.Entries[i].Index < manifest.Entries[j].Index
	})
	for i := 1; i < len(manifest.Entries); i++ {
		if manifest.Entries[i].Index == manifest.Entries[i-1].Index {
			return nil, fmt.Errorf("manifest: duplicate frame index %d", manifest.Entries[i].Index)
		}
	}
	if manifest.Meta.TotalFrames == 0 {
		manifest.Meta.TotalFrames = len(manifest.Entries)
	}
	return &manifest, nil
}

// Metadata implements FrameSource.
func (m *Manifest) Metadata() (VideoMetadata, error) {
	return m.Meta, nil
}

// Frames implements FrameSource.
func (m *Manifest) Frames(ctx context.Context) (FrameIterator, error) {
	return &manifestIterator{manifest: m}, nil
}

// Detect implements Detector by replaying the manifest's detections.
func (m *Manifest) Detect(ctx context.Context, frame Frame) ([]Detection, error) {
	for _, entry := range m.Entries {
		if entry.Index == frame.Index {
			return entry.Detections, nil
		}
	}
	return nil, nil
}

type manifestIterator struct {
	manifest *Manifest
	next     int
}

func (it *manifestIterator) Next() (Frame, error) {
	if it.next >= len(it.manifest.Entries) {
		return Frame{}, io.EOF
	}
	entry := it.manifest.Entries[it.next]
	it.next++

	frame := Frame{Index: entry.Index, Timestamp: entry.Timestamp}
	if entry.Raster != "" {
		raster, err := base64.StdEncoding.DecodeString(entry.Raster)
		if err != nil {
			return Frame{}, fmt.Errorf("frame %d: decode raster: %w", entry.Index, err)
		}
		frame.Raster = raster
	}
	return frame, nil
}

func (it *manifestIterator) Close() error { return nil }
