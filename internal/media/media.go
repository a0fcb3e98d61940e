package media

// BBox is an axis-aligned bounding box in pixel coordinates.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal centroid coordinate.
func (b BBox) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical centroid coordinate.
func (b BBox) CenterY() float64 { return b.Y + b.Height/2 }

// Area returns the box area in square pixels.
func (b BBox) Area() float64 { return b.Width * b.Height }

// Frame is one decoded raster handed to pipeline stages. Stages treat the
// raster as read-only; ownership stays with the frame source.
type Frame struct {
	Index     int
	Timestamp float64
	Raster    []byte
}

// Detection is one closed-vocabulary detector hit in one frame. The
// verification matcher sets Verified and MatchedEntityID in place; the
// tracker consumes only verified detections.
type Detection struct {
	FrameIndex      int     `json:"frame_index"`
	ClassLabel      string  `json:"class_label"`
	Confidence      float64 `json:"confidence"`
	BBox            BBox    `json:"bbox"`
	Verified        bool    `json:"verified"`
	MatchedEntityID string  `json:"matched_entity_id,omitempty"`
	MatchedKeyword  string  `json:"matched_keyword,omitempty"`
}

// VideoMetadata describes the source video as reported by the frame source.
type VideoMetadata struct {
	FPS             float64 `json:"fps"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	TotalFrames     int     `json:"total_frames"`
}
