// Package media defines the frame, detection, and metadata types shared by
// every pipeline stage, plus the frame source and detector contracts the
// core expects its external collaborators to satisfy.
package media
