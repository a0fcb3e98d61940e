package track

import "framesight/internal/services"

// ExternalConfig carries the knobs a library-backed tracker consumes. The
// buffer is how many frames an unmatched identity is kept alive before the
// implementation discards it; the match threshold is the minimum association
// score for continuing a track.
type ExternalConfig struct {
	TrackBuffer    int
	MatchThreshold float64
	FrameRate      float64
}

// externalFactory is the registered library-backed constructor, if any.
var externalFactory func(ExternalConfig) Strategy

// RegisterExternal installs the constructor used when the external strategy
// is selected. Intended to be called from an init function in the package
// that binds the library.
func RegisterExternal(factory func(ExternalConfig) Strategy) {
	externalFactory = factory
}

// NewExternal builds the library-backed tracker. When no implementation has
// been registered the caller gets ErrUnavailable and is expected to fall back
// to the centroid strategy.
func NewExternal(cfg ExternalConfig) (Strategy, error) {
	if externalFactory == nil {
		return nil, services.Wrap(services.ErrUnavailable, "tracking", "new-external",
			"no library-backed tracker registered", nil)
	}
	return externalFactory(cfg), nil
}
