package semantic

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// EntityKind distinguishes the two entity classes the analyzer reports.
type EntityKind string

const (
	KindPerson  EntityKind = "person"
	KindProduct EntityKind = "product"
)

// Interval is one contiguous appearance window in seconds.
type Interval struct {
	StartSecond float64 `json:"start_second"`
	EndSecond   float64 `json:"end_second"`
}

// Entity is one person or product the analyzer claims appears in the video.
// Entities are immutable once produced; downstream stages only read them.
type Entity struct {
	ID          string     `json:"id"`
	Kind        EntityKind `json:"kind"`
	Descriptor  string     `json:"descriptor"`
	Category    string     `json:"category,omitempty"`
	UsedBy      string     `json:"used_by,omitempty"`
	Detail      string     `json:"detail,omitempty"`
	Appearances []Interval `json:"appearances,omitempty"`
}

// Event is one timeline entry from the analyzer.
type Event struct {
	Second           float64 `json:"second"`
	Frame            int     `json:"frame"`
	Description      string  `json:"event"`
	PeopleInvolved   []int   `json:"people_involved,omitempty"`
	ProductsInvolved []int   `json:"products_involved,omitempty"`
}

// Analysis is the whole-video result from the semantic analyzer.
type Analysis struct {
	People            []Entity `json:"people"`
	Products          []Entity `json:"products"`
	Timeline          []Event  `json:"timeline"`
	Summary           string   `json:"summary"`
	TotalUniquePeople int      `json:"total_unique_people"`
	DurationSeconds   float64  `json:"duration_seconds"`
	Confidence        string   `json:"confidence,omitempty"`
}

// Entities returns people and products as one list, products first since
// they drive verification matching.
func (a *Analysis) Entities() []Entity {
	if a == nil {
		return nil
	}
	out := make([]Entity, 0, len(a.Products)+len(a.People))
	out = append(out, a.Products...)
	out = append(out, a.People...)
	return out
}

// KeyEvents extracts up to limit unique timeline events formatted for the
// report summary, in timeline order.
func (a *Analysis) KeyEvents(limit int) []string {
	if a == nil || limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	events := make([]string, 0, limit)
	sorted := append([]Event(nil), a.Timeline...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Second < sorted[j].Second })
	for _, event := range sorted {
		desc := strings.TrimSpace(event.Description)
		if desc == "" {
			continue
		}
		formatted := fmt.Sprintf("%.1fs: %s", event.Second, desc)
		if _, dup := seen[formatted]; dup {
			continue
		}
		seen[formatted] = struct{}{}
		events = append(events, formatted)
		if len(events) == limit {
			break
		}
	}
	return events
}

// Analyzer is the whole-video semantic analysis contract. Implementations
// must be callable exactly once per video and must not retain state between
// calls; the pipeline never reuses an upload across runs.
type Analyzer interface {
	Analyze(ctx context.Context, videoPath string) (*Analysis, error)
}
