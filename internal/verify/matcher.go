package verify

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"framesight/internal/media"
	"framesight/internal/semantic"
)

// Keywords derives the match vocabulary for one entity: the case-folded,
// trimmed descriptor split on whitespace, keeping tokens longer than two
// runes, plus the folded category when present. The result is
// lexicographically sorted so matching is deterministic across runs.
func Keywords(entity semantic.Entity) []string {
	folder := cases.Fold()
	set := make(map[string]struct{})
	for _, token := range strings.Fields(folder.String(strings.TrimSpace(entity.Descriptor))) {
		if len([]rune(token)) > 2 {
			set[token] = struct{}{}
		}
	}
	if category := strings.TrimSpace(entity.Category); category != "" {
		set[folder.String(category)] = struct{}{}
	}

	keywords := make([]string, 0, len(set))
	for kw := range set {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// Match reconciles the analyzer's free-text entity catalog with the
// detector's closed-vocabulary output. A detection verifies when any entity
// keyword contains, or is contained by, its folded class label. Verified
// detections are returned tagged with the owning entity and the first
// keyword (in sorted order) that matched; unverified detections are dropped.
func Match(entities []semantic.Entity, detections map[int][]media.Detection) map[int][]media.Detection {
	verified := make(map[int][]media.Detection)
	if len(entities) == 0 || len(detections) == 0 {
		return verified
	}

	keywordsByEntity := make([][]string, len(entities))
	for i, entity := range entities {
		keywordsByEntity[i] = Keywords(entity)
	}

	folder := cases.Fold()
	for frame, frameDetections := range detections {
		for _, det := range frameDetections {
			label := folder.String(strings.TrimSpace(det.ClassLabel))
			if label == "" {
				continue
			}
			entityID, keyword, ok := matchLabel(label, entities, keywordsByEntity)
			if !ok {
				continue
			}
			det.Verified = true
			det.MatchedEntityID = entityID
			det.MatchedKeyword = keyword
			det.FrameIndex = frame
			verified[frame] = append(verified[frame], det)
		}
	}
	return verified
}

func matchLabel(label string, entities []semantic.Entity, keywordsByEntity [][]string) (string, string, bool) {
	for i, entity := range entities {
		for _, keyword := range keywordsByEntity[i] {
			if strings.Contains(keyword, label) || strings.Contains(label, keyword) {
				return entity.ID, keyword, true
			}
		}
	}
	return "", "", false
}

// FilterByClass keeps only detections whose class label is in the allow list.
func FilterByClass(detections map[int][]media.Detection, classes []string) map[int][]media.Detection {
	allowed := make(map[string]struct{}, len(classes))
	for _, class := range classes {
		allowed[class] = struct{}{}
	}
	filtered := make(map[int][]media.Detection, len(detections))
	for frame, frameDetections := range detections {
		kept := make([]media.Detection, 0, len(frameDetections))
		for _, det := range frameDetections {
			if _, ok := allowed[det.ClassLabel]; ok {
				kept = append(kept, det)
			}
		}
		filtered[frame] = kept
	}
	return filtered
}
