package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type wireAppearance struct {
	StartSecond float64 `json:"start_second"`
	EndSecond   float64 `json:"end_second"`
	Activity    string  `json:"activity"`
}

type wirePerson struct {
	PersonID    int              `json:"person_id"`
	Description string           `json:"description"`
	Appearances []wireAppearance `json:"appearances"`
}

type wireProduct struct {
	ProductID        int     `json:"product_id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	UsedByPersonID   int     `json:"used_by_person_id"`
	FirstUseSecond   float64 `json:"first_use_second"`
	LastUseSecond    float64 `json:"last_use_second"`
	UsageDescription string  `json:"usage_description"`
}

type wireAnalysis struct {
	TotalUniquePeople    int          `json:"total_unique_people"`
	People               []wirePerson `json:"people"`
	Products             []wireProduct `json:"products"`
	Timeline             []Event      `json:"timeline"`
	VideoSummary         string       `json:"video_summary"`
	TotalDurationSeconds float64      `json:"total_duration_seconds"`
	Confidence           string       `json:"confidence"`
}

// ParseAnalysis extracts the JSON object from raw model output and converts
// it to the pipeline's analysis form. Models wrap payloads in code fences or
// prose often enough that a bare json.Unmarshal is not sufficient.
func ParseAnalysis(raw string) (*Analysis, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var wire wireAnalysis
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	analysis := &Analysis{
		Timeline:          wire.Timeline,
		Summary:           strings.TrimSpace(wire.VideoSummary),
		TotalUniquePeople: wire.TotalUniquePeople,
		DurationSeconds:   wire.TotalDurationSeconds,
		Confidence:        strings.ToLower(strings.TrimSpace(wire.Confidence)),
	}

	for _, person := range wire.People {
		entity := Entity{
			ID:         fmt.Sprintf("person-%d", person.PersonID),
			Kind:       KindPerson,
			Descriptor: strings.TrimSpace(person.Description),
		}
		for _, app := range person.Appearances {
			entity.Appearances = append(entity.Appearances, Interval{
				StartSecond: app.StartSecond,
				EndSecond:   app.EndSecond,
			})
			if entity.Detail == "" {
				entity.Detail = strings.TrimSpace(app.Activity)
			}
		}
		analysis.People = append(analysis.People, entity)
	}

	for _, product := range wire.Products {
		entity := Entity{
			ID:         fmt.Sprintf("product-%d", product.ProductID),
			Kind:       KindProduct,
			Descriptor: strings.TrimSpace(product.Name),
			Category:   strings.TrimSpace(product.Category),
			Detail:     strings.TrimSpace(product.UsageDescription),
		}
		if product.UsedByPersonID > 0 {
			entity.UsedBy = fmt.Sprintf("person-%d", product.UsedByPersonID)
		}
		if product.LastUseSecond >= product.FirstUseSecond && product.LastUseSecond > 0 {
			entity.Appearances = []Interval{{
				StartSecond: product.FirstUseSecond,
				EndSecond:   product.LastUseSecond,
			}}
		}
		analysis.Products = append(analysis.Products, entity)
	}

	if analysis.TotalUniquePeople == 0 {
		analysis.TotalUniquePeople = len(analysis.People)
	}
	return analysis, nil
}

// ExtractJSON returns the first top-level JSON object embedded in text,
// honoring string escapes so braces inside values do not confuse the scan.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errors.New("no JSON object in response")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errors.New("unterminated JSON object in response")
}
