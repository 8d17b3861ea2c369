package core

import (
	"strings"
	"unicode"
)

// Match scores, highest first. The first rule that matches wins.
const (
	ScoreExact     = 1.0
	ScorePrefix    = 0.9
	ScoreWord      = 0.85
	ScoreSubstring = 0.7
)

// ConfidenceLevel is a display band for a detection score.
type ConfidenceLevel struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Detect guesses a header for every semantic field.
//
// Each field is resolved independently: for every header (in order) and every
// pattern of the field (in catalog order), the header is scored with
// [MatchScore] and only a strictly greater score replaces the current winner.
// A field with no candidate scoring above zero is left out of both maps.
// One header may win more than one field.
func Detect(headers []string) Detection {
	det := Detection{
		Mapping:    make(Mapping),
		Confidence: make(Confidence),
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	for _, spec := range fieldCatalog {
		var best float64
		for i, header := range headers {
			for _, pattern := range spec.Patterns {
				score := MatchScore(normalized[i], pattern)
				if score > best {
					best = score
					det.Mapping[spec.Key] = header
					det.Confidence[spec.Key] = score
				}
			}
		}
	}

	return det
}

// MatchScore scores a normalized header against a lowercase pattern.
func MatchScore(header, pattern string) float64 {
	if header == "" || pattern == "" {
		return 0
	}
	if header == pattern {
		return ScoreExact
	}
	if strings.HasPrefix(header, pattern) {
		return ScorePrefix
	}
	for _, word := range headerWords(header) {
		if word == pattern {
			return ScoreWord
		}
	}
	if strings.Contains(header, pattern) {
		return ScoreSubstring
	}
	return 0
}

// Level returns the display band for a score.
func Level(score float64) ConfidenceLevel {
	switch {
	case score >= 0.9:
		return ConfidenceLevel{Label: "High", Color: "green"}
	case score >= 0.7:
		return ConfidenceLevel{Label: "Medium", Color: "yellow"}
	case score > 0:
		return ConfidenceLevel{Label: "Low", Color: "orange"}
	default:
		return ConfidenceLevel{Label: "None", Color: "gray"}
	}
}

// IsComplete reports whether every required field maps to a non-empty header.
func IsComplete(m Mapping, required []Field) bool {
	for _, f := range required {
		if m.Header(f) == "" {
			return false
		}
	}
	return true
}

// MissingFields returns the required fields m leaves unset, in catalog order.
func MissingFields(m Mapping, required []Field) []Field {
	var missing []Field
	for _, f := range required {
		if m.Header(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// headerWords splits on runs of whitespace, underscores and hyphens.
func headerWords(h string) []string {
	return strings.FieldsFunc(h, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
}
