package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxLabelLength bounds node and edge labels.
const maxLabelLength = 1024

// ValidateLabel validates a node or edge label.
//
// Labels may be empty (exporters fall back to the id) but must not contain
// control characters other than newline and tab, and must stay under
// maxLabelLength bytes.
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

// colorRegex matches #rgb, #rrggbb and #rrggbbaa hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a color string.
// Hex colors and plain CSS color keywords ("white", "transparent") are accepted.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidInput, "color cannot be empty")
	}

	if strings.HasPrefix(color, "#") {
		if !colorRegex.MatchString(color) {
			return New(ErrCodeInvalidInput, "invalid hex color: %q", color)
		}
		return nil
	}

	for _, r := range color {
		if !unicode.IsLetter(r) {
			return New(ErrCodeInvalidInput, "invalid color keyword: %q", color)
		}
	}

	return nil
}

// ValidateID validates an entity identifier coming from an import payload.
// Ids are interpolated into DOT, Mermaid and PlantUML output, so whitespace
// and quotes are rejected.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if strings.ContainsAny(id, "\"' \t\r\n") {
		return New(ErrCodeInvalidInput, "id contains invalid characters: %q", id)
	}

	return nil
}
