package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateStationName validates a station display name.
//
// The validation rules are intentionally conservative:
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
//
// Empty names are allowed; unnamed stations are common in imported maps.
func ValidateStationName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "station name too long (max 256 characters)")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "station name contains invalid control characters")
		}
	}

	return nil
}

// lineColorRegex matches CSS-style hex colors, with or without alpha.
var lineColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateLineColor validates a line color as a hex color string.
func ValidateLineColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "line color cannot be empty")
	}

	if !strings.HasPrefix(color, "#") {
		return New(ErrCodeInvalidColor, "line color must be a hex color starting with #")
	}

	if !lineColorRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid hex color: %q", color)
	}

	return nil
}

// ValidateGridBounds validates the dimensions of the layout grid.
// Both dimensions must be positive and small enough that the router's
// occupancy map stays practical.
func ValidateGridBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidSettings, "grid dimensions must be positive, got %dx%d", width, height)
	}

	const maxDimension = 10_000
	if width > maxDimension || height > maxDimension {
		return New(ErrCodeInvalidSettings, "grid dimensions too large (max %d), got %dx%d", maxDimension, width, height)
	}

	return nil
}
