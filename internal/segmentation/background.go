package segmentation

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	apperrors "effects-studio/internal/errors"
)

// BackgroundMode selects what replaces the removed background.
type BackgroundMode string

const (
	BackgroundTransparent BackgroundMode = "transparent"
	BackgroundWhite       BackgroundMode = "white"
	BackgroundCustom      BackgroundMode = "custom"
)

// Background is a parsed output-background request.
type Background struct {
	Mode  BackgroundMode
	Color color.RGBA
}

// ParseBackground interprets a background specification. An empty
// string or "transparent" keeps the alpha channel, "white" composites
// over white, and "#rrggbb" composites over the given color.
func ParseBackground(spec string) (Background, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", string(BackgroundTransparent):
		return Background{Mode: BackgroundTransparent}, nil
	case string(BackgroundWhite):
		return Background{Mode: BackgroundWhite, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}, nil
	}

	c, err := parseHexColor(spec)
	if err != nil {
		return Background{}, apperrors.NewCompositeError(
			fmt.Sprintf("invalid background specification %q", spec), []error{err},
		).WithDetail("background", spec)
	}
	return Background{Mode: BackgroundCustom, Color: c}, nil
}

func parseHexColor(spec string) (color.RGBA, error) {
	trimmed := strings.TrimSpace(spec)
	if !strings.HasPrefix(trimmed, "#") || len(trimmed) != 7 {
		return color.RGBA{}, fmt.Errorf("expected transparent, white or #rrggbb, got %q", spec)
	}

	value, err := strconv.ParseUint(trimmed[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("not a hex color: %q", spec)
	}

	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 255,
	}, nil
}
