package diagram

import "github.com/matzehuels/canvaskit/pkg/errors"

// Zoom presets are 1-based. Preset i scales by (i*25+50)/100, so the table
// runs 75%, 100%, 125%, 150%, 175%.
const (
	MinZoomPreset     = 1
	MaxZoomPreset     = 5
	DefaultZoomPreset = 2
)

// dragMargins is the width of the connect band per zoom preset.
var dragMargins = [MaxZoomPreset]float64{4, 6, 8, 10, 12}

// ZoomFactor returns the scale for a zoom preset.
func ZoomFactor(preset int) (float64, error) {
	if preset < MinZoomPreset || preset > MaxZoomPreset {
		return 0, errors.New(errors.ErrCodeInvalidInput, "zoom preset %d out of range [%d, %d]", preset, MinZoomPreset, MaxZoomPreset)
	}
	return float64(preset*25+50) / 100, nil
}

// DragMargin returns the connect band width for a zoom preset. Out of range
// presets are clamped.
func DragMargin(preset int) float64 {
	switch {
	case preset < MinZoomPreset:
		preset = MinZoomPreset
	case preset > MaxZoomPreset:
		preset = MaxZoomPreset
	}
	return dragMargins[preset-1]
}
