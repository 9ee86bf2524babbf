package preview

import (
	"math"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ScaleForPreview sizes the working copy for the given quality mode.
// The longer edge is clamped to the mode maximum with the other edge
// scaled proportionally and rounded to the nearest pixel. Images that
// already fit are returned as an untouched copy, never upscaled.
// Downscaling uses area averaging, which resists moire on photographs.
// The caller owns the returned Mat.
func ScaleForPreview(src *safe.Mat, mode models.QualityMode) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "preview scaling"); err != nil {
		return nil, err
	}

	maxEdge := mode.MaxEdge()
	rows := src.Rows()
	cols := src.Cols()

	longest := cols
	if rows > cols {
		longest = rows
	}
	if longest <= maxEdge {
		return src.Clone()
	}

	scale := float64(maxEdge) / float64(longest)
	width := int(math.Round(float64(cols) * scale))
	height := int(math.Round(float64(rows) * scale))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return conversion.ResizeMat(src, width, height, gocv.InterpolationArea)
}
