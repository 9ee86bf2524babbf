package effects

import (
	"context"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type ZoomMotion struct {
	alloc Allocator
}

func NewZoomMotion(alloc Allocator) *ZoomMotion {
	return &ZoomMotion{alloc: alloc}
}

func (z *ZoomMotion) Name() string {
	return "motion.zoom"
}

func (z *ZoomMotion) Category() string {
	return CategoryMotion
}

func (z *ZoomMotion) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Motion.Zoom.Enabled
}

// Apply layers progressively stronger center zooms of the source over
// the accumulating result. Each layer i is scaled by 1+i/(intensity*10),
// center cropped back to the frame and blended in with weight 1/(i+1),
// so later layers fade instead of dominating.
func (z *ZoomMotion) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	intensity := cfg.Motion.Zoom.Intensity
	rows := input.Rows()
	cols := input.Cols()

	result, err := workingCopy(z.alloc, input)
	if err != nil {
		return nil, err
	}

	for i := 1; i <= intensity; i++ {
		select {
		case <-ctx.Done():
			releaseMat(z.alloc, result)
			return nil, ctx.Err()
		default:
		}

		scale := 1.0 + float64(i)/(float64(intensity)*10.0)
		scaledWidth := int(float64(cols) * scale)
		scaledHeight := int(float64(rows) * scale)

		scaled, err := conversion.ResizeMat(input, scaledWidth, scaledHeight, gocv.InterpolationLinear)
		if err != nil {
			releaseMat(z.alloc, result)
			return nil, err
		}

		cropX := (scaledWidth - cols) / 2
		cropY := (scaledHeight - rows) / 2
		cropped, err := conversion.CropMat(scaled, cropX, cropY, cols, rows)
		scaled.Close()
		if err != nil {
			releaseMat(z.alloc, result)
			return nil, err
		}

		blended, err := workingMat(z.alloc, rows, cols, input.Type())
		if err != nil {
			cropped.Close()
			releaseMat(z.alloc, result)
			return nil, err
		}

		alpha := 1.0 / float64(i+1)
		resultMat := result.GetMat()
		croppedMat := cropped.GetMat()
		blendedMat := blended.GetMat()
		gocv.AddWeighted(resultMat, 1.0-alpha, croppedMat, alpha, 0, &blendedMat)

		cropped.Close()
		releaseMat(z.alloc, result)
		result = blended
	}

	return result, nil
}
