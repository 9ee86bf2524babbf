package effects

import (
	"context"
	"image"
	"image/color"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type CameraShake struct {
	alloc Allocator
}

func NewCameraShake(alloc Allocator) *CameraShake {
	return &CameraShake{alloc: alloc}
}

func (s *CameraShake) Name() string {
	return "shake.camera"
}

func (s *CameraShake) Category() string {
	return CategoryShake
}

func (s *CameraShake) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Shake.Camera.Enabled
}

func (s *CameraShake) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	intensity := cfg.Shake.Camera.Intensity
	dx := rng.Intn(2*intensity+1) - intensity
	dy := rng.Intn(2*intensity+1) - intensity

	return translate(s.alloc, input, dx, dy)
}

// translate shifts the image by (dx,dy), replicating border rows and
// columns into the uncovered band so no black frame appears.
func translate(alloc Allocator, input *safe.Mat, dx, dy int) (*safe.Mat, error) {
	matrix := translationMatrix(dx, dy)
	defer matrix.Close()

	dst, err := workingMat(alloc, input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, err
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	size := image.Point{X: input.Cols(), Y: input.Rows()}
	gocv.WarpAffineWithParams(srcMat, &dstMat, matrix, size, gocv.InterpolationLinear, gocv.BorderReplicate, color.RGBA{})

	return dst, nil
}
