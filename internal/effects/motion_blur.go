package effects

import (
	"context"
	"fmt"
	"image"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type MotionBlur struct {
	alloc Allocator
}

func NewMotionBlur(alloc Allocator) *MotionBlur {
	return &MotionBlur{alloc: alloc}
}

func (b *MotionBlur) Name() string {
	return "blur.motion"
}

func (b *MotionBlur) Category() string {
	return CategoryBlur
}

func (b *MotionBlur) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Blur.Motion.Enabled
}

func (b *MotionBlur) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	kernel := lineKernel(cfg.Blur.Motion.Degree, cfg.Blur.Motion.Angle)
	defer kernel.Close()

	dst, err := workingMat(b.alloc, input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, err
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	if err := gocv.Filter2D(srcMat, &dstMat, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		releaseMat(b.alloc, dst)
		return nil, fmt.Errorf("failed to convolve line kernel: %w", err)
	}

	return dst, nil
}
