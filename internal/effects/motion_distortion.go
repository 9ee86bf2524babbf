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

type MotionDistortion struct {
	alloc Allocator
}

func NewMotionDistortion(alloc Allocator) *MotionDistortion {
	return &MotionDistortion{alloc: alloc}
}

func (d *MotionDistortion) Name() string {
	return "motion.distortion"
}

func (d *MotionDistortion) Category() string {
	return CategoryMotion
}

func (d *MotionDistortion) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Motion.Distortion.Enabled
}

func (d *MotionDistortion) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	kernel := smearKernel(cfg.Motion.Distortion.Direction, cfg.Motion.Distortion.Intensity)
	defer kernel.Close()

	dst, err := workingMat(d.alloc, input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, err
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	if err := gocv.Filter2D(srcMat, &dstMat, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		releaseMat(d.alloc, dst)
		return nil, fmt.Errorf("failed to convolve smear kernel: %w", err)
	}

	return dst, nil
}
