package effects

import (
	"context"
	"image"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type GaussianBlur struct {
	alloc Allocator
}

func NewGaussianBlur(alloc Allocator) *GaussianBlur {
	return &GaussianBlur{alloc: alloc}
}

func (b *GaussianBlur) Name() string {
	return "blur.gaussian"
}

func (b *GaussianBlur) Category() string {
	return CategoryBlur
}

func (b *GaussianBlur) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Blur.Gaussian.Enabled
}

func (b *GaussianBlur) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	k := cfg.Blur.Gaussian.KernelSize

	dst, err := workingMat(b.alloc, input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, err
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	// Sigma 0 lets OpenCV derive the deviation from the kernel size.
	gocv.GaussianBlur(srcMat, &dstMat, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	return dst, nil
}
