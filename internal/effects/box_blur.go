package effects

import (
	"context"
	"image"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type BoxBlur struct {
	alloc Allocator
}

func NewBoxBlur(alloc Allocator) *BoxBlur {
	return &BoxBlur{alloc: alloc}
}

func (b *BoxBlur) Name() string {
	return "blur.box"
}

func (b *BoxBlur) Category() string {
	return CategoryBlur
}

func (b *BoxBlur) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Blur.Box.Enabled
}

func (b *BoxBlur) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	k := cfg.Blur.Box.KernelSize

	dst, err := workingMat(b.alloc, input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, err
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	gocv.Blur(srcMat, &dstMat, image.Point{X: k, Y: k})

	return dst, nil
}
