package effects

import (
	"context"
	"math"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"
)

type GaussianNoise struct {
	alloc Allocator
}

func NewGaussianNoise(alloc Allocator) *GaussianNoise {
	return &GaussianNoise{alloc: alloc}
}

func (n *GaussianNoise) Name() string {
	return "noise.gaussian"
}

func (n *GaussianNoise) Category() string {
	return CategoryNoise
}

func (n *GaussianNoise) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Noise.Gaussian.Enabled
}

func (n *GaussianNoise) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	dst, err := workingCopy(n.alloc, input)
	if err != nil {
		return nil, err
	}

	data, err := dst.Float32Data()
	if err != nil {
		releaseMat(n.alloc, dst)
		return nil, err
	}

	// The variance parameter is expressed on a 0..1 intensity scale,
	// so the drawn noise is rescaled to the 0..255 working range.
	// Values are left unclipped here.
	sigma := math.Sqrt(cfg.Noise.Gaussian.Variance)
	for i := range data {
		data[i] += float32(rng.NormFloat64() * sigma * 255.0)
	}

	return dst, nil
}
