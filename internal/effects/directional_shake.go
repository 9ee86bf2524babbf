package effects

import (
	"context"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"
)

type DirectionalShake struct {
	alloc Allocator
}

func NewDirectionalShake(alloc Allocator) *DirectionalShake {
	return &DirectionalShake{alloc: alloc}
}

func (s *DirectionalShake) Name() string {
	return "shake.directional"
}

func (s *DirectionalShake) Category() string {
	return CategoryShake
}

func (s *DirectionalShake) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Shake.Directional.Enabled
}

func (s *DirectionalShake) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	intensity := cfg.Shake.Directional.Intensity
	direction := cfg.Shake.Directional.Direction

	dx, dy := 0, 0
	if direction == models.ShakeHorizontal || direction == models.ShakeBoth {
		dx = rng.Intn(2*intensity+1) - intensity
	}
	if direction == models.ShakeVertical || direction == models.ShakeBoth {
		dy = rng.Intn(2*intensity+1) - intensity
	}

	return translate(s.alloc, input, dx, dy)
}
