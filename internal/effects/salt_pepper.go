package effects

import (
	"context"
	"math"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"
)

type SaltPepperNoise struct {
	alloc Allocator
}

func NewSaltPepperNoise(alloc Allocator) *SaltPepperNoise {
	return &SaltPepperNoise{alloc: alloc}
}

func (n *SaltPepperNoise) Name() string {
	return "noise.saltPepper"
}

func (n *SaltPepperNoise) Category() string {
	return CategoryNoise
}

func (n *SaltPepperNoise) Enabled(cfg *models.EffectConfig) bool {
	return cfg.Noise.SaltPepper.Enabled
}

func (n *SaltPepperNoise) Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	dst, err := workingCopy(n.alloc, input)
	if err != nil {
		return nil, err
	}

	rows := dst.Rows()
	cols := dst.Cols()
	channels := dst.Channels()

	// Half the amount goes to salt, half to pepper, counted over all
	// elements. Each hit whites or blacks out a full pixel.
	total := float64(rows * cols * channels)
	count := int(math.Ceil(cfg.Noise.SaltPepper.Amount * total * 0.5))

	if err := n.speckle(dst, rng, count, 255.0); err != nil {
		releaseMat(n.alloc, dst)
		return nil, err
	}
	if err := n.speckle(dst, rng, count, 0.0); err != nil {
		releaseMat(n.alloc, dst)
		return nil, err
	}

	return dst, nil
}

func (n *SaltPepperNoise) speckle(dst *safe.Mat, rng *rand.Rand, count int, value float32) error {
	rowSpan := dst.Rows() - 1
	if rowSpan < 1 {
		rowSpan = 1
	}
	colSpan := dst.Cols() - 1
	if colSpan < 1 {
		colSpan = 1
	}
	channels := dst.Channels()

	for i := 0; i < count; i++ {
		y := rng.Intn(rowSpan)
		x := rng.Intn(colSpan)
		for c := 0; c < channels; c++ {
			if err := dst.SetFloatAt3(y, x, c, value); err != nil {
				return err
			}
		}
	}

	return nil
}
