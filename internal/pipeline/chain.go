package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"effects-studio/internal/effects"
	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"
)

// Chain executes the fixed effect sequence over a wide-float working
// copy. The input is widened to 32-bit float in the 0..255 scale
// before the first effect and narrowed back to 8-bit exactly once at
// the end, so intermediate results never clip. Working Mats come from
// the allocator when one is supplied, so repeated runs over same-sized
// frames reuse buffers instead of reallocating.
type Chain struct {
	units  []effects.Unit
	alloc  effects.Allocator
	logger logger.Logger
}

func NewChain(log logger.Logger, alloc effects.Allocator) *Chain {
	return &Chain{
		units:  effects.Units(alloc),
		alloc:  alloc,
		logger: log,
	}
}

func (c *Chain) UnitNames() []string {
	names := make([]string, len(c.units))
	for i, u := range c.units {
		names[i] = u.Name()
	}
	return names
}

// Run validates the configuration and applies every enabled effect in
// order. The caller keeps ownership of input and receives a new Mat.
// A configuration with nothing enabled returns an untouched copy.
func (c *Chain) Run(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig) (*safe.Mat, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := safe.ValidateMatForOperation(input, "pipeline execution"); err != nil {
		return nil, apperrors.NewPipelineError("input rejected", err)
	}

	if !cfg.AnyEnabled() {
		return input.Clone()
	}

	working, err := conversion.WidenToFloat(input)
	if err != nil {
		return nil, apperrors.NewPipelineError("failed to widen input to float", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	current := working
	for _, unit := range c.units {
		select {
		case <-ctx.Done():
			c.release(current)
			return nil, ctx.Err()
		default:
		}

		if !unit.Enabled(cfg) {
			continue
		}

		started := time.Now()
		result, err := unit.Apply(ctx, current, cfg, rng)
		if err != nil {
			c.release(current)
			if apperrors.IsType(err, apperrors.TypeInsufficientResources) {
				return nil, err
			}
			return nil, apperrors.NewPipelineError(
				fmt.Sprintf("effect %s failed", unit.Name()), err,
			).WithDetail("effect", unit.Name())
		}

		c.release(current)
		current = result

		c.logger.Debug("Pipeline", "effect applied", map[string]interface{}{
			"effect":      unit.Name(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
	}

	output, err := conversion.NarrowToUint8(current)
	c.release(current)
	if err != nil {
		return nil, apperrors.NewPipelineError("failed to narrow output to 8-bit", err)
	}

	return output, nil
}

func (c *Chain) release(mat *safe.Mat) {
	if c.alloc != nil {
		c.alloc.ReleaseMat(mat)
		return
	}
	mat.Close()
}
