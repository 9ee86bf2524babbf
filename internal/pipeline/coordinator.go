package pipeline

import (
	"context"
	"sync"
	"time"

	"effects-studio/internal/effects"
	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/metrics"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"
	"effects-studio/internal/preview"
)

// PreviewResult carries a rendered preview together with how it was
// produced.
type PreviewResult struct {
	Image       *safe.Mat
	Fingerprint string
	CacheHit    bool
	Elapsed     time.Duration
	Quality     models.QualityMode
}

// Coordinator owns the single source image, the effect chain and the
// preview cache, and serializes access to them. Loading a new source
// drops every cached preview because fingerprints do not encode image
// identity.
type Coordinator struct {
	mu         sync.RWMutex
	repository *models.ImageRepository
	chain      *Chain
	cache      *preview.Cache
	recorder   *metrics.Recorder
	logger     logger.Logger
}

func NewCoordinator(log logger.Logger, recorder *metrics.Recorder, alloc effects.Allocator, cacheCapacity int) *Coordinator {
	return &Coordinator{
		repository: models.NewImageRepository(),
		chain:      NewChain(log, alloc),
		cache:      preview.NewCache(cacheCapacity),
		recorder:   recorder,
		logger:     log,
	}
}

// SetSource replaces the working image and invalidates the cache.
func (c *Coordinator) SetSource(img *models.ImageData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repository.SetSource(img)
	c.cache.Clear()

	c.logger.Info("Coordinator", "source image set", map[string]interface{}{
		"id":       img.ID,
		"width":    img.Width,
		"height":   img.Height,
		"channels": img.Channels,
		"format":   img.Format,
	})
}

// Source returns the current working image, or nil when none is
// loaded. The repository keeps ownership.
func (c *Coordinator) Source() *models.ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repository.Source()
}

// GetPreview renders the configuration against a quality-scaled copy
// of the source, serving repeat requests from the fingerprint cache.
// The caller owns the returned image.
func (c *Coordinator) GetPreview(ctx context.Context, cfg *models.EffectConfig, mode models.QualityMode) (*PreviewResult, error) {
	started := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	source := c.repository.Source()
	if source == nil {
		return nil, apperrors.NewNotFoundError("no source image loaded")
	}

	fingerprint := preview.Fingerprint(cfg, mode)

	if cached, ok := c.cache.Get(fingerprint); ok {
		c.recorder.CacheHit()
		elapsed := time.Since(started)
		c.recorder.PreviewObserved(string(mode), elapsed.Seconds())
		return &PreviewResult{
			Image:       cached,
			Fingerprint: fingerprint,
			CacheHit:    true,
			Elapsed:     elapsed,
			Quality:     mode,
		}, nil
	}
	c.recorder.CacheMiss()

	scaled, err := preview.ScaleForPreview(source.Mat, mode)
	if err != nil {
		return nil, apperrors.NewPipelineError("failed to scale source for preview", err)
	}
	defer scaled.Close()

	rendered, err := c.chain.Run(ctx, scaled, cfg)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(fingerprint, rendered); err != nil {
		c.logger.Warning("Coordinator", "preview not cached", map[string]interface{}{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
	}
	c.recordEffects(cfg)

	elapsed := time.Since(started)
	c.recorder.PreviewObserved(string(mode), elapsed.Seconds())

	return &PreviewResult{
		Image:       rendered,
		Fingerprint: fingerprint,
		CacheHit:    false,
		Elapsed:     elapsed,
		Quality:     mode,
	}, nil
}

// ProcessFull renders the configuration against the source at native
// resolution. Results are not cached; full renders are assumed unique.
func (c *Coordinator) ProcessFull(ctx context.Context, cfg *models.EffectConfig) (*safe.Mat, error) {
	started := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	source := c.repository.Source()
	if source == nil {
		return nil, apperrors.NewNotFoundError("no source image loaded")
	}

	rendered, err := c.chain.Run(ctx, source.Mat, cfg)
	if err != nil {
		return nil, err
	}

	c.recordEffects(cfg)
	c.recorder.PipelineObserved(time.Since(started).Seconds())

	c.logger.Info("Coordinator", "full-resolution render completed", map[string]interface{}{
		"width":       rendered.Cols(),
		"height":      rendered.Rows(),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return rendered, nil
}

// CacheStats reports the preview cache hit and miss counters.
func (c *Coordinator) CacheStats() (hits, misses uint64) {
	return c.cache.Stats()
}

func (c *Coordinator) recordEffects(cfg *models.EffectConfig) {
	for _, unit := range c.chain.units {
		if unit.Enabled(cfg) {
			c.recorder.EffectApplied(unit.Name())
		}
	}
}

// Shutdown releases the source image and the cached previews.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Clear()
	c.repository.Shutdown()
}
