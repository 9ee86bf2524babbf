package pipeline

import (
	"bytes"
	"context"
	"testing"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/metrics"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func newCoordinator() *Coordinator {
	return NewCoordinator(logger.NewSilent(), metrics.NewRecorder(), nil, 8)
}

func loadSource(t *testing.T, c *Coordinator, width, height int) {
	t.Helper()

	mat := newSourceMat(t, width, height)
	c.SetSource(models.NewImageData(mat, "png", "test.png"))
}

func TestCoordinatorRequiresSource(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()

	_, err := c.GetPreview(context.Background(), models.DefaultEffectConfig(), models.QualityFast)
	if err == nil {
		t.Fatal("preview without a source succeeded")
	}
	if !apperrors.IsType(err, apperrors.TypeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}

	if _, err := c.ProcessFull(context.Background(), models.DefaultEffectConfig()); err == nil {
		t.Error("full render without a source succeeded")
	}
}

func TestCoordinatorPreviewCachesByFingerprint(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()
	loadSource(t, c, 640, 480)

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Box.Enabled = true

	first, err := c.GetPreview(context.Background(), cfg, models.QualityFast)
	if err != nil {
		t.Fatalf("first preview failed: %v", err)
	}
	defer first.Image.Close()

	if first.CacheHit {
		t.Error("first render reported a cache hit")
	}

	second, err := c.GetPreview(context.Background(), cfg, models.QualityFast)
	if err != nil {
		t.Fatalf("second preview failed: %v", err)
	}
	defer second.Image.Close()

	if !second.CacheHit {
		t.Error("repeat render missed the cache")
	}
	if first.Fingerprint != second.Fingerprint {
		t.Errorf("fingerprints diverged: %s vs %s", first.Fingerprint, second.Fingerprint)
	}

	hits, misses := c.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache stats hits=%d misses=%d, expected 1/1", hits, misses)
	}
}

func TestCoordinatorPreviewScalesToQualityMode(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()
	loadSource(t, c, 640, 480)

	result, err := c.GetPreview(context.Background(), models.DefaultEffectConfig(), models.QualityFast)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	defer result.Image.Close()

	if result.Image.Cols() != 300 || result.Image.Rows() != 225 {
		t.Errorf("preview sized %dx%d, expected 300x225",
			result.Image.Cols(), result.Image.Rows())
	}
}

func TestCoordinatorNewSourceInvalidatesCache(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()
	loadSource(t, c, 320, 240)

	cfg := models.DefaultEffectConfig()

	first, err := c.GetPreview(context.Background(), cfg, models.QualityFast)
	if err != nil {
		t.Fatalf("first preview failed: %v", err)
	}
	first.Image.Close()

	loadSource(t, c, 320, 240)

	second, err := c.GetPreview(context.Background(), cfg, models.QualityFast)
	if err != nil {
		t.Fatalf("preview after reload failed: %v", err)
	}
	defer second.Image.Close()

	if second.CacheHit {
		t.Error("cache entry survived a source image change")
	}
}

func TestCoordinatorFullRenderKeepsResolution(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()
	loadSource(t, c, 640, 480)

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Gaussian.Enabled = true

	out, err := c.ProcessFull(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ProcessFull failed: %v", err)
	}
	defer out.Close()

	if out.Cols() != 640 || out.Rows() != 480 {
		t.Errorf("full render sized %dx%d, expected 640x480", out.Cols(), out.Rows())
	}
}

func TestCoordinatorBalancedGaussianScenario(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()

	// 500x375 sits exactly on the balanced-mode edge, so the render
	// keeps the source resolution.
	raw := gocv.NewMatWithSize(375, 500, gocv.MatTypeCV8UC3)
	for row := 0; row < raw.Rows(); row++ {
		for col := 0; col < raw.Cols()*raw.Channels(); col++ {
			raw.SetUCharAt(row, col, uint8((row+col)%256))
		}
	}
	defer raw.Close()

	source, err := safe.NewMatFromMat(raw)
	if err != nil {
		t.Fatalf("NewMatFromMat failed: %v", err)
	}
	c.SetSource(models.NewImageData(source, "png", "gradient.png"))

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Gaussian.Enabled = true
	cfg.Blur.Gaussian.KernelSize = 5

	first, err := c.GetPreview(context.Background(), cfg, models.QualityBalanced)
	if err != nil {
		t.Fatalf("first preview failed: %v", err)
	}
	defer first.Image.Close()

	if first.Image.Cols() != 500 || first.Image.Rows() != 375 {
		t.Errorf("render sized %dx%d, expected 500x375",
			first.Image.Cols(), first.Image.Rows())
	}
	if bytes.Equal(matBytes(source), matBytes(first.Image)) {
		t.Error("gaussian blur left the gradient untouched")
	}

	second, err := c.GetPreview(context.Background(), cfg, models.QualityBalanced)
	if err != nil {
		t.Fatalf("second preview failed: %v", err)
	}
	defer second.Image.Close()

	if !second.CacheHit {
		t.Error("repeat render missed the cache")
	}
}

func TestCoordinatorRejectsInvalidConfigBeforeRendering(t *testing.T) {
	c := newCoordinator()
	defer c.Shutdown()
	loadSource(t, c, 64, 64)

	cfg := models.DefaultEffectConfig()
	cfg.Noise.Gaussian.Enabled = true
	cfg.Noise.Gaussian.Variance = 4.0

	_, err := c.GetPreview(context.Background(), cfg, models.QualityBalanced)
	if err == nil {
		t.Fatal("out-of-range variance accepted")
	}
	if !apperrors.IsType(err, apperrors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
