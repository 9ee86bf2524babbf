package pipeline

import (
	"bytes"
	"context"
	"testing"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/memory"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func newSourceMat(t *testing.T, width, height int) *safe.Mat {
	t.Helper()

	raw := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 160, 0), height, width, gocv.MatTypeCV8UC3)
	defer raw.Close()

	mat, err := safe.NewMatFromMat(raw)
	if err != nil {
		t.Fatalf("NewMatFromMat failed: %v", err)
	}
	return mat
}

func matBytes(m *safe.Mat) []byte {
	raw := m.GetMat()
	return raw.ToBytes()
}

func TestChainWithNothingEnabledReturnsUntouchedCopy(t *testing.T) {
	chain := NewChain(logger.NewSilent(), nil)

	input := newSourceMat(t, 24, 24)
	defer input.Close()

	out, err := chain.Run(context.Background(), input, models.DefaultEffectConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer out.Close()

	if !bytes.Equal(matBytes(input), matBytes(out)) {
		t.Error("identity run changed pixels")
	}
	if out.Type() != input.Type() {
		t.Errorf("identity run changed type from %v to %v", input.Type(), out.Type())
	}
}

func TestChainRejectsInvalidConfiguration(t *testing.T) {
	chain := NewChain(logger.NewSilent(), nil)

	input := newSourceMat(t, 24, 24)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Gaussian.Enabled = true
	cfg.Blur.Gaussian.KernelSize = 4

	_, err := chain.Run(context.Background(), input, cfg)
	if err == nil {
		t.Fatal("invalid kernel size accepted")
	}
	if !apperrors.IsType(err, apperrors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestChainOutputStaysEightBit(t *testing.T) {
	chain := NewChain(logger.NewSilent(), nil)

	input := newSourceMat(t, 32, 32)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Noise.Gaussian.Enabled = true
	cfg.Blur.Box.Enabled = true

	out, err := chain.Run(context.Background(), input, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer out.Close()

	if out.Type() != gocv.MatTypeCV8UC3 {
		t.Errorf("output type %v, expected CV8UC3", out.Type())
	}
	if out.Rows() != 32 || out.Cols() != 32 {
		t.Errorf("output size %dx%d, expected 32x32", out.Cols(), out.Rows())
	}
}

func TestChainIsDeterministicForEqualSeeds(t *testing.T) {
	chain := NewChain(logger.NewSilent(), nil)

	input := newSourceMat(t, 32, 32)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Noise.Gaussian.Enabled = true
	cfg.Noise.SaltPepper.Enabled = true
	cfg.Blur.Motion.Enabled = true
	cfg.Shake.Camera.Enabled = true
	cfg.Motion.Zoom.Enabled = true
	cfg.Seed = 2024

	first, err := chain.Run(context.Background(), input, cfg)
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	defer first.Close()

	second, err := chain.Run(context.Background(), input, cfg)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	defer second.Close()

	if !bytes.Equal(matBytes(first), matBytes(second)) {
		t.Error("equal seeds produced different renders")
	}
}

func TestChainSeedChangesOutput(t *testing.T) {
	chain := NewChain(logger.NewSilent(), nil)

	input := newSourceMat(t, 32, 32)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Noise.Gaussian.Enabled = true
	cfg.Seed = 1

	first, err := chain.Run(context.Background(), input, cfg)
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	defer first.Close()

	cfg.Seed = 2
	second, err := chain.Run(context.Background(), input, cfg)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	defer second.Close()

	if bytes.Equal(matBytes(first), matBytes(second)) {
		t.Error("different seeds produced identical noise")
	}
}

func TestChainHonorsCancellation(t *testing.T) {
	chain := NewChain(logger.NewSilent(), nil)

	input := newSourceMat(t, 32, 32)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Box.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := chain.Run(ctx, input, cfg); err == nil {
		t.Error("cancelled context did not abort the run")
	}
}

func TestChainPoolsWorkingBuffers(t *testing.T) {
	mem := memory.NewManager(logger.NewSilent())
	defer mem.Cleanup()
	chain := NewChain(logger.NewSilent(), mem)

	input := newSourceMat(t, 32, 32)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Box.Enabled = true
	cfg.Shake.Camera.Enabled = true

	for i := 0; i < 2; i++ {
		out, err := chain.Run(context.Background(), input, cfg)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		out.Close()
	}

	stats := mem.GetStats()
	if stats.PoolHits == 0 {
		t.Error("repeat runs over the same frame size should reuse pooled Mats")
	}
	if stats.ActiveMats != 0 {
		t.Errorf("ActiveMats = %d, want 0 after runs complete", stats.ActiveMats)
	}
}

func TestChainSurfacesMemoryLimit(t *testing.T) {
	mem := memory.NewManagerWithLimit(logger.NewSilent(), 1000)
	defer mem.Cleanup()
	chain := NewChain(logger.NewSilent(), mem)

	input := newSourceMat(t, 32, 32)
	defer input.Close()

	cfg := models.DefaultEffectConfig()
	cfg.Blur.Box.Enabled = true

	_, err := chain.Run(context.Background(), input, cfg)
	if err == nil {
		t.Fatal("run should fail when the working buffer exceeds the memory limit")
	}
	if !apperrors.IsType(err, apperrors.TypeInsufficientResources) {
		t.Errorf("error type = %q, want insufficient_resources", apperrors.TypeOf(err))
	}
}
