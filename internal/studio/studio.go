package studio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"effects-studio/internal/config"
	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/imageio"
	"effects-studio/internal/logger"
	"effects-studio/internal/metrics"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/memory"
	"effects-studio/internal/opencv/safe"
	"effects-studio/internal/pipeline"
	"effects-studio/internal/segmentation"
	"effects-studio/internal/session"
)

// Studio owns the per-session state of the application: the working
// image, the effect pipeline with its preview cache, and the single
// model session. Nothing here is process-global; every caller holds
// exactly one Studio per working session.
type Studio struct {
	cfg         *config.Config
	logger      logger.Logger
	recorder    *metrics.Recorder
	mem         *memory.Manager
	loader      *imageio.Loader
	fetcher     *imageio.Fetcher
	coordinator *pipeline.Coordinator
	sessions    *session.Manager
	segmenter   *segmentation.Service

	mu         sync.Mutex
	sourceHash string
}

// New wires the full processing stack. showProgress enables download
// progress bars, which only make sense on an interactive terminal.
func New(cfg *config.Config, log logger.Logger, showProgress bool) (*Studio, error) {
	catalog, err := session.LoadCatalog()
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	mem := memory.NewManagerWithLimit(log, cfg.MemoryLimitBytes)
	downloader := session.NewDownloader(cfg.ModelCacheDir, cfg.LocalModelsDir, cfg.DownloadTimeout, showProgress, log)
	sessions := session.NewManager(catalog, segmentation.NewDNNBackend(log), downloader, recorder, log)

	return &Studio{
		cfg:         cfg,
		logger:      log,
		recorder:    recorder,
		mem:         mem,
		loader:      imageio.NewLoader(log, mem),
		fetcher:     imageio.NewFetcher(cfg.MaxUploadBytes, log),
		coordinator: pipeline.NewCoordinator(log, recorder, mem, cfg.PreviewCacheSize),
		sessions:    sessions,
		segmenter:   segmentation.NewService(sessions, log),
	}, nil
}

// LoadFile reads an image from disk and makes it the working source.
// The returned ImageData stays owned by the studio.
func (s *Studio) LoadFile(path string) (*models.ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDecodeFailedError("failed to read image file", err).
			WithDetail("path", path)
	}
	return s.setSource(data, filepath.Base(path), "file")
}

// LoadBytes decodes an uploaded payload and makes it the working
// source.
func (s *Studio) LoadBytes(data []byte, name string) (*models.ImageData, error) {
	return s.setSource(data, name, "upload")
}

// LoadURL fetches a remote image and makes it the working source.
func (s *Studio) LoadURL(ctx context.Context, rawURL string) (*models.ImageData, error) {
	data, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.setSource(data, rawURL, "url")
}

// setSource decodes and installs a new working image. A payload byte
// identical to the resident source keeps it, so clients that re-send
// the same image with every request do not flush the preview cache.
func (s *Studio) setSource(data []byte, name, origin string) (*models.ImageData, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.coordinator.Source(); current != nil && s.sourceHash == hash {
		return current, nil
	}

	img, err := s.loader.Load(data, name)
	if err != nil {
		return nil, err
	}
	s.coordinator.SetSource(img)
	s.sourceHash = hash
	s.recorder.ImageLoaded(origin)
	return img, nil
}

// Source returns the current working image, nil when none is loaded.
func (s *Studio) Source() *models.ImageData {
	return s.coordinator.Source()
}

// RunEffects renders the configured effects at the given quality. It
// goes through the preview path, so the output is scaled to the
// quality tier and repeated configurations come from the fingerprint
// cache. The caller owns the returned Mat.
func (s *Studio) RunEffects(ctx context.Context, cfg *models.EffectConfig, mode models.QualityMode) (*safe.Mat, error) {
	result, err := s.coordinator.GetPreview(ctx, cfg, mode)
	if err != nil {
		return nil, err
	}
	return result.Image, nil
}

// ProcessFull renders the configured effects at native resolution,
// bypassing the cache. The caller owns the returned Mat.
func (s *Studio) ProcessFull(ctx context.Context, cfg *models.EffectConfig) (*safe.Mat, error) {
	return s.coordinator.ProcessFull(ctx, cfg)
}

// Preview renders at preview scale through the fingerprint cache.
func (s *Studio) Preview(ctx context.Context, cfg *models.EffectConfig, mode models.QualityMode) (*pipeline.PreviewResult, error) {
	return s.coordinator.GetPreview(ctx, cfg, mode)
}

// Models lists the embedded catalog.
func (s *Studio) Models() []session.ModelInfo {
	return s.sessions.Catalog().List()
}

// ModelStatus snapshots the model session state machine.
func (s *Studio) ModelStatus() session.Status {
	return s.sessions.Status()
}

// AcquireModel makes the given model resident, downloading its weights
// on first use. It returns the id of the resulting session.
func (s *Studio) AcquireModel(ctx context.Context, modelID string) (string, error) {
	return s.sessions.Acquire(ctx, modelID)
}

// ReleaseModel drops the resident model session, if any.
func (s *Studio) ReleaseModel() {
	s.sessions.Release()
}

// RemoveBackground segments the working image and renders it over the
// requested background. The caller owns the returned Mat.
func (s *Studio) RemoveBackground(ctx context.Context, modelID string, bg segmentation.Background) (*safe.Mat, error) {
	img := s.coordinator.Source()
	if img == nil {
		return nil, apperrors.NewNotFoundError("no source image loaded")
	}
	return s.segmenter.Remove(ctx, img, modelID, bg)
}

// Recorder exposes the metrics registry for the serve layer.
func (s *Studio) Recorder() *metrics.Recorder {
	return s.recorder
}

// Config returns the runtime settings the studio was built with.
func (s *Studio) Config() *config.Config {
	return s.cfg
}

// CacheStats reports preview cache hits and misses.
func (s *Studio) CacheStats() (hits, misses uint64) {
	return s.coordinator.CacheStats()
}

// MemoryStats snapshots the working-buffer pool accounting.
func (s *Studio) MemoryStats() *memory.Stats {
	return s.mem.GetStats()
}

// Shutdown releases the working image, preview cache, model session
// and pooled working buffers.
func (s *Studio) Shutdown() {
	s.coordinator.Shutdown()
	s.sessions.Shutdown()
	s.mem.Cleanup()
}
