package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/schollz/progressbar/v3"
)

const (
	downloadRetries  = 3
	partialSuffix    = ".partial"
	minSizeTolerance = 2
)

// Downloader caches published model weights on local disk. A weights
// file already present is reused without touching the network, and a
// localDir of pre-fetched weights is honored before the cache, so
// air-gapped installs never download at all.
type Downloader struct {
	client       *http.Client
	cacheDir     string
	localDir     string
	showProgress bool
	logger       logger.Logger
}

func NewDownloader(cacheDir, localDir string, timeout time.Duration, showProgress bool, log logger.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          4,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		cacheDir:     cacheDir,
		localDir:     localDir,
		showProgress: showProgress,
		logger:       log,
	}
}

// EnsureLocal returns the path of the weights file for the model,
// downloading it first when both the local directory and the cache
// miss. Downloads land in a partial file that is renamed only after
// passing the size check, so an interrupted transfer never poses as a
// usable model.
func (d *Downloader) EnsureLocal(ctx context.Context, info ModelInfo) (string, error) {
	if d.localDir != "" {
		local := filepath.Join(d.localDir, info.File)
		if stat, err := os.Stat(local); err == nil && stat.Size() > 0 {
			d.logger.Debug("ModelDownloader", "using pre-fetched weights", map[string]interface{}{
				"model": info.ID,
				"path":  local,
				"bytes": stat.Size(),
			})
			return local, nil
		}
	}

	target := filepath.Join(d.cacheDir, info.File)

	if stat, err := os.Stat(target); err == nil && stat.Size() > 0 {
		d.logger.Debug("ModelDownloader", "weights found in cache", map[string]interface{}{
			"model": info.ID,
			"path":  target,
			"bytes": stat.Size(),
		})
		return target, nil
	}

	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", apperrors.NewDownloadFailedError("failed to create weights cache directory", err)
	}

	d.logger.Info("ModelDownloader", "fetching model weights", map[string]interface{}{
		"model": info.ID,
		"url":   info.URL,
	})

	partial := target + partialSuffix
	attempt := func() error {
		return d.fetchOnce(ctx, info, partial)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second

	if err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, downloadRetries), ctx)); err != nil {
		os.Remove(partial)
		if apperrors.TypeOf(err) != "" {
			return "", err
		}
		return "", apperrors.NewDownloadFailedError(
			fmt.Sprintf("failed to download weights for model %s", info.ID), err,
		).WithDetail("model", info.ID).WithDetail("url", info.URL)
	}

	if err := d.verifySize(partial, info); err != nil {
		os.Remove(partial)
		return "", err
	}

	if err := os.Rename(partial, target); err != nil {
		os.Remove(partial)
		return "", apperrors.NewDownloadFailedError("failed to move weights into cache", err)
	}

	return target, nil
}

// fetchOnce performs one full transfer attempt into the partial file.
// Client errors are permanent; connection and server errors retry.
func (d *Downloader) fetchOnce(ctx context.Context, info ModelInfo, partial string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return backoff.Permanent(apperrors.NewDownloadFailedError("invalid weights URL", err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := apperrors.NewDownloadFailedError(
			fmt.Sprintf("weights server answered %d for model %s", resp.StatusCode, info.ID), nil,
		).WithDetail("status", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}

	out, err := os.Create(partial)
	if err != nil {
		return backoff.Permanent(apperrors.NewDownloadFailedError("failed to create partial weights file", err))
	}
	defer out.Close()

	bar := d.progressBar(resp.ContentLength, info.ID)
	defer bar.Close()

	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return fmt.Errorf("transfer interrupted: %w", err)
	}

	return nil
}

func (d *Downloader) progressBar(length int64, modelID string) *progressbar.ProgressBar {
	description := fmt.Sprintf("downloading %s", modelID)
	if !d.showProgress {
		return progressbar.DefaultBytesSilent(length, description)
	}
	return progressbar.DefaultBytes(length, description)
}

// verifySize rejects transfers that ended early. Catalog sizes are
// nominal, so anything above half the published size passes.
func (d *Downloader) verifySize(path string, info ModelInfo) error {
	stat, err := os.Stat(path)
	if err != nil {
		return apperrors.NewDownloadFailedError("downloaded weights vanished before verification", err)
	}

	if info.SizeBytes > 0 && stat.Size() < info.SizeBytes/minSizeTolerance {
		return apperrors.NewDownloadFailedError(
			fmt.Sprintf("weights for model %s look truncated", info.ID), nil,
		).WithDetail("expected_bytes", info.SizeBytes).WithDetail("got_bytes", stat.Size())
	}

	return nil
}
