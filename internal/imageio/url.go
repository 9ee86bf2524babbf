package imageio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
)

const (
	// DefaultMaxFetchBytes caps remote image payloads at 64 MB.
	DefaultMaxFetchBytes = 64 << 20

	fetchTimeout = 30 * time.Second
)

// Fetcher retrieves image bytes over HTTP with a hard payload cap.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   logger.Logger
}

func NewFetcher(maxBytes int64, log logger.Logger) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFetchBytes
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:          4,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		maxBytes: maxBytes,
		logger:   log,
	}
}

// Fetch downloads the image at rawURL. Only http and https sources are
// accepted and the body is rejected once it exceeds the configured cap.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err).
			WithDetail("url", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("unsupported URL scheme %q", parsed.Scheme), nil).
			WithDetail("url", rawURL)
	}
	if parsed.Host == "" {
		return nil, apperrors.NewValidationError("image URL has no host", nil).
			WithDetail("url", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewFetchFailedError("failed to build image request", err).
			WithDetail("url", rawURL)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchFailedError("failed to fetch image", err).
			WithDetail("url", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewFetchFailedError(
			fmt.Sprintf("image fetch returned status %d", resp.StatusCode), nil).
			WithDetail("url", rawURL).
			WithDetail("status", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewFetchFailedError("failed to read image body", err).
			WithDetail("url", rawURL)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("image exceeds %d byte limit", f.maxBytes), nil).
			WithDetail("url", rawURL)
	}

	f.logger.Info("ImageFetcher", "image fetched", map[string]interface{}{
		"url":   rawURL,
		"bytes": len(data),
	})

	return data, nil
}
