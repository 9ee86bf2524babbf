package segmentation

import (
	"context"
	"time"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"
	"effects-studio/internal/session"

	"gocv.io/x/gocv"
)

// Service removes image backgrounds with the resident model session.
type Service struct {
	sessions *session.Manager
	logger   logger.Logger
}

func NewService(sessions *session.Manager, log logger.Logger) *Service {
	return &Service{sessions: sessions, logger: log}
}

// Remove segments the foreground and renders it over the requested
// background. A non-empty modelID acquires that model first, which is
// a no-op when it is already resident; with an empty modelID the
// resident session is used and its absence is a session-required
// error. Output dimensions always equal input dimensions. The caller
// owns the returned Mat.
func (s *Service) Remove(ctx context.Context, img *models.ImageData, modelID string, bg Background) (*safe.Mat, error) {
	started := time.Now()

	if modelID != "" {
		if _, err := s.sessions.Acquire(ctx, modelID); err != nil {
			return nil, err
		}
	}

	sess, loadedID, err := s.sessions.Session()
	if err != nil {
		return nil, err
	}

	mask, err := sess.Predict(ctx, img.Mat)
	if err != nil {
		if apperrors.TypeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewCompositeError("segmentation produced no usable mask", []error{err}).
			WithDetail("model", loadedID)
	}
	defer mask.Close()

	coverage, meanAlpha := maskStats(mask)

	var result *safe.Mat
	switch bg.Mode {
	case BackgroundTransparent:
		result, err = composeTransparent(img.Mat, mask)
	default:
		result, err = composeOver(img.Mat, mask, bg)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Segmentation", "background removed", map[string]interface{}{
		"model":       loadedID,
		"background":  string(bg.Mode),
		"coverage":    coverage,
		"mean_alpha":  meanAlpha,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return result, nil
}

// composeTransparent carries the mask into the alpha channel of a BGRA
// copy of the image.
func composeTransparent(img *safe.Mat, mask *safe.Mat) (*safe.Mat, error) {
	bgra, err := conversion.EnsureBGRA(img)
	if err != nil {
		return nil, err
	}
	defer bgra.Close()

	alpha, err := mask.Clone()
	if err != nil {
		return nil, err
	}
	defer alpha.Close()

	alphaMat := alpha.GetMat()
	alphaMat.MultiplyFloat(255)

	alpha8 := gocv.NewMat()
	defer alpha8.Close()
	alphaMat.ConvertTo(&alpha8, gocv.MatTypeCV8U)

	bgraMat := bgra.GetMat()
	channels := gocv.Split(bgraMat)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{channels[0], channels[1], channels[2], alpha8}, &merged)

	return safe.NewMatFromMat(merged)
}

// composeOver blends the foreground onto a solid canvas with
// per-channel fg*a + bg*(1-a) in float, narrowing to 8-bit once.
func composeOver(img *safe.Mat, mask *safe.Mat, bg Background) (*safe.Mat, error) {
	fg, err := conversion.EnsureBGR(img)
	if err != nil {
		return nil, err
	}
	defer fg.Close()

	fgFloat, err := conversion.WidenToFloat(fg)
	if err != nil {
		return nil, err
	}
	defer fgFloat.Close()

	fgData, err := fgFloat.Float32Data()
	if err != nil {
		return nil, err
	}
	maskData, err := mask.Float32Data()
	if err != nil {
		return nil, err
	}

	canvas := [3]float32{float32(bg.Color.B), float32(bg.Color.G), float32(bg.Color.R)}
	for i, a := range maskData {
		base := i * 3
		inverse := 1 - a
		fgData[base+0] = fgData[base+0]*a + canvas[0]*inverse
		fgData[base+1] = fgData[base+1]*a + canvas[1]*inverse
		fgData[base+2] = fgData[base+2]*a + canvas[2]*inverse
	}

	return conversion.NarrowToUint8(fgFloat)
}

// maskStats summarizes a mask for the log line: the fraction of
// pixels counted as foreground and the mean alpha.
func maskStats(mask *safe.Mat) (coverage, meanAlpha float64) {
	data, err := mask.Float32Data()
	if err != nil || len(data) == 0 {
		return 0, 0
	}

	var sum float64
	var covered int
	for _, v := range data {
		sum += float64(v)
		if v > 0.5 {
			covered++
		}
	}
	return float64(covered) / float64(len(data)), sum / float64(len(data))
}
