package imageio

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Loader decodes uploaded or fetched bytes into working images. When a
// tracker is supplied, decoded source Mats are registered with it so
// their bytes count against the processing memory budget.
type Loader struct {
	logger  logger.Logger
	tracker safe.MemoryTracker
}

func NewLoader(log logger.Logger, tracker safe.MemoryTracker) *Loader {
	return &Loader{logger: log, tracker: tracker}
}

// Load decodes image bytes. OpenCV decodes first because it keeps the
// alpha channel and native channel order; the standard library plus
// the x/image formats is the fallback, which also covers sources
// OpenCV returns in depths the pipeline does not process.
func (l *Loader) Load(data []byte, sourceURI string) (*models.ImageData, error) {
	if len(data) == 0 {
		return nil, apperrors.NewDecodeFailedError("image payload is empty", nil)
	}

	stdlibFormat := sniffFormat(data)
	format := formatFor(extensionOf(sourceURI), stdlibFormat)

	mat, decodeErr := l.decode(data)
	if decodeErr != nil {
		if format == "" {
			return nil, apperrors.NewUnsupportedFormatError(
				"image format not recognized").WithDetail("source", sourceURI)
		}
		return nil, apperrors.NewDecodeFailedError("failed to decode image", decodeErr).
			WithDetail("source", sourceURI).
			WithDetail("format", format)
	}

	img := models.NewImageData(mat, format, sourceURI)
	img.Metadata.FileSize = int64(len(data))

	l.logger.Info("ImageLoader", "image decoded", map[string]interface{}{
		"source":   sourceURI,
		"format":   format,
		"width":    img.Width,
		"height":   img.Height,
		"channels": img.Channels,
		"bytes":    len(data),
	})

	return img, nil
}

func (l *Loader) decode(data []byte) (*safe.Mat, error) {
	raw, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err == nil && !raw.Empty() && isEightBit(raw.Type()) {
		mat, wrapErr := safe.NewMatFromMatWithTracker(raw, l.tracker, "source")
		raw.Close()
		if wrapErr == nil {
			return mat, nil
		}
		err = wrapErr
	} else if err == nil {
		// Either nothing decoded or a depth the pipeline does not
		// process; the standard library path narrows to 8-bit.
		raw.Close()
	}

	img, _, stdErr := image.Decode(bytes.NewReader(data))
	if stdErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, stdErr
	}
	return conversion.ImageToMat(img)
}

func isEightBit(matType gocv.MatType) bool {
	switch matType {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return true
	}
	return false
}

// sniffFormat identifies the container from the payload itself.
func sniffFormat(data []byte) string {
	cfg := bytes.NewReader(data)
	if _, format, err := image.DecodeConfig(cfg); err == nil {
		return format
	}
	return ""
}

func extensionOf(sourceURI string) string {
	return strings.ToLower(filepath.Ext(sourceURI))
}

// formatFor prefers the sniffed payload format and falls back to the
// source extension, so a mislabeled upload still reports what it is.
func formatFor(extension, sniffed string) string {
	if sniffed != "" {
		return sniffed
	}

	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	case ".tif", ".tiff":
		return "tiff"
	}
	return ""
}
