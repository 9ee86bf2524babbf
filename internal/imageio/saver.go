package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/models"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"

	"github.com/disintegration/imaging"
)

// fullQuality is the JPEG quality used for final renders. Previews use
// the quality mode's own setting instead.
const fullQuality = 95

// Encode serializes a Mat into the named format. JPEG output is
// flattened onto white first because the format has no alpha channel.
func Encode(mat *safe.Mat, format string) ([]byte, error) {
	imagingFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, apperrors.NewUnsupportedFormatError(
			"cannot encode format " + format)
	}

	img, err := conversion.MatToImage(mat)
	if err != nil {
		return nil, apperrors.NewEncodeFailedError("failed to convert image for encoding", err)
	}

	opts := []imaging.EncodeOption{}
	if imagingFormat == imaging.JPEG {
		img = flattenForJPEG(img)
		opts = append(opts, imaging.JPEGQuality(fullQuality))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imagingFormat, opts...); err != nil {
		return nil, apperrors.NewEncodeFailedError("failed to encode image", err).
			WithDetail("format", format)
	}
	return buf.Bytes(), nil
}

// EncodePreview serializes a Mat as JPEG at the quality the preview
// mode calls for.
func EncodePreview(mat *safe.Mat, mode models.QualityMode) ([]byte, error) {
	img, err := conversion.MatToImage(mat)
	if err != nil {
		return nil, apperrors.NewEncodeFailedError("failed to convert preview for encoding", err)
	}

	var buf bytes.Buffer
	err = imaging.Encode(&buf, flattenForJPEG(img), imaging.JPEG,
		imaging.JPEGQuality(mode.JPEGQuality()))
	if err != nil {
		return nil, apperrors.NewEncodeFailedError("failed to encode preview", err)
	}
	return buf.Bytes(), nil
}

// Save writes a Mat to disk, with the format chosen by the file
// extension.
func Save(mat *safe.Mat, path string) error {
	img, err := conversion.MatToImage(mat)
	if err != nil {
		return apperrors.NewEncodeFailedError("failed to convert image for saving", err)
	}

	if format, ferr := imaging.FormatFromFilename(path); ferr == nil && format == imaging.JPEG {
		if err := imaging.Save(flattenForJPEG(img), path, imaging.JPEGQuality(fullQuality)); err != nil {
			return apperrors.NewEncodeFailedError("failed to save image", err).
				WithDetail("path", path)
		}
		return nil
	}

	if err := imaging.Save(img, path); err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return apperrors.NewUnsupportedFormatError(
				"cannot save to " + path).WithDetail("path", path)
		}
		return apperrors.NewEncodeFailedError("failed to save image", err).
			WithDetail("path", path)
	}
	return nil
}

// flattenForJPEG composites translucent images onto a white canvas.
// Opaque images pass through untouched.
func flattenForJPEG(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
