package conversion

import (
	"fmt"
	"image"

	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ResizeMat resizes Mat to new dimensions using specified interpolation
func ResizeMat(src *safe.Mat, newWidth, newHeight int, interpolation gocv.InterpolationFlags) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Mat resizing"); err != nil {
		return nil, err
	}

	if err := safe.ValidateDimensions(newWidth, newHeight, "Mat resizing"); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(newHeight, newWidth, src.Type())
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	gocv.Resize(srcMat, &dstMat, image.Point{X: newWidth, Y: newHeight}, 0, 0, interpolation)

	return dst, nil
}

// CropMat extracts a rectangular region from the Mat
func CropMat(src *safe.Mat, x, y, width, height int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Mat cropping"); err != nil {
		return nil, err
	}

	if x < 0 || y < 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid crop parameters: x=%d, y=%d, w=%d, h=%d", x, y, width, height)
	}

	if x+width > src.Cols() || y+height > src.Rows() {
		return nil, fmt.Errorf("crop region exceeds Mat bounds: Mat=%dx%d, crop=%d,%d to %d,%d",
			src.Cols(), src.Rows(), x, y, x+width, y+height)
	}

	srcMat := src.GetMat()
	region := srcMat.Region(image.Rect(x, y, x+width, y+height))
	defer region.Close()

	return safe.NewMatFromMat(region)
}

// MinMax returns the smallest and largest value of a single-channel
// Mat.
func MinMax(src *safe.Mat) (float64, float64, error) {
	if err := safe.ValidateMatForOperation(src, "min/max scan"); err != nil {
		return 0, 0, err
	}

	if src.Channels() != 1 {
		return 0, 0, fmt.Errorf("min/max scan requires a single channel, got %d", src.Channels())
	}

	minVal, maxVal, _, _ := gocv.MinMaxLoc(src.GetMat())
	return float64(minVal), float64(maxVal), nil
}

// NormalizeMinMax rescales a single-channel float Mat to 0..1. A
// constant input has no usable contrast and is reported as an error.
func NormalizeMinMax(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "min/max normalization"); err != nil {
		return nil, err
	}

	if src.Type() != gocv.MatTypeCV32FC1 {
		return nil, fmt.Errorf("min/max normalization requires CV32FC1, got type %d", int(src.Type()))
	}

	minVal, maxVal, err := MinMax(src)
	if err != nil {
		return nil, err
	}

	if maxVal-minVal < 1e-12 {
		return nil, fmt.Errorf("input is constant at %g, nothing to normalize", minVal)
	}

	dst, err := src.Clone()
	if err != nil {
		return nil, err
	}

	data, err := dst.Float32Data()
	if err != nil {
		dst.Close()
		return nil, err
	}

	scale := float32(1.0 / (maxVal - minVal))
	offset := float32(minVal)
	for i := range data {
		data[i] = (data[i] - offset) * scale
	}

	return dst, nil
}
