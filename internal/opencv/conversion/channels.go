package conversion

import (
	"fmt"

	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// EnsureBGR returns a 3-channel copy of src. Gray images are expanded,
// BGRA images lose their alpha plane.
func EnsureBGR(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "BGR conversion"); err != nil {
		return nil, err
	}

	if src.Channels() == 3 {
		return src.Clone()
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	switch src.Channels() {
	case 1:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRAToBGR)
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return dst, nil
}

// EnsureBGRA returns a 4-channel copy of src. Images without alpha get
// a fully opaque plane.
func EnsureBGRA(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "BGRA conversion"); err != nil {
		return nil, err
	}

	if src.Channels() == 4 {
		return src.Clone()
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC4)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	switch src.Channels() {
	case 3:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToBGRA)
	case 1:
		temp := gocv.NewMat()
		defer temp.Close()
		gocv.CvtColor(srcMat, &temp, gocv.ColorGrayToBGR)
		gocv.CvtColor(temp, &dstMat, gocv.ColorBGRToBGRA)
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return dst, nil
}
