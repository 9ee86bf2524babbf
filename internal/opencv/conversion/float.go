package conversion

import (
	"fmt"

	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// WidenToFloat converts src to 32-bit float while keeping the channel
// count and the 0..255 value scale. Effects run on the widened copy so
// intermediate results are never clipped.
func WidenToFloat(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "float widening"); err != nil {
		return nil, err
	}

	floatType, err := floatTypeFor(src.Channels())
	if err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), floatType)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	srcMat.ConvertTo(&dstMat, gocv.MatTypeCV32F)

	return dst, nil
}

// NarrowToUint8 converts a float Mat back to 8-bit. Values outside
// 0..255 saturate, which is the single clamping point of the pipeline.
func NarrowToUint8(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "uint8 narrowing"); err != nil {
		return nil, err
	}

	byteType, err := uint8TypeFor(src.Channels())
	if err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), byteType)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	srcMat.ConvertTo(&dstMat, gocv.MatTypeCV8U)

	return dst, nil
}

func floatTypeFor(channels int) (gocv.MatType, error) {
	switch channels {
	case 1:
		return gocv.MatTypeCV32FC1, nil
	case 3:
		return gocv.MatTypeCV32FC3, nil
	case 4:
		return gocv.MatTypeCV32FC4, nil
	default:
		return 0, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

func uint8TypeFor(channels int) (gocv.MatType, error) {
	switch channels {
	case 1:
		return gocv.MatTypeCV8UC1, nil
	case 3:
		return gocv.MatTypeCV8UC3, nil
	case 4:
		return gocv.MatTypeCV8UC4, nil
	default:
		return 0, fmt.Errorf("unsupported channel count: %d", channels)
	}
}
