package conversion

import (
	"fmt"
	"image"
	"image/color"

	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MatToImage converts a Mat to a standard Go image. BGRA Mats become
// NRGBA so straight alpha survives PNG encoding.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()

	switch channels {
	case 1:
		return matToGray(src, rows, cols)
	case 3:
		return matBGRToRGBA(src, rows, cols)
	case 4:
		return matBGRAToNRGBA(src, rows, cols)
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// ImageToMat converts a standard Go image to a Mat. Images with an
// alpha channel become BGRA, everything else BGR.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch typedImg := img.(type) {
	case *image.Gray:
		return grayImageToMat(typedImg, width, height)
	case *image.NRGBA:
		return nrgbaImageToMat(typedImg, width, height)
	case *image.RGBA:
		return rgbaImageToMat(typedImg, width, height)
	default:
		return convertGenericImageToMat(img, width, height)
	}
}

// matToGray converts single-channel Mat to grayscale image
func matToGray(src *safe.Mat, rows, cols int) (*image.Gray, error) {
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			value, err := src.GetUCharAt(y, x)
			if err != nil {
				return nil, fmt.Errorf("pixel access failed at (%d,%d): %w", x, y, err)
			}
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}

	return img, nil
}

// matBGRToRGBA converts BGR Mat to an opaque RGBA image
func matBGRToRGBA(src *safe.Mat, rows, cols int) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			b, err := src.GetUCharAt3(y, x, 0)
			if err != nil {
				return nil, fmt.Errorf("B channel access failed at (%d,%d): %w", x, y, err)
			}

			g, err := src.GetUCharAt3(y, x, 1)
			if err != nil {
				return nil, fmt.Errorf("G channel access failed at (%d,%d): %w", x, y, err)
			}

			r, err := src.GetUCharAt3(y, x, 2)
			if err != nil {
				return nil, fmt.Errorf("R channel access failed at (%d,%d): %w", x, y, err)
			}

			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return img, nil
}

// matBGRAToNRGBA converts BGRA Mat to an NRGBA image with straight alpha
func matBGRAToNRGBA(src *safe.Mat, rows, cols int) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			b, err := src.GetUCharAt3(y, x, 0)
			if err != nil {
				return nil, fmt.Errorf("B channel access failed at (%d,%d): %w", x, y, err)
			}

			g, err := src.GetUCharAt3(y, x, 1)
			if err != nil {
				return nil, fmt.Errorf("G channel access failed at (%d,%d): %w", x, y, err)
			}

			r, err := src.GetUCharAt3(y, x, 2)
			if err != nil {
				return nil, fmt.Errorf("R channel access failed at (%d,%d): %w", x, y, err)
			}

			a, err := src.GetUCharAt3(y, x, 3)
			if err != nil {
				return nil, fmt.Errorf("A channel access failed at (%d,%d): %w", x, y, err)
			}

			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}

	return img, nil
}

// grayImageToMat converts grayscale image to single-channel Mat
func grayImageToMat(img *image.Gray, width, height int) (*safe.Mat, error) {
	mat, err := safe.NewMat(height, width, gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := img.GrayAt(x+bounds.Min.X, y+bounds.Min.Y)
			if err := mat.SetUCharAt(y, x, pixel.Y); err != nil {
				mat.Close()
				return nil, fmt.Errorf("pixel setting failed at (%d,%d): %w", x, y, err)
			}
		}
	}

	return mat, nil
}

// nrgbaImageToMat converts NRGBA image to BGRA Mat, keeping alpha
func nrgbaImageToMat(img *image.NRGBA, width, height int) (*safe.Mat, error) {
	mat, err := safe.NewMat(height, width, gocv.MatTypeCV8UC4)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := img.NRGBAAt(x+bounds.Min.X, y+bounds.Min.Y)

			if err := setBGRA(mat, y, x, pixel.B, pixel.G, pixel.R, pixel.A); err != nil {
				mat.Close()
				return nil, err
			}
		}
	}

	return mat, nil
}

// rgbaImageToMat converts RGBA image to BGRA Mat, keeping alpha
func rgbaImageToMat(img *image.RGBA, width, height int) (*safe.Mat, error) {
	mat, err := safe.NewMat(height, width, gocv.MatTypeCV8UC4)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := img.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y)

			if err := setBGRA(mat, y, x, pixel.B, pixel.G, pixel.R, pixel.A); err != nil {
				mat.Close()
				return nil, err
			}
		}
	}

	return mat, nil
}

func setBGRA(mat *safe.Mat, y, x int, b, g, r, a uint8) error {
	if err := mat.SetUCharAt3(y, x, 0, b); err != nil {
		return fmt.Errorf("B channel setting failed at (%d,%d): %w", x, y, err)
	}
	if err := mat.SetUCharAt3(y, x, 1, g); err != nil {
		return fmt.Errorf("G channel setting failed at (%d,%d): %w", x, y, err)
	}
	if err := mat.SetUCharAt3(y, x, 2, r); err != nil {
		return fmt.Errorf("R channel setting failed at (%d,%d): %w", x, y, err)
	}
	if err := mat.SetUCharAt3(y, x, 3, a); err != nil {
		return fmt.Errorf("A channel setting failed at (%d,%d): %w", x, y, err)
	}
	return nil
}

// convertGenericImageToMat converts any image type to BGR Mat using color model conversion
func convertGenericImageToMat(img image.Image, width, height int) (*safe.Mat, error) {
	mat, err := safe.NewMat(height, width, gocv.MatTypeCV8UC3)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()

			// Convert from 16-bit to 8-bit
			r8 := uint8(r >> 8)
			g8 := uint8(g >> 8)
			b8 := uint8(b >> 8)

			if err := mat.SetUCharAt3(y, x, 0, b8); err != nil {
				mat.Close()
				return nil, fmt.Errorf("B channel setting failed at (%d,%d): %w", x, y, err)
			}
			if err := mat.SetUCharAt3(y, x, 1, g8); err != nil {
				mat.Close()
				return nil, fmt.Errorf("G channel setting failed at (%d,%d): %w", x, y, err)
			}
			if err := mat.SetUCharAt3(y, x, 2, r8); err != nil {
				mat.Close()
				return nil, fmt.Errorf("R channel setting failed at (%d,%d): %w", x, y, err)
			}
		}
	}

	return mat, nil
}
