package effects

import (
	"math"

	"effects-studio/internal/models"

	"gocv.io/x/gocv"
)

// lineKernel builds a normalized convolution kernel whose support is a
// straight line through the kernel center at the given angle. The side
// length is degree rounded up to odd so the line stays centered, and
// the angle wraps onto a full turn.
func lineKernel(degree, angle int) gocv.Mat {
	size := degree
	if size%2 == 0 {
		size++
	}

	kernel := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), size, size, gocv.MatTypeCV32F)

	center := size / 2
	rad := float64(models.WrapAngle(angle)) * math.Pi / 180.0
	xOffset := int(float64(center) * math.Cos(rad))
	yOffset := int(float64(center) * math.Sin(rad))

	points := 0
	plotLine(center-xOffset, center-yOffset, center+xOffset, center+yOffset, func(x, y int) {
		kernel.SetFloatAt(y, x, 1.0)
		points++
	})

	kernel.DivideFloat(float32(points))
	return kernel
}

// plotLine walks the integer raster line from (x0,y0) to (x1,y1) with
// Bresenham's algorithm, calling visit for every covered cell.
func plotLine(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	errAcc := dx + dy

	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		doubled := 2 * errAcc
		if doubled >= dy {
			errAcc += dy
			x0 += sx
		}
		if doubled <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

// translationMatrix builds the 2x3 affine matrix that shifts an image
// by (dx,dy) pixels.
func translationMatrix(dx, dy int) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 3, gocv.MatTypeCV64F)
	m.SetDoubleAt(0, 0, 1)
	m.SetDoubleAt(0, 2, float64(dx))
	m.SetDoubleAt(1, 1, 1)
	m.SetDoubleAt(1, 2, float64(dy))
	return m
}

// smearKernel builds the averaging kernel for one distortion axis:
// a 1xN row for horizontal smear, an Nx1 column for vertical, or an
// NxN identity for diagonal. All variants sum to one.
func smearKernel(direction models.DistortionDirection, n int) gocv.Mat {
	weight := 1.0 / float64(n)

	switch direction {
	case models.DistortionVertical:
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(weight, 0, 0, 0), n, 1, gocv.MatTypeCV32F)
	case models.DistortionDiagonal:
		kernel := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), n, n, gocv.MatTypeCV32F)
		for i := 0; i < n; i++ {
			kernel.SetFloatAt(i, i, float32(weight))
		}
		return kernel
	default:
		return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(weight, 0, 0, 0), 1, n, gocv.MatTypeCV32F)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
