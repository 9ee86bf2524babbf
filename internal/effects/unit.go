package effects

import (
	"context"
	"math/rand"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	CategoryNoise  = "noise"
	CategoryBlur   = "blur"
	CategoryShake  = "shake"
	CategoryMotion = "motion"
)

// Unit is a single effect. Apply receives a float working copy in the
// 0..255 scale and returns a new Mat, leaving the input untouched. All
// randomness must come from the supplied generator so equal seeds
// reproduce equal output.
type Unit interface {
	Name() string
	Category() string
	Enabled(cfg *models.EffectConfig) bool
	Apply(ctx context.Context, input *safe.Mat, cfg *models.EffectConfig, rng *rand.Rand) (*safe.Mat, error)
}

// Allocator supplies working Mats. memory.Manager implements it; a nil
// Allocator falls back to direct allocation so units stay usable on
// their own.
type Allocator interface {
	GetMat(rows, cols int, matType gocv.MatType) (*safe.Mat, error)
	ReleaseMat(mat *safe.Mat)
}

// Units returns every effect in its fixed application order. The order
// is part of the rendering contract: noise first, then blur, shake and
// motion, with a stable sequence inside each category. Callers must
// not reorder the slice.
func Units(alloc Allocator) []Unit {
	return []Unit{
		NewGaussianNoise(alloc),
		NewSaltPepperNoise(alloc),
		NewGaussianBlur(alloc),
		NewMotionBlur(alloc),
		NewBoxBlur(alloc),
		NewCameraShake(alloc),
		NewDirectionalShake(alloc),
		NewMotionDistortion(alloc),
		NewZoomMotion(alloc),
	}
}

// UnitNames lists the dotted identifiers in application order.
func UnitNames() []string {
	units := Units(nil)
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name())
	}
	return names
}

func workingMat(alloc Allocator, rows, cols int, matType gocv.MatType) (*safe.Mat, error) {
	if alloc == nil {
		return safe.NewMat(rows, cols, matType)
	}
	return alloc.GetMat(rows, cols, matType)
}

func workingCopy(alloc Allocator, src *safe.Mat) (*safe.Mat, error) {
	if alloc == nil {
		return src.Clone()
	}
	dst, err := alloc.GetMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, err
	}
	if err := src.CopyTo(dst); err != nil {
		alloc.ReleaseMat(dst)
		return nil, err
	}
	return dst, nil
}

func releaseMat(alloc Allocator, mat *safe.Mat) {
	if mat == nil {
		return
	}
	if alloc == nil {
		mat.Close()
		return
	}
	alloc.ReleaseMat(mat)
}
