package preview

import (
	"testing"

	"effects-studio/internal/models"
	"effects-studio/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func TestScaleForPreviewClampsLongEdge(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		mode       models.QualityMode
		wantWidth  int
		wantHeight int
	}{
		{name: "landscape fast", width: 600, height: 400, mode: models.QualityFast, wantWidth: 300, wantHeight: 200},
		{name: "portrait fast", width: 400, height: 600, mode: models.QualityFast, wantWidth: 200, wantHeight: 300},
		{name: "rounded short edge", width: 640, height: 480, mode: models.QualityFast, wantWidth: 300, wantHeight: 225},
		{name: "balanced", width: 1000, height: 500, mode: models.QualityBalanced, wantWidth: 500, wantHeight: 250},
		{name: "high fidelity", width: 1600, height: 1200, mode: models.QualityBest, wantWidth: 800, wantHeight: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := safe.NewMat(tt.height, tt.width, gocv.MatTypeCV8UC3)
			if err != nil {
				t.Fatalf("NewMat failed: %v", err)
			}
			defer src.Close()

			out, err := ScaleForPreview(src, tt.mode)
			if err != nil {
				t.Fatalf("ScaleForPreview failed: %v", err)
			}
			defer out.Close()

			if out.Cols() != tt.wantWidth || out.Rows() != tt.wantHeight {
				t.Errorf("scaled to %dx%d, expected %dx%d",
					out.Cols(), out.Rows(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestScaleForPreviewNeverUpscales(t *testing.T) {
	src, err := safe.NewMat(120, 100, gocv.MatTypeCV8UC3)
	if err != nil {
		t.Fatalf("NewMat failed: %v", err)
	}
	defer src.Close()

	for _, mode := range models.QualityModes() {
		out, err := ScaleForPreview(src, mode)
		if err != nil {
			t.Fatalf("ScaleForPreview failed for %s: %v", mode, err)
		}
		if out.Cols() != 100 || out.Rows() != 120 {
			t.Errorf("mode %s resized a fitting image to %dx%d", mode, out.Cols(), out.Rows())
		}
		out.Close()
	}
}

func TestScaleForPreviewReturnsOwnedCopy(t *testing.T) {
	src, err := safe.NewMat(50, 50, gocv.MatTypeCV8UC1)
	if err != nil {
		t.Fatalf("NewMat failed: %v", err)
	}
	defer src.Close()

	out, err := ScaleForPreview(src, models.QualityFast)
	if err != nil {
		t.Fatalf("ScaleForPreview failed: %v", err)
	}

	// Closing the copy must leave the source usable.
	out.Close()
	if !src.IsValid() || src.Empty() {
		t.Error("closing the preview copy invalidated the source")
	}
}

func TestScaleForPreviewExactBoundaryIsUntouched(t *testing.T) {
	src, err := safe.NewMat(300, 200, gocv.MatTypeCV8UC3)
	if err != nil {
		t.Fatalf("NewMat failed: %v", err)
	}
	defer src.Close()

	out, err := ScaleForPreview(src, models.QualityFast)
	if err != nil {
		t.Fatalf("ScaleForPreview failed: %v", err)
	}
	defer out.Close()

	if out.Cols() != 200 || out.Rows() != 300 {
		t.Errorf("image at the boundary was resized to %dx%d", out.Cols(), out.Rows())
	}
}
