package models

import (
	"sync"
	"time"

	"effects-studio/internal/opencv/safe"

	"github.com/google/uuid"
)

// ImageData represents a decoded image with its pixel matrix and
// provenance metadata. The Mat is owned by the holder of the struct.
type ImageData struct {
	ID        string
	Mat       *safe.Mat
	Width     int
	Height    int
	Channels  int
	Format    string
	SourceURI string
	LoadTime  time.Time
	Metadata  ImageMetadata
}

// ImageMetadata contains additional information about the image
type ImageMetadata struct {
	FileSize   int64
	ColorSpace string
	BitDepth   int
}

// NewImageData wraps a Mat with fresh identity and dimension metadata.
func NewImageData(mat *safe.Mat, format, sourceURI string) *ImageData {
	return &ImageData{
		ID:        uuid.NewString(),
		Mat:       mat,
		Width:     mat.Cols(),
		Height:    mat.Rows(),
		Channels:  mat.Channels(),
		Format:    format,
		SourceURI: sourceURI,
		LoadTime:  time.Now(),
		Metadata: ImageMetadata{
			ColorSpace: colorSpaceFor(mat.Channels()),
			BitDepth:   8,
		},
	}
}

func colorSpaceFor(channels int) string {
	switch channels {
	case 1:
		return "gray"
	case 4:
		return "bgra"
	default:
		return "bgr"
	}
}

// Close releases the underlying matrix.
func (d *ImageData) Close() {
	if d != nil && d.Mat != nil {
		d.Mat.Close()
	}
}

// ImageRepository holds the current source image. Replacing the source
// releases the previous matrix so long sessions do not accumulate
// native memory.
type ImageRepository struct {
	mu     sync.RWMutex
	source *ImageData
}

// NewImageRepository creates an empty repository.
func NewImageRepository() *ImageRepository {
	return &ImageRepository{}
}

// SetSource stores a new source image and releases the old one.
func (r *ImageRepository) SetSource(img *ImageData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source != nil {
		r.source.Close()
	}
	r.source = img
}

// Source returns the current source image, or nil when none is loaded.
func (r *ImageRepository) Source() *ImageData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// Clear releases the held image.
func (r *ImageRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source != nil {
		r.source.Close()
		r.source = nil
	}
}

// Shutdown releases all resources
func (r *ImageRepository) Shutdown() {
	r.Clear()
}
