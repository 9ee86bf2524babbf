package session

import (
	"context"

	"effects-studio/internal/opencv/safe"
)

// Session is a loaded inference session. Predict maps an image to a
// single-channel float mask in [0,1] with the input's dimensions.
type Session interface {
	Predict(ctx context.Context, input *safe.Mat) (*safe.Mat, error)
	Close()
}

// Backend turns a local weights file into a live session. The manager
// stays agnostic of the inference runtime behind it.
type Backend interface {
	// Available reports whether the runtime dependency backing this
	// backend is usable on the current host.
	Available() error
	Load(ctx context.Context, weightsPath string) (Session, error)
}
