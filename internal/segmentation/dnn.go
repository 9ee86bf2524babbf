package segmentation

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/opencv/conversion"
	"effects-studio/internal/opencv/safe"
	"effects-studio/internal/session"

	"gocv.io/x/gocv"
)

// Model input resolution shared by the catalog networks.
const networkInputSize = 320

// DNNBackend loads ONNX saliency networks through the OpenCV DNN
// module and serves masks sized back to the query image.
type DNNBackend struct {
	logger logger.Logger
}

func NewDNNBackend(log logger.Logger) *DNNBackend {
	return &DNNBackend{logger: log}
}

func (b *DNNBackend) Available() error {
	return nil
}

func (b *DNNBackend) Load(ctx context.Context, weightsPath string) (session.Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if _, err := os.Stat(weightsPath); err != nil {
		return nil, apperrors.NewLoadFailedError("weights file unreadable", err).WithDetail("path", weightsPath)
	}

	net := gocv.ReadNetFromONNX(weightsPath)
	if net.Empty() {
		return nil, apperrors.NewLoadFailedError(
			fmt.Sprintf("failed to parse ONNX graph at %s", weightsPath), nil,
		).WithDetail("path", weightsPath)
	}

	b.logger.Info("DNNBackend", "network loaded", map[string]interface{}{
		"path": weightsPath,
	})

	return &dnnSession{net: net, logger: b.logger}, nil
}

// dnnSession wraps a gocv network. Forward passes are serialized
// because cv::dnn::Net is not safe for concurrent inference.
type dnnSession struct {
	mu     sync.Mutex
	net    gocv.Net
	logger logger.Logger
}

// Predict runs the network over the image and returns a single-channel
// float mask in [0,1] with the input's dimensions. The raw network
// output is min-max normalized, so a constant response surfaces as an
// error instead of an all-or-nothing mask.
func (s *dnnSession) Predict(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bgr, err := conversion.EnsureBGR(input)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	raw, err := s.forward(bgr)
	if err != nil {
		return nil, err
	}

	normalized, err := conversion.NormalizeMinMax(raw)
	raw.Close()
	if err != nil {
		return nil, fmt.Errorf("network produced a degenerate mask: %w", err)
	}

	mask, err := conversion.ResizeMat(normalized, input.Cols(), input.Rows(), gocv.InterpolationLinear)
	normalized.Close()
	if err != nil {
		return nil, err
	}

	return mask, nil
}

// forward runs one serialized inference pass and returns the square
// network response as an owned single-channel float Mat. The blob
// follows the U2-Net input convention: RGB order, scaled to [0,1]
// with the ImageNet channel means subtracted.
func (s *dnnSession) forward(bgr *safe.Mat) (*safe.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcMat := bgr.GetMat()
	blob := gocv.BlobFromImage(srcMat, 1.0/255.0,
		image.Point{X: networkInputSize, Y: networkInputSize},
		gocv.NewScalar(0.485*255.0, 0.456*255.0, 0.406*255.0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	prob := s.net.Forward("")
	defer prob.Close()

	flat := prob.Reshape(1, networkInputSize)
	defer flat.Close()

	return safe.NewMatFromMat(flat)
}

func (s *dnnSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.net.Close()
}
