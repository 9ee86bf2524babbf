package models

import "fmt"

// QualityMode trades preview fidelity for speed. It controls the
// maximum edge length of the working copy and the JPEG quality used
// when a preview is encoded for transport.
type QualityMode string

const (
	QualityFast     QualityMode = "fast"
	QualityBalanced QualityMode = "balanced"
	QualityBest     QualityMode = "quality"
)

// QualityModes lists the supported modes in ascending fidelity.
func QualityModes() []QualityMode {
	return []QualityMode{QualityFast, QualityBalanced, QualityBest}
}

// ParseQualityMode validates a mode string from CLI flags or API
// requests.
func ParseQualityMode(s string) (QualityMode, error) {
	switch QualityMode(s) {
	case QualityFast, QualityBalanced, QualityBest:
		return QualityMode(s), nil
	}
	return "", fmt.Errorf("unknown quality mode %q, expected fast, balanced or quality", s)
}

// MaxEdge returns the longest side the working copy may have in this
// mode. Images already smaller than this are never upscaled.
func (m QualityMode) MaxEdge() int {
	switch m {
	case QualityFast:
		return 300
	case QualityBalanced:
		return 500
	default:
		return 800
	}
}

// JPEGQuality returns the encoder quality for preview transport.
func (m QualityMode) JPEGQuality() int {
	switch m {
	case QualityFast:
		return 75
	case QualityBalanced:
		return 85
	default:
		return 95
	}
}
