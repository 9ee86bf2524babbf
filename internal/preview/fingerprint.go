package preview

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"effects-studio/internal/models"
)

const fingerprintLength = 32

// Fingerprint derives a deterministic cache key from an effect
// configuration and the quality mode it renders under. The
// configuration is flattened to dotted parameter paths, sorted, and
// serialized as key=value pairs, so semantically equal configurations
// hash identically regardless of construction order. Angles enter
// wrapped, so 0 and 360 share a key. The seed participates because it
// changes pixels; the extreme-range toggle does not, because it only
// widens validation.
func Fingerprint(cfg *models.EffectConfig, mode models.QualityMode) string {
	pairs := map[string]string{
		"noise.gaussian.enabled":      strconv.FormatBool(cfg.Noise.Gaussian.Enabled),
		"noise.gaussian.variance":     formatFloat(cfg.Noise.Gaussian.Variance),
		"noise.saltPepper.enabled":    strconv.FormatBool(cfg.Noise.SaltPepper.Enabled),
		"noise.saltPepper.amount":     formatFloat(cfg.Noise.SaltPepper.Amount),
		"blur.gaussian.enabled":       strconv.FormatBool(cfg.Blur.Gaussian.Enabled),
		"blur.gaussian.kernelSize":    strconv.Itoa(cfg.Blur.Gaussian.KernelSize),
		"blur.motion.enabled":         strconv.FormatBool(cfg.Blur.Motion.Enabled),
		"blur.motion.degree":          strconv.Itoa(cfg.Blur.Motion.Degree),
		"blur.motion.angle":           strconv.Itoa(models.WrapAngle(cfg.Blur.Motion.Angle)),
		"blur.box.enabled":            strconv.FormatBool(cfg.Blur.Box.Enabled),
		"blur.box.kernelSize":         strconv.Itoa(cfg.Blur.Box.KernelSize),
		"shake.camera.enabled":        strconv.FormatBool(cfg.Shake.Camera.Enabled),
		"shake.camera.intensity":      strconv.Itoa(cfg.Shake.Camera.Intensity),
		"shake.directional.enabled":   strconv.FormatBool(cfg.Shake.Directional.Enabled),
		"shake.directional.intensity": strconv.Itoa(cfg.Shake.Directional.Intensity),
		"shake.directional.direction": string(cfg.Shake.Directional.Direction),
		"motion.distortion.enabled":   strconv.FormatBool(cfg.Motion.Distortion.Enabled),
		"motion.distortion.intensity": strconv.Itoa(cfg.Motion.Distortion.Intensity),
		"motion.distortion.direction": string(cfg.Motion.Distortion.Direction),
		"motion.zoom.enabled":         strconv.FormatBool(cfg.Motion.Zoom.Enabled),
		"motion.zoom.intensity":       strconv.Itoa(cfg.Motion.Zoom.Intensity),
		"seed":                        strconv.FormatInt(cfg.Seed, 10),
		"quality":                     string(mode),
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
