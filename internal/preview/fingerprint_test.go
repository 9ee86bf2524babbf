package preview

import (
	"encoding/json"
	"testing"

	"effects-studio/internal/models"
)

func TestFingerprintIgnoresKeyOrder(t *testing.T) {
	first := `{
		"noise": {"gaussian": {"enabled": true, "variance": 0.05}},
		"blur": {"motion": {"enabled": true, "degree": 20, "angle": 45}},
		"seed": 7
	}`
	second := `{
		"seed": 7,
		"blur": {"motion": {"angle": 45, "degree": 20, "enabled": true}},
		"noise": {"gaussian": {"variance": 0.05, "enabled": true}}
	}`

	var a, b models.EffectConfig
	if err := json.Unmarshal([]byte(first), &a); err != nil {
		t.Fatalf("unmarshal first: %v", err)
	}
	if err := json.Unmarshal([]byte(second), &b); err != nil {
		t.Fatalf("unmarshal second: %v", err)
	}

	if Fingerprint(&a, models.QualityBalanced) != Fingerprint(&b, models.QualityBalanced) {
		t.Error("key order changed the fingerprint")
	}
}

func TestFingerprintIsStableAndFixedLength(t *testing.T) {
	cfg := models.DefaultEffectConfig()

	fp := Fingerprint(cfg, models.QualityFast)
	if len(fp) != fingerprintLength {
		t.Fatalf("fingerprint length %d, expected %d", len(fp), fingerprintLength)
	}
	for _, r := range fp {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("fingerprint contains non-hex rune %q", r)
		}
	}

	if Fingerprint(cfg, models.QualityFast) != fp {
		t.Error("repeated hashing of the same config diverged")
	}
}

func TestFingerprintChangesWithAnyParameter(t *testing.T) {
	baseline := Fingerprint(models.DefaultEffectConfig(), models.QualityBalanced)

	tests := []struct {
		name   string
		mutate func(*models.EffectConfig)
	}{
		{name: "enable flag", mutate: func(c *models.EffectConfig) { c.Noise.Gaussian.Enabled = true }},
		{name: "variance", mutate: func(c *models.EffectConfig) { c.Noise.Gaussian.Variance = 0.03 }},
		{name: "salt amount", mutate: func(c *models.EffectConfig) { c.Noise.SaltPepper.Amount = 0.02 }},
		{name: "kernel size", mutate: func(c *models.EffectConfig) { c.Blur.Gaussian.KernelSize = 9 }},
		{name: "motion degree", mutate: func(c *models.EffectConfig) { c.Blur.Motion.Degree = 21 }},
		{name: "motion angle", mutate: func(c *models.EffectConfig) { c.Blur.Motion.Angle = 90 }},
		{name: "shake intensity", mutate: func(c *models.EffectConfig) { c.Shake.Camera.Intensity = 6 }},
		{name: "shake direction", mutate: func(c *models.EffectConfig) { c.Shake.Directional.Direction = models.ShakeVertical }},
		{name: "distortion direction", mutate: func(c *models.EffectConfig) { c.Motion.Distortion.Direction = models.DistortionDiagonal }},
		{name: "zoom intensity", mutate: func(c *models.EffectConfig) { c.Motion.Zoom.Intensity = 7 }},
		{name: "seed", mutate: func(c *models.EffectConfig) { c.Seed = 4242 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.DefaultEffectConfig()
			tt.mutate(cfg)
			if Fingerprint(cfg, models.QualityBalanced) == baseline {
				t.Error("mutated config hashed equal to baseline")
			}
		})
	}
}

func TestFingerprintCoversQualityModeButNotExtremeRange(t *testing.T) {
	cfg := models.DefaultEffectConfig()

	fast := Fingerprint(cfg, models.QualityFast)
	best := Fingerprint(cfg, models.QualityBest)
	if fast == best {
		t.Error("quality mode did not change the fingerprint")
	}

	widened := models.DefaultEffectConfig()
	widened.ExtremeMode = true
	if Fingerprint(widened, models.QualityFast) != fast {
		t.Error("extreme-range toggle changed the fingerprint despite identical output")
	}
}

func TestFingerprintWrapsMotionAngle(t *testing.T) {
	tests := []struct {
		name string
		a, b int
	}{
		{name: "full turn", a: 0, b: 360},
		{name: "negative", a: 270, b: -90},
		{name: "multiple turns", a: 40, b: 760},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := models.DefaultEffectConfig()
			first.Blur.Motion.Angle = tt.a
			second := models.DefaultEffectConfig()
			second.Blur.Motion.Angle = tt.b

			if Fingerprint(first, models.QualityBalanced) != Fingerprint(second, models.QualityBalanced) {
				t.Errorf("angles %d and %d should share a cache key", tt.a, tt.b)
			}
		})
	}
}
