package models

// ShakeDirection selects which axes a directional shake displaces.
type ShakeDirection string

const (
	ShakeHorizontal ShakeDirection = "horizontal"
	ShakeVertical   ShakeDirection = "vertical"
	ShakeBoth       ShakeDirection = "both"
)

// DistortionDirection selects the smear axis for motion distortion.
type DistortionDirection string

const (
	DistortionHorizontal DistortionDirection = "horizontal"
	DistortionVertical   DistortionDirection = "vertical"
	DistortionDiagonal   DistortionDirection = "diagonal"
)

// EffectConfig describes one rendering request. Categories apply in a
// fixed order regardless of field order here: noise, blur, shake,
// motion. Disabled effects are skipped and their parameters ignored.
type EffectConfig struct {
	Noise  NoiseConfig  `json:"noise"`
	Blur   BlurConfig   `json:"blur"`
	Shake  ShakeConfig  `json:"shake"`
	Motion MotionConfig `json:"motion"`

	// Seed drives every stochastic effect. Equal configurations with
	// equal seeds produce identical output.
	Seed int64 `json:"seed,omitempty"`

	// ExtremeMode widens the accepted parameter ranges. It changes
	// validation only, never the rendered result.
	ExtremeMode bool `json:"extremeMode,omitempty"`
}

type NoiseConfig struct {
	Gaussian   GaussianNoiseParams `json:"gaussian"`
	SaltPepper SaltPepperParams    `json:"saltPepper"`
}

type BlurConfig struct {
	Gaussian GaussianBlurParams `json:"gaussian"`
	Motion   MotionBlurParams   `json:"motion"`
	Box      BoxBlurParams      `json:"box"`
}

type ShakeConfig struct {
	Camera      CameraShakeParams      `json:"camera"`
	Directional DirectionalShakeParams `json:"directional"`
}

type MotionConfig struct {
	Distortion MotionDistortionParams `json:"distortion"`
	Zoom       ZoomMotionParams       `json:"zoom"`
}

type GaussianNoiseParams struct {
	Enabled  bool    `json:"enabled"`
	Variance float64 `json:"variance"`
}

type SaltPepperParams struct {
	Enabled bool    `json:"enabled"`
	Amount  float64 `json:"amount"`
}

type GaussianBlurParams struct {
	Enabled    bool `json:"enabled"`
	KernelSize int  `json:"kernelSize"`
}

type MotionBlurParams struct {
	Enabled bool `json:"enabled"`
	Degree  int  `json:"degree"`
	Angle   int  `json:"angle"`
}

type BoxBlurParams struct {
	Enabled    bool `json:"enabled"`
	KernelSize int  `json:"kernelSize"`
}

type CameraShakeParams struct {
	Enabled   bool `json:"enabled"`
	Intensity int  `json:"intensity"`
}

type DirectionalShakeParams struct {
	Enabled   bool           `json:"enabled"`
	Intensity int            `json:"intensity"`
	Direction ShakeDirection `json:"direction"`
}

type MotionDistortionParams struct {
	Enabled   bool                `json:"enabled"`
	Intensity int                 `json:"intensity"`
	Direction DistortionDirection `json:"direction"`
}

type ZoomMotionParams struct {
	Enabled   bool `json:"enabled"`
	Intensity int  `json:"intensity"`
}

// DefaultEffectConfig returns a configuration with every effect
// disabled and all parameters at their defaults.
func DefaultEffectConfig() *EffectConfig {
	return &EffectConfig{
		Noise: NoiseConfig{
			Gaussian:   GaussianNoiseParams{Variance: 0.02},
			SaltPepper: SaltPepperParams{Amount: 0.01},
		},
		Blur: BlurConfig{
			Gaussian: GaussianBlurParams{KernelSize: 7},
			Motion:   MotionBlurParams{Degree: 20, Angle: 45},
			Box:      BoxBlurParams{KernelSize: 5},
		},
		Shake: ShakeConfig{
			Camera:      CameraShakeParams{Intensity: 5},
			Directional: DirectionalShakeParams{Intensity: 8, Direction: ShakeBoth},
		},
		Motion: MotionConfig{
			Distortion: MotionDistortionParams{Intensity: 15, Direction: DistortionHorizontal},
			Zoom:       ZoomMotionParams{Intensity: 5},
		},
		Seed: 1337,
	}
}

// WrapAngle folds any angle in degrees onto [0,360). Angle parameters
// are never rejected for magnitude; 400 means 40 and -90 means 270.
func WrapAngle(deg int) int {
	return ((deg % 360) + 360) % 360
}

// AnyEnabled reports whether at least one effect would run.
func (c *EffectConfig) AnyEnabled() bool {
	return c.Noise.Gaussian.Enabled ||
		c.Noise.SaltPepper.Enabled ||
		c.Blur.Gaussian.Enabled ||
		c.Blur.Motion.Enabled ||
		c.Blur.Box.Enabled ||
		c.Shake.Camera.Enabled ||
		c.Shake.Directional.Enabled ||
		c.Motion.Distortion.Enabled ||
		c.Motion.Zoom.Enabled
}
