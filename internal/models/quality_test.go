package models

import "testing"

func TestQualityModeMaxEdge(t *testing.T) {
	tests := []struct {
		mode QualityMode
		edge int
		jpeg int
	}{
		{QualityFast, 300, 75},
		{QualityBalanced, 500, 85},
		{QualityBest, 800, 95},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := tt.mode.MaxEdge(); got != tt.edge {
				t.Errorf("MaxEdge() = %d, want %d", got, tt.edge)
			}
			if got := tt.mode.JPEGQuality(); got != tt.jpeg {
				t.Errorf("JPEGQuality() = %d, want %d", got, tt.jpeg)
			}
		})
	}
}

func TestParseQualityMode(t *testing.T) {
	if _, err := ParseQualityMode("balanced"); err != nil {
		t.Errorf("balanced should parse: %v", err)
	}
	if _, err := ParseQualityMode("ultra"); err == nil {
		t.Error("unknown mode should be rejected")
	}
	if _, err := ParseQualityMode(""); err == nil {
		t.Error("empty mode should be rejected")
	}
}

func TestAnyEnabled(t *testing.T) {
	cfg := DefaultEffectConfig()
	if cfg.AnyEnabled() {
		t.Error("default configuration has no effects enabled")
	}

	cfg.Motion.Distortion.Enabled = true
	if !cfg.AnyEnabled() {
		t.Error("AnyEnabled should see the enabled effect")
	}
}
