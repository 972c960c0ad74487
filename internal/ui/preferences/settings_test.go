package preferences

import (
	"testing"
	"time"
)

func TestStageAlpha(t *testing.T) {
	tests := []struct {
		opacity float64
		want    uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 127},
		{1, 255},
		{3, 255},
	}
	for _, tt := range tests {
		settings := DefaultSettings()
		settings.StageOpacity = tt.opacity
		if got := settings.StageAlpha(); got != tt.want {
			t.Fatalf("StageAlpha(%v) = %d, want %d", tt.opacity, got, tt.want)
		}
	}
}

func TestCountdownConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.InitialDuration = 90

	cfg := settings.CountdownConfig()
	if cfg.TickInterval != time.Second || cfg.InitialDuration != 90 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
