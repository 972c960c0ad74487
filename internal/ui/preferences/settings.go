package preferences

import (
	"time"

	"tickdown/internal/core/countdown"
	"tickdown/internal/core/model"
)

// Settings defines the startup configuration of the widget.
type Settings struct {
	InitialDuration int
	Presets         []int
	Sound           model.SoundConfig

	PanelX float32
	PanelY float32

	StageWidth   float32
	StageHeight  float32
	StageOpacity float64
}

// DefaultSettings returns default settings for Tickdown.
func DefaultSettings() Settings {
	return Settings{
		InitialDuration: model.DefaultDuration,
		Presets:         []int{1, 3, 5, 10, 15, 30},
		Sound:           model.DefaultSoundConfig(),
		PanelX:          20,
		PanelY:          20,
		StageWidth:      480,
		StageHeight:     360,
		StageOpacity:    0.9,
	}
}

// CountdownConfig converts settings to countdown engine options.
func (settings Settings) CountdownConfig() countdown.Config {
	return countdown.Config{
		TickInterval:    time.Second,
		InitialDuration: settings.InitialDuration,
	}
}

// StageAlpha converts the stage opacity into an 8-bit alpha.
func (settings Settings) StageAlpha() uint8 {
	opacity := settings.StageOpacity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
