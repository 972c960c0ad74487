package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tickdown/internal/core/model"
	"tickdown/internal/ui/preferences"
	"tickdown/resources"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "config.yaml"

type yamlSound struct {
	Enabled             *bool    `yaml:"enabled"`
	Volume              *float64 `yaml:"volume"`
	TickIntervalSeconds int      `yaml:"tick_interval_seconds"`
	TickSound           string   `yaml:"tick_sound"`
	EndSound            string   `yaml:"end_sound"`
}

type yamlPanel struct {
	X *float32 `yaml:"x"`
	Y *float32 `yaml:"y"`
}

type yamlStage struct {
	Width   float32  `yaml:"width"`
	Height  float32  `yaml:"height"`
	Opacity *float64 `yaml:"opacity"`
}

type yamlSettings struct {
	InitialDurationSeconds int       `yaml:"initial_duration_seconds"`
	PresetsMinutes         []int     `yaml:"presets_minutes"`
	Sound                  yamlSound `yaml:"sound"`
	Panel                  yamlPanel `yaml:"panel"`
	Stage                  yamlStage `yaml:"stage"`
}

// LoadSettings layers the built-in defaults and the YAML file at path.
// A missing file is not an error. On error the returned settings are still usable.
func LoadSettings(path string) (preferences.Settings, error) {
	settings, err := BuiltinSettings()
	if err != nil {
		return settings, err
	}
	if path == "" {
		return settings, nil
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	if err := applyYamlSettings(&settings, fileData, filepath.Dir(path)); err != nil {
		return settings, err
	}
	return settings, nil
}

// BuiltinSettings returns the embedded defaults.
func BuiltinSettings() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := resources.Defaults()
	if err != nil {
		return settings, err
	}
	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse built-in defaults: %w", err)
	}
	if err := applyYamlSettings(&settings, fileData, ""); err != nil {
		return settings, err
	}
	return settings, nil
}

// DefaultConfigPath returns <UserConfigDir>/<appName>/config.yaml.
func DefaultConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings, baseDir string) error {
	if fileData.InitialDurationSeconds > 0 {
		settings.InitialDuration = fileData.InitialDurationSeconds
	}

	if len(fileData.PresetsMinutes) > 0 {
		presets := make([]int, 0, len(fileData.PresetsMinutes))
		for _, minutes := range fileData.PresetsMinutes {
			if minutes > 0 {
				presets = append(presets, minutes)
			}
		}
		if len(presets) > 0 {
			settings.Presets = presets
		}
	}

	sound := settings.Sound
	if fileData.Sound.Enabled != nil {
		sound.Enabled = *fileData.Sound.Enabled
	}
	if fileData.Sound.Volume != nil {
		sound.Volume = *fileData.Sound.Volume
	}
	if fileData.Sound.TickIntervalSeconds > 0 {
		sound.TickInterval = fileData.Sound.TickIntervalSeconds
	}

	var errs []error
	if fileData.Sound.TickSound != "" {
		ref, err := resolveSound(fileData.Sound.TickSound, model.TickSounds, baseDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("tick_sound: %w", err))
		} else {
			sound.TickSound = ref
		}
	}
	if fileData.Sound.EndSound != "" {
		ref, err := resolveSound(fileData.Sound.EndSound, model.EndSounds, baseDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("end_sound: %w", err))
		} else {
			sound.EndSound = ref
		}
	}
	settings.Sound = sound.Normalize()

	if fileData.Panel.X != nil && *fileData.Panel.X >= 0 {
		settings.PanelX = *fileData.Panel.X
	}
	if fileData.Panel.Y != nil && *fileData.Panel.Y >= 0 {
		settings.PanelY = *fileData.Panel.Y
	}

	if fileData.Stage.Width > 0 {
		settings.StageWidth = fileData.Stage.Width
	}
	if fileData.Stage.Height > 0 {
		settings.StageHeight = fileData.Stage.Height
	}
	if fileData.Stage.Opacity != nil {
		opacity := *fileData.Stage.Opacity
		if opacity < 0.2 {
			opacity = 0.2
		}
		if opacity > 1 {
			opacity = 1
		}
		settings.StageOpacity = opacity
	}

	return errors.Join(errs...)
}

// resolveSound maps a built-in name to its reference, or reads any other
// value as an audio file path relative to the config directory.
func resolveSound(value string, builtins []model.SoundID, baseDir string) (model.SoundRef, error) {
	for _, id := range builtins {
		if string(id) == value {
			return model.Builtin(id), nil
		}
	}

	path := value
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SoundRef{}, fmt.Errorf("read sound file: %w", err)
	}
	return model.Custom(filepath.Base(path), data), nil
}
