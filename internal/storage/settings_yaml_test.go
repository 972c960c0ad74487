package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tickdown/internal/core/model"
	"tickdown/internal/ui/preferences"
)

func TestBuiltinSettingsMatchDefaults(t *testing.T) {
	got, err := BuiltinSettings()
	if err != nil {
		t.Fatalf("BuiltinSettings: %v", err)
	}
	if !reflect.DeepEqual(got, preferences.DefaultSettings()) {
		t.Fatalf("embedded defaults drifted:\n got %+v\nwant %+v", got, preferences.DefaultSettings())
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	got, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if got.InitialDuration != 300 {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ding.mp3"), []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
initial_duration_seconds: 90
presets_minutes: [2, 0, 4]
sound:
  enabled: false
  volume: 1.5
  tick_interval_seconds: 5
  tick_sound: clock
  end_sound: ding.mp3
panel:
  x: 100
  y: -4
stage:
  width: 640
  opacity: 0.05
`)

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	if got.InitialDuration != 90 {
		t.Fatalf("duration: %d", got.InitialDuration)
	}
	if !reflect.DeepEqual(got.Presets, []int{2, 4}) {
		t.Fatalf("presets: %v", got.Presets)
	}
	if got.Sound.Enabled || got.Sound.Volume != 1 || got.Sound.TickInterval != 5 {
		t.Fatalf("sound: %+v", got.Sound)
	}
	if got.Sound.TickSound.ID != model.SoundClock {
		t.Fatalf("tick sound: %+v", got.Sound.TickSound)
	}
	if !got.Sound.EndSound.IsCustom() || got.Sound.EndSound.Name != "ding.mp3" {
		t.Fatalf("end sound: %+v", got.Sound.EndSound)
	}
	if got.PanelX != 100 || got.PanelY != 20 {
		t.Fatalf("panel: %v,%v", got.PanelX, got.PanelY)
	}
	if got.StageWidth != 640 || got.StageHeight != 360 || got.StageOpacity != 0.2 {
		t.Fatalf("stage: %v x %v @ %v", got.StageWidth, got.StageHeight, got.StageOpacity)
	}
}

func TestLoadSettingsMissingSoundFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "sound:\n  tick_sound: nowhere.mp3\n")

	got, err := LoadSettings(path)
	if err == nil || !strings.Contains(err.Error(), "tick_sound") {
		t.Fatalf("expected tick_sound error, got %v", err)
	}
	if got.Sound.TickSound.ID != model.SoundPaper {
		t.Fatalf("expected fallback to paper, got %+v", got.Sound.TickSound)
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "presets_minutes: [1, 2\n")

	got, err := LoadSettings(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if got.InitialDuration != 300 {
		t.Fatalf("expected usable defaults on error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
