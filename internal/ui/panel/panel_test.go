package panel

import (
	"testing"

	"tickdown/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/jonboulle/clockwork"
)

type recorder struct {
	durations []int
	toggles   int
}

func (r *recorder) SetDuration(seconds int) { r.durations = append(r.durations, seconds) }
func (r *recorder) ToggleRun()              { r.toggles++ }

func newTestPanel(t *testing.T) (*Panel, *recorder) {
	t.Helper()
	test.NewTempApp(t)
	ctrl := &recorder{}
	p := New(ctrl, Config{
		Presets:  []int{1, 5},
		Position: fyne.NewPos(20, 20),
		Clock:    clockwork.NewFakeClock(),
	})
	t.Cleanup(p.Close)
	test.NewTempWindow(t, p)
	return p, ctrl
}

func TestSecondsFromInput(t *testing.T) {
	tests := []struct {
		minutes string
		seconds string
		want    int
	}{
		{"2", "5", 125},
		{"", "", 0},
		{"x", "-3", 0},
		{"0", "59", 59},
		{"60", "10", 10},
		{" 1 ", "0", 60},
		{"1.5", "7", 7},
	}
	for _, tt := range tests {
		if got := SecondsFromInput(tt.minutes, tt.seconds); got != tt.want {
			t.Fatalf("SecondsFromInput(%q, %q) = %d, want %d", tt.minutes, tt.seconds, got, tt.want)
		}
	}
}

func TestPresetLabel(t *testing.T) {
	if got := PresetLabel(1); got != "1 minute" {
		t.Fatalf("got %q", got)
	}
	if got := PresetLabel(15); got != "15 minutes" {
		t.Fatalf("got %q", got)
	}
}

func TestToggleButton(t *testing.T) {
	p, ctrl := newTestPanel(t)

	test.Tap(p.toggle)
	if ctrl.toggles != 1 {
		t.Fatalf("expected one toggle, got %d", ctrl.toggles)
	}
}

func TestSubmitTimeInput(t *testing.T) {
	p, ctrl := newTestPanel(t)

	p.minutes.SetText("2")
	p.seconds.SetText("5")
	p.submit()

	if len(ctrl.durations) != 1 || ctrl.durations[0] != 125 {
		t.Fatalf("unexpected durations %v", ctrl.durations)
	}
	if p.minutes.Text != "" || p.seconds.Text != "" {
		t.Fatalf("entries should be cleared after submit")
	}
}

func TestPresetsPopover(t *testing.T) {
	p, ctrl := newTestPanel(t)
	if p.presets.Visible() {
		t.Fatalf("presets should start hidden")
	}

	test.Tap(p.presetsButton)
	if !p.presets.Visible() {
		t.Fatalf("presets should open")
	}

	test.Tap(p.presetButtons[1])
	if len(ctrl.durations) != 1 || ctrl.durations[0] != 300 {
		t.Fatalf("unexpected durations %v", ctrl.durations)
	}
	if p.presets.Visible() {
		t.Fatalf("presets should close after a selection")
	}
}

func TestSoundButtonClosesPresets(t *testing.T) {
	p, _ := newTestPanel(t)
	opened := 0
	p.SetOnSoundSettings(func() { opened++ })

	test.Tap(p.presetsButton)
	test.Tap(p.soundButton)

	if opened != 1 || p.presets.Visible() {
		t.Fatalf("sound settings should open alone (opened=%d)", opened)
	}
}

func TestRender(t *testing.T) {
	p, _ := newTestPanel(t)

	p.Render(model.TimerState{Remaining: 299, Running: true})
	if p.display.Text != "4:59" || p.toggle.Text != "Stop" {
		t.Fatalf("got display %q toggle %q", p.display.Text, p.toggle.Text)
	}
	if p.pulse.Running() {
		t.Fatalf("pulse should be idle while counting")
	}

	p.Render(model.TimerState{Remaining: 0})
	if p.display.Text != "0:00" || p.toggle.Text != "Start" {
		t.Fatalf("got display %q toggle %q", p.display.Text, p.toggle.Text)
	}
	if !p.pulse.Running() {
		t.Fatalf("pulse should run at zero")
	}

	p.Render(model.TimerState{Remaining: 60})
	if p.pulse.Running() {
		t.Fatalf("pulse should stop once a duration is set")
	}
}

func TestDragWithinBounds(t *testing.T) {
	p, _ := newTestPanel(t)
	p.SetBounds(fyne.NewSize(1000, 800))
	var moved []fyne.Position
	p.SetOnMoved(func(pos fyne.Position) { moved = append(moved, pos) })

	p.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(30, 10)})
	p.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(5, 5)})
	if got := p.Position(); got != fyne.NewPos(55, 35) {
		t.Fatalf("unexpected position %v", got)
	}

	p.DragEnd()
	p.DragEnd()
	if len(moved) != 1 || moved[0] != fyne.NewPos(55, 35) {
		t.Fatalf("expected a single move notification, got %v", moved)
	}

	p.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(-500, -500)})
	if got := p.Position(); got != fyne.NewPos(0, 0) {
		t.Fatalf("drag should clamp at the origin, got %v", got)
	}

	p.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(5000, 5000)})
	size := p.MinSize()
	if got := p.Position(); got.X != 1000-size.Width || got.Y != 800-size.Height {
		t.Fatalf("drag should clamp at the far edge, got %v", got)
	}
}
