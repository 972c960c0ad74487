package preferences

import (
	"errors"
	"testing"

	"tickdown/internal/audio"
	"tickdown/internal/core/model"

	"fyne.io/fyne/v2/test"
)

type fakeHandle struct {
	plays    []float64
	released int
}

func (h *fakeHandle) Play(volume float64) { h.plays = append(h.plays, volume) }
func (h *fakeHandle) Release()            { h.released++ }

type fakePlayer struct {
	handles []*fakeHandle
	refs    []model.SoundRef
	err     error
}

func (p *fakePlayer) Acquire(ref model.SoundRef) (audio.Handle, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.refs = append(p.refs, ref)
	handle := &fakeHandle{}
	p.handles = append(p.handles, handle)
	return handle, nil
}

func newTestWindow(t *testing.T) (*Window, *fakePlayer, *[]model.SoundConfig) {
	t.Helper()
	app := test.NewTempApp(t)
	player := &fakePlayer{}
	changes := &[]model.SoundConfig{}
	prefs := New(app, model.DefaultSoundConfig(), player, func(cfg model.SoundConfig) {
		*changes = append(*changes, cfg)
	})
	return prefs, player, changes
}

func TestInitialControls(t *testing.T) {
	prefs, _, changes := newTestWindow(t)

	if !prefs.enabled.Checked || prefs.volume.Value != 0.5 {
		t.Fatalf("unexpected controls enabled=%v volume=%v", prefs.enabled.Checked, prefs.volume.Value)
	}
	if prefs.interval.Selected != "Every second" {
		t.Fatalf("unexpected interval %q", prefs.interval.Selected)
	}
	if prefs.tick.selector.Selected != "Paper Flip" || prefs.end.selector.Selected != "Trumpet Fanfare" {
		t.Fatalf("unexpected sounds %q %q", prefs.tick.selector.Selected, prefs.end.selector.Selected)
	}
	if len(*changes) != 0 {
		t.Fatalf("building the window should not report changes")
	}
}

func TestChangesEmitWholeConfig(t *testing.T) {
	prefs, _, changes := newTestWindow(t)

	prefs.enabled.SetChecked(false)
	prefs.volume.OnChangeEnded(0.8)
	prefs.interval.SetSelected("Every 5 seconds")
	prefs.end.selector.SetSelected("Bell Ring")

	if len(*changes) != 4 {
		t.Fatalf("expected 4 changes, got %d", len(*changes))
	}
	last := (*changes)[3]
	want := model.SoundConfig{
		Enabled:      false,
		Volume:       0.8,
		TickInterval: 5,
		TickSound:    model.Builtin(model.SoundPaper),
		EndSound:     model.Builtin(model.SoundBell),
	}
	if last.Enabled != want.Enabled || last.Volume != want.Volume || last.TickInterval != want.TickInterval ||
		last.TickSound.ID != want.TickSound.ID || last.EndSound.ID != want.EndSound.ID {
		t.Fatalf("got %+v, want %+v", last, want)
	}
	if prefs.Config().EndSound.ID != model.SoundBell {
		t.Fatalf("config not retained")
	}
}

func TestCustomUploadPreviewRemove(t *testing.T) {
	prefs, player, changes := newTestWindow(t)

	if err := prefs.tick.useCustom("knock.wav", []byte("data")); err != nil {
		t.Fatalf("useCustom: %v", err)
	}
	last := (*changes)[len(*changes)-1]
	if !last.TickSound.IsCustom() || last.TickSound.Name != "knock.wav" {
		t.Fatalf("expected custom tick sound, got %+v", last.TickSound)
	}
	if prefs.tick.fileName.Text != "knock.wav" || prefs.tick.selector.Visible() || !prefs.tick.custom.Visible() {
		t.Fatalf("custom row should replace the select")
	}

	test.Tap(prefs.tick.preview)
	if len(player.handles) != 1 || len(player.handles[0].plays) != 1 || player.handles[0].plays[0] != 0.5 {
		t.Fatalf("preview should play at the configured volume")
	}

	test.Tap(prefs.tick.remove)
	last = (*changes)[len(*changes)-1]
	if last.TickSound.IsCustom() || last.TickSound.ID != model.SoundPaper {
		t.Fatalf("remove should revert to paper, got %+v", last.TickSound)
	}
	if player.handles[0].released != 1 {
		t.Fatalf("preview handle should be released once, got %d", player.handles[0].released)
	}
	if !prefs.tick.selector.Visible() || prefs.tick.selector.Selected != "Paper Flip" {
		t.Fatalf("select should return after remove")
	}
}

func TestReplaceCustomReleasesPrevious(t *testing.T) {
	prefs, player, _ := newTestWindow(t)

	_ = prefs.end.useCustom("one.mp3", []byte("1"))
	_ = prefs.end.useCustom("two.mp3", []byte("2"))
	if player.handles[0].released != 1 || player.handles[1].released != 0 {
		t.Fatalf("only the replaced preview should be released")
	}

	prefs.Hide()
	if player.handles[1].released != 1 {
		t.Fatalf("closing the window should release previews")
	}
	if !prefs.Config().EndSound.IsCustom() {
		t.Fatalf("closing the window should keep the custom sound")
	}
}

func TestRejectedUploadKeepsConfig(t *testing.T) {
	prefs, player, changes := newTestWindow(t)
	player.err = audio.ErrUnsupportedFormat

	err := prefs.tick.useCustom("notes.txt", []byte("x"))
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if len(*changes) != 0 || len(player.handles) != 0 {
		t.Fatalf("rejected uploads should not change anything")
	}
	if prefs.tick.selector.Selected != "Paper Flip" {
		t.Fatalf("select should revert, got %q", prefs.tick.selector.Selected)
	}
}

func TestUploadAcquiresOnce(t *testing.T) {
	prefs, player, _ := newTestWindow(t)

	if err := prefs.end.useCustom("horn.mp3", []byte("horn")); err != nil {
		t.Fatalf("useCustom: %v", err)
	}
	if len(player.refs) != 1 || player.refs[0].Name != "horn.mp3" {
		t.Fatalf("upload should be decoded once, got %v", player.refs)
	}
}

func TestPreviewAfterReopen(t *testing.T) {
	prefs, player, _ := newTestWindow(t)

	_ = prefs.tick.useCustom("knock.wav", []byte("data"))
	prefs.Hide()
	prefs.Show()

	test.Tap(prefs.tick.preview)
	if len(player.handles) != 2 {
		t.Fatalf("preview should acquire the custom sound again, got %d handles", len(player.handles))
	}
	if got := player.refs[1]; !got.IsCustom() || got.Name != "knock.wav" {
		t.Fatalf("unexpected preview ref %+v", got)
	}
	if plays := player.handles[1].plays; len(plays) != 1 || plays[0] != 0.5 {
		t.Fatalf("expected one preview play, got %v", plays)
	}

	test.Tap(prefs.end.preview)
	if len(player.handles) != 2 {
		t.Fatalf("built-in slots have no preview to acquire")
	}
}
