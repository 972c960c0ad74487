package preferences

import (
	"fmt"
	"io"

	"tickdown/internal/audio"
	"tickdown/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"
)

const customLabel = "Custom Sound"

var soundLabels = map[model.SoundID]string{
	model.SoundPaper:   "Paper Flip",
	model.SoundClock:   "Clock Tick",
	model.SoundDigital: "Digital Beep",
	model.SoundTrumpet: "Trumpet Fanfare",
	model.SoundBell:    "Bell Ring",
	model.SoundChime:   "Wind Chime",
}

var intervalLabels = []string{"Every second", "Every 2 seconds", "Every 5 seconds"}

// Window handles the sound settings UI. Every change is reported as a
// complete SoundConfig.
type Window struct {
	window   fyne.Window
	config   model.SoundConfig
	player   audio.Player
	onChange func(model.SoundConfig)

	enabled  *widget.Check
	volume   *widget.Slider
	interval *widget.Select
	tick     *soundPicker
	end      *soundPicker
}

// soundPicker is the built-in select plus the custom upload row for one sound slot.
type soundPicker struct {
	prefs    *Window
	builtins []model.SoundID
	fallback model.SoundID
	selector *widget.Select
	fileName *widget.Label
	upload   *widget.Button
	preview  *widget.Button
	remove   *widget.Button
	custom   *fyne.Container
	handle   audio.Handle
	current  model.SoundID
	set      func(*model.SoundConfig, model.SoundRef)
	get      func(model.SoundConfig) model.SoundRef
}

// New creates a sound settings window.
func New(app fyne.App, config model.SoundConfig, player audio.Player, onChange func(model.SoundConfig)) *Window {
	window := app.NewWindow("Tickdown Sound Settings")

	prefs := &Window{
		window:   window,
		config:   config.Normalize(),
		player:   player,
		onChange: onChange,
	}

	prefs.enabled = widget.NewCheck("Sound effects", func(checked bool) {
		prefs.apply(func(cfg *model.SoundConfig) { cfg.Enabled = checked })
	})

	prefs.volume = widget.NewSlider(0, 1)
	prefs.volume.Step = 0.1
	prefs.volume.OnChangeEnded = func(value float64) {
		prefs.apply(func(cfg *model.SoundConfig) { cfg.Volume = value })
	}

	prefs.interval = widget.NewSelect(intervalLabels, func(label string) {
		for i, candidate := range intervalLabels {
			if candidate == label {
				seconds := model.TickIntervals[i]
				prefs.apply(func(cfg *model.SoundConfig) { cfg.TickInterval = seconds })
			}
		}
	})

	prefs.tick = prefs.newSoundPicker(model.TickSounds, model.SoundPaper,
		func(cfg *model.SoundConfig, ref model.SoundRef) { cfg.TickSound = ref },
		func(cfg model.SoundConfig) model.SoundRef { return cfg.TickSound })
	prefs.end = prefs.newSoundPicker(model.EndSounds, model.SoundTrumpet,
		func(cfg *model.SoundConfig, ref model.SoundRef) { cfg.EndSound = ref },
		func(cfg model.SoundConfig) model.SoundRef { return cfg.EndSound })

	prefs.sync()

	form := container.NewVBox(
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.enabled,
		widget.NewLabel("Volume"),
		prefs.volume,
		widget.NewLabel("Tick Interval"),
		prefs.interval,
		widget.NewLabel("Tick Sound"),
		prefs.tick.selector,
		prefs.tick.custom,
		widget.NewLabel("End Sound"),
		prefs.end.selector,
		prefs.end.custom,
	)

	closeButton := widget.NewButton("Close", prefs.Hide)
	window.SetContent(container.NewBorder(nil, container.NewHBox(closeButton), nil, nil, form))
	window.SetCloseIntercept(prefs.Hide)
	window.Resize(fyne.NewSize(320, 460))

	return prefs
}

// Show displays the window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Hide closes the window and releases preview audio.
func (prefs *Window) Hide() {
	prefs.tick.releasePreview()
	prefs.end.releasePreview()
	prefs.window.Hide()
}

// Config returns the settings last reported.
func (prefs *Window) Config() model.SoundConfig {
	return prefs.config
}

func (prefs *Window) apply(mutate func(*model.SoundConfig)) {
	next := prefs.config
	mutate(&next)
	next = next.Normalize()
	prefs.config = next
	if prefs.onChange != nil {
		prefs.onChange(next)
	}
}

// acquire validates ref through the player. Without a player it only
// validates, and the returned handle is nil.
func (prefs *Window) acquire(ref model.SoundRef) (audio.Handle, error) {
	if prefs.player == nil {
		return nil, audio.Validate(ref.Name, ref.Data)
	}
	return prefs.player.Acquire(ref)
}

// sync pushes the current config into the controls without reporting changes.
func (prefs *Window) sync() {
	onEnabled := prefs.enabled.OnChanged
	prefs.enabled.OnChanged = nil
	prefs.enabled.SetChecked(prefs.config.Enabled)
	prefs.enabled.OnChanged = onEnabled

	prefs.volume.Value = prefs.config.Volume
	prefs.volume.Refresh()

	for i, seconds := range model.TickIntervals {
		if seconds == prefs.config.TickInterval {
			onInterval := prefs.interval.OnChanged
			prefs.interval.OnChanged = nil
			prefs.interval.SetSelected(intervalLabels[i])
			prefs.interval.OnChanged = onInterval
		}
	}

	prefs.tick.sync()
	prefs.end.sync()
}

func (prefs *Window) newSoundPicker(builtins []model.SoundID, fallback model.SoundID,
	set func(*model.SoundConfig, model.SoundRef), get func(model.SoundConfig) model.SoundRef) *soundPicker {
	picker := &soundPicker{
		prefs:    prefs,
		builtins: builtins,
		fallback: fallback,
		set:      set,
		get:      get,
		current:  fallback,
	}

	options := make([]string, 0, len(builtins)+1)
	for _, id := range builtins {
		options = append(options, soundLabels[id])
	}
	options = append(options, customLabel)

	picker.selector = widget.NewSelect(options, picker.selected)
	picker.fileName = widget.NewLabel("")
	picker.fileName.Truncation = fyne.TextTruncateEllipsis
	picker.upload = widget.NewButtonWithIcon("Upload", theme.UploadIcon(), picker.openFile)
	picker.preview = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), picker.playPreview)
	picker.remove = widget.NewButtonWithIcon("", theme.CancelIcon(), picker.removeCustom)
	picker.custom = container.NewBorder(nil, nil, nil, container.NewHBox(picker.upload, picker.preview, picker.remove), picker.fileName)
	return picker
}

func (picker *soundPicker) sync() {
	ref := picker.get(picker.prefs.config)
	onChanged := picker.selector.OnChanged
	picker.selector.OnChanged = nil
	if ref.IsCustom() {
		picker.selector.SetSelected(customLabel)
		picker.fileName.SetText(ref.Name)
		picker.selector.Hide()
		picker.custom.Show()
	} else {
		picker.current = ref.ID
		picker.selector.SetSelected(soundLabels[ref.ID])
		picker.fileName.SetText("")
		picker.selector.Show()
		picker.custom.Hide()
	}
	picker.selector.OnChanged = onChanged
}

func (picker *soundPicker) selected(label string) {
	if label == customLabel {
		picker.openFile()
		return
	}
	for _, id := range picker.builtins {
		if soundLabels[id] == label {
			picker.current = id
			picker.prefs.apply(func(cfg *model.SoundConfig) { picker.set(cfg, model.Builtin(id)) })
			return
		}
	}
}

func (picker *soundPicker) openFile() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, picker.prefs.window)
			picker.sync()
			return
		}
		if reader == nil {
			picker.sync()
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(io.LimitReader(reader, audio.MaxUploadSize+1))
		if err != nil {
			dialog.ShowError(fmt.Errorf("read %s: %w", reader.URI().Name(), err), picker.prefs.window)
			picker.sync()
			return
		}
		if err := picker.useCustom(reader.URI().Name(), data); err != nil {
			dialog.ShowError(err, picker.prefs.window)
		}
	}, picker.prefs.window)
	open.SetFilter(storage.NewExtensionFileFilter(audio.Extensions))
	open.Show()
}

// useCustom validates uploaded audio and switches the slot to it. Acquiring
// the preview is the validation, so the upload is decoded once.
func (picker *soundPicker) useCustom(name string, data []byte) error {
	ref := model.Custom(name, data)
	handle, err := picker.prefs.acquire(ref)
	if err != nil {
		picker.sync()
		return err
	}

	picker.releasePreview()
	picker.handle = handle

	picker.prefs.apply(func(cfg *model.SoundConfig) { picker.set(cfg, ref) })
	picker.sync()
	return nil
}

// playPreview plays the custom sound, acquiring it again if the window
// released it on close.
func (picker *soundPicker) playPreview() {
	if picker.handle == nil {
		ref := picker.get(picker.prefs.config)
		if !ref.IsCustom() {
			return
		}
		handle, err := picker.prefs.acquire(ref)
		if err != nil {
			log.Warn().Err(err).Str("file", ref.Name).Msg("preview unavailable")
			return
		}
		picker.handle = handle
	}
	if picker.handle != nil {
		picker.handle.Play(picker.prefs.config.Volume)
	}
}

func (picker *soundPicker) removeCustom() {
	picker.releasePreview()
	picker.current = picker.fallback
	picker.prefs.apply(func(cfg *model.SoundConfig) { picker.set(cfg, model.Builtin(picker.fallback)) })
	picker.sync()
}

func (picker *soundPicker) releasePreview() {
	if picker.handle != nil {
		picker.handle.Release()
		picker.handle = nil
	}
}
