package panel

import (
	"context"
	"image/color"

	"tickdown/internal/core/countdown"
	"tickdown/internal/core/model"
	"tickdown/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/jonboulle/clockwork"
)

// Controller receives the commands issued by the panel.
type Controller interface {
	SetDuration(seconds int)
	ToggleRun()
}

// Config defines panel contents and placement.
type Config struct {
	Presets  []int
	Position fyne.Position
	Width    float32
	Clock    clockwork.Clock
}

// Panel is the draggable countdown widget.
type Panel struct {
	widget.BaseWidget

	controller Controller
	config     Config

	background    *canvas.Rectangle
	display       *canvas.Text
	minutes       *widget.Entry
	seconds       *widget.Entry
	toggle        *widget.Button
	soundButton   *widget.Button
	presetsButton *widget.Button
	presets       *fyne.Container
	presetButtons []*widget.Button
	content       *fyne.Container

	onSoundSettings func()
	onMoved         func(fyne.Position)

	position fyne.Position
	bounds   fyne.Size
	dragging bool
	pulse    *animation.Engine
}

var (
	panelColor   = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	displayColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const defaultWidth = float32(200)

// New creates a panel bound to controller.
func New(controller Controller, config Config) *Panel {
	if config.Width <= 0 {
		config.Width = defaultWidth
	}

	p := &Panel{
		controller: controller,
		config:     config,
		position:   config.Position,
	}
	p.ExtendBaseWidget(p)

	p.background = canvas.NewRectangle(panelColor)
	p.background.CornerRadius = 12

	p.display = canvas.NewText(countdown.Format(0), displayColor)
	p.display.Alignment = fyne.TextAlignCenter
	p.display.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	p.display.TextSize = 28

	p.minutes = widget.NewEntry()
	p.minutes.SetPlaceHolder("Min")
	p.minutes.OnSubmitted = func(string) { p.submit() }
	p.seconds = widget.NewEntry()
	p.seconds.SetPlaceHolder("Sec")
	p.seconds.OnSubmitted = func(string) { p.submit() }

	p.toggle = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		p.controller.ToggleRun()
	})

	p.soundButton = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), p.showSoundSettings)
	p.soundButton.Importance = widget.LowImportance
	p.presetsButton = widget.NewButtonWithIcon("", theme.SettingsIcon(), p.togglePresets)
	p.presetsButton.Importance = widget.LowImportance

	p.presets = container.NewVBox()
	for _, minutes := range config.Presets {
		seconds := minutes * 60
		button := widget.NewButton(PresetLabel(minutes), func() {
			p.selectDuration(seconds)
		})
		button.Alignment = widget.ButtonAlignLeading
		button.Importance = widget.LowImportance
		p.presetButtons = append(p.presetButtons, button)
		p.presets.Add(button)
	}
	p.presets.Hide()

	header := container.NewHBox(widget.NewIcon(theme.HistoryIcon()), layout.NewSpacer(), p.soundButton, p.presetsButton)

	p.content = container.NewVBox(
		header,
		p.display,
		container.NewGridWithColumns(2, p.minutes, p.seconds),
		p.toggle,
		p.presets,
	)

	p.pulse = animation.New(animation.DefaultConfig(), config.Clock, p.setOpacity)
	return p
}

// CreateRenderer implements fyne.Widget.
func (p *Panel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(p.background, container.NewPadded(p.content)))
}

// MinSize keeps the panel at its configured width.
func (p *Panel) MinSize() fyne.Size {
	size := p.BaseWidget.MinSize()
	if size.Width < p.config.Width {
		size.Width = p.config.Width
	}
	return size
}

// SetOnSoundSettings sets the handler for the sound button.
func (p *Panel) SetOnSoundSettings(handler func()) {
	p.onSoundSettings = handler
}

// SetOnMoved sets a handler called with the final position after a drag.
func (p *Panel) SetOnMoved(handler func(fyne.Position)) {
	p.onMoved = handler
}

// SetBounds limits dragging to an area of the given size.
func (p *Panel) SetBounds(bounds fyne.Size) {
	p.bounds = bounds
	p.MoveTo(p.position)
}

// Position returns the panel's top-left corner.
func (p *Panel) Position() fyne.Position {
	return p.position
}

// MoveTo places the panel, clamped inside its bounds.
func (p *Panel) MoveTo(position fyne.Position) {
	p.position = p.clamp(position)
	p.Move(p.position)
}

// Render reflects the engine state. Call it on the UI goroutine.
func (p *Panel) Render(state model.TimerState) {
	p.display.Text = countdown.Format(state.Remaining)
	p.display.Refresh()

	if state.Running {
		p.toggle.SetText("Stop")
		p.toggle.SetIcon(theme.MediaPauseIcon())
		p.toggle.Importance = widget.DangerImportance
	} else {
		p.toggle.SetText("Start")
		p.toggle.SetIcon(theme.MediaPlayIcon())
		p.toggle.Importance = widget.MediumImportance
	}
	p.toggle.Refresh()

	if state.Remaining == 0 {
		p.pulse.Start(context.Background())
	} else if p.pulse.Running() {
		p.pulse.Stop()
	}
}

// Dragged implements fyne.Draggable.
func (p *Panel) Dragged(event *fyne.DragEvent) {
	p.dragging = true
	p.MoveTo(p.position.Add(event.Dragged))
}

// DragEnd implements fyne.Draggable. It runs even when the pointer is
// released outside the panel.
func (p *Panel) DragEnd() {
	if !p.dragging {
		return
	}
	p.dragging = false
	if p.onMoved != nil {
		p.onMoved(p.position)
	}
}

// Close stops the pulse animation.
func (p *Panel) Close() {
	p.pulse.Stop()
}

func (p *Panel) submit() {
	seconds := SecondsFromInput(p.minutes.Text, p.seconds.Text)
	p.minutes.SetText("")
	p.seconds.SetText("")
	p.selectDuration(seconds)
}

func (p *Panel) selectDuration(seconds int) {
	p.presets.Hide()
	p.relayout()
	p.controller.SetDuration(seconds)
}

func (p *Panel) togglePresets() {
	if p.presets.Visible() {
		p.presets.Hide()
	} else {
		p.presets.Show()
	}
	p.relayout()
}

func (p *Panel) showSoundSettings() {
	p.presets.Hide()
	p.relayout()
	if p.onSoundSettings != nil {
		p.onSoundSettings()
	}
}

// relayout resizes the panel after popover visibility changes.
func (p *Panel) relayout() {
	p.Refresh()
	p.Resize(p.MinSize())
	p.MoveTo(p.position)
}

func (p *Panel) setOpacity(level float64) {
	fyne.Do(func() {
		fill := panelColor
		fill.A = uint8(level * 255)
		p.background.FillColor = fill
		p.background.Refresh()
	})
}

func (p *Panel) clamp(position fyne.Position) fyne.Position {
	if p.bounds.Width <= 0 || p.bounds.Height <= 0 {
		return position
	}
	size := p.MinSize()
	maxX := p.bounds.Width - size.Width
	maxY := p.bounds.Height - size.Height
	if position.X > maxX {
		position.X = maxX
	}
	if position.Y > maxY {
		position.Y = maxY
	}
	if position.X < 0 {
		position.X = 0
	}
	if position.Y < 0 {
		position.Y = 0
	}
	return position
}
