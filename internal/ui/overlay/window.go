package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// Config defines the stage window visuals. Opacity is the background alpha,
// applied to the whole window where the platform supports it.
type Config struct {
	Opacity uint8
	Size    fyne.Size
}

// Placeable is content that can be positioned inside the stage.
type Placeable interface {
	fyne.CanvasObject
	SetBounds(bounds fyne.Size)
	MoveTo(position fyne.Position)
	Position() fyne.Position
}

// Window is the undecorated stage that hosts the floating panel.
type Window struct {
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	content    Placeable
}

const (
	defaultStageWidth  = float32(480)
	defaultStageHeight = float32(360)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the stage window around content.
func New(app fyne.App, config Config, content Placeable) *Window {
	if config.Size.Width <= 0 || config.Size.Height <= 0 {
		config.Size = fyne.NewSize(defaultStageWidth, defaultStageHeight)
	}

	window := app.NewWindow("Tickdown")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})
	window.SetContent(container.NewStack(background, container.NewWithoutLayout(content)))

	overlay := &Window{
		window:     window,
		config:     config,
		background: background,
		content:    content,
	}

	window.SetCloseIntercept(overlay.Hide)

	content.Resize(content.MinSize())
	overlay.applyWindowMode()
	return overlay
}

// Show brings the stage to the front.
func (overlay *Window) Show() {
	overlay.window.Show()
	overlay.window.RequestFocus()
	overlay.applyNativeOpacity()
}

// Hide removes the stage without stopping the timer. Closing the stage
// window hides it the same way.
func (overlay *Window) Hide() {
	overlay.window.Hide()
}

// Size returns the stage size the content is clamped to.
func (overlay *Window) Size() fyne.Size {
	return overlay.config.Size
}

func (overlay *Window) applyWindowMode() {
	overlay.window.Resize(overlay.config.Size)
	overlay.content.SetBounds(overlay.config.Size)
	overlay.window.CenterOnScreen()
}
