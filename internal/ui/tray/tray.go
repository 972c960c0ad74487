package tray

import (
	"fmt"

	"tickdown/internal/ui/panel"

	"fyne.io/fyne/v2"
)

// MenuHost installs a tray menu. desktop.App satisfies it.
type MenuHost interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow          func()
	OnToggleRun     func()
	OnPreset        func(seconds int)
	OnSoundSettings func()
	OnQuit          func()
}

// Manager handles system tray state.
type Manager struct {
	app         MenuHost
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	presetsItem *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks. A nil app yields
// a manager that only tracks state.
func New(app MenuHost, presets []int, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "ready",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnToggleRun != nil {
			manager.callbacks.OnToggleRun()
		}
	})

	items := make([]*fyne.MenuItem, 0, len(presets))
	for _, minutes := range presets {
		seconds := minutes * 60
		items = append(items, fyne.NewMenuItem(panel.PresetLabel(minutes), func() {
			if manager.callbacks.OnPreset != nil {
				manager.callbacks.OnPreset(seconds)
			}
		}))
	}
	manager.presetsItem = fyne.NewMenuItem("Presets", nil)
	manager.presetsItem.ChildMenu = fyne.NewMenu("", items...)

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetRunning switches the toggle item between Start and Stop.
func (manager *Manager) SetRunning(running bool) {
	if running == manager.running {
		return
	}
	manager.running = running
	if running {
		manager.toggleItem.Label = "Stop"
	} else {
		manager.toggleItem.Label = "Start"
	}
	manager.refreshStatus()
}

// Menu builds the tray menu from the current state.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu("Tickdown",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.presetsItem,
		fyne.NewMenuItem("Sound settings", func() {
			if manager.callbacks.OnSoundSettings != nil {
				manager.callbacks.OnSoundSettings()
			}
		}),
		fyne.NewMenuItem("Show widget", func() {
			if manager.callbacks.OnShow != nil {
				manager.callbacks.OnShow()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	)
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.running {
		status = fmt.Sprintf("%s (running)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Timer: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}
