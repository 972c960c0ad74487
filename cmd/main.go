package main

import (
	"errors"
	"fmt"
	"os"

	"tickdown/internal/audio"
	"tickdown/internal/core/countdown"
	"tickdown/internal/core/model"
	"tickdown/internal/platform"
	"tickdown/internal/storage"
	"tickdown/internal/ui/overlay"
	"tickdown/internal/ui/panel"
	"tickdown/internal/ui/preferences"
	"tickdown/internal/ui/tray"
	"tickdown/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const appName = "Tickdown"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type runFlags struct {
	configPath string
	logLevel   string
	duration   int
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := newRootCmd()
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := runFlags{
		configPath: os.Getenv("TICKDOWN_CONFIG"),
		logLevel:   envOr("TICKDOWN_LOG_LEVEL", "info"),
	}

	cmd := &cobra.Command{
		Use:           "tickdown",
		Short:         "Floating desktop countdown timer",
		Long:          `Tickdown is a small floating countdown timer with tick and completion sounds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", flags.configPath, "Path to config.yaml (default: user config dir)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", flags.logLevel, "Log level (debug|info|warn|error)")
	cmd.Flags().IntVar(&flags.duration, "duration", 0, "Initial countdown in seconds (default from config)")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tickdown %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func runApp(flags runFlags) error {
	level, err := zerolog.ParseLevel(flags.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flags.logLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunning(appName); activateErr != nil {
				log.Warn().Err(activateErr).Msg("could not reach running instance")
			}
			log.Info().Msg("another instance is already running")
			return nil
		}
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	configPath := flags.configPath
	if configPath == "" {
		configPath, err = storage.DefaultConfigPath(appName)
		if err != nil {
			log.Warn().Err(err).Msg("no user config directory")
		}
	}
	settings, err := storage.LoadSettings(configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("config not fully applied")
	}

	fyneApp := app.NewWithID("com.tickdown.app")
	fyneApp.SetIcon(resources.MustIcon())

	speaker := audio.NewSpeaker()
	defer speaker.Close()

	engine := countdown.New(speaker, settings.CountdownConfig())
	defer engine.Close()
	engine.UpdateSoundConfig(settings.Sound)
	if flags.duration > 0 {
		engine.SetDuration(flags.duration)
	}

	timerPanel := panel.New(engine, panel.Config{
		Presets:  settings.Presets,
		Position: fyne.NewPos(settings.PanelX, settings.PanelY),
		Clock:    clockwork.NewRealClock(),
	})
	defer timerPanel.Close()
	timerPanel.SetOnMoved(func(position fyne.Position) {
		log.Debug().Float32("x", position.X).Float32("y", position.Y).Msg("panel moved")
	})

	stage := overlay.New(fyneApp, overlay.Config{
		Opacity: settings.StageAlpha(),
		Size:    fyne.NewSize(settings.StageWidth, settings.StageHeight),
	}, timerPanel)

	soundWindow := preferences.New(fyneApp, engine.SoundConfig(), speaker, func(cfg model.SoundConfig) {
		engine.UpdateSoundConfig(cfg)
	})
	timerPanel.SetOnSoundSettings(soundWindow.Show)

	var trayHost tray.MenuHost
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		desktopApp.SetSystemTrayIcon(resources.MustIcon())
		trayHost = desktopApp
	} else {
		log.Warn().Msg("system tray unsupported on this platform")
	}
	trayManager := tray.New(trayHost, settings.Presets, tray.Callbacks{
		OnShow:          stage.Show,
		OnToggleRun:     engine.ToggleRun,
		OnPreset:        engine.SetDuration,
		OnSoundSettings: soundWindow.Show,
		OnQuit:          fyneApp.Quit,
	})

	guard.Serve(func() {
		fyne.Do(stage.Show)
	})

	render := func(state model.TimerState) {
		timerPanel.Render(state)
		trayManager.SetStatus(countdown.Format(state.Remaining))
		trayManager.SetRunning(state.Running)
	}
	render(engine.State())

	go forwardState(engine.Subscribe(8), engine.State, render, fyne.Do)

	log.Info().
		Str("config", configPath).
		Str("instance", guard.Address()).
		Int("duration", engine.State().Remaining).
		Msg("tickdown started")
	stage.Show()
	fyneApp.Run()
	return nil
}

// forwardState renders the current engine state on the UI goroutine after
// every event. Events only wake it up, so a dropped event cannot leave the UI
// showing a stale state.
func forwardState(events <-chan countdown.Event, current func() model.TimerState, render func(model.TimerState), do func(func())) {
	for range events {
		state := current()
		do(func() {
			render(state)
		})
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
