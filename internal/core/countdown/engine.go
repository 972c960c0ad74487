package countdown

import (
	"sync"
	"time"

	"tickdown/internal/audio"
	"tickdown/internal/core/model"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// rampReference is the fixed span, in seconds, over which tick loudness doubles.
// It does not follow the configured duration.
const rampReference = 300

// Config contains runtime options for Engine.
type Config struct {
	Clock           clockwork.Clock
	TickInterval    time.Duration
	InitialDuration int
}

// Engine is a two-state countdown machine (idle, running) that schedules tick
// and end sounds.
type Engine struct {
	mu         sync.Mutex
	soundMu    sync.Mutex
	options    Config
	player     audio.Player
	remaining  int
	running    bool
	sound      model.SoundConfig
	tickSound  audio.Handle
	endSound   audio.Handle
	ticker     clockwork.Ticker
	stopCh     chan struct{}
	generation uint64
	events     []chan Event
	closed     bool
}

// New creates an idle Engine holding the initial duration and default sound settings.
// A nil player mutes the engine.
func New(player audio.Player, options Config) *Engine {
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.InitialDuration <= 0 {
		options.InitialDuration = model.DefaultDuration
	}

	engine := &Engine{
		options:   options,
		player:    player,
		remaining: options.InitialDuration,
	}
	engine.UpdateSoundConfig(model.DefaultSoundConfig())
	return engine
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// State returns a snapshot of the countdown.
func (engine *Engine) State() model.TimerState {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return model.TimerState{Remaining: engine.remaining, Running: engine.running}
}

// SoundConfig returns the active sound settings.
func (engine *Engine) SoundConfig() model.SoundConfig {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.sound
}

// SetDuration loads a new countdown and stops any run in progress.
// Negative values are treated as zero.
func (engine *Engine) SetDuration(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.remaining = seconds
	engine.running = false
	engine.stopTickerLocked()
	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.mu.Unlock()

	log.Debug().Int("seconds", seconds).Msg("duration set")
}

// ToggleRun starts or stops the countdown. A finished countdown is first
// reloaded with model.DefaultDuration.
func (engine *Engine) ToggleRun() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	if engine.remaining == 0 {
		engine.remaining = model.DefaultDuration
	}
	engine.running = !engine.running
	if engine.running {
		engine.startTickerLocked()
	} else {
		engine.stopTickerLocked()
	}
	running := engine.running
	remaining := engine.remaining
	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.mu.Unlock()

	log.Debug().Bool("running", running).Int("remaining", remaining).Msg("run toggled")
}

// Tick advances the countdown by one second. It is a no-op while idle.
func (engine *Engine) Tick() {
	engine.mu.Lock()
	engine.tickLocked(engine.generation)
}

// UpdateSoundConfig replaces the sound settings. A slot whose reference is
// unchanged keeps its handle; only replaced handles are released.
func (engine *Engine) UpdateSoundConfig(cfg model.SoundConfig) {
	cfg = cfg.Normalize()

	engine.soundMu.Lock()
	defer engine.soundMu.Unlock()

	engine.mu.Lock()
	previous := engine.sound
	previousTick, previousEnd := engine.tickSound, engine.endSound
	engine.mu.Unlock()

	var tickSound, endSound audio.Handle
	if cfg.Enabled {
		tickSound = engine.reuseOrAcquire(previousTick, previous.TickSound, cfg.TickSound)
		endSound = engine.reuseOrAcquire(previousEnd, previous.EndSound, cfg.EndSound)
	}

	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		// Close already released the previous handles.
		releaseUnless(tickSound, previousTick)
		releaseUnless(endSound, previousEnd)
		return
	}
	engine.sound = cfg
	engine.tickSound = tickSound
	engine.endSound = endSound
	engine.mu.Unlock()

	releaseUnless(previousTick, tickSound)
	releaseUnless(previousEnd, endSound)

	log.Debug().
		Bool("enabled", cfg.Enabled).
		Float64("volume", cfg.Volume).
		Int("tick_interval", cfg.TickInterval).
		Str("tick_sound", cfg.TickSound.Label()).
		Str("end_sound", cfg.EndSound.Label()).
		Msg("sound config updated")
}

// Close stops ticking, releases sound handles and closes observers.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.closed = true
	engine.running = false
	engine.stopTickerLocked()
	tickSound, endSound := engine.tickSound, engine.endSound
	engine.tickSound, engine.endSound = nil, nil
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	release(tickSound)
	release(endSound)
	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) startTickerLocked() {
	if engine.ticker != nil {
		return
	}
	engine.generation++
	engine.ticker = engine.options.Clock.NewTicker(engine.options.TickInterval)
	engine.stopCh = make(chan struct{})
	go engine.run(engine.ticker, engine.stopCh, engine.generation)
}

func (engine *Engine) stopTickerLocked() {
	if engine.ticker == nil {
		return
	}
	engine.ticker.Stop()
	close(engine.stopCh)
	engine.ticker = nil
	engine.stopCh = nil
	engine.generation++
}

func (engine *Engine) run(ticker clockwork.Ticker, stopCh chan struct{}, generation uint64) {
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			engine.mu.Lock()
			engine.tickLocked(generation)
		}
	}
}

// tickLocked expects engine.mu held and releases it before playing sound.
func (engine *Engine) tickLocked(generation uint64) {
	if engine.closed || !engine.running || generation != engine.generation {
		engine.mu.Unlock()
		return
	}

	var sound audio.Handle
	var volume float64

	if engine.remaining <= 1 {
		engine.remaining = 0
		engine.running = false
		engine.stopTickerLocked()
		if engine.sound.Enabled {
			sound = engine.endSound
			volume = engine.sound.Volume
		}
		engine.emitLocked(engine.eventLocked(EventFinished))
		engine.mu.Unlock()

		log.Info().Msg("countdown finished")
		play(sound, volume)
		return
	}

	if engine.sound.Enabled && engine.remaining%engine.sound.TickInterval == 0 {
		sound = engine.tickSound
		volume = TickVolume(engine.sound.Volume, engine.remaining)
	}
	engine.remaining--
	engine.emitLocked(engine.eventLocked(EventProgress))
	engine.mu.Unlock()

	play(sound, volume)
}

func (engine *Engine) reuseOrAcquire(current audio.Handle, currentRef, ref model.SoundRef) audio.Handle {
	if current != nil && currentRef.Equal(ref) {
		return current
	}
	return engine.acquire(ref)
}

func (engine *Engine) acquire(ref model.SoundRef) audio.Handle {
	if engine.player == nil {
		return nil
	}
	handle, err := engine.player.Acquire(ref)
	if err != nil {
		log.Warn().Err(err).Str("sound", ref.Label()).Msg("sound unavailable, continuing silently")
		return nil
	}
	return handle
}

func (engine *Engine) eventLocked(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Remaining: engine.remaining,
		Running:   engine.running,
		At:        engine.options.Clock.Now(),
	}
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func play(handle audio.Handle, volume float64) {
	if handle != nil {
		handle.Play(volume)
	}
}

func release(handle audio.Handle) {
	if handle != nil {
		handle.Release()
	}
}

func releaseUnless(handle, kept audio.Handle) {
	if handle != kept {
		release(handle)
	}
}

// TickVolume returns the tick loudness for the given remaining seconds. It grows
// linearly as the countdown approaches zero and is capped at full volume.
func TickVolume(volume float64, remaining int) float64 {
	effective := volume * (1 + float64(rampReference-remaining)/rampReference)
	if effective > 1 {
		return 1
	}
	if effective < 0 {
		return 0
	}
	return effective
}
