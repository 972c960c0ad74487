package animation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Config contains pulse timing values.
type Config struct {
	Period time.Duration
	Steps  int
	Low    float64
	High   float64
}

// DefaultConfig fades between full and half opacity every two seconds.
func DefaultConfig() Config {
	return Config{
		Period: 2 * time.Second,
		Steps:  20,
		Low:    0.5,
		High:   1,
	}
}

// Engine drives a looping opacity pulse.
type Engine struct {
	mu     sync.Mutex
	config Config
	clock  clockwork.Clock
	update func(level float64)
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a pulse engine. update receives levels in [Low, High] from the
// animation goroutine.
func New(config Config, clock clockwork.Clock, update func(level float64)) *Engine {
	if config.Steps <= 0 {
		config.Steps = 1
	}
	if config.Period <= 0 {
		config.Period = time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		config: config,
		clock:  clock,
		update: update,
	}
}

// Start begins pulsing until ctx is cancelled or Stop is called. Starting an
// already running pulse does nothing.
func (engine *Engine) Start(ctx context.Context) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done

	go func() {
		defer close(done)
		engine.run(runCtx)
	}()
}

// Stop terminates the pulse and waits for the final full-level update.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel, done := engine.cancel, engine.done
	engine.cancel = nil
	engine.done = nil
	engine.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a pulse is active.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.cancel != nil
}

func (engine *Engine) run(ctx context.Context) {
	defer engine.update(engine.config.High)

	step := engine.config.Period / time.Duration(engine.config.Steps)
	for i := 0; ; i = (i + 1) % engine.config.Steps {
		engine.update(engine.level(i))
		if !sleepWithContext(ctx, engine.clock, step) {
			return
		}
	}
}

// level follows a cosine from High down to Low and back over one period.
func (engine *Engine) level(step int) float64 {
	phase := 2 * math.Pi * float64(step) / float64(engine.config.Steps)
	spread := engine.config.High - engine.config.Low
	return engine.config.Low + spread*(0.5+0.5*math.Cos(phase))
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, duration time.Duration) bool {
	timer := clock.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
