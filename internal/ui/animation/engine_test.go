package animation

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type levels struct {
	mu     sync.Mutex
	values []float64
}

func (l *levels) record(level float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = append(l.values, level)
}

func (l *levels) snapshot() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float64(nil), l.values...)
}

func TestLevelCurve(t *testing.T) {
	engine := New(Config{Period: time.Second, Steps: 4, Low: 0.5, High: 1}, clockwork.NewFakeClock(), func(float64) {})

	want := []float64{1, 0.75, 0.5, 0.75}
	for step, expected := range want {
		if got := engine.level(step); math.Abs(got-expected) > 1e-9 {
			t.Fatalf("level(%d) = %v, want %v", step, got, expected)
		}
	}
}

func TestPulseStartStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	recorded := &levels{}
	engine := New(Config{Period: time.Second, Steps: 4, Low: 0.5, High: 1}, clock, recorded.record)

	engine.Start(context.Background())
	engine.Start(context.Background())
	if !engine.Running() {
		t.Fatalf("expected running pulse")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("pulse never waited: %v", err)
	}
	clock.Advance(250 * time.Millisecond)
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("pulse did not continue: %v", err)
	}

	engine.Stop()
	engine.Stop()
	if engine.Running() {
		t.Fatalf("expected stopped pulse")
	}

	values := recorded.snapshot()
	if len(values) < 3 {
		t.Fatalf("expected at least three updates, got %v", values)
	}
	if values[0] != 1 || math.Abs(values[1]-0.75) > 1e-9 {
		t.Fatalf("unexpected pulse start %v", values)
	}
	if values[len(values)-1] != 1 {
		t.Fatalf("stop should restore full level, got %v", values)
	}
}
