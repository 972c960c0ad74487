package countdown

import "time"

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventFinished    EventType = "finished"
)

// Event represents an engine update for observers.
type Event struct {
	Type      EventType
	Remaining int
	Running   bool
	At        time.Time
}
