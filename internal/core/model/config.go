package model

import "bytes"

// DefaultDuration is the countdown length, in seconds, restored when a
// finished countdown is started again.
const DefaultDuration = 300

// TimerState is the observable countdown state.
type TimerState struct {
	Remaining int
	Running   bool
}

// SoundKind tags a SoundRef variant.
type SoundKind int

const (
	SoundBuiltin SoundKind = iota
	SoundCustom
)

// SoundID names a built-in sound.
type SoundID string

const (
	SoundPaper   SoundID = "paper"
	SoundClock   SoundID = "clock"
	SoundDigital SoundID = "digital"
	SoundTrumpet SoundID = "trumpet"
	SoundBell    SoundID = "bell"
	SoundChime   SoundID = "chime"
)

// TickSounds lists the built-in tick sounds in menu order.
var TickSounds = []SoundID{SoundPaper, SoundClock, SoundDigital}

// EndSounds lists the built-in end sounds in menu order.
var EndSounds = []SoundID{SoundTrumpet, SoundBell, SoundChime}

// SoundRef references a playable sound: either a built-in or uploaded audio bytes.
type SoundRef struct {
	Kind SoundKind
	ID   SoundID
	Name string
	Data []byte
}

// Builtin returns a reference to a built-in sound.
func Builtin(id SoundID) SoundRef {
	return SoundRef{Kind: SoundBuiltin, ID: id}
}

// Custom returns a reference to uploaded audio.
func Custom(name string, data []byte) SoundRef {
	return SoundRef{Kind: SoundCustom, Name: name, Data: data}
}

// IsCustom reports whether the reference carries uploaded audio.
func (ref SoundRef) IsCustom() bool {
	return ref.Kind == SoundCustom
}

// Equal reports whether both references name the same sound. Custom
// references compare by name and content.
func (ref SoundRef) Equal(other SoundRef) bool {
	if ref.Kind != other.Kind {
		return false
	}
	if ref.IsCustom() {
		return ref.Name == other.Name && bytes.Equal(ref.Data, other.Data)
	}
	return ref.ID == other.ID
}

// Label returns a short human-readable name.
func (ref SoundRef) Label() string {
	if ref.IsCustom() {
		return ref.Name
	}
	return string(ref.ID)
}

// SoundConfig is replaced wholesale on every settings change.
type SoundConfig struct {
	Enabled      bool
	Volume       float64
	TickInterval int
	TickSound    SoundRef
	EndSound     SoundRef
}

// TickIntervals are the supported tick sound spacings, in seconds.
var TickIntervals = []int{1, 2, 5}

// DefaultSoundConfig returns the sound settings of a fresh widget.
func DefaultSoundConfig() SoundConfig {
	return SoundConfig{
		Enabled:      true,
		Volume:       0.5,
		TickInterval: 1,
		TickSound:    Builtin(SoundPaper),
		EndSound:     Builtin(SoundTrumpet),
	}
}

// Normalize clamps volume into [0,1] and maps unsupported intervals to 1.
func (cfg SoundConfig) Normalize() SoundConfig {
	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 1 {
		cfg.Volume = 1
	}
	if !ValidTickInterval(cfg.TickInterval) {
		cfg.TickInterval = 1
	}
	if !cfg.TickSound.IsCustom() && !knownSound(cfg.TickSound.ID, TickSounds) {
		cfg.TickSound = Builtin(SoundPaper)
	}
	if !cfg.EndSound.IsCustom() && !knownSound(cfg.EndSound.ID, EndSounds) {
		cfg.EndSound = Builtin(SoundTrumpet)
	}
	return cfg
}

// ValidTickInterval reports whether seconds is one of TickIntervals.
func ValidTickInterval(seconds int) bool {
	for _, interval := range TickIntervals {
		if interval == seconds {
			return true
		}
	}
	return false
}

func knownSound(id SoundID, known []SoundID) bool {
	for _, candidate := range known {
		if candidate == id {
			return true
		}
	}
	return false
}
