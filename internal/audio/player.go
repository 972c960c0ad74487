// Package audio turns sound references into playable, releasable handles
// backed by the beep speaker.
package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"tickdown/internal/core/model"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog/log"
)

// ErrUnknownSound indicates a built-in reference with no matching patch.
var ErrUnknownSound = errors.New("unknown built-in sound")

// Handle is a playable sound. Play is fire-and-forget and always restarts
// the sound from its beginning. Release frees the backing audio; Play after
// Release does nothing.
type Handle interface {
	Play(volume float64)
	Release()
}

// Player acquires handles for sound references.
type Player interface {
	Acquire(ref model.SoundRef) (Handle, error)
}

// SampleRate is the rate every sound is rendered or resampled to.
const SampleRate = beep.SampleRate(44100)

var outputFormat = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// Speaker plays sounds on the default audio device.
type Speaker struct {
	mu       sync.Mutex
	output   func(beep.Streamer)
	initOnce sync.Once
	initErr  error
	opened   bool
	builtins map[model.SoundID]*beep.Buffer
	customs  map[string]*customBuffer
}

// customBuffer is decoded upload audio shared by every live handle for the
// same file.
type customBuffer struct {
	buffer *beep.Buffer
	refs   int
}

// NewSpeaker returns a Speaker that opens the audio device on first playback.
// If the device cannot be opened the Speaker stays silent.
func NewSpeaker() *Speaker {
	s := newSpeakerWithOutput(nil)
	s.output = s.playOnDevice
	return s
}

func newSpeakerWithOutput(output func(beep.Streamer)) *Speaker {
	return &Speaker{
		output:   output,
		builtins: make(map[model.SoundID]*beep.Buffer),
		customs:  make(map[string]*customBuffer),
	}
}

// Acquire returns a handle for ref. Built-in buffers are cached for the life
// of the Speaker. Custom audio is validated and decoded once and shared by
// handles for the same file until the last of them is released. Decode errors
// are the upload validation errors of Validate.
func (s *Speaker) Acquire(ref model.SoundRef) (Handle, error) {
	if ref.IsCustom() {
		key := customKey(ref)
		buffer, err := s.retainCustom(key, ref)
		if err != nil {
			return nil, err
		}
		return &bufferHandle{
			output:    s.output,
			buffer:    buffer,
			onRelease: func() { s.releaseCustom(key) },
		}, nil
	}

	buffer, err := s.builtin(ref.ID)
	if err != nil {
		return nil, err
	}
	return &bufferHandle{output: s.output, buffer: buffer}, nil
}

// Close stops everything currently playing.
func (s *Speaker) Close() {
	s.mu.Lock()
	opened := s.opened
	s.mu.Unlock()
	if opened {
		speaker.Clear()
	}
}

func (s *Speaker) builtin(id model.SoundID) (*beep.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.builtins[id]; ok {
		return cached, nil
	}
	notes, ok := patches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSound, id)
	}
	buffer := render(notes)
	s.builtins[id] = buffer
	return buffer, nil
}

func (s *Speaker) retainCustom(key string, ref model.SoundRef) (*beep.Buffer, error) {
	s.mu.Lock()
	if entry, ok := s.customs[key]; ok {
		entry.refs++
		s.mu.Unlock()
		return entry.buffer, nil
	}
	s.mu.Unlock()

	buffer, err := decodeBuffer(ref.Name, ref.Data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.customs[key]; ok {
		entry.refs++
		return entry.buffer, nil
	}
	s.customs[key] = &customBuffer{buffer: buffer, refs: 1}
	log.Debug().Str("file", ref.Name).Int("samples", buffer.Len()).Msg("custom sound decoded")
	return buffer, nil
}

func (s *Speaker) releaseCustom(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.customs[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(s.customs, key)
	}
}

func customKey(ref model.SoundRef) string {
	sum := sha256.Sum256(ref.Data)
	return ref.Name + "/" + hex.EncodeToString(sum[:])
}

func (s *Speaker) playOnDevice(streamer beep.Streamer) {
	s.initOnce.Do(func() {
		err := speaker.Init(SampleRate, SampleRate.N(time.Second/10))
		s.mu.Lock()
		s.initErr = err
		s.opened = err == nil
		s.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Msg("audio device unavailable, sounds disabled")
		}
	})

	s.mu.Lock()
	err := s.initErr
	s.mu.Unlock()
	if err != nil {
		return
	}
	speaker.Play(streamer)
}

type bufferHandle struct {
	mu        sync.Mutex
	output    func(beep.Streamer)
	buffer    *beep.Buffer
	current   *beep.Ctrl
	onRelease func()
	released  bool
}

func (handle *bufferHandle) Play(volume float64) {
	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.released || handle.buffer == nil || handle.output == nil {
		return
	}
	handle.stopLocked()

	ctrl := &beep.Ctrl{Streamer: withVolume(handle.buffer.Streamer(0, handle.buffer.Len()), volume)}
	handle.current = ctrl
	handle.output(ctrl)
}

func (handle *bufferHandle) Release() {
	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.released {
		return
	}
	handle.released = true
	handle.stopLocked()
	handle.buffer = nil
	if handle.onRelease != nil {
		handle.onRelease()
	}
}

// stopLocked detaches the previous playback; a Ctrl with no streamer is
// dropped by the mixer.
func (handle *bufferHandle) stopLocked() {
	if handle.current == nil {
		return
	}
	speaker.Lock()
	handle.current.Streamer = nil
	speaker.Unlock()
	handle.current = nil
}

func withVolume(streamer beep.Streamer, volume float64) beep.Streamer {
	level, silent := gain(volume)
	if !silent && level == 0 {
		return streamer
	}
	return &effects.Volume{Streamer: streamer, Base: 2, Volume: level, Silent: silent}
}

// gain maps a linear volume in [0,1] onto the base-2 exponent used by
// effects.Volume.
func gain(volume float64) (level float64, silent bool) {
	if volume <= 0 {
		return 0, true
	}
	if volume >= 1 {
		return 0, false
	}
	return math.Log2(volume), false
}
