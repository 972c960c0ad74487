package audio

import (
	"math"
	"math/rand"
	"time"

	"tickdown/internal/core/model"

	"github.com/faiface/beep"
)

type partial struct {
	ratio float64
	gain  float64
}

// note is one enveloped voice of a patch. A zero freq renders filtered noise.
type note struct {
	at       time.Duration
	length   time.Duration
	freq     float64
	partials []partial
	decay    float64
	gain     float64
}

var (
	brass = []partial{{1, 1}, {2, 0.6}, {3, 0.4}, {4, 0.25}, {5, 0.12}}
	bell  = []partial{{1, 1}, {2, 0.5}, {2.76, 0.35}, {5.4, 0.2}}
	pure  = []partial{{1, 1}}
	wood  = []partial{{1, 1}, {2.7, 0.4}}
	pulse = []partial{{1, 1}, {3, 0.33}, {5, 0.2}}
	glass = []partial{{1, 1}, {2.4, 0.3}}
)

var patches = map[model.SoundID][]note{
	model.SoundPaper: {
		{length: 45 * time.Millisecond, decay: 70, gain: 0.5},
	},
	model.SoundClock: {
		{length: 30 * time.Millisecond, freq: 1800, partials: wood, decay: 120, gain: 0.6},
	},
	model.SoundDigital: {
		{length: 90 * time.Millisecond, freq: 1000, partials: pulse, decay: 6, gain: 0.35},
	},
	model.SoundTrumpet: {
		{length: 160 * time.Millisecond, freq: 523.25, partials: brass, decay: 3, gain: 0.3},
		{at: 160 * time.Millisecond, length: 160 * time.Millisecond, freq: 659.25, partials: brass, decay: 3, gain: 0.3},
		{at: 320 * time.Millisecond, length: 160 * time.Millisecond, freq: 783.99, partials: brass, decay: 3, gain: 0.3},
		{at: 480 * time.Millisecond, length: 700 * time.Millisecond, freq: 1046.5, partials: brass, decay: 2, gain: 0.3},
	},
	model.SoundBell: {
		{length: 1800 * time.Millisecond, freq: 880, partials: bell, decay: 2.5, gain: 0.4},
	},
	model.SoundChime: {
		{length: 1200 * time.Millisecond, freq: 1318.5, partials: glass, decay: 3, gain: 0.25},
		{at: 120 * time.Millisecond, length: 1200 * time.Millisecond, freq: 1568, partials: glass, decay: 3, gain: 0.25},
		{at: 240 * time.Millisecond, length: 1200 * time.Millisecond, freq: 1760, partials: glass, decay: 3, gain: 0.25},
		{at: 360 * time.Millisecond, length: 1200 * time.Millisecond, freq: 2093, partials: pure, decay: 3, gain: 0.25},
	},
}

const attack = 5 * time.Millisecond

// render synthesizes a patch into a stereo buffer at SampleRate.
func render(notes []note) *beep.Buffer {
	var total time.Duration
	for _, n := range notes {
		if end := n.at + n.length; end > total {
			total = end
		}
	}

	samples := make([][2]float64, SampleRate.N(total))
	rng := rand.New(rand.NewSource(1))
	attackSamples := float64(SampleRate.N(attack))
	rate := float64(SampleRate)

	for _, n := range notes {
		start := SampleRate.N(n.at)
		length := SampleRate.N(n.length)
		var smoothed float64
		for i := 0; i < length && start+i < len(samples); i++ {
			t := float64(i) / rate
			envelope := math.Exp(-n.decay * t)
			if float64(i) < attackSamples {
				envelope *= float64(i) / attackSamples
			}

			var value float64
			if n.freq == 0 {
				smoothed = 0.7*smoothed + 0.3*(rng.Float64()*2-1)
				value = smoothed
			} else {
				for _, p := range n.partials {
					value += p.gain * math.Sin(2*math.Pi*n.freq*p.ratio*t)
				}
			}

			sample := value * envelope * n.gain
			samples[start+i][0] += sample
			samples[start+i][1] += sample
		}
	}

	for i := range samples {
		samples[i][0] = clampSample(samples[i][0])
		samples[i][1] = clampSample(samples[i][1])
	}

	buffer := beep.NewBuffer(outputFormat)
	buffer.Append(sliceStreamer(samples))
	return buffer
}

func sliceStreamer(samples [][2]float64) beep.Streamer {
	position := 0
	return beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if position >= len(samples) {
			return 0, false
		}
		n := copy(out, samples[position:])
		position += n
		return n, true
	})
}

func clampSample(value float64) float64 {
	if value > 1 {
		return 1
	}
	if value < -1 {
		return -1
	}
	return value
}
