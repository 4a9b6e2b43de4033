package sound

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *rand.Rand
}

func newOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	if wave == WaveSine {
		// SineTone rejects frequencies outside (0, rate/2); fall through for those
		if sine, err := generators.SineTone(rate, freq); err == nil {
			return beep.Take(rate.N(duration), sine)
		}
	}
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		noise:    rand.New(rand.NewSource(int64(freq*1000) + int64(duration))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.position >= o.duration {
		return 0, false
	}
	for i := range samples {
		if o.position >= o.duration {
			return i, true
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, total, attack, release int) beep.Streamer {
	return &envelope{streamer: s, attack: attack, release: release, total: total}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= e.total-e.release {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// math.Log2(0) is -Inf, so zero volume maps to a silent effect
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// ReverbDelay is the echo offset used by EmitWithReverb.
const ReverbDelay = 60 * time.Millisecond

// voice synthesizes one dry pass of a script.
func (r *Registry) voice(s Script, d time.Duration) beep.Streamer {
	total := r.rate.N(d)
	osc := newOscillator(s.Pitch, d, s.Wave, r.rate)
	return withVolume(newEnvelope(osc, total, r.rate.N(s.Attack), r.rate.N(s.Release)), s.Volume)
}

// Streamer synthesizes the script, mixing in a delayed echo scaled by
// reverb (0..1).
func (r *Registry) Streamer(name string, reverb float64) (beep.Streamer, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	reverb = clamp01(reverb)

	dry := r.voice(s, s.Duration)
	if reverb == 0 {
		return dry, nil
	}

	wet := beep.Seq(beep.Silence(r.rate.N(ReverbDelay)), withVolume(r.voice(s, s.Duration), reverb*0.5))
	return beep.Mix(dry, wet), nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
