package sound

import (
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/orcaman/writerseeker"
)

// Emission is the record of one played sound.
type Emission struct {
	Name     string        `json:"name"`
	Volume   float64       `json:"volume"`
	Reverb   float64       `json:"reverb"`
	Delay    time.Duration `json:"delay"`    // travel time to the listener
	Duration time.Duration `json:"duration"` // audible length including the echo tail
	Heard    time.Duration `json:"heard"`    // until the listener hears the end
}

// EmitWithReverb resolves a sound with the given reverb level (0..1). The
// echo extends the audible length by ReverbDelay.
func (r *Registry) EmitWithReverb(name string, reverb float64) (Emission, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return Emission{}, err
	}
	reverb = clamp01(reverb)

	d := s.Duration
	if reverb > 0 {
		d += ReverbDelay
	}
	return Emission{
		Name:     name,
		Volume:   s.Volume,
		Reverb:   reverb,
		Duration: d,
		Heard:    d,
	}, nil
}

// EmitAt plays a sound from an actor with the given model for a listener
// distance world units away. Actor specific lengths replace the script
// default.
func (r *Registry) EmitAt(name, actorModel string, reverb, distance float64) (Emission, error) {
	e, err := r.EmitWithReverb(name, reverb)
	if err != nil {
		return Emission{}, err
	}
	heard, err := r.DurationWithSpeedOfSound(name, actorModel, distance)
	if err != nil {
		return Emission{}, err
	}
	if e.Reverb > 0 {
		heard += ReverbDelay
	}
	e.Delay = TravelTime(distance)
	e.Duration = heard - e.Delay
	e.Heard = heard
	return e, nil
}

// Format is the WAV layout written by RenderWAV.
func (r *Registry) Format() beep.Format {
	return beep.Format{SampleRate: r.rate, NumChannels: 1, Precision: 2}
}

// RenderWAV synthesizes the named sound into w as a mono 16-bit WAV.
func (r *Registry) RenderWAV(w io.WriteSeeker, name string, reverb float64) error {
	s, err := r.Streamer(name, reverb)
	if err != nil {
		return err
	}
	return wav.Encode(w, s, r.Format())
}

// RenderWAVBytes is RenderWAV into memory.
func (r *Registry) RenderWAVBytes(name string, reverb float64) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := r.RenderWAV(ws, name, reverb); err != nil {
		return nil, err
	}
	return io.ReadAll(ws.Reader())
}

// Weapon sound script names.
const (
	ManhackEmpty     = "weapon_manhacktoss.empty"
	ManhackSingle    = "weapon_manhacktoss.single_shot"
	ManhackSingleNPC = "weapon_manhacktoss.single_shot_npc"
	ManhackReload    = "weapon_manhacktoss.reload"
)

// DefaultRegistry returns a registry with the launcher's sound scripts.
func DefaultRegistry() *Registry {
	r := NewRegistry(DefaultSampleRate)
	r.Register(Script{
		Name:     ManhackEmpty,
		Duration: 80 * time.Millisecond,
		Volume:   0.6,
		Pitch:    1800,
		Wave:     WaveSquare,
		Release:  40 * time.Millisecond,
	})
	r.Register(Script{
		Name:     ManhackSingle,
		Duration: 350 * time.Millisecond,
		Volume:   0.8,
		Pitch:    140,
		Wave:     WaveSaw,
		Attack:   10 * time.Millisecond,
		Release:  200 * time.Millisecond,
	})
	r.Register(Script{
		Name:     ManhackSingleNPC,
		Duration: 250 * time.Millisecond,
		Volume:   0.9,
		Pitch:    0,
		Wave:     WaveNoise,
		Release:  150 * time.Millisecond,
		ActorDurations: map[string]time.Duration{
			"models/combine_soldier.mdl": 200 * time.Millisecond,
		},
	})
	r.Register(Script{
		Name:     ManhackReload,
		Duration: 600 * time.Millisecond,
		Volume:   0.5,
		Pitch:    420,
		Wave:     WaveSine,
		Attack:   50 * time.Millisecond,
		Release:  100 * time.Millisecond,
	})
	return r
}
