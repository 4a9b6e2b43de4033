// Package sound holds the sound script registry used by the simulator: how
// long a named sound plays, how it is delayed by distance, and how it is
// synthesized when a client asks to hear it.
package sound

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// SpeedOfSound in meters per second.
const SpeedOfSound = 343.0

// InchesToMeters converts world units.
const InchesToMeters = 0.0254

// DefaultSampleRate is used for synthesis and WAV export.
const DefaultSampleRate = beep.SampleRate(22050)

var ErrUnknownSound = errors.New("sound: unknown sound script")

// Script describes one named sound.
type Script struct {
	Name     string
	Duration time.Duration
	Volume   float64 // 0..1
	Pitch    float64 // base frequency in Hz
	Wave     WaveType
	Attack   time.Duration
	Release  time.Duration

	// ActorDurations overrides Duration for specific actor models.
	ActorDurations map[string]time.Duration
}

// Registry maps names onto scripts. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]Script
	rate    beep.SampleRate
}

// NewRegistry creates an empty registry synthesizing at rate.
func NewRegistry(rate beep.SampleRate) *Registry {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Registry{
		scripts: make(map[string]Script),
		rate:    rate,
	}
}

// Register adds or replaces a script.
func (r *Registry) Register(s Script) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[s.Name] = s
}

// Lookup returns the named script.
func (r *Registry) Lookup(name string) (Script, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scripts[name]
	if !ok {
		return Script{}, fmt.Errorf("%w: %q", ErrUnknownSound, name)
	}
	return s, nil
}

// Names lists registered scripts in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scripts))
	for n := range r.scripts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SampleRate returns the synthesis rate.
func (r *Registry) SampleRate() beep.SampleRate {
	return r.rate
}

// Duration returns how long the sound plays for the given actor model.
// An empty model uses the script default.
func (r *Registry) Duration(name, actorModel string) (time.Duration, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return 0, err
	}
	if d, ok := s.ActorDurations[actorModel]; ok && actorModel != "" {
		return d, nil
	}
	return s.Duration, nil
}

// TravelTime is how long sound takes to cover distance world units.
func TravelTime(distance float64) time.Duration {
	if distance <= 0 {
		return 0
	}
	meters := distance * InchesToMeters
	return time.Duration(meters / SpeedOfSound * float64(time.Second))
}

// DurationWithSpeedOfSound is Duration plus the travel time to a listener
// distance world units away.
func (r *Registry) DurationWithSpeedOfSound(name, actorModel string, distance float64) (time.Duration, error) {
	d, err := r.Duration(name, actorModel)
	if err != nil {
		return 0, err
	}
	return d + TravelTime(distance), nil
}
