// Package scenario replays scripted launcher input against an engine.
//
// A scenario is a YAML file naming the weapons to host and a list of steps,
// each applied at a simulation time:
//
//	name: double tap
//	seed: 7
//	duration: 2
//	weapons:
//	  - id: p1
//	    preset: stock
//	steps:
//	  - {at: 0.0, weapon: p1, attack: true}
//	  - {at: 0.1, weapon: p1, attack: false}
//	  - {at: 0.5, weapon: p1, reload: true}
//
// The same file and seed always produce the same report.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"manhack-sim/internal/game"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

var (
	ErrNoWeapons     = errors.New("scenario: no weapons")
	ErrUnknownWeapon = errors.New("scenario: step names an unknown weapon")
	ErrBadStep       = errors.New("scenario: invalid step")
)

// DefaultTickRate is used when the file sets none.
const DefaultTickRate = 30

// tailSeconds are simulated past the last step when no duration is given.
const tailSeconds = 1.0

// Scenario is one scripted run.
type Scenario struct {
	Name        string       `yaml:"name"`
	Seed        int64        `yaml:"seed"`
	TickRate    int          `yaml:"tick_rate"`
	Duration    float64      `yaml:"duration"` // seconds, 0 = last step + 1s
	MaxManhacks int          `yaml:"max_manhacks"`
	ManhackLife int          `yaml:"manhack_life"` // ticks
	Trace       bool         `yaml:"trace"`        // record every weapon every tick
	Weapons     []WeaponSpec `yaml:"weapons"`
	Steps       []Step       `yaml:"steps"`
}

// WeaponSpec declares a launcher and its carrier.
type WeaponSpec struct {
	ID     string     `yaml:"id"`
	Preset string     `yaml:"preset"`
	NPC    bool       `yaml:"npc"`
	Pos    [3]float64 `yaml:"pos"`
	Aim    Aim        `yaml:"aim"`
	Enemy  string     `yaml:"enemy"`
	Reverb float64    `yaml:"reverb"`
}

// Aim is a view direction in degrees.
type Aim struct {
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
}

func (a Aim) angles() vecmath.QAngle {
	return vecmath.QAngle{Pitch: a.Pitch, Yaw: a.Yaw}
}

// NPCFire queues an animation event volley.
type NPCFire struct {
	Event string `yaml:"event"` // pistol_fire, throw, melee_hit
	Count int    `yaml:"count"`
}

// Step changes one weapon's input at time At. Nil fields leave the
// current value alone.
type Step struct {
	At      float64  `yaml:"at"`
	Weapon  string   `yaml:"weapon"` // empty = first weapon
	Attack  *bool    `yaml:"attack"`
	Attack2 *bool    `yaml:"attack2"`
	Busy    *bool    `yaml:"busy"`
	Reload  bool     `yaml:"reload"`
	Aim     *Aim     `yaml:"aim"`
	NPCFire *NPCFire `yaml:"npc_fire"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: unmarshal: %w", err)
	}
	if err := sc.normalize(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// normalize fills defaults, orders steps by time and checks references.
func (sc *Scenario) normalize() error {
	if len(sc.Weapons) == 0 {
		return ErrNoWeapons
	}
	if sc.TickRate <= 0 {
		sc.TickRate = DefaultTickRate
	}

	ids := make(map[string]bool, len(sc.Weapons))
	for i := range sc.Weapons {
		w := &sc.Weapons[i]
		if w.ID == "" {
			w.ID = fmt.Sprintf("w%d", i+1)
		}
		if ids[w.ID] {
			return fmt.Errorf("scenario: duplicate weapon %q", w.ID)
		}
		ids[w.ID] = true
		if w.Preset == "" {
			w.Preset = game.DefaultPreset
		}
		if !game.HasPreset(w.Preset) {
			return fmt.Errorf("scenario: weapon %s: %w: %s", w.ID, game.ErrUnknownPreset, w.Preset)
		}
	}

	last := 0.0
	for i := range sc.Steps {
		st := &sc.Steps[i]
		if st.At < 0 {
			return fmt.Errorf("%w: step %d at %.3f", ErrBadStep, i, st.At)
		}
		if st.Weapon == "" {
			st.Weapon = sc.Weapons[0].ID
		}
		if !ids[st.Weapon] {
			return fmt.Errorf("%w: step %d: %s", ErrUnknownWeapon, i, st.Weapon)
		}
		if st.NPCFire != nil {
			if _, err := weapon.ParseAnimEvent(st.NPCFire.Event); err != nil {
				return fmt.Errorf("%w: step %d: %v", ErrBadStep, i, err)
			}
		}
		if st.At > last {
			last = st.At
		}
	}
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].At < sc.Steps[j].At })

	if sc.Duration <= 0 {
		sc.Duration = last + tailSeconds
	}
	return nil
}

// Ticks is the number of frames the scenario runs.
func (sc *Scenario) Ticks() int {
	n := int(sc.Duration*float64(sc.TickRate) + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
