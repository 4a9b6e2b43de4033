package game

import (
	"sort"

	"manhack-sim/internal/weapon"
)

// Preset is a named launcher loadout applied on top of the base tuning.
type Preset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	apply       func(*weapon.Properties)
}

// Properties returns base with the preset's overrides applied.
func (p Preset) Properties(base weapon.Properties) weapon.Properties {
	if p.apply != nil {
		p.apply(&base)
	}
	return base
}

// DefaultPreset is used when a weapon is added without one.
const DefaultPreset = "stock"

// Presets contains all launcher loadouts
var Presets = map[string]Preset{
	"stock": {
		ID:          "stock",
		Name:        "Stock",
		Description: "Configured tuning, penalty-driven spread",
	},
	"legacy": {
		ID:          "legacy",
		Name:        "Legacy Accuracy",
		Description: "Fixed 4 degree cone regardless of penalty",
		apply: func(p *weapon.Properties) {
			p.UseNewAccuracy = false
		},
	},
	"refund": {
		ID:          "refund",
		Name:        "Refund",
		Description: "Returns the round when the manhack cannot spawn",
		apply: func(p *weapon.Properties) {
			p.RefundClipOnSpawnFailure = true
		},
	},
	"kick": {
		ID:          "kick",
		Name:        "Kick",
		Description: "Applies view kick after each throw",
		apply: func(p *weapon.Properties) {
			p.ViewKick = true
		},
	},
	"drum": {
		ID:          "drum",
		Name:        "Drum",
		Description: "Six round clip, faster refire, two throw bursts",
		apply: func(p *weapon.Properties) {
			p.MaxClip = 6
			p.DefaultReserve = 12
			p.RefireInterval = 0.5
			p.MaxBurst = 2
		},
	},
}

// GetPreset returns a preset by ID, defaulting to stock
func GetPreset(id string) Preset {
	if p, ok := Presets[id]; ok {
		return p
	}
	return Presets[DefaultPreset]
}

// HasPreset reports whether id names a known preset.
func HasPreset(id string) bool {
	_, ok := Presets[id]
	return ok
}

// GetAllPresets returns every preset, sorted by ID
func GetAllPresets() []Preset {
	out := make([]Preset, 0, len(Presets))
	for _, p := range Presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
