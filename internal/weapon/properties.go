package weapon

// ClassName is the entity class of the manhack launcher.
const ClassName = "weapon_manhacktoss"

// ManhackClass is the entity class spawned by a throw.
const ManhackClass = "npc_manhack"

// Capability bits advertised to NPC schedulers.
const (
	CapRangeAttack1 = 1 << 0
)

// MaxTraceLength is the longest hitscan distance the host supports.
const MaxTraceLength = 56755.840862417

// Properties holds the tuning of a weapon instance.
type Properties struct {
	ClassName string

	// Fire gate
	RefireInterval    float64 // seconds between throws while held
	DryRefireInterval float64 // seconds an empty click blocks refire
	ShotResetWindow   float64 // shots further apart than this restart the recoil ladder
	MaxBurst          int     // throws allowed per continuous hold

	// Accuracy
	ShotPenalty    float64 // penalty added per throw
	MaxPenalty     float64 // penalty ceiling
	UseNewAccuracy bool    // false selects the legacy fixed cone

	// Ammunition
	MaxClip        int
	DefaultReserve int
	AmmoType       string
	AutoReload     bool

	// Throw
	ThrowDistance float64 // spawn offset along the view direction
	SquadName     string
	ViewKick      bool // apply AddViewKick after each throw

	// RefundClipOnSpawnFailure gives the round back when the manhack
	// cannot be created. Off keeps the historical behavior.
	RefundClipOnSpawnFailure bool

	// NPC usage
	MinBurst        int
	MaxNPCBurst     int
	FireRate        float64
	MinRange1       float64
	MaxRange1       float64
	MinRange2       float64
	MaxRange2       float64
	FiresUnderwater bool
}

// DefaultProperties returns the stock manhack launcher tuning.
func DefaultProperties() Properties {
	return Properties{
		ClassName:         ClassName,
		RefireInterval:    0.75,
		DryRefireInterval: 1.0,
		ShotResetWindow:   0.5,
		MaxBurst:          1,

		ShotPenalty:    0.2,
		MaxPenalty:     1.5,
		UseNewAccuracy: true,

		MaxClip:        3,
		DefaultReserve: 9,
		AmmoType:       "manhack",
		AutoReload:     true,

		ThrowDistance: 25,
		SquadName:     "controllable_manhack_squad",

		MinBurst:        1,
		MaxNPCBurst:     3,
		FireRate:        2.0,
		MinRange1:       24,
		MaxRange1:       1500,
		MinRange2:       24,
		MaxRange2:       200,
		FiresUnderwater: true,
	}
}

// normalize fills zero values that would break the gate.
func (p Properties) normalize() Properties {
	def := DefaultProperties()
	if p.ClassName == "" {
		p.ClassName = def.ClassName
	}
	if p.MaxBurst <= 0 {
		p.MaxBurst = def.MaxBurst
	}
	if p.MaxPenalty <= 0 {
		p.MaxPenalty = def.MaxPenalty
	}
	if p.MaxClip <= 0 {
		p.MaxClip = def.MaxClip
	}
	if p.SquadName == "" {
		p.SquadName = def.SquadName
	}
	if p.AmmoType == "" {
		p.AmmoType = def.AmmoType
	}
	return p
}

// Capabilities returns the NPC capability bits.
func (w *Weapon) Capabilities() int {
	return CapRangeAttack1
}

// Properties returns the tuning in use.
func (w *Weapon) Properties() Properties {
	return w.props
}

// SetProperties swaps the tuning in place. The fire state is kept and
// clamped into the new limits.
func (w *Weapon) SetProperties(p Properties) {
	w.props = p.normalize()
	w.Restore(w.state)
}
