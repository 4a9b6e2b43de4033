package weapon

import "manhack-sim/internal/vecmath"

// FireState is the persisted per-weapon record. Times are simulation
// seconds; AccuracyPenalty is a scalar, not a timestamp.
type FireState struct {
	LastAttackTime    float64 `json:"lastAttackTime"`
	NextAttackTime    float64 `json:"nextAttackTime"`
	SoonestAttackTime float64 `json:"soonestAttackTime"`
	AccuracyPenalty   float64 `json:"accuracyPenalty"`
	ShotsFired        int     `json:"shotsFired"`
	BurstRemaining    int     `json:"burstRemaining"`
	Clip              int     `json:"clip"`
	Reserve           int     `json:"reserve"`
	InReload          bool    `json:"inReload"`
	ReloadDoneTime    float64 `json:"reloadDoneTime"`
	PrimaryAttacks    int     `json:"primaryAttacks"`
}

// GateState is the externally visible fire-gate phase.
type GateState int

const (
	GateIdle GateState = iota
	GateCooldown
	GateBurstExhausted
	GateReloading
)

func (g GateState) String() string {
	switch g {
	case GateIdle:
		return "idle"
	case GateCooldown:
		return "cooldown"
	case GateBurstExhausted:
		return "burst_exhausted"
	case GateReloading:
		return "reloading"
	default:
		return "unknown"
	}
}

// Weapon is one manhack launcher instance.
type Weapon struct {
	props    Properties
	host     Host
	owner    Owner
	state    FireState
	activity Activity
}

// New creates a weapon with a full clip, spawned at time now.
func New(props Properties, host Host, now float64) *Weapon {
	props = props.normalize()
	return &Weapon{
		props: props,
		host:  host,
		state: FireState{
			SoonestAttackTime: now,
			BurstRemaining:    props.MaxBurst,
			Clip:              props.MaxClip,
			Reserve:           props.DefaultReserve,
		},
		activity: ActIdle,
	}
}

// SetOwner equips the weapon. A nil owner turns every hook into a no-op.
func (w *Weapon) SetOwner(o Owner) {
	w.owner = o
}

// Owner returns the current owner, possibly nil.
func (w *Weapon) Owner() Owner {
	return w.owner
}

// State returns a copy of the fire state.
func (w *Weapon) State() FireState {
	return w.state
}

// Activity returns the last activity sent to the view model.
func (w *Weapon) Activity() Activity {
	return w.activity
}

// Restore replaces the fire state, clamping fields back into range.
func (w *Weapon) Restore(s FireState) {
	s.AccuracyPenalty = vecmath.Clamp(s.AccuracyPenalty, 0, w.props.MaxPenalty)
	if s.BurstRemaining < 0 {
		s.BurstRemaining = 0
	}
	if s.BurstRemaining > w.props.MaxBurst {
		s.BurstRemaining = w.props.MaxBurst
	}
	if s.ShotsFired < 0 {
		s.ShotsFired = 0
	}
	if s.Clip < 0 {
		s.Clip = 0
	}
	if s.Clip > w.props.MaxClip {
		s.Clip = w.props.MaxClip
	}
	if s.Reserve < 0 {
		s.Reserve = 0
	}
	w.state = s
}

// GateState reports the fire-gate phase at time now for the given input.
func (w *Weapon) GateState(now float64, buttons Buttons) GateState {
	switch {
	case w.state.InReload:
		return GateReloading
	case buttons.Has(InAttack) && w.state.BurstRemaining <= 0:
		return GateBurstExhausted
	case w.state.NextAttackTime > now || w.state.SoonestAttackTime > now:
		return GateCooldown
	default:
		return GateIdle
	}
}

// player returns the owner when it is a player-controlled actor.
func (w *Weapon) player() Owner {
	if w.owner == nil || !w.owner.IsPlayer() {
		return nil
	}
	return w.owner
}

func (w *Weapon) sendAnim(act Activity) {
	w.activity = act
	if w.host.Animator != nil {
		w.host.Animator.SendWeaponAnim(w, act)
	}
}

func (w *Weapon) sequenceDuration() float64 {
	if w.host.Animator == nil {
		return 0
	}
	return w.host.Animator.SequenceDuration(w.activity)
}

func (w *Weapon) sound(s SoundType) {
	if w.host.Sounds != nil {
		w.host.Sounds.WeaponSound(w, s)
	}
}
