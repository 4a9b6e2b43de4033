package weapon

import (
	"math/rand"

	"manhack-sim/internal/vecmath"
)

// Buttons is the owner's input bit set for one frame.
type Buttons uint32

const (
	InAttack Buttons = 1 << iota
	InAttack2
	InReload
)

// Has reports whether all bits in f are set.
func (b Buttons) Has(f Buttons) bool {
	return b&f == f
}

// Frame carries everything a per-frame hook needs from the host.
// It replaces the engine globals (current time, frame time, RNG).
type Frame struct {
	Now     float64    // simulation time in seconds
	Delta   float64    // elapsed time since the previous frame
	Buttons Buttons    // owner input snapshot
	Rand    *rand.Rand // host RNG, may be nil when no randomness is needed
}

// Owner is the actor carrying the weapon.
type Owner interface {
	IsPlayer() bool
	IsNPC() bool
	Origin() vecmath.Vector
	ShootPosition() vecmath.Vector
	EyeAngles() vecmath.QAngle
	PunchAngle() vecmath.QAngle
	ViewPunch(vecmath.QAngle)
	ViewPunchReset()
}

// Operator is an NPC driving the weapon through animation events.
type Operator interface {
	Owner
	// ShootTrajectory returns the NPC's aim direction from the given origin.
	ShootTrajectory(from vecmath.Vector) vecmath.Vector
	// EnemyID names the current target, empty when there is none.
	EnemyID() string
	MuzzleFlash()
}

// SpawnFlags are applied to a created entity before it is dispatched.
type SpawnFlags uint32

const (
	SpawnPackedUp SpawnFlags = 1 << 16
)

// Entity is a created but not yet spawned secondary entity.
type Entity interface {
	AddSpawnFlags(SpawnFlags)
	KeyValue(key, value string)
	Activate()
	SetFollowOwner(bool)
}

// Spawner creates entities in the host world.
type Spawner interface {
	// CreateNoSpawn returns nil when the entity cannot be created.
	CreateNoSpawn(class string, pos vecmath.Vector, ang vecmath.QAngle, owner Owner) Entity
	DispatchSpawn(Entity)
}

// BulletInfo describes one hitscan volley.
type BulletInfo struct {
	Shots      int
	Src        vecmath.Vector
	Dir        vecmath.Vector
	Spread     vecmath.Vector
	Distance   float64
	AmmoType   string
	TracerFreq int
}

// Bullets is the host hitscan primitive.
type Bullets interface {
	FireBullets(shooter Owner, info BulletInfo)
}

// SoundType names the per-weapon sound slots.
type SoundType int

const (
	SoundEmpty SoundType = iota
	SoundSingle
	SoundSingleNPC
	SoundReload
)

func (s SoundType) String() string {
	switch s {
	case SoundEmpty:
		return "empty"
	case SoundSingle:
		return "single_shot"
	case SoundSingleNPC:
		return "single_shot_npc"
	case SoundReload:
		return "reload"
	default:
		return "unknown"
	}
}

// WorldSound flags, matching the AI hearing categories.
const (
	SoundCombat         = 1 << 3
	SoundContextGunfire = 1 << 20
)

// WorldSound is an AI-audible sound inserted into the world.
type WorldSound struct {
	Type     int
	Origin   vecmath.Vector
	Volume   float64
	Duration float64
	Channel  string
	Target   string
}

// Sounds plays weapon sounds and inserts AI-audible world sounds.
type Sounds interface {
	WeaponSound(w *Weapon, s SoundType)
	InsertSound(s WorldSound)
}

// Animator plays weapon activities on the view model.
type Animator interface {
	SendWeaponAnim(w *Weapon, act Activity)
	SequenceDuration(act Activity) float64
}

// Stats receives gameplay statistics.
type Stats interface {
	WeaponFired(owner Owner, primary bool, class string)
}

// AnimEventHandler handles events this weapon does not recognise.
type AnimEventHandler interface {
	HandleAnimEvent(w *Weapon, evt AnimEvent, op Operator) bool
}

// Host bundles the collaborators a weapon calls into.
// Nil collaborators are skipped.
type Host struct {
	Spawner  Spawner
	Bullets  Bullets
	Sounds   Sounds
	Animator Animator
	Stats    Stats
	Fallback AnimEventHandler
}
