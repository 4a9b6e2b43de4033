package game

import (
	"math/rand"

	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// EyeHeight is the standing eye offset above an actor's origin.
const EyeHeight = 64.0

// ActorKind tells players from NPCs.
type ActorKind uint8

const (
	ActorPlayer ActorKind = iota
	ActorNPC
)

func (k ActorKind) String() string {
	if k == ActorNPC {
		return "npc"
	}
	return "player"
}

// Actor carries one launcher. Players drive it through buttons, NPCs
// through queued animation events.
type Actor struct {
	Kind   ActorKind
	Pos    vecmath.Vector
	Eyes   vecmath.QAngle
	Punch  vecmath.QAngle
	Model  string
	Enemy  string
	Reverb float64

	// Busy actors run the weapon's busy hook instead of its post-frame
	Busy bool

	Flashes int

	// Set by the engine before NPC events are dispatched
	cone vecmath.Vector
	rng  *rand.Rand
}

var _ weapon.Operator = (*Actor)(nil)

func (a *Actor) IsPlayer() bool                { return a.Kind == ActorPlayer }
func (a *Actor) IsNPC() bool                   { return a.Kind == ActorNPC }
func (a *Actor) Origin() vecmath.Vector        { return a.Pos }
func (a *Actor) EyeAngles() vecmath.QAngle     { return a.Eyes }
func (a *Actor) PunchAngle() vecmath.QAngle    { return a.Punch }
func (a *Actor) ViewPunch(p vecmath.QAngle)    { a.Punch = a.Punch.Add(p) }
func (a *Actor) ViewPunchReset()               { a.Punch = vecmath.QAngle{} }
func (a *Actor) EnemyID() string               { return a.Enemy }
func (a *Actor) MuzzleFlash()                  { a.Flashes++ }
func (a *Actor) ShootPosition() vecmath.Vector { return a.Pos.Add(vecmath.Vec(0, 0, EyeHeight)) }

// ShootTrajectory aims along the eye angles, dispersed inside the cone
// the engine set for this volley.
func (a *Actor) ShootTrajectory(vecmath.Vector) vecmath.Vector {
	return weapon.Disperse(vecmath.Forward(a.Eyes), a.cone, a.rng)
}
