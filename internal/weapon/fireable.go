// Package weapon implements the manhack launcher: a thrown-entity weapon
// whose accuracy penalty, fire gate and burst counter are driven once per
// simulated frame by a host.
//
// The host owns time and input. Every hook takes a Frame, so a weapon has
// no hidden global state and replays deterministically.
package weapon

import "manhack-sim/internal/vecmath"

// Fireable is the capability set a host drives each frame.
type Fireable interface {
	PreFrame(f Frame)
	BusyFrame(f Frame)
	PostFrame(f Frame)
	PrimaryAttack(f Frame)
	Reload(f Frame) bool
	BulletSpread() vecmath.Vector
	PrimaryAttackActivity() Activity
	HandleAnimEvent(evt AnimEvent, op Operator) bool
}

var _ Fireable = (*Weapon)(nil)
