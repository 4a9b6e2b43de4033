package weapon

import (
	"fmt"
	"strconv"
	"strings"
)

// AnimEventType identifies an animation event raised by an NPC's model.
type AnimEventType int

const (
	EventWeaponMeleeHit   AnimEventType = 3001
	EventWeaponThrow      AnimEventType = 3005
	EventWeaponPistolFire AnimEventType = 3014
)

func (t AnimEventType) String() string {
	switch t {
	case EventWeaponMeleeHit:
		return "weapon_melee_hit"
	case EventWeaponThrow:
		return "weapon_throw"
	case EventWeaponPistolFire:
		return "weapon_pistol_fire"
	default:
		return "unknown"
	}
}

// AnimEvent is dispatched by the host when an NPC animation reaches a
// keyed frame.
type AnimEvent struct {
	Type    AnimEventType
	Options string
}

// SoundentVolumePistol is the AI hearing radius of a pistol shot.
const SoundentVolumePistol = 1500

// HandleAnimEvent fires on behalf of an NPC operator. It reports whether
// the event was consumed.
func (w *Weapon) HandleAnimEvent(evt AnimEvent, op Operator) bool {
	switch evt.Type {
	case EventWeaponPistolFire:
		if op == nil || !op.IsNPC() {
			return false
		}

		src := op.ShootPosition()
		dir := op.ShootTrajectory(src)

		if w.host.Sounds != nil {
			w.host.Sounds.InsertSound(WorldSound{
				Type:     SoundCombat | SoundContextGunfire,
				Origin:   op.Origin(),
				Volume:   SoundentVolumePistol,
				Duration: 0.2,
				Channel:  "weapon",
				Target:   op.EnemyID(),
			})
		}
		w.sound(SoundSingleNPC)

		if w.host.Bullets != nil {
			w.host.Bullets.FireBullets(op, BulletInfo{
				Shots:      1,
				Src:        src,
				Dir:        dir,
				Spread:     ConePrecalculated,
				Distance:   MaxTraceLength,
				AmmoType:   w.props.AmmoType,
				TracerFreq: 2,
			})
		}
		op.MuzzleFlash()

		w.state.Clip--
		return true
	default:
		if w.host.Fallback != nil {
			return w.host.Fallback.HandleAnimEvent(w, evt, op)
		}
		return false
	}
}

// ParseAnimEvent accepts short names (pistol_fire, throw, melee_hit), the
// full names returned by String, and numeric ids. Empty means pistol fire.
func ParseAnimEvent(s string) (AnimEventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pistol_fire", "weapon_pistol_fire":
		return EventWeaponPistolFire, nil
	case "throw", "weapon_throw":
		return EventWeaponThrow, nil
	case "melee_hit", "weapon_melee_hit":
		return EventWeaponMeleeHit, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unknown animation event %q", s)
	}
	return AnimEventType(n), nil
}
