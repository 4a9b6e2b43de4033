package weapon

// Activity identifies an animation played by the weapon or its owner.
type Activity int

const (
	ActIdle Activity = iota
	ActVMThrow
	ActVMRecoil1
	ActVMRecoil2
	ActVMRecoil3
	ActVMReload
	ActVMDryFire
	ActRangeAttack1
	ActRangeAttackSlam
)

func (a Activity) String() string {
	switch a {
	case ActIdle:
		return "idle"
	case ActVMThrow:
		return "vm_throw"
	case ActVMRecoil1:
		return "vm_recoil1"
	case ActVMRecoil2:
		return "vm_recoil2"
	case ActVMRecoil3:
		return "vm_recoil3"
	case ActVMReload:
		return "vm_reload"
	case ActVMDryFire:
		return "vm_dryfire"
	case ActRangeAttack1:
		return "range_attack1"
	case ActRangeAttackSlam:
		return "range_attack_slam"
	default:
		return "unknown"
	}
}

// activityFor maps the in-burst shot counter onto the recoil ladder.
func activityFor(shots int) Activity {
	if shots < 1 {
		return ActVMThrow
	}
	if shots < 2 {
		return ActVMRecoil1
	}
	if shots < 3 {
		return ActVMRecoil2
	}
	return ActVMRecoil3
}

// PrimaryAttackActivity returns the view model activity for the current
// position in the burst.
func (w *Weapon) PrimaryAttackActivity() Activity {
	return activityFor(w.state.ShotsFired)
}

// actTable translates owner activities when this weapon is equipped.
var actTable = map[Activity]Activity{
	ActRangeAttack1: ActRangeAttackSlam,
}

// TranslateActivity returns the weapon-specific override for an owner
// activity, or the activity itself.
func (w *Weapon) TranslateActivity(act Activity) Activity {
	if mapped, ok := actTable[act]; ok {
		return mapped
	}
	return act
}
