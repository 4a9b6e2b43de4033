package weapon

import "manhack-sim/internal/vecmath"

// PostFrame runs the host's attack dispatch, then the click-rate refire
// and dry-fire rules. Only player owners are simulated here; NPCs drive
// the weapon through HandleAnimEvent.
func (w *Weapon) PostFrame(f Frame) {
	if w.player() == nil {
		return
	}

	w.dispatch(f)

	if w.state.InReload {
		return
	}

	held := f.Buttons.Has(InAttack)
	if !held {
		w.state.BurstRemaining = w.props.MaxBurst
	}

	// Allow a refire as fast as the player can click
	if !held && w.state.SoonestAttackTime < f.Now {
		w.state.NextAttackTime = f.Now - 1
	} else if held && w.state.NextAttackTime < f.Now && w.state.Clip <= 0 {
		w.DryFire(f)
	}
}

// dispatch is the generic weapon frame: finish reloads, fire when the
// trigger is held and the gate is open, reload on request or when empty.
func (w *Weapon) dispatch(f Frame) {
	if w.state.InReload {
		if f.Now < w.state.ReloadDoneTime {
			return
		}
		w.finishReload()
	}

	held := f.Buttons.Has(InAttack)
	switch {
	case held:
		if w.state.NextAttackTime <= f.Now && w.state.Clip > 0 && w.state.BurstRemaining > 0 {
			w.PrimaryAttack(f)
		}
	case f.Buttons.Has(InReload):
		w.Reload(f)
	case w.props.AutoReload && w.state.Clip <= 0 && w.state.NextAttackTime <= f.Now:
		w.Reload(f)
	}
}

// PrimaryAttack throws one manhack.
func (w *Weapon) PrimaryAttack(f Frame) {
	owner := w.player()
	if owner == nil {
		return
	}

	w.sendAnim(ActVMThrow)

	if f.Now-w.state.LastAttackTime > w.props.ShotResetWindow {
		w.state.ShotsFired = 0
	} else {
		w.state.ShotsFired++
	}
	w.state.LastAttackTime = f.Now

	// Time we wait before allowing to throw another
	w.state.NextAttackTime = f.Now + w.props.RefireInterval

	w.state.Clip--

	throw := vecmath.Forward(owner.EyeAngles().Add(owner.PunchAngle())).Scale(w.props.ThrowDistance)
	if !w.spawnManhack(owner, owner.ShootPosition().Add(throw)) {
		if w.props.RefundClipOnSpawnFailure {
			w.state.Clip++
		}
		return
	}

	owner.ViewPunchReset()
	if w.props.ViewKick {
		w.AddViewKick(f)
	}
	w.addPenalty()

	if w.state.BurstRemaining <= 0 {
		return
	}
	w.state.BurstRemaining--
	w.state.PrimaryAttacks++

	if w.host.Stats != nil {
		w.host.Stats.WeaponFired(owner, true, w.props.ClassName)
	}
}

func (w *Weapon) spawnManhack(owner Owner, pos vecmath.Vector) bool {
	if w.host.Spawner == nil {
		return false
	}
	e := w.host.Spawner.CreateNoSpawn(ManhackClass, pos, owner.EyeAngles(), owner)
	if e == nil {
		return false
	}

	e.AddSpawnFlags(SpawnPackedUp)
	e.KeyValue("squadname", w.props.SquadName)
	w.host.Spawner.DispatchSpawn(e)
	e.Activate()
	e.SetFollowOwner(true)
	return true
}

// DryFire clicks an empty weapon.
func (w *Weapon) DryFire(f Frame) {
	w.sound(SoundEmpty)

	w.state.SoonestAttackTime = f.Now + w.props.DryRefireInterval
	w.state.NextAttackTime = f.Now + w.sequenceDuration()
}

// Reload starts refilling the clip. It fails without side effects when a
// reload is running, the clip is full or the reserve is empty.
func (w *Weapon) Reload(f Frame) bool {
	if w.state.InReload || w.state.Clip >= w.props.MaxClip || w.state.Reserve <= 0 {
		return false
	}

	w.sendAnim(ActVMReload)
	d := w.sequenceDuration()
	w.state.InReload = true
	w.state.ReloadDoneTime = f.Now + d
	w.state.NextAttackTime = f.Now + d

	w.sound(SoundReload)
	w.state.AccuracyPenalty = 0
	return true
}

func (w *Weapon) finishReload() {
	need := w.props.MaxClip - w.state.Clip
	if need > w.state.Reserve {
		need = w.state.Reserve
	}
	w.state.Clip += need
	w.state.Reserve -= need
	w.state.InReload = false
	w.activity = ActIdle
}

// AddViewKick punches the owner's view up and to a random side.
func (w *Weapon) AddViewKick(f Frame) {
	owner := w.player()
	if owner == nil || f.Rand == nil {
		return
	}

	punch := vecmath.QAngle{
		Pitch: randRange(f, 0.25, 0.5),
		Yaw:   randRange(f, -0.6, 0.6),
	}
	owner.ViewPunch(punch)
}

func randRange(f Frame, lo, hi float64) float64 {
	return lo + f.Rand.Float64()*(hi-lo)
}
