package game

import (
	"manhack-sim/internal/sound"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// SequenceDurations are the view-model sequence lengths in seconds.
var SequenceDurations = map[weapon.Activity]float64{
	weapon.ActVMThrow:   0.6,
	weapon.ActVMRecoil1: 0.6,
	weapon.ActVMRecoil2: 0.6,
	weapon.ActVMRecoil3: 0.6,
	weapon.ActVMReload:  1.5,
	weapon.ActVMDryFire: 0.3,
}

// soundNames maps weapon sound slots onto registry scripts.
var soundNames = map[weapon.SoundType]string{
	weapon.SoundEmpty:     sound.ManhackEmpty,
	weapon.SoundSingle:    sound.ManhackSingle,
	weapon.SoundSingleNPC: sound.ManhackSingleNPC,
	weapon.SoundReload:    sound.ManhackReload,
}

// slotHost adapts the engine world to the weapon collaborator interfaces
// for one slot. Every method runs with the engine lock held.
type slotHost struct {
	e *Engine
	s *slot
}

var (
	_ weapon.Spawner          = (*slotHost)(nil)
	_ weapon.Bullets          = (*slotHost)(nil)
	_ weapon.Sounds           = (*slotHost)(nil)
	_ weapon.Animator         = (*slotHost)(nil)
	_ weapon.Stats            = (*slotHost)(nil)
	_ weapon.AnimEventHandler = (*slotHost)(nil)
)

func (h *slotHost) host() weapon.Host {
	return weapon.Host{
		Spawner:  h,
		Bullets:  h,
		Sounds:   h,
		Animator: h,
		Stats:    h,
		Fallback: h,
	}
}

func (h *slotHost) CreateNoSpawn(class string, pos vecmath.Vector, ang vecmath.QAngle, _ weapon.Owner) weapon.Entity {
	m := h.e.world.Create(h.s.id, class, pos, ang)
	if m == nil {
		h.e.emit(EventTypeSpawnFailed, h.s.id, SpawnFailedPayload{
			Live:  h.e.world.Live(),
			Limit: h.e.world.Limit(),
		})
		h.s.stats.SpawnFailures++
		h.e.hooks.spawnFailed(h.s.id)
		h.e.log.Debug().Str("weapon", h.s.id).Int("live", h.e.world.Live()).Msg("manhack spawn refused")
		return nil
	}
	h.s.lastManhack = m.ID
	return m
}

func (h *slotHost) DispatchSpawn(ent weapon.Entity) {
	if m, ok := ent.(*Manhack); ok {
		h.e.world.Dispatch(m, h.e.tickCount)
	}
}

func (h *slotHost) FireBullets(shooter weapon.Owner, info weapon.BulletInfo) {
	var last Shot
	for i := 0; i < info.Shots; i++ {
		dir := weapon.Disperse(info.Dir, info.Spread, h.e.rng)
		last = h.e.world.RecordShot(h.s.id, info.Src, dir, shotDistance(h.s.weapon), info.TracerFreq, h.e.tickCount)
	}

	target := ""
	if op, ok := shooter.(weapon.Operator); ok {
		target = op.EnemyID()
	}
	h.e.emit(EventTypeNPCShot, h.s.id, NPCShotPayload{
		Target: target,
		Tracer: last.Tracer,
		EndX:   last.End.X,
		EndY:   last.End.Y,
		EndZ:   last.End.Z,
	})
	h.s.stats.NPCShots++
	h.e.hooks.npcShot(h.s.id)
}

// shotDistance bounds recorded rays to the NPC's long range so charts
// stay readable; the weapon itself traces MaxTraceLength.
func shotDistance(w *weapon.Weapon) float64 {
	if r := w.Properties().MaxRange1; r > 0 {
		return r
	}
	return weapon.MaxTraceLength
}

func (h *slotHost) WeaponSound(w *weapon.Weapon, s weapon.SoundType) {
	name, ok := soundNames[s]
	if !ok {
		return
	}

	if h.e.sounds != nil {
		em, err := h.e.sounds.EmitAt(name, h.s.actor.Model, h.s.actor.Reverb, h.listenerDistance())
		if err != nil {
			h.e.log.Warn().Err(err).Str("sound", name).Msg("weapon sound failed")
		} else {
			h.s.lastSound = em
		}
	}

	st := w.State()
	switch s {
	case weapon.SoundEmpty:
		// The click is heard before the weapon moves its cooldown
		h.e.emit(EventTypeDryFire, h.s.id, DryFirePayload{
			SoonestAttackTime: h.e.clock + w.Properties().DryRefireInterval,
		})
		h.s.stats.DryFires++
		h.e.hooks.dryFire(h.s.id)
	case weapon.SoundReload:
		h.e.emit(EventTypeReload, h.s.id, ReloadPayload{Clip: st.Clip, Reserve: st.Reserve})
		h.s.stats.Reloads++
		h.e.hooks.reload(h.s.id)
	}
}

// listenerDistance is how far the sound travels: to the actor's enemy when
// it names another launcher, else to the nearest other actor. A lone actor
// hears itself.
func (h *slotHost) listenerDistance() float64 {
	if enemy, ok := h.e.slots[h.s.actor.Enemy]; ok && enemy != h.s {
		return enemy.actor.Pos.Sub(h.s.actor.Pos).Len()
	}
	best := -1.0
	for _, id := range h.e.order {
		other := h.e.slots[id]
		if other == h.s {
			continue
		}
		if d := other.actor.Pos.Sub(h.s.actor.Pos).Len(); best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func (h *slotHost) InsertSound(s weapon.WorldSound) {
	h.e.world.Hear(h.s.id, s, h.e.tickCount)
}

func (h *slotHost) SendWeaponAnim(_ *weapon.Weapon, act weapon.Activity) {
	h.s.viewActivity = act
}

func (h *slotHost) SequenceDuration(act weapon.Activity) float64 {
	return SequenceDurations[act]
}

func (h *slotHost) WeaponFired(_ weapon.Owner, _ bool, _ string) {
	st := h.s.weapon.State()
	h.e.emit(EventTypeThrow, h.s.id, ThrowPayload{
		ManhackID:  h.s.lastManhack,
		Clip:       st.Clip,
		Penalty:    st.AccuracyPenalty,
		ShotsFired: st.ShotsFired,
	})
	h.s.stats.Throws++
	h.e.hooks.throw(h.s.id)
}

// HandleAnimEvent lets an NPC throw a manhack on the weapon_throw event.
func (h *slotHost) HandleAnimEvent(w *weapon.Weapon, evt weapon.AnimEvent, op weapon.Operator) bool {
	if evt.Type != weapon.EventWeaponThrow || op == nil {
		h.e.log.Debug().Str("weapon", h.s.id).Stringer("event", evt.Type).Msg("unhandled anim event")
		return false
	}

	p := w.Properties()
	pos := op.ShootPosition().Add(vecmath.Forward(op.EyeAngles()).Scale(p.ThrowDistance))
	ent := h.CreateNoSpawn(weapon.ManhackClass, pos, op.EyeAngles(), op)
	if ent == nil {
		return true
	}
	ent.AddSpawnFlags(weapon.SpawnPackedUp)
	ent.KeyValue("squadname", p.SquadName)
	h.DispatchSpawn(ent)
	ent.Activate()
	ent.SetFollowOwner(true)

	h.WeaponFired(op, true, p.ClassName)
	return true
}
