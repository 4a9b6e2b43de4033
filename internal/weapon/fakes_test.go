package weapon

import (
	"manhack-sim/internal/vecmath"
)

// fakeOwner is a scriptable weapon carrier
type fakeOwner struct {
	npc        bool
	eyes       vecmath.QAngle
	punch      vecmath.QAngle
	shootPos   vecmath.Vector
	punchReset int
	enemy      string
	flashes    int
}

func (o *fakeOwner) IsPlayer() bool { return !o.npc }
func (o *fakeOwner) IsNPC() bool { return o.npc }
func (o *fakeOwner) Origin() vecmath.Vector { return o.shootPos.Sub(vecmath.Vec(0, 0, 64)) }
func (o *fakeOwner) ShootPosition() vecmath.Vector { return o.shootPos }
func (o *fakeOwner) EyeAngles() vecmath.QAngle { return o.eyes }
func (o *fakeOwner) PunchAngle() vecmath.QAngle { return o.punch }
func (o *fakeOwner) ViewPunch(a vecmath.QAngle) { o.punch = o.punch.Add(a) }
func (o *fakeOwner) ViewPunchReset() { o.punch = vecmath.QAngle{}; o.punchReset++ }
func (o *fakeOwner) ShootTrajectory(vecmath.Vector) vecmath.Vector { return vecmath.Vec(1, 0, 0) }
func (o *fakeOwner) EnemyID() string { return o.enemy }
func (o *fakeOwner) MuzzleFlash() { o.flashes++ }

type fakeEntity struct {
	pos    vecmath.Vector
	flags  SpawnFlags
	keys   map[string]string
	active bool
	follow bool
}

func (e *fakeEntity) AddSpawnFlags(f SpawnFlags) { e.flags |= f }
func (e *fakeEntity) KeyValue(key, value string) { e.keys[key] = value }
func (e *fakeEntity) Activate() { e.active = true }
func (e *fakeEntity) SetFollowOwner(b bool) { e.follow = b }

// fakeHost records every collaborator call
type fakeHost struct {
	failSpawn  bool
	spawned    []*fakeEntity
	dispatched int
	bullets    []BulletInfo
	sounds     []SoundType
	world      []WorldSound
	anims      []Activity
	fired      int
	durations  map[Activity]float64
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		durations: map[Activity]float64{
			ActVMThrow:  0.5,
			ActVMReload: 1.2,
			ActIdle:     0.1,
		},
	}
}

func (h *fakeHost) host() Host {
	return Host{Spawner: h, Bullets: h, Sounds: h, Animator: h, Stats: h}
}

func (h *fakeHost) CreateNoSpawn(class string, pos vecmath.Vector, ang vecmath.QAngle, owner Owner) Entity {
	if h.failSpawn {
		return nil
	}
	e := &fakeEntity{pos: pos, keys: map[string]string{}}
	h.spawned = append(h.spawned, e)
	return e
}

func (h *fakeHost) DispatchSpawn(Entity) { h.dispatched++ }
func (h *fakeHost) FireBullets(_ Owner, info BulletInfo) { h.bullets = append(h.bullets, info) }
func (h *fakeHost) WeaponSound(_ *Weapon, s SoundType) { h.sounds = append(h.sounds, s) }
func (h *fakeHost) InsertSound(s WorldSound) { h.world = append(h.world, s) }
func (h *fakeHost) SendWeaponAnim(_ *Weapon, act Activity) { h.anims = append(h.anims, act) }
func (h *fakeHost) SequenceDuration(act Activity) float64 { return h.durations[act] }
func (h *fakeHost) WeaponFired(Owner, bool, string) { h.fired++ }

func (h *fakeHost) countSound(s SoundType) int {
	n := 0
	for _, got := range h.sounds {
		if got == s {
			n++
		}
	}
	return n
}

// newTestWeapon returns a player-owned weapon at time zero
func newTestWeapon() (*Weapon, *fakeHost, *fakeOwner) {
	h := newFakeHost()
	w := New(DefaultProperties(), h.host(), 0)
	o := &fakeOwner{shootPos: vecmath.Vec(0, 0, 64)}
	w.SetOwner(o)
	return w, h, o
}

func held(now float64) Frame {
	return Frame{Now: now, Delta: 0.1, Buttons: InAttack}
}

func released(now float64) Frame {
	return Frame{Now: now, Delta: 0.1}
}
