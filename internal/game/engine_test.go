package game

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"manhack-sim/internal/sound"
	"manhack-sim/internal/storage"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

const dt = 0.1

func newTestEngine(t *testing.T, mutate func(*EngineConfig)) *Engine {
	t.Helper()
	cfg := DefaultEngineConfig()
	cfg.Seed = 7
	if mutate != nil {
		mutate(&cfg)
	}
	return NewEngine(cfg)
}

func addPlayer(t *testing.T, e *Engine, opts WeaponOptions) string {
	t.Helper()
	w, err := e.AddWeapon(opts)
	if err != nil {
		t.Fatalf("AddWeapon failed: %v", err)
	}
	return w.ID
}

// throwOnce holds attack for one frame and releases it for the next
func throwOnce(t *testing.T, e *Engine, id string) {
	t.Helper()
	if err := e.SetInput(id, weapon.InAttack); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	e.Step(dt)
	if err := e.SetInput(id, 0); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	e.Step(dt)
}

func mustWeapon(t *testing.T, e *Engine, id string) WeaponSnapshot {
	t.Helper()
	w, err := e.Weapon(id)
	if err != nil {
		t.Fatalf("Weapon(%s) failed: %v", id, err)
	}
	return w
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// TestNewEngine verifies engine creation with correct defaults
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		tickRate int
		want     int
	}{
		{"standard 30 TPS", 30, 30},
		{"high 60 TPS", 60, 60},
		{"zero falls back", 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, func(c *EngineConfig) { c.TickRate = tt.tickRate })
			if e.TickRate() != tt.want {
				t.Errorf("Expected tick rate %d, got %d", tt.want, e.TickRate())
			}
			if e.GetSnapshot() == nil {
				t.Error("Expected an initial snapshot")
			}
			if e.TickCount() != 0 {
				t.Errorf("Expected 0 ticks, got %d", e.TickCount())
			}
		})
	}
}

// TestEngineStartStop verifies the loop ticks and can be restarted
func TestEngineStartStop(t *testing.T) {
	e := newTestEngine(t, nil)

	e.Start()
	time.Sleep(150 * time.Millisecond)
	e.Stop()

	if e.TickCount() == 0 {
		t.Error("Expected at least one tick while running")
	}
	if e.IsRunning() {
		t.Error("Engine should not be running after Stop")
	}

	// Should not panic on double stop
	e.Stop()

	e.Start()
	e.Stop()
}

// TestAddWeapon tests id generation, presets and limits
func TestAddWeapon(t *testing.T) {
	e := newTestEngine(t, func(c *EngineConfig) { c.MaxWeapons = 2 })

	w, err := e.AddWeapon(WeaponOptions{})
	if err != nil {
		t.Fatalf("AddWeapon failed: %v", err)
	}
	if w.ID != "w1" {
		t.Errorf("Expected generated id w1, got %s", w.ID)
	}
	if w.Preset != DefaultPreset {
		t.Errorf("Expected preset %s, got %s", DefaultPreset, w.Preset)
	}
	if w.State.Clip != 3 || w.State.Reserve != 9 {
		t.Errorf("Expected clip 3 reserve 9, got %d/%d", w.State.Clip, w.State.Reserve)
	}
	if w.Owner != "player" {
		t.Errorf("Expected player owner, got %s", w.Owner)
	}

	if _, err := e.AddWeapon(WeaponOptions{ID: "w1"}); !errors.Is(err, ErrDuplicateWeapon) {
		t.Errorf("Expected ErrDuplicateWeapon, got %v", err)
	}
	if _, err := e.AddWeapon(WeaponOptions{Preset: "plasma"}); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}

	if _, err := e.AddWeapon(WeaponOptions{ID: "npc", NPC: true}); err != nil {
		t.Fatalf("AddWeapon failed: %v", err)
	}
	if _, err := e.AddWeapon(WeaponOptions{}); !errors.Is(err, ErrWeaponLimit) {
		t.Errorf("Expected ErrWeaponLimit, got %v", err)
	}

	ws := e.Weapons()
	if len(ws) != 2 || ws[0].ID != "w1" || ws[1].ID != "npc" {
		t.Errorf("Expected insertion order [w1 npc], got %+v", ws)
	}
}

// TestRemoveWeapon tests removal and manhack cleanup
func TestRemoveWeapon(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})
	throwOnce(t, e, id)

	if len(e.Manhacks()) != 1 {
		t.Fatalf("Expected 1 manhack, got %d", len(e.Manhacks()))
	}
	if err := e.RemoveWeapon(id); err != nil {
		t.Fatalf("RemoveWeapon failed: %v", err)
	}
	if len(e.Manhacks()) != 0 {
		t.Error("Manhacks should be removed with their launcher")
	}
	if !errors.Is(e.RemoveWeapon(id), ErrUnknownWeapon) {
		t.Error("Expected ErrUnknownWeapon for second removal")
	}
	if _, err := e.Weapon(id); !errors.Is(err, ErrUnknownWeapon) {
		t.Errorf("Expected ErrUnknownWeapon, got %v", err)
	}
}

// TestThrowSpawnsManhack checks the entity a throw creates
func TestThrowSpawnsManhack(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})

	if err := e.SetInput(id, weapon.InAttack); err != nil {
		t.Fatal(err)
	}
	e.Step(dt)

	w := mustWeapon(t, e, id)
	if w.State.Clip != 2 {
		t.Errorf("Expected clip 2 after throw, got %d", w.State.Clip)
	}
	if w.Stats.Throws != 1 {
		t.Errorf("Expected 1 throw, got %d", w.Stats.Throws)
	}
	if w.ViewActivity != weapon.ActVMThrow.String() {
		t.Errorf("Expected view activity %s, got %s", weapon.ActVMThrow, w.ViewActivity)
	}
	if w.LastSound != "" {
		t.Errorf("A throw plays no weapon sound, got %s", w.LastSound)
	}

	ms := e.Manhacks()
	if len(ms) != 1 {
		t.Fatalf("Expected 1 manhack, got %d", len(ms))
	}
	m := ms[0]
	if m.Owner != id || m.Class != weapon.ManhackClass {
		t.Errorf("Unexpected manhack identity: %+v", m)
	}
	if m.Flags&weapon.SpawnPackedUp == 0 {
		t.Error("Manhack should spawn packed up")
	}
	if m.Keys["squadname"] != "controllable_manhack_squad" {
		t.Errorf("Unexpected squad %q", m.Keys["squadname"])
	}
	if !m.Spawned || !m.Active || !m.FollowOwner {
		t.Errorf("Manhack should be spawned, active and following: %+v", m)
	}
	want := vecmath.Vec(25, 0, EyeHeight)
	if m.Pos.Sub(want).Len() > 1e-9 {
		t.Errorf("Expected spawn at %v, got %v", want, m.Pos)
	}

	if n := countEvents(e.Events(0, id), EventTypeThrow); n != 1 {
		t.Errorf("Expected 1 throw event, got %d", n)
	}
}

// TestHeldTriggerThrowsOnce checks the burst gate over a long hold
func TestHeldTriggerThrowsOnce(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})

	e.SetInput(id, weapon.InAttack)
	for i := 0; i < 30; i++ {
		e.Step(dt)
	}

	w := mustWeapon(t, e, id)
	if w.Stats.Throws != 1 {
		t.Errorf("Expected a single throw per hold, got %d", w.Stats.Throws)
	}
	if w.Gate != weapon.GateBurstExhausted.String() {
		t.Errorf("Expected gate %s, got %s", weapon.GateBurstExhausted, w.Gate)
	}

	// Release and click again: the refire timer is rewound
	e.SetInput(id, 0)
	e.Step(dt)
	throwOnce(t, e, id)
	if w := mustWeapon(t, e, id); w.Stats.Throws != 2 {
		t.Errorf("Expected 2 throws after a fresh click, got %d", w.Stats.Throws)
	}
}

// TestSpawnFailure checks the live cap and the refund preset
func TestSpawnFailure(t *testing.T) {
	tests := []struct {
		preset   string
		wantClip int
	}{
		{"stock", 1},
		{"refund", 2},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			e := newTestEngine(t, func(c *EngineConfig) { c.MaxManhacks = 1 })
			id := addPlayer(t, e, WeaponOptions{Preset: tt.preset})

			failed := 0
			e.SetHooks(Hooks{OnSpawnFailed: func(string) { failed++ }})

			throwOnce(t, e, id)
			throwOnce(t, e, id)

			w := mustWeapon(t, e, id)
			if w.State.Clip != tt.wantClip {
				t.Errorf("Expected clip %d, got %d", tt.wantClip, w.State.Clip)
			}
			if w.Stats.SpawnFailures != 1 || failed != 1 {
				t.Errorf("Expected one spawn failure, got stats %d hook %d", w.Stats.SpawnFailures, failed)
			}
			if w.Stats.Throws != 1 {
				t.Errorf("A failed spawn is not a throw, got %d throws", w.Stats.Throws)
			}
			if n := countEvents(e.Events(0, id), EventTypeSpawnFailed); n != 1 {
				t.Errorf("Expected 1 spawn_failed event, got %d", n)
			}
			if snap := e.GetSnapshot(); snap.SpawnFailures != 1 || snap.ManhackLimit != 1 {
				t.Errorf("Unexpected snapshot counters: %d/%d", snap.SpawnFailures, snap.ManhackLimit)
			}
		})
	}
}

// TestManhackLifetime checks expiry in ticks
func TestManhackLifetime(t *testing.T) {
	e := newTestEngine(t, func(c *EngineConfig) { c.ManhackLife = 2 })
	id := addPlayer(t, e, WeaponOptions{})

	e.SetInput(id, weapon.InAttack)
	e.Step(dt) // tick 1, spawned
	e.Step(dt) // tick 2
	if len(e.Manhacks()) != 1 {
		t.Fatalf("Manhack should live for 2 ticks")
	}
	e.Step(dt) // tick 3
	if len(e.Manhacks()) != 0 {
		t.Error("Manhack should expire after its lifetime")
	}
}

// TestAutoReload empties the clip and waits for the reload to finish
func TestAutoReload(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})

	for i := 0; i < 3; i++ {
		throwOnce(t, e, id)
	}
	if w := mustWeapon(t, e, id); w.State.Clip != 0 {
		t.Fatalf("Expected empty clip, got %d", w.State.Clip)
	}

	e.Step(dt)
	w := mustWeapon(t, e, id)
	if !w.State.InReload || w.Gate != weapon.GateReloading.String() {
		t.Fatalf("Expected auto reload to start, got %+v gate %s", w.State, w.Gate)
	}
	if w.Stats.Reloads != 1 || w.LastSound == "" {
		t.Errorf("Expected reload counted and sound played, got %+v", w.Stats)
	}
	if w.State.AccuracyPenalty != 0 {
		t.Errorf("Reload should clear the penalty, got %f", w.State.AccuracyPenalty)
	}

	for i := 0; i < 20; i++ {
		e.Step(dt)
	}
	w = mustWeapon(t, e, id)
	if w.State.InReload || w.State.Clip != 3 || w.State.Reserve != 6 {
		t.Errorf("Expected clip 3 reserve 6 after reload, got %+v", w.State)
	}
}

// TestDryFire clicks an empty launcher with auto reload disabled
func TestDryFire(t *testing.T) {
	e := newTestEngine(t, nil)
	props := weapon.DefaultProperties()
	props.AutoReload = false
	id := addPlayer(t, e, WeaponOptions{Properties: &props})

	for i := 0; i < 3; i++ {
		throwOnce(t, e, id)
	}
	e.SetInput(id, weapon.InAttack)
	e.Step(dt)

	w := mustWeapon(t, e, id)
	if w.Stats.DryFires != 1 {
		t.Fatalf("Expected 1 dry fire, got %d", w.Stats.DryFires)
	}
	if math.Abs(w.State.SoonestAttackTime-(e.SimTime()+props.DryRefireInterval)) > 1e-9 {
		t.Errorf("Unexpected soonest attack time %f at %f", w.State.SoonestAttackTime, e.SimTime())
	}
	if w.State.InReload {
		t.Error("Dry fire must not start a reload")
	}

	events := e.Events(0, id)
	if n := countEvents(events, EventTypeDryFire); n != 1 {
		t.Errorf("Expected 1 dry_fire event, got %d", n)
	}
}

// TestExplicitReload tests the reload request path
func TestExplicitReload(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})

	ok, err := e.Reload(id)
	if err != nil || ok {
		t.Errorf("Full clip should refuse to reload, got %v %v", ok, err)
	}

	throwOnce(t, e, id)
	ok, err = e.Reload(id)
	if err != nil || !ok {
		t.Fatalf("Expected reload to start, got %v %v", ok, err)
	}
	ok, _ = e.Reload(id)
	if ok {
		t.Error("Reload while reloading should fail")
	}

	if _, err := e.Reload("missing"); !errors.Is(err, ErrUnknownWeapon) {
		t.Errorf("Expected ErrUnknownWeapon, got %v", err)
	}
}

// TestBusyOwner holds attack while busy and expects no throw
func TestBusyOwner(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})

	e.SetBusy(id, true)
	e.SetInput(id, weapon.InAttack)
	for i := 0; i < 5; i++ {
		e.Step(dt)
	}
	if w := mustWeapon(t, e, id); w.Stats.Throws != 0 || !w.Busy {
		t.Errorf("Busy owner should not throw, got %+v", w.Stats)
	}

	e.SetBusy(id, false)
	e.Step(dt)
	if w := mustWeapon(t, e, id); w.Stats.Throws != 1 {
		t.Errorf("Expected throw once free, got %d", w.Stats.Throws)
	}
}

// TestNPCVolley fires a clamped pistol volley through animation events
func TestNPCVolley(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{ID: "npc", NPC: true, Enemy: "rebel"})
	player := addPlayer(t, e, WeaponOptions{})

	if _, err := e.FireNPCVolley(player, weapon.EventWeaponPistolFire, 1); !errors.Is(err, ErrNotNPC) {
		t.Errorf("Expected ErrNotNPC, got %v", err)
	}

	queued, err := e.FireNPCVolley(id, weapon.EventWeaponPistolFire, 10)
	if err != nil {
		t.Fatalf("FireNPCVolley failed: %v", err)
	}
	if queued != 3 {
		t.Errorf("Expected volley clamped to 3, got %d", queued)
	}

	// Fire rate 2/s paces the volley over about a second
	for i := 0; i < 20; i++ {
		e.Step(dt)
	}

	w := mustWeapon(t, e, id)
	if w.Stats.NPCShots != 3 || w.PendingEvents != 0 {
		t.Fatalf("Expected 3 shots and an empty queue, got %d / %d", w.Stats.NPCShots, w.PendingEvents)
	}
	if w.State.Clip != 0 {
		t.Errorf("Expected clip 0, got %d", w.State.Clip)
	}
	if w.SpreadDegrees < 4.99 || w.SpreadDegrees > 5.01 {
		t.Errorf("NPC spread should be 5 degrees, got %f", w.SpreadDegrees)
	}

	shots := e.Shots(id)
	if len(shots) != 3 {
		t.Fatalf("Expected 3 recorded shots, got %d", len(shots))
	}
	tracers := 0
	for _, s := range shots {
		if d := s.End.Sub(s.Src).Len(); math.Abs(d-1500) > 1e-6 {
			t.Errorf("Shot length should be 1500, got %f", d)
		}
		if s.Tracer {
			tracers++
		}
	}
	if tracers != 1 {
		t.Errorf("Expected every second shot to be a tracer, got %d of 3", tracers)
	}
	if len(e.Shots(player)) != 0 {
		t.Error("Player should have no shots")
	}

	heard := e.HeardSounds()
	if len(heard) != 3 || heard[0].Target != "rebel" {
		t.Errorf("Expected 3 world sounds aimed at rebel, got %+v", heard)
	}

	// An empty NPC tops up before the next volley
	e.FireNPCVolley(id, weapon.EventWeaponPistolFire, 0)
	e.Step(dt)
	w = mustWeapon(t, e, id)
	if w.Stats.Reloads != 1 || w.State.Clip != 2 || w.Stats.NPCShots != 4 {
		t.Errorf("Expected refill then one shot, got %+v clip %d", w.Stats, w.State.Clip)
	}
}

// TestNPCThrowEvent routes weapon_throw through the host fallback
func TestNPCThrowEvent(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{NPC: true})

	queued, err := e.FireNPCVolley(id, weapon.EventWeaponThrow, 5)
	if err != nil || queued != 1 {
		t.Fatalf("Expected one queued throw, got %d %v", queued, err)
	}
	e.Step(dt)

	if len(e.Manhacks()) != 1 {
		t.Errorf("Expected NPC throw to spawn a manhack, got %d", len(e.Manhacks()))
	}
	if w := mustWeapon(t, e, id); w.Stats.Throws != 1 {
		t.Errorf("Expected 1 throw, got %d", w.Stats.Throws)
	}
}

// TestNPCSoundTravel checks NPC shot sounds carry the travel time to the
// enemy and the actor model's length
func TestNPCSoundTravel(t *testing.T) {
	const model = "models/combine_soldier.mdl"
	e := newTestEngine(t, nil)
	addPlayer(t, e, WeaponOptions{ID: "p1", Pos: vecmath.Vec(1372, 0, 0)})
	id := addPlayer(t, e, WeaponOptions{ID: "npc", NPC: true, Enemy: "p1", Model: model})

	if _, err := e.FireNPCVolley(id, weapon.EventWeaponPistolFire, 1); err != nil {
		t.Fatalf("FireNPCVolley failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		e.Step(dt)
	}

	w := mustWeapon(t, e, id)
	if w.LastSound != sound.ManhackSingleNPC {
		t.Fatalf("Expected %s, got %q", sound.ManhackSingleNPC, w.LastSound)
	}
	if want := sound.TravelTime(1372); w.SoundDelay != want {
		t.Errorf("Sound delay = %v, want %v", w.SoundDelay, want)
	}
	want, err := e.Sounds().DurationWithSpeedOfSound(sound.ManhackSingleNPC, model, 1372)
	if err != nil {
		t.Fatalf("DurationWithSpeedOfSound failed: %v", err)
	}
	if w.SoundHeard != want {
		t.Errorf("Sound heard after %v, want %v", w.SoundHeard, want)
	}
	if w.SoundHeard-w.SoundDelay != 200*time.Millisecond {
		t.Errorf("Expected the soldier length, got %v", w.SoundHeard-w.SoundDelay)
	}

	if w.AttackActivity != weapon.ActRangeAttackSlam.String() || w.Capabilities != weapon.CapRangeAttack1 {
		t.Errorf("NPC attack = %s caps %d", w.AttackActivity, w.Capabilities)
	}
	if p := mustWeapon(t, e, "p1"); p.AttackActivity != "" || p.Capabilities != 0 {
		t.Errorf("Player should carry no NPC attack info, got %+v", p)
	}
}

// TestQueueFull caps pending NPC events
func TestQueueFull(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{NPC: true})

	for i := 0; i < MaxPendingEvents; i++ {
		if _, err := e.FireNPCVolley(id, weapon.EventWeaponThrow, 1); err != nil {
			t.Fatalf("queue %d: %v", i, err)
		}
	}
	if _, err := e.FireNPCVolley(id, weapon.EventWeaponThrow, 1); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

// TestSaveRestore round-trips a fire state through the store
func TestSaveRestore(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})
	other := addPlayer(t, e, WeaponOptions{})

	throwOnce(t, e, id)
	saved := mustWeapon(t, e, id).State

	rec, err := e.Save(ctx, id, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if rec.ID != id+":"+DefaultSaveSlot || rec.WeaponID != id || rec.Version != weapon.SaveVersion {
		t.Errorf("Unexpected record header: %+v", rec)
	}
	if !strings.Contains(string(rec.State), `"clip":2`) {
		t.Errorf("JSON mirror should carry the clip, got %s", rec.State)
	}

	throwOnce(t, e, id)
	if mustWeapon(t, e, id).State.Clip != 1 {
		t.Fatal("Expected second throw")
	}

	w, err := e.Restore(ctx, rec.ID, "")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if w.State.Clip != 2 || w.State.PrimaryAttacks != saved.PrimaryAttacks {
		t.Errorf("Expected restored clip 2, got %+v", w.State)
	}
	shift := e.SimTime() - rec.SimTime
	if math.Abs(w.State.NextAttackTime-(saved.NextAttackTime+shift)) > 1e-9 {
		t.Errorf("Times should be rebased by %f: got %f from %f", shift, w.State.NextAttackTime, saved.NextAttackTime)
	}

	w, err = e.Restore(ctx, rec.ID, other)
	if err != nil || w.ID != other || w.State.Clip != 2 {
		t.Errorf("Restore into another weapon failed: %+v %v", w, err)
	}

	if _, err := e.Restore(ctx, "missing", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected storage.ErrNotFound, got %v", err)
	}

	saves, err := e.Saves(ctx, id)
	if err != nil || len(saves) != 1 {
		t.Fatalf("Expected 1 save, got %d %v", len(saves), err)
	}
	if err := e.DeleteSave(ctx, rec.ID); err != nil {
		t.Errorf("DeleteSave failed: %v", err)
	}

	if n := countEvents(e.Events(0, ""), EventTypeRestore); n != 2 {
		t.Errorf("Expected 2 restore events, got %d", n)
	}
}

// TestSaveWithoutStore reports the missing backend
func TestSaveWithoutStore(t *testing.T) {
	e := newTestEngine(t, func(c *EngineConfig) { c.Store = nil })
	id := addPlayer(t, e, WeaponOptions{})

	if _, err := e.Save(context.Background(), id, "a"); !errors.Is(err, ErrNoStore) {
		t.Errorf("Expected ErrNoStore, got %v", err)
	}
	if _, err := e.Saves(context.Background(), ""); !errors.Is(err, ErrNoStore) {
		t.Errorf("Expected ErrNoStore, got %v", err)
	}
}

// TestSetProperties hot-swaps tuning for preset weapons only
func TestSetProperties(t *testing.T) {
	e := newTestEngine(t, nil)
	stock := addPlayer(t, e, WeaponOptions{})
	legacy := addPlayer(t, e, WeaponOptions{Preset: "legacy"})
	custom := weapon.DefaultProperties()
	custom.MaxClip = 2
	pinned := addPlayer(t, e, WeaponOptions{Properties: &custom})

	p := weapon.DefaultProperties()
	p.MaxClip = 5
	e.SetProperties(p)

	if w := mustWeapon(t, e, stock); w.MaxClip != 5 {
		t.Errorf("Stock weapon should pick up new clip size, got %d", w.MaxClip)
	}
	w := mustWeapon(t, e, legacy)
	if w.MaxClip != 5 || math.Abs(w.SpreadDegrees-4) > 1e-9 {
		t.Errorf("Legacy preset should keep its fixed cone, got clip %d spread %f", w.MaxClip, w.SpreadDegrees)
	}
	if w := mustWeapon(t, e, pinned); w.MaxClip != 2 {
		t.Errorf("Explicit properties should be kept, got %d", w.MaxClip)
	}
}

// TestDeterministicReplay runs the same inputs twice with one seed
func TestDeterministicReplay(t *testing.T) {
	run := func() []Shot {
		e := newTestEngine(t, func(c *EngineConfig) { c.Seed = 99 })
		id := addPlayer(t, e, WeaponOptions{NPC: true, Eyes: vecmath.QAngle{Yaw: 45}})
		e.FireNPCVolley(id, weapon.EventWeaponPistolFire, 3)
		for i := 0; i < 15; i++ {
			e.Step(dt)
		}
		return e.Shots(id)
	}

	a, b := run(), run()
	if len(a) != 3 || len(a) != len(b) {
		t.Fatalf("Expected 3 shots per run, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Dir != b[i].Dir {
			t.Errorf("Shot %d differs: %v vs %v", i, a[i].Dir, b[i].Dir)
		}
	}
}

// TestSnapshotIsImmutable checks a held snapshot does not change
func TestSnapshotIsImmutable(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addPlayer(t, e, WeaponOptions{})

	before := e.GetSnapshot()
	throwOnce(t, e, id)
	after := e.GetSnapshot()

	if before.Sequence >= after.Sequence {
		t.Errorf("Sequence should grow: %d -> %d", before.Sequence, after.Sequence)
	}
	w, ok := before.Weapon(id)
	if !ok || w.State.Clip != 3 {
		t.Errorf("Old snapshot should keep clip 3, got %+v", w.State)
	}
	if len(after.Manhacks) != 1 || after.LiveManhacks != 1 {
		t.Errorf("New snapshot should hold the manhack, got %d", len(after.Manhacks))
	}
	if after.TickNumber != 2 {
		t.Errorf("Expected tick 2, got %d", after.TickNumber)
	}
}
