package game

import (
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// MaxShotHistory caps the hitscan results kept for snapshots and charts.
const MaxShotHistory = 64

// Manhack is a thrown entity. It is created packed up, then dispatched
// and activated by the launcher.
type Manhack struct {
	ID          int               `json:"id"`
	Owner       string            `json:"owner"`
	Class       string            `json:"class"`
	Pos         vecmath.Vector    `json:"pos"`
	Angles      vecmath.QAngle    `json:"angles"`
	Flags       weapon.SpawnFlags `json:"flags"`
	Keys        map[string]string `json:"keys,omitempty"`
	Spawned     bool              `json:"spawned"`
	Active      bool              `json:"active"`
	FollowOwner bool              `json:"followOwner"`
	SpawnTick   uint64            `json:"spawnTick"`
}

func (m *Manhack) AddSpawnFlags(f weapon.SpawnFlags) { m.Flags |= f }

func (m *Manhack) KeyValue(key, value string) {
	if m.Keys == nil {
		m.Keys = make(map[string]string)
	}
	m.Keys[key] = value
}

func (m *Manhack) Activate() { m.Active = true }

func (m *Manhack) SetFollowOwner(follow bool) { m.FollowOwner = follow }

func (m *Manhack) clone() Manhack {
	c := *m
	if m.Keys != nil {
		c.Keys = make(map[string]string, len(m.Keys))
		for k, v := range m.Keys {
			c.Keys[k] = v
		}
	}
	return c
}

// Shot is one recorded hitscan ray.
type Shot struct {
	Shooter string         `json:"shooter"`
	Src     vecmath.Vector `json:"src"`
	Dir     vecmath.Vector `json:"dir"`
	End     vecmath.Vector `json:"end"`
	Tracer  bool           `json:"tracer"`
	Tick    uint64         `json:"tick"`
}

// HeardSound is a world sound inserted for AI hearing.
type HeardSound struct {
	Source string `json:"source"`
	weapon.WorldSound
	Tick uint64 `json:"tick"`
}

// World holds the entities created by launchers. It is not safe for
// concurrent use; the engine lock guards it.
type World struct {
	maxLive  int
	lifetime uint64 // ticks, 0 = manhacks never expire

	nextID   int
	manhacks []*Manhack

	shots      []Shot
	tracerSeq  map[string]int
	heard      []HeardSound
	spawnFails uint64
}

// NewWorld creates a world that holds at most maxLive manhacks.
// maxLive <= 0 disables the cap.
func NewWorld(maxLive int, lifetime uint64) *World {
	return &World{
		maxLive:   maxLive,
		lifetime:  lifetime,
		tracerSeq: make(map[string]int),
	}
}

// Create reserves an entity slot. It returns nil when the world is full.
func (w *World) Create(owner, class string, pos vecmath.Vector, ang vecmath.QAngle) *Manhack {
	if w.maxLive > 0 && len(w.manhacks) >= w.maxLive {
		w.spawnFails++
		return nil
	}
	w.nextID++
	m := &Manhack{
		ID:     w.nextID,
		Owner:  owner,
		Class:  class,
		Pos:    pos,
		Angles: ang,
	}
	w.manhacks = append(w.manhacks, m)
	return m
}

// Dispatch marks an entity spawned at the given tick.
func (w *World) Dispatch(m *Manhack, tick uint64) {
	m.Spawned = true
	m.SpawnTick = tick
}

// Expire removes manhacks older than the world lifetime.
func (w *World) Expire(tick uint64) int {
	if w.lifetime == 0 {
		return 0
	}
	kept := w.manhacks[:0]
	removed := 0
	for _, m := range w.manhacks {
		if m.Spawned && tick-m.SpawnTick >= w.lifetime {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(w.manhacks); i++ {
		w.manhacks[i] = nil
	}
	w.manhacks = kept
	return removed
}

// RemoveOwned drops every manhack thrown by owner.
func (w *World) RemoveOwned(owner string) {
	kept := w.manhacks[:0]
	for _, m := range w.manhacks {
		if m.Owner != owner {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(w.manhacks); i++ {
		w.manhacks[i] = nil
	}
	w.manhacks = kept
	delete(w.tracerSeq, owner)
}

// Live returns the number of manhacks in the world.
func (w *World) Live() int { return len(w.manhacks) }

// Limit returns the live-entity cap.
func (w *World) Limit() int { return w.maxLive }

// SetLimits changes the cap and lifetime. Existing manhacks are kept.
func (w *World) SetLimits(maxLive int, lifetime uint64) {
	w.maxLive = maxLive
	w.lifetime = lifetime
}

// SpawnFailures counts Create calls refused by the cap.
func (w *World) SpawnFailures() uint64 { return w.spawnFails }

// Manhacks returns copies of the live manhacks.
func (w *World) Manhacks() []Manhack {
	out := make([]Manhack, len(w.manhacks))
	for i, m := range w.manhacks {
		out[i] = m.clone()
	}
	return out
}

// RecordShot traces one normalized ray and keeps it in the bounded history.
// Every freq-th shot per shooter is a tracer.
func (w *World) RecordShot(shooter string, src, dir vecmath.Vector, distance float64, freq int, tick uint64) Shot {
	w.tracerSeq[shooter]++
	dir = dir.Normalize()
	s := Shot{
		Shooter: shooter,
		Src:     src,
		Dir:     dir,
		End:     src.Add(dir.Scale(distance)),
		Tracer:  freq > 0 && w.tracerSeq[shooter]%freq == 0,
		Tick:    tick,
	}
	w.shots = append(w.shots, s)
	if len(w.shots) > MaxShotHistory {
		w.shots = append(w.shots[:0], w.shots[len(w.shots)-MaxShotHistory:]...)
	}
	return s
}

// Shots returns the recorded hitscan history, oldest first.
func (w *World) Shots() []Shot {
	return append([]Shot(nil), w.shots...)
}

// Hear records an AI-audible sound.
func (w *World) Hear(source string, s weapon.WorldSound, tick uint64) {
	w.heard = append(w.heard, HeardSound{Source: source, WorldSound: s, Tick: tick})
	if len(w.heard) > MaxShotHistory {
		w.heard = append(w.heard[:0], w.heard[len(w.heard)-MaxShotHistory:]...)
	}
}

// Heard returns the recorded world sounds, oldest first.
func (w *World) Heard() []HeardSound {
	return append([]HeardSound(nil), w.heard...)
}
