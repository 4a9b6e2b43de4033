package game

import (
	"sync/atomic"
	"time"

	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// WeaponSnapshot is an immutable copy of one launcher for rendering.
// Uses value types (not pointers) to ensure immutability
type WeaponSnapshot struct {
	ID            string           `json:"id"`
	Preset        string           `json:"preset"`
	Owner         string           `json:"owner"` // player or npc
	Pos           vecmath.Vector   `json:"pos"`
	Eyes          vecmath.QAngle   `json:"eyes"`
	Punch         vecmath.QAngle   `json:"punch"`
	Busy          bool             `json:"busy"`
	Buttons       weapon.Buttons   `json:"buttons"`
	State         weapon.FireState `json:"state"`
	Gate          string           `json:"gate"`
	Activity      string           `json:"activity"`
	ViewActivity  string           `json:"viewActivity"`
	Spread        vecmath.Vector   `json:"spread"`
	SpreadDegrees float64          `json:"spreadDegrees"`
	MaxClip       int              `json:"maxClip"`
	MaxPenalty    float64          `json:"maxPenalty"`
	NewAccuracy   bool             `json:"useNewAccuracy"`
	PendingEvents int              `json:"pendingEvents"`
	LastSound     string           `json:"lastSound,omitempty"`
	SoundDelay    time.Duration    `json:"soundDelay,omitempty"` // travel time of the last sound
	SoundHeard    time.Duration    `json:"soundHeard,omitempty"` // until its end reaches the listener

	// NPC carriers only
	AttackActivity string `json:"attackActivity,omitempty"`
	Capabilities   int    `json:"capabilities,omitempty"`
	Stats         WeaponStats      `json:"stats"`
}

// GameSnapshot is a complete immutable simulation state
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"` // When snapshot was created
	TickNumber uint64    `json:"tick"`      // Tick this represents
	SimTime    float64   `json:"simTime"`
	RNGSeed    int64     `json:"rngSeed"` // Seed for deterministic replay

	Weapons  []WeaponSnapshot `json:"weapons"`
	Manhacks []Manhack        `json:"manhacks"`
	Shots    []Shot           `json:"shots"`

	LiveManhacks  int    `json:"liveManhacks"`
	ManhackLimit  int    `json:"manhackLimit"`
	SpawnFailures uint64 `json:"spawnFailures"`
}

// Weapon returns the snapshot entry for id.
func (s *GameSnapshot) Weapon(id string) (WeaponSnapshot, bool) {
	for _, w := range s.Weapons {
		if w.ID == id {
			return w, true
		}
	}
	return WeaponSnapshot{}, false
}

// SnapshotPool publishes the latest snapshot for lock-free readers.
// Each published snapshot is freshly built and never mutated, so a reader
// may hold it for as long as it likes.
type SnapshotPool struct {
	latest   atomic.Pointer[GameSnapshot]
	sequence uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates an empty pool
func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{}
}

// Publish stamps and stores snap as the latest snapshot
func (p *SnapshotPool) Publish(snap *GameSnapshot) {
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	p.latest.Store(snap)
}

// AcquireRead gets the latest complete snapshot.
// Returns nil if no snapshot is available yet
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	return p.latest.Load()
}
