package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeWeaponAdd
	EventTypeWeaponRemove
	EventTypeThrow
	EventTypeDryFire
	EventTypeReload
	EventTypeSpawnFailed
	EventTypeNPCShot
	EventTypeRestore
)

const eventTypeCount = int(EventTypeRestore) + 1

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano, wall clock
	SimTime   float64         `json:"simTime"`   // simulation seconds
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	WeaponID  string          `json:"weaponId"` // source weapon, used for rate limiting
	Payload   json.RawMessage `json:"payload"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeWeaponAdd:
		return "weapon_add"
	case EventTypeWeaponRemove:
		return "weapon_remove"
	case EventTypeThrow:
		return "throw"
	case EventTypeDryFire:
		return "dry_fire"
	case EventTypeReload:
		return "reload"
	case EventTypeSpawnFailed:
		return "spawn_failed"
	case EventTypeNPCShot:
		return "npc_shot"
	case EventTypeRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// MarshalText lets the type appear by name in JSON.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed     int64 `json:"rngSeed"`
	WeaponCount int   `json:"weaponCount"`
	LiveEntity  int   `json:"liveManhacks"`
	DeltaTimeNs int64 `json:"deltaTimeNs"`
}

// WeaponAddPayload records a new launcher and its carrier
type WeaponAddPayload struct {
	Preset string `json:"preset"`
	NPC    bool   `json:"npc"`
}

// ThrowPayload records a successful throw
type ThrowPayload struct {
	ManhackID  int     `json:"manhackId"`
	Clip       int     `json:"clip"`
	Penalty    float64 `json:"penalty"`
	ShotsFired int     `json:"shotsFired"`
}

// DryFirePayload records an empty click
type DryFirePayload struct {
	SoonestAttackTime float64 `json:"soonestAttackTime"`
}

// ReloadPayload records a reload start
type ReloadPayload struct {
	Clip    int `json:"clip"`
	Reserve int `json:"reserve"`
}

// SpawnFailedPayload records a throw that could not create its manhack
type SpawnFailedPayload struct {
	Live  int `json:"live"`
	Limit int `json:"limit"`
}

// NPCShotPayload records one NPC hitscan volley
type NPCShotPayload struct {
	Target string  `json:"target"`
	Tracer bool    `json:"tracer"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
	EndZ   float64 `json:"endZ"`
}

// RestorePayload records a fire state loaded from a save
type RestorePayload struct {
	RecordID string `json:"recordId"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, simTime float64, weaponID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		SimTime:   simTime,
		TickNum:   tickNum,
		WeaponID:  weaponID,
		Payload:   EncodePayload(payload),
	}
}
