// Package storage persists weapon save records.
package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("storage: record not found")

// Record is one saved fire state. Blob holds the versioned binary encoding
// and is authoritative; State is a JSON mirror for inspection.
type Record struct {
	ID       string         `json:"id"`
	WeaponID string         `json:"weaponId"`
	Version  uint16         `json:"version"`
	Blob     []byte         `json:"-"`
	State    datatypes.JSON `json:"state"`
	SimTime  float64        `json:"simTime"`
	SavedAt  time.Time      `json:"savedAt"`
}

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Save inserts or replaces the record with the same ID.
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id string) (Record, error)
	// List returns records newest first, filtered by weapon when weaponID is set.
	List(ctx context.Context, weaponID string) ([]Record, error)
	Delete(ctx context.Context, id string) error
}
