package storage

import (
	"fmt"

	"manhack-sim/internal/config"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return OpenPostgres(cfg.Postgres.DSN())
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
