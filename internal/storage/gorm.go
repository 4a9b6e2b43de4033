package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// saveRow is the table layout for Record.
type saveRow struct {
	ID       string `gorm:"primaryKey;size:128"`
	WeaponID string `gorm:"index;size:64"`
	Version  uint16
	Blob     []byte
	State    datatypes.JSON
	SimTime  float64
	SavedAt  time.Time `gorm:"index"`
}

func (saveRow) TableName() string { return "weapon_saves" }

func toRow(r Record) saveRow {
	return saveRow{
		ID:       r.ID,
		WeaponID: r.WeaponID,
		Version:  r.Version,
		Blob:     r.Blob,
		State:    r.State,
		SimTime:  r.SimTime,
		SavedAt:  r.SavedAt.UTC(),
	}
}

func (r saveRow) record() Record {
	return Record{
		ID:       r.ID,
		WeaponID: r.WeaponID,
		Version:  r.Version,
		Blob:     r.Blob,
		State:    r.State,
		SimTime:  r.SimTime,
		SavedAt:  r.SavedAt,
	}
}

// Gorm stores records through a gorm connection (sqlite or postgres).
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open connection. Call Init to migrate the schema.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

var gormConfig = &gorm.Config{
	SkipDefaultTransaction: true,
	Logger:                 logger.Default.LogMode(logger.Silent),
}

// OpenSQLite opens a file-backed SQLite store. An empty path uses a
// private in-memory database.
func OpenSQLite(path string) (*Gorm, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	return NewGorm(db), nil
}

// OpenPostgres connects to postgres using a libpq DSN.
func OpenPostgres(dsn string) (*Gorm, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewGorm(db), nil
}

func (g *Gorm) Init() error {
	if err := g.db.AutoMigrate(&saveRow{}); err != nil {
		return fmt.Errorf("failed to migrate weapon_saves: %w", err)
	}
	return nil
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *Gorm) Save(ctx context.Context, rec Record) error {
	row := toRow(rec)
	return g.db.WithContext(ctx).Save(&row).Error
}

func (g *Gorm) Load(ctx context.Context, id string) (Record, error) {
	var row saveRow
	err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return row.record(), nil
}

func (g *Gorm) List(ctx context.Context, weaponID string) ([]Record, error) {
	q := g.db.WithContext(ctx).Order("saved_at desc").Order("id")
	if weaponID != "" {
		q = q.Where("weapon_id = ?", weaponID)
	}

	var rows []saveRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (g *Gorm) Delete(ctx context.Context, id string) error {
	res := g.db.WithContext(ctx).Delete(&saveRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
