package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte(body), 0644))
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Sim.TickRate)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 0.75, cfg.Weapon.RefireInterval)
	assert.Equal(t, 1.5, cfg.Accuracy.MaxPenalty)
	assert.True(t, cfg.Accuracy.UseNewAccuracy)
}

func TestLoad_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  port: 8088
weapon:
  maxClip: 5
  viewKick: true
accuracy:
  useNewAccuracy: false
storage:
  type: sqlite
  sqlitePath: /tmp/saves.db
`)

	l := NewLoader(dir)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, FileName+".yaml"), l.ConfigFile())
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Weapon.MaxClip)
	assert.True(t, cfg.Weapon.ViewKick)
	assert.False(t, cfg.Accuracy.UseNewAccuracy)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "/tmp/saves.db", cfg.Storage.SQLitePath)

	// untouched keys keep their defaults
	assert.Equal(t, 0.75, cfg.Weapon.RefireInterval)
	assert.Equal(t, "localhost", cfg.Storage.Postgres.Host)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "weapon:\n  maxClip: 5\n")
	t.Setenv("MHS_WEAPON_MAXCLIP", "7")
	t.Setenv("MHS_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Weapon.MaxClip)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server: [not, a, map")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestWeaponProperties(t *testing.T) {
	cfg := Default()
	cfg.Weapon.MaxClip = 6
	cfg.Accuracy.ShotPenalty = 0.5

	p := cfg.WeaponProperties()
	assert.Equal(t, 6, p.MaxClip)
	assert.Equal(t, 0.5, p.ShotPenalty)
	assert.Equal(t, "controllable_manhack_squad", p.SquadName)
}

func TestPostgresDSN(t *testing.T) {
	dsn := DefaultStorage().Postgres.DSN()
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=manhack sslmode=disable", dsn)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "weapon:\n  maxClip: 3\n")

	l := NewLoader(dir)
	_, err := l.Load()
	require.NoError(t, err)

	var clip atomic.Int64
	l.Watch(func(cfg AppConfig, err error) {
		if err == nil {
			clip.Store(int64(cfg.Weapon.MaxClip))
		}
	})

	writeConfig(t, dir, "weapon:\n  maxClip: 9\n")

	assert.Eventually(t, func() bool { return clip.Load() == 9 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_NoFileIsNoop(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, err := l.Load()
	require.NoError(t, err)

	called := false
	l.Watch(func(AppConfig, error) { called = true })
	assert.False(t, called)
}
