// Package config provides centralized configuration management.
// Every tunable in the simulator is declared here with its default.
//
// Values come from, in increasing priority: the defaults below, an optional
// manhack-sim.yaml in the config directory, and MHS_* environment variables
// (MHS_WEAPON_MAXCLIP overrides weapon.maxClip).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"manhack-sim/internal/weapon"
)

// FileName is the config file looked up in the config directory.
const FileName = "manhack-sim"

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "MHS"

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
	AdminToken  string   `mapstructure:"adminToken"` // empty disables auth on mutating routes
	RateLimit   float64  `mapstructure:"rateLimit"`  // requests per second per IP
	RateBurst   int      `mapstructure:"rateBurst"`
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:        3000,
		CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		RateLimit:   20,
		RateBurst:   40,
	}
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig controls the host loop.
type SimConfig struct {
	TickRate     int    `mapstructure:"tickRate"`     // frames per second
	Seed         int64  `mapstructure:"seed"`         // 0 picks a time-based seed
	MaxManhacks  int    `mapstructure:"maxManhacks"`  // live entity cap, spawns fail beyond it
	ManhackLife  int    `mapstructure:"manhackLife"`  // frames a spawned manhack stays alive, 0 = forever
	EventLogPath string `mapstructure:"eventLogPath"` // empty keeps events in memory only
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:    30,
		MaxManhacks: 16,
		ManhackLife: 0,
	}
}

// =============================================================================
// WEAPON TUNING
// =============================================================================

// WeaponConfig holds the fire gate and ammunition tuning.
type WeaponConfig struct {
	RefireInterval           float64 `mapstructure:"refireInterval"`
	DryRefireInterval        float64 `mapstructure:"dryRefireInterval"`
	ShotResetWindow          float64 `mapstructure:"shotResetWindow"`
	MaxBurst                 int     `mapstructure:"maxBurst"`
	MaxClip                  int     `mapstructure:"maxClip"`
	DefaultReserve           int     `mapstructure:"defaultReserve"`
	AutoReload               bool    `mapstructure:"autoReload"`
	ThrowDistance            float64 `mapstructure:"throwDistance"`
	ViewKick                 bool    `mapstructure:"viewKick"`
	RefundClipOnSpawnFailure bool    `mapstructure:"refundClipOnSpawnFailure"`
}

// DefaultWeapon returns the stock launcher tuning.
func DefaultWeapon() WeaponConfig {
	p := weapon.DefaultProperties()
	return WeaponConfig{
		RefireInterval:           p.RefireInterval,
		DryRefireInterval:        p.DryRefireInterval,
		ShotResetWindow:          p.ShotResetWindow,
		MaxBurst:                 p.MaxBurst,
		MaxClip:                  p.MaxClip,
		DefaultReserve:           p.DefaultReserve,
		AutoReload:               p.AutoReload,
		ThrowDistance:            p.ThrowDistance,
		ViewKick:                 p.ViewKick,
		RefundClipOnSpawnFailure: p.RefundClipOnSpawnFailure,
	}
}

// =============================================================================
// ACCURACY
// =============================================================================

// AccuracyConfig holds the penalty model.
type AccuracyConfig struct {
	ShotPenalty    float64 `mapstructure:"shotPenalty"`
	MaxPenalty     float64 `mapstructure:"maxPenalty"`
	UseNewAccuracy bool    `mapstructure:"useNewAccuracy"`
}

// DefaultAccuracy returns the stock penalty model.
func DefaultAccuracy() AccuracyConfig {
	p := weapon.DefaultProperties()
	return AccuracyConfig{
		ShotPenalty:    p.ShotPenalty,
		MaxPenalty:     p.MaxPenalty,
		UseNewAccuracy: p.UseNewAccuracy,
	}
}

// =============================================================================
// STORAGE
// =============================================================================

// PostgresConfig holds connection settings for the postgres backend.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// DSN renders the libpq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.Username, p.Password, p.Database)
}

// StorageConfig selects and configures the save store.
type StorageConfig struct {
	Type       string         `mapstructure:"type"` // memory, sqlite, postgres
	SQLitePath string         `mapstructure:"sqlitePath"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

// DefaultStorage returns the default storage configuration.
func DefaultStorage() StorageConfig {
	return StorageConfig{
		Type:       "memory",
		SQLitePath: "manhack-sim.db",
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     "5432",
			Username: "postgres",
			Password: "postgres",
			Database: "manhack",
		},
	}
}

// =============================================================================
// LOGGING & DEBUG SERVER
// =============================================================================

// LogConfig controls the root logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DefaultLog returns the default logging configuration.
func DefaultLog() LogConfig {
	return LogConfig{Level: "info", Pretty: true}
}

// DebugConfig controls the localhost pprof and metrics server.
type DebugConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listenAddr"`
}

// DefaultDebug returns safe defaults: enabled, bound to localhost.
func DefaultDebug() DebugConfig {
	return DebugConfig{Enabled: true, ListenAddr: "127.0.0.1:6060"}
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits caps what API clients can allocate.
type ResourceLimits struct {
	MaxWeapons       int `mapstructure:"maxWeapons"`
	MaxWSConnections int `mapstructure:"maxWSConnections"`
	MaxWSPerIP       int `mapstructure:"maxWSPerIP"`
	MaxSpreadSamples int `mapstructure:"maxSpreadSamples"`
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxWeapons:       64,
		MaxWSConnections: 200,
		MaxWSPerIP:       10,
		MaxSpreadSamples: 2000,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Sim      SimConfig      `mapstructure:"sim"`
	Weapon   WeaponConfig   `mapstructure:"weapon"`
	Accuracy AccuracyConfig `mapstructure:"accuracy"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Debug    DebugConfig    `mapstructure:"debug"`
	Limits   ResourceLimits `mapstructure:"limits"`
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	return AppConfig{
		Server:   DefaultServer(),
		Sim:      DefaultSim(),
		Weapon:   DefaultWeapon(),
		Accuracy: DefaultAccuracy(),
		Storage:  DefaultStorage(),
		Log:      DefaultLog(),
		Debug:    DefaultDebug(),
		Limits:   DefaultLimits(),
	}
}

// WeaponProperties merges weapon and accuracy tuning into launcher properties.
func (c AppConfig) WeaponProperties() weapon.Properties {
	p := weapon.DefaultProperties()
	p.RefireInterval = c.Weapon.RefireInterval
	p.DryRefireInterval = c.Weapon.DryRefireInterval
	p.ShotResetWindow = c.Weapon.ShotResetWindow
	p.MaxBurst = c.Weapon.MaxBurst
	p.MaxClip = c.Weapon.MaxClip
	p.DefaultReserve = c.Weapon.DefaultReserve
	p.AutoReload = c.Weapon.AutoReload
	p.ThrowDistance = c.Weapon.ThrowDistance
	p.ViewKick = c.Weapon.ViewKick
	p.RefundClipOnSpawnFailure = c.Weapon.RefundClipOnSpawnFailure
	p.ShotPenalty = c.Accuracy.ShotPenalty
	p.MaxPenalty = c.Accuracy.MaxPenalty
	p.UseNewAccuracy = c.Accuracy.UseNewAccuracy
	return p
}

// =============================================================================
// LOADING
// =============================================================================

// Loader reads and watches the configuration.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader that looks for the config file in dir.
func NewLoader(dir string) *Loader {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load reads the config file if present and decodes the merged result.
// A missing file is not an error; a malformed one is.
func (l *Loader) Load() (AppConfig, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.decode()
}

// ConfigFile returns the file that was read, empty when none was found.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls fn with the reloaded configuration every time the config file
// changes. It has no effect when no file was loaded.
func (l *Loader) Watch(fn func(AppConfig, error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fn(l.decode())
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (AppConfig, error) {
	var cfg AppConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

// Load returns the complete configuration from dir with environment overrides.
func Load(dir string) (AppConfig, error) {
	return NewLoader(dir).Load()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func setDefaults(v *viper.Viper, d AppConfig) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.corsOrigins", d.Server.CORSOrigins)
	v.SetDefault("server.adminToken", d.Server.AdminToken)
	v.SetDefault("server.rateLimit", d.Server.RateLimit)
	v.SetDefault("server.rateBurst", d.Server.RateBurst)

	v.SetDefault("sim.tickRate", d.Sim.TickRate)
	v.SetDefault("sim.seed", d.Sim.Seed)
	v.SetDefault("sim.maxManhacks", d.Sim.MaxManhacks)
	v.SetDefault("sim.manhackLife", d.Sim.ManhackLife)
	v.SetDefault("sim.eventLogPath", d.Sim.EventLogPath)

	v.SetDefault("weapon.refireInterval", d.Weapon.RefireInterval)
	v.SetDefault("weapon.dryRefireInterval", d.Weapon.DryRefireInterval)
	v.SetDefault("weapon.shotResetWindow", d.Weapon.ShotResetWindow)
	v.SetDefault("weapon.maxBurst", d.Weapon.MaxBurst)
	v.SetDefault("weapon.maxClip", d.Weapon.MaxClip)
	v.SetDefault("weapon.defaultReserve", d.Weapon.DefaultReserve)
	v.SetDefault("weapon.autoReload", d.Weapon.AutoReload)
	v.SetDefault("weapon.throwDistance", d.Weapon.ThrowDistance)
	v.SetDefault("weapon.viewKick", d.Weapon.ViewKick)
	v.SetDefault("weapon.refundClipOnSpawnFailure", d.Weapon.RefundClipOnSpawnFailure)

	v.SetDefault("accuracy.shotPenalty", d.Accuracy.ShotPenalty)
	v.SetDefault("accuracy.maxPenalty", d.Accuracy.MaxPenalty)
	v.SetDefault("accuracy.useNewAccuracy", d.Accuracy.UseNewAccuracy)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.sqlitePath", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres.host", d.Storage.Postgres.Host)
	v.SetDefault("storage.postgres.port", d.Storage.Postgres.Port)
	v.SetDefault("storage.postgres.username", d.Storage.Postgres.Username)
	v.SetDefault("storage.postgres.password", d.Storage.Postgres.Password)
	v.SetDefault("storage.postgres.database", d.Storage.Postgres.Database)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)

	v.SetDefault("debug.enabled", d.Debug.Enabled)
	v.SetDefault("debug.listenAddr", d.Debug.ListenAddr)

	v.SetDefault("limits.maxWeapons", d.Limits.MaxWeapons)
	v.SetDefault("limits.maxWSConnections", d.Limits.MaxWSConnections)
	v.SetDefault("limits.maxWSPerIP", d.Limits.MaxWSPerIP)
	v.SetDefault("limits.maxSpreadSamples", d.Limits.MaxSpreadSamples)
}
