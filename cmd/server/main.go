package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"manhack-sim/internal/api"
	"manhack-sim/internal/config"
	"manhack-sim/internal/game"
	"manhack-sim/internal/logging"
	"manhack-sim/internal/sound"
	"manhack-sim/internal/storage"
)

func main() {
	configDir := flag.String("config", ".", "directory holding manhack-sim.yaml")
	flag.Parse()

	// .env is optional; real environment variables win
	envErr := godotenv.Load(".env")

	loader := config.NewLoader(*configDir)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, nil)
	if envErr != nil {
		log.Debug().Msg("💡 no .env file found, using environment variables only")
	}

	log.Info().Msg("🎮 ================================")
	log.Info().Msg("🎮  MANHACK SIM - GO ENGINE")
	log.Info().Msg("🎮 ================================")
	if f := loader.ConfigFile(); f != "" {
		log.Info().Str("file", f).Msg("✅ config loaded")
	}

	store, err := storage.NewBackend(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("storage backend")
	}
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Str("type", cfg.Storage.Type).Msg("storage init")
	}
	defer store.Close()
	log.Info().Str("type", cfg.Storage.Type).Msg("💾 save store ready")

	engine := game.NewEngine(game.EngineConfig{
		TickRate:    cfg.Sim.TickRate,
		Seed:        cfg.Sim.Seed,
		MaxWeapons:  cfg.Limits.MaxWeapons,
		MaxManhacks: cfg.Sim.MaxManhacks,
		ManhackLife: cfg.Sim.ManhackLife,
		Properties:  cfg.WeaponProperties(),
		Sounds:      sound.DefaultRegistry(),
		Store:       store,
		Logger:      log,
	})
	engine.SetHooks(api.MetricsHooks(game.Hooks{}))
	log.Info().
		Int("tickRate", cfg.Sim.TickRate).
		Int("maxManhacks", cfg.Sim.MaxManhacks).
		Int("maxClip", cfg.Weapon.MaxClip).
		Bool("newAccuracy", cfg.Accuracy.UseNewAccuracy).
		Msg("🎮 engine configured")

	if cfg.Sim.EventLogPath != "" {
		if err := engine.StartEventLog(cfg.Sim.EventLogPath); err != nil {
			log.Warn().Err(err).Msg("⚠️ event log disabled")
		} else {
			log.Info().Str("path", cfg.Sim.EventLogPath).Msg("📝 event log")
		}
	}

	// Tuning and world caps follow the config file; server settings need a restart.
	loader.Watch(func(next config.AppConfig, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ config reload failed, keeping previous values")
			return
		}
		engine.SetProperties(next.WeaponProperties())
		engine.SetWorldLimits(next.Sim.MaxManhacks, next.Sim.ManhackLife)
		log.Info().Msg("🔄 weapon tuning reloaded")
	})

	debugSrv := api.StartDebugServer(api.ObservabilityFromConfig(cfg.Debug), log)

	server := api.NewServer(engine, cfg, log)

	engine.Start()
	log.Info().Msg("✅ game engine started")

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info().Str("url", "http://localhost"+addr+"/api/state").Msg("🌐 API ready")
		if err := server.Start(addr); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Info().Msg("✅ server ready, press Ctrl+C to stop")
	<-quit

	log.Info().Msg("🛑 shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("api shutdown")
	}
	if debugSrv != nil {
		_ = debugSrv.Shutdown(ctx)
	}
	engine.Stop()
	engine.StopEventLog()
	log.Info().Msg("👋 goodbye")
}
