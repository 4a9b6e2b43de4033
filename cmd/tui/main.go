// Command tui drives a local engine from the terminal: one player launcher
// and one NPC carrier, with the live fire-gate and accuracy state on screen.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"manhack-sim/internal/config"
	"manhack-sim/internal/game"
	"manhack-sim/internal/logging"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

const (
	playerID = "p1"
	npcID    = "npc"

	frameInterval = 33 * time.Millisecond
	tapHold       = 120 * time.Millisecond // a key press holds attack this long
	aimStep       = 5.0                    // degrees per arrow press
	eventLines    = 8
)

type app struct {
	screen tcell.Screen
	engine *game.Engine

	held      bool      // attack toggled on with 'a'
	tapUntil  time.Time // attack held by a space tap
	buttons   weapon.Buttons
	aim       vecmath.QAngle
	status    string
	statusErr bool
}

func newApp(cfg config.AppConfig) (*app, error) {
	ec := game.DefaultEngineConfig()
	ec.TickRate = cfg.Sim.TickRate
	ec.Seed = cfg.Sim.Seed
	ec.MaxManhacks = cfg.Sim.MaxManhacks
	ec.ManhackLife = cfg.Sim.ManhackLife
	ec.Properties = cfg.WeaponProperties()
	ec.Logger = logging.Nop() // the screen owns the terminal

	e := game.NewEngine(ec)
	if _, err := e.AddWeapon(game.WeaponOptions{ID: playerID, Preset: game.DefaultPreset}); err != nil {
		return nil, err
	}
	if _, err := e.AddWeapon(game.WeaponOptions{
		ID:    npcID,
		NPC:   true,
		Pos:   vecmath.Vec(128, 0, 0),
		Eyes:  vecmath.QAngle{Yaw: 180},
		Enemy: "player",
	}); err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	return &app{screen: screen, engine: e, status: "ready"}, nil
}

func (a *app) setStatus(err error, ok string) {
	if err != nil {
		a.status, a.statusErr = err.Error(), true
		return
	}
	a.status, a.statusErr = ok, false
}

// handleInput returns false when the user quits.
func (a *app) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			a.turn(0, aimStep)
		case tcell.KeyRight:
			a.turn(0, -aimStep)
		case tcell.KeyUp:
			a.turn(-aimStep, 0)
		case tcell.KeyDown:
			a.turn(aimStep, 0)
		case tcell.KeyRune:
			return a.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *app) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		a.tapUntil = time.Now().Add(tapHold)
	case 'a':
		a.held = !a.held
	case 'r':
		ok, err := a.engine.Reload(playerID)
		switch {
		case err != nil:
			a.setStatus(err, "")
		case ok:
			a.setStatus(nil, "reloading")
		default:
			a.setStatus(nil, "nothing to reload")
		}
	case 'n':
		n, err := a.engine.FireNPCVolley(npcID, weapon.EventWeaponPistolFire, 3)
		a.setStatus(err, fmt.Sprintf("npc volley queued (%d)", n))
	case 't':
		n, err := a.engine.FireNPCVolley(npcID, weapon.EventWeaponThrow, 1)
		a.setStatus(err, fmt.Sprintf("npc throw queued (%d)", n))
	case 'b':
		w, err := a.engine.Weapon(playerID)
		if err == nil {
			err = a.engine.SetBusy(playerID, !w.Busy)
		}
		a.setStatus(err, "busy toggled")
	}
	return true
}

func (a *app) turn(pitch, yaw float64) {
	a.aim.Pitch = clamp(a.aim.Pitch+pitch, -89, 89)
	a.aim.Yaw += yaw
	a.setStatus(a.engine.SetAim(playerID, a.aim), fmt.Sprintf("aim %.0f/%.0f", a.aim.Pitch, a.aim.Yaw))
}

// syncButtons pushes the attack button when it changes.
func (a *app) syncButtons(now time.Time) {
	var b weapon.Buttons
	if a.held || now.Before(a.tapUntil) {
		b |= weapon.InAttack
	}
	if b == a.buttons {
		return
	}
	a.buttons = b
	if err := a.engine.SetInput(playerID, b); err != nil {
		a.setStatus(err, "")
	}
}

func (a *app) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	a.engine.Start()
	defer a.engine.Stop()

	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			a.syncButtons(now)
			a.draw()
		}
	}
}

func main() {
	configDir := flag.String("config", "", "directory holding manhack-sim.yaml")
	flag.Parse()

	cfg := config.Default()
	if *configDir != "" {
		var err error
		if cfg, err = config.Load(*configDir); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.screen.Fini()

	a.run()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
