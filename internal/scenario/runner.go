package scenario

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"manhack-sim/internal/game"
	"manhack-sim/internal/logging"
	"manhack-sim/internal/storage"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// Options tune a run. The zero value uses stock properties and no logging.
type Options struct {
	Properties *weapon.Properties // base tuning, nil = weapon.DefaultProperties
	Logger     zerolog.Logger
	Hooks      game.Hooks
}

// Run executes sc on a fresh engine and reports the final state.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Report, error) {
	log := logging.Component(opts.Logger, "scenario")

	cfg := game.DefaultEngineConfig()
	cfg.TickRate = sc.TickRate
	cfg.Seed = sc.Seed
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if sc.MaxManhacks != 0 {
		cfg.MaxManhacks = sc.MaxManhacks
	}
	cfg.ManhackLife = sc.ManhackLife
	cfg.Store = storage.NewMemory()
	cfg.Logger = opts.Logger
	if opts.Properties != nil {
		cfg.Properties = *opts.Properties
	}

	e := game.NewEngine(cfg)
	e.SetHooks(opts.Hooks)

	for _, w := range sc.Weapons {
		_, err := e.AddWeapon(game.WeaponOptions{
			ID:     w.ID,
			Preset: w.Preset,
			NPC:    w.NPC,
			Pos:    vecmath.Vec(w.Pos[0], w.Pos[1], w.Pos[2]),
			Eyes:   w.Aim.angles(),
			Enemy:  w.Enemy,
			Reverb: w.Reverb,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario: add %s: %w", w.ID, err)
		}
	}

	dt := 1.0 / float64(sc.TickRate)
	ticks := sc.Ticks()
	buttons := make(map[string]weapon.Buttons, len(sc.Weapons))
	report := newReport(sc)

	next := 0
	for i := 0; i < ticks; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		// half a frame of slack absorbs float drift in the clock
		now := e.SimTime()
		for next < len(sc.Steps) && sc.Steps[next].At <= now+dt/2 {
			if err := apply(e, sc.Steps[next], buttons); err != nil {
				return nil, fmt.Errorf("scenario: step %d at %.3f: %w", next, sc.Steps[next].At, err)
			}
			next++
		}

		e.Step(dt)

		if sc.Trace {
			report.trace(e)
		}
	}

	report.finish(e)
	log.Debug().Str("scenario", sc.Name).Int("ticks", ticks).Int("steps", next).Msg("scenario finished")
	return report, nil
}

func apply(e *game.Engine, st Step, buttons map[string]weapon.Buttons) error {
	id := st.Weapon

	b := buttons[id]
	b = setFlag(b, weapon.InAttack, st.Attack)
	b = setFlag(b, weapon.InAttack2, st.Attack2)
	if b != buttons[id] {
		buttons[id] = b
		if err := e.SetInput(id, b); err != nil {
			return err
		}
	}

	if st.Aim != nil {
		if err := e.SetAim(id, st.Aim.angles()); err != nil {
			return err
		}
	}
	if st.Busy != nil {
		if err := e.SetBusy(id, *st.Busy); err != nil {
			return err
		}
	}
	if st.Reload {
		if _, err := e.Reload(id); err != nil {
			return err
		}
	}
	if st.NPCFire != nil {
		evt, err := weapon.ParseAnimEvent(st.NPCFire.Event)
		if err != nil {
			return err
		}
		if _, err := e.FireNPCVolley(id, evt, st.NPCFire.Count); err != nil {
			return err
		}
	}
	return nil
}

func setFlag(b, flag weapon.Buttons, v *bool) weapon.Buttons {
	switch {
	case v == nil:
		return b
	case *v:
		return b | flag
	default:
		return b &^ flag
	}
}
