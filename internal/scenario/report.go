package scenario

import (
	"fmt"
	"io"
	"text/tabwriter"

	"manhack-sim/internal/game"
)

// WeaponReport is one launcher's state at the end of a run.
type WeaponReport struct {
	ID            string           `yaml:"id" json:"id"`
	Preset        string           `yaml:"preset" json:"preset"`
	Owner         string           `yaml:"owner" json:"owner"`
	Clip          int              `yaml:"clip" json:"clip"`
	Reserve       int              `yaml:"reserve" json:"reserve"`
	Penalty       float64          `yaml:"penalty" json:"penalty"`
	SpreadDegrees float64          `yaml:"spread_degrees" json:"spreadDegrees"`
	Gate          string           `yaml:"gate" json:"gate"`
	Stats         game.WeaponStats `yaml:"stats" json:"stats"`
	Shots         int              `yaml:"shots" json:"shots"`
	Tracers       int              `yaml:"tracers" json:"tracers"`
}

// Sample is one weapon at the end of one tick.
type Sample struct {
	Tick          uint64  `yaml:"tick" json:"tick"`
	Time          float64 `yaml:"time" json:"time"`
	Weapon        string  `yaml:"weapon" json:"weapon"`
	Clip          int     `yaml:"clip" json:"clip"`
	Penalty       float64 `yaml:"penalty" json:"penalty"`
	SpreadDegrees float64 `yaml:"spread_degrees" json:"spreadDegrees"`
	Gate          string  `yaml:"gate" json:"gate"`
	Activity      string  `yaml:"activity" json:"activity"`
}

// Report summarizes a run.
type Report struct {
	Name          string           `yaml:"name" json:"name"`
	Seed          int64            `yaml:"seed" json:"seed"`
	Ticks         uint64           `yaml:"ticks" json:"ticks"`
	SimTime       float64          `yaml:"sim_time" json:"simTime"`
	Weapons       []WeaponReport   `yaml:"weapons" json:"weapons"`
	Totals        game.WeaponStats `yaml:"totals" json:"totals"`
	LiveManhacks  int              `yaml:"live_manhacks" json:"liveManhacks"`
	SpawnFailures uint64           `yaml:"spawn_failures" json:"spawnFailures"`
	Trace         []Sample         `yaml:"trace,omitempty" json:"trace,omitempty"`
}

func newReport(sc *Scenario) *Report {
	return &Report{Name: sc.Name, Seed: sc.Seed}
}

func (r *Report) trace(e *game.Engine) {
	snap := e.GetSnapshot()
	for _, w := range snap.Weapons {
		r.Trace = append(r.Trace, Sample{
			Tick:          snap.TickNumber,
			Time:          snap.SimTime,
			Weapon:        w.ID,
			Clip:          w.State.Clip,
			Penalty:       w.State.AccuracyPenalty,
			SpreadDegrees: w.SpreadDegrees,
			Gate:          w.Gate,
			Activity:      w.Activity,
		})
	}
}

func (r *Report) finish(e *game.Engine) {
	snap := e.GetSnapshot()
	r.Ticks = snap.TickNumber
	r.SimTime = snap.SimTime
	r.LiveManhacks = snap.LiveManhacks
	r.SpawnFailures = snap.SpawnFailures

	for _, w := range snap.Weapons {
		wr := WeaponReport{
			ID:            w.ID,
			Preset:        w.Preset,
			Owner:         w.Owner,
			Clip:          w.State.Clip,
			Reserve:       w.State.Reserve,
			Penalty:       w.State.AccuracyPenalty,
			SpreadDegrees: w.SpreadDegrees,
			Gate:          w.Gate,
			Stats:         w.Stats,
		}
		for _, s := range e.Shots(w.ID) {
			wr.Shots++
			if s.Tracer {
				wr.Tracers++
			}
		}
		r.Weapons = append(r.Weapons, wr)

		r.Totals.Throws += w.Stats.Throws
		r.Totals.DryFires += w.Stats.DryFires
		r.Totals.Reloads += w.Stats.Reloads
		r.Totals.SpawnFailures += w.Stats.SpawnFailures
		r.Totals.NPCShots += w.Stats.NPCShots
	}
}

// Weapon returns the report entry for id.
func (r *Report) Weapon(id string) (WeaponReport, bool) {
	for _, w := range r.Weapons {
		if w.ID == id {
			return w, true
		}
	}
	return WeaponReport{}, false
}

// WriteText prints the report as aligned columns.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "scenario %q  seed %d  %d ticks  %.2fs\n\n", r.Name, r.Seed, r.Ticks, r.SimTime); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEAPON\tPRESET\tOWNER\tCLIP\tRESERVE\tPENALTY\tCONE\tGATE\tTHROWS\tDRY\tRELOADS\tFAILS\tSHOTS")
	for _, wr := range r.Weapons {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.3f\t%.2f°\t%s\t%d\t%d\t%d\t%d\t%d\n",
			wr.ID, wr.Preset, wr.Owner, wr.Clip, wr.Reserve, wr.Penalty, wr.SpreadDegrees, wr.Gate,
			wr.Stats.Throws, wr.Stats.DryFires, wr.Stats.Reloads, wr.Stats.SpawnFailures, wr.Stats.NPCShots)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nmanhacks live %d, spawn failures %d\n", r.LiveManhacks, r.SpawnFailures)
	return err
}
