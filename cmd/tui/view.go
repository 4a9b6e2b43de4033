package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"manhack-sim/internal/game"
)

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleGood   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWarn   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleBad    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHeader = tcell.StyleDefault.Reverse(true)
)

const barWidth = 30

func (a *app) text(x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// bar draws frac of a fixed-width gauge.
func (a *app) bar(x, y int, frac float64, style tcell.Style) {
	filled := int(clamp(frac, 0, 1)*barWidth + 0.5)
	for i := 0; i < barWidth; i++ {
		ch := '░'
		if i < filled {
			ch = '█'
		}
		a.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func gateStyle(gate string) tcell.Style {
	switch gate {
	case "idle":
		return styleGood
	case "cooldown":
		return styleWarn
	default:
		return styleBad
	}
}

func (a *app) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	snap := a.engine.GetSnapshot()

	header := fmt.Sprintf(" MANHACK SIM  t=%.2fs  tick %d  manhacks %d/%d  spawn failures %d",
		snap.SimTime, snap.TickNumber, snap.LiveManhacks, snap.ManhackLimit, snap.SpawnFailures)
	a.text(0, 0, styleHeader, header+strings.Repeat(" ", max(0, w-len(header))))

	y := 2
	for _, ws := range snap.Weapons {
		y = a.drawWeapon(y, ws)
		y++
	}

	a.text(0, y, styleTitle, "Recent events")
	y++
	for _, ev := range a.engine.Events(eventLines, "") {
		a.text(2, y, styleDim, fmt.Sprintf("%7.2fs  %-12s %s", ev.SimTime, ev.Type, ev.WeaponID))
		y++
	}

	statusStyle := styleText
	if a.statusErr {
		statusStyle = styleBad
	}
	a.text(0, h-2, statusStyle, a.status)
	a.text(0, h-1, styleDim, "space tap  a hold  r reload  b busy  n npc volley  t npc throw  arrows aim  q quit")

	a.screen.Show()
}

func (a *app) drawWeapon(y int, ws game.WeaponSnapshot) int {
	title := fmt.Sprintf("%s [%s, %s]", ws.ID, ws.Preset, ws.Owner)
	if ws.Busy {
		title += "  busy"
	}
	a.text(0, y, styleTitle, title)
	y++

	st := ws.State
	ammo := fmt.Sprintf("clip %d/%d  reserve %d", st.Clip, ws.MaxClip, st.Reserve)
	if st.InReload {
		ammo += fmt.Sprintf("  reloading until %.2fs", st.ReloadDoneTime)
	}
	a.text(2, y, styleText, ammo)
	y++

	x := a.text(2, y, styleText, "gate ")
	x = a.text(x, y, gateStyle(ws.Gate), fmt.Sprintf("%-16s", ws.Gate))
	a.text(x, y, styleDim, fmt.Sprintf("burst left %d  next attack %.2fs", st.BurstRemaining, st.NextAttackTime))
	y++

	x = a.text(2, y, styleText, fmt.Sprintf("penalty %5.3f ", st.AccuracyPenalty))
	frac := 0.0
	if ws.MaxPenalty > 0 {
		frac = st.AccuracyPenalty / ws.MaxPenalty
	}
	a.bar(x, y, frac, styleWarn)
	y++

	a.text(2, y, styleText, fmt.Sprintf("cone %5.2f°  activity %s  aim %.0f/%.0f",
		ws.SpreadDegrees, ws.Activity, ws.Eyes.Pitch, ws.Eyes.Yaw))
	y++

	a.text(2, y, styleDim, fmt.Sprintf("throws %d  dry %d  reloads %d  fails %d  npc shots %d  queued %d",
		ws.Stats.Throws, ws.Stats.DryFires, ws.Stats.Reloads, ws.Stats.SpawnFailures, ws.Stats.NPCShots, ws.PendingEvents))
	return y + 1
}
