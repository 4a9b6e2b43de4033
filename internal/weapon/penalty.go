package weapon

import "manhack-sim/internal/vecmath"

// UpdatePenalty decays the accuracy penalty while the trigger is released
// and the dry-fire cooldown has passed.
func (w *Weapon) UpdatePenalty(f Frame) {
	if w.player() == nil {
		return
	}

	if !f.Buttons.Has(InAttack) && w.state.SoonestAttackTime < f.Now {
		w.state.AccuracyPenalty -= f.Delta
		w.state.AccuracyPenalty = vecmath.Clamp(w.state.AccuracyPenalty, 0, w.props.MaxPenalty)
	}
}

// addPenalty charges one throw against accuracy.
func (w *Weapon) addPenalty() {
	w.state.AccuracyPenalty = vecmath.Clamp(w.state.AccuracyPenalty+w.props.ShotPenalty, 0, w.props.MaxPenalty)
}

// PreFrame runs before the owner's input is processed.
func (w *Weapon) PreFrame(f Frame) {
	w.UpdatePenalty(f)
}

// BusyFrame runs instead of PostFrame while the owner cannot use the weapon.
func (w *Weapon) BusyFrame(f Frame) {
	w.UpdatePenalty(f)
}
