package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"manhack-sim/internal/chart"
	"manhack-sim/internal/game"
	"manhack-sim/internal/sound"
	"manhack-sim/internal/storage"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	// lock-free read, never blocks the tick loop
	writeJSON(w, http.StatusOK, h.engine.GetSnapshot())
}

// presetView is a preset with its tuning resolved against the stock base.
type presetView struct {
	game.Preset
	Properties weapon.Properties `json:"properties"`
}

func (h *routerHandlers) handleGetPresets(w http.ResponseWriter, r *http.Request) {
	base := weapon.DefaultProperties()
	all := game.GetAllPresets()
	out := make([]presetView, 0, len(all))
	for _, p := range all {
		out = append(out, presetView{Preset: p, Properties: p.Properties(base)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *routerHandlers) handleListWeapons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Weapons())
}

func (h *routerHandlers) handleAddWeapon(w http.ResponseWriter, r *http.Request) {
	var opts game.WeaponOptions
	if !decodeBody(w, r, &opts) {
		return
	}
	if opts.Preset != "" && !game.HasPreset(opts.Preset) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown preset %q", opts.Preset))
		return
	}
	if len(h.engine.Weapons()) >= h.limits.MaxWeapons {
		writeEngineError(w, game.ErrWeaponLimit)
		return
	}

	snap, err := h.engine.AddWeapon(opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Info().Str("weapon", snap.ID).Str("preset", snap.Preset).Str("owner", snap.Owner).Msg("➕ weapon added")
	writeJSON(w, http.StatusCreated, snap)
}

func (h *routerHandlers) handleGetWeapon(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Weapon(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *routerHandlers) handleRemoveWeapon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.engine.RemoveWeapon(id); err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Info().Str("weapon", id).Msg("➖ weapon removed")
	w.WriteHeader(http.StatusNoContent)
}

// inputRequest sets the held buttons. Buttons, when present, replaces the
// named flags.
type inputRequest struct {
	Buttons *uint32 `json:"buttons,omitempty"`
	Attack  bool    `json:"attack"`
	Attack2 bool    `json:"attack2"`
	Reload  bool    `json:"reload"`
}

func (req inputRequest) buttons() weapon.Buttons {
	if req.Buttons != nil {
		return weapon.Buttons(*req.Buttons)
	}
	var b weapon.Buttons
	if req.Attack {
		b |= weapon.InAttack
	}
	if req.Attack2 {
		b |= weapon.InAttack2
	}
	if req.Reload {
		b |= weapon.InReload
	}
	return b
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respondWeapon(w, chi.URLParam(r, "id"), func(id string) error {
		return h.engine.SetInput(id, req.buttons())
	})
}

func (h *routerHandlers) handleAim(w http.ResponseWriter, r *http.Request) {
	var eyes vecmath.QAngle
	if !decodeBody(w, r, &eyes) {
		return
	}
	h.respondWeapon(w, chi.URLParam(r, "id"), func(id string) error {
		return h.engine.SetAim(id, eyes)
	})
}

// respondWeapon applies fn and answers with the weapon's fresh snapshot.
func (h *routerHandlers) respondWeapon(w http.ResponseWriter, id string, fn func(string) error) {
	if err := fn(id); err != nil {
		writeEngineError(w, err)
		return
	}
	snap, err := h.engine.Weapon(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *routerHandlers) handleReload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	started, err := h.engine.Reload(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	snap, err := h.engine.Weapon(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"started": started,
		"weapon":  snap,
	})
}

type npcFireRequest struct {
	Event string `json:"event"` // pistol_fire, throw, melee_hit or a numeric id
	Count int    `json:"count"`
}

func (h *routerHandlers) handleNPCFire(w http.ResponseWriter, r *http.Request) {
	var req npcFireRequest
	if !decodeBody(w, r, &req) {
		return
	}
	evt, err := weapon.ParseAnimEvent(req.Event)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	queued, err := h.engine.FireNPCVolley(chi.URLParam(r, "id"), evt, req.Count)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"event":  evt.String(),
		"queued": queued,
	})
}

// SpreadResponse describes a launcher's current dispersion.
type SpreadResponse struct {
	WeaponID       string         `json:"weaponId"`
	Penalty        float64        `json:"penalty"`
	MaxPenalty     float64        `json:"maxPenalty"`
	UseNewAccuracy bool           `json:"useNewAccuracy"`
	Cone           vecmath.Vector `json:"cone"`
	Degrees        float64        `json:"degrees"`
	Samples        []chart.Point  `json:"samples,omitempty"`
}

// samplesParam reads ?samples= clamped to the configured maximum.
func (h *routerHandlers) samplesParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("samples")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid samples %q", raw)
	}
	if n > h.limits.MaxSpreadSamples {
		n = h.limits.MaxSpreadSamples
	}
	return n, nil
}

func seedParam(r *http.Request) int64 {
	seed, err := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64)
	if err != nil || seed == 0 {
		return chart.DefaultConfig().Seed
	}
	return seed
}

func chartInput(snap game.WeaponSnapshot) chart.Input {
	return chart.Input{
		Penalty:        snap.State.AccuracyPenalty,
		MaxPenalty:     snap.MaxPenalty,
		UseNewAccuracy: snap.NewAccuracy,
		Cone:           snap.Spread,
	}
}

func (h *routerHandlers) handleSpread(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Weapon(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	n, err := h.samplesParam(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := SpreadResponse{
		WeaponID:       snap.ID,
		Penalty:        snap.State.AccuracyPenalty,
		MaxPenalty:     snap.MaxPenalty,
		UseNewAccuracy: snap.NewAccuracy,
		Cone:           snap.Spread,
		Degrees:        snap.SpreadDegrees,
	}
	if n > 0 {
		resp.Samples = chart.Sample(snap.Spread, n, seedParam(r))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *routerHandlers) handleSpreadPNG(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Weapon(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	cfg := chart.DefaultConfig()
	if cfg.Samples, err = h.samplesParam(r, cfg.Samples); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg.Seed = seedParam(r)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := chart.WritePNG(w, chartInput(snap), cfg); err != nil {
		h.log.Error().Err(err).Str("weapon", snap.ID).Msg("spread chart encode failed")
	}
}

func (h *routerHandlers) handleShots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.engine.Weapon(id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Shots(id))
}

func (h *routerHandlers) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.engine.Save(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *routerHandlers) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Record string `json:"record"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Record == "" {
		writeError(w, http.StatusBadRequest, "record is required")
		return
	}
	snap, err := h.engine.Restore(r.Context(), req.Record, chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Info().Str("weapon", snap.ID).Str("record", req.Record).Msg("⏪ fire state restored")
	writeJSON(w, http.StatusOK, snap)
}

func (h *routerHandlers) handleListSaves(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.Saves(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if recs == nil {
		recs = []storage.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *routerHandlers) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteSave(r.Context(), chi.URLParam(r, "record")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *routerHandlers) handleManhacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Manhacks())
}

func (h *routerHandlers) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid n %q", raw))
			return
		}
		n = v
	}
	events := h.engine.Events(n, r.URL.Query().Get("weapon"))
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"stats":  h.engine.GetEventLogStats(),
	})
}

func (h *routerHandlers) handleListSounds(w http.ResponseWriter, r *http.Request) {
	reg := h.engine.Sounds()
	if reg == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, reg.Names())
}

// handleSoundWAV renders a sound script. The name may carry a .wav suffix.
func (h *routerHandlers) handleSoundWAV(w http.ResponseWriter, r *http.Request) {
	reg := h.engine.Sounds()
	if reg == nil {
		writeError(w, http.StatusNotFound, "sounds disabled")
		return
	}
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".wav")

	reverb := 0.0
	if raw := r.URL.Query().Get("reverb"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid reverb %q", raw))
			return
		}
		reverb = vecmath.Clamp(v, 0, 1)
	}

	key := fmt.Sprintf("%s@%.3f", name, reverb)
	data, err := h.wavs.GetOrRender(key, func() ([]byte, error) {
		return reg.RenderWAVBytes(name, reverb)
	})
	if err != nil {
		if errors.Is(err, sound.ErrUnknownSound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// Helper functions (package-level for reuse)

// maxBodyBytes bounds request bodies; every payload here is tiny.
const maxBodyBytes = 64 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps engine and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownWeapon), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrDuplicateWeapon), errors.Is(err, game.ErrWeaponLimit):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnknownPreset), errors.Is(err, game.ErrNotNPC):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, game.ErrNoStore):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
