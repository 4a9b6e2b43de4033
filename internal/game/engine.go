package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"manhack-sim/internal/logging"
	"manhack-sim/internal/sound"
	"manhack-sim/internal/storage"
	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

var (
	ErrUnknownWeapon   = errors.New("game: unknown weapon")
	ErrDuplicateWeapon = errors.New("game: weapon id already in use")
	ErrWeaponLimit     = errors.New("game: weapon limit reached")
	ErrUnknownPreset   = errors.New("game: unknown preset")
	ErrNotNPC          = errors.New("game: weapon is not carried by an npc")
	ErrNoStore         = errors.New("game: no save store configured")
	ErrQueueFull       = errors.New("game: animation event queue full")
)

// MaxPendingEvents caps the queued NPC animation events per weapon.
const MaxPendingEvents = 32

// DefaultSaveSlot names the save written when no slot is given.
const DefaultSaveSlot = "quick"

// EngineConfig configures a new engine.
type EngineConfig struct {
	TickRate    int
	Seed        int64 // 0 picks a time-based seed
	MaxWeapons  int   // 0 disables the cap
	MaxManhacks int   // live entity cap, 0 disables it
	ManhackLife int   // ticks, 0 = forever
	Properties  weapon.Properties
	Sounds      *sound.Registry
	Store       storage.Backend
	Logger      zerolog.Logger
}

// DefaultEngineConfig returns the stock host setup with an in-memory store.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickRate:    30,
		MaxWeapons:  64,
		MaxManhacks: 16,
		Properties:  weapon.DefaultProperties(),
		Sounds:      sound.DefaultRegistry(),
		Store:       storage.NewMemory(),
		Logger:      logging.Nop(),
	}
}

// Hooks are called synchronously with the engine lock held. They must not
// call back into the engine. OnTick is the exception: it runs after the
// lock is released.
type Hooks struct {
	OnThrow       func(weaponID string)
	OnDryFire     func(weaponID string)
	OnReload      func(weaponID string)
	OnSpawnFailed func(weaponID string)
	OnNPCShot     func(weaponID string)

	OnTick func(elapsed time.Duration, liveManhacks int)
}

func call(fn func(string), id string) {
	if fn != nil {
		fn(id)
	}
}

func (h Hooks) throw(id string)       { call(h.OnThrow, id) }
func (h Hooks) dryFire(id string)     { call(h.OnDryFire, id) }
func (h Hooks) reload(id string)      { call(h.OnReload, id) }
func (h Hooks) spawnFailed(id string) { call(h.OnSpawnFailed, id) }
func (h Hooks) npcShot(id string)     { call(h.OnNPCShot, id) }

// slot is one launcher and the actor carrying it.
type slot struct {
	id     string
	preset string
	custom bool // explicit properties, untouched by SetProperties

	weapon  *weapon.Weapon
	actor   *Actor
	buttons weapon.Buttons

	pending       []weapon.AnimEvent
	nextEventTime float64

	viewActivity weapon.Activity
	lastManhack  int
	lastSound    sound.Emission
	stats        WeaponStats
}

// WeaponStats counts what a launcher did since it was added.
type WeaponStats struct {
	Throws        int `json:"throws"`
	DryFires      int `json:"dryFires"`
	Reloads       int `json:"reloads"`
	SpawnFailures int `json:"spawnFailures"`
	NPCShots      int `json:"npcShots"`
}

// WeaponOptions describes a launcher to add.
type WeaponOptions struct {
	ID         string             `json:"id,omitempty"` // generated when empty
	Preset     string             `json:"preset,omitempty"`
	NPC        bool               `json:"npc,omitempty"`
	Pos        vecmath.Vector     `json:"pos"`
	Eyes       vecmath.QAngle     `json:"eyes"`
	Model      string             `json:"model,omitempty"`
	Enemy      string             `json:"enemy,omitempty"`
	Reverb     float64            `json:"reverb,omitempty"`
	Properties *weapon.Properties `json:"-"` // overrides the preset
}

// Engine hosts launchers and steps them with a fixed timestep
type Engine struct {
	mu sync.RWMutex

	tickRate   int
	maxWeapons int
	base       weapon.Properties

	slots  map[string]*slot
	order  []string // insertion order, iteration must be deterministic
	nextID int

	world  *World
	sounds *sound.Registry
	store  storage.Backend
	hooks  Hooks

	clock     float64
	tickCount uint64

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}

	snapshotPool *SnapshotPool
	eventLog     *EventLog

	// Deterministic RNG for replay consistency
	rng     *rand.Rand
	rngSeed int64

	log zerolog.Logger
}

// NewEngine creates an engine at simulation time zero
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	life := uint64(0)
	if cfg.ManhackLife > 0 {
		life = uint64(cfg.ManhackLife)
	}

	e := &Engine{
		tickRate:     cfg.TickRate,
		maxWeapons:   cfg.MaxWeapons,
		base:         cfg.Properties,
		slots:        make(map[string]*slot),
		world:        NewWorld(cfg.MaxManhacks, life),
		sounds:       cfg.Sounds,
		store:        cfg.Store,
		snapshotPool: NewSnapshotPool(),
		eventLog:     NewEventLog(),
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
		log:          logging.Component(cfg.Logger, "engine"),
	}
	e.produceSnapshot()
	return e
}

// Start begins the tick loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.stopChan = make(chan struct{})
	e.done = make(chan struct{})
	ticker, stop, done := e.ticker, e.stopChan, e.done
	e.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	e.log.Info().Int("tickRate", e.tickRate).Int64("seed", e.rngSeed).Msg("🎮 engine started")
}

// Stop stops the tick loop and waits for the current tick to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	done := e.done
	e.mu.Unlock()

	<-done
	e.log.Info().Uint64("ticks", e.TickCount()).Msg("🛑 engine stopped")
}

// IsRunning reports whether the tick loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// TickRate returns the configured frames per second.
func (e *Engine) TickRate() int {
	return e.tickRate
}

func (e *Engine) tick() {
	e.Step(1.0 / float64(e.tickRate))
}

// Step advances the simulation by dt seconds. Tests and scenarios call it
// directly instead of running the ticker.
func (e *Engine) Step(dt float64) {
	start := time.Now()

	e.mu.Lock()
	e.step(dt)
	onTick, live := e.hooks.OnTick, e.world.Live()
	e.mu.Unlock()

	if onTick != nil {
		onTick(time.Since(start), live)
	}
}

func (e *Engine) step(dt float64) {
	e.tickCount++
	e.clock += dt

	// Log tick event with RNG seed for deterministic replay
	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, e.clock, "",
		TickPayload{
			RNGSeed:     e.rngSeed,
			WeaponCount: len(e.slots),
			LiveEntity:  e.world.Live(),
			DeltaTimeNs: int64(dt * 1e9),
		})

	// Advance RNG seed deterministically for next tick
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	for _, id := range e.order {
		s := e.slots[id]
		f := weapon.Frame{Now: e.clock, Delta: dt, Buttons: s.buttons, Rand: e.rng}

		if s.actor.IsNPC() {
			e.runNPC(s, f)
			continue
		}

		s.weapon.PreFrame(f)
		if s.actor.Busy {
			s.weapon.BusyFrame(f)
		} else {
			s.weapon.PostFrame(f)
		}
	}

	if n := e.world.Expire(e.tickCount); n > 0 {
		e.log.Debug().Int("expired", n).Uint64("tick", e.tickCount).Msg("manhacks expired")
	}

	e.produceSnapshot()
}

// runNPC dispatches at most one queued animation event, paced by the
// weapon's NPC fire rate.
func (e *Engine) runNPC(s *slot, f weapon.Frame) {
	if len(s.pending) == 0 || f.Now < s.nextEventTime {
		return
	}
	evt := s.pending[0]
	s.pending = s.pending[1:]

	if evt.Type == weapon.EventWeaponPistolFire && s.weapon.State().Clip <= 0 {
		e.refillNPC(s)
	}

	s.actor.cone = s.weapon.BulletSpread()
	s.actor.rng = f.Rand
	s.weapon.HandleAnimEvent(evt, s.actor)

	if rate := s.weapon.Properties().FireRate; rate > 0 {
		s.nextEventTime = f.Now + 1/rate
	}
}

// refillNPC tops up an NPC clip. NPC carriers have no reserve limit.
func (e *Engine) refillNPC(s *slot) {
	st := s.weapon.State()
	st.Clip = s.weapon.Properties().MaxClip
	s.weapon.Restore(st)
	s.stats.Reloads++
	e.emit(EventTypeReload, s.id, ReloadPayload{Clip: st.Clip, Reserve: st.Reserve})
	e.hooks.reload(s.id)
}

func (e *Engine) emit(t EventType, weaponID string, payload interface{}) {
	e.eventLog.EmitSimple(t, e.tickCount, e.clock, weaponID, payload)
}

// AddWeapon creates a launcher and its carrier
func (e *Engine) AddWeapon(opts WeaponOptions) (WeaponSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.maxWeapons > 0 && len(e.slots) >= e.maxWeapons {
		return WeaponSnapshot{}, ErrWeaponLimit
	}
	if opts.Preset == "" {
		opts.Preset = DefaultPreset
	}
	if !HasPreset(opts.Preset) {
		return WeaponSnapshot{}, fmt.Errorf("%w: %s", ErrUnknownPreset, opts.Preset)
	}

	id := opts.ID
	if id == "" {
		for {
			e.nextID++
			id = fmt.Sprintf("w%d", e.nextID)
			if _, taken := e.slots[id]; !taken {
				break
			}
		}
	} else if _, taken := e.slots[id]; taken {
		return WeaponSnapshot{}, fmt.Errorf("%w: %s", ErrDuplicateWeapon, id)
	}

	kind := ActorPlayer
	if opts.NPC {
		kind = ActorNPC
	}
	s := &slot{
		id:     id,
		preset: opts.Preset,
		actor: &Actor{
			Kind:   kind,
			Pos:    opts.Pos,
			Eyes:   opts.Eyes,
			Model:  opts.Model,
			Enemy:  opts.Enemy,
			Reverb: opts.Reverb,
		},
	}

	props := GetPreset(opts.Preset).Properties(e.base)
	if opts.Properties != nil {
		props = *opts.Properties
		s.custom = true
	}
	s.weapon = weapon.New(props, (&slotHost{e: e, s: s}).host(), e.clock)
	s.weapon.SetOwner(s.actor)

	e.slots[id] = s
	e.order = append(e.order, id)

	e.emit(EventTypeWeaponAdd, id, WeaponAddPayload{Preset: opts.Preset, NPC: opts.NPC})
	e.log.Info().Str("weapon", id).Str("preset", opts.Preset).Stringer("owner", kind).Msg("🔧 weapon added")

	e.produceSnapshot()
	return e.snapshotOf(s), nil
}

// RemoveWeapon drops a launcher and every manhack it threw
func (e *Engine) RemoveWeapon(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.slots[id]; !ok {
		return ErrUnknownWeapon
	}
	delete(e.slots, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.world.RemoveOwned(id)

	e.emit(EventTypeWeaponRemove, id, nil)
	e.log.Info().Str("weapon", id).Msg("weapon removed")
	e.produceSnapshot()
	return nil
}

func (e *Engine) lookup(id string) (*slot, error) {
	s, ok := e.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWeapon, id)
	}
	return s, nil
}

// SetInput replaces the held buttons used from the next frame on
func (e *Engine) SetInput(id string, buttons weapon.Buttons) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.buttons = buttons
	return nil
}

// SetAim points the carrier's view
func (e *Engine) SetAim(id string, eyes vecmath.QAngle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.actor.Eyes = eyes
	return nil
}

// SetBusy switches a player carrier between the busy and post-frame hooks
func (e *Engine) SetBusy(id string, busy bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.actor.Busy = busy
	return nil
}

// Reload requests a reload at the current time. It reports whether the
// reload started.
func (e *Engine) Reload(id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.lookup(id)
	if err != nil {
		return false, err
	}
	if s.actor.IsNPC() {
		if s.weapon.State().Clip >= s.weapon.Properties().MaxClip {
			return false, nil
		}
		e.refillNPC(s)
		e.produceSnapshot()
		return true, nil
	}

	ok := s.weapon.Reload(weapon.Frame{Now: e.clock, Buttons: s.buttons, Rand: e.rng})
	e.produceSnapshot()
	return ok, nil
}

// FireNPCVolley queues animation events for an NPC carrier. Pistol fire
// volleys are clamped to the weapon's NPC burst range; any other event is
// queued once. It returns the number of events queued.
func (e *Engine) FireNPCVolley(id string, evt weapon.AnimEventType, count int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	if !s.actor.IsNPC() {
		return 0, ErrNotNPC
	}

	if evt == weapon.EventWeaponPistolFire {
		p := s.weapon.Properties()
		if count < p.MinBurst {
			count = p.MinBurst
		}
		if count > p.MaxNPCBurst {
			count = p.MaxNPCBurst
		}
	} else {
		count = 1
	}

	if len(s.pending)+count > MaxPendingEvents {
		return 0, ErrQueueFull
	}
	for i := 0; i < count; i++ {
		s.pending = append(s.pending, weapon.AnimEvent{Type: evt})
	}
	return count, nil
}

// SetProperties hot-swaps the base tuning. Weapons created with explicit
// properties keep theirs; the rest get their preset applied on top.
func (e *Engine) SetProperties(p weapon.Properties) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.base = p
	for _, id := range e.order {
		s := e.slots[id]
		if s.custom {
			continue
		}
		s.weapon.SetProperties(GetPreset(s.preset).Properties(p))
	}
	e.produceSnapshot()
	e.log.Info().Int("weapons", len(e.slots)).Msg("weapon tuning reloaded")
}

// SetWorldLimits changes the manhack cap and lifetime in ticks
func (e *Engine) SetWorldLimits(maxManhacks, life int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if life < 0 {
		life = 0
	}
	e.world.SetLimits(maxManhacks, uint64(life))
}

// SetHooks installs the event callbacks
func (e *Engine) SetHooks(h Hooks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = h
}

// Weapon returns a fresh snapshot of one launcher
func (e *Engine) Weapon(id string) (WeaponSnapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, err := e.lookup(id)
	if err != nil {
		return WeaponSnapshot{}, err
	}
	return e.snapshotOf(s), nil
}

// Weapons returns every launcher in insertion order
func (e *Engine) Weapons() []WeaponSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]WeaponSnapshot, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.snapshotOf(e.slots[id]))
	}
	return out
}

// Manhacks returns copies of the live manhacks
func (e *Engine) Manhacks() []Manhack {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world.Manhacks()
}

// Shots returns the recorded hitscan rays, filtered by shooter when set
func (e *Engine) Shots(weaponID string) []Shot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	all := e.world.Shots()
	if weaponID == "" {
		return all
	}
	out := all[:0]
	for _, s := range all {
		if s.Shooter == weaponID {
			out = append(out, s)
		}
	}
	return out
}

// HeardSounds returns the world sounds inserted for AI hearing
func (e *Engine) HeardSounds() []HeardSound {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world.Heard()
}

// Sounds returns the sound registry, nil when sounds are disabled
func (e *Engine) Sounds() *sound.Registry {
	return e.sounds
}

// SimTime returns the simulation clock in seconds
func (e *Engine) SimTime() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock
}

// TickCount returns the number of frames stepped
func (e *Engine) TickCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tickCount
}

// Save writes the launcher's fire state to the store under slot name
func (e *Engine) Save(ctx context.Context, id, name string) (storage.Record, error) {
	if e.store == nil {
		return storage.Record{}, ErrNoStore
	}
	if name == "" {
		name = DefaultSaveSlot
	}

	e.mu.RLock()
	s, err := e.lookup(id)
	if err != nil {
		e.mu.RUnlock()
		return storage.Record{}, err
	}
	st := s.weapon.State()
	simTime := e.clock
	e.mu.RUnlock()

	blob, err := st.MarshalBinary()
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to encode fire state: %w", err)
	}
	mirror, err := json.Marshal(st)
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to encode fire state: %w", err)
	}

	rec := storage.Record{
		ID:       id + ":" + name,
		WeaponID: id,
		Version:  weapon.SaveVersion,
		Blob:     blob,
		State:    datatypes.JSON(mirror),
		SimTime:  simTime,
		SavedAt:  time.Now().UTC(),
	}
	if err := e.store.Save(ctx, rec); err != nil {
		return storage.Record{}, fmt.Errorf("failed to save %s: %w", rec.ID, err)
	}

	e.log.Info().Str("weapon", id).Str("record", rec.ID).Msg("💾 fire state saved")
	return rec, nil
}

// Restore loads a saved fire state into a launcher. The record's own
// weapon is used when target is empty. Saved times are shifted onto the
// current clock so pending cooldowns keep their remaining length.
func (e *Engine) Restore(ctx context.Context, recordID, target string) (WeaponSnapshot, error) {
	if e.store == nil {
		return WeaponSnapshot{}, ErrNoStore
	}
	rec, err := e.store.Load(ctx, recordID)
	if err != nil {
		return WeaponSnapshot{}, err
	}

	var st weapon.FireState
	if err := st.UnmarshalBinary(rec.Blob); err != nil {
		return WeaponSnapshot{}, fmt.Errorf("failed to decode %s: %w", recordID, err)
	}
	if target == "" {
		target = rec.WeaponID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.lookup(target)
	if err != nil {
		return WeaponSnapshot{}, err
	}
	s.weapon.Restore(rebase(st, e.clock-rec.SimTime))

	e.emit(EventTypeRestore, target, RestorePayload{RecordID: recordID})
	e.log.Info().Str("weapon", target).Str("record", recordID).Msg("fire state restored")
	e.produceSnapshot()
	return e.snapshotOf(s), nil
}

// rebase shifts every absolute time in st by delta seconds.
func rebase(st weapon.FireState, delta float64) weapon.FireState {
	st.LastAttackTime += delta
	st.NextAttackTime += delta
	st.SoonestAttackTime += delta
	st.ReloadDoneTime += delta
	return st
}

// Saves lists stored records, newest first
func (e *Engine) Saves(ctx context.Context, weaponID string) ([]storage.Record, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.List(ctx, weaponID)
}

// DeleteSave removes a stored record
func (e *Engine) DeleteSave(ctx context.Context, recordID string) error {
	if e.store == nil {
		return ErrNoStore
	}
	return e.store.Delete(ctx, recordID)
}

// GetSnapshot returns the latest immutable snapshot for lock-free reads
func (e *Engine) GetSnapshot() *GameSnapshot {
	return e.snapshotPool.AcquireRead()
}

// produceSnapshot publishes the current state. Caller holds the lock.
func (e *Engine) produceSnapshot() {
	snap := &GameSnapshot{
		TickNumber:    e.tickCount,
		SimTime:       e.clock,
		RNGSeed:       e.rngSeed,
		Weapons:       make([]WeaponSnapshot, 0, len(e.order)),
		Manhacks:      e.world.Manhacks(),
		Shots:         e.world.Shots(),
		LiveManhacks:  e.world.Live(),
		ManhackLimit:  e.world.Limit(),
		SpawnFailures: e.world.SpawnFailures(),
	}
	for _, id := range e.order {
		snap.Weapons = append(snap.Weapons, e.snapshotOf(e.slots[id]))
	}
	e.snapshotPool.Publish(snap)
}

func (e *Engine) snapshotOf(s *slot) WeaponSnapshot {
	st := s.weapon.State()
	props := s.weapon.Properties()
	spread := s.weapon.BulletSpread()
	ws := WeaponSnapshot{
		ID:            s.id,
		Preset:        s.preset,
		Owner:         s.actor.Kind.String(),
		Pos:           s.actor.Pos,
		Eyes:          s.actor.Eyes,
		Punch:         s.actor.Punch,
		Busy:          s.actor.Busy,
		Buttons:       s.buttons,
		State:         st,
		Gate:          s.weapon.GateState(e.clock, s.buttons).String(),
		Activity:      s.weapon.Activity().String(),
		ViewActivity:  s.viewActivity.String(),
		Spread:        spread,
		SpreadDegrees: weapon.ConeDegrees(spread),
		MaxClip:       props.MaxClip,
		MaxPenalty:    props.MaxPenalty,
		NewAccuracy:   props.UseNewAccuracy,
		PendingEvents: len(s.pending),
		LastSound:     s.lastSound.Name,
		SoundDelay:    s.lastSound.Delay,
		SoundHeard:    s.lastSound.Heard,
		Stats:         s.stats,
	}
	if s.actor.IsNPC() {
		ws.AttackActivity = s.weapon.TranslateActivity(weapon.ActRangeAttack1).String()
		ws.Capabilities = s.weapon.Capabilities()
	}
	return ws
}

// StartEventLog begins writing events to a JSONL file
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and closes the event log file
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// Events returns up to n recent non-tick events
func (e *Engine) Events(n int, weaponID string) []Event {
	return e.eventLog.Recent(n, weaponID)
}

// GetEventLogStats returns event log counters
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}
