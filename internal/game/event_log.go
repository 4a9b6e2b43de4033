package game

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize      = 1024                   // pending writes held for the file sink
	EventTailSize        = 256                    // recent non-tick events kept for the API
	MaxEventsPerSec      = 10000                  // global rate limit
	MaxEventsPerWeapon   = 100                    // per-weapon rate limit per second
	BatchFlushSize       = 64                     // events per batch write
	BatchFlushInterval   = 100 * time.Millisecond // how often to flush
	WeaponLimiterCleanup = 5 * time.Minute        // idle weapon limiters are dropped after this
)

// EventLog records weapon events with backpressure. Every accepted event
// reaches the in-memory tail; the JSONL sink only sees events emitted
// between Start and Stop. A full pending ring drops its oldest entry.
type EventLog struct {
	pending ring
	tail    eventTail
	limits  limiterSet

	sequence atomic.Uint64
	total    atomic.Uint64
	dropped  atomic.Uint64
	byType   [eventTypeCount]atomic.Uint64

	sink     *jsonlSink
	sinkMu   sync.Mutex
	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	workers  sync.WaitGroup
}

// NewEventLog creates an event log that keeps events in memory until Start.
func NewEventLog() *EventLog {
	return &EventLog{
		limits: limiterSet{
			global: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		},
		stopChan: make(chan struct{}),
	}
}

// Start launches the flush and limiter cleanup workers. An empty path keeps
// events in memory only.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	if filePath != "" {
		sink, err := openSink(filePath)
		if err != nil {
			return err
		}
		el.sinkMu.Lock()
		el.sink = sink
		el.sinkMu.Unlock()
	}

	el.running.Store(true)
	el.workers.Add(2)
	go el.flushLoop()
	go el.cleanupLoop()
	return nil
}

// Stop drains pending events to the sink and closes it.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.workers.Wait()

		el.sinkMu.Lock()
		if el.sink != nil {
			el.sink.close()
			el.sink = nil
		}
		el.sinkMu.Unlock()
	})
}

// Emit stamps and stores an event. It returns false when a rate limit
// rejected it.
func (el *EventLog) Emit(event Event) bool {
	limited := event.WeaponID != "" && event.Type != EventTypeTick
	if !el.limits.allow(event.WeaponID, limited) {
		el.dropped.Add(1)
		return false
	}

	event.Sequence = el.sequence.Add(1)
	el.total.Add(1)
	if int(event.Type) < eventTypeCount {
		el.byType[event.Type].Add(1)
	}

	if event.Type != EventTypeTick {
		el.tail.push(event)
	}
	if el.running.Load() && el.pending.push(event) {
		el.dropped.Add(1)
	}
	return true
}

// EmitSimple builds and emits an event in one call
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, simTime float64, weaponID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, simTime, weaponID, payload))
}

// Recent returns up to n of the newest non-tick events, oldest first.
// Events for other weapons are skipped when weaponID is set.
func (el *EventLog) Recent(n int, weaponID string) []Event {
	return el.tail.recent(n, weaponID)
}

func (el *EventLog) flushLoop() {
	defer el.workers.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.pending.drain(batch[:0], BatchFlushSize)
				if len(batch) == 0 {
					return
				}
				el.write(batch)
			}
		case <-ticker.C:
			if batch = el.pending.drain(batch[:0], BatchFlushSize); len(batch) > 0 {
				el.write(batch)
			}
		}
	}
}

func (el *EventLog) write(batch []Event) {
	el.sinkMu.Lock()
	defer el.sinkMu.Unlock()
	if el.sink != nil {
		el.sink.write(batch)
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.workers.Done()

	ticker := time.NewTicker(WeaponLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case now := <-ticker.C:
			el.limits.sweep(now.Add(-WeaponLimiterCleanup))
		}
	}
}

// GetStats returns counters for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	byType := make(map[string]uint64, eventTypeCount)
	for t := range el.byType {
		if n := el.byType[t].Load(); n > 0 {
			byType[EventType(t).String()] = n
		}
	}
	return map[string]interface{}{
		"total":   el.total.Load(),
		"dropped": el.dropped.Load(),
		"pending": el.pending.len(),
		"running": el.running.Load(),
		"byType":  byType,
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 { return el.dropped.Load() }

// GetTotalCount returns the total number of events accepted
func (el *EventLog) GetTotalCount() uint64 { return el.total.Load() }

// ring is a single-producer, single-consumer buffer of events waiting for
// the sink. The engine lock serializes producers.
type ring struct {
	buf  [EventBufferSize]Event
	head atomic.Uint64 // next write
	tail atomic.Uint64 // next read
}

// push stores ev and reports whether the oldest pending event was dropped
// to make room.
func (r *ring) push(ev Event) (overwrote bool) {
	head := r.head.Load()
	if head-r.tail.Load() >= EventBufferSize {
		r.tail.Add(1)
		overwrote = true
	}
	r.buf[head%EventBufferSize] = ev
	r.head.Store(head + 1)
	return overwrote
}

func (r *ring) drain(dst []Event, limit int) []Event {
	head := r.head.Load()
	tail := r.tail.Load()
	for i := tail; i < head && len(dst) < limit; i++ {
		dst = append(dst, r.buf[i%EventBufferSize])
	}
	r.tail.Add(uint64(len(dst)))
	return dst
}

func (r *ring) len() uint64 { return r.head.Load() - r.tail.Load() }

// eventTail keeps the newest non-tick events.
type eventTail struct {
	mu   sync.Mutex
	buf  [EventTailSize]Event
	next int
	n    int
}

func (t *eventTail) push(ev Event) {
	t.mu.Lock()
	t.buf[t.next] = ev
	t.next = (t.next + 1) % EventTailSize
	if t.n < EventTailSize {
		t.n++
	}
	t.mu.Unlock()
}

func (t *eventTail) recent(n int, weaponID string) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 || n > t.n {
		n = t.n
	}

	// walk newest to oldest, then flip
	out := make([]Event, 0, n)
	for i := 0; i < t.n && len(out) < n; i++ {
		ev := t.buf[(t.next-1-i+EventTailSize)%EventTailSize]
		if weaponID != "" && ev.WeaponID != weaponID {
			continue
		}
		out = append(out, ev)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// limiterSet holds the global limiter plus one limiter per weapon.
type limiterSet struct {
	global *rate.Limiter
	perID  sync.Map // string -> *weaponLimiter
}

type weaponLimiter struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

func (s *limiterSet) allow(weaponID string, perWeapon bool) bool {
	if !s.global.Allow() {
		return false
	}
	if !perWeapon {
		return true
	}

	now := time.Now().UnixNano()
	v, ok := s.perID.Load(weaponID)
	if !ok {
		wl := &weaponLimiter{limiter: rate.NewLimiter(MaxEventsPerWeapon, MaxEventsPerWeapon/10)}
		v, _ = s.perID.LoadOrStore(weaponID, wl)
	}
	wl := v.(*weaponLimiter)
	wl.lastUsed.Store(now)
	return wl.limiter.Allow()
}

// sweep forgets weapons idle since cutoff.
func (s *limiterSet) sweep(cutoff time.Time) {
	c := cutoff.UnixNano()
	s.perID.Range(func(key, value interface{}) bool {
		if value.(*weaponLimiter).lastUsed.Load() < c {
			s.perID.Delete(key)
		}
		return true
	})
}

// jsonlSink appends newline-delimited JSON to a file.
type jsonlSink struct {
	file *os.File
	w    *bufio.Writer
	enc  *json.Encoder
}

func openSink(path string) (*jsonlSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	return &jsonlSink{file: f, w: w, enc: json.NewEncoder(w)}, nil
}

func (s *jsonlSink) write(batch []Event) {
	for _, ev := range batch {
		// Encode terminates each record with a newline
		_ = s.enc.Encode(ev)
	}
	_ = s.w.Flush()
}

func (s *jsonlSink) close() {
	_ = s.w.Flush()
	_ = s.file.Close()
}
