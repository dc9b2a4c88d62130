// Package alarm provides one-shot wall-clock alarms keyed by an integer
// request code. An alarm fires its payload text exactly once at or after the
// scheduled time; firing performs no store writes.
package alarm

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lasttodo/lasttodo/log"
)

// FireFunc is invoked when an alarm fires. It receives only the payload text
// and must not assume anything else is still alive.
type FireFunc func(payload string)

// Scheduler manages pending one-shot alarms
type Scheduler struct {
	pending  map[int64]*pendingAlarm
	mu       sync.Mutex
	onFire   FireFunc
	stopping atomic.Bool // Prevents new alarms during shutdown
}

// pendingAlarm represents a scheduled alarm waiting to fire
type pendingAlarm struct {
	requestCode int64
	timer       *time.Timer
	payload     string
}

// NewScheduler creates a scheduler that calls onFire when alarms go off
func NewScheduler(onFire FireFunc) *Scheduler {
	return &Scheduler{
		pending: make(map[int64]*pendingAlarm),
		onFire:  onFire,
	}
}

// Schedule registers an alarm for the given wall-clock time.
// Scheduling an already-registered request code replaces the old alarm.
// Returns false if the scheduler is stopping and the alarm was ignored.
func (s *Scheduler) Schedule(requestCode int64, when time.Time, payload string) bool {
	if s.stopping.Load() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring lock (prevents race with Stop)
	if s.stopping.Load() {
		return false
	}

	// Replace any existing registration for this code
	if p, ok := s.pending[requestCode]; ok {
		p.timer.Stop()
		delete(s.pending, requestCode)
	}

	timer := time.AfterFunc(time.Until(when), func() {
		s.onTimer(requestCode)
	})
	s.pending[requestCode] = &pendingAlarm{
		requestCode: requestCode,
		timer:       timer,
		payload:     payload,
	}

	log.Debug().
		Int64("requestCode", requestCode).
		Time("when", when).
		Msg("alarm scheduled")

	return true
}

// Cancel removes a pending alarm. No-op if the code was never registered or
// the alarm already fired.
func (s *Scheduler) Cancel(requestCode int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[requestCode]; ok {
		p.timer.Stop()
		delete(s.pending, requestCode)
		log.Debug().Int64("requestCode", requestCode).Msg("alarm cancelled")
	}
}

// onTimer fires when an alarm's time arrives
func (s *Scheduler) onTimer(requestCode int64) {
	s.mu.Lock()
	p, ok := s.pending[requestCode]
	if ok {
		delete(s.pending, requestCode)
	}
	s.mu.Unlock()

	if ok {
		s.onFire(p.payload)
	}
}

// Stop cancels all pending alarms and prevents new ones from being scheduled.
// After Stop returns, no more alarms will fire.
func (s *Scheduler) Stop() {
	s.stopping.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pending {
		p.timer.Stop()
	}
	s.pending = make(map[int64]*pendingAlarm)
}

// PendingCount returns the number of pending alarms (for testing)
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
