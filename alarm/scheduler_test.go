package alarm

import (
	"sync"
	"testing"
	"time"
)

// fireRecorder collects fired payloads
type fireRecorder struct {
	mu       sync.Mutex
	payloads []string
}

func (r *fireRecorder) fire(payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
}

func (r *fireRecorder) fired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.payloads))
	copy(out, r.payloads)
	return out
}

func TestScheduler_FiresPayloadOnce(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	if !s.Schedule(0, time.Now().Add(20*time.Millisecond), "Buy milk") {
		t.Fatal("Schedule returned false")
	}

	time.Sleep(100 * time.Millisecond)

	fired := rec.fired()
	if len(fired) != 1 || fired[0] != "Buy milk" {
		t.Errorf("expected one fire with 'Buy milk', got %v", fired)
	}
	if s.PendingCount() != 0 {
		t.Errorf("expected no pending alarms, got %d", s.PendingCount())
	}
}

func TestScheduler_CancelPreventsFire(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	s.Schedule(0, time.Now().Add(30*time.Millisecond), "Buy milk")
	s.Cancel(0)

	time.Sleep(100 * time.Millisecond)

	if fired := rec.fired(); len(fired) != 0 {
		t.Errorf("cancelled alarm fired: %v", fired)
	}
}

func TestScheduler_CancelUnknownCodeIsNoOp(t *testing.T) {
	s := NewScheduler(func(string) {})
	defer s.Stop()

	s.Cancel(42)

	if s.PendingCount() != 0 {
		t.Errorf("expected no pending alarms, got %d", s.PendingCount())
	}
}

func TestScheduler_RescheduleReplacesAlarm(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	s.Schedule(0, time.Now().Add(30*time.Millisecond), "old")
	s.Schedule(0, time.Now().Add(50*time.Millisecond), "new")

	if s.PendingCount() != 1 {
		t.Errorf("expected 1 pending alarm, got %d", s.PendingCount())
	}

	time.Sleep(150 * time.Millisecond)

	fired := rec.fired()
	if len(fired) != 1 || fired[0] != "new" {
		t.Errorf("expected only replacement to fire, got %v", fired)
	}
}

func TestScheduler_IndependentCodes(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	s.Schedule(0, time.Now().Add(20*time.Millisecond), "first")
	s.Schedule(1, time.Now().Add(40*time.Millisecond), "second")
	s.Cancel(0)

	time.Sleep(120 * time.Millisecond)

	fired := rec.fired()
	if len(fired) != 1 || fired[0] != "second" {
		t.Errorf("expected only 'second' to fire, got %v", fired)
	}
}

func TestScheduler_StopCancelsPendingAndRejectsNew(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)

	s.Schedule(0, time.Now().Add(30*time.Millisecond), "Buy milk")
	s.Stop()

	if s.Schedule(1, time.Now().Add(10*time.Millisecond), "late") {
		t.Error("Schedule after Stop should return false")
	}

	time.Sleep(100 * time.Millisecond)

	if fired := rec.fired(); len(fired) != 0 {
		t.Errorf("alarms fired after Stop: %v", fired)
	}
	if s.PendingCount() != 0 {
		t.Errorf("expected no pending alarms, got %d", s.PendingCount())
	}
}
