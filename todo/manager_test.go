package todo

import (
	"errors"
	"testing"

	"github.com/lasttodo/lasttodo/db"
)

func newTestManager() (*Manager, *fakeStore, *fakeScheduler, *fakeIdentity) {
	st := newFakeStore()
	sched := &fakeScheduler{}
	identity := &fakeIdentity{}
	m := NewManager(st, sched, NewAllocator(&fakeCodeStore{}), identity)
	return m, st, sched, identity
}

func TestManager_CoordinatorReusedPerToken(t *testing.T) {
	m, _, _, _ := newTestManager()

	c1, err := m.Coordinator("tok-a")
	if err != nil {
		t.Fatalf("Coordinator failed: %v", err)
	}
	c2, err := m.Coordinator("tok-a")
	if err != nil {
		t.Fatalf("Coordinator failed: %v", err)
	}
	if c1 != c2 {
		t.Error("same token should reuse the coordinator")
	}

	c3, err := m.Coordinator("tok-b")
	if err != nil {
		t.Fatalf("Coordinator failed: %v", err)
	}
	if c3 == c1 {
		t.Error("distinct tokens should get distinct coordinators")
	}
}

func TestManager_UnresolvedTokenRejected(t *testing.T) {
	m, _, _, _ := newTestManager()

	if _, err := m.Coordinator(""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestManager_LogoutTearsDownCoordinator(t *testing.T) {
	m, _, sched, identity := newTestManager()

	c, err := m.Coordinator("tok-a")
	if err != nil {
		t.Fatalf("Coordinator failed: %v", err)
	}
	c.OnSnapshot([]db.Todo{{ID: "t1", Task: "a", RequestCode: int64Ptr(5)}})

	m.Logout("tok-a")

	if len(sched.cancelled) != 1 || sched.cancelled[0] != 5 {
		t.Errorf("expected alarm 5 cancelled, got %v", sched.cancelled)
	}
	if len(identity.signOuts) != 1 || identity.signOuts[0] != "tok-a" {
		t.Errorf("expected sign-out of tok-a, got %v", identity.signOuts)
	}

	// A later request with the same token builds a fresh coordinator
	c2, err := m.Coordinator("tok-a")
	if err != nil {
		t.Fatalf("Coordinator after logout failed: %v", err)
	}
	if c2 == c {
		t.Error("logged-out coordinator should not be reused")
	}
}

func TestManager_LogoutUnknownTokenStillSignsOut(t *testing.T) {
	m, _, _, identity := newTestManager()

	m.Logout("never-seen")

	if len(identity.signOuts) != 1 || identity.signOuts[0] != "never-seen" {
		t.Errorf("expected sign-out of unknown token, got %v", identity.signOuts)
	}
}

func TestManager_ShutdownKeepsSessionsAndAlarms(t *testing.T) {
	m, _, sched, identity := newTestManager()

	c, err := m.Coordinator("tok-a")
	if err != nil {
		t.Fatalf("Coordinator failed: %v", err)
	}
	c.OnSnapshot([]db.Todo{{ID: "t1", Task: "a", RequestCode: int64Ptr(5)}})

	m.Shutdown()

	if len(sched.cancelled) != 0 {
		t.Errorf("shutdown must not cancel alarms, got %v", sched.cancelled)
	}
	if len(identity.signOuts) != 0 {
		t.Errorf("shutdown must not end sessions, got %v", identity.signOuts)
	}
}
