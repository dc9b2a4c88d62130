// Package todo implements the to-do lifecycle coordinator: it translates user
// intents into store writes and alarm (de)registrations, and store snapshots
// into presentation state, keeping every item with a future reminder paired
// with exactly one live alarm.
package todo

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lasttodo/lasttodo/db"
	"github.com/lasttodo/lasttodo/log"
	"github.com/lasttodo/lasttodo/store"
)

// ItemStore is the durable per-user collection the coordinator writes to
type ItemStore interface {
	Create(userID string, item db.Todo) (string, error)
	Upsert(userID, id string, item db.Todo) error
	Delete(userID, id string) error
	List(userID string) ([]db.Todo, error)
	Subscribe(userID string) (<-chan []db.Todo, func())
}

// Scheduler registers and cancels one-shot alarms by request code
type Scheduler interface {
	Schedule(requestCode int64, when time.Time, payload string) bool
	Cancel(requestCode int64)
}

// Identity ends sessions on logout
type Identity interface {
	SignOut(token string)
}

// Coordinator owns one authenticated session's view of the collection.
// All intent methods are expected to be called sequentially; the store
// subscription goroutine is the only writer of the cached view.
type Coordinator struct {
	userID   string
	token    string
	store    ItemStore
	sched    Scheduler
	codes    *Allocator
	identity Identity

	mu       sync.RWMutex
	items    []db.Todo
	watchers map[chan []db.Todo]struct{}
	closed   bool

	unsubscribe func()
}

// NewCoordinator builds a coordinator for an authenticated session, seeds
// the cached view from the store, and starts the live subscription.
func NewCoordinator(userID, token string, st ItemStore, sched Scheduler, codes *Allocator, identity Identity) *Coordinator {
	c := &Coordinator{
		userID:   userID,
		token:    token,
		store:    st,
		sched:    sched,
		codes:    codes,
		identity: identity,
		watchers: make(map[chan []db.Todo]struct{}),
	}

	// Seed the cached view so intents arriving before the first snapshot
	// still see the current collection
	if items, err := st.List(userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("failed to load initial collection")
	} else {
		c.items = items
	}

	snapshots, unsubscribe := st.Subscribe(userID)
	c.unsubscribe = unsubscribe

	go func() {
		for items := range snapshots {
			c.OnSnapshot(items)
		}
	}()

	return c
}

// AddItem creates a new item with no reminder and returns its assigned id
func (c *Coordinator) AddItem(task string) (string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return "", &ValidationError{Message: "task cannot be empty"}
	}

	id, err := c.store.Create(c.userID, db.Todo{Task: task, IsCompleted: false})
	if err != nil {
		return "", &StoreError{Op: "create", Err: err}
	}

	log.Info().Str("user", c.userID).Str("id", id).Msg("todo added")
	return id, nil
}

// EditTask rewrites the item with new task text, preserving its other fields
func (c *Coordinator) EditTask(id, newTask string) error {
	newTask = strings.TrimSpace(newTask)
	if newTask == "" {
		return &ValidationError{Message: "task cannot be empty"}
	}

	item, ok := c.cached(id)
	if !ok {
		return ErrItemNotFound
	}

	item.Task = newTask
	if err := c.store.Upsert(c.userID, id, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrItemNotFound
		}
		return &StoreError{Op: "upsert", Err: err}
	}

	return nil
}

// ToggleComplete rewrites the item with the new completion flag.
// A pending reminder alarm is left in place; a completed task still reminds.
func (c *Coordinator) ToggleComplete(id string, completed bool) error {
	item, ok := c.cached(id)
	if !ok {
		return ErrItemNotFound
	}

	item.IsCompleted = completed
	if err := c.store.Upsert(c.userID, id, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrItemNotFound
		}
		return &StoreError{Op: "upsert", Err: err}
	}

	return nil
}

// SetReminder schedules a one-shot reminder for the item.
//
// Ordering is write-then-schedule: the alarm is only registered after the
// store confirmed the item, so an alarm never fires for unconfirmed state.
// A request code allocated for a write that then fails is leaked, never
// reused for a later attempt.
func (c *Coordinator) SetReminder(id string, when time.Time) error {
	if !when.After(time.Now()) {
		return &ValidationError{Message: "reminder time must be in the future"}
	}

	item, ok := c.cached(id)
	if !ok {
		return ErrItemNotFound
	}

	code, err := c.codes.Next()
	if err != nil {
		return &StoreError{Op: "allocate request code", Err: err}
	}

	oldCode := item.RequestCode
	reminderMs := when.UnixMilli()
	item.ReminderTime = &reminderMs
	item.RequestCode = &code

	if err := c.store.Upsert(c.userID, id, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrItemNotFound
		}
		return &StoreError{Op: "upsert", Err: err}
	}

	// Re-setting a reminder replaces the old alarm
	if oldCode != nil {
		c.sched.Cancel(*oldCode)
	}
	c.sched.Schedule(code, when, item.Task)

	log.Info().
		Str("user", c.userID).
		Str("id", id).
		Int64("requestCode", code).
		Time("when", when).
		Msg("reminder set")

	return nil
}

// DeleteItem cancels the item's alarm, if any is known, then deletes it
// from the store. Cancelling a never-registered code is a no-op.
func (c *Coordinator) DeleteItem(id string) error {
	if item, ok := c.cached(id); ok && item.RequestCode != nil {
		c.sched.Cancel(*item.RequestCode)
	}

	if err := c.store.Delete(c.userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrItemNotFound
		}
		return &StoreError{Op: "delete", Err: err}
	}

	log.Info().Str("user", c.userID).Str("id", id).Msg("todo deleted")
	return nil
}

// OnSnapshot replaces the cached view wholesale and forwards the new
// collection to every watcher. Invoked by the store subscription on every
// change; last write wins, no diffing.
func (c *Coordinator) OnSnapshot(items []db.Todo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.items = items

	// Watcher channels are only closed under this lock, so sending here
	// cannot race a stop or teardown
	for ch := range c.watchers {
		select {
		case ch <- items:
		default:
			// Watcher full, skip
		}
	}
}

// Items returns the last known snapshot of the collection
func (c *Coordinator) Items() []db.Todo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]db.Todo, len(c.items))
	copy(items, c.items)
	return items
}

// Watch delivers every subsequent snapshot to the presentation layer.
// Returns the snapshot channel and a stop function; stopping twice is a no-op.
func (c *Coordinator) Watch() (<-chan []db.Todo, func()) {
	ch := make(chan []db.Todo, 10)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.watchers[ch] = struct{}{}
	c.mu.Unlock()

	stop := func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if _, exists := c.watchers[ch]; exists {
			delete(c.watchers, ch)
			close(ch)
		}
	}

	return ch, stop
}

// Logout cancels the alarm of every item in the cached view (best-effort),
// tears down the subscription, and ends the session. Calling it twice
// cancels each alarm at most once. Reminder fields are left in the store:
// signing back in does not re-arm alarms.
func (c *Coordinator) Logout() {
	items, first := c.teardown()
	if !first {
		return
	}

	for _, item := range items {
		if item.RequestCode != nil {
			c.sched.Cancel(*item.RequestCode)
		}
	}

	c.identity.SignOut(c.token)
	log.Info().Str("user", c.userID).Msg("logged out")
}

// shutdown tears the coordinator down without cancelling alarms or ending
// the session. Used on process shutdown, where the session token stays valid.
func (c *Coordinator) shutdown() {
	c.teardown()
}

// teardown marks the coordinator closed and releases its subscription and
// watchers. Returns the cached items and whether this call was the first.
func (c *Coordinator) teardown() ([]db.Todo, bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, false
	}
	c.closed = true
	items := c.items
	for ch := range c.watchers {
		close(ch)
	}
	c.watchers = make(map[chan []db.Todo]struct{})
	c.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
	}

	return items, true
}

// cached looks up an item in the last known snapshot
func (c *Coordinator) cached(id string) (db.Todo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return db.Todo{}, false
}
