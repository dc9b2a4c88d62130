// Package store provides the durable per-user to-do collection with a
// subscribe-for-changes primitive: after every successful write the full
// current collection is re-read and delivered to that user's subscribers.
package store

import (
	"github.com/lasttodo/lasttodo/db"
	"github.com/lasttodo/lasttodo/log"
)

// ErrNotFound is returned when an item does not exist in the user's collection
var ErrNotFound = db.ErrNotFound

// Store is the sqlite-backed item store
type Store struct {
	hub *hub
}

// New creates a store ready for use
func New() *Store {
	return &Store{hub: newHub()}
}

// Create inserts a new item and returns its store-assigned id
func (s *Store) Create(userID string, item db.Todo) (string, error) {
	id, err := db.CreateTodo(userID, item)
	if err != nil {
		return "", err
	}

	s.notifyChanged(userID)
	return id, nil
}

// Upsert rewrites the full item (never a partial patch)
func (s *Store) Upsert(userID, id string, item db.Todo) error {
	if err := db.UpsertTodo(userID, id, item); err != nil {
		return err
	}

	s.notifyChanged(userID)
	return nil
}

// Delete removes an item from the user's collection
func (s *Store) Delete(userID, id string) error {
	if err := db.DeleteTodo(userID, id); err != nil {
		return err
	}

	s.notifyChanged(userID)
	return nil
}

// List retrieves the user's full current collection
func (s *Store) List(userID string) ([]db.Todo, error) {
	return db.ListTodos(userID)
}

// Subscribe creates a live subscription delivering the full collection on
// every change. Returns the snapshot channel and an unsubscribe function.
// Unsubscribing twice is a no-op.
func (s *Store) Subscribe(userID string) (<-chan []db.Todo, func()) {
	return s.hub.subscribe(userID)
}

// Shutdown closes all live subscriptions
func (s *Store) Shutdown() {
	s.hub.shutdown()
}

// notifyChanged re-reads the user's collection and broadcasts it.
// The re-read happens after the write committed, so subscribers always see a
// snapshot at least as new as the write that triggered it.
func (s *Store) notifyChanged(userID string) {
	items, err := db.ListTodos(userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("failed to read collection for snapshot")
		return
	}

	s.hub.publish(userID, items)
}
