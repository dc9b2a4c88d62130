package todo

import (
	"sync"
)

// CodeStore persists the request-code counter across restarts.
// Keyed per installation, not per user.
type CodeStore interface {
	LoadNextRequestCode() (int64, error)
	SaveNextRequestCode(code int64) error
}

// Allocator hands out monotonically increasing alarm request codes.
// Codes are never recycled; the incremented counter is persisted before a
// code is handed to the caller, so a crash between allocation and use costs
// at most one skipped code, never a double-issued one.
type Allocator struct {
	mu     sync.Mutex
	state  CodeStore
	next   int64
	loaded bool
}

// NewAllocator creates an allocator over the given persistence
func NewAllocator(state CodeStore) *Allocator {
	return &Allocator{state: state}
}

// Next returns the next request code and persists the advanced counter.
// If persisting fails the code is not considered issued and the same value
// may be returned by a later successful call.
func (a *Allocator) Next() (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		v, err := a.state.LoadNextRequestCode()
		if err != nil {
			return 0, err
		}
		a.next = v
		a.loaded = true
	}

	code := a.next
	if err := a.state.SaveNextRequestCode(code + 1); err != nil {
		return 0, err
	}
	a.next = code + 1

	return code, nil
}
