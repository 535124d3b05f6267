package resource

import (
	"sync"
)

// Table maps handles to values of type T with borrow tracking.
// Safe for concurrent use.
type Table[T any] struct {
	entries   []entry[T]
	freeList  []Handle
	observers map[uint64]Observer
	nextObs   uint64
	live      int
	limit     int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry[T any] struct {
	value       T
	borrowCount uint32
	valid       bool
}

// NewTable creates an empty table.
func NewTable[T any](opts ...Option) *Table[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[T]{
		entries:   make([]entry[T], 0, 16),
		freeList:  make([]Handle, 0, 8),
		observers: make(map[uint64]Observer),
		limit:     o.limit,
	}
}

// Insert stores a value and returns its handle.
func (t *Table[T]) Insert(value T) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	if t.limit > 0 && t.live >= t.limit {
		t.mu.Unlock()
		return 0, ErrLimitReached
	}

	e := entry[T]{value: value, valid: true}
	var handle Handle
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.live++
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: handle, Value: value})
	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(handle Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(handle)
	if e == nil {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Borrow retrieves a value and pins it until ReturnBorrow.
func (t *Table[T]) Borrow(handle Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(handle)
	if e == nil {
		var zero T
		return zero, false
	}
	e.borrowCount++
	return e.value, true
}

// ReturnBorrow releases a pin taken by Borrow.
func (t *Table[T]) ReturnBorrow(handle Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(handle)
	if e == nil || e.borrowCount == 0 {
		return false
	}
	e.borrowCount--
	return true
}

// Remove drops a resource and returns its value.
// Values implementing Dropper have Drop called after removal.
func (t *Table[T]) Remove(handle Handle) (T, error) {
	var zero T

	t.mu.Lock()
	e := t.lookup(handle)
	if e == nil {
		t.mu.Unlock()
		return zero, ErrInvalidHandle
	}
	if e.borrowCount > 0 {
		t.mu.Unlock()
		return zero, ErrOutstandingBorrow
	}

	value := e.value
	*e = entry[T]{}
	t.freeList = append(t.freeList, handle)
	t.live--
	t.mu.Unlock()

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Handle: handle, Value: value})
	return value, nil
}

// Len returns the number of live resources.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Each calls fn for every live resource until fn returns false.
// fn must not call back into the table.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.entries {
		if !t.entries[i].valid {
			continue
		}
		if !fn(Handle(i+1), t.entries[i].value) {
			return
		}
	}
}

// Clear drops every resource that is not borrowed. Borrowed entries stay
// live so that their pending ReturnBorrow cannot land on a reused handle.
func (t *Table[T]) Clear() {
	t.mu.Lock()
	dropped := t.drain(true)
	t.mu.Unlock()

	t.release(dropped)
}

// Close drops all resources and rejects further inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	dropped := t.drain(false)
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	t.release(dropped)
	return nil
}

// Subscribe adds an observer and returns a function that removes it.
func (t *Table[T]) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

type dropped[T any] struct {
	value  T
	handle Handle
}

// drain invalidates live entries, keeping borrowed ones when skipBorrowed
// is set. Caller holds t.mu.
func (t *Table[T]) drain(skipBorrowed bool) []dropped[T] {
	var out []dropped[T]
	for i := range t.entries {
		e := &t.entries[i]
		if !e.valid || (skipBorrowed && e.borrowCount > 0) {
			continue
		}
		h := Handle(i + 1)
		out = append(out, dropped[T]{value: e.value, handle: h})
		*e = entry[T]{}
		t.freeList = append(t.freeList, h)
		t.live--
	}
	return out
}

func (t *Table[T]) release(items []dropped[T]) {
	for _, d := range items {
		if dr, ok := any(d.value).(Dropper); ok {
			dr.Drop()
		}
		t.notify(Event{Type: EventDropped, Handle: d.handle, Value: d.value})
	}
}

// lookup returns the live entry for handle or nil. Caller holds t.mu.
func (t *Table[T]) lookup(handle Handle) *entry[T] {
	if handle == 0 {
		return nil
	}
	idx := int(handle) - 1
	if idx >= len(t.entries) {
		return nil
	}
	e := &t.entries[idx]
	if !e.valid {
		return nil
	}
	return e
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
