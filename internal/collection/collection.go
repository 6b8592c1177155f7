// Package collection holds the running list of extracted scenes.
//
// Every import (a dropped file, a batch of files, a paste) appends its records
// to a single [Collection] in arrival order. The list can be read, searched by
// record ID, and cleared as a whole. Subscribers receive an [Event] for every
// change, which is how the HTTP companion pushes updates to open browser tabs.
//
// All methods are safe for concurrent use.
package collection

import (
	"errors"
	"sync"

	"github.com/MrWong99/scenedeck/pkg/scene"
)

// ErrNotFound is returned by [Collection.Get] when no record has the given ID.
var ErrNotFound = errors.New("collection: scene not found")

// EventKind classifies a collection change.
type EventKind string

const (
	// EventAdded is emitted after records were appended.
	EventAdded EventKind = "added"

	// EventCleared is emitted after the collection was emptied.
	EventCleared EventKind = "cleared"
)

// Event describes one change to a [Collection].
type Event struct {
	Kind EventKind `json:"kind"`

	// Records holds the appended records for [EventAdded]; empty otherwise.
	Records []scene.Record `json:"records,omitempty"`

	// Size is the number of records held after the change.
	Size int `json:"size"`
}

// Option configures a [Collection].
type Option func(*Collection)

// WithDedupeThreshold enables near-duplicate suppression: a record whose
// description has a Jaro-Winkler similarity of at least threshold with a
// description already held is skipped. 0 (the default) disables it.
func WithDedupeThreshold(threshold float64) Option {
	return func(c *Collection) {
		c.dedupe = threshold
	}
}

// Collection is an ordered, in-memory list of scene records.
type Collection struct {
	mu      sync.RWMutex
	records []scene.Record
	byID    map[string]int
	dedupe  float64

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New returns an empty [Collection].
func New(opts ...Option) *Collection {
	c := &Collection{
		byID: make(map[string]int),
		subs: make(map[int]chan Event),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetDedupeThreshold changes the near-duplicate threshold for future appends.
func (c *Collection) SetDedupeThreshold(threshold float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dedupe = threshold
}

// Append adds records to the end of the collection, preserving their order,
// and returns the records that were actually added. Records with an ID that
// is already present, and near-duplicates when deduplication is enabled, are
// skipped.
func (c *Collection) Append(records ...scene.Record) []scene.Record {
	if len(records) == 0 {
		return nil
	}

	c.mu.Lock()
	added := make([]scene.Record, 0, len(records))
	for _, r := range records {
		if _, exists := c.byID[r.ID]; exists {
			continue
		}
		if c.dedupe > 0 && c.hasSimilarLocked(r.Description) {
			continue
		}
		c.byID[r.ID] = len(c.records)
		c.records = append(c.records, r)
		added = append(added, r)
	}
	if len(added) == 0 {
		c.mu.Unlock()
		return added
	}
	c.publishAndUnlock(Event{Kind: EventAdded, Records: added, Size: len(c.records)})
	return added
}

// List returns a copy of all records in arrival order.
func (c *Collection) List() []scene.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]scene.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Get returns the record with the given ID.
// Returns [ErrNotFound] when no such record exists.
func (c *Collection) Get(id string) (scene.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return scene.Record{}, ErrNotFound
	}
	return c.records[i], nil
}

// Len returns the number of records held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Clear discards every record and returns how many were removed.
func (c *Collection) Clear() int {
	c.mu.Lock()
	n := len(c.records)
	c.records = nil
	c.byID = make(map[string]int)
	c.publishAndUnlock(Event{Kind: EventCleared, Size: 0})
	return n
}

// Subscribe registers a listener for change events. Events are delivered on
// a channel with the given buffer size; when the buffer is full the event is
// dropped for that subscriber rather than blocking writers. The returned
// cancel function unregisters the listener and closes the channel.
func (c *Collection) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publishAndUnlock is called with c.mu held. It takes subMu before
// releasing c.mu, so subscribers see events in mutation order.
func (c *Collection) publishAndUnlock(ev Event) {
	c.subMu.Lock()
	c.mu.Unlock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
