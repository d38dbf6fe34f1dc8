// Package datalayer holds the observable event log (channel 1).
package datalayer

import (
	"sync"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

// DefaultRetention is the number of entries kept when no retention is configured.
const DefaultRetention = 1000

// Subscriber is notified synchronously for every pushed entry, in push order.
type Subscriber func(entry domain.DataLayerEntry)

// Option configures a Log.
type Option func(*Log)

// WithRetention caps the log at max entries; older entries are released first.
func WithRetention(max int) Option {
	return func(l *Log) {
		if max > 0 {
			l.retention = max
		}
	}
}

// Log is safe for concurrent use. Entries are only released by the retention cap
// or by Forget when their session ends.
type Log struct {
	mu          sync.Mutex
	entries     []domain.DataLayerEntry
	released    int
	retention   int
	subscribers map[int]Subscriber
	order       []int
	nextID      int
}

func New(opts ...Option) *Log {
	l := &Log{
		subscribers: make(map[int]Subscriber),
		retention:   DefaultRetention,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Push appends entry and notifies subscribers before returning.
func (l *Log) Push(entry domain.DataLayerEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.retention; over > 0 {
		l.release(over)
	}
	for _, id := range l.order {
		l.subscribers[id](entry)
	}
}

// release drops the n oldest entries; must be called with the lock held.
func (l *Log) release(n int) {
	kept := make([]domain.DataLayerEntry, len(l.entries)-n)
	copy(kept, l.entries[n:])
	l.entries = kept
	l.released += n
}

// Forget releases every entry pushed for sessionID and returns how many were removed.
func (l *Log) Forget(sessionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if e.SessionID == sessionID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = domain.DataLayerEntry{}
	}
	l.entries = kept
	l.released += removed
	return removed
}

// Subscribe registers fn and returns a function that removes it.
// fn runs under the log's lock and must not call back into the Log.
func (l *Log) Subscribe(fn Subscriber) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.subscribers[id] = fn
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subscribers, id)
			for i, v := range l.order {
				if v == id {
					l.order = append(l.order[:i], l.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Entries returns a copy of the retained log in push order.
func (l *Log) Entries() []domain.DataLayerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.DataLayerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the retained entries after the first n ever pushed.
func (l *Log) Since(n int) []domain.DataLayerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	n -= l.released
	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return nil
	}
	out := make([]domain.DataLayerEntry, len(l.entries)-n)
	copy(out, l.entries[n:])
	return out
}

// Len is the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Total is the number of entries ever pushed.
func (l *Log) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries) + l.released
}
