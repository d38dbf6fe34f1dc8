// Package observer is the passive debug view over the data layer: it keeps the most recent
// entries it has seen and renders one human-readable line per entry.
package observer

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

// Event groups used to colour the rendered log.
const (
	GroupOrder    = "order"
	GroupCart     = "cart"
	GroupProduct  = "product"
	GroupPage     = "page"
	GroupIdentity = "identity"
	GroupOther    = "other"
)

// Group classifies an event name by its prefix.
func Group(event string) string {
	switch {
	case strings.HasPrefix(event, "order"):
		return GroupOrder
	case strings.HasPrefix(event, "cart"):
		return GroupCart
	case strings.HasPrefix(event, "product"):
		return GroupProduct
	case strings.HasPrefix(event, "page"):
		return GroupPage
	case strings.HasPrefix(event, "user"), strings.HasPrefix(event, "login"), strings.HasPrefix(event, "account"):
		return GroupIdentity
	default:
		return GroupOther
	}
}

// Line is a rendered entry.
type Line struct {
	EntryID string `json:"entryId"`
	Group   string `json:"group"`
	Text    string `json:"text"`
}

// Observer never affects emission: its subscription only records the entry and signals
// the renderer, which runs on its own goroutine.
type Observer struct {
	mu          sync.Mutex
	renderMu    sync.Mutex
	entries     []domain.DataLayerEntry
	lines       []Line
	rendered    int
	generation  int
	signal      chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	unsubscribe func()
	printer     *message.Printer
	retention   int
	closeOnce   sync.Once
}

// Option configures an Observer.
type Option func(*Observer)

// WithRetention caps the recorded entries and their lines at max.
func WithRetention(max int) Option {
	return func(o *Observer) {
		if max > 0 {
			o.retention = max
		}
	}
}

// New subscribes to log and starts the renderer. lang selects the number formatting of cart
// totals; an unparsable tag falls back to English.
func New(log *datalayer.Log, lang string, opts ...Option) *Observer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	o := &Observer{
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		printer:   message.NewPrinter(tag),
		retention: datalayer.DefaultRetention,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.unsubscribe = log.Subscribe(o.record)
	go o.render()
	return o
}

func (o *Observer) record(entry domain.DataLayerEntry) {
	o.mu.Lock()
	o.entries = append(o.entries, entry)
	if over := len(o.entries) - o.retention; over > 0 {
		o.trimLocked(over)
	}
	o.mu.Unlock()

	select {
	case o.signal <- struct{}{}:
	default:
	}
}

// trimLocked drops the n oldest entries with their lines. An in-flight render
// is discarded and picked up again on the next signal.
func (o *Observer) trimLocked(n int) {
	o.entries = append([]domain.DataLayerEntry(nil), o.entries[n:]...)
	if n >= o.rendered {
		o.lines = nil
		o.rendered = 0
	} else {
		o.lines = append([]Line(nil), o.lines[n:]...)
		o.rendered -= n
	}
	o.generation++
}

func (o *Observer) render() {
	defer close(o.stopped)
	for {
		select {
		case <-o.signal:
			o.renderPending()
		case <-o.done:
			o.renderPending()
			return
		}
	}
}

func (o *Observer) renderPending() {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	o.mu.Lock()
	gen := o.generation
	pending := make([]domain.DataLayerEntry, len(o.entries)-o.rendered)
	copy(pending, o.entries[o.rendered:])
	o.mu.Unlock()

	lines := make([]Line, len(pending))
	for i, e := range pending {
		lines[i] = o.format(e)
	}

	o.mu.Lock()
	// A Clear while formatting makes these lines stale.
	if o.generation == gen {
		o.lines = append(o.lines, lines...)
		o.rendered += len(pending)
	}
	o.mu.Unlock()
}

func (o *Observer) format(e domain.DataLayerEntry) Line {
	group := Group(e.Event)
	text := e.PushedAt.Local().Format("15:04:05") + " " + e.Event + " [" + group + "]"
	if cart, ok := e.EventInfo["cart"].(domain.CartSnapshot); ok {
		text += o.printer.Sprintf(" total=%s %d", cart.Currency, cart.Total)
	}
	return Line{EntryID: e.ID, Group: group, Text: text}
}

// Flush renders everything recorded so far before returning.
func (o *Observer) Flush() {
	o.renderPending()
}

// Entries returns the recorded entries, oldest first.
func (o *Observer) Entries() []domain.DataLayerEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.DataLayerEntry, len(o.entries))
	copy(out, o.entries)
	return out
}

// Lines returns the rendered lines, newest first.
func (o *Observer) Lines() []Line {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Line, len(o.lines))
	for i, l := range o.lines {
		out[len(o.lines)-1-i] = l
	}
	return out
}

func (o *Observer) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// Clear empties the observer's own view. The data layer is untouched.
func (o *Observer) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = nil
	o.lines = nil
	o.rendered = 0
	o.generation++
}

// Close unsubscribes and stops the renderer after a final pass.
func (o *Observer) Close() {
	o.closeOnce.Do(func() {
		o.unsubscribe()
		close(o.done)
		<-o.stopped
	})
}
