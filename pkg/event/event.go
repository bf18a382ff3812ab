// Package event delivers engine notifications to subscribers without a
// direct dependency between publisher and subscriber.
//
// Dispatch is synchronous and ordered by registration. Each handler call is
// isolated: a returned error or a panic is logged and collected, and the
// remaining handlers still run.
package event

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
)

// Kind identifies an event category.
type Kind string

const (
	NodeCreate Kind = "nodeCreate"
	NodeUpdate Kind = "nodeUpdate"
	NodeDelete Kind = "nodeDelete"
	EdgeCreate Kind = "edgeCreate"
	EdgeUpdate Kind = "edgeUpdate"
	EdgeDelete Kind = "edgeDelete"
	NodeSelect Kind = "nodeSelect"
	CanvasZoom Kind = "canvasZoom"
	CanvasPan  Kind = "canvasPan"
)

// Kinds lists every event kind in a stable order.
var Kinds = []Kind{
	NodeCreate, NodeUpdate, NodeDelete,
	EdgeCreate, EdgeUpdate, EdgeDelete,
	NodeSelect, CanvasZoom, CanvasPan,
}

// Event is a single notification. Data holds a copy of the affected entity
// (graph.Node, graph.Edge, viewport.Viewport, or a Selection).
type Event struct {
	Kind Kind
	Data any
}

// Selection is the payload of NodeSelect events.
type Selection struct {
	NodeID string
	EdgeID string
}

// Handler receives events. A non-nil error is logged and reported back to
// the publisher; it does not stop delivery.
type Handler func(Event) error

// Subscription identifies a registered handler for Unsubscribe.
type Subscription struct {
	kind Kind
	id   uint64
}

type entry struct {
	id uint64
	fn Handler
}

// Bus is a synchronous publish/subscribe registry keyed by event kind.
// It is not safe for concurrent use; the engine drives it from one goroutine.
type Bus struct {
	handlers map[Kind][]entry
	nextID   uint64
	logger   *log.Logger
}

// NewBus creates an empty bus. A nil logger falls back to log.Default().
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{
		handlers: make(map[Kind][]entry),
		logger:   logger,
	}
}

// Subscribe registers fn for kind and returns a handle for Unsubscribe.
func (b *Bus) Subscribe(kind Kind, fn Handler) Subscription {
	b.nextID++
	b.handlers[kind] = append(b.handlers[kind], entry{id: b.nextID, fn: fn})
	return Subscription{kind: kind, id: b.nextID}
}

// SubscribeAll registers fn for every kind in [Kinds].
func (b *Bus) SubscribeAll(fn Handler) []Subscription {
	subs := make([]Subscription, 0, len(Kinds))
	for _, k := range Kinds {
		subs = append(subs, b.Subscribe(k, fn))
	}
	return subs
}

// Unsubscribe removes the handler. It is safe to call during dispatch and
// for handles that were already removed.
func (b *Bus) Unsubscribe(s Subscription) {
	hs := b.handlers[s.kind]
	b.handlers[s.kind] = slices.DeleteFunc(slices.Clone(hs), func(e entry) bool { return e.id == s.id })
}

// Len returns the number of handlers registered for kind.
func (b *Bus) Len(kind Kind) int { return len(b.handlers[kind]) }

// Publish delivers ev to every handler registered for ev.Kind at the time of
// the call, in registration order. Failures are returned, one per failing
// handler; a nil slice means every handler succeeded.
func (b *Bus) Publish(ev Event) []error {
	// Handlers added or removed while dispatching do not affect this round.
	hs := slices.Clone(b.handlers[ev.Kind])

	var errs []error
	for _, h := range hs {
		if err := b.call(h.fn, ev); err != nil {
			b.logger.Error("event handler failed", "kind", ev.Kind, "err", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func (b *Bus) call(fn Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s handler: %v", ev.Kind, r)
		}
	}()
	return fn(ev)
}
