package track

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/halcyonlab/handles"
	"github.com/halcyonlab/handles/errors"
)

// EventType distinguishes allocation lifecycle events.
type EventType uint8

const (
	EventAlloc EventType = iota
	EventFree
)

// Event describes one allocation lifecycle transition.
type Event struct {
	Label string
	Token handles.Token
	Size  uintptr
	Seq   uint64
	Type  EventType
}

// Observer receives notifications about allocation lifecycle events.
type Observer interface {
	OnAllocEvent(Event)
}

// Allocation is one outstanding allocation as recorded by the tracker.
type Allocation struct {
	Label string
	Token handles.Token
	Size  uintptr
	Align uintptr
	Seq   uint64
}

// Allocator wraps another allocator and records every outstanding
// allocation. It also hardens the boundary: freeing a token that is
// not live is reported as a double free instead of silently corrupting
// the inner allocator's accounting. Safe for concurrent use.
type Allocator struct {
	inner     handles.Allocator
	label     string
	mu        sync.RWMutex
	live      map[handles.Token]Allocation
	seq       uint64
	obsMu     sync.RWMutex
	observers []Observer
}

// Option configures a tracking allocator.
type Option func(*Allocator)

// WithLabel sets the label prefix recorded on every allocation, so a
// leak report can say which subsystem the blocks belong to.
func WithLabel(label string) Option {
	return func(a *Allocator) {
		a.label = label
	}
}

// New creates a tracking allocator wrapping inner.
func New(inner handles.Allocator, opts ...Option) *Allocator {
	a := &Allocator{
		inner: inner,
		label: "alloc",
		live:  make(map[handles.Token]Allocation, 64),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Alloc forwards to the inner allocator and records the allocation.
func (a *Allocator) Alloc(size, align uintptr) (handles.Token, error) {
	token, err := a.inner.Alloc(size, align)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	a.seq++
	rec := Allocation{
		Label: fmt.Sprintf("%s#%d", a.label, a.seq),
		Token: token,
		Size:  size,
		Align: align,
		Seq:   a.seq,
	}
	a.live[token] = rec
	a.mu.Unlock()

	a.notify(Event{Type: EventAlloc, Token: token, Label: rec.Label, Size: size, Seq: rec.Seq})
	return token, nil
}

// Free forwards to the inner allocator and drops the record. Freeing a
// token that is not live panics with a double-free diagnostic.
func (a *Allocator) Free(token handles.Token, size, align uintptr) {
	a.mu.Lock()
	rec, ok := a.live[token]
	if !ok {
		a.mu.Unlock()
		panic(errors.DoubleFree("track.Free", fmt.Sprintf("token %d", token)))
	}
	delete(a.live, token)
	a.mu.Unlock()

	a.inner.Free(token, size, align)
	a.notify(Event{Type: EventFree, Token: token, Label: rec.Label, Size: size, Seq: rec.Seq})
}

// Len returns the number of outstanding allocations.
func (a *Allocator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.live)
}

// Live returns the outstanding allocations in allocation order.
func (a *Allocator) Live() []Allocation {
	a.mu.RLock()
	out := make([]Allocation, 0, len(a.live))
	for _, rec := range a.live {
		out = append(out, rec)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Report logs every outstanding allocation through the package logger
// and returns them. An empty result means nothing leaked.
func (a *Allocator) Report() []Allocation {
	leaks := a.Live()
	for _, leak := range leaks {
		Logger().Warn("leaked allocation",
			zap.String("label", leak.Label),
			zap.Uint64("token", uint64(leak.Token)),
			zap.Uint64("size", uint64(leak.Size)))
	}
	return leaks
}

// Subscribe adds an observer for lifecycle events.
func (a *Allocator) Subscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, o)
}

// Unsubscribe removes an observer.
func (a *Allocator) Unsubscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	for i, obs := range a.observers {
		if obs == o {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			return
		}
	}
}

func (a *Allocator) notify(e Event) {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, o := range a.observers {
		o.OnAllocEvent(e)
	}
}

// LogObserver writes lifecycle events through a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an observer logging through l, or through the
// package logger when l is nil.
func NewLogObserver(l *zap.Logger) *LogObserver {
	if l == nil {
		l = Logger()
	}
	return &LogObserver{log: l}
}

// OnAllocEvent implements Observer.
func (o *LogObserver) OnAllocEvent(e Event) {
	msg := "alloc"
	if e.Type == EventFree {
		msg = "free"
	}
	o.log.Debug(msg,
		zap.String("label", e.Label),
		zap.Uint64("token", uint64(e.Token)),
		zap.Uint64("size", uint64(e.Size)))
}
