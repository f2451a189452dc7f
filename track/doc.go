// Package track provides allocation tracking and lifecycle
// observability for the handle types.
//
// A track.Allocator wraps any handles.Allocator and records every
// outstanding allocation: its token, label, size, and sequence number.
// Observers subscribe to alloc/free events; Live and Report enumerate
// whatever is still outstanding, which is how the documented
// cycle-leak limitation of reference counting becomes something a test
// or an operator can actually see.
//
//	tracked := track.New(heap.NewCounting(), track.WithLabel("cache"))
//	tracked.Subscribe(track.NewLogObserver(logger))
//
//	n := rc.NewIn(tracked, node{}, dropNode)
//	...
//	for _, leak := range tracked.Report() {
//	    // each leak identifies a block that never reached count zero
//	}
//
// The package logger is a no-op by default; install a real one with
// SetLogger before any tracking begins.
package track
