// Package bridged_queue adapts a driver that only offers blocking,
// non-pollable session calls (wintun-style) to the packet queue contract.
// A dedicated receive goroutine loops inside the driver and forwards frames
// through a bounded channel; writes are dispatched one at a time and their
// outcome travels back through a single-slot channel. The protocol itself is
// platform-free and runs against any Driver, which keeps it testable.
package bridged_queue

import "errors"

// ErrNoData is returned by Driver.Receive when the receive ring is empty.
var ErrNoData = errors.New("no packets in receive ring")

// WaitOutcome tells the receive loop which of the two waitable objects fired.
type WaitOutcome int

const (
	WakeShutdown WaitOutcome = iota
	WakeData
)

// Driver is the session surface the bridge needs. Receive/Wait are called
// only from the receive goroutine; Send only under the queue's write lock.
// The driver must tolerate a concurrent receive-side and send-side call, but
// never two send-side calls at once — the queue enforces that.
type Driver interface {
	// Receive returns a view of the next received packet without blocking.
	// The view is only valid until release is called; callers copy first.
	// ErrNoData reports an empty ring.
	Receive() (packet []byte, release func(), err error)

	// Wait blocks until the shutdown event or the driver's data-ready event
	// is signaled. Any other wake is an error.
	Wait() (WaitOutcome, error)

	// Send allocates a same-size packet inside the driver, copies p into it
	// and submits it. queue.ErrWouldBlock reports a full transmit ring; any
	// other error is fatal to the write.
	Send(p []byte) error

	// SignalShutdown signals the shutdown event. One-way: once signaled the
	// receive loop observes it exactly once and exits.
	SignalShutdown()

	// End tears the session down. Must only be called after the receive
	// goroutine has exited and no send is in flight.
	End()
}
