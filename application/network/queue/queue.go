package queue

import (
	"context"
	"errors"
)

// ErrWouldBlock reports that a non-blocking read found no buffered frame or
// that a non-blocking write found no room in the transmit ring. Callers may
// retry; the context-aware calls never return it for reads.
var ErrWouldBlock = errors.New("operation would block")

// Queue is a packet queue over a virtual network interface. One frame per
// call: a Read drains exactly one received frame, a Write submits exactly one.
//
// Concurrency: a single logical reader and a single logical writer. A reader
// and a writer may run concurrently, but multiple concurrent Reads (or
// multiple concurrent Writes) on the same Queue are not supported.
type Queue interface {
	// Read pops one received frame into p without blocking.
	// A (0, nil) result means end of stream: the receive side is gone.
	Read(p []byte) (int, error)

	// Write submits one frame. It may block inside the platform driver but
	// never waits for ring space; ErrWouldBlock reports a full ring.
	Write(p []byte) (int, error)

	// ReadContext pops one received frame into p, parking the caller until a
	// frame arrives, ctx is done, or the queue fails.
	ReadContext(ctx context.Context, p []byte) (int, error)

	// WriteContext submits one frame, parking the caller until the frame is
	// handed to the driver, ctx is done, or the queue fails. Cancelling ctx
	// does not cancel a send already handed to the driver.
	WriteContext(ctx context.Context, p []byte) (int, error)

	// Flush is a no-op on platforms whose driver has no flush primitive.
	Flush() error

	Close() error
}
