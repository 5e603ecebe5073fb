package bridged_queue

import (
	"context"
	"errors"
	"sync"

	"tunio/application/logging"
	"tunio/application/network/queue"
)

const (
	// frameBacklog bounds the frames buffered between the receive goroutine
	// and the reader. A full backlog blocks the receive goroutine, which
	// throttles the driver's receive rate to the reader's drain rate.
	frameBacklog = 16

	// maxTransientReceiveErrors bounds the retry of driver receive errors the
	// loop cannot classify, so a persistent unknown error cannot busy-loop.
	maxTransientReceiveErrors = 8
)

// Queue bridges a Driver to the packet queue contract. One receive goroutine
// is spawned at construction and joined on Close; at most one write is in
// flight at any time.
type Queue struct {
	drv Driver
	log logging.Logger

	frames   chan []byte
	stop     chan struct{}
	loopDone chan struct{}

	closeOnce sync.Once

	// writeMu serializes all send-side driver calls. writePending and the
	// single-slot writeResult carry the outcome of a dispatched write whose
	// caller may have gone away.
	writeMu      sync.Mutex
	writePending bool
	writeResult  chan error
}

var _ queue.Queue = (*Queue)(nil)

// NewQueue wraps an already-open driver session and starts the receive
// goroutine. The queue owns the session from here on: Close ends it.
func NewQueue(drv Driver, log logging.Logger) *Queue {
	q := &Queue{
		drv:         drv,
		log:         log,
		frames:      make(chan []byte, frameBacklog),
		stop:        make(chan struct{}),
		loopDone:    make(chan struct{}),
		writeResult: make(chan error, 1),
	}
	go q.receiveLoop()
	return q
}

// receiveLoop drains the driver into the frame channel until shutdown.
// It closes the frame channel on exit, which readers observe as end of
// stream.
func (q *Queue) receiveLoop() {
	defer close(q.loopDone)
	defer close(q.frames)

	transient := 0
	for {
		packet, release, err := q.drv.Receive()
		if err == nil {
			transient = 0
			frame := make([]byte, len(packet))
			copy(frame, packet)
			release()

			select {
			case q.frames <- frame: // blocks when the backlog is full
			case <-q.stop:
				return
			}
			continue
		}

		if errors.Is(err, ErrNoData) {
			outcome, waitErr := q.drv.Wait()
			if waitErr != nil {
				// Neither shutdown nor data-ready: an invariant the loop
				// relies on no longer holds, so it must not keep running.
				q.log.Printf("receive loop: unexpected wait outcome: %v", waitErr)
				return
			}
			switch outcome {
			case WakeShutdown:
				return
			case WakeData:
				continue
			default:
				q.log.Printf("receive loop: unknown wait outcome %d", outcome)
				return
			}
		}

		transient++
		if transient >= maxTransientReceiveErrors {
			q.log.Printf("receive loop: %d consecutive receive errors, giving up: %v", transient, err)
			return
		}
		q.log.Printf("receive loop: transient receive error: %v", err)
	}
}

// Read pops one buffered frame without blocking. A frame larger than p is
// truncated; the tail is discarded, not kept for a follow-up read. (0, nil)
// reports end of stream once the receive goroutine is gone.
func (q *Queue) Read(p []byte) (int, error) {
	select {
	case frame, ok := <-q.frames:
		if !ok {
			return 0, nil
		}
		return q.copyFrame(p, frame), nil
	default:
		return 0, queue.ErrWouldBlock
	}
}

// ReadContext pops one frame, parking the caller until one arrives, the
// stream ends, or ctx is done. The frame channel doubles as the wakeup
// mechanism: the receive goroutine's enqueue wakes exactly one parked reader.
func (q *Queue) ReadContext(ctx context.Context, p []byte) (int, error) {
	select {
	case frame, ok := <-q.frames:
		if !ok {
			return 0, nil
		}
		return q.copyFrame(p, frame), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (q *Queue) copyFrame(p, frame []byte) int {
	n := copy(p, frame)
	if n < len(frame) {
		q.log.Printf("rx frame truncated: frame is %d bytes, buffer is %d", len(frame), len(p))
	}
	return n
}

// Write submits one frame directly through the driver. queue.ErrWouldBlock
// reports a full transmit ring. If an abandoned write is still in flight its
// outcome is resolved first, keeping driver sends strictly serialized.
func (q *Queue) Write(p []byte) (int, error) {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	if q.writePending {
		err := <-q.writeResult
		q.writePending = false
		if err != nil {
			return 0, err
		}
	}

	if err := q.drv.Send(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteContext submits one frame via a dispatched send. Writes are strictly
// serialized per queue: a stored outcome of a previous, abandoned write is
// drained first, and a stored failure resolves this attempt immediately. On
// ctx cancellation the dispatched send keeps running fire-and-forget; its
// outcome is observed by the next write.
func (q *Queue) WriteContext(ctx context.Context, p []byte) (int, error) {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	if q.writePending {
		select {
		case err := <-q.writeResult:
			q.writePending = false
			if err != nil {
				return 0, err
			}
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	frame := make([]byte, len(p))
	copy(frame, p)
	q.writePending = true
	go func() {
		q.writeResult <- q.drv.Send(frame)
	}()

	select {
	case err := <-q.writeResult:
		q.writePending = false
		if err != nil {
			return 0, err
		}
		return len(p), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Flush is a no-op success: the driver has no flush primitive.
func (q *Queue) Flush() error { return nil }

// Close signals shutdown, joins the receive goroutine, waits out any
// in-flight write, and only then ends the driver session. The session is
// therefore never torn down while either side might still be inside a
// driver call. Idempotent.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		close(q.stop)
		q.drv.SignalShutdown()
		<-q.loopDone

		q.writeMu.Lock()
		if q.writePending {
			<-q.writeResult
			q.writePending = false
		}
		q.drv.End()
		q.writeMu.Unlock()
	})
	return nil
}
