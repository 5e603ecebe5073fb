//go:build linux

// Package fd_queue implements the packet queue over a non-blocking TUN/TAP
// file descriptor. Readiness comes from two epoll(7) instances, one per
// direction, so EPOLLOUT (almost always ready) cannot cause hot loops while
// a reader waits for EPOLLIN. Each epoll set additionally watches an eventfd
// used to wake waiters on context cancellation and on Close.
package fd_queue

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"tunio/application/network/queue"

	"golang.org/x/sys/unix"
)

// Queue owns a duplicated non-blocking device fd, two epoll instances and
// two wake eventfds:
// - epIn  watches fd for EPOLLIN|ERR|HUP and wakeIn for EPOLLIN
// - epOut watches fd for EPOLLOUT|ERR|HUP and wakeOut for EPOLLIN
//
// Concurrency: one reader and one writer may run concurrently; multiple
// concurrent Reads (or Writes) on the same instance are NOT supported.
type Queue struct {
	fd      int
	epIn    int
	epOut   int
	wakeIn  int
	wakeOut int
	name    string
	closed  atomic.Bool

	// mu fences Close against in-flight operations: every syscall path holds
	// the read side, Close takes the write side before releasing any fd. The
	// fds therefore stay valid for as long as anyone may be parked on them.
	mu sync.RWMutex
}

var _ queue.Queue = (*Queue)(nil)

// NewQueue takes ownership of f on success (it closes f before returning).
// On error, ownership remains with the caller. name is the kernel-assigned
// interface name surfaced by the TUNSETIFF handshake.
func NewQueue(f *os.File, name string) (*Queue, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}

	dup, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	fds := []int{dup}
	closeAll := func() {
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
	}

	if err = unix.SetNonblock(dup, true); err != nil {
		closeAll()
		return nil, err
	}
	if _, err = unix.FcntlInt(uintptr(dup), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		closeAll()
		return nil, err
	}

	epIn, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		closeAll()
		return nil, err
	}
	fds = append(fds, epIn)
	epOut, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		closeAll()
		return nil, err
	}
	fds = append(fds, epOut)

	wakeIn, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		closeAll()
		return nil, err
	}
	fds = append(fds, wakeIn)
	wakeOut, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		closeAll()
		return nil, err
	}
	fds = append(fds, wakeOut)

	register := func(epfd, fd int, events uint32) error {
		ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
		return unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev)
	}
	if err = register(epIn, dup, unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP); err != nil {
		closeAll()
		return nil, err
	}
	if err = register(epIn, wakeIn, unix.EPOLLIN); err != nil {
		closeAll()
		return nil, err
	}
	if err = register(epOut, dup, unix.EPOLLOUT|unix.EPOLLERR|unix.EPOLLHUP); err != nil {
		closeAll()
		return nil, err
	}
	if err = register(epOut, wakeOut, unix.EPOLLIN); err != nil {
		closeAll()
		return nil, err
	}

	_ = f.Close()

	return &Queue{fd: dup, epIn: epIn, epOut: epOut, wakeIn: wakeIn, wakeOut: wakeOut, name: name}, nil
}

// Name reports the kernel-assigned interface name.
func (q *Queue) Name() string { return q.name }

// Read pops one frame without blocking. queue.ErrWouldBlock when the device
// has nothing buffered.
func (q *Queue) Read(p []byte) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	for {
		n, err := unix.Read(q.fd, p)
		if err == nil {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
			return 0, queue.ErrWouldBlock
		case errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ENODEV):
			// Device went away (interface down/removed), normalize to EOF.
			return 0, io.EOF
		case errors.Is(err, unix.EBADF):
			return 0, io.ErrClosedPipe
		default:
			return 0, err
		}
	}
}

// Write submits one frame without waiting for space.
func (q *Queue) Write(p []byte) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Write(q.fd, p)
		if err == nil {
			return n, nil
		}
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
			return 0, queue.ErrWouldBlock
		case errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ENODEV):
			return 0, io.EOF
		case errors.Is(err, unix.EBADF):
			return 0, io.ErrClosedPipe
		default:
			return 0, err
		}
	}
}

// ReadContext pops one frame, waiting for read readiness. Readiness may be
// stale (another wakeup consumed it); the attempt is simply retried.
func (q *Queue) ReadContext(ctx context.Context, p []byte) (int, error) {
	for {
		n, err := q.Read(p)
		if errors.Is(err, queue.ErrWouldBlock) {
			if waitErr := q.wait(ctx, q.epIn, q.wakeIn, unix.EPOLLIN); waitErr != nil {
				return 0, waitErr
			}
			continue
		}
		return n, err
	}
}

// WriteContext submits one frame, waiting for write readiness.
func (q *Queue) WriteContext(ctx context.Context, p []byte) (int, error) {
	for {
		n, err := q.Write(p)
		if errors.Is(err, queue.ErrWouldBlock) {
			if waitErr := q.wait(ctx, q.epOut, q.wakeOut, unix.EPOLLOUT); waitErr != nil {
				return 0, waitErr
			}
			continue
		}
		return n, err
	}
}

// Flush is a no-op: the device has no buffered writer.
func (q *Queue) Flush() error { return nil }

// Close wakes both waiters, waits for every in-flight operation to leave its
// syscall, then releases the epoll instances, the wake eventfds and the
// device fd. The eventfd stays readable until drained, so a waiter that has
// seen closed=false but not yet entered epoll_wait still gets the wakeup.
// Safe to call multiple times.
func (q *Queue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	notify(q.wakeIn)
	notify(q.wakeOut)

	q.mu.Lock()
	defer q.mu.Unlock()

	var firstErr error
	for _, fd := range []int{q.epIn, q.epOut, q.wakeIn, q.wakeOut, q.fd} {
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// wait blocks in epoll_wait until the device reports ready (nil), the queue
// is closed (io.ErrClosedPipe), the device errors out (io.EOF), or ctx is
// done (ctx.Err()). A wake with none of those conditions is treated as
// spurious and re-polled.
func (q *Queue) wait(ctx context.Context, epfd, wakeFd int, ready uint32) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed.Load() {
		return io.ErrClosedPipe
	}

	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		if done := ctx.Done(); done != nil {
			stop := make(chan struct{})
			go func() {
				select {
				case <-done:
					notify(wakeFd)
				case <-stop:
				}
			}()
			defer close(stop)
		}
	}

	var evs [2]unix.EpollEvent
	for {
		n, err := unix.EpollWait(epfd, evs[:], -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			if errors.Is(err, unix.EBADF) || q.closed.Load() {
				return io.ErrClosedPipe
			}
			return err
		}
		for i := 0; i < n; i++ {
			ev := evs[i]
			if int(ev.Fd) == wakeFd {
				drainWake(wakeFd)
				if q.closed.Load() {
					return io.ErrClosedPipe
				}
				if ctx != nil {
					if cerr := ctx.Err(); cerr != nil {
						return cerr
					}
				}
				continue
			}
			if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				return io.EOF
			}
			if ev.Events&ready != 0 {
				return nil
			}
		}
	}
}

func notify(wakeFd int) {
	one := [8]byte{1}
	_, _ = unix.Write(wakeFd, one[:])
}

func drainWake(wakeFd int) {
	var buf [8]byte
	_, _ = unix.Read(wakeFd, buf[:])
}
