//go:build linux

package fd_queue

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"tunio/application/network/queue"

	"golang.org/x/sys/unix"
)

// newPair builds a Queue over one end of a datagram socketpair, which
// preserves frame boundaries like a TUN fd does. The other end plays the
// kernel side.
func newPair(t *testing.T) (*Queue, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	local := os.NewFile(uintptr(fds[0]), "local")
	q, err := NewQueue(local, "tun-test")
	if err != nil {
		_ = local.Close()
		_ = unix.Close(fds[1])
		t.Fatalf("NewQueue: %v", err)
	}
	t.Cleanup(func() {
		_ = q.Close()
		_ = unix.Close(fds[1])
	})
	return q, fds[1]
}

func TestName(t *testing.T) {
	q, _ := newPair(t)
	if q.Name() != "tun-test" {
		t.Fatalf("Name() = %q, want %q", q.Name(), "tun-test")
	}
}

func TestRead_WouldBlockWhenEmpty(t *testing.T) {
	q, _ := newPair(t)
	if _, err := q.Read(make([]byte, 64)); !errors.Is(err, queue.ErrWouldBlock) {
		t.Fatalf("Read on empty queue = %v, want ErrWouldBlock", err)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	q, peer := newPair(t)
	payload := []byte{0x45, 0x00, 0x00, 0x1c, 0xde, 0xad}

	n, err := q.Write(payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("Write n = %d, want %d", n, len(payload))
	}

	buf := make([]byte, 64)
	rn, err := unix.Read(peer, buf)
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if !bytes.Equal(buf[:rn], payload) {
		t.Fatalf("peer got %v, want %v", buf[:rn], payload)
	}
}

func TestReadContext_DeliversPendingFrame(t *testing.T) {
	q, peer := newPair(t)
	payload := []byte("frame-1")
	if _, err := unix.Write(peer, payload); err != nil {
		t.Fatalf("peer write: %v", err)
	}

	buf := make([]byte, 64)
	n, err := q.ReadContext(context.Background(), buf)
	if err != nil {
		t.Fatalf("ReadContext: %v", err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Fatalf("got %q, want %q", buf[:n], payload)
	}
}

func TestReadContext_WaitsForReadiness(t *testing.T) {
	q, peer := newPair(t)
	payload := []byte("late-frame")

	go func() {
		time.Sleep(30 * time.Millisecond)
		_, _ = unix.Write(peer, payload)
	}()

	buf := make([]byte, 64)
	n, err := q.ReadContext(context.Background(), buf)
	if err != nil {
		t.Fatalf("ReadContext: %v", err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Fatalf("got %q, want %q", buf[:n], payload)
	}
}

func TestReadContext_ContextCancel(t *testing.T) {
	q, _ := newPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := q.ReadContext(ctx, make([]byte, 64))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadContext = %v, want context.Canceled", err)
	}
}

func TestReadContext_DeadlineExceeded(t *testing.T) {
	q, _ := newPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := q.ReadContext(ctx, make([]byte, 64))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ReadContext = %v, want context.DeadlineExceeded", err)
	}
}

func TestClose_WakesPendingRead(t *testing.T) {
	q, _ := newPair(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.ReadContext(context.Background(), make([]byte, 64))
		errCh <- err
	}()

	time.Sleep(30 * time.Millisecond)
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Fatalf("pending read = %v, want io.ErrClosedPipe", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending read was not woken by Close")
	}
}

func TestClose_ReturnsWhileReadParked(t *testing.T) {
	q, _ := newPair(t)

	readErr := make(chan error, 1)
	go func() {
		_, err := q.ReadContext(context.Background(), make([]byte, 64))
		readErr <- err
	}()
	time.Sleep(30 * time.Millisecond) // let the reader park in the poller

	closeErr := make(chan error, 1)
	go func() { closeErr <- q.Close() }()

	// Close must not block behind the parked reader, and the reader must
	// observe the close instead of sleeping in the kernel forever.
	select {
	case err := <-closeErr:
		if err != nil {
			t.Fatalf("Close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close hung while a read was parked")
	}
	select {
	case err := <-readErr:
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Fatalf("parked read = %v, want io.ErrClosedPipe", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("parked read was never woken")
	}
}

func TestRead_AfterClose(t *testing.T) {
	q, _ := newPair(t)
	_ = q.Close()
	if _, err := q.Read(make([]byte, 64)); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("Read after Close = %v, want io.ErrClosedPipe", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	q, _ := newPair(t)
	if err := q.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestRead_EOFOnPeerClose(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	local := os.NewFile(uintptr(fds[0]), "local")
	q, err := NewQueue(local, "tun-test")
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer func() { _ = q.Close() }()

	_ = unix.Close(fds[1])

	if _, err := q.ReadContext(context.Background(), make([]byte, 64)); !errors.Is(err, io.EOF) {
		t.Fatalf("ReadContext = %v, want io.EOF", err)
	}
}

func TestWriteContext_RoundTrip(t *testing.T) {
	q, peer := newPair(t)
	payload := []byte("ctx-frame")

	n, err := q.WriteContext(context.Background(), payload)
	if err != nil {
		t.Fatalf("WriteContext: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("n = %d, want %d", n, len(payload))
	}

	buf := make([]byte, 64)
	rn, _ := unix.Read(peer, buf)
	if !bytes.Equal(buf[:rn], payload) {
		t.Fatalf("peer got %q, want %q", buf[:rn], payload)
	}
}
