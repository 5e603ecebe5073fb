//go:build windows

// Package wtun binds a live Wintun session to the bridged queue's driver
// contract. Receive-side calls run on the queue's receive goroutine and park
// in WaitForMultipleObjects on the session's read-wait event plus a
// manual-reset shutdown event; send-side calls allocate inside the driver's
// transmit ring. Uses only the official wintun-go API.
package wtun

import (
	"errors"
	"fmt"
	"syscall"

	"tunio/application/network/queue"
	"tunio/infrastructure/queues/bridged_queue"

	"golang.org/x/sys/windows"
	"golang.zx2c4.com/wintun"
)

// Driver owns one Wintun session and the shutdown event that unblocks a
// parked Wait. Session lifetime is managed by the bridged queue: it calls
// SignalShutdown, joins its receive goroutine, then calls End.
type Driver struct {
	session  wintun.Session
	shutdown windows.Handle
}

var _ bridged_queue.Driver = (*Driver)(nil)

// NewDriver wraps an already-started session. The shutdown event is
// manual-reset: once signaled it stays signaled, so a Wait racing with
// SignalShutdown can never miss it.
func NewDriver(session wintun.Session) (*Driver, error) {
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("create shutdown event: %w", err)
	}
	return &Driver{session: session, shutdown: ev}, nil
}

// Receive pops the next packet from the receive ring without blocking. The
// returned view lives inside the ring; release returns it to the driver.
func (d *Driver) Receive() ([]byte, func(), error) {
	packet, err := d.session.ReceivePacket()
	if err != nil {
		if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
			return nil, nil, bridged_queue.ErrNoData
		}
		return nil, nil, err
	}
	return packet, func() { d.session.ReleaseReceivePacket(packet) }, nil
}

// Wait parks until the shutdown event or the session's read-wait event is
// signaled. The shutdown event is listed first so it wins a simultaneous
// wake.
func (d *Driver) Wait() (bridged_queue.WaitOutcome, error) {
	handles := []windows.Handle{d.shutdown, d.session.ReadWaitEvent()}
	status, err := windows.WaitForMultipleObjects(handles, false, windows.INFINITE)
	if err != nil {
		return 0, err
	}
	switch status {
	case windows.WAIT_OBJECT_0 + 0:
		return bridged_queue.WakeShutdown, nil
	case windows.WAIT_OBJECT_0 + 1:
		return bridged_queue.WakeData, nil
	default:
		return 0, fmt.Errorf("wait returned status %#x", status)
	}
}

// Send allocates a packet of exactly len(p) in the transmit ring, copies p in
// and submits it. A full ring surfaces as queue.ErrWouldBlock; oversized
// frames are rejected up front because the ring could never hold them.
func (d *Driver) Send(p []byte) error {
	if len(p) > int(wintun.PacketSizeMax) {
		return syscall.EMSGSIZE
	}
	buf, err := d.session.AllocateSendPacket(len(p))
	if err != nil {
		if errors.Is(err, windows.ERROR_BUFFER_OVERFLOW) {
			return queue.ErrWouldBlock
		}
		return err
	}
	copy(buf, p)
	d.session.SendPacket(buf)
	return nil
}

// SignalShutdown signals the shutdown event, waking a parked Wait. Safe to
// call more than once.
func (d *Driver) SignalShutdown() {
	_ = windows.SetEvent(d.shutdown)
}

// End tears the session down and releases the shutdown event. The caller
// guarantees no Receive, Wait or Send is still running.
func (d *Driver) End() {
	d.session.End()
	_ = windows.CloseHandle(d.shutdown)
}
