// Package tun_adapters lets packet queues stand in for other TUN device
// contracts, so a queue can be plugged into stacks that expect them.
package tun_adapters

import (
	"context"
	"errors"
	"os"
	"sync"

	"tunio/application/logging"
	"tunio/application/network/queue"

	"golang.zx2c4.com/wireguard/tun"
)

// WgDevice exposes a packet queue as a wireguard tun.Device. Batch size is 1:
// the queue contract moves one frame per call, so each device call maps to
// exactly one queue call. The device's lifetime context unblocks queue calls
// on Close.
type WgDevice struct {
	q    queue.Queue
	log  logging.Logger
	name string
	mtu  int

	events    chan tun.Event
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

var _ tun.Device = (*WgDevice)(nil)

// NewWgDevice wraps q. The device owns the queue from here on and closes it
// when the device is closed. EventUp is emitted immediately: the queue only
// exists once the interface is configured and up.
func NewWgDevice(q queue.Queue, log logging.Logger, name string, mtu int) *WgDevice {
	ctx, cancel := context.WithCancel(context.Background())
	d := &WgDevice{
		q:      q,
		log:    log,
		name:   name,
		mtu:    mtu,
		events: make(chan tun.Event, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	d.events <- tun.EventUp
	return d
}

func (d *WgDevice) File() *os.File { return nil }

func (d *WgDevice) Name() (string, error) { return d.name, nil }

func (d *WgDevice) MTU() (int, error) { return d.mtu, nil }

func (d *WgDevice) Events() <-chan tun.Event { return d.events }

func (d *WgDevice) BatchSize() int { return 1 }

// Read fills bufs[0] with one frame. End of stream and Close both surface as
// os.ErrClosed, which the wireguard device loop treats as device-down.
func (d *WgDevice) Read(bufs [][]byte, sizes []int, offset int) (int, error) {
	n, err := d.q.ReadContext(d.ctx, bufs[0][offset:])
	if err != nil {
		if d.ctx.Err() != nil {
			return 0, os.ErrClosed
		}
		return 0, err
	}
	if n == 0 {
		return 0, os.ErrClosed
	}
	sizes[0] = n
	return 1, nil
}

// Write submits each buffer as one frame. A saturated transmit side drops
// the frame rather than stalling the caller's whole batch.
func (d *WgDevice) Write(bufs [][]byte, offset int) (int, error) {
	sent := 0
	for _, buf := range bufs {
		if len(buf) <= offset {
			continue
		}
		if _, err := d.q.WriteContext(d.ctx, buf[offset:]); err != nil {
			if errors.Is(err, queue.ErrWouldBlock) {
				d.log.Printf("%s: transmit ring full, dropped %d byte frame", d.name, len(buf)-offset)
				continue
			}
			if d.ctx.Err() != nil {
				return sent, os.ErrClosed
			}
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// Close unblocks in-flight reads and writes, closes the queue and ends the
// event stream. Idempotent.
func (d *WgDevice) Close() error {
	d.closeOnce.Do(func() {
		d.cancel()
		d.closeErr = d.q.Close()
		close(d.events)
	})
	return d.closeErr
}
