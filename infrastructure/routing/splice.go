// Package routing moves frames between packet queues.
package routing

import (
	"context"
	"errors"
	"fmt"

	"tunio/application/logging"
	"tunio/application/network/queue"

	"golang.org/x/sync/errgroup"
)

// errEndOfStream marks a pump that drained its source completely. It cancels
// the sibling pump through the group context and is translated back to a
// clean nil before Splice returns.
var errEndOfStream = errors.New("end of stream")

// Splice pumps frames between two queues in both directions until ctx is
// done, a queue reports end of stream, or a transfer fails. Each direction
// uses one mtu-sized buffer. A transmit-side would-block drops the frame and
// logs it; dropping is what a saturated interface does anyway.
//
// When one direction ends the splice, the other forwards whatever its source
// has already buffered before returning, so frames received prior to the
// shutdown are not lost.
func Splice(ctx context.Context, log logging.Logger, left, right queue.Queue, mtu int) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return pump(gctx, ctx, log, left, right, mtu, "left->right") })
	eg.Go(func() error { return pump(gctx, ctx, log, right, left, mtu, "right->left") })

	err := eg.Wait()
	if errors.Is(err, errEndOfStream) {
		return nil
	}
	return err
}

func pump(ctx, parent context.Context, log logging.Logger, src, dst queue.Queue, mtu int, dir string) error {
	buf := make([]byte, mtu)
	for {
		n, err := src.ReadContext(ctx, buf)
		if err != nil {
			// Group cancellation with a live parent means the sibling pump
			// ended the splice; hand over buffered frames before exiting.
			if ctx.Err() != nil && parent.Err() == nil {
				drain(log, src, dst, buf, dir)
				return errEndOfStream
			}
			return err
		}
		if n == 0 {
			return errEndOfStream
		}

		if _, err := dst.WriteContext(ctx, buf[:n]); err != nil {
			if errors.Is(err, queue.ErrWouldBlock) {
				log.Printf("%s: transmit ring full, dropped %d byte frame", dir, n)
				continue
			}
			return fmt.Errorf("%s: write: %w", dir, err)
		}
	}
}

// drain forwards frames the source already holds, without waiting for more.
func drain(log logging.Logger, src, dst queue.Queue, buf []byte, dir string) {
	for {
		n, err := src.Read(buf)
		if err != nil || n == 0 {
			return
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			if errors.Is(err, queue.ErrWouldBlock) {
				log.Printf("%s: transmit ring full, dropped %d byte frame", dir, n)
				continue
			}
			return
		}
	}
}
