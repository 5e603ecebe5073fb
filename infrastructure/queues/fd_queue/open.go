//go:build linux

package fd_queue

import (
	"tunio/domain/netlayer"
	"tunio/infrastructure/PAL/linux/ioctl"
)

// Open performs the one-time device handshake and wraps the resulting fd in
// a Queue: /dev/net/tun is opened non-blocking, TUNSETIFF binds it to the
// named interface with the requested framing layer and no packet-info
// header, and the kernel-assigned name is kept on the queue. A handshake
// failure is fatal; no queue is created.
func Open(name string, layer netlayer.Layer) (*Queue, error) {
	w := ioctl.NewWrapper(ioctl.NewLinuxIoctlCommander(), ioctl.DevNetTun)
	f, assigned, err := w.OpenTunInterface(name, layer)
	if err != nil {
		return nil, err
	}
	q, err := NewQueue(f, assigned)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return q, nil
}
