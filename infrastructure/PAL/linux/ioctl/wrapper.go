//go:build linux

package ioctl

import (
	"bytes"
	"fmt"
	"os"

	"tunio/domain/netlayer"

	"golang.org/x/sys/unix"
)

const DevNetTun = "/dev/net/tun"

type Wrapper struct {
	commander Commander
	devPath   string
}

func NewWrapper(commander Commander, devPath string) Contract {
	return &Wrapper{commander: commander, devPath: devPath}
}

func (w *Wrapper) OpenTunInterface(name string, layer netlayer.Layer) (*os.File, string, error) {
	var ifr IfReq
	if len(name) >= unix.IFNAMSIZ {
		return nil, "", fmt.Errorf("interface name %q exceeds %d bytes", name, unix.IFNAMSIZ-1)
	}
	copy(ifr.Name[:], name)

	// IFF_NO_PI: frames only, no packet-info header prepended by the kernel.
	switch layer {
	case netlayer.L2:
		ifr.Flags = unix.IFF_TAP | unix.IFF_NO_PI
	case netlayer.L3:
		ifr.Flags = unix.IFF_TUN | unix.IFF_NO_PI
	default:
		return nil, "", fmt.Errorf("unsupported layer %v", layer)
	}

	f, err := os.OpenFile(w.devPath, os.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", w.devPath, err)
	}

	if errno := w.commander.Ioctl(f.Fd(), unix.TUNSETIFF, &ifr); errno != 0 {
		_ = f.Close()
		return nil, "", fmt.Errorf("ioctl TUNSETIFF failed: %w", errno)
	}

	// The kernel rewrites the name field when it had to disambiguate.
	return f, nameFromIfReq(&ifr), nil
}

func (w *Wrapper) DetectTunNameFromFd(f *os.File) (string, error) {
	var ifr IfReq
	if errno := w.commander.Ioctl(f.Fd(), unix.TUNGETIFF, &ifr); errno != 0 {
		return "", fmt.Errorf("ioctl TUNGETIFF failed: %w", errno)
	}
	return nameFromIfReq(&ifr), nil
}

func nameFromIfReq(ifr *IfReq) string {
	if i := bytes.IndexByte(ifr.Name[:], 0); i >= 0 {
		return string(ifr.Name[:i])
	}
	return string(ifr.Name[:])
}
