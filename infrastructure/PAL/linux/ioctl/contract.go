//go:build linux

package ioctl

import (
	"os"

	"tunio/domain/netlayer"
)

type Contract interface {
	// OpenTunInterface opens the clone device non-blocking and binds it to
	// the named interface with the requested framing layer. It returns the
	// open device file and the name the kernel actually assigned, which may
	// differ from the requested one.
	OpenTunInterface(name string, layer netlayer.Layer) (*os.File, string, error)
	// DetectTunNameFromFd reads the interface name bound to an open device.
	DetectTunNameFromFd(f *os.File) (string, error)
}
