package settings

import "tunio/domain/netlayer"

// Settings describes one virtual interface: its name, framing layer, address
// and the sizing knobs of the platform queue.
type Settings struct {
	// InterfaceName is the requested name; the kernel may assign a different
	// one, which the manager reports back after creation.
	InterfaceName string `json:"InterfaceName"`
	// InterfaceAddressCIDR is the address assigned to the interface, in
	// CIDR notation (e.g. "10.0.0.1/24").
	InterfaceAddressCIDR string         `json:"InterfaceAddressCIDR"`
	MTU                  int            `json:"MTU"`
	Layer                netlayer.Layer `json:"Layer"`
	// RingCapacity is the wintun ring size in bytes. Ignored on platforms
	// without a driver ring.
	RingCapacity int `json:"RingCapacity"`
}
