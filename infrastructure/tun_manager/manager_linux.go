//go:build linux

// Package tun_manager creates and disposes platform packet queues: it runs
// the per-OS device handshake, configures the interface and hands back a
// ready queue.
package tun_manager

import (
	"fmt"

	"tunio/application/logging"
	"tunio/application/network/queue"
	"tunio/infrastructure/PAL"
	"tunio/infrastructure/PAL/linux/ioctl"
	"tunio/infrastructure/PAL/linux/network_tools/ip"
	"tunio/infrastructure/queues/fd_queue"
	"tunio/infrastructure/settings"
)

// PlatformTunManager builds readiness-driven queues over /dev/net/tun and
// configures the interface through the ip tool.
type PlatformTunManager struct {
	tun ioctl.Contract
	ip  ip.Contract
	log logging.Logger
}

var _ queue.Manager = (*PlatformTunManager)(nil)

func NewPlatformTunManager(log logging.Logger) (queue.Manager, error) {
	return &PlatformTunManager{
		tun: ioctl.NewWrapper(ioctl.NewLinuxIoctlCommander(), ioctl.DevNetTun),
		ip:  ip.NewWrapper(PAL.NewExecCommander()),
		log: log,
	}, nil
}

// CreateQueue opens the device, configures it (MTU, address, link up) and
// wraps the fd. A configuration failure tears the half-built interface down
// before returning.
func (m *PlatformTunManager) CreateQueue(s settings.Settings) (queue.Queue, error) {
	f, assigned, err := m.tun.OpenTunInterface(s.InterfaceName, s.Layer)
	if err != nil {
		return nil, fmt.Errorf("open %s interface: %w", s.Layer, err)
	}

	if err := m.configure(assigned, s); err != nil {
		_ = f.Close()
		_ = m.ip.LinkDelete(assigned)
		return nil, err
	}

	q, err := fd_queue.NewQueue(f, assigned)
	if err != nil {
		_ = f.Close()
		_ = m.ip.LinkDelete(assigned)
		return nil, err
	}
	m.log.Printf("created %s queue on interface %s, mtu %d", s.Layer, assigned, settings.ResolveMTU(s.MTU))
	return q, nil
}

func (m *PlatformTunManager) configure(name string, s settings.Settings) error {
	if err := m.ip.LinkSetDevMTU(name, settings.ResolveMTU(s.MTU)); err != nil {
		return fmt.Errorf("set mtu on %s: %w", name, err)
	}
	if s.InterfaceAddressCIDR != "" {
		if err := m.ip.AddrAddDev(name, s.InterfaceAddressCIDR); err != nil {
			return fmt.Errorf("assign %s to %s: %w", s.InterfaceAddressCIDR, name, err)
		}
	}
	if err := m.ip.LinkSetDevUp(name); err != nil {
		return fmt.Errorf("bring %s up: %w", name, err)
	}
	return nil
}

// DisposeQueue removes the interface. The queue itself is closed by its
// owner; deleting the link is what actually frees the kernel resources.
func (m *PlatformTunManager) DisposeQueue(s settings.Settings) error {
	if err := m.ip.LinkDelete(s.InterfaceName); err != nil {
		return fmt.Errorf("delete %s: %w", s.InterfaceName, err)
	}
	return nil
}
