//go:build windows

// Package tun_manager creates and disposes platform packet queues: it runs
// the per-OS device handshake, configures the interface and hands back a
// ready queue.
package tun_manager

import (
	"fmt"
	"net"
	"sync"

	"tunio/application/logging"
	"tunio/application/network/queue"
	"tunio/domain/netlayer"
	"tunio/infrastructure/PAL"
	"tunio/infrastructure/PAL/windows/network_tools/netsh"
	"tunio/infrastructure/PAL/windows/wtun"
	"tunio/infrastructure/queues/bridged_queue"
	"tunio/infrastructure/settings"

	"golang.zx2c4.com/wintun"
)

const tunnelType = "tunio"

// PlatformTunManager builds thread-bridged queues over wintun sessions and
// configures the interface through netsh. The driver only carries raw IP
// frames, so layer-2 settings are rejected.
type PlatformTunManager struct {
	netsh netsh.Contract
	log   logging.Logger

	mu       sync.Mutex
	adapters map[string]*wintun.Adapter
}

var _ queue.Manager = (*PlatformTunManager)(nil)

func NewPlatformTunManager(log logging.Logger) (queue.Manager, error) {
	return &PlatformTunManager{
		netsh:    netsh.NewWrapper(PAL.NewExecCommander()),
		log:      log,
		adapters: make(map[string]*wintun.Adapter),
	}, nil
}

// CreateQueue opens (or creates) the adapter, starts a session sized by the
// settings' ring capacity and bridges it. The adapter outlives the queue so
// the interface keeps its state across sessions; DisposeQueue releases it.
func (m *PlatformTunManager) CreateQueue(s settings.Settings) (queue.Queue, error) {
	if s.Layer != netlayer.L3 {
		return nil, fmt.Errorf("%s framing is not supported by the wintun driver", s.Layer)
	}

	adapter, err := wintun.OpenAdapter(s.InterfaceName)
	if err != nil {
		adapter, err = wintun.CreateAdapter(s.InterfaceName, tunnelType, nil)
		if err != nil {
			return nil, fmt.Errorf("create/open adapter %s: %w", s.InterfaceName, err)
		}
	}

	session, err := adapter.StartSession(uint32(settings.ResolveRingCapacity(s.RingCapacity)))
	if err != nil {
		_ = adapter.Close()
		return nil, fmt.Errorf("start session on %s: %w", s.InterfaceName, err)
	}

	drv, err := wtun.NewDriver(session)
	if err != nil {
		session.End()
		_ = adapter.Close()
		return nil, err
	}
	q := bridged_queue.NewQueue(drv, m.log)

	if err := m.configure(s); err != nil {
		_ = q.Close()
		_ = adapter.Close()
		return nil, err
	}

	m.mu.Lock()
	m.adapters[s.InterfaceName] = adapter
	m.mu.Unlock()

	m.log.Printf("created bridged queue on interface %s, mtu %d", s.InterfaceName, settings.ResolveMTU(s.MTU))
	return q, nil
}

func (m *PlatformTunManager) configure(s settings.Settings) error {
	if s.InterfaceAddressCIDR != "" {
		addr, mask, err := splitCIDR(s.InterfaceAddressCIDR)
		if err != nil {
			return err
		}
		if err := m.netsh.InterfaceSetAddressStatic(s.InterfaceName, addr, mask); err != nil {
			return fmt.Errorf("assign %s to %s: %w", s.InterfaceAddressCIDR, s.InterfaceName, err)
		}
	}
	if err := m.netsh.InterfaceSetMTU(s.InterfaceName, settings.ResolveMTU(s.MTU)); err != nil {
		return fmt.Errorf("set mtu on %s: %w", s.InterfaceName, err)
	}
	return nil
}

// DisposeQueue removes the interface address and releases the adapter. The
// queue itself must already be closed by its owner.
func (m *PlatformTunManager) DisposeQueue(s settings.Settings) error {
	if s.InterfaceAddressCIDR != "" {
		if addr, _, err := splitCIDR(s.InterfaceAddressCIDR); err == nil {
			_ = m.netsh.InterfaceIPDeleteAddress(s.InterfaceName, addr)
		}
	}

	m.mu.Lock()
	adapter := m.adapters[s.InterfaceName]
	delete(m.adapters, s.InterfaceName)
	m.mu.Unlock()

	if adapter == nil {
		return fmt.Errorf("no adapter tracked for %s", s.InterfaceName)
	}
	return adapter.Close()
}

// splitCIDR turns "10.0.0.1/24" into the address and dotted mask netsh wants.
func splitCIDR(cidr string) (addr, mask string, err error) {
	ip, nw, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", "", fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return "", "", fmt.Errorf("address %q is not IPv4", cidr)
	}
	return ip4.String(), net.IP(nw.Mask).String(), nil
}
