//go:build windows

package tun_manager

import (
	"testing"

	"tunio/domain/netlayer"
	"tunio/infrastructure/settings"
)

type mockNetsh struct {
	calls []string
}

func (m *mockNetsh) InterfaceSetAddressStatic(name, ip, mask string) error {
	m.calls = append(m.calls, "addr "+name+" "+ip+" "+mask)
	return nil
}

func (m *mockNetsh) InterfaceIPDeleteAddress(name, ip string) error {
	m.calls = append(m.calls, "deladdr "+name+" "+ip)
	return nil
}

func (m *mockNetsh) InterfaceSetMTU(name string, mtu int) error {
	m.calls = append(m.calls, "mtu "+name)
	return nil
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}

func TestSplitCIDR(t *testing.T) {
	tests := []struct {
		cidr string
		addr string
		mask string
		ok   bool
	}{
		{"10.0.0.1/24", "10.0.0.1", "255.255.255.0", true},
		{"192.168.1.5/32", "192.168.1.5", "255.255.255.255", true},
		{"10.0.0.0/8", "10.0.0.0", "255.0.0.0", true},
		{"not-a-cidr", "", "", false},
		{"fd00::1/64", "", "", false},
	}
	for _, tt := range tests {
		addr, mask, err := splitCIDR(tt.cidr)
		if tt.ok != (err == nil) {
			t.Fatalf("splitCIDR(%q) err = %v, want ok=%v", tt.cidr, err, tt.ok)
		}
		if tt.ok && (addr != tt.addr || mask != tt.mask) {
			t.Fatalf("splitCIDR(%q) = (%q, %q), want (%q, %q)", tt.cidr, addr, mask, tt.addr, tt.mask)
		}
	}
}

func TestCreateQueue_LayerGuard(t *testing.T) {
	m := &PlatformTunManager{netsh: &mockNetsh{}, log: discardLogger{}}
	if _, err := m.CreateQueue(settings.Settings{InterfaceName: "tunio0", Layer: netlayer.L2}); err == nil {
		t.Fatal("expected L2 settings to be rejected")
	}
}
