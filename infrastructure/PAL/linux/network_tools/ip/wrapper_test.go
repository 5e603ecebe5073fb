package ip

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type mockCommander struct {
	name string
	args []string
	out  []byte
	err  error
}

func (m *mockCommander) CombinedOutput(name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.out, m.err
}

func (m *mockCommander) Output(string, ...string) ([]byte, error) { return nil, nil }

func TestWrapper_Commands(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c Contract) error
		wantArgs []string
	}{
		{
			name:     "LinkSetDevUp",
			call:     func(c Contract) error { return c.LinkSetDevUp("tun0") },
			wantArgs: []string{"link", "set", "dev", "tun0", "up"},
		},
		{
			name:     "LinkSetDevMTU",
			call:     func(c Contract) error { return c.LinkSetDevMTU("tun0", 1400) },
			wantArgs: []string{"link", "set", "dev", "tun0", "mtu", "1400"},
		},
		{
			name:     "AddrAddDev",
			call:     func(c Contract) error { return c.AddrAddDev("tun0", "10.0.0.1/24") },
			wantArgs: []string{"addr", "add", "10.0.0.1/24", "dev", "tun0"},
		},
		{
			name:     "LinkDelete",
			call:     func(c Contract) error { return c.LinkDelete("tun0") },
			wantArgs: []string{"link", "delete", "tun0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCommander{}
			if err := tt.call(NewWrapper(mock)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mock.name != "ip" {
				t.Errorf("command = %q, want %q", mock.name, "ip")
			}
			if !reflect.DeepEqual(mock.args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", mock.args, tt.wantArgs)
			}
		})
	}
}

func TestWrapper_ErrorCarriesOutput(t *testing.T) {
	mock := &mockCommander{out: []byte("RTNETLINK answers: File exists"), err: errors.New("exit status 2")}
	err := NewWrapper(mock).AddrAddDev("tun0", "10.0.0.1/24")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "File exists") {
		t.Fatalf("error does not carry command output: %v", err)
	}
}
