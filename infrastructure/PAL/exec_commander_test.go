//go:build !windows

package PAL

import (
	"strings"
	"testing"
)

func TestExecCommander_Output(t *testing.T) {
	c := NewExecCommander()
	out, err := c.Output("/bin/sh", "-c", "printf 'hello'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "hello" {
		t.Fatalf("unexpected output: %q", string(out))
	}
}

func TestExecCommander_CombinedOutput_Error(t *testing.T) {
	c := NewExecCommander()
	out, err := c.CombinedOutput("/bin/sh", "-c", "printf out; printf err 1>&2; exit 7")
	if err == nil {
		t.Fatal("expected error from non-zero exit")
	}
	if !strings.Contains(string(out), "out") || !strings.Contains(string(out), "err") {
		t.Fatalf("expected combined stdout and stderr, got %q", string(out))
	}
}
