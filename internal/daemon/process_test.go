package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestPidfileClaimAndRuntime(t *testing.T) {
	pf := Pidfile{Path: filepath.Join(t.TempDir(), "run", "cardperksd.pid")}
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rt := Runtime{PID: os.Getpid(), Addr: "127.0.0.1:8787", StartedAt: started, DataDir: "/data"}

	if err := pf.Claim(rt); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	got, err := pf.Runtime()
	if err != nil {
		t.Fatalf("Runtime: %v", err)
	}
	if got.PID != rt.PID || got.Addr != rt.Addr || !got.StartedAt.Equal(started) || got.DataDir != "/data" {
		t.Errorf("Runtime = %+v, want %+v", got, rt)
	}

	// This process is alive, so a second claim must fail.
	if err := pf.Claim(rt); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Claim = %v, want ErrAlreadyRunning", err)
	}

	pf.Release()
	if _, err := os.Stat(pf.Path); !os.IsNotExist(err) {
		t.Errorf("pid file still present after Release: %v", err)
	}
	if _, err := pf.Runtime(); err == nil {
		t.Error("Runtime after Release should fail")
	}
}

func TestPidfileRuntimeWithoutRuntimeFile(t *testing.T) {
	pf := Pidfile{Path: filepath.Join(t.TempDir(), "d.pid")}
	if err := os.WriteFile(pf.Path, []byte("4242\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rt, err := pf.Runtime()
	if err != nil {
		t.Fatalf("Runtime: %v", err)
	}
	if rt.PID != 4242 || rt.Addr != "" {
		t.Errorf("Runtime = %+v, want PID only", rt)
	}
}

func TestPidfileEnsureFreeClearsBadFile(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "not-a-pid\n"},
		{"zero", "0\n"},
		{"negative", "-7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := Pidfile{Path: filepath.Join(t.TempDir(), "d.pid")}
			if err := os.WriteFile(pf.Path, []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}
			if err := pf.EnsureFree(); err != nil {
				t.Fatalf("EnsureFree: %v", err)
			}
			if _, err := os.Stat(pf.Path); !os.IsNotExist(err) {
				t.Errorf("bad pid file not removed: %v", err)
			}
		})
	}
}

func TestPidfileMissing(t *testing.T) {
	pf := Pidfile{Path: filepath.Join(t.TempDir(), "none.pid")}
	if err := pf.EnsureFree(); err != nil {
		t.Errorf("EnsureFree on missing file: %v", err)
	}
	if _, err := pf.Stop(time.Second); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop = %v, want ErrNotRunning", err)
	}
}

func TestChildArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"daemon", "--detach"}, []string{"daemon", "--child"}},
		{[]string{"daemon", "--detach=true", "--addr", ":9000"}, []string{"daemon", "--addr", ":9000", "--child"}},
		{[]string{"daemon"}, []string{"daemon", "--child"}},
	}
	for _, tt := range tests {
		if got := ChildArgs(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ChildArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessAlive(t *testing.T) {
	if !ProcessAlive(os.Getpid()) {
		t.Error("current process reported dead")
	}
}
