package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

var (
	// ErrNotRunning means no live daemon owns the PID file.
	ErrNotRunning = errors.New("daemon is not running")
	// ErrAlreadyRunning means a live daemon already owns the PID file.
	ErrAlreadyRunning = errors.New("daemon already running")
)

// Runtime describes a running daemon. It is written next to the PID file
// so `daemon status` can find the listen address.
type Runtime struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
}

// Pidfile manages the PID file at Path and the runtime file beside it.
type Pidfile struct {
	Path string
}

func (p Pidfile) runtimePath() string {
	return p.Path + ".json"
}

// Claim writes rt to the PID and runtime files. It fails with
// ErrAlreadyRunning if another live process holds them, and clears them
// when the recorded process is gone.
func (p Pidfile) Claim(rt Runtime) error {
	if err := p.EnsureFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(p.Path, []byte(strconv.Itoa(rt.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.runtimePath(), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write runtime file: %w", err)
	}
	return nil
}

// Release removes both files.
func (p Pidfile) Release() {
	_ = os.Remove(p.Path)
	_ = os.Remove(p.runtimePath())
}

// PID reads the recorded process ID.
func (p Pidfile) PID() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p.Path)
	}
	return pid, nil
}

// Runtime reads the runtime file. A missing or unreadable file yields a
// Runtime holding only the PID.
func (p Pidfile) Runtime() (Runtime, error) {
	pid, err := p.PID()
	if err != nil {
		return Runtime{}, err
	}
	rt := Runtime{PID: pid}
	if data, err := os.ReadFile(p.runtimePath()); err == nil {
		_ = json.Unmarshal(data, &rt)
		rt.PID = pid
	}
	return rt, nil
}

// EnsureFree returns ErrAlreadyRunning while the recorded process is
// alive. A stale PID file is removed.
func (p Pidfile) EnsureFree() error {
	pid, err := p.PID()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		p.Release()
		return nil
	case ProcessAlive(pid):
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	p.Release()
	return nil
}

// Stop sends SIGTERM to the recorded process and waits up to timeout
// for it to exit.
func (p Pidfile) Stop(timeout time.Duration) (int, error) {
	pid, err := p.PID()
	if err != nil {
		return 0, ErrNotRunning
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon process: %w", err)
	}
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !ProcessAlive(pid) {
			p.Release()
			return pid, nil
		}
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

// ProcessAlive probes pid with signal 0.
func ProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// ChildArgs turns the arguments of a `daemon --detach` invocation into
// those of the detached child.
func ChildArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--child")
}

// Detach re-executes the current binary with args, appending its output
// to logFile, and returns the child's PID without waiting for it.
func Detach(args []string, logFile string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
		return 0, fmt.Errorf("create daemon log directory: %w", err)
	}
	logf, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // re-exec of this binary
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start detached daemon: %w", err)
	}
	return cmd.Process.Pid, nil
}
