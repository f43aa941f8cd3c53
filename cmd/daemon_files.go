package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonRuntimeState is written next to the PID file so `daemon status` can
// find the API address of a running daemon.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
	File      string    `json:"file,omitempty"`
}

// daemonFiles is the PID file plus its runtime state sidecar.
type daemonFiles struct {
	pidPath string
}

func (f daemonFiles) statePath() string {
	return f.pidPath + ".json"
}

// PID returns the recorded daemon PID.
func (f daemonFiles) PID() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(f.pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.pidPath)
	}
	return pid, nil
}

// Running reports the recorded PID and whether that process is alive.
func (f daemonFiles) Running() (int, bool) {
	pid, err := f.PID()
	if err != nil {
		return 0, false
	}
	return pid, processAlive(pid)
}

// EnsureFree fails when a live daemon owns the files and clears stale ones.
func (f daemonFiles) EnsureFree() error {
	pid, err := f.PID()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case processAlive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	f.Release()
	return nil
}

// Claim records pid as the running daemon.
func (f daemonFiles) Claim(pid int) error {
	if err := f.EnsureFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	return os.WriteFile(f.pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// Release removes the PID file and the state sidecar.
func (f daemonFiles) Release() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.statePath())
}

func (f daemonFiles) SaveState(st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.statePath(), append(data, '\n'), 0o600)
}

func (f daemonFiles) State() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(f.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// childArgs rewrites the current invocation for the detached child process.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--child")
}
