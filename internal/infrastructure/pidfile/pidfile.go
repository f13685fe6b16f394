package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile keeps a single scheduler daemon per host
type PIDFile struct {
	path string
}

// New creates a PIDFile at path
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current pid. A stale file left by a dead process is
// replaced; a live owner is reported as an error.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.owner(); ok {
		if alive(pid) {
			return fmt.Errorf("scheduler is already running (PID %d)", pid)
		}
	}
	_ = os.Remove(p.path)

	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create PID file %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return fmt.Errorf("failed to write PID file %s: %w", p.path, err)
	}
	return nil
}

// Release removes the file if this process still owns it
func (p *PIDFile) Release() error {
	if pid, ok := p.owner(); ok && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) owner() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// alive probes with signal 0; EPERM still means the process exists
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
