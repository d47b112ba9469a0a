package session

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// Process owns one native shell process attached to a PTY. It exposes the
// write-line and drain primitives the coordinator builds on; everything
// about prompts, echoes and escape sequences is passed through untouched.
type Process struct {
	cmd  *exec.Cmd
	ptmx *os.File

	done    chan struct{}
	waitErr error
}

// Spawn starts shellPath in workingDir on a fresh PTY. An empty shellPath
// falls back to $SHELL and then /bin/sh.
func Spawn(shellPath, workingDir string) (*Process, error) {
	if shellPath == "" {
		shellPath = os.Getenv("SHELL")
		if shellPath == "" {
			shellPath = "/bin/sh"
		}
	}

	cmd := exec.Command(shellPath)
	cmd.Dir = workingDir
	// TERM=dumb keeps prompt decoration out of the captured stream.
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, &SpawnError{WorkingDir: workingDir, Err: err}
	}

	p := &Process{
		cmd:  cmd,
		ptmx: ptmx,
		done: make(chan struct{}),
	}

	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

// WriteLine forwards one line of input to the shell. Callers hold the
// session lock, which totally orders writes from both actors.
func (p *Process) WriteLine(text string) error {
	if _, err := p.ptmx.WriteString(text + "\n"); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// Drain blocks until output bytes are available or the process side of the
// PTY closes. It returns raw bytes; decoding happens per chunk upstream.
func (p *Process) Drain(buf []byte) (int, error) {
	return p.ptmx.Read(buf)
}

// Done is closed once the underlying process has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Pid returns the OS process id, or 0 when unavailable.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Terminate sends SIGTERM, waits up to grace, then escalates to SIGKILL.
// A non-nil return means the process may be orphaned; callers log it and
// mark the session closed anyway.
func (p *Process) Terminate(grace time.Duration) error {
	defer p.ptmx.Close()

	select {
	case <-p.done:
		return nil
	default:
	}

	if p.cmd.Process != nil {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
	}

	if p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
		return errors.New("process did not exit after forced kill")
	}
}
