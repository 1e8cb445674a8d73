package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"syscall"

	"golang.org/x/sys/unix"
)

// Invocation describes one external tool call.
type Invocation struct {
	Tool  string
	Args  []string
	Stdin []byte
	Dir   string

	// Env is the complete child environment. The runner builds it per
	// invocation so the passphrase never outlives the call as ambient
	// process state.
	Env map[string]string
}

// InvokeResult carries what the tool reported back.
type InvokeResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Invoker runs the external document tool. The matrix logic only sees
// this interface, so tests substitute a recorder instead of spawning
// processes.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (InvokeResult, error)
}

// ExecInvoker spawns the tool as a real subprocess.
type ExecInvoker struct{}

// Invoke runs the tool and blocks until it exits or ctx is done. A
// nonzero exit is not an error here; it comes back in the result and
// the runner classifies it. The returned error means the process could
// not be started, or was killed because ctx ended.
func (ExecInvoker) Invoke(ctx context.Context, inv Invocation) (InvokeResult, error) {
	cmd := exec.Command(inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = bytes.NewReader(inv.Stdin)
	cmd.Env = flattenEnv(inv.Env)

	// Own process group so a timeout kill takes the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startErr := cmd.Start()
	if startErr != nil {
		return InvokeResult{}, fmt.Errorf("starting %s: %w", inv.Tool, startErr)
	}

	done := make(chan error, 1)

	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		<-done

		return InvokeResult{ExitCode: -1, Stderr: stderr.Bytes()}, ctx.Err()
	case waitErr := <-done:
		if waitErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) {
				return InvokeResult{}, fmt.Errorf("running %s: %w", inv.Tool, waitErr)
			}

			return InvokeResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
			}, nil
		}

		return InvokeResult{ExitCode: 0, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}
}

// flattenEnv converts an env map to the KEY=VALUE form exec wants.
// Sorted so the child environment is deterministic across runs.
func flattenEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	flat := make([]string, 0, len(keys))
	for _, k := range keys {
		flat = append(flat, k+"="+env[k])
	}

	return flat
}
