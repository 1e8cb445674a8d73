package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeScript drops an executable shell script into a temp dir and
// returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tool.sh")

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	if err != nil {
		t.Fatalf("writing script: %v", err)
	}

	return path
}

func TestExecInvokerCapturesExitZero(t *testing.T) {
	t.Parallel()

	tool := writeScript(t, `printf 'made it'`)

	res, err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Tool: tool,
		Dir:  t.TempDir(),
		Env:  map[string]string{"PATH": os.Getenv("PATH")},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if res.ExitCode != 0 {
		t.Errorf("expected exit 0, got %d", res.ExitCode)
	}

	if string(res.Stdout) != "made it" {
		t.Errorf("stdout not captured: %q", res.Stdout)
	}
}

func TestExecInvokerCapturesNonzeroExitAndStderr(t *testing.T) {
	t.Parallel()

	tool := writeScript(t, `echo 'passphrase required' >&2; exit 3`)

	res, err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Tool: tool,
		Dir:  t.TempDir(),
		Env:  map[string]string{"PATH": os.Getenv("PATH")},
	})
	if err != nil {
		t.Fatalf("nonzero exit must not be an invoke error: %v", err)
	}

	if res.ExitCode != 3 {
		t.Errorf("expected exit 3, got %d", res.ExitCode)
	}

	if string(res.Stderr) != "passphrase required\n" {
		t.Errorf("stderr not captured: %q", res.Stderr)
	}
}

func TestExecInvokerPipesStdin(t *testing.T) {
	t.Parallel()

	tool := writeScript(t, `cat`)

	res, err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Tool:  tool,
		Stdin: []byte("6465616462656566"),
		Dir:   t.TempDir(),
		Env:   map[string]string{"PATH": os.Getenv("PATH")},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if string(res.Stdout) != "6465616462656566" {
		t.Errorf("stdin not piped through: %q", res.Stdout)
	}
}

func TestExecInvokerPassesExactEnvironment(t *testing.T) {
	t.Parallel()

	tool := writeScript(t, `printf '%s' "$PAPERAGE_PASSPHRASE"`)

	res, err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Tool: tool,
		Dir:  t.TempDir(),
		Env: map[string]string{
			"PATH":                os.Getenv("PATH"),
			"PAPERAGE_PASSPHRASE": "hunter2",
		},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if string(res.Stdout) != "hunter2" {
		t.Errorf("child did not see passphrase var: %q", res.Stdout)
	}
}

func TestExecInvokerLaunchFailure(t *testing.T) {
	t.Parallel()

	_, err := ExecInvoker{}.Invoke(context.Background(), Invocation{
		Tool: filepath.Join(t.TempDir(), "no-such-tool"),
		Dir:  t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected launch error for missing tool")
	}
}

func TestExecInvokerKillsOnContextTimeout(t *testing.T) {
	t.Parallel()

	tool := writeScript(t, `sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()

	_, err := ExecInvoker{}.Invoke(ctx, Invocation{
		Tool: tool,
		Dir:  t.TempDir(),
		Env:  map[string]string{"PATH": os.Getenv("PATH")},
	})
	if err == nil {
		t.Fatal("expected error after context timeout")
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("process was not killed promptly (took %s)", elapsed)
	}
}

func TestFlattenEnvIsSortedAndComplete(t *testing.T) {
	t.Parallel()

	flat := flattenEnv(map[string]string{
		"ZETA":  "1",
		"ALPHA": "2",
	})

	want := []string{"ALPHA=2", "ZETA=1"}

	if len(flat) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(flat))
	}

	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], flat[i])
		}
	}
}
