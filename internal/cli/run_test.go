package cli

import (
	"testing"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout, _, code := r.Run()
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	AssertContains(t, stdout, "Usage: fixmat")
	AssertContains(t, stdout, "run")
	AssertContains(t, stdout, "plan")
	AssertContains(t, stdout, "print-config")
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	_, stderr, code := r.Run("frobnicate")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	AssertContains(t, stderr, "unknown command: frobnicate")
}

func TestRunUnknownGlobalFlag(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	_, stderr, code := r.Run("--bogus", "plan")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	AssertContains(t, stderr, "unknown flag")
}

func TestRunConfigFlagRequiresArgument(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	_, stderr, code := r.Run("--config")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	AssertContains(t, stderr, "flag requires an argument")
}

func TestRunExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	_, stderr, code := r.Run("-c", "missing.json", "plan")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	AssertContains(t, stderr, "config file not found")
}

func TestPrintConfigShowsResolvedValues(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout := r.MustRun("print-config")

	AssertContains(t, stdout, `"tool": "paper-age"`)
	AssertContains(t, stdout, `"page_formats"`)
	AssertContains(t, stdout, "# Sources:")
	AssertContains(t, stdout, "(using defaults only)")
}

func TestPrintConfigShowsProjectSource(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	r.WriteConfig(`{"tool": "my-tool"}`)

	stdout := r.MustRun("print-config")

	AssertContains(t, stdout, `"tool": "my-tool"`)
	AssertContains(t, stdout, "#   project:")
}

func TestOutputDirGlobalFlag(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	r.InstallDefaultTool()

	stdout := r.MustRun("-o", "out", "plan")

	AssertContains(t, stdout, "out")
}
