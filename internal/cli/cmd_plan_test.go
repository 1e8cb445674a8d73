package cli

import (
	"strings"
	"testing"
)

func TestPlanListsJobsInExecutionOrder(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout := r.MustRun("plan")

	wantOrder := []string{
		"a4-small.pdf",
		"letter-small.pdf",
		"a4-medium.pdf",
		"letter-medium.pdf",
		"a4-large.pdf",
		"letter-large.pdf",
	}

	lines := strings.Split(stdout, "\n")
	if len(lines) < len(wantOrder) {
		t.Fatalf("expected at least %d lines:\n%s", len(wantOrder), stdout)
	}

	for i, want := range wantOrder {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d: expected prefix %q, got %q", i, want, lines[i])
		}
	}

	AssertContains(t, stdout, "6 jobs")
	AssertContains(t, stdout, "900 bytes")
}

func TestPlanDoesNotTouchTheFilesystem(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	r.MustRun("plan")

	if files := r.PDFFiles(); len(files) != 0 {
		t.Errorf("plan must not create artifacts, got %v", files)
	}
}

func TestPlanRespectsConfiguredMatrix(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	r.WriteConfig(`{
		"page_formats": ["a5"],
		"size_classes": [{"name": "tiny", "bytes": 3}],
	}`)

	stdout := r.MustRun("plan")

	AssertContains(t, stdout, "a5-tiny.pdf")
	AssertContains(t, stdout, "1 jobs")
	AssertNotContains(t, stdout, "a4")
}

func TestPlanRejectsArguments(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	_, stderr, code := r.Run("plan", "extra")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	AssertContains(t, stderr, "unexpected argument")
}
