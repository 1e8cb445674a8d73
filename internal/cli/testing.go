package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// CLI provides a clean interface for running fixmat commands in tests.
// It manages a temp directory, an environment map, and a fake document
// tool so no real paper-age binary is needed.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a new test CLI with a temp directory. The environment
// carries PATH (the fake tool scripts need a shell) and a passphrase.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{
			"PATH":              os.Getenv("PATH"),
			"FIXMAT_PASSPHRASE": "correct horse battery staple",
		},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr,
// and exit code. Args should not include "fixmat" or "--cwd" - those
// are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.RunWithSignal(nil, args...)
}

// RunWithSignal executes the CLI with a signal channel attached.
func (r *CLI) RunWithSignal(sigCh <-chan os.Signal, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"fixmat", "--cwd", r.Dir}, args...)
	code := Run(nil, &outBuf, &errBuf, fullArgs, r.Env, sigCh)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns
// non-zero. Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// WriteConfig writes a project config file (.fixmat.json) into the
// work directory.
func (r *CLI) WriteConfig(content string) {
	r.t.Helper()

	path := filepath.Join(r.Dir, ".fixmat.json")

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("failed to write config: %v", err)
	}
}

// defaultToolScript mimics the external document tool closely enough
// for end-to-end tests: it requires the passphrase variable, finds the
// --output argument, and writes the piped payload into that file.
const defaultToolScript = `[ -n "$PAPERAGE_PASSPHRASE" ] || exit 9
out=""
while [ "$#" -gt 0 ]; do
	if [ "$1" = "--output" ]; then out="$2"; fi
	shift
done
[ -n "$out" ] || exit 8
cat > "$out"
`

// InstallTool writes an executable fake tool script and a project
// config pointing at it. Returns the script path.
func (r *CLI) InstallTool(body string) string {
	r.t.Helper()

	path := filepath.Join(r.Dir, "fake-tool.sh")

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	if err != nil {
		r.t.Fatalf("failed to write tool script: %v", err)
	}

	r.WriteConfig(`{"tool": ` + strconv.Quote(path) + `}`)

	return path
}

// InstallDefaultTool installs the standard well-behaved fake tool.
func (r *CLI) InstallDefaultTool() string {
	r.t.Helper()

	return r.InstallTool(defaultToolScript)
}

// PDFFiles returns the sorted .pdf filenames in the work directory.
func (r *CLI) PDFFiles() []string {
	r.t.Helper()

	matches, err := filepath.Glob(filepath.Join(r.Dir, "*.pdf"))
	if err != nil {
		r.t.Fatalf("glob: %v", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}

	sort.Strings(names)

	return names
}

// ReadManifest reads the raw fixtures.json from the work directory.
func (r *CLI) ReadManifest() string {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.Dir, "fixtures.json"))
	if err != nil {
		r.t.Fatalf("failed to read manifest: %v", err)
	}

	return string(data)
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
