package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestResolvePassphraseNamedVariable(t *testing.T) {
	t.Parallel()

	got, err := resolvePassphrase(nil, "MY_SECRET", map[string]string{"MY_SECRET": "hunter2"})
	if err != nil {
		t.Fatalf("resolvePassphrase: %v", err)
	}

	if string(got) != "hunter2" {
		t.Errorf("expected hunter2, got %q", got)
	}
}

func TestResolvePassphraseNamedVariableUnset(t *testing.T) {
	t.Parallel()

	_, err := resolvePassphrase(nil, "MY_SECRET", map[string]string{})
	if !errors.Is(err, errPassphraseMissing) {
		t.Fatalf("expected errPassphraseMissing, got %v", err)
	}

	if !strings.Contains(err.Error(), "MY_SECRET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestResolvePassphraseDefaultVariable(t *testing.T) {
	t.Parallel()

	got, err := resolvePassphrase(nil, "", map[string]string{DefaultPassphraseVar: "s3cret"})
	if err != nil {
		t.Fatalf("resolvePassphrase: %v", err)
	}

	if string(got) != "s3cret" {
		t.Errorf("expected s3cret, got %q", got)
	}
}

func TestResolvePassphraseNonInteractiveWithoutEnv(t *testing.T) {
	t.Parallel()

	// stdin is not a terminal in tests, so with no env var set there is
	// no passphrase source left.
	_, err := resolvePassphrase(strings.NewReader(""), "", map[string]string{})
	if !errors.Is(err, errPassphraseMissing) {
		t.Fatalf("expected errPassphraseMissing, got %v", err)
	}

	if !strings.Contains(err.Error(), DefaultPassphraseVar) {
		t.Errorf("error should mention the default variable: %v", err)
	}
}

func TestResolvePassphraseNamedVariableWinsOverDefault(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"MY_SECRET":          "named",
		DefaultPassphraseVar: "default",
	}

	got, err := resolvePassphrase(nil, "MY_SECRET", env)
	if err != nil {
		t.Fatalf("resolvePassphrase: %v", err)
	}

	if string(got) != "named" {
		t.Errorf("named variable must win, got %q", got)
	}
}
