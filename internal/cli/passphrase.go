package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	"golang.org/x/sys/unix"
)

// DefaultPassphraseVar is checked in fixmat's own environment when no
// --passphrase-env flag is given.
const DefaultPassphraseVar = "FIXMAT_PASSPHRASE"

var errPassphraseMissing = errors.New("no passphrase")

// resolvePassphrase picks the batch passphrase, in order: the variable
// named by envVar (when set), $FIXMAT_PASSPHRASE, then an interactive
// no-echo prompt when stdin is a terminal. The value is returned to the
// caller and travels only inside the run plan; it is never logged.
func resolvePassphrase(stdin io.Reader, envVar string, env map[string]string) ([]byte, error) {
	if envVar != "" {
		value := env[envVar]
		if value == "" {
			return nil, fmt.Errorf("%w: $%s is empty or unset", errPassphraseMissing, envVar)
		}

		return []byte(value), nil
	}

	if value := env[DefaultPassphraseVar]; value != "" {
		return []byte(value), nil
	}

	file, isFile := stdin.(*os.File)
	if !isFile || !isTerminal(file) {
		return nil, fmt.Errorf("%w: set $%s or run interactively", errPassphraseMissing, DefaultPassphraseVar)
	}

	return promptPassphrase()
}

func promptPassphrase() ([]byte, error) {
	line := liner.NewLiner()
	defer line.Close()

	value, err := line.PasswordPrompt("Passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	if value == "" {
		return nil, errPassphraseMissing
	}

	return []byte(value), nil
}

func isTerminal(file *os.File) bool {
	_, err := unix.IoctlGetTermios(int(file.Fd()), unix.TCGETS)

	return err == nil
}
