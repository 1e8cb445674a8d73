package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fixmat/internal/fixture"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
//
// sigCh, when non-nil, cancels the batch: the in-flight tool process is
// killed, remaining jobs are recorded as skipped, and the summary and
// manifest are still produced.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	// Parse global flags
	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	// Load and validate config
	cfg, err := fixture.LoadConfig(fixture.LoadConfigInput{
		WorkDirOverride:   flags.workDir,
		ConfigPath:        flags.configPath,
		OutputDirOverride: flags.outputDir,
		Env:               env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	cmdArgs := flags.remaining[1:]

	// Handle help flags
	if cmd == "-h" || cmd == helpFlag {
		printUsage(out)

		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			<-sigCh
			cancel()
		}()
	}

	// Create IO for command
	ioCtx := NewIO(out, errOut)

	// Dispatch to command
	switch cmd {
	case "run":
		return cmdRun(ctx, ioCtx, stdin, cfg, cmdArgs, env)
	case "plan":
		return cmdPlan(ioCtx, cfg, cmdArgs)
	case "print-config":
		return cmdPrintConfig(ioCtx, cfg)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}
}

type globalFlags struct {
	workDir    string
	configPath string
	outputDir  string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", fixture.ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// -o/--output-dir flag
	if arg == "-o" || arg == "--output-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", fixture.ErrFlagRequiresArg, arg)
		}

		flags.outputDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--output-dir="); ok {
		flags.outputDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", fixture.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func cmdPrintConfig(o *IO, cfg fixture.Config) int {
	formatted, err := fixture.FormatConfig(cfg)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	o.Println(formatted)

	// Print sources
	o.Println("")
	o.Println("# Sources:")

	if cfg.Sources.Global != "" {
		o.Println("#   global:", cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("#   project:", cfg.Sources.Project)
	}

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("#   (using defaults only)")
	}

	return 0
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}

		// Everything after the separator belongs to the tool.
		if arg == "--" {
			return false
		}
	}

	return false
}

func printUsage(writer io.Writer) {
	fprintln(writer, `fixmat - encrypted-PDF test fixture matrix generator

Generates one output file per (size class x page format) combination by
piping random payload data through an external document tool.

Usage: fixmat [options] <command> [args]

Options:
  -C, --cwd <dir>         Run as if started in <dir>
  -c, --config <file>     Use specified config file
  -o, --output-dir <dir>  Write artifacts to <dir>

Commands:`)
	fprintln(writer, runHelp)
	fprintln(writer, planHelp)
	fprintln(writer, `  print-config            Show resolved configuration`)
}
