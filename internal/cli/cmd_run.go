package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"fixmat/internal/fixture"

	flag "github.com/spf13/pflag"
)

const runHelp = `  run [flags] [-- <args>]  Generate the fixture matrix
    --timeout                Per-job timeout (e.g. 30s; 0 = none)
    --on-existing            Policy for pre-existing outputs (overwrite|fail)
    --passphrase-env         Name of the env var holding the passphrase
    Everything after -- is forwarded verbatim to every tool invocation.`

func cmdRun(
	ctx context.Context,
	o *IO,
	stdin io.Reader,
	cfg fixture.Config,
	args []string,
	env map[string]string,
) int {
	flagSet := flag.NewFlagSet("run", flag.ContinueOnError)
	flagSet.SetOutput(&strings.Builder{}) // discard pflag output
	flagSet.Usage = func() {}

	timeout := flagSet.Duration("timeout", cfg.JobTimeoutDur, "Per-job timeout (0 = none)")
	onExisting := flagSet.String("on-existing", cfg.OnExisting, "Policy for pre-existing outputs: overwrite|fail")
	passphraseEnv := flagSet.String("passphrase-env", "", "Env var (in fixmat's environment) holding the passphrase")

	if hasHelpFlag(args) {
		printRunHelp(o, flagSet)

		return 0
	}

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		o.ErrPrintf("error: %v\n\n", parseErr)
		printRunHelp(o, flagSet)

		return 1
	}

	// Everything after "--" passes through to the tool unmodified.
	var forwarded []string

	positional := flagSet.Args()
	if dash := flagSet.ArgsLenAtDash(); dash >= 0 {
		forwarded = positional[dash:]
		positional = positional[:dash]
	}

	if len(positional) > 0 {
		o.ErrPrintln("error: unexpected argument:", positional[0])
		o.ErrPrintln("(tool arguments go after --)")

		return 1
	}

	passphrase, passErr := resolvePassphrase(stdin, *passphraseEnv, env)
	if passErr != nil {
		o.ErrPrintln("error:", passErr)

		return 1
	}

	plan := &fixture.Plan{
		SizeClasses:    cfg.SizeClasses,
		PageFormats:    cfg.PageFormats,
		Tool:           cfg.Tool,
		PageFormatFlag: cfg.PageFormatFlag,
		OutputFlag:     cfg.OutputFlag,
		PassphraseVar:  cfg.PassphraseVar,
		ForwardArgs:    forwarded,
		OutputDir:      cfg.OutputDirAbs,
		OnExisting:     *onExisting,
		JobTimeout:     *timeout,
		Passphrase:     passphrase,
	}

	runner := fixture.NewRunner(fixture.ExecInvoker{}, env)

	result, runErr := runner.Run(ctx, plan)

	printResults(o, result)

	if len(result.Jobs) > 0 {
		manifest := fixture.NewManifest(cfg.Tool, result, time.Now())

		manifestErr := fixture.WriteManifest(cfg.OutputDirAbs, manifest)
		if manifestErr != nil {
			o.ErrPrintln("error:", manifestErr)

			return 1
		}
	}

	if runErr != nil {
		o.ErrPrintln("error:", runErr)

		return 1
	}

	if !result.OK() {
		return 1
	}

	return 0
}

func printRunHelp(o *IO, flagSet *flag.FlagSet) {
	o.Printf("Usage: fixmat run [flags] [-- <args>]\n\n")
	o.Printf("Run every (size class x page format) combination once.\n")
	o.Printf("Everything after -- is forwarded verbatim to the tool.\n\n")
	o.Printf("Flags:\n")

	var buf strings.Builder

	flagSet.SetOutput(&buf)
	flagSet.PrintDefaults()
	o.Printf("%s", buf.String())
}

// printResults writes one line per job to stdout and failure details to
// stderr. Passphrase and payload never appear here.
func printResults(o *IO, result fixture.BatchResult) {
	okCount := 0
	failCount := 0
	skipCount := 0

	for _, job := range result.Jobs {
		switch job.Kind {
		case fixture.FailKind(""):
			okCount++

			o.Printf("ok    %s\n", job.Output)
		case fixture.FailSkipped:
			skipCount++

			o.Printf("SKIP  %s\n", job.Output)
		case fixture.FailTool:
			failCount++

			o.Printf("FAIL  %s (tool exited %d)\n", job.Output, job.ExitCode)
			printDetail(o, job)
		default:
			failCount++

			o.Printf("FAIL  %s (%s)\n", job.Output, job.Kind)
			printDetail(o, job)
		}
	}

	if len(result.Jobs) > 0 {
		o.Printf("\n%d ok, %d failed, %d skipped\n", okCount, failCount, skipCount)
	}
}

func printDetail(o *IO, job fixture.JobResult) {
	detail := strings.TrimSpace(job.Detail)
	if detail == "" {
		return
	}

	for _, line := range strings.Split(detail, "\n") {
		o.ErrPrintln(job.Output+":", line)
	}
}
