package cli

import (
	"fixmat/internal/fixture"
)

const planHelp = `  plan                     List jobs and output names without running`

// cmdPlan prints the matrix in execution order: size classes outer,
// page formats inner. Useful for checking a config before generating.
func cmdPlan(o *IO, cfg fixture.Config, args []string) int {
	if hasHelpFlag(args) {
		o.Println("Usage: fixmat plan")
		o.Println("")
		o.Println("List every (size class x page format) job in execution order.")

		return 0
	}

	if len(args) > 0 {
		o.ErrPrintln("error: unexpected argument:", args[0])

		return 1
	}

	jobs := fixture.Jobs(cfg.SizeClasses, cfg.PageFormats)

	for _, job := range jobs {
		o.Printf("%-24s %s/%s  %d bytes\n", job.OutputName(), job.Size.Name, job.Format, job.Size.Bytes)
	}

	o.Printf("\n%d jobs -> %s\n", len(jobs), cfg.OutputDirAbs)

	return 0
}
