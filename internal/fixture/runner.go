package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// On-existing policies. The runner owns overwrite handling instead of
// guessing what the tool's own force flag does.
const (
	OnExistingOverwrite = "overwrite"
	OnExistingFail      = "fail"
)

// FailKind classifies why a job did not succeed.
type FailKind string

const (
	// FailLaunch means the tool could not be started at all.
	FailLaunch FailKind = "launch"
	// FailTool means the tool ran and exited nonzero (or timed out).
	FailTool FailKind = "tool"
	// FailExists means the output file already existed and the plan
	// says pre-existing outputs fail the job.
	FailExists FailKind = "exists"
	// FailSkipped means the batch was cancelled before or during the job.
	FailSkipped FailKind = "skipped"
)

// JobResult is the recorded outcome of one matrix cell.
type JobResult struct {
	Job      Job
	Output   string // artifact filename, relative to the output dir
	Kind     FailKind
	ExitCode int
	Detail   string // launch error text or captured tool stderr
}

// OK reports whether the job produced its artifact.
func (r JobResult) OK() bool {
	return r.Kind == ""
}

// BatchResult holds one outcome per configured combination, in
// execution order. Per-job failures live here as data; they never
// abort the batch.
type BatchResult struct {
	Jobs []JobResult
}

// OK reports whether every job succeeded.
func (b BatchResult) OK() bool {
	return b.Failed() == 0
}

// Failed counts jobs that did not succeed.
func (b BatchResult) Failed() int {
	n := 0

	for _, j := range b.Jobs {
		if !j.OK() {
			n++
		}
	}

	return n
}

// Runner executes a fixture plan sequentially, one subprocess at a
// time, in the order Plan.Jobs defines.
type Runner struct {
	// Invoker runs the external tool.
	Invoker Invoker

	// Env is the parent environment every child inherits. The
	// passphrase variable is layered on top per invocation.
	Env map[string]string

	// Entropy is the payload source. Nil means crypto/rand.
	Entropy io.Reader
}

// NewRunner creates a Runner using the given invoker and parent
// environment.
func NewRunner(invoker Invoker, env map[string]string) *Runner {
	return &Runner{Invoker: invoker, Env: env}
}

// Run executes every job in the plan. It returns a fatal error only
// for conditions that make the whole batch pointless (bad plan,
// unusable output directory, entropy failure); everything else is
// recorded per job. The passphrase is zeroed on every exit path.
func (r *Runner) Run(ctx context.Context, plan *Plan) (BatchResult, error) {
	defer zero(plan.Passphrase)

	validateErr := validatePlan(plan)
	if validateErr != nil {
		return BatchResult{}, validateErr
	}

	mkdirErr := os.MkdirAll(plan.OutputDir, 0o755)
	if mkdirErr != nil {
		return BatchResult{}, fmt.Errorf("cannot create output directory: %w", mkdirErr)
	}

	var result BatchResult

	for _, job := range plan.Jobs() {
		if ctx.Err() != nil {
			result.Jobs = append(result.Jobs, JobResult{
				Job:    job,
				Output: job.OutputName(),
				Kind:   FailSkipped,
				Detail: "batch cancelled",
			})

			continue
		}

		jobResult, fatal := r.runJob(ctx, plan, job)

		result.Jobs = append(result.Jobs, jobResult)

		if fatal != nil {
			return result, fatal
		}
	}

	return result, nil
}

// runJob executes one matrix cell. The second return value is non-nil
// only for batch-fatal conditions (entropy failure).
func (r *Runner) runJob(ctx context.Context, plan *Plan, job Job) (JobResult, error) {
	res := JobResult{Job: job, Output: job.OutputName()}
	outPath := filepath.Join(plan.OutputDir, res.Output)

	existsResult, blocked := r.checkExisting(plan, res, outPath)
	if blocked {
		return existsResult, nil
	}

	raw, entropyErr := randomPayload(r.Entropy, job.Size.Bytes)
	if entropyErr != nil {
		res.Kind = FailSkipped
		res.Detail = entropyErr.Error()

		return res, entropyErr
	}

	inv := Invocation{
		Tool:  plan.Tool,
		Stdin: encodePayload(raw),
		Dir:   plan.OutputDir,
		Env:   r.childEnv(plan),
	}

	// Forwarded flags first, then the pair-specific arguments.
	inv.Args = append(inv.Args, plan.ForwardArgs...)
	inv.Args = append(inv.Args, plan.PageFormatFlag, job.Format)
	inv.Args = append(inv.Args, plan.OutputFlag, res.Output)

	jobCtx := ctx
	if plan.JobTimeout > 0 {
		var cancel context.CancelFunc

		jobCtx, cancel = context.WithTimeout(ctx, plan.JobTimeout)
		defer cancel()
	}

	invRes, invErr := r.Invoker.Invoke(jobCtx, inv)

	switch {
	case invErr == nil && invRes.ExitCode == 0:
		// Success.
	case invErr == nil:
		res.Kind = FailTool
		res.ExitCode = invRes.ExitCode
		res.Detail = string(invRes.Stderr)
	case errors.Is(invErr, context.DeadlineExceeded) && ctx.Err() == nil:
		res.Kind = FailTool
		res.ExitCode = invRes.ExitCode
		res.Detail = fmt.Sprintf("timed out after %s", plan.JobTimeout)
	case errors.Is(invErr, context.Canceled) || errors.Is(invErr, context.DeadlineExceeded):
		res.Kind = FailSkipped
		res.Detail = "batch cancelled"
	default:
		res.Kind = FailLaunch
		res.Detail = invErr.Error()
	}

	return res, nil
}

// checkExisting applies the on-existing policy. Returns the failed
// result and true when the job must not invoke the tool.
func (r *Runner) checkExisting(plan *Plan, res JobResult, outPath string) (JobResult, bool) {
	_, statErr := os.Stat(outPath)
	if statErr != nil {
		return res, false
	}

	if plan.OnExisting == OnExistingFail {
		res.Kind = FailExists
		res.Detail = "output file already exists"

		return res, true
	}

	removeErr := os.Remove(outPath)
	if removeErr != nil {
		res.Kind = FailExists
		res.Detail = fmt.Sprintf("cannot replace existing output: %v", removeErr)

		return res, true
	}

	return res, false
}

// childEnv builds the complete environment for one invocation: the
// parent environment plus the passphrase variable. Built fresh per
// call so the secret's only home outside the plan is the child process.
func (r *Runner) childEnv(plan *Plan) map[string]string {
	env := make(map[string]string, len(r.Env)+1)

	for k, v := range r.Env {
		env[k] = v
	}

	env[plan.PassphraseVar] = string(plan.Passphrase)

	return env
}

func validatePlan(plan *Plan) error {
	if plan.Tool == "" {
		return ErrToolEmpty
	}

	if plan.OutputDir == "" {
		return ErrOutputDirEmpty
	}

	if len(plan.PageFormats) == 0 {
		return ErrNoPageFormats
	}

	if len(plan.SizeClasses) == 0 {
		return ErrNoSizeClasses
	}

	if plan.OnExisting != OnExistingOverwrite && plan.OnExisting != OnExistingFail {
		return fmt.Errorf("%w, got %q", ErrBadOnExisting, plan.OnExisting)
	}

	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
