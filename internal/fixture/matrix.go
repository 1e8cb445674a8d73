// Package fixture drives a matrix of encrypted-PDF test fixtures: every
// configured size class crossed with every configured page format, one
// invocation of the external document tool per pair.
package fixture

import "time"

// SizeClass names a payload tier and the number of random bytes to
// generate for it.
type SizeClass struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// Job is one (size class, page format) cell of the matrix.
type Job struct {
	Size   SizeClass
	Format string
}

// OutputName returns the deterministic artifact name for the job.
// The pairing of size class and page format is exhaustive and
// non-repeating, so names never collide within one run.
func (j Job) OutputName() string {
	return j.Format + "-" + j.Size.Name + ".pdf"
}

// Jobs enumerates the matrix in execution order: size classes outer
// (in the given order), page formats inner. The order is part of the
// tool's contract; `fixmat plan` prints exactly this sequence.
func Jobs(sizes []SizeClass, formats []string) []Job {
	jobs := make([]Job, 0, len(sizes)*len(formats))

	for _, size := range sizes {
		for _, format := range formats {
			jobs = append(jobs, Job{Size: size, Format: format})
		}
	}

	return jobs
}

// Plan holds everything one batch run needs. It is built from config
// plus CLI overrides and handed to Runner.Run; the passphrase lives
// here and nowhere else (no globals), and is zeroed when the run ends.
type Plan struct {
	SizeClasses []SizeClass
	PageFormats []string

	// Tool invocation contract.
	Tool           string
	PageFormatFlag string
	OutputFlag     string
	PassphraseVar  string
	ForwardArgs    []string

	OutputDir  string
	OnExisting string
	JobTimeout time.Duration

	// Passphrase is injected into each child's environment under
	// PassphraseVar. Kept as a byte slice so the runner can zero it.
	Passphrase []byte
}

// Jobs returns the plan's matrix in execution order.
func (p *Plan) Jobs() []Job {
	return Jobs(p.SizeClasses, p.PageFormats)
}
