package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// ManifestFileName is written into the output directory after every run.
const ManifestFileName = "fixtures.json"

// Manifest is the machine-readable record of one batch run. CI consumes
// it instead of re-deriving outcomes from the tool's console output.
// It never contains the passphrase or payload bytes.
type Manifest struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Tool        string        `json:"tool"`
	Jobs        []ManifestJob `json:"jobs"`
}

// ManifestJob records one matrix cell's outcome.
type ManifestJob struct {
	SizeClass  string `json:"size_class"`
	Bytes      int    `json:"bytes"`
	PageFormat string `json:"page_format"`
	Output     string `json:"output"`
	Status     string `json:"status"` // "ok" or a FailKind
	ExitCode   int    `json:"exit_code,omitempty"`
}

// NewManifest builds a manifest from a finished (or aborted) batch.
// Entries keep execution order.
func NewManifest(tool string, result BatchResult, now time.Time) Manifest {
	manifest := Manifest{
		GeneratedAt: now,
		Tool:        tool,
		Jobs:        make([]ManifestJob, 0, len(result.Jobs)),
	}

	for _, job := range result.Jobs {
		entry := ManifestJob{
			SizeClass:  job.Job.Size.Name,
			Bytes:      job.Job.Size.Bytes,
			PageFormat: job.Job.Format,
			Output:     job.Output,
			Status:     "ok",
			ExitCode:   job.ExitCode,
		}

		if !job.OK() {
			entry.Status = string(job.Kind)
		}

		manifest.Jobs = append(manifest.Jobs, entry)
	}

	return manifest
}

// WriteManifest writes the manifest atomically into dir so a crash or
// cancellation mid-write never leaves a truncated file behind.
func WriteManifest(dir string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode manifest: %w", err)
	}

	data = append(data, '\n')

	path := filepath.Join(dir, ManifestFileName)

	writeErr := atomic.WriteFile(path, bytes.NewReader(data))
	if writeErr != nil {
		return fmt.Errorf("cannot write manifest: %w", writeErr)
	}

	return nil
}
