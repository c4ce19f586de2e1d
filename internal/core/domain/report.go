package domain

import "time"

// Pipeline stages, as recorded in failure reports and registry errors.
const (
	StageSelect    = "select"
	StageExtract   = "extract"
	StageNormalise = "normalise"
	StageEmbed     = "embed"
	StagePersist   = "persist"
)

// FileOutcome is the result of processing a single file, handed from a
// worker back to the coordinating goroutine. Only the coordinator turns
// outcomes into registry entries.
type FileOutcome struct {
	// Path is the file that was processed.
	Path string `json:"path"`

	// Status is StatusSuccess or StatusError.
	Status string `json:"status"`

	// Stage is the pipeline stage that failed, empty on success.
	Stage string `json:"stage,omitempty"`

	// Error is the failing stage's message, empty on success.
	Error string `json:"error,omitempty"`

	// EntityCounts tallies the entities found, empty on failure.
	EntityCounts map[string]int `json:"entity_counts,omitempty"`
}

// FileFailure describes one failed file in a run report.
type FileFailure struct {
	// Path is the file that failed.
	Path string `json:"path"`

	// Stage is the pipeline stage that failed.
	Stage string `json:"stage"`

	// Error is the failure message.
	Error string `json:"error"`
}

// RunReport summarises one orchestrator batch.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Total is the number of files attempted (skipped files excluded).
	Total int `json:"total"`

	// Succeeded and Failed partition Total.
	Succeeded int `json:"success"`
	Failed    int `json:"failed"`

	// Skipped counts files already registered as successful.
	Skipped int `json:"skipped"`

	// EntityCounts aggregates per-entity-type counts across all
	// successfully processed files.
	EntityCounts map[string]int `json:"entity_counts"`

	// Failures lists each failed file with its stage and message.
	Failures []FileFailure `json:"failures,omitempty"`
}

// Merge folds one file outcome into the report totals.
func (r *RunReport) Merge(outcome FileOutcome) {
	r.Total++
	switch outcome.Status {
	case StatusSuccess:
		r.Succeeded++
		if r.EntityCounts == nil {
			r.EntityCounts = make(map[string]int)
		}
		for k, n := range outcome.EntityCounts {
			r.EntityCounts[k] += n
		}
	case StatusError:
		r.Failed++
		r.Failures = append(r.Failures, FileFailure{
			Path:  outcome.Path,
			Stage: outcome.Stage,
			Error: outcome.Error,
		})
	}
}
