package domain

import "time"

// Registry entry statuses.
const (
	// StatusSuccess marks a file that was processed end to end.
	StatusSuccess = "success"

	// StatusError marks a file whose processing failed at some stage.
	StatusError = "error"
)

// RegistryEntry is the last-known processing outcome for one file.
type RegistryEntry struct {
	// Timestamp is when the outcome was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Status is StatusSuccess or StatusError.
	Status string `json:"status"`

	// Error holds the failing stage's message when Status is error.
	Error string `json:"error,omitempty"`
}

// Registry is the idempotence ledger mapping file path to its most recent
// processing outcome. A path appears at most once; the most recent entry
// wins. Updates are copy-on-write: WithEntry returns a new map and never
// mutates the receiver, so readers holding an old snapshot stay consistent.
type Registry map[string]RegistryEntry

// WithEntry returns a new Registry with the entry for path replaced.
func (r Registry) WithEntry(path string, entry RegistryEntry) Registry {
	next := make(Registry, len(r)+1)
	for k, v := range r {
		next[k] = v
	}
	next[path] = entry
	return next
}

// Succeeded reports whether path is registered with a success outcome.
// Files that succeeded are skipped on re-runs; errored or unknown files
// are (re)tried.
func (r Registry) Succeeded(path string) bool {
	entry, ok := r[path]
	return ok && entry.Status == StatusSuccess
}
