package driving

import "context"

// WorkspaceSyncer pushes processed records to the configured external
// workspace.
type WorkspaceSyncer interface {
	// SyncRecords pushes every persisted record and its entities.
	// Returns how many workspace entries were upserted. Per-entry
	// failures abort the sync; partial pushes are safe to resume
	// because entries are upserts keyed by stable ids.
	SyncRecords(ctx context.Context) (int, error)
}
