package driven

import "context"

// WorkspaceSync pushes finished records to an external workspace
// database. This is an optional collaborator - when nil, sync is
// disabled.
//
// Core hands over flat property maps keyed by canonical field name,
// one call per entity; mapping those into the workspace's own schema
// is the target's responsibility.
type WorkspaceSync interface {
	// UpsertEntry creates or updates one entry of the given kind
	// ("document", "condition", "medication", "symptom",
	// "lab_result").
	UpsertEntry(ctx context.Context, kind string, properties map[string]string) error

	// Ping validates the workspace target is reachable and the
	// configured database exists.
	Ping(ctx context.Context) error
}
