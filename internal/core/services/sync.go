package services

import (
	"context"
	"fmt"

	"github.com/chartsift/chartsift/internal/core/domain"
	"github.com/chartsift/chartsift/internal/core/ports/driven"
	"github.com/chartsift/chartsift/internal/core/ports/driving"
	"github.com/chartsift/chartsift/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.WorkspaceSyncer = (*SyncService)(nil)

// SyncService pushes persisted records to the external workspace.
type SyncService struct {
	artifacts driven.ArtifactStore
	workspace driven.WorkspaceSync
}

// NewSyncService creates a new workspace sync service. The workspace
// parameter is optional (can be nil); syncing without one reports
// domain.ErrSyncUnavailable.
func NewSyncService(artifacts driven.ArtifactStore, workspace driven.WorkspaceSync) *SyncService {
	return &SyncService{
		artifacts: artifacts,
		workspace: workspace,
	}
}

// SyncRecords pushes every persisted record and its entities to the
// workspace, returning how many entries were upserted. The first
// failing entry aborts the sync; because entries are upserts keyed by
// stable ids, rerunning after a partial push is safe.
func (s *SyncService) SyncRecords(ctx context.Context) (int, error) {
	if s.workspace == nil {
		return 0, fmt.Errorf("%w: no workspace configured", domain.ErrSyncUnavailable)
	}
	if err := s.workspace.Ping(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSyncUnavailable, err)
	}

	records, err := s.artifacts.ListRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	logger.Section("Workspace Sync")
	logger.Info("Syncing %d records", len(records))

	count := 0
	for _, record := range records {
		for _, entry := range FlattenRecord(record) {
			if err := s.workspace.UpsertEntry(ctx, entry.Kind, entry.Properties); err != nil {
				return count, fmt.Errorf("upserting %s %q: %w", entry.Kind, entry.Properties["key"], err)
			}
			count++
		}
		logger.Debug("Synced %s", record.DocumentID)
	}

	logger.Info("Workspace sync complete: %d entries", count)
	return count, nil
}
