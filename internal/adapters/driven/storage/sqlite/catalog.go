package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// Upsert inserts or replaces a catalog row by document id.
func (s *Store) Upsert(ctx context.Context, doc domain.CatalogDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, file_name, detected_type, detected_date, confidence, entity_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			file_name = excluded.file_name,
			detected_type = excluded.detected_type,
			detected_date = excluded.detected_date,
			confidence = excluded.confidence,
			entity_count = excluded.entity_count,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Path, doc.FileName, doc.DetectedType, doc.DetectedDate,
		doc.Confidence, doc.EntityCount, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}
	return nil
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.CatalogDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, file_name, detected_type, detected_date, confidence, entity_count
		FROM documents WHERE id = ?
	`, id)

	var doc domain.CatalogDocument
	if err := row.Scan(&doc.ID, &doc.Path, &doc.FileName, &doc.DetectedType,
		&doc.DetectedDate, &doc.Confidence, &doc.EntityCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	return &doc, nil
}

// List returns all documents ordered by detected date, newest first.
// Documents without a detected date sort last, by file name.
func (s *Store) List(ctx context.Context) ([]domain.CatalogDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, file_name, detected_type, detected_date, confidence, entity_count
		FROM documents
		ORDER BY
			CASE WHEN detected_date = '' THEN 1 ELSE 0 END,
			detected_date DESC,
			file_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.CatalogDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.CatalogDocument
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.FileName, &doc.DetectedType,
			&doc.DetectedDate, &doc.Confidence, &doc.EntityCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}
