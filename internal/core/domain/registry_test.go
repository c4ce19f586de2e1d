package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRegistry_WithEntry tests that WithEntry records the new entry
func TestRegistry_WithEntry(t *testing.T) {
	registry := Registry{}
	entry := RegistryEntry{
		Timestamp: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Status:    StatusSuccess,
	}

	updated := registry.WithEntry("/data/visit.txt", entry)

	assert.Len(t, updated, 1)
	assert.Equal(t, StatusSuccess, updated["/data/visit.txt"].Status)
}

// TestRegistry_WithEntryCopies tests that WithEntry never mutates the
// receiver, so readers holding the old map are unaffected
func TestRegistry_WithEntryCopies(t *testing.T) {
	original := Registry{
		"/data/a.txt": {Status: StatusSuccess},
	}

	updated := original.WithEntry("/data/b.txt", RegistryEntry{Status: StatusError, Error: "extract failed"})

	assert.Len(t, original, 1)
	assert.NotContains(t, original, "/data/b.txt")
	assert.Len(t, updated, 2)
	assert.Equal(t, StatusError, updated["/data/b.txt"].Status)
}

// TestRegistry_WithEntryOverwrites tests that re-processing a path
// replaces its previous entry
func TestRegistry_WithEntryOverwrites(t *testing.T) {
	original := Registry{
		"/data/a.txt": {Status: StatusError, Error: "transient"},
	}

	updated := original.WithEntry("/data/a.txt", RegistryEntry{Status: StatusSuccess})

	assert.Len(t, updated, 1)
	assert.Equal(t, StatusSuccess, updated["/data/a.txt"].Status)
	assert.Empty(t, updated["/data/a.txt"].Error)
	// Original still holds the failed entry.
	assert.Equal(t, StatusError, original["/data/a.txt"].Status)
}

// TestRegistry_WithEntryNilReceiver tests that a nil registry can be
// extended without a prior initialisation step
func TestRegistry_WithEntryNilReceiver(t *testing.T) {
	var registry Registry

	updated := registry.WithEntry("/data/a.txt", RegistryEntry{Status: StatusSuccess})

	assert.Len(t, updated, 1)
	assert.True(t, updated.Succeeded("/data/a.txt"))
}

// TestRegistry_Succeeded tests success lookups by path
func TestRegistry_Succeeded(t *testing.T) {
	registry := Registry{
		"/data/ok.txt":     {Status: StatusSuccess},
		"/data/broken.pdf": {Status: StatusError, Error: "no text layer"},
	}

	assert.True(t, registry.Succeeded("/data/ok.txt"))
	assert.False(t, registry.Succeeded("/data/broken.pdf"))
	assert.False(t, registry.Succeeded("/data/never-seen.txt"))
}
