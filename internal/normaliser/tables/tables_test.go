package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests that the embedded tables parse and are populated
func TestLoad(t *testing.T) {
	tbl, err := Load()

	require.NoError(t, err)
	assert.NotEmpty(t, tbl.Specialties)
	assert.NotEmpty(t, tbl.ConditionCategories)
	assert.NotEmpty(t, tbl.Conditions)
	assert.NotEmpty(t, tbl.ConditionCodes)
	assert.NotEmpty(t, tbl.Medications)
	assert.NotEmpty(t, tbl.LabTests)
	assert.NotEmpty(t, tbl.LabUnits)
}

// TestCanonicalCondition tests condition variant lookups
func TestCanonicalCondition(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	t.Run("known variant", func(t *testing.T) {
		std, ok := tbl.CanonicalCondition("High Blood Pressure")
		assert.True(t, ok)
		assert.Equal(t, "hypertension", std)
	})

	t.Run("abbreviation", func(t *testing.T) {
		std, ok := tbl.CanonicalCondition("T2DM")
		assert.True(t, ok)
		assert.Equal(t, "type 2 diabetes mellitus", std)
	})

	t.Run("unknown", func(t *testing.T) {
		_, ok := tbl.CanonicalCondition("restless elbow syndrome")
		assert.False(t, ok)
	})
}

// TestConditionCode tests taxonomy code lookups
func TestConditionCode(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "I10", tbl.ConditionCode("hypertension"))
	assert.Equal(t, "E11.9", tbl.ConditionCode("Type 2 Diabetes Mellitus"))
	// Absence is not an error.
	assert.Empty(t, tbl.ConditionCode("unknown condition"))
}

// TestCanonicalMedication tests brand-to-generic mapping
func TestCanonicalMedication(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	t.Run("brand name", func(t *testing.T) {
		std, ok := tbl.CanonicalMedication("Lipitor")
		assert.True(t, ok)
		assert.Equal(t, "atorvastatin", std)
	})

	t.Run("generic maps to itself", func(t *testing.T) {
		std, ok := tbl.CanonicalMedication("metformin")
		assert.True(t, ok)
		assert.Equal(t, "metformin", std)
	})

	t.Run("unknown", func(t *testing.T) {
		_, ok := tbl.CanonicalMedication("placebonol")
		assert.False(t, ok)
	})
}

// TestCanonicalLabTest tests lab label canonicalisation with passthrough
func TestCanonicalLabTest(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "glucose", tbl.CanonicalLabTest("GLU"))
	assert.Equal(t, "hemoglobin a1c", tbl.CanonicalLabTest("HbA1c"))
	// Unknown labels pass through trimmed, not dropped.
	assert.Equal(t, "Mystery Panel", tbl.CanonicalLabTest("  Mystery Panel "))
}

// TestCanonicalLabUnit tests unit spelling canonicalisation
func TestCanonicalLabUnit(t *testing.T) {
	tbl, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mg/dL", tbl.CanonicalLabUnit("MG/DL"))
	assert.Equal(t, "K/uL", tbl.CanonicalLabUnit("x10E3/uL"))
	assert.Equal(t, "furlongs", tbl.CanonicalLabUnit("furlongs"))
}
