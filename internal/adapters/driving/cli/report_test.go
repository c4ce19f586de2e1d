package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chartsift/chartsift/internal/adapters/driven/storage/memory"
)

func TestReportCmd_Use(t *testing.T) {
	assert.Equal(t, "report", reportCmd.Use)
}

func TestReportCmd_ListsRuns(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"report"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "2024-03-01 10:00:05")
	assert.Contains(t, buf.String(), "3 processed: 2 succeeded, 1 failed, 0 skipped")
	assert.Contains(t, buf.String(), "/inbox/bad.pdf (extract): no text layer")
}

func TestReportCmd_JSONFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"report", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		reportJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"run_id": "run-1"`)
}

func TestReportCmd_NoRuns(t *testing.T) {
	oldRunLog := runLogStore
	runLogStore = memory.NewCatalog()
	defer func() {
		runLogStore = oldRunLog
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"report"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No runs recorded.")
}

func TestReportCmd_NotConfigured(t *testing.T) {
	oldRunLog := runLogStore
	runLogStore = nil
	defer func() {
		runLogStore = oldRunLog
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"report"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run log not configured")
}
