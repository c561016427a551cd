package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTest_Passing(t *testing.T) {
	stdout, _, err := execute(t, "test", "testdata/scenarios", "--format", "json")
	require.NoError(t, err)

	resp, res := decodeResponse[TestResult](t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Passed)
	assert.Zero(t, res.Failed)

	require.Len(t, res.Scenarios, 2)
	assert.Equal(t, "overlapping_steps", res.Scenarios[0].Name)
	assert.Empty(t, res.Scenarios[0].Golden)
	assert.Equal(t, "reference_tour", res.Scenarios[1].Name)
	assert.Equal(t, "match", res.Scenarios[1].Golden)
}

func TestTest_Text(t *testing.T) {
	stdout, _, err := execute(t, "test", "testdata/scenarios", "--filter", "reference*")
	require.NoError(t, err)
	assert.Equal(t, "✓ reference_tour\n\n1 passed, 0 failed, 1 total\n", stdout)
}

func TestTest_NoScenarios(t *testing.T) {
	stdout, _, err := execute(t, "test", "testdata/scenarios", "--filter", "nothing*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", stdout)
}

func TestTest_Failing(t *testing.T) {
	stdout, _, err := execute(t, "test", "testdata/scenarios_failing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 scenario(s) failed")

	assert.Contains(t, stdout, "✗ broken.yaml\n  failed to load scenario:")
	assert.Contains(t, stdout, "✗ wrong_offset\n  assertions[0]: Assertion failed: step_at")
	assert.Contains(t, stdout, "    Actual: started at 2s")
	assert.Contains(t, stdout, "0 passed, 2 failed, 2 total")
}

func TestTest_FailingJSON(t *testing.T) {
	stdout, _, err := execute(t, "test", "testdata/scenarios_failing", "--format", "json")
	require.Error(t, err)

	resp, _ := decodeResponse[any](t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
	assert.Equal(t, "2 scenario(s) failed", resp.Error.Message)
}

func TestTest_UpdateGolden(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile("testdata/scenarios/reference_tour.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reference_tour.yaml"), src, 0o644))

	stdout, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ reference_tour (golden updated)")

	got, err := os.ReadFile(filepath.Join(dir, "golden", "reference_tour.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/scenarios/golden/reference_tour.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	// A drifted golden file fails the run.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "reference_tour.golden"), []byte("stale\n"), 0o644))
	stdout, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTest_MissingDir(t *testing.T) {
	stdout, _, err := execute(t, "test", "testdata/nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]: scenarios directory not found")
}
