package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePipeline = `
runner "demo" {
  stage "build" {
    canary   = false
    parallel = false

    job "compile" {
      command = "echo compiling"
    }
  }
}
`

func writeSamplePipeline(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "boerewors.hcl")
	require.NoError(t, os.WriteFile(path, []byte(samplePipeline), 0644))
	return dir, path
}

func TestNewBuildsAndRunsAppFromConfig(t *testing.T) {
	dir, path := writeSamplePipeline(t)

	config := &Config{
		PipelineFile: path,
		WorkDir:      dir,
	}

	a, err := New(config)
	require.NoError(t, err)
	require.NotEmpty(t, a.runID)

	ok, err := a.Run()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunWritesReportWhenConfigured(t *testing.T) {
	dir, path := writeSamplePipeline(t)
	reportPath := filepath.Join(dir, "report.yaml")

	config := &Config{
		PipelineFile: path,
		WorkDir:      dir,
		ReportFile:   reportPath,
	}

	a, err := New(config)
	require.NoError(t, err)

	ok, err := a.Run()
	require.NoError(t, err)
	require.True(t, ok)

	_, err = os.Stat(reportPath)
	require.NoError(t, err)
}

func TestNewStatusServerRespectsConfig(t *testing.T) {
	require.Nil(t, NewStatusServer(&Config{}))
	require.NotNil(t, NewStatusServer(&Config{StatusAddr: ":0"}))
}
