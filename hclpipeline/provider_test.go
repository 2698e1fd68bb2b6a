package hclpipeline

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
      command = "echo ${upper("building")}"
    }
    job "test" {
      command = "echo testing"
    }
  }
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(samplePipeline), 0644))
	return path
}

func TestLoadParsesStagesAndJobs(t *testing.T) {
	path := writeSample(t)
	p, err := Load(path, "", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "demo", p.Name())
	require.Len(t, p.Stages(), 1)
	require.False(t, p.Stages()[0].IsCanary)
	require.False(t, p.Stages()[0].AllowParallelExecution)
}

func TestLoadRunsParsedJobs(t *testing.T) {
	path := writeSample(t)
	p, err := Load(path, "", nil, nil)
	require.NoError(t, err)

	st := p.Stages()[0]
	it := st.Jobs(0)
	var ran int
	for {
		j, ok := it()
		if !ok {
			break
		}
		_, err := j.GetResult(false)
		require.NoError(t, err)
		ran++
	}
	require.Equal(t, 2, ran)
}
