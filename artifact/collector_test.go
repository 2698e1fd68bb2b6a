package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectorCapturesMatchingFiles(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "logs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "logs", "build.log"), []byte("log line\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "notes.txt"), []byte("irrelevant"), 0644))
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	require.NoError(t, os.WriteFile(filepath.Join(ws, "out.png"), png, 0644))

	out := t.TempDir()
	c := New("logs/**/*.log", "*.png")
	entries, err := c.Collect(ws, out)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	data, err := os.ReadFile(filepath.Join(out, "logs", "build.log"))
	require.NoError(t, err)
	require.Equal(t, "log line\n", string(data))

	var foundPNG bool
	for _, e := range entries {
		if e.RelPath == "out.png" {
			foundPNG = true
			require.Equal(t, "image/png", e.ContentType)
		}
	}
	require.True(t, foundPNG)
}

func TestCollectorNoMatchesReturnsEmpty(t *testing.T) {
	ws := t.TempDir()
	out := t.TempDir()
	c := New("nothing/**/*.xyz")
	entries, err := c.Collect(ws, out)
	require.NoError(t, err)
	require.Empty(t, entries)
}
