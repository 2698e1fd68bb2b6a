// Package artifact captures declared output files from a job's workspace
// into an artifact directory, recording a sniffed content type for each
// one so downstream tooling doesn't have to guess from the file extension.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/h2non/filetype"
)

// Entry describes one captured artifact.
type Entry struct {
	// RelPath is the path relative to the workspace root the pattern
	// matched.
	RelPath string
	// ContentType is the sniffed MIME type, or "application/octet-stream"
	// if filetype couldn't identify it.
	ContentType string
	// Size is the file size in bytes.
	Size int64
}

// Collector copies files matching a set of glob patterns (doublestar
// syntax, so "**/*.log" works) from a workspace into an output directory.
type Collector struct {
	patterns []string
}

// New builds a Collector for the given doublestar glob patterns.
func New(patterns ...string) *Collector {
	return &Collector{patterns: patterns}
}

// Collect walks workspaceDir for files matching any configured pattern and
// copies each one into outDir, preserving its relative path.
func (c *Collector) Collect(workspaceDir, outDir string) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)

	for _, pattern := range c.patterns {
		matches, err := doublestar.Glob(filepath.Join(workspaceDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("artifact: bad pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			rel, err := filepath.Rel(workspaceDir, match)
			if err != nil || seen[rel] {
				continue
			}
			seen[rel] = true

			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			entry, err := c.copyOne(match, rel, outDir, info.Size())
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (c *Collector) copyOne(src, rel, outDir string, size int64) (Entry, error) {
	dst := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return Entry{}, err
	}

	in, err := os.Open(src)
	if err != nil {
		return Entry{}, err
	}
	defer in.Close()

	head := make([]byte, 261)
	n, _ := in.Read(head)
	contentType := "application/octet-stream"
	if kind, err := filetype.Match(head[:n]); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return Entry{}, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return Entry{}, err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return Entry{}, err
	}

	return Entry{RelPath: rel, ContentType: contentType, Size: size}, nil
}
