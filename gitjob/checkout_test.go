package gitjob

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// newLocalRepo creates a throwaway git repository with a single commit on
// disk, so CheckoutJob can be exercised end-to-end without any network
// access.
func newLocalRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestCheckoutJobClonesLocalRepo(t *testing.T) {
	src := newLocalRepo(t)
	dst := filepath.Join(t.TempDir(), "checkout")

	j := CheckoutJob("root.checkout", CheckoutSpec{URL: src, Dir: dst}, nil)
	res, err := j.GetResult(false)
	require.NoError(t, err)
	require.Equal(t, dst, res.Value())

	data, err := os.ReadFile(filepath.Join(dst, "README.md"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}
