// Package testutil provides test helpers shared by easbuild package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Author signs commits made by the helpers.
var Author = &object.Signature{Name: "Test", Email: "test@test.com"}

// InitRepo creates a repository in a temp dir with files committed in a
// single "Initial commit". An empty files map still produces the commit.
func InitRepo(t *testing.T, files map[string]string) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		WriteFile(t, dir, name, content)
		_, err = wt.Add(name)
		require.NoError(t, err)
	}
	_, err = wt.Commit("Initial commit", &gogit.CommitOptions{
		Author:            Author,
		AllowEmptyCommits: true,
	})
	require.NoError(t, err)

	return dir, repo
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Commits returns the history of HEAD, newest first.
func Commits(t *testing.T, repo *gogit.Repository) []*object.Commit {
	t.Helper()

	iter, err := repo.Log(&gogit.LogOptions{})
	require.NoError(t, err)
	var commits []*object.Commit
	require.NoError(t, iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		return nil
	}))
	return commits
}
