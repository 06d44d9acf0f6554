package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrompter answers Confirm with a fixed value and counts calls.
type fakePrompter struct {
	answer bool
	err    error
	calls  int
}

func (f *fakePrompter) Confirm(string) (bool, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakePrompter) Input(string) (string, error)  { return "", nil }
func (f *fakePrompter) Secret(string) (string, error) { return "", nil }

// initRepo creates a repository with one committed file and returns its path.
func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.json"), []byte(`{"expo":{"slug":"demo"}}`), 0o644))
	_, err = wt.Add("app.json")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com"},
	})
	require.NoError(t, err)

	return dir, repo
}

func commitCount(t *testing.T, repo *gogit.Repository) int {
	t.Helper()

	iter, err := repo.Log(&gogit.LogOptions{})
	require.NoError(t, err)
	n := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	}))
	return n
}

func TestGuard_CheckClean(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	g := NewGuard(dir, &fakePrompter{}, &bytes.Buffer{})

	require.NoError(t, g.CheckClean(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eas.json"), []byte(`{}`), 0o644))

	err := g.CheckClean(context.Background())
	var dirty *DirtyTreeError
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, []string{"app.json", "eas.json"}, dirty.Paths())
	assert.Equal(t, "??", dirty.Changes[1].Code())
}

func TestGuard_CheckCleanOutsideRepository(t *testing.T) {
	t.Parallel()

	g := NewGuard(t.TempDir(), &fakePrompter{}, &bytes.Buffer{})
	err := g.CheckClean(context.Background())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestGuard_CheckCleanOrRemediate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		dirty          bool
		nonInteractive bool
		answer         bool
		promptErr      error
		wantDirtyErr   bool
		wantRemediate  error
		wantPrompts    int
		wantCommits    int
	}{
		"clean tree never prompts or commits": {
			dirty:       false,
			answer:      true,
			wantPrompts: 0,
			wantCommits: 1,
		},
		"dirty non-interactive fails closed": {
			dirty:          true,
			nonInteractive: true,
			answer:         true,
			wantDirtyErr:   true,
			wantPrompts:    0,
			wantCommits:    1,
		},
		"dirty interactive accepted commits once": {
			dirty:       true,
			answer:      true,
			wantPrompts: 1,
			wantCommits: 2,
		},
		"dirty interactive declined": {
			dirty:         true,
			answer:        false,
			wantRemediate: ErrDeclined,
			wantPrompts:   1,
			wantCommits:   1,
		},
		"prompt failure": {
			dirty:         true,
			promptErr:     errors.New("stdin closed"),
			wantRemediate: errors.New("stdin closed"),
			wantPrompts:   1,
			wantCommits:   1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir, repo := initRepo(t)
			if tt.dirty {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "eas.json"), []byte(`{"builds":{}}`), 0o644))
			}

			p := &fakePrompter{answer: tt.answer, err: tt.promptErr}
			var out bytes.Buffer
			g := NewGuard(dir, p, &out)

			err := g.CheckCleanOrRemediate(context.Background(), "Create minimal eas.json", RemediateOptions{NonInteractive: tt.nonInteractive})

			switch {
			case tt.wantDirtyErr:
				var dirty *DirtyTreeError
				require.ErrorAs(t, err, &dirty)
			case tt.wantRemediate != nil:
				var rem *RemediationError
				require.ErrorAs(t, err, &rem)
				assert.Contains(t, err.Error(), "run the command again")
				assert.Contains(t, err.Error(), tt.wantRemediate.Error())
			default:
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantPrompts, p.calls)
			assert.Equal(t, tt.wantCommits, commitCount(t, repo))
			if tt.wantPrompts > 0 {
				assert.Contains(t, out.String(), "eas.json")
			}
		})
	}
}

func TestGuard_RemediationCommitsWithMessageAndCleansTree(t *testing.T) {
	t.Parallel()

	dir, repo := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eas.json"), []byte(`{"builds":{}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.json"), []byte(`{"expo":{"slug":"renamed"}}`), 0o644))

	g := NewGuard(dir, &fakePrompter{answer: true}, &bytes.Buffer{})
	require.NoError(t, g.CheckCleanOrRemediate(context.Background(), "Create minimal eas.json", RemediateOptions{}))

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Create minimal eas.json", commit.Message)

	state, changes, err := Status(dir)
	require.NoError(t, err)
	assert.Equal(t, Clean, state)
	assert.Empty(t, changes)
}

func TestGuard_RemediationStagesDeletions(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "app.json")))

	g := NewGuard(dir, &fakePrompter{answer: true}, &bytes.Buffer{})
	require.NoError(t, g.CheckCleanOrRemediate(context.Background(), "Remove manifest", RemediateOptions{}))

	state, _, err := Status(dir)
	require.NoError(t, err)
	assert.Equal(t, Clean, state)
}
