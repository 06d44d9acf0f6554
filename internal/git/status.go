package git

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
)

// TreeState classifies a working tree.
type TreeState int

const (
	Clean TreeState = iota
	Dirty
)

// String returns the lower-case state name.
func (s TreeState) String() string {
	if s == Clean {
		return "clean"
	}
	return "dirty"
}

// Change is one modified, added, deleted or untracked path.
type Change struct {
	Path string
	// Staging and Worktree are the porcelain status codes, e.g. 'M', 'A', 'D', '?'.
	Staging  byte
	Worktree byte
}

// Code returns the two-letter porcelain status, e.g. " M" or "??".
func (c Change) Code() string {
	return string([]byte{c.Staging, c.Worktree})
}

// Status inspects the worktree containing dir. The changes are sorted by path.
func Status(dir string) (TreeState, []Change, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return Dirty, nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Dirty, nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return Dirty, nil, fmt.Errorf("reading worktree status: %w", err)
	}

	changes := make([]Change, 0, len(status))
	for path, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		changes = append(changes, Change{
			Path:     path,
			Staging:  byte(fs.Staging),
			Worktree: byte(fs.Worktree),
		})
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})

	state := Clean
	if len(changes) > 0 {
		state = Dirty
	}
	logDebug("[git] Status(%s): %s, %d changes", dir, state, len(changes))
	return state, changes, nil
}
