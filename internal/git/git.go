// Package git inspects and commits the project working tree for easbuild. It uses
// the go-git library so no git CLI installation is required.
package git

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned when the project directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Default commit identity used when git config has no user.name / user.email.
const (
	DefaultAuthorName  = "easbuild"
	DefaultAuthorEmail = "easbuild@localhost"
)

// openRepo opens the git repository containing path, walking up the directory
// tree to find .git. If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return repo, nil
}

// IsRepository reports whether dir is inside a git repository.
func IsRepository(dir string) bool {
	_, err := openRepo(dir)
	result := err == nil
	logDebug("[git] IsRepository(%s): %v", dir, result)
	return result
}

// RepositoryRoot returns the absolute path of the worktree root containing dir.
func RepositoryRoot(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// CommitAll stages every change in the worktree containing dir, including
// deletions and untracked files, and commits it with message. It returns the
// new commit hash.
func CommitAll(dir, message string) (plumbing.Hash, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("reading worktree status: %w", err)
	}
	for path, fs := range status {
		if err := stage(worktree, path, fs); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: commitAuthor(repo),
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing changes: %w", err)
	}

	logDebug("[git] CommitAll: created %s %q", hash, message)
	return hash, nil
}

// stage records one status entry in the index. Deleted files are removed from it.
func stage(worktree *git.Worktree, path string, fs *git.FileStatus) error {
	switch {
	case fs.Worktree == git.Unmodified:
		return nil
	case fs.Worktree == git.Deleted:
		if _, err := worktree.Remove(path); err != nil {
			return fmt.Errorf("staging deletion of %s: %w", path, err)
		}
	default:
		if _, err := worktree.Add(path); err != nil {
			return fmt.Errorf("staging %s: %w", path, err)
		}
	}
	return nil
}

// commitAuthor reads user.name and user.email from the repository config merged
// with the user's global config.
func commitAuthor(repo *git.Repository) *object.Signature {
	sig := &object.Signature{
		Name:  DefaultAuthorName,
		Email: DefaultAuthorEmail,
		When:  time.Now(),
	}

	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		logDebug("[git] reading git config: %v", err)
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
