package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/prompt"
)

// ErrDeclined is wrapped by RemediationError when the operator refuses the commit.
var ErrDeclined = errors.New("commit declined")

// DirtyTreeError reports uncommitted changes in the working tree.
type DirtyTreeError struct {
	Changes []Change
}

func (e *DirtyTreeError) Error() string {
	return fmt.Sprintf("git working tree has %d uncommitted change(s); please commit all changes before proceeding", len(e.Changes))
}

// Paths returns the changed paths.
func (e *DirtyTreeError) Paths() []string {
	paths := make([]string, len(e.Changes))
	for i, c := range e.Changes {
		paths[i] = c.Path
	}
	return paths
}

// RemediationError reports a failed or refused review-and-commit.
type RemediationError struct {
	Err error
}

func (e *RemediationError) Error() string {
	return fmt.Sprintf("aborting, run the command again once you're ready. Make sure to commit any changes you've made (%v)", e.Err)
}

func (e *RemediationError) Unwrap() error {
	return e.Err
}

// RemediateOptions controls CheckCleanOrRemediate.
type RemediateOptions struct {
	NonInteractive bool
}

// Guard classifies the working tree of a project and mediates committing it.
type Guard struct {
	dir      string
	prompter prompt.Prompter
	out      io.Writer
}

// NewGuard creates a Guard for the repository containing dir. Review output is
// written to out and confirmation is requested through p.
func NewGuard(dir string, p prompt.Prompter, out io.Writer) *Guard {
	return &Guard{dir: dir, prompter: p, out: out}
}

// CheckClean returns nil when the tree is clean and a *DirtyTreeError otherwise.
func (g *Guard) CheckClean(ctx context.Context) error {
	state, changes, err := Status(g.dir)
	if err != nil {
		return err
	}
	if state == Dirty {
		return &DirtyTreeError{Changes: changes}
	}
	return nil
}

// CheckCleanOrRemediate succeeds silently on a clean tree. On a dirty tree it
// fails with *DirtyTreeError in non-interactive mode; otherwise it lists the
// changes, asks for confirmation and commits everything under commitMessage.
// A refusal or a failed commit yields a *RemediationError.
func (g *Guard) CheckCleanOrRemediate(ctx context.Context, commitMessage string, opts RemediateOptions) error {
	err := g.CheckClean(ctx)
	var dirty *DirtyTreeError
	if err == nil || !errors.As(err, &dirty) {
		return err
	}

	if opts.NonInteractive {
		return dirty
	}

	g.review(dirty.Changes)

	ok, err := g.prompter.Confirm("Can we commit these changes for you?")
	if err != nil {
		return &RemediationError{Err: fmt.Errorf("reading confirmation: %w", err)}
	}
	if !ok {
		return &RemediationError{Err: ErrDeclined}
	}

	hash, err := CommitAll(g.dir, commitMessage)
	if err != nil {
		return &RemediationError{Err: err}
	}
	log.FromContext(ctx).Debug("committed working tree", "commit", hash.String(), "message", commitMessage)

	// The commit must leave nothing behind, e.g. files go-git failed to stage.
	if err := g.CheckClean(ctx); err != nil {
		return &RemediationError{Err: err}
	}
	return nil
}

func (g *Guard) review(changes []Change) {
	code := color.New(color.FgYellow).SprintFunc()

	var sb strings.Builder
	sb.WriteString("Please review the following changes:\n")
	for _, c := range changes {
		fmt.Fprintf(&sb, "  %s %s\n", code(c.Code()), c.Path)
	}
	sb.WriteString("\n")
	fmt.Fprint(g.out, sb.String())
}
