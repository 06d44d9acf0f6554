// Package buildinit prepares a project for remote builds: it makes sure eas.json
// exists and is committed, resolves the build context and runs the platform steps.
package buildinit

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/ariel-frischer/easbuild/internal/builder"
	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/config"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// Options are the inputs of a single init run.
type Options struct {
	ProjectDir string
	// Platform is the raw --platform value. Empty selects all platforms.
	Platform string
	Profile  string
	// Workflow is written to eas.json when the file does not exist yet.
	Workflow easjson.Workflow
	// CommitMessage is used when eas.json is committed on the user's behalf.
	CommitMessage string

	NonInteractive       bool
	SkipCredentialsCheck bool
}

// ContextFactory creates the build context.
type ContextFactory interface {
	Create(ctx context.Context, projectDir string, cfg *easjson.Config, sel platform.Selector, flags buildctx.Flags) (*buildctx.Context, error)
}

// Guard inspects and, with consent, commits the working tree.
type Guard interface {
	CheckClean(ctx context.Context) error
	CheckCleanOrRemediate(ctx context.Context, commitMessage string, opts git.RemediateOptions) error
}

// Dispatcher runs the platform steps.
type Dispatcher interface {
	Dispatch(ctx context.Context, bctx *buildctx.Context) (*builder.Report, error)
}

// Progress reports a long running step to the user.
type Progress interface {
	Start(message string)
	Succeed(message string)
	Fail(message string)
}

// Deps are the collaborators of Run.
type Deps struct {
	Contexts   ContextFactory
	Guard      Guard
	Dispatcher Dispatcher
	Progress   Progress
}

// Result describes what a successful run did.
type Result struct {
	Context *buildctx.Context
	// CreatedConfig is true when eas.json was written by this run.
	CreatedConfig bool
	// Committed is true when the working tree was committed by this run.
	Committed bool
	Report    *builder.Report
}

// Run initializes the project in opts.ProjectDir.
//
// The platform selector is validated before anything touches the disk. A dirty
// tree at the start only produces a warning; after eas.json is ensured the tree
// must be clean, or the user must agree to commit it.
func Run(ctx context.Context, opts Options, deps Deps) (*Result, error) {
	sel, err := platform.ParseSelector(opts.Platform)
	if err != nil {
		return nil, clierrors.InvalidPlatform(opts.Platform, platform.SelectorNames())
	}
	if opts.Profile == "" {
		return nil, clierrors.MissingProfile()
	}
	if opts.Workflow == "" {
		opts.Workflow = easjson.DefaultWorkflow
	}
	if opts.CommitMessage == "" {
		opts.CommitMessage = config.DefaultCommitMessage
	}

	logger := log.FromContext(ctx).With("platform", sel.String(), "profile", opts.Profile)
	ctx = log.IntoContext(ctx, logger)

	if err := preflight(ctx, deps.Guard); err != nil {
		return nil, err
	}

	cfg, err := readConfig(ctx, opts, sel)
	if err != nil {
		return nil, err
	}

	flags := buildctx.Flags{
		NonInteractive:       opts.NonInteractive,
		SkipCredentialsCheck: opts.SkipCredentialsCheck,
	}
	bctx, err := deps.Contexts.Create(ctx, opts.ProjectDir, cfg, sel, flags)
	if err != nil {
		return nil, err
	}

	res := &Result{Context: bctx}

	res.CreatedConfig, res.Committed, err = ensureConfig(ctx, opts, deps)
	if err != nil {
		return res, err
	}

	res.Report, err = deps.Dispatcher.Dispatch(ctx, bctx)
	if err != nil {
		return res, err
	}

	logger.Debug("build init finished", "created", res.CreatedConfig, "committed", res.Committed)
	return res, nil
}

// preflight warns about a dirty tree. Only a missing repository is fatal here.
func preflight(ctx context.Context, guard Guard) error {
	err := guard.CheckClean(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, git.ErrNotRepository) {
		return err
	}

	var dirty *git.DirtyTreeError
	if errors.As(err, &dirty) {
		log.FromContext(ctx).Warn("working tree has uncommitted changes", "paths", dirty.Paths())
		return nil
	}
	log.FromContext(ctx).Warn("could not check working tree", "error", err)
	return nil
}

// readConfig resolves the profile from eas.json. When the file does not exist
// yet, the profile is resolved from the document ensureConfig is about to write.
func readConfig(ctx context.Context, opts Options, sel platform.Selector) (*easjson.Config, error) {
	cfg, err := easjson.NewReader(opts.ProjectDir, sel).Read(opts.Profile)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, easjson.ErrNotFound) {
		return nil, err
	}

	log.FromContext(ctx).Debug("eas.json not found, using default profile", "workflow", opts.Workflow)
	return easjson.Resolve(easjson.DefaultDocument(opts.Profile, opts.Workflow), sel, opts.Profile)
}

// ensureConfig writes eas.json when absent and makes sure the result is committed.
func ensureConfig(ctx context.Context, opts Options, deps Deps) (created, committed bool, err error) {
	deps.Progress.Start("Creating minimal eas.json file")

	created, err = easjson.EnsureMinimal(opts.ProjectDir, opts.Profile, opts.Workflow)
	if err != nil {
		deps.Progress.Fail("")
		return false, false, err
	}

	err = deps.Guard.CheckClean(ctx)
	var dirty *git.DirtyTreeError
	switch {
	case err == nil:
		deps.Progress.Succeed("")
		return created, false, nil
	case !errors.As(err, &dirty):
		deps.Progress.Fail("")
		return created, false, err
	}

	deps.Progress.Succeed("We created a minimal eas.json file")

	remediate := git.RemediateOptions{NonInteractive: opts.NonInteractive}
	if err := deps.Guard.CheckCleanOrRemediate(ctx, opts.CommitMessage, remediate); err != nil {
		log.FromContext(ctx).Debug("commit of eas.json failed", "error", err)
		return created, false, clierrors.CommitAborted(err)
	}

	deps.Progress.Succeed(fmt.Sprintf("Successfully committed %s.", color.New(color.Bold).Sprint(easjson.FileName)))
	return created, true, nil
}
