package cli

import (
	"context"
	"errors"

	"github.com/ariel-frischer/easbuild/internal/builder"
	"github.com/ariel-frischer/easbuild/internal/config"
	"github.com/ariel-frischer/easbuild/internal/credentials"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/identity"
	"github.com/ariel-frischer/easbuild/internal/manifest"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// toCLIError maps domain errors to a CLIError with remediation steps.
// Errors that already carry a CLIError are returned as is.
func toCLIError(err error) *clierrors.CLIError {
	if err == nil {
		return nil
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var (
		selectorErr *platform.InvalidSelectorError
		notFound    *easjson.ProfileNotFoundError
		malformed   *easjson.MalformedConfigError
		dirty       *git.DirtyTreeError
		authErr     *identity.AuthenticationRequiredError
		missingApp  *manifest.NotFoundError
		invalidApp  *manifest.InvalidError
		credsErr    *credentials.InvalidError
		stepErr     *builder.StepError
		configErr   *config.ValidationError
	)

	switch {
	case errors.As(err, &selectorErr):
		return clierrors.InvalidPlatform(selectorErr.Value, platform.SelectorNames())
	case errors.As(err, &notFound):
		return clierrors.ProfileNotFound(err)
	case errors.As(err, &malformed):
		return clierrors.MalformedConfig(err)
	case errors.As(err, &dirty):
		return clierrors.DirtyTree(err, dirty.Paths())
	case errors.Is(err, git.ErrNotRepository):
		return clierrors.NotGitRepository(err)
	case errors.As(err, &authErr):
		return clierrors.AuthenticationRequired(err)
	case errors.As(err, &missingApp), errors.As(err, &invalidApp):
		return clierrors.ManifestProblem(err)
	case errors.As(err, &credsErr), errors.As(err, &stepErr):
		return clierrors.PlatformStepFailed(err)
	case errors.As(err, &configErr):
		return clierrors.Wrap(err, clierrors.Configuration, "Fix the reported key in your easbuild config")
	default:
		return clierrors.Wrap(err, clierrors.Runtime)
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch toCLIError(err).Category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Configuration:
		return ExitInvalidConfig
	case clierrors.Prerequisite:
		return ExitMissingDependencies
	case clierrors.Git:
		return ExitGitState
	default:
		return ExitFailure
	}
}
