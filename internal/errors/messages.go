package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the easbuild CLI.
// These templates keep messages consistent and actionable.

// InvalidPlatform creates an error for an unknown --platform value.
func InvalidPlatform(value string, valid []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("-p/--platform needs a valid platform: %s (got %q)", strings.Join(valid, ", "), value),
		"easbuild build init --platform <"+strings.Join(valid, "|")+"> --profile <name>",
	)
}

// MissingProfile creates an error for a missing --profile flag.
func MissingProfile() *CLIError {
	return NewArgumentErrorWithUsage(
		"--profile is required",
		"easbuild build init --profile <name>",
		"Pass the build profile to initialize, e.g. --profile release",
	)
}

// ProfileNotFound creates an error for a profile absent from eas.json.
func ProfileNotFound(cause error) *CLIError {
	return Wrap(cause, Configuration,
		"Add the profile under builds.android and/or builds.ios in eas.json",
		"Or pick an existing profile with --profile",
	)
}

// MalformedConfig creates an error for an unreadable eas.json.
func MalformedConfig(cause error) *CLIError {
	return Wrap(cause, Configuration,
		"Fix the reported problem in eas.json",
		"Every profile needs a \"workflow\" field, e.g. {\"workflow\": \"generic\"}",
	)
}

// DirtyTree creates an error for uncommitted changes in non-interactive mode.
func DirtyTree(cause error, paths []string) *CLIError {
	remediation := []string{
		"Commit or stash your changes, then run the command again",
		"Or run without --non-interactive to review and commit them",
	}
	if len(paths) > 0 {
		remediation = append(remediation, "Changed: "+strings.Join(paths, ", "))
	}
	return Wrap(cause, Git, remediation...)
}

// CommitAborted creates the terminal error for a declined or failed commit.
func CommitAborted(cause error) *CLIError {
	return &CLIError{
		Category: Git,
		Message:  "Aborting, run the command again once you're ready. Make sure to commit any changes you've made.",
		Cause:    cause,
	}
}

// NotGitRepository creates an error for a project outside version control.
func NotGitRepository(cause error) *CLIError {
	return Wrap(cause, Prerequisite,
		"easbuild needs the project to be tracked by git",
		"Initialize one with: git init && git add -A && git commit -m \"Initial commit\"",
	)
}

// AuthenticationRequired creates an error for a missing session.
func AuthenticationRequired(cause error) *CLIError {
	return Wrap(cause, Prerequisite,
		"Log in with: easbuild login",
		"In CI, set EASBUILD_USERNAME and EASBUILD_TOKEN",
	)
}

// ManifestProblem creates an error for a missing or invalid app.json.
func ManifestProblem(cause error) *CLIError {
	return Wrap(cause, Prerequisite,
		"Run the command from the project root or pass --project-dir",
		"app.json must define \"slug\"",
	)
}

// PlatformStepFailed creates an error for a failed platform configuration step.
func PlatformStepFailed(cause error) *CLIError {
	return Wrap(cause, Runtime,
		"Fix the reported problem and run the command again",
		"Platforms configured before the failure are left as they are",
	)
}
