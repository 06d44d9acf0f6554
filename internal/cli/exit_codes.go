package cli

// Exit codes for the easbuild CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure, e.g. a platform step failed
	ExitFailure = 1

	// ExitGitState indicates uncommitted changes or a refused commit
	ExitGitState = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates a missing login, manifest or repository
	ExitMissingDependencies = 4

	// ExitInvalidConfig indicates an unreadable eas.json or tool config
	ExitInvalidConfig = 5

	// ExitInterrupted indicates the command was cancelled
	ExitInterrupted = 130
)
