// Package builder holds the per-platform build steps and the dispatcher that
// runs them during initialization.
//
// Steps share a capability set. Every step configures the project and prepares
// jobs; a step that also needs signing credentials implements CredentialsEnsurer.
// The dispatcher checks for that capability, never for a concrete type.
package builder

import (
	"context"

	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// Step is the capability set shared by all platform builders.
type Step interface {
	// Platform returns the platform this step builds.
	Platform() platform.Platform
	// ConfigureProject prepares the native project for remote builds.
	ConfigureProject(ctx context.Context, bctx *buildctx.Context) error
	// PrepareJob describes a build of the project archive at archiveURL.
	PrepareJob(ctx context.Context, bctx *buildctx.Context, archiveURL string) (*Job, error)
}

// CredentialsEnsurer is implemented by steps that need signing credentials
// before the project is configured.
type CredentialsEnsurer interface {
	EnsureCredentials(ctx context.Context, bctx *buildctx.Context) error
}

// Phase names a stage of a platform step.
type Phase string

const (
	PhaseCredentials Phase = "credentials"
	PhaseConfigure   Phase = "configure"
)

// State tracks a platform step through the dispatcher.
type State int

const (
	NotStarted State = iota
	CredentialsReady
	Configured
	Done
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case CredentialsReady:
		return "credentials-ready"
	case Configured:
		return "configured"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
