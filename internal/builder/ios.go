package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/credentials"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// IOSStep configures iOS projects and ensures signing credentials.
type IOSStep struct {
	Credentials credentials.Source
}

// Platform implements Step.
func (IOSStep) Platform() platform.Platform { return platform.IOS }

// EnsureCredentials implements CredentialsEnsurer.
func (s IOSStep) EnsureCredentials(ctx context.Context, bctx *buildctx.Context) error {
	src := s.Credentials
	if src == nil {
		src = credentials.LocalSource{}
	}
	return src.EnsureIOS(ctx, credentials.Request{
		ProjectDir:     bctx.ProjectDir(),
		AccountName:    bctx.AccountName(),
		ProjectName:    bctx.ProjectName(),
		BundleID:       bctx.Manifest().IOS.BundleIdentifier,
		NonInteractive: bctx.NonInteractive(),
	})
}

// ConfigureProject implements Step. Generic projects must contain an Xcode project.
func (IOSStep) ConfigureProject(_ context.Context, bctx *buildctx.Context) error {
	prof, ok := bctx.Profile(platform.IOS)
	if !ok || prof.Workflow != easjson.WorkflowGeneric {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(bctx.ProjectDir(), "ios", "*.xcodeproj"))
	if err != nil {
		return fmt.Errorf("looking for Xcode project: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no Xcode project found in %s; the generic workflow needs a native iOS project", filepath.Join("ios", "*.xcodeproj"))
	}
	return nil
}

// PrepareJob implements Step.
func (IOSStep) PrepareJob(_ context.Context, bctx *buildctx.Context, archiveURL string) (*Job, error) {
	return newJob(bctx, platform.IOS, archiveURL)
}
