package buildctx

import (
	"context"
	"fmt"

	"github.com/ariel-frischer/easbuild/internal/easjson"
	"github.com/ariel-frischer/easbuild/internal/identity"
	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/manifest"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// Factory resolves the external inputs of a Context.
type Factory struct {
	Identity  identity.Provider
	Manifests manifest.Reader
}

// Create resolves the identity and manifest and returns the Context. Errors from
// the identity provider and manifest reader are returned unchanged; no Context is
// returned alongside an error.
func (f *Factory) Create(ctx context.Context, projectDir string, cfg *easjson.Config, sel platform.Selector, flags Flags) (*Context, error) {
	id, err := f.Identity.EnsureLoggedIn(ctx, flags.NonInteractive)
	if err != nil {
		return nil, err
	}

	m, err := f.Manifests.Read(projectDir)
	if err != nil {
		return nil, err
	}

	bctx, err := NewBuilder(projectDir).
		WithConfig(cfg).
		WithIdentity(id).
		WithManifest(m).
		WithSelector(sel).
		WithFlags(flags).
		Build()
	if err != nil {
		return nil, fmt.Errorf("creating build context: %w", err)
	}

	log.FromContext(ctx).Debug("build context ready",
		"project", bctx.FullProjectName(),
		"platform", sel,
		"profile", cfg.ProfileName,
	)
	return bctx, nil
}
