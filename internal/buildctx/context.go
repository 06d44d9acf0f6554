// Package buildctx assembles the execution context shared by every build
// initialization step. A Context is built once per invocation and is read-only
// afterwards: its fields are unexported and exposed through accessors, and
// reference-typed values are copied on the way in and on the way out.
package buildctx

import (
	"errors"
	"fmt"

	"github.com/ariel-frischer/easbuild/internal/easjson"
	"github.com/ariel-frischer/easbuild/internal/identity"
	"github.com/ariel-frischer/easbuild/internal/manifest"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// Flags are the independent boolean switches of a build command.
type Flags struct {
	NonInteractive           bool
	SkipCredentialsCheck     bool
	SkipProjectConfiguration bool
}

// Context is the immutable aggregate handed to platform steps.
type Context struct {
	projectDir  string
	config      easjson.Config
	identity    identity.Identity
	accountName string
	projectName string
	manifest    manifest.Manifest
	selector    platform.Selector
	flags       Flags
}

// ProjectDir returns the project root.
func (c *Context) ProjectDir() string { return c.projectDir }

// Identity returns the authenticated identity.
func (c *Context) Identity() identity.Identity { return c.identity }

// AccountName is the manifest owner, or the identity's username when the
// manifest has no owner.
func (c *Context) AccountName() string { return c.accountName }

// ProjectName is the manifest slug.
func (c *Context) ProjectName() string { return c.projectName }

// Manifest returns a copy of the project manifest.
func (c *Context) Manifest() manifest.Manifest { return c.manifest }

// Selector returns the platform selector.
func (c *Context) Selector() platform.Selector { return c.selector }

// Flags returns the command switches.
func (c *Context) Flags() Flags { return c.flags }

// NonInteractive reports whether prompts are disabled.
func (c *Context) NonInteractive() bool { return c.flags.NonInteractive }

// ProfileName returns the name of the resolved build profile.
func (c *Context) ProfileName() string { return c.config.ProfileName }

// Profile returns a copy of the resolved profile for p. ok is false when p was
// not selected.
func (c *Context) Profile(p platform.Platform) (prof easjson.Profile, ok bool) {
	src := c.config.Profile(p)
	if src == nil {
		return easjson.Profile{}, false
	}
	return copyProfile(*src), true
}

// FullProjectName returns "@account/project".
func (c *Context) FullProjectName() string {
	return fmt.Sprintf("@%s/%s", c.accountName, c.projectName)
}

// Builder collects the inputs of a Context. Build validates them and emits the
// Context; the Builder can be discarded afterwards.
type Builder struct {
	projectDir string
	config     *easjson.Config
	identity   *identity.Identity
	manifest   *manifest.Manifest
	selector   platform.Selector
	flags      Flags
}

// NewBuilder starts a Context for projectDir.
func NewBuilder(projectDir string) *Builder {
	return &Builder{projectDir: projectDir}
}

// WithConfig sets the resolved build profile.
func (b *Builder) WithConfig(cfg *easjson.Config) *Builder {
	b.config = cfg
	return b
}

// WithIdentity sets the authenticated identity.
func (b *Builder) WithIdentity(id *identity.Identity) *Builder {
	b.identity = id
	return b
}

// WithManifest sets the project manifest.
func (b *Builder) WithManifest(m *manifest.Manifest) *Builder {
	b.manifest = m
	return b
}

// WithSelector sets the platform selector.
func (b *Builder) WithSelector(sel platform.Selector) *Builder {
	b.selector = sel
	return b
}

// WithFlags sets the command switches.
func (b *Builder) WithFlags(flags Flags) *Builder {
	b.flags = flags
	return b
}

// Build returns the Context, or an error naming the first missing input.
func (b *Builder) Build() (*Context, error) {
	switch {
	case b.projectDir == "":
		return nil, errors.New("building context: project directory is required")
	case b.config == nil:
		return nil, errors.New("building context: build profile is required")
	case b.identity == nil:
		return nil, errors.New("building context: identity is required")
	case b.manifest == nil:
		return nil, errors.New("building context: manifest is required")
	case b.selector.Platforms() == nil:
		return nil, fmt.Errorf("building context: invalid platform selector %q", b.selector)
	}

	for _, p := range b.selector.Platforms() {
		if b.config.Profile(p) == nil {
			return nil, fmt.Errorf("building context: no %s profile resolved", p.DisplayName())
		}
	}

	ctx := &Context{
		projectDir:  b.projectDir,
		config:      copyConfig(*b.config),
		identity:    *b.identity,
		accountName: AccountName(b.manifest, b.identity),
		projectName: b.manifest.Slug,
		manifest:    *b.manifest,
		selector:    b.selector,
		flags:       b.flags,
	}
	return ctx, nil
}

// AccountName derives the account a project belongs to: the manifest owner
// when set, else the authenticated username.
func AccountName(m *manifest.Manifest, id *identity.Identity) string {
	if m.Owner != "" {
		return m.Owner
	}
	return id.Username
}

func copyConfig(cfg easjson.Config) easjson.Config {
	if cfg.Android != nil {
		p := copyProfile(*cfg.Android)
		cfg.Android = &p
	}
	if cfg.IOS != nil {
		p := copyProfile(*cfg.IOS)
		cfg.IOS = &p
	}
	return cfg
}

func copyProfile(p easjson.Profile) easjson.Profile {
	if p.Extra != nil {
		extra := make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		p.Extra = extra
	}
	return p
}
