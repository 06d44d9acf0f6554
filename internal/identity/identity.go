// Package identity resolves the authenticated user for a command. A session
// comes from the environment (EASBUILD_USERNAME / EASBUILD_TOKEN), from the
// session file written by `easbuild login`, or from an interactive login.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/prompt"
)

// EnvPrefix prefixes the environment variables read for a session.
const EnvPrefix = "EASBUILD_"

// Identity is the authenticated user.
type Identity struct {
	Username string
}

// AuthenticationRequiredError is returned when no session exists and none can be established.
type AuthenticationRequiredError struct {
	Reason string
}

func (e *AuthenticationRequiredError) Error() string {
	return "authentication required: " + e.Reason
}

// Provider resolves the authenticated identity.
type Provider interface {
	// EnsureLoggedIn returns the current identity. In non-interactive mode it
	// never prompts and fails with *AuthenticationRequiredError when no session exists.
	EnsureLoggedIn(ctx context.Context, nonInteractive bool) (*Identity, error)
}

type envSession struct {
	Username string `env:"USERNAME"`
	Token    string `env:"TOKEN"`
}

// SessionProvider is the default Provider.
type SessionProvider struct {
	store    *SessionStore
	prompter prompt.Prompter
	lookuper envconfig.Lookuper
}

// NewSessionProvider creates a provider backed by store. p may be nil when the
// caller never runs interactively.
func NewSessionProvider(store *SessionStore, p prompt.Prompter) *SessionProvider {
	return &SessionProvider{store: store, prompter: p, lookuper: envconfig.OsLookuper()}
}

// WithLookuper replaces the environment source, for tests.
func (sp *SessionProvider) WithLookuper(l envconfig.Lookuper) *SessionProvider {
	sp.lookuper = l
	return sp
}

// EnsureLoggedIn implements Provider.
func (sp *SessionProvider) EnsureLoggedIn(ctx context.Context, nonInteractive bool) (*Identity, error) {
	logger := log.FromContext(ctx)

	env, err := sp.fromEnv(ctx)
	if err != nil {
		return nil, err
	}
	if env != nil {
		logger.Debug("using session from environment", "username", env.Username)
		return &Identity{Username: env.Username}, nil
	}

	sess, err := sp.store.Load()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		logger.Debug("using stored session", "username", sess.Username, "path", sp.store.Path())
		return &Identity{Username: sess.Username}, nil
	}

	if nonInteractive || sp.prompter == nil {
		return nil, &AuthenticationRequiredError{
			Reason: fmt.Sprintf("no session found; run 'easbuild login' or set %sUSERNAME and %sTOKEN", EnvPrefix, EnvPrefix),
		}
	}

	return sp.Login(ctx)
}

// Login prompts for credentials and stores the resulting session.
func (sp *SessionProvider) Login(ctx context.Context) (*Identity, error) {
	if sp.prompter == nil {
		return nil, &AuthenticationRequiredError{Reason: "cannot log in without a terminal"}
	}

	username, err := sp.prompter.Input("Username")
	if err != nil {
		return nil, fmt.Errorf("reading username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &AuthenticationRequiredError{Reason: "username must not be empty"}
	}

	token, err := sp.prompter.Secret("Access token")
	if err != nil {
		return nil, fmt.Errorf("reading access token: %w", err)
	}
	if token == "" {
		return nil, &AuthenticationRequiredError{Reason: "access token must not be empty"}
	}

	if err := sp.store.Save(&Session{Username: username, Token: token}); err != nil {
		return nil, err
	}
	log.FromContext(ctx).Info("logged in", "username", username)
	return &Identity{Username: username}, nil
}

// Logout removes the stored session. It reports whether one existed.
func (sp *SessionProvider) Logout() (bool, error) {
	return sp.store.Delete()
}

func (sp *SessionProvider) fromEnv(ctx context.Context) (*envSession, error) {
	var s envSession
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, sp.lookuper),
	}); err != nil {
		return nil, fmt.Errorf("reading session from environment: %w", err)
	}
	if s.Username == "" {
		if s.Token != "" {
			return nil, &AuthenticationRequiredError{Reason: EnvPrefix + "TOKEN is set but " + EnvPrefix + "USERNAME is empty"}
		}
		return nil, nil
	}
	return &s, nil
}
