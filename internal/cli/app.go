package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/easbuild/internal/config"
	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/identity"
	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/prompt"
)

// app holds what every command needs once flags and config are resolved.
type app struct {
	cfg        *config.Configuration
	projectDir string
	logger     *slog.Logger
	prompter   prompt.Prompter
}

// loadApp resolves the global flags, loads configuration and attaches the
// logger to the command context.
func loadApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	debug, _ := flags.GetBool("debug")
	nonInteractive, _ := flags.GetBool("non-interactive")
	projectDir, _ := flags.GetString("project-dir")
	configFile, _ := flags.GetString("config")

	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		projectDir = wd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectDir: projectDir,
		ConfigFile: configFile,
	})
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "loading easbuild config",
			"Fix the reported key in "+config.ProjectConfigPath(projectDir)+" or your user config",
			"Environment variables use the "+config.EnvPrefix+" prefix, e.g. "+config.EnvPrefix+"NON_INTERACTIVE=1",
		)
	}
	if nonInteractive {
		cfg.NonInteractive = true
	}

	logger := log.New("easbuild", log.Options{Debug: debug, Writer: cmd.ErrOrStderr()})
	cmd.SetContext(log.IntoContext(cmd.Context(), logger))
	if debug {
		git.SetDebugLogger(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		})
	}
	logger.Debug("configuration loaded", "project_dir", projectDir, "non_interactive", cfg.NonInteractive)

	return &app{
		cfg:        cfg,
		projectDir: projectDir,
		logger:     logger,
		prompter:   prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()),
	}, nil
}

// sessions returns the identity provider backed by the configured session file.
func (a *app) sessions() (*identity.SessionProvider, error) {
	path := a.cfg.SessionPath
	if path == "" {
		var err error
		if path, err = identity.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	var p prompt.Prompter
	if !a.cfg.NonInteractive {
		p = a.prompter
	}
	return identity.NewSessionProvider(identity.NewSessionStore(path), p), nil
}
