// Package cli implements the easbuild command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
)

// Command group IDs
const (
	GroupBuild   = "build"
	GroupAccount = "account"
	GroupInfo    = "info"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "easbuild",
		Short: "Prepare React Native and Expo projects for remote builds",
		Long: `easbuild prepares React Native and Expo projects for remote builds.

It creates and commits a minimal eas.json, resolves the build profile for each
platform and configures the native Android and iOS projects.`,
		Example: `  # Configure both platforms for the release profile
  easbuild build init --profile release

  # Android only, in CI
  easbuild build init -p android --profile release --non-interactive

  # Log in once, interactively
  easbuild login`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.Bool("non-interactive", false, "Never prompt; fail instead")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("project-dir", "", "Project root (default: current directory)")
	flags.StringP("config", "c", "", "Path to an easbuild config file")

	cmd.AddGroup(
		&cobra.Group{ID: GroupBuild, Title: "Build Commands:"},
		&cobra.Group{ID: GroupAccount, Title: "Account Commands:"},
		&cobra.Group{ID: GroupInfo, Title: "Info Commands:"},
	)

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), c.UseLine())
	})

	cmd.AddCommand(
		newBuildCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	return execute(context.Background(), rootCmd)
}

func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		clierrors.FprintError(cmd.ErrOrStderr(), toCLIError(err))
	}
	return err
}

// Main runs the CLI and exits with the code matching the outcome.
func Main() {
	os.Exit(ExitCode(Execute()))
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
