package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/easbuild/internal/builder"
	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/buildinit"
	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/manifest"
	"github.com/ariel-frischer/easbuild/internal/platform"
	"github.com/ariel-frischer/easbuild/internal/progress"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build",
		Short:   "Configure and run remote builds",
		GroupID: GroupBuild,
	}
	cmd.AddCommand(newBuildInitCmd())
	return cmd
}

func newBuildInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the project for remote builds",
		Long: `Set up the project for remote builds.

Creates a minimal eas.json when the project has none, offers to commit it, then
configures each selected platform. Android is always configured before iOS.`,
		Example: `  easbuild build init --profile release
  easbuild build init -p ios --profile release --skip-credentials-check`,
		Args: cobra.NoArgs,
		RunE: runBuildInit,
	}

	cmd.Flags().StringP("platform", "p", string(platform.SelectAll),
		fmt.Sprintf("Platform to configure: %v", platform.SelectorNames()))
	cmd.Flags().String("profile", "", "Build profile in eas.json (required)")
	cmd.Flags().Bool("skip-credentials-check", false, "Skip the iOS signing credentials check")
	return cmd
}

func runBuildInit(cmd *cobra.Command, _ []string) error {
	platformFlag, _ := cmd.Flags().GetString("platform")
	profile, _ := cmd.Flags().GetString("profile")
	skipCredentials, _ := cmd.Flags().GetBool("skip-credentials-check")

	// Argument errors win over anything found in config files.
	if err := checkBuildInitArgs(platformFlag, profile); err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	sessions, err := a.sessions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	caps := progress.DetectTerminalCapabilities()
	if !a.cfg.Spinner {
		caps.IsTTY = false
	}

	opts := buildinit.Options{
		ProjectDir:           a.projectDir,
		Platform:             platformFlag,
		Profile:              profile,
		Workflow:             a.cfg.Workflow(),
		CommitMessage:        a.cfg.CommitMessage,
		NonInteractive:       a.cfg.NonInteractive,
		SkipCredentialsCheck: skipCredentials || a.cfg.SkipCredentialsCheck,
	}
	deps := buildinit.Deps{
		Contexts:   &buildctx.Factory{Identity: sessions, Manifests: manifest.FileReader{}},
		Guard:      git.NewGuard(a.projectDir, a.prompter, out),
		Dispatcher: builder.NewDispatcher(builder.AndroidStep{}, builder.IOSStep{}),
		Progress:   progress.NewSpinner(out, caps),
	}

	res, err := buildinit.Run(cmd.Context(), opts, deps)
	if err != nil {
		return err
	}

	printReport(cmd, res, progress.SelectSymbols(caps))
	return nil
}

func checkBuildInitArgs(platformFlag, profile string) error {
	if _, err := platform.ParseSelector(platformFlag); err != nil {
		return clierrors.InvalidPlatform(platformFlag, platform.SelectorNames())
	}
	if profile == "" {
		return clierrors.MissingProfile()
	}
	return nil
}

func printReport(cmd *cobra.Command, res *buildinit.Result, symbols progress.ProgressSymbols) {
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, r := range res.Report.Results {
		line := fmt.Sprintf("%s %s project ready", green(symbols.Checkmark), r.Platform.DisplayName())
		if len(r.Skipped) > 0 {
			line += dim(fmt.Sprintf(" (skipped: %v)", r.Skipped))
		}
		printf(cmd, "%s\n", line)
	}
	printf(cmd, "\nProject %s is ready to build with profile %q.\n",
		res.Context.FullProjectName(), res.Context.ProfileName())
}
