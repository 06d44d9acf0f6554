package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/easbuild/internal/version"
)

func newVersionCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for easbuild",
		Example: `  # Show version info
  easbuild version

  # Plain output (for scripts)
  easbuild version --plain`,
		GroupID: GroupInfo,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if plain {
				printPlainVersion(cmd)
				return
			}
			printPrettyVersion(cmd)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain output without formatting")
	return cmd
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(cmd *cobra.Command) {
	printf(cmd, "easbuild %s\n", version.Version)
	printf(cmd, "commit: %s\n", version.Commit)
	printf(cmd, "built: %s\n", version.BuildDate)
	printf(cmd, "go: %s\n", runtime.Version())
	printf(cmd, "platform: %s\n", version.Platform())
}

func printPrettyVersion(cmd *cobra.Command) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	title := "easbuild " + version.Version
	if version.IsDevBuild() {
		title += dim(" (development build)")
	}
	printf(cmd, "%s\n\n", cyan(title))

	info := []struct {
		label string
		value string
	}{
		{"Commit", version.ShortCommit()},
		{"Built", version.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", version.Platform()},
	}
	for _, item := range info {
		printf(cmd, "  %s  %s\n", yellow(fmt.Sprintf("%-8s", item.label)), item.value)
	}
}
