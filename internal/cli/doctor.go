package cli

import (
	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
	"github.com/ariel-frischer/easbuild/internal/health"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Short:   "Check that the project is ready for build init",
		Long:    "Check the git repository, app.json, eas.json, the login session and local iOS credentials without changing anything.",
		GroupID: GroupInfo,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			sessions, err := a.sessions()
			if err != nil {
				return err
			}

			report := health.RunHealthChecks(cmd.Context(), health.Options{
				ProjectDir: a.projectDir,
				Identity:   sessions,
			})
			printf(cmd, "%s", health.FormatReport(report))

			if !report.Passed {
				return clierrors.NewPrerequisiteError("project is not ready for build init",
					"Fix the checks marked ✗ above")
			}
			return nil
		},
	}
}
