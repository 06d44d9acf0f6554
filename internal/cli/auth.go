package cli

import (
	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "login",
		Short:   "Log in and store a session",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if a.cfg.NonInteractive {
				return clierrors.NewArgumentError("login needs an interactive terminal",
					"Set EASBUILD_USERNAME and EASBUILD_TOKEN instead")
			}
			sessions, err := a.sessions()
			if err != nil {
				return err
			}
			id, err := sessions.Login(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "Logged in as %s\n", id.Username)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove the stored session",
		GroupID: GroupAccount,
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
			removed, err := sessions.Logout()
			if err != nil {
				return err
			}
			if removed {
				printf(cmd, "Logged out\n")
			} else {
				printf(cmd, "Not logged in\n")
			}
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged in user",
		GroupID: GroupAccount,
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
			id, err := sessions.EnsureLoggedIn(cmd.Context(), true)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", id.Username)
			return nil
		},
	}
}
