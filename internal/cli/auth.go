package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGuestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Create a guest player and store its credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"display_name": name}
			return authenticate(cmd, "/api/v1/auth/guest", req)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an account and store its credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": user, "password": pass}
			return authenticate(cmd, "/api/v1/auth/register", req)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": user, "password": pass}
			return authenticate(cmd, "/api/v1/auth/login", req)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

// authenticate posts credentials, saves the returned token and prints it
func authenticate(cmd *cobra.Command, path string, req map[string]string) error {
	var result AuthResult
	if err := client.Post(cmd.Context(), path, req, &result); err != nil {
		return err
	}

	if err := cfg.SaveToken(result.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()).Print(result)
	return nil
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the identity behind the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MeResult
			if err := client.Get(cmd.Context(), "/api/v1/auth/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()).Print(result)
			return nil
		},
	}
}
