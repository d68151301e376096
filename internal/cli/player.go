package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerAuthCmd("register", "Register a new player", "/api/v1/players/register"))
	cmd.AddCommand(newPlayerAuthCmd("login", "Login with an existing player", "/api/v1/players/login"))
	cmd.AddCommand(newPlayerLogoutCmd())
	cmd.AddCommand(newPlayerMeCmd())

	return cmd
}

// newPlayerAuthCmd builds register and login, which share a request and response shape
func newPlayerAuthCmd(use, short, path string) *cobra.Command {
	var name, pass string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || pass == "" {
				return fmt.Errorf("--name and --pass are required")
			}

			req := map[string]string{
				"display_name": name,
				"password":     pass,
			}
			var result AuthResult

			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if client.Token() != "" {
				if err := client.Post(cmd.Context(), "/api/v1/players/logout", nil, nil); err != nil {
					return err
				}
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out.PrintMessage("Signed out")
			return nil
		},
	}
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Get(cmd.Context(), "/api/v1/players/me", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}
