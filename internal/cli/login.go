package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/me/pricedesk/internal/pricing"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var token, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the pricing API",
		Long: "Store a pricing API token for later commands. Pass --token to store an existing token, " +
			"or --email to exchange credentials for one (the password is read from stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reader := bufio.NewReader(cmd.InOrStdin())

			if token == "" && email == "" {
				fmt.Fprint(out, "Email: ")
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}

			if token == "" {
				if email == "" {
					return fmt.Errorf("email cannot be empty")
				}
				fmt.Fprint(out, "Password: ")
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password := strings.TrimRight(line, "\r\n")

				t, err := client.Login(cmd.Context(), email, password)
				if errors.Is(err, pricing.ErrInvalidCredentials) {
					return fmt.Errorf("login failed: invalid email or password")
				}
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				token = t
				fmt.Fprintln(out)
			}

			if err := apiSess.SetToken(strings.TrimSpace(token)); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(out, "Credentials saved to %s\n", tokens.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Existing pricing API bearer token")
	cmd.Flags().StringVar(&email, "email", "", "Admin email (password read from stdin)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tokens.Clear(); err != nil {
				return fmt.Errorf("remove credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
