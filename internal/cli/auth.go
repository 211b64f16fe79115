package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/qsecurex/portal/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the QSecureX portal",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthRefreshCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			resp, err := apiClient.Login(context.Background(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveSession(resp); err != nil {
				return err
			}

			fmt.Printf("Signed in as %s\n", sessionLabel(resp, email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" {
				req.Email = promptInput("Email: ")
			}
			if req.Name == "" {
				req.Name = promptInput("Name (optional): ")
			}
			if req.Password == "" {
				req.Password = promptPassword("Password (8+ characters): ")
				if promptPassword("Confirm password: ") != req.Password {
					return fmt.Errorf("passwords do not match")
				}
			}

			resp, err := apiClient.Register(context.Background(), req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := saveSession(resp); err != nil {
				return err
			}

			fmt.Printf("Account created for %s\n", sessionLabel(resp, req.Email))
			if resp.User != nil && resp.User.Role == "admin" {
				fmt.Println("This account has admin access.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")

	return cmd
}

func newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			refreshToken := viper.GetString("auth.refresh_token")
			if refreshToken == "" {
				return fmt.Errorf("no refresh token stored. Run 'qsecurex auth login'")
			}

			resp, err := apiClient.Refresh(context.Background(), refreshToken)
			if err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}
			if err := saveSession(resp); err != nil {
				return err
			}

			fmt.Println("Access token renewed")
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range []string{"auth.token", "auth.refresh_token", "auth.email"} {
				viper.Set(key, "")
			}
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Signed out")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := apiClient.GetCurrentUser(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(user)
			}

			table := NewTable("ID", "EMAIL", "NAME", "ROLE", "JOINED")
			table.AddRow(user.ID, user.Email, user.Name, user.Role, user.CreatedAt.Format("2006-01-02"))
			table.Render()
			return nil
		},
	}
}

// saveSession persists the token pair returned by login, register or refresh
func saveSession(resp *client.LoginResponse) error {
	viper.Set("auth.token", resp.AccessToken)
	if resp.RefreshToken != "" {
		viper.Set("auth.refresh_token", resp.RefreshToken)
	}
	if resp.User != nil {
		viper.Set("auth.email", resp.User.Email)
	}
	if err := writeConfig(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func sessionLabel(resp *client.LoginResponse, fallback string) string {
	if resp.User != nil && resp.User.Name != "" {
		return resp.User.Name
	}
	return fallback
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
