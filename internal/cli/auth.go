package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/api/request"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account commands",
	}

	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthVerifyCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRemindCmd())
	cmd.AddCommand(newAuthResetCmd())
	cmd.AddCommand(newAuthMeCmd())
	cmd.AddCommand(newAuthStatsCmd())

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long:  "Registers an account. A verification token is emailed to the address before login is allowed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"name":     name,
				"email":    email,
				"password": password,
			}
			var user response.User
			if err := client.Post("/api/v1/auth/register", req, &user); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAuthVerifyCmd() *cobra.Command {
	var email, token string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an email address with the emailed token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var user response.User
			if err := client.Post("/api/v1/auth/verify", request.VerifyRequest{Email: email, Token: token}, &user); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&token, "token", "", "Verification token (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the account token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Login
			if err := client.Post("/api/v1/auth/login", request.LoginRequest{Email: email, Password: password}, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAuthRemindCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "remind-password",
		Short: "Email a password reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/auth/remind-password", request.RemindPasswordRequest{Email: email}, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("If the account exists, a reset token has been sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthResetCmd() *cobra.Command {
	var email, token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with the emailed reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":                     email,
				"token":                     token,
				"new_password":              password,
				"new_password_confirmation": password,
			}
			if err := client.Post("/api/v1/auth/reset-password", req, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Password updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&token, "token", "", "Reset token (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var user response.User
			if err := client.Get("/api/v1/users/me", &user); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(user)
			return nil
		},
	}
}

func newAuthStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics across every session the account played",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats model.UserStatistics
			if err := client.Get("/api/v1/users/me/statistics", &stats); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(stats)
			return nil
		},
	}
}
