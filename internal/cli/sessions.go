package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Game session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newPhaseCmd("advance", "Move to the next phase"))
	cmd.AddCommand(newPhaseCmd("retreat", "Move back to the previous phase"))
	cmd.AddCommand(newPhaseCmd("reset", "Return to the default phase"))

	return cmd
}

func sessionPath(token string) string {
	return "/api/v1/game-sessions/" + url.PathEscape(token)
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a session and take the host seat",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.CreatedGameSession
			if err := client.Post("/api/v1/game-sessions", nil, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayerToken(result.Player.Token); err != nil {
				return fmt.Errorf("failed to save player token: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every session (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sessions []response.GameSession
			if err := client.Get("/api/v1/game-sessions", &sessions); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(sessions)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <token>",
		Short: "Show a session and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var session response.GameSession
			if err := client.Get(sessionPath(args[0]), &session); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(session)
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <token>",
		Short: "Close a session (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(sessionPath(args[0]), nil); err != nil {
				return err
			}
			if err := cfg.ClearPlayerToken(); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Closed session " + args[0])
			return nil
		},
	}
}

func newPhaseCmd(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction + " <token>",
		Short: short + " (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var session response.GameSession
			if err := client.Post(sessionPath(args[0])+"/phase/"+direction, nil, &session); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(session)
			return nil
		},
	}
}
