package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/api/request"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Commands for the caller's seat in a session",
	}

	cmd.AddCommand(newPlayerJoinCmd())
	cmd.AddCommand(newPlayerMeCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerLeaveCmd())
	cmd.AddCommand(newPlayerRenewCmd())
	cmd.AddCommand(newPlayerCardsCmd())
	cmd.AddCommand(newPlayerKickCmd())

	return cmd
}

func newPlayerJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <session>",
		Short: "Join a session and save the player token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p response.Player
			if err := client.Post(sessionPath(args[0])+"/players", nil, &p); err != nil {
				return err
			}

			if err := cfg.SavePlayerToken(p.Token); err != nil {
				return fmt.Errorf("failed to save player token: %w", err)
			}

			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me <session>",
		Short: "Show the caller's player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p response.Player
			if err := client.Get(sessionPath(args[0])+"/players/me", &p); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}
}

func newPlayerUpdateCmd() *cobra.Command {
	var sanity, endurance, money, clues, phases, characters int

	cmd := &cobra.Command{
		Use:   "update <session>",
		Short: "Set the caller's status, equipment or counters",
		Long:  "Only the flags given are sent. Gains and losses are counted in the player's statistics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var req request.PlayerUpdateRequest
			if flags.Changed("sanity") || flags.Changed("endurance") {
				req.Status = &request.StatusRequest{
					Sanity:    changedInt(cmd, "sanity", sanity),
					Endurance: changedInt(cmd, "endurance", endurance),
				}
			}
			if flags.Changed("money") || flags.Changed("clues") {
				req.Equipment = &request.EquipmentRequest{
					Money: changedInt(cmd, "money", money),
					Clues: changedInt(cmd, "clues", clues),
				}
			}
			if flags.Changed("phases-played") || flags.Changed("characters-played") {
				req.Statistics = &request.StatisticsRequest{
					PhasesPlayed:     changedInt(cmd, "phases-played", phases),
					CharactersPlayed: changedInt(cmd, "characters-played", characters),
				}
			}
			if req.Status == nil && req.Equipment == nil && req.Statistics == nil {
				return fmt.Errorf("nothing to update")
			}

			var p response.Player
			if err := client.Patch(sessionPath(args[0])+"/players/me", req, &p); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}

	cmd.Flags().IntVar(&sanity, "sanity", 0, "Sanity")
	cmd.Flags().IntVar(&endurance, "endurance", 0, "Endurance")
	cmd.Flags().IntVar(&money, "money", 0, "Money")
	cmd.Flags().IntVar(&clues, "clues", 0, "Clue tokens")
	cmd.Flags().IntVar(&phases, "phases-played", 0, "Override the phases played counter")
	cmd.Flags().IntVar(&characters, "characters-played", 0, "Override the characters played counter")

	return cmd
}

func changedInt(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func newPlayerLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <session>",
		Short: "Leave the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p response.Player
			if err := client.Delete(sessionPath(args[0])+"/players/me", &p); err != nil {
				return err
			}
			if err := cfg.ClearPlayerToken(); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}
}

func newPlayerRenewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renew-character <session>",
		Short: "Swap the caller's character for another unused one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p response.Player
			if err := client.Post(sessionPath(args[0])+"/players/me/character", nil, &p); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}
}

func newPlayerCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Change the cards the caller holds",
	}

	hand := func(use, short, suffix string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <session> <card-id>...",
			Short: short,
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids := make([]model.CardID, 0, len(args)-1)
				for _, arg := range args[1:] {
					id, err := parseID(arg)
					if err != nil {
						return err
					}
					ids = append(ids, model.CardID(id))
				}

				var held []response.HeldCard
				if err := client.Post(sessionPath(args[0])+"/players/me/cards"+suffix, request.CardIDsRequest{CardIDs: ids}, &held); err != nil {
					return err
				}

				NewOutput(cfg.Output).Print(held)
				return nil
			},
		}
	}

	cmd.AddCommand(hand("add", "Add cards to the hand; repeat an id for several copies", ""))
	cmd.AddCommand(hand("remove", "Remove one copy of each card given", "/remove"))
	return cmd
}

func newPlayerKickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kick <session> <player-id>",
		Short: "Remove another player from the session (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			var p response.Player
			if err := client.Delete(fmt.Sprintf("%s/players/%d", sessionPath(args[0]), id), &p); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}
}
